package client

import (
	"io"
	"time"
)

// Sanitize returns a copy of v with every object key whose value is the
// empty string or nil removed, recursively. Array elements are never
// dropped, only object keys inside them are. time.Time values, raw bytes
// and readers (file handles) are opaque leaves and pass through untouched,
// as do primitives and nil. Sanitize never mutates its input and is
// idempotent.
func Sanitize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time, *time.Time, []byte:
		return val
	case io.Reader:
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if item == nil {
				continue
			}
			if s, ok := item.(string); ok && s == "" {
				continue
			}
			out[k] = Sanitize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Sanitize(item)
		}
		return out
	default:
		return val
	}
}

// sanitizeObject applies Sanitize to a write body, preserving the map
// shape the transport expects. A nil body stays nil.
func sanitizeObject(body map[string]any) map[string]any {
	if body == nil {
		return nil
	}
	return Sanitize(body).(map[string]any)
}
