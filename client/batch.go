package client

import (
	"context"
)

// BatchResult records the outcome for one item of a sequential batch.
type BatchResult struct {
	ID  string
	Err error
}

// Failed reports whether the item's operation returned an error.
func (r BatchResult) Failed() bool {
	return r.Err != nil
}

// BatchOptions controls how a batch reacts to an item failure. The default
// is best-effort: keep going and report every outcome. There is no
// rollback either way; items already applied stay applied.
type BatchOptions struct {
	StopOnError bool
}

// BatchDelete deletes ids one at a time, awaiting each call before issuing
// the next. The sequential order is deliberate; do not parallelize it.
// Returns one result per attempted id. A context cancellation stops the
// loop and is reported on the item it interrupted.
func (e *Entity) BatchDelete(ctx context.Context, ids []string, opts BatchOptions) []BatchResult {
	results := make([]BatchResult, 0, len(ids))
	for _, id := range ids {
		err := e.Delete(ctx, id, nil)
		results = append(results, BatchResult{ID: id, Err: err})
		if err != nil && (opts.StopOnError || ctx.Err() != nil) {
			break
		}
	}
	return results
}

// BatchUpdate applies the same partial body to each id sequentially, with
// the same semantics as BatchDelete.
func (e *Entity) BatchUpdate(ctx context.Context, ids []string, body Record, opts BatchOptions) []BatchResult {
	results := make([]BatchResult, 0, len(ids))
	for _, id := range ids {
		_, err := e.Update(ctx, id, body)
		results = append(results, BatchResult{ID: id, Err: err})
		if err != nil && (opts.StopOnError || ctx.Err() != nil) {
			break
		}
	}
	return results
}
