package session

// Store persists a single session blob with atomic single-key semantics.
// Concurrent writers are not coordinated; last write wins.
//
// Current returns (nil, nil) when no session is persisted or the persisted
// blob cannot be parsed: an unreadable session is an anonymous session,
// never an error the caller has to handle.
type Store interface {
	Current() (*Session, error)
	Save(s *Session) error
	Clear() error
}
