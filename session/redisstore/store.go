// Package redisstore provides a Redis-backed session.Store for embedding
// the SDK in server-side processes where multiple instances must share one
// authenticated session.
package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/stockflowhq/stockflow-go/session"
)

const defaultKey = "stockflow:session"

var _ session.Store = (*Store)(nil)

// Store keeps the session as one serialized blob under a single Redis key,
// so reads and writes stay atomic at the blob level.
type Store struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the Redis key the session is stored under.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// WithTTL expires the stored session after d. Zero means no expiry.
func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		s.ttl = d
	}
}

func New(client redis.UniversalClient, options ...Option) (*Store, error) {
	if client == nil {
		return nil, errors.New("[redisstore.New] redis client is required")
	}
	s := &Store{client: client, key: defaultKey}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Current reads the stored session. A missing key or unparsable blob yields
// (nil, nil); only transport failures surface as errors.
func (s *Store) Current() (*session.Session, error) {
	data, err := s.client.Get(context.Background(), s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[redisstore.Current] Get")
	}
	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, nil
	}
	return &sess, nil
}

func (s *Store) Save(sess *session.Session) error {
	if sess == nil {
		return errors.New("[redisstore.Save] nil session")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "[redisstore.Save] Marshal")
	}
	if err := s.client.Set(context.Background(), s.key, data, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "[redisstore.Save] Set")
	}
	return nil
}

func (s *Store) Clear() error {
	if err := s.client.Del(context.Background(), s.key).Err(); err != nil {
		return errors.Wrap(err, "[redisstore.Clear] Del")
	}
	return nil
}
