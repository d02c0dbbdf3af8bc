package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport failures against the session backend.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrSessionNotFound is returned when the session id has no record, whether
// it never existed or already expired.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionCorrupt is returned when a stored session blob does not decode.
var ErrSessionCorrupt = errors.New("session record corrupt")

const minTTL = time.Second

// Store persists identity records in Redis under a configurable key prefix.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	sliding bool
}

// NewStore builds a Store. When sliding is true, every successful Get renews
// the record's TTL.
func NewStore(client *redis.Client, prefix string, ttl time.Duration, sliding bool) *Store {
	if prefix == "" {
		prefix = "campus:session:"
	}
	if ttl < minTTL {
		ttl = minTTL
	}
	return &Store{
		client:  client,
		prefix:  prefix,
		ttl:     ttl,
		sliding: sliding,
	}
}

// Create stores rec under a fresh session id and returns the id. The
// caller's SessionID, CreatedAt, and ExpiresAt fields are overwritten.
func (s *Store) Create(ctx context.Context, rec Record) (string, error) {
	now := time.Now()

	rec.SessionID = uuid.NewString()
	rec.CreatedAt = now.Unix()
	rec.ExpiresAt = now.Add(s.ttl).Unix()

	blob, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}

	if err := s.client.Set(ctx, s.key(rec.SessionID), blob, s.ttl).Err(); err != nil {
		return "", errors.Join(ErrRedisUnavailable, err)
	}

	return rec.SessionID, nil
}

// Get fetches the record for sessionID. Expired and missing sessions are
// indistinguishable.
func (s *Store) Get(ctx context.Context, sessionID string) (*Record, error) {
	blob, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, errors.Join(ErrRedisUnavailable, err)
	}

	var rec Record
	if err := json.Unmarshal(blob, &rec); err != nil {
		return nil, ErrSessionCorrupt
	}
	if rec.SessionID != sessionID {
		return nil, ErrSessionCorrupt
	}

	now := time.Now()
	if rec.ExpiresAt <= now.Unix() {
		// Redis TTL should have reaped this already; treat as gone.
		_, _ = s.Delete(ctx, sessionID)
		return nil, ErrSessionNotFound
	}

	if s.sliding {
		rec.ExpiresAt = now.Add(s.ttl).Unix()
		refreshed, err := json.Marshal(rec)
		if err == nil {
			_ = s.client.Set(ctx, s.key(sessionID), refreshed, s.ttl).Err()
		}
	}

	return &rec, nil
}

// Delete removes the session. Deleting an absent session is not an error;
// the bool reports whether a record existed.
func (s *Store) Delete(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(sessionID)).Result()
	if err != nil {
		return false, errors.Join(ErrRedisUnavailable, err)
	}
	return n > 0, nil
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}
