package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/kurokira/storefront-backend/pkg/errors"
	"github.com/kurokira/storefront-backend/pkg/redis"
)

// Store persists cart snapshots keyed by session ID.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Ledger, error)
	Save(ctx context.Context, sessionID string, ledger *Ledger) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisStore keeps one serialized ledger per session with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

// Load returns the stored ledger, or an empty one when the key is absent.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Ledger, error) {
	raw, err := s.client.Get(ctx, s.client.CartKey(sessionID))
	if errors.Is(err, redis.Nil) {
		return &Ledger{}, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	var ledger Ledger
	if err := json.Unmarshal([]byte(raw), &ledger); err != nil {
		// A corrupt snapshot is unrecoverable; start the session fresh.
		return &Ledger{}, nil
	}
	return &ledger, nil
}

// Save writes the ledger snapshot, refreshing the TTL.
func (s *RedisStore) Save(ctx context.Context, sessionID string, ledger *Ledger) error {
	payload, err := json.Marshal(ledger)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.client.Set(ctx, s.client.CartKey(sessionID), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

// Delete removes the stored snapshot.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.client.CartKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}
