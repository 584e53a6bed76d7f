package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/kurokira/storefront-backend/pkg/errors"
	"github.com/kurokira/storefront-backend/pkg/redis"
)

// Store persists the favorites set keyed by session ID.
type Store interface {
	Load(ctx context.Context, sessionID string) ([]string, error)
	Save(ctx context.Context, sessionID string, slugs []string) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisStore keeps the serialized slug list per session.
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

func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]string, error) {
	raw, err := s.client.Get(ctx, s.client.FavoritesKey(sessionID))
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load favorites")
	}
	var slugs []string
	if err := json.Unmarshal([]byte(raw), &slugs); err != nil {
		return nil, nil
	}
	return slugs, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, slugs []string) error {
	payload, err := json.Marshal(slugs)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode favorites")
	}
	if err := s.client.Set(ctx, s.client.FavoritesKey(sessionID), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save favorites")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.client.FavoritesKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear favorites")
	}
	return nil
}

// Service exposes the favorites ledger, a set of product slugs whose
// lifecycle is independent of the cart.
type Service interface {
	List(ctx context.Context, sessionID string) ([]string, error)
	Add(ctx context.Context, sessionID, slug string) ([]string, error)
	Remove(ctx context.Context, sessionID, slug string) ([]string, error)
	Clear(ctx context.Context, sessionID string) error
}

type service struct {
	store Store
}

func NewService(store Store) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("favorites store required")
	}
	return &service{store: store}, nil
}

func (s *service) List(ctx context.Context, sessionID string) ([]string, error) {
	slugs, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if slugs == nil {
		slugs = []string{}
	}
	return slugs, nil
}

// Add appends the slug when absent; re-adding is a no-op.
func (s *service) Add(ctx context.Context, sessionID, slug string) ([]string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	slugs, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, existing := range slugs {
		if existing == slug {
			return slugs, nil
		}
	}
	slugs = append(slugs, slug)
	if err := s.store.Save(ctx, sessionID, slugs); err != nil {
		return nil, err
	}
	return slugs, nil
}

// Remove drops the slug; absent slugs are a no-op.
func (s *service) Remove(ctx context.Context, sessionID, slug string) ([]string, error) {
	slug = strings.TrimSpace(slug)
	slugs, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	filtered := slugs[:0]
	changed := false
	for _, existing := range slugs {
		if existing == slug {
			changed = true
			continue
		}
		filtered = append(filtered, existing)
	}
	if !changed {
		if filtered == nil {
			filtered = []string{}
		}
		return filtered, nil
	}
	if err := s.store.Save(ctx, sessionID, filtered); err != nil {
		return nil, err
	}
	return filtered, nil
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}
