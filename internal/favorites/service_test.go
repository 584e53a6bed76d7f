package favorites

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/kurokira/storefront-backend/pkg/errors"
)

type memoryStore struct {
	sets map[string][]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sets: map[string][]string{}}
}

func (m *memoryStore) Load(_ context.Context, sessionID string) ([]string, error) {
	stored := m.sets[sessionID]
	out := make([]string, len(stored))
	copy(out, stored)
	return out, nil
}

func (m *memoryStore) Save(_ context.Context, sessionID string, slugs []string) error {
	m.sets[sessionID] = slugs
	return nil
}

func (m *memoryStore) Delete(_ context.Context, sessionID string) error {
	delete(m.sets, sessionID)
	return nil
}

func newTestService(t *testing.T) (Service, *memoryStore) {
	t.Helper()

	store := newMemoryStore()
	svc, err := NewService(store)
	require.NoError(t, err)
	return svc, store
}

func TestAddIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	slugs, err := svc.Add(ctx, "sess-1", "kuro-hoodie")
	require.NoError(t, err)
	assert.Equal(t, []string{"kuro-hoodie"}, slugs)

	slugs, err = svc.Add(ctx, "sess-1", "kuro-hoodie")
	require.NoError(t, err)
	assert.Equal(t, []string{"kuro-hoodie"}, slugs)
}

func TestAddRejectsEmptySlug(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Add(context.Background(), "sess-1", "  ")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestRemoveAbsentSlugIsNoop(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "sess-1", "kuro-hoodie")
	require.NoError(t, err)

	slugs, err := svc.Remove(ctx, "sess-1", "never-added")
	require.NoError(t, err)
	assert.Equal(t, []string{"kuro-hoodie"}, slugs)
}

func TestRemoveKeepsOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, slug := range []string{"a", "b", "c"} {
		_, err := svc.Add(ctx, "sess-1", slug)
		require.NoError(t, err)
	}

	slugs, err := svc.Remove(ctx, "sess-1", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, slugs)
}

func TestClearAndListEmpty(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "sess-1", "kuro-hoodie")
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "sess-1"))

	assert.Empty(t, store.sets)
	slugs, err := svc.List(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, []string{}, slugs)
}
