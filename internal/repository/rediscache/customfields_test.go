package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ignite/contact-manager/internal/domain"
	"github.com/ignite/contact-manager/internal/repository/memory"
	"github.com/ignite/contact-manager/internal/service/customfield"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingBackend records how often each read reaches the store.
type countingBackend struct {
	Backend
	gets, lists, lookups int
}

func (b *countingBackend) Get(ctx context.Context, id string) (*domain.CustomField, error) {
	b.gets++
	return b.Backend.Get(ctx, id)
}

func (b *countingBackend) List(ctx context.Context) ([]domain.CustomField, error) {
	b.lists++
	return b.Backend.List(ctx)
}

func (b *countingBackend) LookupFields(ctx context.Context, ids []string) (map[string]domain.CustomField, error) {
	b.lookups++
	return b.Backend.LookupFields(ctx, ids)
}

func setup(t *testing.T) (*CustomFields, *countingBackend, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	backend := &countingBackend{Backend: memory.New().CustomFields()}
	require.NoError(t, backend.Create(context.Background(), &domain.CustomField{
		ID: "f1", Name: "Tier", FieldType: domain.FieldTypeString, CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
	return NewCustomFields(backend, client, time.Minute), backend, mr
}

func TestGet_ReadsThrough(t *testing.T) {
	cache, backend, mr := setup(t)
	ctx := context.Background()

	f, err := cache.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "Tier", f.Name)
	assert.True(t, mr.Exists(fieldKey("f1")))

	f, err = cache.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "Tier", f.Name)
	assert.Equal(t, 1, backend.gets)
}

func TestGet_NotFoundIsNotCached(t *testing.T) {
	cache, backend, mr := setup(t)
	ctx := context.Background()

	_, err := cache.Get(ctx, "missing")
	assert.ErrorIs(t, err, customfield.ErrNotFound)
	_, err = cache.Get(ctx, "missing")
	assert.ErrorIs(t, err, customfield.ErrNotFound)
	assert.Equal(t, 2, backend.gets)
	assert.False(t, mr.Exists(fieldKey("missing")))
}

func TestWritesInvalidate(t *testing.T) {
	cache, backend, mr := setup(t)
	ctx := context.Background()

	_, err := cache.List(ctx)
	require.NoError(t, err)
	_, err = cache.Get(ctx, "f1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(listKey))

	require.NoError(t, cache.Update(ctx, &domain.CustomField{ID: "f1", Name: "Level", FieldType: domain.FieldTypeInt}))
	assert.False(t, mr.Exists(listKey))
	assert.False(t, mr.Exists(fieldKey("f1")))

	f, err := cache.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "Level", f.Name)
	assert.Equal(t, domain.FieldTypeInt, f.FieldType)

	require.NoError(t, cache.Create(ctx, &domain.CustomField{ID: "f2", Name: "Age", FieldType: domain.FieldTypeInt}))
	list, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 2, backend.lists)

	require.NoError(t, cache.Delete(ctx, "f1"))
	_, err = cache.Get(ctx, "f1")
	assert.ErrorIs(t, err, customfield.ErrNotFound)
}

func TestLookupFields_MixesCacheAndStore(t *testing.T) {
	cache, backend, _ := setup(t)
	ctx := context.Background()
	require.NoError(t, cache.Create(ctx, &domain.CustomField{ID: "f2", Name: "Age", FieldType: domain.FieldTypeInt}))

	_, err := cache.Get(ctx, "f1")
	require.NoError(t, err)

	got, err := cache.LookupFields(ctx, []string{"f1", "f2", "ghost"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, backend.lookups)

	got, err = cache.LookupFields(ctx, []string{"f1", "f2"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, backend.lookups, "both ids now cached")
}

func TestRedisDown_FallsThrough(t *testing.T) {
	cache, backend, mr := setup(t)
	mr.Close()

	f, err := cache.Get(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "Tier", f.Name)
	assert.Equal(t, 1, backend.gets)

	got, err := cache.LookupFields(context.Background(), []string{"f1"})
	require.NoError(t, err)
	assert.Contains(t, got, "f1")
}
