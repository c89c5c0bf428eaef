package cache

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/folio-api/internal/domain"
	"github.com/phrazzld/folio-api/internal/mocks"
	"github.com/phrazzld/folio-api/internal/platform/logger"
	"github.com/phrazzld/folio-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingPosts counts reads that reach the underlying store.
type countingPosts struct {
	*mocks.MockPostStore
	byID, bySlug atomic.Int32
}

func (c *countingPosts) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	c.byID.Add(1)
	return c.MockPostStore.FindByID(ctx, id)
}

func (c *countingPosts) FindBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	c.bySlug.Add(1)
	return c.MockPostStore.FindBySlug(ctx, slug)
}

func (c *countingPosts) WithTx(*sql.Tx) store.PostStore { return c }

// failingCache fails every operation.
type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, error) { return nil, errors.New("down") }
func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("down")
}
func (failingCache) Delete(context.Context, ...string) error { return errors.New("down") }
func (failingCache) Incr(context.Context, string) (int64, error) { return 0, errors.New("down") }
func (failingCache) SetIfEqual(context.Context, string, []byte, time.Duration, string, string) (bool, error) {
	return false, errors.New("down")
}

// readOnlyCache serves reads and fails every write.
type readOnlyCache struct{ Cache }

func (readOnlyCache) SetIfEqual(context.Context, string, []byte, time.Duration, string, string) (bool, error) {
	return false, errors.New("read only")
}

// stallingPosts lets the first FindByID take its snapshot, then holds it
// until release is closed.
type stallingPosts struct {
	*mocks.MockPostStore
	once    sync.Once
	loaded  chan struct{}
	release chan struct{}
}

func (p *stallingPosts) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := p.MockPostStore.FindByID(ctx, id)
	p.once.Do(func() {
		close(p.loaded)
		<-p.release
	})
	return post, err
}

func setupCachedStore(t *testing.T) (*CachedPostStore, *countingPosts) {
	t.Helper()
	c, _ := newTestRedis(t)
	inner := &countingPosts{MockPostStore: mocks.NewMockPostStore()}
	l, _ := logger.GetTestLogger(t)
	return NewCachedPostStore(inner, c, time.Minute, l), inner
}

func createPost(t *testing.T, s store.PostStore, slug string) *domain.Post {
	t.Helper()
	post, err := s.Create(context.Background(), domain.CreatePost{
		Category: domain.CategoryBlog, Title: "T", Slug: slug, Content: "c",
	})
	require.NoError(t, err)
	return post
}

func TestCachedPostStore_ReadThrough(t *testing.T) {
	ctx := context.Background()
	s, inner := setupCachedStore(t)
	post := createPost(t, s, "first-post")

	for range 3 {
		got, err := s.FindByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "first-post", got.Slug)
	}
	assert.Equal(t, int32(1), inner.byID.Load())

	for range 3 {
		got, err := s.FindBySlug(ctx, "first-post")
		require.NoError(t, err)
		assert.Equal(t, post.ID, got.ID)
	}
	assert.Equal(t, int32(0), inner.bySlug.Load())
}

func TestCachedPostStore_NotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	s, inner := setupCachedStore(t)

	for range 2 {
		_, err := s.FindByID(ctx, 99)
		assert.ErrorIs(t, err, store.ErrPostNotFound)
	}
	assert.Equal(t, int32(2), inner.byID.Load())
}

func TestCachedPostStore_MutationsInvalidate(t *testing.T) {
	ctx := context.Background()
	s, _ := setupCachedStore(t)
	post := createPost(t, s, "old-slug")

	_, err := s.FindBySlug(ctx, "old-slug")
	require.NoError(t, err)

	newSlug := "new-slug"
	_, err = s.Patch(ctx, domain.PatchPost{ID: post.ID, Slug: &newSlug})
	require.NoError(t, err)

	got, err := s.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-slug", got.Slug)

	// The stale slug key now resolves to a post with a different slug.
	_, err = s.FindBySlug(ctx, "old-slug")
	assert.ErrorIs(t, err, store.ErrPostNotFound)

	_, err = s.Update(ctx, domain.UpdatePost{
		ID: post.ID, Category: domain.CategoryArt, Title: "Updated", Slug: "new-slug", Content: "c",
	})
	require.NoError(t, err)
	got, err = s.FindBySlug(ctx, "new-slug")
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Title)

	require.NoError(t, s.Delete(ctx, post.ID))
	_, err = s.FindByID(ctx, post.ID)
	assert.ErrorIs(t, err, store.ErrPostNotFound)
}

func TestCachedPostStore_CacheFailureFallsThrough(t *testing.T) {
	ctx := context.Background()
	inner := &countingPosts{MockPostStore: mocks.NewMockPostStore()}
	l, buf := logger.GetTestLogger(t)
	s := NewCachedPostStore(inner, failingCache{}, 0, l)
	post := createPost(t, s, "resilient")

	got, err := s.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	require.NoError(t, s.Delete(ctx, post.ID))

	logger.AssertLogContains(t, buf, "cache read failed")
	logger.AssertLogContains(t, buf, "cache invalidation failed")

	redisCache, _ := newTestRedis(t)
	s = NewCachedPostStore(inner, readOnlyCache{redisCache}, 0, l)
	post = createPost(t, s, "read-only")
	got, err = s.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	logger.AssertLogContains(t, buf, "cache write failed")
}

func TestCachedPostStore_SlowReadDoesNotCacheReplacedRow(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestRedis(t)
	inner := &stallingPosts{
		MockPostStore: mocks.NewMockPostStore(),
		loaded:        make(chan struct{}),
		release:       make(chan struct{}),
	}
	l, _ := logger.GetTestLogger(t)
	s := NewCachedPostStore(inner, c, time.Minute, l)

	post, err := s.Create(ctx, domain.CreatePost{
		Category: domain.CategoryBlog, Title: "old", Slug: "racing", Content: "c",
	})
	require.NoError(t, err)

	done := make(chan *domain.Post)
	go func() {
		got, err := s.FindByID(ctx, post.ID)
		assert.NoError(t, err)
		done <- got
	}()

	<-inner.loaded
	_, err = s.Update(ctx, domain.UpdatePost{
		ID: post.ID, Category: domain.CategoryBlog, Title: "new", Slug: "racing", Content: "c",
	})
	require.NoError(t, err)
	close(inner.release)

	stale := <-done
	require.NotNil(t, stale)
	assert.Equal(t, "old", stale.Title)

	got, err := s.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)

	got, err = s.FindBySlug(ctx, "racing")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
}

func TestCachedPostStore_WithTxIsUncached(t *testing.T) {
	ctx := context.Background()
	s, inner := setupCachedStore(t)
	post := createPost(t, s, "tx-post")

	_, err := s.FindByID(ctx, post.ID)
	require.NoError(t, err)

	txStore := s.WithTx(nil)
	assert.Same(t, inner, txStore)
	for range 2 {
		_, err := txStore.FindByID(ctx, post.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), inner.byID.Load())
}
