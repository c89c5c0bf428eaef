package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/phrazzld/folio-api/internal/domain"
	"github.com/phrazzld/folio-api/internal/platform/logger"
	"github.com/phrazzld/folio-api/internal/store"
)

// DefaultTTL bounds how long a cached post may be served.
const DefaultTTL = 5 * time.Minute

func idKey(id int64) string { return "post:id:" + strconv.FormatInt(id, 10) }

func slugKey(slug string) string { return "post:slug:" + slug }

// generationKey counts post mutations. A read caches what it loaded only if
// no mutation happened between its start and its cache write.
const generationKey = "post:generation"

// CachedPostStore decorates a store.PostStore with a read-through cache for
// FindByID and FindBySlug.
//
// Posts are cached under their id. The slug key only maps a slug to an id,
// and a lookup through it is trusted only when the cached post still carries
// that slug. Mutations therefore only need to drop the id key. They bump
// generationKey first, so a read that loaded the row before the mutation
// cannot write it back afterwards.
//
// Cache failures are logged and never surface to the caller.
type CachedPostStore struct {
	store.PostStore
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedPostStore wraps next. A non-positive ttl selects DefaultTTL.
func NewCachedPostStore(next store.PostStore, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedPostStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedPostStore{
		PostStore: next,
		cache:     cache,
		ttl:       ttl,
		logger:    logger.With(slog.String("component", "post_cache")),
	}
}

var _ store.PostStore = (*CachedPostStore)(nil)

// FindByID implements store.PostStore.FindByID
func (s *CachedPostStore) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	if post, ok := s.cachedPost(ctx, id); ok {
		return post, nil
	}

	gen, cacheable := s.generation(ctx)
	post, err := s.PostStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.remember(ctx, post, gen)
	}
	return post, nil
}

// FindBySlug implements store.PostStore.FindBySlug
func (s *CachedPostStore) FindBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	if id, ok := s.cachedID(ctx, slug); ok {
		if post, ok := s.cachedPost(ctx, id); ok && post.Slug == slug {
			return post, nil
		}
	}

	gen, cacheable := s.generation(ctx)
	post, err := s.PostStore.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.remember(ctx, post, gen)
	}
	return post, nil
}

// Update implements store.PostStore.Update
func (s *CachedPostStore) Update(ctx context.Context, input domain.UpdatePost) (*domain.Post, error) {
	post, err := s.PostStore.Update(ctx, input)
	if err == nil || store.KindOf(err) != store.KindValidation {
		s.invalidate(ctx, input.ID)
	}
	return post, err
}

// Patch implements store.PostStore.Patch
func (s *CachedPostStore) Patch(ctx context.Context, input domain.PatchPost) (*domain.Post, error) {
	post, err := s.PostStore.Patch(ctx, input)
	if err == nil || store.KindOf(err) != store.KindValidation {
		s.invalidate(ctx, input.ID)
	}
	return post, err
}

// Delete implements store.PostStore.Delete
func (s *CachedPostStore) Delete(ctx context.Context, id int64) error {
	err := s.PostStore.Delete(ctx, id)
	s.invalidate(ctx, id)
	return err
}

// WithTx returns the underlying store bound to tx. Transactional reads and
// writes skip the cache.
func (s *CachedPostStore) WithTx(tx *sql.Tx) store.PostStore {
	return s.PostStore.WithTx(tx)
}

func (s *CachedPostStore) cachedPost(ctx context.Context, id int64) (*domain.Post, bool) {
	data, ok := s.get(ctx, idKey(id))
	if !ok {
		return nil, false
	}
	var post domain.Post
	if err := json.Unmarshal(data, &post); err != nil {
		s.log(ctx).Warn("discarding undecodable cached post",
			slog.Int64("post_id", id),
			slog.String("error", err.Error()))
		return nil, false
	}
	return &post, true
}

func (s *CachedPostStore) cachedID(ctx context.Context, slug string) (int64, bool) {
	data, ok := s.get(ctx, slugKey(slug))
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (s *CachedPostStore) get(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.log(ctx).Warn("cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		return nil, false
	}
	return data, true
}

// generation reads the mutation counter before a load. It reports false
// when the counter is unreadable, in which case the load is not cached.
func (s *CachedPostStore) generation(ctx context.Context) (string, bool) {
	data, err := s.cache.Get(ctx, generationKey)
	switch {
	case errors.Is(err, ErrCacheMiss):
		return "0", true
	case err != nil:
		s.log(ctx).Warn("cache read failed",
			slog.String("key", generationKey),
			slog.String("error", err.Error()))
		return "", false
	}
	return string(data), true
}

func (s *CachedPostStore) remember(ctx context.Context, post *domain.Post, gen string) {
	data, err := json.Marshal(post)
	if err != nil {
		return
	}

	key := idKey(post.ID)
	stored, err := s.cache.SetIfEqual(ctx, key, data, s.ttl, generationKey, gen)
	if err != nil {
		s.log(ctx).Warn("cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return
	}
	if !stored {
		s.log(ctx).Debug("post changed while loading, not cached",
			slog.Int64("post_id", post.ID))
		return
	}

	key = slugKey(post.Slug)
	if err := s.cache.Set(ctx, key, []byte(strconv.FormatInt(post.ID, 10)), s.ttl); err != nil {
		s.log(ctx).Warn("cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

// invalidate runs after the mutation committed. The generation bump must
// precede the delete.
func (s *CachedPostStore) invalidate(ctx context.Context, id int64) {
	if _, err := s.cache.Incr(ctx, generationKey); err != nil {
		s.log(ctx).Warn("cache invalidation failed",
			slog.String("key", generationKey),
			slog.String("error", err.Error()))
	}
	if err := s.cache.Delete(ctx, idKey(id)); err != nil {
		s.log(ctx).Warn("cache invalidation failed",
			slog.Int64("post_id", id),
			slog.String("error", err.Error()))
	}
}

func (s *CachedPostStore) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}
