package events

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/folio-api/internal/domain"
	"github.com/phrazzld/folio-api/internal/platform/logger"
	"github.com/phrazzld/folio-api/internal/store"
)

// PostDeletedPayload is the payload of a post.deleted event.
type PostDeletedPayload struct {
	ID int64 `json:"id"`
}

// TagDeletedPayload is the payload of a tag.deleted event.
type TagDeletedPayload struct {
	ID int64 `json:"id"`
}

// PostTagPayload is the payload of post_tag.added and post_tag.removed events.
type PostTagPayload struct {
	PostID int64 `json:"post_id"`
	TagID  int64 `json:"tag_id"`
}

// emit builds and sends an event. Failures are logged, not returned: the
// mutation has already committed and must still be reported as a success.
func emit(ctx context.Context, emitter EventEmitter, fallback *slog.Logger, eventType, key string, payload any) {
	log := logger.FromContextOrDefault(ctx, fallback)

	event, err := NewContentEvent(eventType, key, payload)
	if err != nil {
		log.Error("failed to build content event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return
	}
	if err := emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit content event",
			slog.String("event_type", eventType),
			slog.String("event_key", key),
			slog.String("error", err.Error()))
	}
}

func postKey(id int64) string { return fmt.Sprintf("post:%d", id) }

func tagKey(id int64) string { return fmt.Sprintf("tag:%d", id) }

func postTagKey(postID, tagID int64) string { return fmt.Sprintf("post_tag:%d:%d", postID, tagID) }

// PublishingPostStore decorates a store.PostStore, emitting an event after
// each successful mutation. Reads pass straight through.
type PublishingPostStore struct {
	store.PostStore
	emitter EventEmitter
	logger  *slog.Logger
}

// NewPublishingPostStore wraps next.
func NewPublishingPostStore(next store.PostStore, emitter EventEmitter, logger *slog.Logger) *PublishingPostStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishingPostStore{
		PostStore: next,
		emitter:   emitter,
		logger:    logger.With(slog.String("component", "post_events")),
	}
}

var _ store.PostStore = (*PublishingPostStore)(nil)

// Create implements store.PostStore.Create
func (s *PublishingPostStore) Create(ctx context.Context, input domain.CreatePost) (*domain.Post, error) {
	post, err := s.PostStore.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	emit(ctx, s.emitter, s.logger, PostCreated, postKey(post.ID), post)
	return post, nil
}

// Update implements store.PostStore.Update
func (s *PublishingPostStore) Update(ctx context.Context, input domain.UpdatePost) (*domain.Post, error) {
	post, err := s.PostStore.Update(ctx, input)
	if err != nil {
		return nil, err
	}
	emit(ctx, s.emitter, s.logger, PostUpdated, postKey(post.ID), post)
	return post, nil
}

// Patch implements store.PostStore.Patch
func (s *PublishingPostStore) Patch(ctx context.Context, input domain.PatchPost) (*domain.Post, error) {
	post, err := s.PostStore.Patch(ctx, input)
	if err != nil {
		return nil, err
	}
	emit(ctx, s.emitter, s.logger, PostUpdated, postKey(post.ID), post)
	return post, nil
}

// Delete implements store.PostStore.Delete
func (s *PublishingPostStore) Delete(ctx context.Context, id int64) error {
	if err := s.PostStore.Delete(ctx, id); err != nil {
		return err
	}
	emit(ctx, s.emitter, s.logger, PostDeleted, postKey(id), PostDeletedPayload{ID: id})
	return nil
}

// WithTx returns the undecorated transactional store. Nothing is committed
// until the caller commits, so events cannot be emitted on its behalf.
func (s *PublishingPostStore) WithTx(tx *sql.Tx) store.PostStore {
	return s.PostStore.WithTx(tx)
}

// PublishingTagStore decorates a store.TagStore, emitting an event after
// each successful mutation.
type PublishingTagStore struct {
	store.TagStore
	emitter EventEmitter
	logger  *slog.Logger
}

// NewPublishingTagStore wraps next.
func NewPublishingTagStore(next store.TagStore, emitter EventEmitter, logger *slog.Logger) *PublishingTagStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishingTagStore{
		TagStore: next,
		emitter:  emitter,
		logger:   logger.With(slog.String("component", "tag_events")),
	}
}

var _ store.TagStore = (*PublishingTagStore)(nil)

// Create implements store.TagStore.Create
func (s *PublishingTagStore) Create(ctx context.Context, name string) (*domain.Tag, error) {
	tag, err := s.TagStore.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	emit(ctx, s.emitter, s.logger, TagCreated, tagKey(tag.ID), tag)
	return tag, nil
}

// Update implements store.TagStore.Update
func (s *PublishingTagStore) Update(ctx context.Context, id int64, name string) (*domain.Tag, error) {
	tag, err := s.TagStore.Update(ctx, id, name)
	if err != nil {
		return nil, err
	}
	emit(ctx, s.emitter, s.logger, TagUpdated, tagKey(tag.ID), tag)
	return tag, nil
}

// Delete implements store.TagStore.Delete
func (s *PublishingTagStore) Delete(ctx context.Context, id int64) error {
	if err := s.TagStore.Delete(ctx, id); err != nil {
		return err
	}
	emit(ctx, s.emitter, s.logger, TagDeleted, tagKey(id), TagDeletedPayload{ID: id})
	return nil
}

// AddTagToPost implements store.TagStore.AddTagToPost
func (s *PublishingTagStore) AddTagToPost(ctx context.Context, postID, tagID int64) error {
	if err := s.TagStore.AddTagToPost(ctx, postID, tagID); err != nil {
		return err
	}
	emit(ctx, s.emitter, s.logger, PostTagAdded, postTagKey(postID, tagID),
		PostTagPayload{PostID: postID, TagID: tagID})
	return nil
}

// RemoveTagFromPost implements store.TagStore.RemoveTagFromPost
func (s *PublishingTagStore) RemoveTagFromPost(ctx context.Context, postID, tagID int64) error {
	if err := s.TagStore.RemoveTagFromPost(ctx, postID, tagID); err != nil {
		return err
	}
	emit(ctx, s.emitter, s.logger, PostTagRemoved, postTagKey(postID, tagID),
		PostTagPayload{PostID: postID, TagID: tagID})
	return nil
}

// WithTx returns the undecorated transactional store.
func (s *PublishingTagStore) WithTx(tx *sql.Tx) store.TagStore {
	return s.TagStore.WithTx(tx)
}
