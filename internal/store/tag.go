package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/folio-api/internal/domain"
)

// TagStore defines the interface for tag persistence and post/tag associations.
type TagStore interface {
	// Create trims and validates name, then inserts a new tag.
	// Returns ErrTagNameExists if the trimmed name is taken.
	Create(ctx context.Context, name string) (*domain.Tag, error)

	// FindByID retrieves a tag by its ID.
	// Returns ErrTagNotFound if the tag does not exist.
	FindByID(ctx context.Context, id int64) (*domain.Tag, error)

	// FindByName retrieves a tag by its exact (trimmed) name.
	// Returns ErrTagNotFound if the tag does not exist.
	FindByName(ctx context.Context, name string) (*domain.Tag, error)

	// List returns every tag ordered by name. When includePostCount is false
	// each PostCount is zero.
	List(ctx context.Context, includePostCount bool) ([]domain.TagWithPostCount, error)

	// Update renames a tag. Returns ErrTagNotFound or ErrTagNameExists.
	Update(ctx context.Context, id int64, name string) (*domain.Tag, error)

	// Delete removes a tag and, by cascade, all of its associations.
	// Returns ErrTagNotFound if the tag does not exist.
	Delete(ctx context.Context, id int64) error

	// AddTagToPost links a tag to a post.
	// Returns ErrPostOrTagNotFound if either side is missing and
	// ErrPostTagExists if the link already exists.
	AddTagToPost(ctx context.Context, postID, tagID int64) error

	// RemoveTagFromPost unlinks a tag from a post.
	// Returns ErrPostTagNotFound if no such link existed.
	RemoveTagFromPost(ctx context.Context, postID, tagID int64) error

	// ListTagsForPost returns the tags linked to a post, ordered by name.
	// A post with no tags, or no such post, yields an empty slice.
	ListTagsForPost(ctx context.Context, postID int64) ([]domain.Tag, error)

	// WithTx returns a TagStore that runs every statement on tx.
	WithTx(tx *sql.Tx) TagStore
}
