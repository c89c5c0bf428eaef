package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/folio-api/internal/domain"
)

// PostStore defines the interface for post persistence.
type PostStore interface {
	// Create validates and inserts a new post, returning the stored record
	// with its generated ID and timestamps.
	// Returns ErrSlugExists if another post already uses the slug.
	Create(ctx context.Context, input domain.CreatePost) (*domain.Post, error)

	// FindByID retrieves a post by its ID.
	// Returns ErrPostNotFound if the post does not exist.
	FindByID(ctx context.Context, id int64) (*domain.Post, error)

	// FindBySlug retrieves a post by its slug.
	// Returns ErrPostNotFound if the post does not exist.
	FindBySlug(ctx context.Context, slug string) (*domain.Post, error)

	// List returns a page of posts ordered newest first.
	// Returns an empty slice if no posts match.
	List(ctx context.Context, filter domain.ListPostsFilter) ([]domain.Post, error)

	// Update replaces every mutable field of an existing post.
	// Returns ErrPostNotFound or ErrSlugExists.
	Update(ctx context.Context, input domain.UpdatePost) (*domain.Post, error)

	// Patch merges the present fields of input onto the stored post within
	// one transaction. Returns ErrPostNotFound or ErrSlugExists.
	Patch(ctx context.Context, input domain.PatchPost) (*domain.Post, error)

	// Delete removes a post and, by cascade, all of its tag associations.
	// Returns ErrPostNotFound if the post does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a PostStore that runs every statement on tx.
	// Operations that would open their own transaction use tx instead,
	// leaving commit and rollback to the caller.
	WithTx(tx *sql.Tx) PostStore
}
