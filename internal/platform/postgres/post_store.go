package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/folio-api/internal/domain"
	"github.com/phrazzld/folio-api/internal/platform/logger"
	"github.com/phrazzld/folio-api/internal/store"
)

const postColumns = `id, category, title, slug, content, description, image_url, external_url, published, created_at, updated_at`

// updated_at must strictly increase even when two writes land in the same
// clock tick.
const bumpUpdatedAt = `updated_at = GREATEST(clock_timestamp(), updated_at + interval '1 microsecond')`

// PostgresPostStore implements the store.PostStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPostStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPostStore creates a new PostgreSQL implementation of the PostStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresPostStore(db store.DBTX, logger *slog.Logger) *PostgresPostStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPostStore{
		db:     db,
		logger: logger.With(slog.String("component", "post_store")),
	}
}

// Ensure PostgresPostStore implements store.PostStore interface
var _ store.PostStore = (*PostgresPostStore)(nil)

// WithTx implements store.PostStore.WithTx
func (s *PostgresPostStore) WithTx(tx *sql.Tx) store.PostStore {
	return &PostgresPostStore{db: tx, logger: s.logger}
}

// Create implements store.PostStore.Create
func (s *PostgresPostStore) Create(ctx context.Context, input domain.CreatePost) (post *domain.Post, err error) {
	ctx, end := startOperation(ctx, "post", "create")
	defer end(&err)
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := input.Validate(); err != nil {
		log.Warn("post validation failed during create",
			slog.String("error", err.Error()),
			slog.String("slug", input.Slug))
		return nil, err
	}

	query := `
		INSERT INTO posts (category, title, slug, content, description, image_url, external_url, published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + postColumns

	err = inTransaction(ctx, s.db, func(ctx context.Context, q store.DBTX) error {
		row := q.QueryRowContext(ctx, query,
			input.Category,
			input.Title,
			input.Slug,
			input.Content,
			input.Description,
			input.ImageURL,
			input.ExternalURL,
			input.Published,
		)
		var scanErr error
		post, scanErr = scanPost(row)
		return scanErr
	})
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("slug already in use",
				slog.String("slug", input.Slug),
				slog.String("constraint", ConstraintName(err)))
			return nil, store.NewDuplicateError(store.ErrSlugExists, "Post", input.Slug)
		}
		log.Error("failed to create post",
			slog.String("error", err.Error()),
			slog.String("slug", input.Slug))
		return nil, MapError(err, "post", "create", "failed to insert post")
	}

	log.Info("post created successfully",
		slog.Int64("post_id", post.ID),
		slog.String("slug", post.Slug),
		slog.String("category", post.Category.String()))
	return post, nil
}

// FindByID implements store.PostStore.FindByID
func (s *PostgresPostStore) FindByID(ctx context.Context, id int64) (post *domain.Post, err error) {
	ctx, end := startOperation(ctx, "post", "find_by_id")
	defer end(&err)
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving post by ID", slog.Int64("post_id", id))

	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err = scanPost(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("post not found", slog.Int64("post_id", id))
			return nil, store.NewNotFoundError(store.ErrPostNotFound, "Post", id)
		}
		log.Error("failed to get post by ID",
			slog.String("error", err.Error()),
			slog.Int64("post_id", id))
		return nil, MapError(err, "post", "find_by_id", "failed to query post")
	}

	return post, nil
}

// FindBySlug implements store.PostStore.FindBySlug
func (s *PostgresPostStore) FindBySlug(ctx context.Context, slug string) (post *domain.Post, err error) {
	ctx, end := startOperation(ctx, "post", "find_by_slug")
	defer end(&err)
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving post by slug", slog.String("slug", slug))

	query := `SELECT ` + postColumns + ` FROM posts WHERE slug = $1`
	post, err = scanPost(s.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("post not found", slog.String("slug", slug))
			return nil, store.NewNotFoundError(store.ErrPostNotFound, "Post", slug)
		}
		log.Error("failed to get post by slug",
			slog.String("error", err.Error()),
			slog.String("slug", slug))
		return nil, MapError(err, "post", "find_by_slug", "failed to query post")
	}

	return post, nil
}

// List implements store.PostStore.List
func (s *PostgresPostStore) List(ctx context.Context, filter domain.ListPostsFilter) (posts []domain.Post, err error) {
	ctx, end := startOperation(ctx, "post", "list")
	defer end(&err)
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := filter.Validate(); err != nil {
		log.Warn("invalid post list filter",
			slog.String("error", err.Error()),
			slog.Int("limit", filter.Limit),
			slog.Int("offset", filter.Offset))
		return nil, err
	}

	query, args := buildListPostsQuery(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, MapError(err, "post", "list", "failed to query posts")
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	posts = make([]domain.Post, 0, filter.Limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			log.Error("failed to scan post row", slog.String("error", err.Error()))
			return nil, MapError(err, "post", "list", "failed to scan post")
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating post rows", slog.String("error", err.Error()))
		return nil, MapError(err, "post", "list", "failed to read posts")
	}

	log.Debug("posts listed",
		slog.Int("count", len(posts)),
		slog.Int("limit", filter.Limit),
		slog.Int("offset", filter.Offset))
	return posts, nil
}

func buildListPostsQuery(filter domain.ListPostsFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	if filter.Category != nil {
		args = append(args, *filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.PublishedOnly {
		conditions = append(conditions, "published = TRUE")
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + postColumns + ` FROM posts`)
	if len(conditions) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}
	args = append(args, filter.Limit, filter.Offset)
	fmt.Fprintf(&b, " ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return b.String(), args
}

// Update implements store.PostStore.Update
func (s *PostgresPostStore) Update(ctx context.Context, input domain.UpdatePost) (post *domain.Post, err error) {
	ctx, end := startOperation(ctx, "post", "update")
	defer end(&err)
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := input.Validate(); err != nil {
		log.Warn("post validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("post_id", input.ID))
		return nil, err
	}

	replacement := domain.Post{
		ID:          input.ID,
		Category:    input.Category,
		Title:       input.Title,
		Slug:        input.Slug,
		Content:     input.Content,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		ExternalURL: input.ExternalURL,
		Published:   input.Published,
	}

	err = inTransaction(ctx, s.db, func(ctx context.Context, q store.DBTX) error {
		var writeErr error
		post, writeErr = writePost(ctx, q, replacement)
		return writeErr
	})
	if err != nil {
		return nil, s.mutationError(log, err, "update", input.ID, input.Slug)
	}

	log.Info("post updated successfully",
		slog.Int64("post_id", post.ID),
		slog.String("slug", post.Slug))
	return post, nil
}

// Patch implements store.PostStore.Patch
// The current row is read with FOR UPDATE inside the same transaction as the
// write, so concurrent patches of one post serialize instead of losing updates.
func (s *PostgresPostStore) Patch(ctx context.Context, input domain.PatchPost) (post *domain.Post, err error) {
	ctx, end := startOperation(ctx, "post", "patch")
	defer end(&err)
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := input.Validate(); err != nil {
		log.Warn("post validation failed during patch",
			slog.String("error", err.Error()),
			slog.Int64("post_id", input.ID))
		return nil, err
	}
	if input.IsEmpty() {
		log.Debug("patch carries no field changes, only updated_at moves",
			slog.Int64("post_id", input.ID))
	}

	err = inTransaction(ctx, s.db, func(ctx context.Context, q store.DBTX) error {
		query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 FOR UPDATE`
		current, err := scanPost(q.QueryRowContext(ctx, query, input.ID))
		if err != nil {
			return err
		}

		post, err = writePost(ctx, q, input.Apply(*current))
		return err
	})
	if err != nil {
		slug := ""
		if input.Slug != nil {
			slug = *input.Slug
		}
		return nil, s.mutationError(log, err, "patch", input.ID, slug)
	}

	log.Info("post patched successfully",
		slog.Int64("post_id", post.ID),
		slog.String("slug", post.Slug))
	return post, nil
}

// writePost replaces every mutable column of p.ID and returns the new row.
func writePost(ctx context.Context, q store.DBTX, p domain.Post) (*domain.Post, error) {
	query := `
		UPDATE posts
		SET category = $1, title = $2, slug = $3, content = $4, description = $5,
			image_url = $6, external_url = $7, published = $8, ` + bumpUpdatedAt + `
		WHERE id = $9
		RETURNING ` + postColumns

	return scanPost(q.QueryRowContext(ctx, query,
		p.Category,
		p.Title,
		p.Slug,
		p.Content,
		p.Description,
		p.ImageURL,
		p.ExternalURL,
		p.Published,
		p.ID,
	))
}

func (s *PostgresPostStore) mutationError(log *slog.Logger, err error, op string, id int64, slug string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		log.Debug("post not found", slog.Int64("post_id", id), slog.String("operation", op))
		return store.NewNotFoundError(store.ErrPostNotFound, "Post", id)
	case IsUniqueViolation(err):
		log.Warn("slug already in use",
			slog.Int64("post_id", id),
			slog.String("slug", slug),
			slog.String("operation", op))
		return store.NewDuplicateError(store.ErrSlugExists, "Post", slug)
	default:
		log.Error("failed to "+op+" post",
			slog.String("error", err.Error()),
			slog.Int64("post_id", id))
		return MapError(err, "post", op, "failed to write post")
	}
}

// Delete implements store.PostStore.Delete
// Associations are removed by the post_tags foreign key cascade.
func (s *PostgresPostStore) Delete(ctx context.Context, id int64) (err error) {
	ctx, end := startOperation(ctx, "post", "delete")
	defer end(&err)
	log := logger.FromContextOrDefault(ctx, s.logger)

	err = inTransaction(ctx, s.db, func(ctx context.Context, q store.DBTX) error {
		result, err := q.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return CheckRowsAffected(result, store.NewNotFoundError(store.ErrPostNotFound, "Post", id))
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("post not found for deletion", slog.Int64("post_id", id))
			return err
		}
		log.Error("failed to delete post",
			slog.String("error", err.Error()),
			slog.Int64("post_id", id))
		return MapError(err, "post", "delete", "failed to delete post")
	}

	log.Info("post deleted successfully", slog.Int64("post_id", id))
	return nil
}

func scanPost(row rowScanner) (*domain.Post, error) {
	var p domain.Post
	err := row.Scan(
		&p.ID,
		&p.Category,
		&p.Title,
		&p.Slug,
		&p.Content,
		&p.Description,
		&p.ImageURL,
		&p.ExternalURL,
		&p.Published,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
