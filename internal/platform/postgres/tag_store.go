package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/folio-api/internal/domain"
	"github.com/phrazzld/folio-api/internal/platform/logger"
	"github.com/phrazzld/folio-api/internal/store"
)

// PostgresTagStore implements the store.TagStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTagStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTagStore creates a new PostgreSQL implementation of the TagStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTagStore(db store.DBTX, logger *slog.Logger) *PostgresTagStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTagStore{
		db:     db,
		logger: logger.With(slog.String("component", "tag_store")),
	}
}

// Ensure PostgresTagStore implements store.TagStore interface
var _ store.TagStore = (*PostgresTagStore)(nil)

// WithTx implements store.TagStore.WithTx
func (s *PostgresTagStore) WithTx(tx *sql.Tx) store.TagStore {
	return &PostgresTagStore{db: tx, logger: s.logger}
}

// Create implements store.TagStore.Create
func (s *PostgresTagStore) Create(ctx context.Context, name string) (tag *domain.Tag, err error) {
	ctx, end := startOperation(ctx, "tag", "create")
	defer end(&err)
	log := logger.FromContextOrDefault(ctx, s.logger)

	name = domain.NormalizeTagName(name)
	if err := domain.ValidateTagName(name); err != nil {
		log.Warn("tag validation failed during create",
			slog.String("error", err.Error()),
			slog.String("name", name))
		return nil, err
	}

	err = inTransaction(ctx, s.db, func(ctx context.Context, q store.DBTX) error {
		var scanErr error
		tag, scanErr = scanTag(q.QueryRowContext(ctx,
			`INSERT INTO tags (name) VALUES ($1) RETURNING id, name, created_at`, name))
		return scanErr
	})
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("tag name already in use", slog.String("name", name))
			return nil, store.NewDuplicateError(store.ErrTagNameExists, "Tag", name)
		}
		log.Error("failed to create tag",
			slog.String("error", err.Error()),
			slog.String("name", name))
		return nil, MapError(err, "tag", "create", "failed to insert tag")
	}

	log.Info("tag created successfully",
		slog.Int64("tag_id", tag.ID),
		slog.String("name", tag.Name))
	return tag, nil
}

// FindByID implements store.TagStore.FindByID
func (s *PostgresTagStore) FindByID(ctx context.Context, id int64) (tag *domain.Tag, err error) {
	ctx, end := startOperation(ctx, "tag", "find_by_id")
	defer end(&err)
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving tag by ID", slog.Int64("tag_id", id))

	tag, err = scanTag(s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM tags WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("tag not found", slog.Int64("tag_id", id))
			return nil, store.NewNotFoundError(store.ErrTagNotFound, "Tag", id)
		}
		log.Error("failed to get tag by ID",
			slog.String("error", err.Error()),
			slog.Int64("tag_id", id))
		return nil, MapError(err, "tag", "find_by_id", "failed to query tag")
	}
	return tag, nil
}

// FindByName implements store.TagStore.FindByName
// Names are stored trimmed, so the argument is trimmed before the exact match.
func (s *PostgresTagStore) FindByName(ctx context.Context, name string) (tag *domain.Tag, err error) {
	ctx, end := startOperation(ctx, "tag", "find_by_name")
	defer end(&err)
	log := logger.FromContextOrDefault(ctx, s.logger)

	name = domain.NormalizeTagName(name)
	log.Debug("retrieving tag by name", slog.String("name", name))

	tag, err = scanTag(s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM tags WHERE name = $1`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("tag not found", slog.String("name", name))
			return nil, store.NewNotFoundError(store.ErrTagNotFound, "Tag", name)
		}
		log.Error("failed to get tag by name",
			slog.String("error", err.Error()),
			slog.String("name", name))
		return nil, MapError(err, "tag", "find_by_name", "failed to query tag")
	}
	return tag, nil
}

// List implements store.TagStore.List
func (s *PostgresTagStore) List(ctx context.Context, includePostCount bool) (tags []domain.TagWithPostCount, err error) {
	ctx, end := startOperation(ctx, "tag", "list")
	defer end(&err)
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT id, name, created_at, 0::bigint AS post_count FROM tags ORDER BY name ASC`
	if includePostCount {
		// LEFT JOIN keeps tags with no associations at a count of zero.
		query = `
			SELECT t.id, t.name, t.created_at, COUNT(pt.post_id) AS post_count
			FROM tags t
			LEFT JOIN post_tags pt ON pt.tag_id = t.id
			GROUP BY t.id, t.name, t.created_at
			ORDER BY t.name ASC`
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list tags", slog.String("error", err.Error()))
		return nil, MapError(err, "tag", "list", "failed to query tags")
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	tags = []domain.TagWithPostCount{}
	for rows.Next() {
		var t domain.TagWithPostCount
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.PostCount); err != nil {
			log.Error("failed to scan tag row", slog.String("error", err.Error()))
			return nil, MapError(err, "tag", "list", "failed to scan tag")
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating tag rows", slog.String("error", err.Error()))
		return nil, MapError(err, "tag", "list", "failed to read tags")
	}

	log.Debug("tags listed",
		slog.Int("count", len(tags)),
		slog.Bool("include_post_count", includePostCount))
	return tags, nil
}

// Update implements store.TagStore.Update
func (s *PostgresTagStore) Update(ctx context.Context, id int64, name string) (tag *domain.Tag, err error) {
	ctx, end := startOperation(ctx, "tag", "update")
	defer end(&err)
	log := logger.FromContextOrDefault(ctx, s.logger)

	name = domain.NormalizeTagName(name)
	if err := domain.ValidateTagID(id); err != nil {
		log.Warn("invalid tag ID during update", slog.Int64("tag_id", id))
		return nil, err
	}
	if err := domain.ValidateTagName(name); err != nil {
		log.Warn("tag validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("tag_id", id))
		return nil, err
	}

	err = inTransaction(ctx, s.db, func(ctx context.Context, q store.DBTX) error {
		var scanErr error
		tag, scanErr = scanTag(q.QueryRowContext(ctx,
			`UPDATE tags SET name = $1 WHERE id = $2 RETURNING id, name, created_at`, name, id))
		return scanErr
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			log.Debug("tag not found for update", slog.Int64("tag_id", id))
			return nil, store.NewNotFoundError(store.ErrTagNotFound, "Tag", id)
		case IsUniqueViolation(err):
			log.Warn("tag name already in use",
				slog.Int64("tag_id", id),
				slog.String("name", name))
			return nil, store.NewDuplicateError(store.ErrTagNameExists, "Tag", name)
		}
		log.Error("failed to update tag",
			slog.String("error", err.Error()),
			slog.Int64("tag_id", id))
		return nil, MapError(err, "tag", "update", "failed to update tag")
	}

	log.Info("tag updated successfully",
		slog.Int64("tag_id", tag.ID),
		slog.String("name", tag.Name))
	return tag, nil
}

// Delete implements store.TagStore.Delete
func (s *PostgresTagStore) Delete(ctx context.Context, id int64) (err error) {
	ctx, end := startOperation(ctx, "tag", "delete")
	defer end(&err)
	log := logger.FromContextOrDefault(ctx, s.logger)

	err = inTransaction(ctx, s.db, func(ctx context.Context, q store.DBTX) error {
		result, err := q.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return CheckRowsAffected(result, store.NewNotFoundError(store.ErrTagNotFound, "Tag", id))
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("tag not found for deletion", slog.Int64("tag_id", id))
			return err
		}
		log.Error("failed to delete tag",
			slog.String("error", err.Error()),
			slog.Int64("tag_id", id))
		return MapError(err, "tag", "delete", "failed to delete tag")
	}

	log.Info("tag deleted successfully", slog.Int64("tag_id", id))
	return nil
}

// AddTagToPost implements store.TagStore.AddTagToPost
func (s *PostgresTagStore) AddTagToPost(ctx context.Context, postID, tagID int64) (err error) {
	ctx, end := startOperation(ctx, "post_tag", "add")
	defer end(&err)
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.Int64("post_id", postID),
		slog.Int64("tag_id", tagID))

	pair := associationID(postID, tagID)
	err = inTransaction(ctx, s.db, func(ctx context.Context, q store.DBTX) error {
		_, err := q.ExecContext(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)`, postID, tagID)
		return err
	})
	if err != nil {
		switch {
		case IsForeignKeyViolation(err):
			log.Warn("post or tag does not exist", slog.String("constraint", ConstraintName(err)))
			return store.NewNotFoundError(store.ErrPostOrTagNotFound, "Post or Tag", pair)
		case IsUniqueViolation(err):
			log.Warn("tag already associated with post")
			return store.NewDuplicateError(store.ErrPostTagExists, "Tag association", pair)
		}
		log.Error("failed to add tag to post", slog.String("error", err.Error()))
		return MapError(err, "post_tag", "add", "failed to insert association")
	}

	log.Info("tag added to post")
	return nil
}

// RemoveTagFromPost implements store.TagStore.RemoveTagFromPost
func (s *PostgresTagStore) RemoveTagFromPost(ctx context.Context, postID, tagID int64) (err error) {
	ctx, end := startOperation(ctx, "post_tag", "remove")
	defer end(&err)
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.Int64("post_id", postID),
		slog.Int64("tag_id", tagID))

	notFound := store.NewNotFoundError(store.ErrPostTagNotFound, "Tag association", associationID(postID, tagID))
	err = inTransaction(ctx, s.db, func(ctx context.Context, q store.DBTX) error {
		result, err := q.ExecContext(ctx,
			`DELETE FROM post_tags WHERE post_id = $1 AND tag_id = $2`, postID, tagID)
		if err != nil {
			return err
		}
		return CheckRowsAffected(result, notFound)
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("tag association not found")
			return err
		}
		log.Error("failed to remove tag from post", slog.String("error", err.Error()))
		return MapError(err, "post_tag", "remove", "failed to delete association")
	}

	log.Info("tag removed from post")
	return nil
}

// ListTagsForPost implements store.TagStore.ListTagsForPost
// The post's existence is not checked; a missing post simply has no tags.
func (s *PostgresTagStore) ListTagsForPost(ctx context.Context, postID int64) (tags []domain.Tag, err error) {
	ctx, end := startOperation(ctx, "post_tag", "list")
	defer end(&err)
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT t.id, t.name, t.created_at
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = $1
		ORDER BY t.name ASC`

	rows, err := s.db.QueryContext(ctx, query, postID)
	if err != nil {
		log.Error("failed to list tags for post",
			slog.String("error", err.Error()),
			slog.Int64("post_id", postID))
		return nil, MapError(err, "post_tag", "list", "failed to query tags for post")
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	tags = []domain.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			log.Error("failed to scan tag row", slog.String("error", err.Error()))
			return nil, MapError(err, "post_tag", "list", "failed to scan tag")
		}
		tags = append(tags, *tag)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating tag rows", slog.String("error", err.Error()))
		return nil, MapError(err, "post_tag", "list", "failed to read tags")
	}

	log.Debug("tags listed for post",
		slog.Int64("post_id", postID),
		slog.Int("count", len(tags)))
	return tags, nil
}

func associationID(postID, tagID int64) string {
	return fmt.Sprintf("%d, %d", postID, tagID)
}

func scanTag(row rowScanner) (*domain.Tag, error) {
	var t domain.Tag
	if err := row.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
