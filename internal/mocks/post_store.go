package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/folio-api/internal/domain"
	"github.com/phrazzld/folio-api/internal/store"
)

// MockPostStore implements store.PostStore for testing.
//
// Each method calls its Fn field when set. Otherwise it falls back to an
// in-memory implementation that enforces the same validation, uniqueness and
// not-found rules as the PostgreSQL store.
type MockPostStore struct {
	CreateFn     func(ctx context.Context, input domain.CreatePost) (*domain.Post, error)
	FindByIDFn   func(ctx context.Context, id int64) (*domain.Post, error)
	FindBySlugFn func(ctx context.Context, slug string) (*domain.Post, error)
	ListFn       func(ctx context.Context, filter domain.ListPostsFilter) ([]domain.Post, error)
	UpdateFn     func(ctx context.Context, input domain.UpdatePost) (*domain.Post, error)
	PatchFn      func(ctx context.Context, input domain.PatchPost) (*domain.Post, error)
	DeleteFn     func(ctx context.Context, id int64) error

	// OnDelete, when set, is called after the default Delete removes a post.
	// MockTagStore uses it to cascade associations.
	OnDelete func(id int64)

	mu     sync.Mutex
	posts  map[int64]domain.Post
	nextID int64
	now    func() time.Time
}

// NewMockPostStore creates an empty in-memory post store.
func NewMockPostStore() *MockPostStore {
	return &MockPostStore{
		posts: make(map[int64]domain.Post),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

var _ store.PostStore = (*MockPostStore)(nil)

// Create implements store.PostStore.Create
func (m *MockPostStore) Create(ctx context.Context, input domain.CreatePost) (*domain.Post, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, input)
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugTaken(input.Slug, 0) {
		return nil, store.NewDuplicateError(store.ErrSlugExists, "Post", input.Slug)
	}

	m.nextID++
	now := m.now()
	post := domain.Post{
		ID:          m.nextID,
		Category:    input.Category,
		Title:       input.Title,
		Slug:        input.Slug,
		Content:     input.Content,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		ExternalURL: input.ExternalURL,
		Published:   input.Published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.posts[post.ID] = post
	return &post, nil
}

// FindByID implements store.PostStore.FindByID
func (m *MockPostStore) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[id]
	if !ok {
		return nil, store.NewNotFoundError(store.ErrPostNotFound, "Post", id)
	}
	return &post, nil
}

// FindBySlug implements store.PostStore.FindBySlug
func (m *MockPostStore) FindBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	if m.FindBySlugFn != nil {
		return m.FindBySlugFn(ctx, slug)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, post := range m.posts {
		if post.Slug == slug {
			return &post, nil
		}
	}
	return nil, store.NewNotFoundError(store.ErrPostNotFound, "Post", slug)
}

// List implements store.PostStore.List
func (m *MockPostStore) List(ctx context.Context, filter domain.ListPostsFilter) ([]domain.Post, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	matched := make([]domain.Post, 0, len(m.posts))
	for _, post := range m.posts {
		if filter.Category != nil && post.Category != *filter.Category {
			continue
		}
		if filter.PublishedOnly && !post.Published {
			continue
		}
		matched = append(matched, post)
	}
	m.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if filter.Offset >= len(matched) {
		return []domain.Post{}, nil
	}
	end := min(filter.Offset+filter.Limit, len(matched))
	return matched[filter.Offset:end], nil
}

// Update implements store.PostStore.Update
func (m *MockPostStore) Update(ctx context.Context, input domain.UpdatePost) (*domain.Post, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, input)
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.posts[input.ID]
	if !ok {
		return nil, store.NewNotFoundError(store.ErrPostNotFound, "Post", input.ID)
	}

	current.Category = input.Category
	current.Title = input.Title
	current.Slug = input.Slug
	current.Content = input.Content
	current.Description = input.Description
	current.ImageURL = input.ImageURL
	current.ExternalURL = input.ExternalURL
	current.Published = input.Published
	return m.save(current)
}

// Patch implements store.PostStore.Patch
func (m *MockPostStore) Patch(ctx context.Context, input domain.PatchPost) (*domain.Post, error) {
	if m.PatchFn != nil {
		return m.PatchFn(ctx, input)
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.posts[input.ID]
	if !ok {
		return nil, store.NewNotFoundError(store.ErrPostNotFound, "Post", input.ID)
	}
	return m.save(input.Apply(current))
}

// Delete implements store.PostStore.Delete
func (m *MockPostStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	_, ok := m.posts[id]
	delete(m.posts, id)
	m.mu.Unlock()

	if !ok {
		return store.NewNotFoundError(store.ErrPostNotFound, "Post", id)
	}
	if m.OnDelete != nil {
		m.OnDelete(id)
	}
	return nil
}

// WithTx returns the receiver. The in-memory store has no transactions.
func (m *MockPostStore) WithTx(tx *sql.Tx) store.PostStore {
	return m
}

// Exists reports whether a post with id is stored.
func (m *MockPostStore) Exists(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.posts[id]
	return ok
}

// save stores post with a strictly increasing UpdatedAt. Callers hold mu.
func (m *MockPostStore) save(post domain.Post) (*domain.Post, error) {
	if m.slugTaken(post.Slug, post.ID) {
		return nil, store.NewDuplicateError(store.ErrSlugExists, "Post", post.Slug)
	}
	now := m.now()
	if !now.After(post.UpdatedAt) {
		now = post.UpdatedAt.Add(time.Microsecond)
	}
	post.UpdatedAt = now
	m.posts[post.ID] = post
	return &post, nil
}

func (m *MockPostStore) slugTaken(slug string, exceptID int64) bool {
	for id, post := range m.posts {
		if id != exceptID && post.Slug == slug {
			return true
		}
	}
	return false
}
