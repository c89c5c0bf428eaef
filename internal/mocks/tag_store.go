package mocks

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/folio-api/internal/domain"
	"github.com/phrazzld/folio-api/internal/store"
)

type postTag struct {
	postID, tagID int64
}

// MockTagStore implements store.TagStore for testing.
//
// Like MockPostStore, each Fn field overrides one method and the default
// behaviour is an in-memory store. When Posts is set, AddTagToPost checks
// that the post exists and deleting a post cascades its associations.
type MockTagStore struct {
	CreateFn            func(ctx context.Context, name string) (*domain.Tag, error)
	FindByIDFn          func(ctx context.Context, id int64) (*domain.Tag, error)
	FindByNameFn        func(ctx context.Context, name string) (*domain.Tag, error)
	ListFn              func(ctx context.Context, includePostCount bool) ([]domain.TagWithPostCount, error)
	UpdateFn            func(ctx context.Context, id int64, name string) (*domain.Tag, error)
	DeleteFn            func(ctx context.Context, id int64) error
	AddTagToPostFn      func(ctx context.Context, postID, tagID int64) error
	RemoveTagFromPostFn func(ctx context.Context, postID, tagID int64) error
	ListTagsForPostFn   func(ctx context.Context, postID int64) ([]domain.Tag, error)

	Posts *MockPostStore

	mu     sync.Mutex
	tags   map[int64]domain.Tag
	links  map[postTag]struct{}
	nextID int64
}

// NewMockTagStore creates an empty in-memory tag store. posts may be nil.
func NewMockTagStore(posts *MockPostStore) *MockTagStore {
	m := &MockTagStore{
		Posts: posts,
		tags:  make(map[int64]domain.Tag),
		links: make(map[postTag]struct{}),
	}
	if posts != nil {
		posts.OnDelete = m.dropPost
	}
	return m
}

var _ store.TagStore = (*MockTagStore)(nil)

// Create implements store.TagStore.Create
func (m *MockTagStore) Create(ctx context.Context, name string) (*domain.Tag, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, name)
	}
	name = domain.NormalizeTagName(name)
	if err := domain.ValidateTagName(name); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nameTaken(name, 0) {
		return nil, store.NewDuplicateError(store.ErrTagNameExists, "Tag", name)
	}
	m.nextID++
	tag := domain.Tag{ID: m.nextID, Name: name, CreatedAt: time.Now().UTC()}
	m.tags[tag.ID] = tag
	return &tag, nil
}

// FindByID implements store.TagStore.FindByID
func (m *MockTagStore) FindByID(ctx context.Context, id int64) (*domain.Tag, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tag, ok := m.tags[id]
	if !ok {
		return nil, store.NewNotFoundError(store.ErrTagNotFound, "Tag", id)
	}
	return &tag, nil
}

// FindByName implements store.TagStore.FindByName
func (m *MockTagStore) FindByName(ctx context.Context, name string) (*domain.Tag, error) {
	if m.FindByNameFn != nil {
		return m.FindByNameFn(ctx, name)
	}
	name = domain.NormalizeTagName(name)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tag := range m.tags {
		if tag.Name == name {
			return &tag, nil
		}
	}
	return nil, store.NewNotFoundError(store.ErrTagNotFound, "Tag", name)
}

// List implements store.TagStore.List
func (m *MockTagStore) List(ctx context.Context, includePostCount bool) ([]domain.TagWithPostCount, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, includePostCount)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.TagWithPostCount, 0, len(m.tags))
	for _, tag := range m.tags {
		item := domain.TagWithPostCount{Tag: tag}
		if includePostCount {
			for link := range m.links {
				if link.tagID == tag.ID {
					item.PostCount++
				}
			}
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Update implements store.TagStore.Update
func (m *MockTagStore) Update(ctx context.Context, id int64, name string) (*domain.Tag, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, name)
	}
	if err := domain.ValidateTagID(id); err != nil {
		return nil, err
	}
	name = domain.NormalizeTagName(name)
	if err := domain.ValidateTagName(name); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tag, ok := m.tags[id]
	if !ok {
		return nil, store.NewNotFoundError(store.ErrTagNotFound, "Tag", id)
	}
	if m.nameTaken(name, id) {
		return nil, store.NewDuplicateError(store.ErrTagNameExists, "Tag", name)
	}
	tag.Name = name
	m.tags[id] = tag
	return &tag, nil
}

// Delete implements store.TagStore.Delete
func (m *MockTagStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tags[id]; !ok {
		return store.NewNotFoundError(store.ErrTagNotFound, "Tag", id)
	}
	delete(m.tags, id)
	for link := range m.links {
		if link.tagID == id {
			delete(m.links, link)
		}
	}
	return nil
}

// AddTagToPost implements store.TagStore.AddTagToPost
func (m *MockTagStore) AddTagToPost(ctx context.Context, postID, tagID int64) error {
	if m.AddTagToPostFn != nil {
		return m.AddTagToPostFn(ctx, postID, tagID)
	}
	pair := fmt.Sprintf("%d, %d", postID, tagID)

	postExists := m.Posts == nil || m.Posts.Exists(postID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tags[tagID]; !ok || !postExists {
		return store.NewNotFoundError(store.ErrPostOrTagNotFound, "Post or Tag", pair)
	}
	link := postTag{postID: postID, tagID: tagID}
	if _, ok := m.links[link]; ok {
		return store.NewDuplicateError(store.ErrPostTagExists, "Tag association", pair)
	}
	m.links[link] = struct{}{}
	return nil
}

// RemoveTagFromPost implements store.TagStore.RemoveTagFromPost
func (m *MockTagStore) RemoveTagFromPost(ctx context.Context, postID, tagID int64) error {
	if m.RemoveTagFromPostFn != nil {
		return m.RemoveTagFromPostFn(ctx, postID, tagID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	link := postTag{postID: postID, tagID: tagID}
	if _, ok := m.links[link]; !ok {
		return store.NewNotFoundError(store.ErrPostTagNotFound, "Tag association",
			fmt.Sprintf("%d, %d", postID, tagID))
	}
	delete(m.links, link)
	return nil
}

// ListTagsForPost implements store.TagStore.ListTagsForPost
func (m *MockTagStore) ListTagsForPost(ctx context.Context, postID int64) ([]domain.Tag, error) {
	if m.ListTagsForPostFn != nil {
		return m.ListTagsForPostFn(ctx, postID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Tag{}
	for link := range m.links {
		if link.postID == postID {
			out = append(out, m.tags[link.tagID])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// WithTx returns the receiver.
func (m *MockTagStore) WithTx(tx *sql.Tx) store.TagStore {
	return m
}

func (m *MockTagStore) dropPost(postID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for link := range m.links {
		if link.postID == postID {
			delete(m.links, link)
		}
	}
}

func (m *MockTagStore) nameTaken(name string, exceptID int64) bool {
	for id, tag := range m.tags {
		if id != exceptID && tag.Name == name {
			return true
		}
	}
	return false
}
