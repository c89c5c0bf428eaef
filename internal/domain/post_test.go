package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func validCreatePost() CreatePost {
	return CreatePost{
		Category:    CategoryBlog,
		Title:       "Hello",
		Slug:        "hello-world",
		Content:     "Body text",
		Description: "A first post",
		Published:   true,
	}
}

func TestIsValidSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		slug string
		want bool
	}{
		{"hello", true},
		{"hello-world", true},
		{"Post-2024-01", true},
		{"a", true},
		{"", false},
		{"-hello", false},
		{"hello-", false},
		{"-", false},
		{"hello world", false},
		{"hello_world", false},
		{"héllo", false},
		{"hello/world", false},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidSlug(tt.slug))
		})
	}
}

func TestCreatePostValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(p *CreatePost)
		wantErr error
	}{
		{"valid", func(p *CreatePost) {}, nil},
		{"blank title", func(p *CreatePost) { p.Title = "   " }, ErrEmptyTitle},
		{"empty content", func(p *CreatePost) { p.Content = "" }, ErrEmptyContent},
		{"bad slug", func(p *CreatePost) { p.Slug = "bad slug" }, ErrInvalidSlug},
		{"missing category", func(p *CreatePost) { p.Category = 0 }, ErrInvalidCategory},
		{"title checked before content", func(p *CreatePost) { p.Title = ""; p.Content = "" }, ErrEmptyTitle},
		{"content checked before slug", func(p *CreatePost) { p.Content = " "; p.Slug = "-" }, ErrEmptyContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validCreatePost()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUpdatePostValidate(t *testing.T) {
	t.Parallel()

	p := UpdatePost{ID: 1, Category: CategoryArt, Title: "t", Slug: "s", Content: "c"}
	assert.NoError(t, p.Validate())

	// ID precedes every other rule.
	p.ID = 0
	p.Title = ""
	assert.ErrorIs(t, p.Validate(), ErrInvalidPostID)

	p.ID = -5
	assert.ErrorIs(t, p.Validate(), ErrInvalidPostID)
}

func TestPatchPostValidate(t *testing.T) {
	t.Parallel()

	badCategory := PostCategory(42)

	tests := []struct {
		name    string
		patch   PatchPost
		wantErr error
	}{
		{"id only", PatchPost{ID: 3}, nil},
		{"zero id", PatchPost{ID: 0, Title: strPtr("x")}, ErrInvalidPostID},
		{"blank title", PatchPost{ID: 3, Title: strPtr(" ")}, ErrEmptyTitle},
		{"blank content", PatchPost{ID: 3, Content: strPtr("")}, ErrEmptyContent},
		{"bad slug", PatchPost{ID: 3, Slug: strPtr("no-")}, ErrInvalidSlug},
		{"bad category", PatchPost{ID: 3, Category: &badCategory}, ErrInvalidCategory},
		{"empty description allowed", PatchPost{ID: 3, Description: strPtr("")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPatchPostApply(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	current := Post{
		ID:          7,
		Category:    CategoryReading,
		Title:       "Old",
		Slug:        "old",
		Content:     "old content",
		Description: "old description",
		ImageURL:    strPtr("https://img.example/a.png"),
		ExternalURL: nil,
		Published:   false,
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	t.Run("only title changes", func(t *testing.T) {
		merged := PatchPost{ID: 7, Title: strPtr("New")}.Apply(current)

		want := current
		want.Title = "New"
		assert.Equal(t, want, merged)
	})

	t.Run("absent url keeps stored value", func(t *testing.T) {
		merged := PatchPost{ID: 7, ExternalURL: strPtr("https://example.com")}.Apply(current)

		require.NotNil(t, merged.ImageURL)
		assert.Equal(t, "https://img.example/a.png", *merged.ImageURL)
		require.NotNil(t, merged.ExternalURL)
		assert.Equal(t, "https://example.com", *merged.ExternalURL)
	})

	t.Run("every field present", func(t *testing.T) {
		art := CategoryArt
		published := true
		patch := PatchPost{
			ID:          7,
			Category:    &art,
			Title:       strPtr("T"),
			Slug:        strPtr("t"),
			Content:     strPtr("C"),
			Description: strPtr("D"),
			ImageURL:    strPtr("i"),
			ExternalURL: strPtr("e"),
			Published:   &published,
		}
		merged := patch.Apply(current)

		assert.Equal(t, int64(7), merged.ID)
		assert.Equal(t, CategoryArt, merged.Category)
		assert.Equal(t, "T", merged.Title)
		assert.Equal(t, "t", merged.Slug)
		assert.Equal(t, "C", merged.Content)
		assert.Equal(t, "D", merged.Description)
		assert.Equal(t, "i", *merged.ImageURL)
		assert.Equal(t, "e", *merged.ExternalURL)
		assert.True(t, merged.Published)
		assert.Equal(t, created, merged.CreatedAt)
	})

	t.Run("published can be cleared", func(t *testing.T) {
		live := current
		live.Published = true
		off := false
		merged := PatchPost{ID: 7, Published: &off}.Apply(live)
		assert.False(t, merged.Published)
	})
}

func TestPatchPostIsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, PatchPost{ID: 1}.IsEmpty())
	assert.False(t, PatchPost{ID: 1, Description: strPtr("")}.IsEmpty())
}

func TestListPostsFilterValidate(t *testing.T) {
	t.Parallel()

	blog := CategoryBlog
	unknown := PostCategory(9)

	tests := []struct {
		name    string
		filter  ListPostsFilter
		wantErr error
	}{
		{"minimum limit", ListPostsFilter{Limit: 1}, nil},
		{"maximum limit", ListPostsFilter{Limit: MaxPageSize}, nil},
		{"with category", ListPostsFilter{Limit: 10, Offset: 30, Category: &blog}, nil},
		{"zero limit", ListPostsFilter{Limit: 0}, ErrInvalidLimit},
		{"limit over max", ListPostsFilter{Limit: MaxPageSize + 1}, ErrInvalidLimit},
		{"negative offset", ListPostsFilter{Limit: 5, Offset: -1}, ErrInvalidOffset},
		{"unknown category", ListPostsFilter{Limit: 5, Category: &unknown}, ErrInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()

	err := validCreatePostWithTitle("").Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "title", verr.Field)
	assert.Equal(t, "invalid title: post title cannot be empty", err.Error())

	bare := NewValidationError("", "something off", nil)
	assert.Equal(t, "something off", bare.Error())
	assert.ErrorIs(t, bare, ErrValidation)
	assert.False(t, strings.Contains(bare.Error(), "invalid"))
}

func validCreatePostWithTitle(title string) CreatePost {
	p := validCreatePost()
	p.Title = title
	return p
}
