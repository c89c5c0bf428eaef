package domain

import (
	"strings"
	"time"
)

// MaxPageSize is the largest page a post listing may request.
const MaxPageSize = 100

// Post represents a single piece of published or draft content.
// ID, CreatedAt and UpdatedAt are assigned by the store.
type Post struct {
	ID          int64        `json:"id"`
	Category    PostCategory `json:"category"`
	Title       string       `json:"title"`
	Slug        string       `json:"slug"`
	Content     string       `json:"content"`
	Description string       `json:"description"`
	ImageURL    *string      `json:"image_url"`
	ExternalURL *string      `json:"external_url"`
	Published   bool         `json:"published"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CreatePost holds the caller-supplied fields for a new post.
type CreatePost struct {
	Category    PostCategory `json:"category"`
	Title       string       `json:"title"`
	Slug        string       `json:"slug"`
	Content     string       `json:"content"`
	Description string       `json:"description"`
	ImageURL    *string      `json:"image_url"`
	ExternalURL *string      `json:"external_url"`
	Published   bool         `json:"published"`
}

// Validate checks title, content, slug and category, in that order.
func (p CreatePost) Validate() error {
	return validatePostFields(p.Title, p.Content, p.Slug, p.Category)
}

// UpdatePost replaces every mutable field of the post identified by ID.
type UpdatePost struct {
	ID          int64        `json:"id"`
	Category    PostCategory `json:"category"`
	Title       string       `json:"title"`
	Slug        string       `json:"slug"`
	Content     string       `json:"content"`
	Description string       `json:"description"`
	ImageURL    *string      `json:"image_url"`
	ExternalURL *string      `json:"external_url"`
	Published   bool         `json:"published"`
}

// Validate checks the ID first, then the same rules as CreatePost.
func (p UpdatePost) Validate() error {
	if p.ID <= 0 {
		return invalid("id", ErrInvalidPostID)
	}
	return validatePostFields(p.Title, p.Content, p.Slug, p.Category)
}

// PatchPost carries a partial update. A nil field means "leave unchanged".
type PatchPost struct {
	ID          int64         `json:"id"`
	Category    *PostCategory `json:"category,omitempty"`
	Title       *string       `json:"title,omitempty"`
	Slug        *string       `json:"slug,omitempty"`
	Content     *string       `json:"content,omitempty"`
	Description *string       `json:"description,omitempty"`
	ImageURL    *string       `json:"image_url,omitempty"`
	ExternalURL *string       `json:"external_url,omitempty"`
	Published   *bool         `json:"published,omitempty"`
}

// Validate checks the ID and every field that is present, using the same
// precedence as a full update. Absent fields are not inspected.
func (p PatchPost) Validate() error {
	if p.ID <= 0 {
		return invalid("id", ErrInvalidPostID)
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return invalid("title", ErrEmptyTitle)
	}
	if p.Content != nil && strings.TrimSpace(*p.Content) == "" {
		return invalid("content", ErrEmptyContent)
	}
	if p.Slug != nil && !IsValidSlug(*p.Slug) {
		return invalid("slug", ErrInvalidSlug)
	}
	if p.Category != nil && !p.Category.IsValid() {
		return invalid("category", ErrInvalidCategory)
	}
	return nil
}

// Apply merges the patch over current and returns the result.
// Timestamps and ID are carried over from current untouched.
func (p PatchPost) Apply(current Post) Post {
	merged := current
	merged.Category = coalesce(p.Category, current.Category)
	merged.Title = coalesce(p.Title, current.Title)
	merged.Slug = coalesce(p.Slug, current.Slug)
	merged.Content = coalesce(p.Content, current.Content)
	merged.Description = coalesce(p.Description, current.Description)
	// A missing URL never clears a stored one.
	merged.ImageURL = firstPresent(p.ImageURL, current.ImageURL)
	merged.ExternalURL = firstPresent(p.ExternalURL, current.ExternalURL)
	merged.Published = coalesce(p.Published, current.Published)
	return merged
}

// IsEmpty reports whether the patch carries no field changes.
func (p PatchPost) IsEmpty() bool {
	return p.Category == nil && p.Title == nil && p.Slug == nil && p.Content == nil &&
		p.Description == nil && p.ImageURL == nil && p.ExternalURL == nil && p.Published == nil
}

// ListPostsFilter selects a page of posts, newest first.
type ListPostsFilter struct {
	Category      *PostCategory
	PublishedOnly bool
	Limit         int
	Offset        int
}

// Validate checks the pagination window and the optional category.
func (f ListPostsFilter) Validate() error {
	if f.Limit < 1 || f.Limit > MaxPageSize {
		return invalid("limit", ErrInvalidLimit)
	}
	if f.Offset < 0 {
		return invalid("offset", ErrInvalidOffset)
	}
	if f.Category != nil && !f.Category.IsValid() {
		return invalid("category", ErrInvalidCategory)
	}
	return nil
}

// IsValidSlug reports whether slug is non-empty, made only of ASCII letters,
// digits and hyphens, and neither starts nor ends with a hyphen.
func IsValidSlug(slug string) bool {
	if slug == "" || slug[0] == '-' || slug[len(slug)-1] == '-' {
		return false
	}
	for i := 0; i < len(slug); i++ {
		if !isASCIIAlnum(slug[i]) && slug[i] != '-' {
			return false
		}
	}
	return true
}

func validatePostFields(title, content, slug string, category PostCategory) error {
	if strings.TrimSpace(title) == "" {
		return invalid("title", ErrEmptyTitle)
	}
	if strings.TrimSpace(content) == "" {
		return invalid("content", ErrEmptyContent)
	}
	if !IsValidSlug(slug) {
		return invalid("slug", ErrInvalidSlug)
	}
	if !category.IsValid() {
		return invalid("category", ErrInvalidCategory)
	}
	return nil
}

func coalesce[T any](patch *T, current T) T {
	if patch != nil {
		return *patch
	}
	return current
}

func firstPresent[T any](patch, current *T) *T {
	if patch != nil {
		return patch
	}
	return current
}

func isASCIIAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
