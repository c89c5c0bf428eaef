package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// PostCategory is the closed set of sections a post can belong to.
// The zero value is not a valid category.
type PostCategory uint8

// Supported post categories
const (
	CategoryBlog PostCategory = iota + 1
	CategoryArt
	CategoryReading
)

// PostCategories lists every valid category in display order.
var PostCategories = []PostCategory{CategoryBlog, CategoryArt, CategoryReading}

// String returns the canonical lowercase form used for storage and JSON.
func (c PostCategory) String() string {
	switch c {
	case CategoryBlog:
		return "blog"
	case CategoryArt:
		return "art"
	case CategoryReading:
		return "reading"
	default:
		return fmt.Sprintf("PostCategory(%d)", uint8(c))
	}
}

// IsValid reports whether c is one of the declared categories.
func (c PostCategory) IsValid() bool {
	switch c {
	case CategoryBlog, CategoryArt, CategoryReading:
		return true
	default:
		return false
	}
}

// ParsePostCategory decodes a category name. Matching is case-insensitive;
// unknown names are rejected rather than mapped to a default.
func ParsePostCategory(s string) (PostCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "blog":
		return CategoryBlog, nil
	case "art":
		return CategoryArt, nil
	case "reading":
		return CategoryReading, nil
	default:
		return 0, NewValidationError("category", fmt.Sprintf("unknown post category %q", s), ErrInvalidCategory)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c PostCategory) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, invalid("category", ErrInvalidCategory)
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *PostCategory) UnmarshalText(text []byte) error {
	parsed, err := ParsePostCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value implements driver.Valuer so categories are persisted as text.
func (c PostCategory) Value() (driver.Value, error) {
	if !c.IsValid() {
		return nil, invalid("category", ErrInvalidCategory)
	}
	return c.String(), nil
}

// Scan implements sql.Scanner.
func (c *PostCategory) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return c.UnmarshalText([]byte(v))
	case []byte:
		return c.UnmarshalText(v)
	case nil:
		return invalid("category", ErrInvalidCategory)
	default:
		return fmt.Errorf("cannot scan %T into PostCategory", src)
	}
}
