package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// MaxTagNameLength is the longest permitted tag name, in characters.
const MaxTagNameLength = 50

// Tag is a label that can be attached to any number of posts.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TagWithPostCount is a tag together with the number of posts it is attached to.
// It is computed at query time and never stored.
type TagWithPostCount struct {
	Tag
	PostCount int64 `json:"post_count"`
}

// NormalizeTagName returns the stored form of a tag name.
func NormalizeTagName(name string) string {
	return strings.TrimSpace(name)
}

// ValidateTagName checks a tag name after normalization. A valid name is
// non-empty, at most MaxTagNameLength characters, and contains only letters,
// digits, whitespace, '-', '_' and '+'.
func ValidateTagName(name string) error {
	name = NormalizeTagName(name)
	if name == "" {
		return invalid("name", ErrEmptyTagName)
	}
	if utf8.RuneCountInString(name) > MaxTagNameLength {
		return invalid("name", ErrTagNameTooLong)
	}
	for _, r := range name {
		if !isTagNameRune(r) {
			return invalid("name", ErrInvalidTagName)
		}
	}
	return nil
}

// ValidateTagID rejects non-positive identifiers.
func ValidateTagID(id int64) error {
	if id <= 0 {
		return invalid("id", ErrInvalidTagID)
	}
	return nil
}

// ValidatePostID rejects non-positive identifiers.
func ValidatePostID(id int64) error {
	if id <= 0 {
		return invalid("id", ErrInvalidPostID)
	}
	return nil
}

func isTagNameRune(r rune) bool {
	if r < utf8.RuneSelf && isASCIIAlnum(byte(r)) {
		return true
	}
	switch r {
	case '-', '_', '+':
		return true
	}
	return unicode.IsSpace(r)
}
