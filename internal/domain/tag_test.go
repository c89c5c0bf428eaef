package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTagName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"lowercase", "rust", nil},
		{"capitals", "React", nil},
		{"digits", "vue3", nil},
		{"special chars", "c++ and go_lang-2", nil},
		{"surrounding whitespace", "  python  ", nil},
		{"exactly max length", strings.Repeat("a", MaxTagNameLength), nil},
		{"empty", "", ErrEmptyTagName},
		{"whitespace only", "   \t", ErrEmptyTagName},
		{"too long", strings.Repeat("a", MaxTagNameLength+1), ErrTagNameTooLong},
		{"padding does not count", "  " + strings.Repeat("a", MaxTagNameLength) + "  ", nil},
		{"punctuation", "hello!", ErrInvalidTagName},
		{"hash", "#go", ErrInvalidTagName},
		{"non ascii letter", "café", ErrInvalidTagName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTagName(tt.in)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestNormalizeTagName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "python", NormalizeTagName("  python  "))
	assert.Equal(t, "machine learning", NormalizeTagName("\tmachine learning\n"))
}

func TestValidateIDs(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateTagID(1))
	assert.ErrorIs(t, ValidateTagID(0), ErrInvalidTagID)
	assert.NoError(t, ValidatePostID(9))
	assert.ErrorIs(t, ValidatePostID(-1), ErrInvalidPostID)
}
