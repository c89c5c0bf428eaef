package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePostCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    PostCategory
		wantErr bool
	}{
		{"blog", CategoryBlog, false},
		{"BLOG", CategoryBlog, false},
		{"Art", CategoryArt, false},
		{"reading", CategoryReading, false},
		{" reading ", CategoryReading, false},
		{"", 0, true},
		{"news", 0, true},
		{"blogs", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePostCategory(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCategory)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPostCategoryStringRoundTrip(t *testing.T) {
	t.Parallel()

	for _, c := range PostCategories {
		parsed, err := ParsePostCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	assert.Equal(t, "PostCategory(0)", PostCategory(0).String())
}

func TestPostCategoryJSON(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		Category PostCategory `json:"category"`
	}

	out, err := json.Marshal(wrapper{Category: CategoryReading})
	require.NoError(t, err)
	assert.JSONEq(t, `{"category":"reading"}`, string(out))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"category":"ART"}`), &w))
	assert.Equal(t, CategoryArt, w.Category)

	err = json.Unmarshal([]byte(`{"category":"poetry"}`), &w)
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = json.Marshal(wrapper{})
	assert.Error(t, err, "zero category must not encode")
}

func TestPostCategorySQL(t *testing.T) {
	t.Parallel()

	v, err := CategoryBlog.Value()
	require.NoError(t, err)
	assert.Equal(t, "blog", v)

	_, err = PostCategory(0).Value()
	assert.ErrorIs(t, err, ErrInvalidCategory)

	var c PostCategory
	require.NoError(t, c.Scan("art"))
	assert.Equal(t, CategoryArt, c)

	require.NoError(t, c.Scan([]byte("reading")))
	assert.Equal(t, CategoryReading, c)

	assert.ErrorIs(t, c.Scan("unknown"), ErrInvalidCategory)
	assert.ErrorIs(t, c.Scan(nil), ErrInvalidCategory)
	assert.Error(t, c.Scan(42))
}
