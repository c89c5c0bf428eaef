package mocks

import (
	"context"
	"testing"

	"github.com/phrazzld/folio-api/internal/domain"
	"github.com/phrazzld/folio-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPost(slug string) domain.CreatePost {
	return domain.CreatePost{
		Category: domain.CategoryBlog,
		Title:    "Title " + slug,
		Slug:     slug,
		Content:  "content",
	}
}

func TestMockPostStore_Defaults(t *testing.T) {
	ctx := context.Background()
	posts := NewMockPostStore()

	first, err := posts.Create(ctx, newPost("first"))
	require.NoError(t, err)
	second, err := posts.Create(ctx, newPost("second"))
	require.NoError(t, err)

	_, err = posts.Create(ctx, newPost("first"))
	assert.ErrorIs(t, err, store.ErrSlugExists)

	_, err = posts.Create(ctx, domain.CreatePost{Slug: "x"})
	assert.Equal(t, store.KindValidation, store.KindOf(err))

	list, err := posts.List(ctx, domain.ListPostsFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	title := "Renamed"
	patched, err := posts.Patch(ctx, domain.PatchPost{ID: first.ID, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", patched.Title)
	assert.True(t, patched.UpdatedAt.After(first.UpdatedAt))

	require.NoError(t, posts.Delete(ctx, first.ID))
	_, err = posts.FindByID(ctx, first.ID)
	assert.ErrorIs(t, err, store.ErrPostNotFound)
}

func TestMockTagStore_CascadesPostDelete(t *testing.T) {
	ctx := context.Background()
	posts := NewMockPostStore()
	tags := NewMockTagStore(posts)

	post, err := posts.Create(ctx, newPost("tagged"))
	require.NoError(t, err)
	tag, err := tags.Create(ctx, " go ")
	require.NoError(t, err)
	assert.Equal(t, "go", tag.Name)

	require.NoError(t, tags.AddTagToPost(ctx, post.ID, tag.ID))
	assert.ErrorIs(t, tags.AddTagToPost(ctx, post.ID, tag.ID), store.ErrPostTagExists)
	assert.ErrorIs(t, tags.AddTagToPost(ctx, 999, tag.ID), store.ErrPostOrTagNotFound)

	counted, err := tags.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, counted, 1)
	assert.Equal(t, int64(1), counted[0].PostCount)

	require.NoError(t, posts.Delete(ctx, post.ID))

	counted, err = tags.List(ctx, true)
	require.NoError(t, err)
	assert.Zero(t, counted[0].PostCount)
}
