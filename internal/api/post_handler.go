package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/folio-api/internal/api/shared"
	"github.com/phrazzld/folio-api/internal/domain"
	"github.com/phrazzld/folio-api/internal/platform/logger"
	"github.com/phrazzld/folio-api/internal/store"
)

// DefaultPageSize is the post listing limit when none is requested.
const DefaultPageSize = 20

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	posts  store.PostStore
	logger *slog.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts store.PostStore, logger *slog.Logger) *PostHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for PostHandler")
	}
	return &PostHandler{
		posts:  posts,
		logger: logger.With(slog.String("component", "post_handler")),
	}
}

// Routes mounts the post endpoints on r.
func (h *PostHandler) Routes(r chi.Router) {
	r.Get("/", h.ListPosts)
	r.Post("/", h.CreatePost)
	r.Put("/", h.UpdatePost)
	r.Patch("/", h.PatchPost)
	r.Get("/by-id/{id}", h.GetPostByID)
	r.Get("/by-slug/{slug}", h.GetPostBySlug)
	r.Delete("/{id}", h.DeletePost)
}

// ListPosts handles GET /posts requests.
// Query parameters: category, published_only, limit (default 20) and offset.
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListPostsFilter(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	posts, err := h.posts.List(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list posts")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, posts)
}

// CreatePost handles POST /posts requests
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePost
	if !decodeBody(w, r, &req) {
		return
	}

	post, err := h.posts.Create(r.Context(), req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create post")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("post created via API",
		slog.Int64("post_id", post.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, post)
}

// UpdatePost handles PUT /posts requests. The body carries the post ID and
// every mutable field.
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdatePost
	if !decodeBody(w, r, &req) {
		return
	}

	post, err := h.posts.Update(r.Context(), req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update post")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, post)
}

// PatchPost handles PATCH /posts requests. Absent fields are left unchanged.
func (h *PostHandler) PatchPost(w http.ResponseWriter, r *http.Request) {
	var req domain.PatchPost
	if !decodeBody(w, r, &req) {
		return
	}

	post, err := h.posts.Patch(r.Context(), req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update post")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, post)
}

// GetPostByID handles GET /posts/by-id/{id} requests
func (h *PostHandler) GetPostByID(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	post, err := h.posts.FindByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get post")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, post)
}

// GetPostBySlug handles GET /posts/by-slug/{slug} requests
func (h *PostHandler) GetPostBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get post")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, post)
}

// DeletePost handles DELETE /posts/{id} requests
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.posts.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseListPostsFilter(r *http.Request) (domain.ListPostsFilter, error) {
	var filter domain.ListPostsFilter

	if raw := r.URL.Query().Get("category"); raw != "" {
		category, err := domain.ParsePostCategory(raw)
		if err != nil {
			return filter, err
		}
		filter.Category = &category
	}

	var err error
	if filter.PublishedOnly, err = shared.QueryBool(r, "published_only"); err != nil {
		return filter, err
	}
	if filter.Limit, err = shared.QueryInt(r, "limit", DefaultPageSize); err != nil {
		return filter, err
	}
	if filter.Offset, err = shared.QueryInt(r, "offset", 0); err != nil {
		return filter, err
	}
	return filter, nil
}
