package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/folio-api/internal/api/shared"
	"github.com/phrazzld/folio-api/internal/store"
)

// TagRequest is the body of tag create and rename requests.
type TagRequest struct {
	Name string `json:"name" validate:"required"`
}

// TagHandler handles tag and post-tag association requests
type TagHandler struct {
	tags   store.TagStore
	logger *slog.Logger
}

// NewTagHandler creates a new TagHandler
func NewTagHandler(tags store.TagStore, logger *slog.Logger) *TagHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TagHandler")
	}
	return &TagHandler{
		tags:   tags,
		logger: logger.With(slog.String("component", "tag_handler")),
	}
}

// Routes mounts the tag endpoints on r.
func (h *TagHandler) Routes(r chi.Router) {
	r.Get("/", h.ListTags)
	r.Post("/", h.CreateTag)
	r.Get("/by-name/{name}", h.GetTagByName)
	r.Get("/{id}", h.GetTagByID)
	r.Put("/{id}", h.UpdateTag)
	r.Delete("/{id}", h.DeleteTag)
}

// PostTagRoutes mounts the association endpoints under /posts/{id}/tags.
// The post ID parameter shares the name used by the post routes.
func (h *TagHandler) PostTagRoutes(r chi.Router) {
	r.Get("/", h.ListTagsForPost)
	r.Put("/{tagID}", h.AddTagToPost)
	r.Delete("/{tagID}", h.RemoveTagFromPost)
}

// ListTags handles GET /tags requests. include_post_count=true adds the
// number of posts carrying each tag.
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	withCounts, err := shared.QueryBool(r, "include_post_count")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tags, err := h.tags.List(r.Context(), withCounts)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tags")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tags)
}

// CreateTag handles POST /tags requests
func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tag, err := h.tags.Create(r.Context(), req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create tag")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, tag)
}

// GetTagByID handles GET /tags/{id} requests
func (h *TagHandler) GetTagByID(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tag, err := h.tags.FindByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get tag")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tag)
}

// GetTagByName handles GET /tags/by-name/{name} requests
func (h *TagHandler) GetTagByName(w http.ResponseWriter, r *http.Request) {
	tag, err := h.tags.FindByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get tag")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tag)
}

// UpdateTag handles PUT /tags/{id} requests
func (h *TagHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	var req TagRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tag, err := h.tags.Update(r.Context(), id, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update tag")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tag)
}

// DeleteTag handles DELETE /tags/{id} requests
func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.tags.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTagsForPost handles GET /posts/{id}/tags requests
func (h *TagHandler) ListTagsForPost(w http.ResponseWriter, r *http.Request) {
	postID, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tags, err := h.tags.ListTagsForPost(r.Context(), postID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tags")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tags)
}

// AddTagToPost handles PUT /posts/{id}/tags/{tagID} requests
func (h *TagHandler) AddTagToPost(w http.ResponseWriter, r *http.Request) {
	postID, tagID, ok := h.associationIDs(w, r)
	if !ok {
		return
	}

	if err := h.tags.AddTagToPost(r.Context(), postID, tagID); err != nil {
		HandleAPIError(w, r, err, "Failed to tag post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveTagFromPost handles DELETE /posts/{id}/tags/{tagID} requests
func (h *TagHandler) RemoveTagFromPost(w http.ResponseWriter, r *http.Request) {
	postID, tagID, ok := h.associationIDs(w, r)
	if !ok {
		return
	}

	if err := h.tags.RemoveTagFromPost(r.Context(), postID, tagID); err != nil {
		HandleAPIError(w, r, err, "Failed to untag post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TagHandler) associationIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	postID, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return 0, 0, false
	}
	tagID, err := getPathID(r, "tagID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return 0, 0, false
	}
	return postID, tagID, true
}
