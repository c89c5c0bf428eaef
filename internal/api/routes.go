package api

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the post, tag and association endpoints on r.
func RegisterRoutes(r chi.Router, posts *PostHandler, tags *TagHandler) {
	r.Route("/posts", func(r chi.Router) {
		posts.Routes(r)
		r.Route("/{id}/tags", tags.PostTagRoutes)
	})
	r.Route("/tags", tags.Routes)
}
