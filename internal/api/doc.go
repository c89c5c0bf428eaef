// Package api exposes the post and tag stores over HTTP. Handlers decode
// requests, delegate to a store.PostStore or store.TagStore, and map the
// store's error kinds onto status codes: validation 400, not found 404,
// duplicate 409, everything else 500.
package api
