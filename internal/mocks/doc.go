// Package mocks provides in-memory implementations of the store interfaces
// for tests outside the postgres package.
//
// MockPostStore and MockTagStore behave like the PostgreSQL stores by
// default: they validate input, enforce unique slugs and names, and return
// the same not-found and duplicate errors. Any method can be overridden
// through its Fn field:
//
//	posts := mocks.NewMockPostStore()
//	posts.FindByIDFn = func(ctx context.Context, id int64) (*domain.Post, error) {
//	    return nil, errors.New("connection reset")
//	}
//	tags := mocks.NewMockTagStore(posts)
package mocks
