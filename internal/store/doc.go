// Package store defines the persistence contracts for posts, tags and their
// associations, the error taxonomy every store operation resolves to, and the
// transaction helper implementations use to make multi-statement mutations atomic.
//
// Concrete implementations live under internal/platform.
package store
