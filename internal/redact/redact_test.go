package redact_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/folio-api/internal/redact"
	"github.com/stretchr/testify/assert"
)

func TestRedactString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "plain store message",
			input:    "failed to update post: connection reset by peer",
			expected: "failed to update post: connection reset by peer",
		},
		{
			name:     "database connection string",
			input:    "dial postgres://folio:secret@db:5432/folio failed",
			expected: "dial [REDACTED_CREDENTIAL]db:5432/folio failed",
		},
		{
			name:     "password parameter",
			input:    "auth failed password=hunter2 for user",
			expected: "auth failed [REDACTED_CREDENTIAL] for user",
		},
		{
			name:     "constraint detail",
			input:    `duplicate key value violates unique constraint "posts_slug_key": Key (slug)=(my-post) already exists.`,
			expected: `duplicate key value violates unique constraint "posts_slug_key": Key [REDACTED_VALUES] already exists.`,
		},
		{
			name:     "select statement",
			input:    "query failed: SELECT id, title FROM posts WHERE slug = $1",
			expected: "query failed: [REDACTED_SQL]",
		},
		{
			name:     "update statement",
			input:    "UPDATE posts SET title = $1 WHERE id = $2",
			expected: "[REDACTED_SQL]",
		},
		{
			name:     "email address",
			input:    "notify admin@example.com",
			expected: "notify [REDACTED_EMAIL]",
		},
		{
			name:     "file path",
			input:    "open /etc/folio/config.yaml: permission denied",
			expected: "open [REDACTED_PATH]: permission denied",
		},
		{
			name:     "stack trace",
			input:    "panic: runtime error\ngoroutine 1 [running]:\nmain.main()\n\t/app/main.go:42",
			expected: "[STACK_TRACE_REDACTED]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, redact.String(tt.input))
		})
	}
}

func TestRedactError(t *testing.T) {
	assert.Equal(t, "", redact.Error(nil))

	err := fmt.Errorf("failed to insert post: %w", errors.New("INSERT INTO posts (title) VALUES ($1)"))
	assert.Equal(t, "failed to insert post: [REDACTED_SQL]", redact.Error(err))
}
