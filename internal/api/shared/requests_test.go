package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/folio-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `json:"name" validate:"required"`
	Age  int    `json:"age"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantErr     bool
		errContains string
	}{
		{name: "valid json", body: `{"name":"test","age":30}`},
		{name: "invalid json", body: `{"name":"test",}`, wantErr: true, errContains: "invalid character"},
		{name: "empty body", body: "", wantErr: true, errContains: "EOF"},
		{name: "unknown field", body: `{"nmae":"x"}`, wantErr: true, errContains: "unknown field"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var got sample
			err := DecodeJSON(req, &got)
			if tc.wantErr {
				assert.ErrorContains(t, err, tc.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, sample{Name: "test", Age: 30}, got)
		})
	}
}

func TestDecodeJSON_BodyTooLarge(t *testing.T) {
	body := `{"name":"` + strings.Repeat("a", MaxRequestBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	assert.Error(t, DecodeJSON(req, &sample{}))
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(&sample{Name: "x"}))
	assert.Error(t, ValidateRequest(&sample{}))

	// Types with a Validate method use it instead of struct tags.
	err := ValidateRequest(domain.ListPostsFilter{Limit: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidLimit)
}

func TestQueryParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&bad=x&flag=true&nope=maybe", nil)

	n, err := QueryInt(req, "limit", 20)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = QueryInt(req, "offset", 0)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = QueryInt(req, "bad", 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	b, err := QueryBool(req, "flag")
	require.NoError(t, err)
	assert.True(t, b)

	b, err = QueryBool(req, "missing")
	require.NoError(t, err)
	assert.False(t, b)

	_, err = QueryBool(req, "nope")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidateRequest_FieldError(t *testing.T) {
	err := ValidateRequest(&sample{})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
	assert.EqualError(t, err, "invalid name: is required")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
