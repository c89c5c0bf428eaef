package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/phrazzld/folio-api/internal/api/shared"
	"github.com/phrazzld/folio-api/internal/store"
)

// MapErrorToStatusCode maps store and domain errors to HTTP status codes
// by their kind, so new sentinels need no changes here.
func MapErrorToStatusCode(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch store.KindOf(err) {
	case store.KindValidation:
		return http.StatusBadRequest
	case store.KindNotFound:
		return http.StatusNotFound
	case store.KindDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the message shown to the client. Validation,
// not-found and duplicate errors describe caller input and are returned as is;
// anything else is replaced by defaultMsg.
func GetSafeErrorMessage(err error, defaultMsg string) string {
	if defaultMsg == "" {
		defaultMsg = "An unexpected error occurred"
	}
	if err == nil {
		return defaultMsg
	}
	switch store.KindOf(err) {
	case store.KindValidation, store.KindNotFound, store.KindDuplicate:
		return err.Error()
	default:
		return defaultMsg
	}
}

// HandleAPIError writes the error response for err and logs it.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err, defaultMsg), err)
}
