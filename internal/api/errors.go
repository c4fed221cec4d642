package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hireloop/interviewd/internal/interview"
	"github.com/hireloop/interviewd/internal/storage"
)

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

// interviewError maps domain errors onto HTTP status codes. Unknown
// errors become 500 so a new sentinel can't silently leak as a success.
func interviewError(w http.ResponseWriter, err error) {
	var provErr *interview.ProviderError
	switch {
	case errors.Is(err, interview.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		httpError(w, http.StatusNotFound, "not_found_error", "%v", err)
	case errors.Is(err, interview.ErrEmptyAnswer):
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
	case errors.Is(err, interview.ErrAlreadyComplete):
		httpError(w, http.StatusConflict, "invalid_state_error", "%v", err)
	case errors.As(err, &provErr):
		httpError(w, http.StatusBadGateway, "provider_error", "%v", err)
	default:
		httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
	}
}
