package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/filisonic/easyhr/internal/shared"
)

const maxBodyBytes = 1 << 20

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps sentinel errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidStatus), errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, shared.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrWebhookFailed), errors.Is(err, shared.ErrEndpointNotFound):
		return http.StatusBadGateway
	case errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, shared.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes err as JSON. Unmapped errors are reported generically.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: malformed JSON body: %v", shared.ErrInvalidInput, err)
	}
	return nil
}
