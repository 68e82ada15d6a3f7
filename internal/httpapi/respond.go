package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"socialhub.dev/internal/audit"
	"socialhub.dev/internal/authz"
	"socialhub.dev/internal/obs"
	"socialhub.dev/internal/social"
)

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type messageBody struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, code int, body errorBody) {
	body.RequestID = audit.RequestIDFromContext(r.Context())
	writeJSON(w, code, body)
}

// handleServiceError maps social errors onto statuses. Anything unclassified
// is a 500 carrying fallback as its message.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var se *social.Error
	if errors.As(err, &se) {
		writeError(w, r, statusFor(se.Kind), errorBody{Message: se.Message, Details: se.Details})
		return
	}
	switch {
	case errors.Is(err, social.ErrNotFound):
		writeError(w, r, http.StatusNotFound, errorBody{Message: "Not found"})
	case errors.Is(err, social.ErrInvalidInput), errors.Is(err, social.ErrConflict):
		writeError(w, r, http.StatusBadRequest, errorBody{Message: "Validation Error", Error: err.Error()})
	case errors.Is(err, social.ErrForbidden):
		writeError(w, r, http.StatusForbidden, errorBody{Message: "You do not have permission"})
	default:
		obs.Logger().ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, r, http.StatusInternalServerError, errorBody{Message: fallback, Error: err.Error()})
	}
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, social.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, social.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(kind, social.ErrInvalidInput), errors.Is(kind, social.ErrConflict):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// deny writes authorization failures in the common error shape.
func (a *API) deny(w http.ResponseWriter, r *http.Request, err error) {
	var d *authz.Denial
	if errors.As(err, &d) {
		if d.Status == http.StatusUnauthorized {
			w.Header().Set("WWW-Authenticate", `Bearer realm="socialhub"`)
		}
		writeError(w, r, d.Status, errorBody{Message: d.Message})
		return
	}
	writeError(w, r, http.StatusInternalServerError, errorBody{Message: "Internal Server Error", Error: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// readJSON decodes the body and answers 400 itself on failure.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		writeError(w, r, http.StatusBadRequest, errorBody{Message: "Invalid request body", Error: err.Error()})
		return false
	}
	return true
}

// pathID parses a positive integer path parameter, answering 400 otherwise.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, errorBody{Message: "Invalid ID", Details: map[string]string{name: raw}})
		return 0, false
	}
	return id, true
}
