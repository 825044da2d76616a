package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/seqcentral/metior/internal/models"
)

// Caller identity headers. The platform gateway authenticates upstream and
// forwards identity; this service only enforces the visibility rules.
const (
	HeaderUser  = "X-Metior-User"
	HeaderAdmin = "X-Metior-Admin"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteServiceError maps the error taxonomy onto HTTP status codes and writes
// the response. Validation errors are 400, permission 403, source problems
// 503; anything unrecognized is a 500.
func WriteServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvalidIdentifier),
		errors.Is(err, models.ErrInvalidRange),
		errors.Is(err, models.ErrTypeConversion),
		errors.Is(err, models.ErrUnsupportedSortField):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrPermission):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrSourceUnavailable),
		errors.Is(err, models.ErrLockTimeout):
		status = http.StatusServiceUnavailable
	}
	WriteError(w, status, err.Error())
}

// CallerIdentity extracts the forwarded caller identity from the request.
func CallerIdentity(r *http.Request) (user string, admin bool) {
	user = r.Header.Get(HeaderUser)
	admin, _ = strconv.ParseBool(r.Header.Get(HeaderAdmin))
	return user, admin
}

// QueryInt parses an integer query parameter, returning def when absent.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
