// internal/adapters/in/http/handlers/helpers.go
package handlers

import (
	"encoding/json"
	"net/http"

	common "storefront/internal/domain/common"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method_not_allowed"})
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
}

// statusFor maps the application error taxonomy onto HTTP codes.
func statusFor(err error) int {
	switch {
	case common.IsValidationError(err):
		return http.StatusBadRequest
	case common.IsAuthError(err):
		return http.StatusUnauthorized
	case common.IsTransportError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeErrFrom(w http.ResponseWriter, err error) {
	writeErr(w, statusFor(err), err.Error())
}
