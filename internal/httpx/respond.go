package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/shophub/ecommerce-api/internal/apierr"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Status       int    `json:"status"`
	Message      string `json:"message,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	Data         any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondOK(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, Response{Status: http.StatusOK, Message: message, Data: data})
}

func respondErr(w http.ResponseWriter, err error) {
	code := apierr.StatusOf(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		// do not leak internals
		msg = "internal error"
	}
	writeJSON(w, code, Response{Status: code, ErrorMessage: msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	respondErr(w, apierr.BadRequest(msg))
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apierr.BadRequest("invalid json")
	}
	return nil
}
