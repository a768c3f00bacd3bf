package api

import (
	"encoding/json"
	"net/http"
)

// ContentTypeJSON is set on every response written by WriteJSON.
const ContentTypeJSON = "application/json; charset=utf-8"

// WriteJSON serializes body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError writes {"error": code}.
func WriteError(w http.ResponseWriter, status int, code string) {
	WriteJSON(w, status, ErrorResponse{Error: code})
}

// WriteErrorDetails writes {"error": code, "details": details}.
func WriteErrorDetails(w http.ResponseWriter, status int, code, details string) {
	WriteJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// WriteMethodNotAllowed writes the 405 body and the Allow header.
func WriteMethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	WriteError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed)
}
