package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Shared request validator; DTOs carry `validate` tags.
var validate = validator.New()

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body of the form {"message": "..."}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
