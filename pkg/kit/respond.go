package kit

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": category, "message": msg}. The message is
// omitted when empty.
func WriteError(w http.ResponseWriter, status int, category, msg string) {
	WriteJSON(w, status, ErrorResponse{
		Error:   category,
		Message: msg,
	})
}
