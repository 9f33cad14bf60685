package models

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every non-2xx response. RawOutput carries the
// interpreter's stdout when parsing it is what failed.
type ErrorResponse struct {
	Error     string  `json:"error"`
	RawOutput *string `json:"raw_output,omitempty"`
}

// WriteError writes a compact JSON error body.
func WriteError(w http.ResponseWriter, code int, message string) {
	writeCompact(w, code, ErrorResponse{Error: message})
}

// WriteErrorWithOutput is WriteError plus the raw interpreter output.
func WriteErrorWithOutput(w http.ResponseWriter, code int, message, rawOutput string) {
	writeCompact(w, code, ErrorResponse{Error: message, RawOutput: &rawOutput})
}

// WriteJSON writes v indented by two spaces.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func writeCompact(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
