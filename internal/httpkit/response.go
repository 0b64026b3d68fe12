// Package httpkit holds small HTTP helpers shared by the API handlers.
package httpkit

import (
	"encoding/json"
	"io"
	"net/http"
)

// DecodeJSON decodes the body into v, rejecting unknown fields. limit caps
// the body size in bytes; zero means no cap.
func DecodeJSON(r *http.Request, v any, limit int64) error {
	defer r.Body.Close()
	var body io.Reader = r.Body
	if limit > 0 {
		body = io.LimitReader(r.Body, limit)
	}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
