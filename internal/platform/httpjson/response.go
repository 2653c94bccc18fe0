// Package httpjson writes the JSON envelopes shared by every HTTP handler.
package httpjson

import (
	"encoding/json"
	"net/http"
)

type envelope struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes payload as-is with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Success wraps data in a success envelope.
func Success(w http.ResponseWriter, status int, data any) {
	JSON(w, status, envelope{Status: "success", Data: data})
}

// Error writes an error envelope. code is a stable machine-readable key.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, envelope{Status: "error", Code: code, Message: message})
}

// Decode reads a JSON body into dst, rejecting unknown fields.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
