// Package httpjson is the one JSON envelope every endpoint answers with.
// Errors are always {"error": "..."}.
package httpjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBody caps request bodies; the largest input is a request description.
const maxBody = 1 << 20

// retryAfter is sent with every 503 so clients back off before retrying.
const retryAfter = "5"

type ErrorBody struct {
	Error string `json:"error"`
}

func Write(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Read decodes exactly one JSON object into dst, rejecting unknown fields
// and trailing data.
func Read(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("unexpected data after JSON body")
	}
	return nil
}

func Error(w http.ResponseWriter, status int, msg string) {
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", retryAfter)
	}
	Write(w, status, ErrorBody{Error: msg})
}
