package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// readJSON decodes a single JSON object, rejecting unknown fields and bodies over 1MB.
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1_048_576 // 1mb
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(data); err != nil {
		return err
	}
	if decoder.More() {
		return errors.New("body must only contain a single JSON object")
	}
	return nil
}

func writeJSONError(w http.ResponseWriter, status int, message string) error {
	type envelope struct {
		Message string `json:"message"`
	}
	return writeJSON(w, status, &envelope{Message: message})
}

func readIDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// nameList accepts either a single name or an array of names. JSON null
// counts as absent.
type nameList []string

func (n *nameList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*n = nameList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.New("must be a string or an array of strings")
	}
	if many == nil {
		many = []string{}
	}
	*n = many
	return nil
}

// flexBool keeps a boolean only when the JSON value is one. Anything else
// leaves it unset so the default applies.
type flexBool struct {
	value *bool
}

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		b.value = &v
	}
	return nil
}

func (b flexBool) Ptr() *bool {
	return b.value
}
