// Package llm talks to the AI backends that turn free text into structured
// household items.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
)

// ErrEmptyResponse is returned when a backend answers without a usable body.
var ErrEmptyResponse = errors.New("empty response from AI backend")

// Request is the payload sent to a backend. Exactly one of Transcript or
// Image is set.
type Request struct {
	Transcript string `json:"transcript,omitempty"`
	Image      string `json:"image,omitempty"`
	IsDocument bool   `json:"isDocument,omitempty"`
	IsRecipe   bool   `json:"isRecipe,omitempty"`
	Filename   string `json:"filename,omitempty"`
	ParseType  string `json:"parseType,omitempty"`
	// Today is the caller's local date, used to resolve relative dates.
	Today string `json:"today,omitempty"`
}

// Client is an AI parsing backend. The returned JSON is one of a bare array
// of items, an {"items": [...]} envelope or a single flat item.
type Client interface {
	Parse(ctx context.Context, req Request) (json.RawMessage, error)
}

// cleanJSON trims whitespace and markdown code fences that some models wrap
// around JSON output.
func cleanJSON(body []byte) (json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if bytes.HasPrefix(body, []byte("```")) {
		if i := bytes.IndexByte(body, '\n'); i >= 0 {
			body = body[i+1:]
		}
		body = bytes.TrimSuffix(bytes.TrimSpace(body), []byte("```"))
		body = bytes.TrimSpace(body)
	}
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, ErrEmptyResponse
	}
	if !json.Valid(body) {
		return nil, errors.New("AI backend returned invalid JSON")
	}
	return json.RawMessage(body), nil
}
