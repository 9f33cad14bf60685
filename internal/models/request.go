package models

import (
	"encoding/json"
	"errors"
)

var (
	ErrInvalidJSON  = errors.New("Invalid JSON")
	ErrMissingQuery = errors.New("Missing query field")
	ErrQueryNotText = errors.New("Query field must be a string")
)

// QueryRequest for POST /query
type QueryRequest struct {
	Query string `json:"query"`
}

// DecodeQueryRequest distinguishes a body that is not JSON at all from
// JSON that lacks a string "query" member. Members other than "query" are
// ignored.
func DecodeQueryRequest(body []byte) (*QueryRequest, error) {
	if !json.Valid(body) {
		return nil, ErrInvalidJSON
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		// valid JSON, but not an object
		return nil, ErrMissingQuery
	}
	raw, ok := fields["query"]
	if !ok {
		return nil, ErrMissingQuery
	}

	var req QueryRequest
	if string(raw) == "null" {
		return nil, ErrQueryNotText
	}
	if err := json.Unmarshal(raw, &req.Query); err != nil {
		return nil, ErrQueryNotText
	}
	return &req, nil
}
