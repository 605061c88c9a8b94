package api

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Page is the normalized list shape every list endpoint resolves to,
// whether the server answered with a flat array or a paginated envelope.
// Entity stores never branch on response shape.
type Page[T any] struct {
	Items       []T
	Count       int
	HasNext     bool
	HasPrevious bool
}

type envelope[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  *[]T    `json:"results"`
}

var errUnknownListShape = errors.New("response is neither a list nor a paginated envelope")

// NormalizePage folds both list response shapes into a Page.
func NormalizePage[T any](raw json.RawMessage) (Page[T], error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Page[T]{}, err
		}
		return Page[T]{Items: items, Count: len(items)}, nil
	}

	var env envelope[T]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return Page[T]{}, err
	}
	if env.Results == nil {
		return Page[T]{}, errUnknownListShape
	}
	return Page[T]{
		Items:       *env.Results,
		Count:       env.Count,
		HasNext:     env.Next != nil,
		HasPrevious: env.Previous != nil,
	}, nil
}
