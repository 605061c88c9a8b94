package api

import (
	"encoding/json"
	"errors"
	"sort"
)

// Error is the single error shape every gateway failure is normalized to.
// Status is zero for transport-level failures that never produced a
// response.
type Error struct {
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }

// IsStatus reports whether err is a gateway error with the given HTTP
// status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// messageFromBody mines a structured error body for a human-readable
// message: a singular "detail" string wins, else the first array-valued
// field error, else the caller-supplied fallback.
func messageFromBody(body []byte, fallback string) string {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return fallback
	}

	if detail, ok := fields["detail"].(string); ok && detail != "" {
		return detail
	}

	// Field keys are walked in sorted order so the surfaced message is
	// deterministic.
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if list, ok := fields[k].([]any); ok && len(list) > 0 {
			if msg, ok := list[0].(string); ok && msg != "" {
				return msg
			}
		}
	}

	return fallback
}
