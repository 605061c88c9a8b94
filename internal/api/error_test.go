package api

import (
	"errors"
	"net/http"
	"testing"
)

func TestMessageFromBody(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"detail wins", `{"detail":"No active account found"}`, "No active account found"},
		{"first field error", `{"name":["This field is required."]}`, "This field is required."},
		{"detail beats fields", `{"detail":"nope","name":["other"]}`, "nope"},
		{"deterministic field order", `{"b":["second"],"a":["first"]}`, "first"},
		{"empty arrays fall through", `{"name":[]}`, "fallback"},
		{"non-string element falls through", `{"name":[42]}`, "fallback"},
		{"plain string body", `"boom"`, "fallback"},
		{"not json", `<html>`, "fallback"},
		{"empty", ``, "fallback"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := messageFromBody([]byte(tc.body), "fallback"); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsStatus(t *testing.T) {
	err := error(&Error{Status: http.StatusNotFound, Message: "missing"})
	if !IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected status match")
	}
	if IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("unexpected status match")
	}
	if IsStatus(errors.New("plain"), http.StatusNotFound) {
		t.Fatalf("plain error should not match")
	}
}
