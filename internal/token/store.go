// Package token implements the credential store: two opaque bearer strings
// (access, refresh) kept in a process-local or SQLite-persistent key/value
// area, plus an advisory expiry check on the access token.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Pair is the access/refresh credential pair issued by the API.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Store is the credential store contract. Access and Refresh return the
// empty string when no credential is held.
type Store interface {
	Set(p Pair) error
	Access() string
	Refresh() string
	Clear() error
	// Valid reports whether the held access token decodes as a JWT whose
	// exp claim lies in the future. Advisory only: the server's 401 is
	// always the authority.
	Valid() bool
}

var ErrNoCredential = errors.New("no credential stored")

// accessValid decodes the token without verifying its signature and checks
// the exp claim against the current clock. Fails closed on any decode
// problem or a missing claim.
func accessValid(raw string) bool {
	if raw == "" {
		return false
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.After(time.Now())
}
