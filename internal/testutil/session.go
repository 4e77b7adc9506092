package testutil

import (
	"io"
	"log/slog"
)

// DefaultSessionToken is issued when a scenario names none.
const DefaultSessionToken = "test-session-default"

// FixedSessionGenerator issues the same session token every time, so the
// cookie set by GET / is identical across runs.
//
// Implements server.TokenGenerator.
type FixedSessionGenerator struct {
	token string
}

// NewFixedSessionGenerator returns a generator for token, or for
// DefaultSessionToken when token is empty.
func NewFixedSessionGenerator(token string) *FixedSessionGenerator {
	if token == "" {
		token = DefaultSessionToken
	}
	return &FixedSessionGenerator{token: token}
}

// NewToken returns the fixed token.
func (g *FixedSessionGenerator) NewToken() (string, error) {
	return g.token, nil
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
