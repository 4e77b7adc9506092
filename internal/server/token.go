package server

import (
	"fmt"

	"github.com/google/uuid"
)

// TokenGenerator issues opaque session tokens.
type TokenGenerator interface {
	NewToken() (string, error)
}

// UUIDv7Generator issues time-ordered UUIDv7 tokens.
type UUIDv7Generator struct{}

// NewToken returns a fresh UUIDv7 string.
func (UUIDv7Generator) NewToken() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return id.String(), nil
}
