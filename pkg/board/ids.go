package board

import (
	"github.com/google/uuid"
)

// IDGenerator produces unique opaque identifiers for columns and items.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random (version 4) UUIDs: 122 random bits, so
// collisions are not a practical concern even across many boards.
type UUIDGenerator struct{}

// NewID returns a new random UUID string.
func (UUIDGenerator) NewID() string {
	return uuid.New().String()
}

// IDFunc adapts a plain function to IDGenerator.
type IDFunc func() string

// NewID calls f.
func (f IDFunc) NewID() string {
	return f()
}
