// Package ident generates the opaque identifiers used to key edit sessions
// and undo tokens. Both id spaces must not collide across concurrent users,
// so everything here is backed by crypto/rand.
package ident

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

const undoIDRawSize = 6

// NewSessionID returns a UUIDv4 string for a new edit session.
func NewSessionID() string {
	return uuid.NewString()
}

// NewUndoID returns a short random hex token for a one-shot undo entry.
// Undo ids only need to be unguessable within the undo TTL window, so six
// random bytes are enough.
func NewUndoID() (string, error) {
	var raw [undoIDRawSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw[:]), nil
}
