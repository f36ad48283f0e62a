// Package utils provides small cross-cutting helpers, used by cmd/deltakit,
// that don't belong to any single subsystem.
package utils

import (
	"sync"

	"github.com/oklog/ulid/v2"
)

var entropyLock sync.Mutex

// GenerateULID returns a new lexically-sortable ULID, used by cmd/deltakit
// to tag each CLI invocation with a run id for log correlation.
func GenerateULID() ulid.ULID {
	entropyLock.Lock()
	defer entropyLock.Unlock()

	return ulid.Make()
}

// GenerateULIDString is GenerateULID formatted as a string.
func GenerateULIDString() string {
	return GenerateULID().String()
}

// ParseULID parses a ULID string.
func ParseULID(s string) (ulid.ULID, error) {
	return ulid.Parse(s)
}

// MustParseULID parses a ULID string, panicking on error.
func MustParseULID(s string) ulid.ULID {
	return ulid.MustParse(s)
}
