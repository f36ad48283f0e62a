package errors

import (
	"fmt"
	"regexp"
	"strings"
)

// Code is a validated, package-prefixed error identifier ("package.name").
type Code struct {
	value string
	kind  string
}

var codeRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*\.[a-z][a-z0-9_]*$`)

// Kind names from the error taxonomy in spec.md §7.
const (
	KindConfigError         = "ConfigError"
	KindIoError             = "IoError"
	KindCorruptLog          = "CorruptLog"
	KindVersionNotFound     = "VersionNotFound"
	KindUnsupportedProtocol = "UnsupportedProtocol"
	KindMissingStatistics   = "MissingStatistics"
	KindInfeasible          = "Infeasible"
	KindInvalidConfig       = "InvalidConfig"
	KindCancelled           = "Cancelled"
	KindInternal            = "Internal"
)

// NewCode validates and constructs a Code carrying the given taxonomy kind.
func NewCode(s, kind string) (Code, error) {
	if !codeRegex.MatchString(s) {
		return Code{}, fmt.Errorf("invalid code format %q: must be 'package.name' (lowercase, underscores, dots only)", s)
	}
	return Code{value: s, kind: kind}, nil
}

// MustNewCode creates a new Code or panics if invalid. Used for package-level vars.
func MustNewCode(s, kind string) Code {
	code, err := NewCode(s, kind)
	if err != nil {
		panic(err)
	}
	return code
}

// String returns the "package.name" representation of the code.
func (c Code) String() string { return c.value }

// Kind returns the spec §7 taxonomy name this code belongs to.
func (c Code) Kind() string { return c.kind }

// Package returns the package prefix from the code.
func (c Code) Package() string {
	if idx := strings.Index(c.value, "."); idx != -1 {
		return c.value[:idx]
	}
	return ""
}

// Name returns the name part from the code.
func (c Code) Name() string {
	if idx := strings.Index(c.value, "."); idx != -1 {
		return c.value[idx+1:]
	}
	return c.value
}

// IsValid reports whether the code is well-formed.
func (c Code) IsValid() bool { return codeRegex.MatchString(c.value) }

// Equals reports whether two codes are identical.
func (c Code) Equals(other Code) bool { return c.value == other.value }

// Common codes shared across packages.
var (
	CommonInternal   = MustNewCode("common.internal", KindInternal)
	CommonCancelled  = MustNewCode("common.cancelled", KindCancelled)
	CommonValidation = MustNewCode("common.invalid_config", KindInvalidConfig)
)
