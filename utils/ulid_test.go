package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateULID_UniqueAndWellFormed(t *testing.T) {
	a := GenerateULID()
	b := GenerateULID()

	assert.NotEqual(t, a.String(), b.String())
	assert.Len(t, a.String(), 26)
}

func TestGenerateULIDString(t *testing.T) {
	assert.Len(t, GenerateULIDString(), 26)
}

func TestParseULID_RoundTrips(t *testing.T) {
	original := GenerateULID()

	parsed, err := ParseULID(original.String())
	require.NoError(t, err)
	assert.Equal(t, original.String(), parsed.String())
}

func TestMustParseULID_RoundTrips(t *testing.T) {
	original := GenerateULID()
	parsed := MustParseULID(original.String())
	assert.Equal(t, original.String(), parsed.String())
}

func TestParseULID_InvalidStringFails(t *testing.T) {
	_, err := ParseULID("not-a-ulid")
	require.Error(t, err)
}
