package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "bulletin/pkg/domain-errors"
)

func TestParseSubscriberNameAcceptsOrdinaryNames(t *testing.T) {
	for _, raw := range []string{"allen", "allen liu", "Ursula K. Le Guin", "José", "李雷"} {
		name, err := ParseSubscriberName(raw)
		require.NoError(t, err, "name %q", raw)
		assert.Equal(t, raw, name.String())
	}
}

func TestParseSubscriberNameRejectsEmptyAndWhitespace(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		_, err := ParseSubscriberName(raw)
		require.Error(t, err, "name %q", raw)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	}
}

func TestParseSubscriberNameLengthBoundary(t *testing.T) {
	_, err := ParseSubscriberName(strings.Repeat("a", 256))
	assert.NoError(t, err, "256 characters is the maximum")

	_, err = ParseSubscriberName(strings.Repeat("a", 257))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestParseSubscriberNameCountsCharactersNotBytes(t *testing.T) {
	// 256 multi-byte runes must pass even though the byte length exceeds 256.
	_, err := ParseSubscriberName(strings.Repeat("é", 256))
	assert.NoError(t, err)
}

func TestParseSubscriberNameRejectsForbiddenCharacters(t *testing.T) {
	for _, c := range []string{"/", "(", ")", `"`, "<", ">", `\`, "{", "}"} {
		_, err := ParseSubscriberName("allen" + c)
		require.Error(t, err, "character %q", c)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	}
}
