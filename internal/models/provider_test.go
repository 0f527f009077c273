package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseProvider tests identifier validation
func TestParseProvider(t *testing.T) {
	for _, p := range AllProviders() {
		got, err := ParseProvider(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := ParseProvider("gpt-5")
	assert.Error(t, err)
	_, err = ParseProvider("")
	assert.Error(t, err)
}

// TestAllProviders_FallbackOrder tests that the local backup comes last
func TestAllProviders_FallbackOrder(t *testing.T) {
	providers := AllProviders()
	require.Len(t, providers, 4)
	assert.Equal(t, ProviderGPT4, providers[0])
	assert.Equal(t, ProviderLocalBackup, providers[len(providers)-1])
}
