package redeemscan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPartitionRoundRobin(t *testing.T) {
	tokens := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	parts := partitionRoundRobin(tokens, 3)
	require.Len(t, parts, 3)
	require.Equal(t, []string{"a", "d", "g", "j"}, parts[0])
	require.Equal(t, []string{"b", "e", "h"}, parts[1])
	require.Equal(t, []string{"c", "f", "i"}, parts[2])

	seen := map[string]int{}
	for _, part := range parts {
		for _, tok := range part {
			seen[tok]++
		}
	}
	require.Len(t, seen, len(tokens))
	for tok, n := range seen {
		require.Equal(t, 1, n, tok)
	}
}

func TestTargetURL(t *testing.T) {
	p := Params{BaseURL: "https://example.test/redeem?code="}
	require.Equal(t, "https://example.test/redeem?code=abcxyz", p.TargetURL("abcxyz"))
	p.BaseURL = "https://example.test/i/{token}/claim"
	require.Equal(t, "https://example.test/i/abcxyz/claim", p.TargetURL("abcxyz"))
}

func TestParamsWithDefaults(t *testing.T) {
	p := Params{BaseURL: " https://example.test/r?c= "}.WithDefaults()
	require.Equal(t, "https://example.test/r?c=", p.BaseURL)
	require.Equal(t, 4, p.Workers)
	require.Equal(t, 10000, p.TokensPerWorker)
	require.Equal(t, 500*time.Millisecond, p.Delay)
	require.Equal(t, 50, p.ProgressEvery)
	require.Equal(t, 1, p.StartupAttempts)
	require.NoError(t, p.Validate())
}

func TestWindowCap(t *testing.T) {
	require.Equal(t, 0, windowCap(0))
	require.Equal(t, 1, windowCap(10))
	require.Equal(t, 16, windowCap(1024))
	require.GreaterOrEqual(t, fdSoftLimit(), 0)
}
