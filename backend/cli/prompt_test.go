package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPositiveIntRepromptsOnBadInput(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("abc\n-2\n0\n7\n"), &out)

	require.Equal(t, 7, p.positiveInt("Workers?", 4))
	require.Equal(t, 1, strings.Count(out.String(), "Please enter a valid number."))
	require.Equal(t, 2, strings.Count(out.String(), "Please enter a positive number."))
}

func TestPositiveIntDefaults(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("\n"), &out)
	require.Equal(t, 4, p.positiveInt("Workers?", 4))
	require.Contains(t, out.String(), "[default: 4]")

	// EOF keeps the default as well.
	require.Equal(t, 9, p.positiveInt("Tokens?", 9))
}

func TestYesNo(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("maybe\nN\n\nyes\n"), &out)

	require.False(t, p.yesNo("Headless?", true))
	require.Contains(t, out.String(), "Please enter 'y' for yes or 'n' for no.")
	require.True(t, p.yesNo("Headless?", true))
	require.True(t, p.yesNo("Headless?", false))
	require.False(t, p.yesNo("Headless?", false))
}

func TestYesNoWithoutTrailingNewline(t *testing.T) {
	p := newPrompter(strings.NewReader("n"), &bytes.Buffer{})
	require.False(t, p.yesNo("Headless?", true))
}
