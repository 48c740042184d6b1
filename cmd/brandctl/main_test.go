package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instagenie/internal/brand"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestPromptCommand(t *testing.T) {
	out, _, err := run(t, "prompt",
		"--company", "Acme", "--industry", "Coffee", "--theme", "Autumn launch",
		"--tone", "bold", "--variation", "2", "--colors", "#112233,#445566")
	require.NoError(t, err)

	assert.Contains(t, out, "for Acme, a company in the Coffee industry")
	assert.Contains(t, out, "Primary Color: #112233")
	assert.Contains(t, out, "Secondary Colors: #112233, #445566")
	assert.Contains(t, out, brand.ToneBold.Description())
	assert.Contains(t, out, "lifestyle context")
	assert.NotContains(t, out, "IMPORTANT")
}

func TestPromptCommand_BadColor(t *testing.T) {
	_, _, err := run(t, "prompt", "--colors", "nothex")
	assert.ErrorIs(t, err, brand.ErrInvalidColor)
}

func TestPromptCommand_ColorsDoNotCarryOver(t *testing.T) {
	_, _, err := run(t, "prompt", "--colors", "#112233,#445566")
	require.NoError(t, err)

	out, _, err := run(t, "prompt", "--colors", "#abcdef")
	require.NoError(t, err)
	assert.Contains(t, out, "Primary Color: #abcdef")
	assert.Contains(t, out, "Secondary Colors: #abcdef\n")
	assert.NotContains(t, out, "#112233")

	out, _, err = run(t, "prompt")
	require.NoError(t, err)
	assert.Contains(t, out, "Primary Color: #6366f1")
}

func TestPaletteCommand_Fallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	out, stderr, err := run(t, "palette", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "warning: using default palette")

	var p brand.Palette
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, brand.FallbackPalette(), p)
}

func TestTonesCommand(t *testing.T) {
	out, _, err := run(t, "tones")
	require.NoError(t, err)
	for _, tone := range brand.Tones() {
		assert.Contains(t, out, string(tone))
	}
	assert.Contains(t, out, "5. Highlight the key benefit")
}
