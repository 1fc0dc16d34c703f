package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/chronoline/internal/cli"
)

// testdataPath returns the absolute path of a timeline fixture.
func testdataPath(t *testing.T, name string) string {
	t.Helper()
	p, err := filepath.Abs(filepath.Join("..", "timeline", "testdata", name))
	require.NoError(t, err)
	return p
}

// setupCLITest isolates the home and working directories. It returns the
// working directory.
func setupCLITest(t *testing.T) string {
	t.Helper()
	t.Setenv("CHRONOLINE_HOME", t.TempDir())
	t.Setenv("CHRONOLINE_PROJECT_DIR", "")
	wd := t.TempDir()
	t.Chdir(wd)
	return wd
}

// execute runs the root command with args and a fixed environment.
func execute(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	var buf bytes.Buffer
	cmd := cli.NewRootCmdWithEnv("test", lookup)
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestView_Plain(t *testing.T) {
	apollo := testdataPath(t, "apollo.yaml")
	setupCLITest(t)

	out, err := execute(t, nil, "view", "--plain", apollo)

	require.NoError(t, err)
	assert.Contains(t, out, "Apollo program\n==============")
	assert.Contains(t, out, "1969-07-20  Apollo 11")
	assert.Contains(t, out, "undated  Aftermath")
}

func TestView_StyledWhenNotTerminal(t *testing.T) {
	apollo := testdataPath(t, "apollo.yaml")
	setupCLITest(t)

	out, err := execute(t, nil, "view", apollo, "--mode", "vertical")

	require.NoError(t, err)
	assert.Contains(t, out, "Apollo 11")
	assert.Contains(t, out, "╭")
}

func TestView_SearchFiltersStaticOutput(t *testing.T) {
	apollo := testdataPath(t, "apollo.yaml")
	setupCLITest(t)

	out, err := execute(t, nil, "view", apollo, "--search", "tranquility")

	require.NoError(t, err)
	assert.Contains(t, out, "Apollo 11")
	assert.NotContains(t, out, "Apollo 8")
}

func TestView_MergesFiles(t *testing.T) {
	apollo := testdataPath(t, "apollo.yaml")
	gemini := testdataPath(t, "gemini.csv")
	setupCLITest(t)

	out, err := execute(t, nil, "view", "--plain", apollo, gemini)

	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Gemini 3"), strings.Index(out, "Apollo 8"),
		"items are merged in date order")
}

func TestView_Errors(t *testing.T) {
	apollo := testdataPath(t, "apollo.yaml")

	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		wantErr string
	}{
		{name: "no files", args: []string{"view"}, wantErr: "requires at least 1 arg"},
		{name: "missing file", args: []string{"view", "nope.yaml"}, wantErr: "loading timeline"},
		{name: "bad mode flag", args: []string{"view", apollo, "--mode", "diagonal"}, wantErr: "diagonal"},
		{name: "bad duration", args: []string{"view", apollo, "--duration", "0s"}, wantErr: "--duration must be positive"},
		{
			name:    "bad mode env",
			env:     map[string]string{"CHRONOLINE_MODE": "diagonal"},
			args:    []string{"view", apollo},
			wantErr: "invalid configuration",
		},
		{
			name:    "bad duration env",
			env:     map[string]string{"CHRONOLINE_SLIDESHOW_DURATION": "soon"},
			args:    []string{"view", apollo},
			wantErr: "applying environment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCLITest(t)
			_, err := execute(t, tt.env, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	apollo := testdataPath(t, "apollo.yaml")
	gemini := testdataPath(t, "gemini.csv")
	setupCLITest(t)

	out, err := execute(t, nil, "validate", apollo, gemini)

	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+apollo+": 4 items, 1968-12-21 → 1972-12-07 05:33, mode alternating")
	assert.Contains(t, out, "✓ merged: 7 items")
}

func TestValidate_InvalidFile(t *testing.T) {
	apollo := testdataPath(t, "apollo.yaml")
	wd := setupCLITest(t)
	bad := filepath.Join(wd, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("version: \"2.0\"\nitems: []\n"), 0o600))

	out, err := execute(t, nil, "validate", apollo, bad)

	require.ErrorIs(t, err, cli.ErrInvalidFiles)
	assert.Contains(t, err.Error(), "1 of 2 failed")
	assert.Contains(t, out, "✗")
}

func TestValidate_DuplicateIDsAcrossFiles(t *testing.T) {
	apollo := testdataPath(t, "apollo.yaml")
	wd := setupCLITest(t)
	dup := filepath.Join(wd, "dup.yaml")
	require.NoError(t, os.WriteFile(dup, []byte("items:\n  - id: apollo-11\n    card_title: Again\n"), 0o600))

	out, err := execute(t, nil, "validate", apollo, dup)

	require.ErrorIs(t, err, cli.ErrInvalidFiles)
	assert.Contains(t, out, "✗ merge")
}
