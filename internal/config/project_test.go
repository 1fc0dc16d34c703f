package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/chronoline/internal/config"
)

// isolateHome points CHRONOLINE_HOME at an empty temp dir so walk-up discovery
// never mistakes the real global directory for a project.
func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvHome, filepath.Join(t.TempDir(), "home"))
	t.Setenv(config.EnvProjectDir, "")
}

func TestResolveProjectDir_FlagOverride(t *testing.T) {
	isolateHome(t)
	flagDir := t.TempDir()

	got := config.ResolveProjectDir(context.Background(), flagDir, "/does/not/matter")

	assert.Equal(t, filepath.Join(flagDir, ".chronoline"), got)
	assert.True(t, filepath.IsAbs(got), "returned path must be absolute")
}

func TestResolveProjectDir_FlagAlreadyNamed(t *testing.T) {
	isolateHome(t)
	flagDir := filepath.Join(t.TempDir(), ".chronoline")

	got := config.ResolveProjectDir(context.Background(), flagDir, "")

	assert.Equal(t, flagDir, got)
}

func TestResolveProjectDir_FlagOverridesEnv(t *testing.T) {
	isolateHome(t)
	envDir := t.TempDir()
	flagDir := t.TempDir()
	t.Setenv(config.EnvProjectDir, envDir)

	got := config.ResolveProjectDir(context.Background(), flagDir, "/does/not/matter")

	assert.Equal(t, filepath.Join(flagDir, ".chronoline"), got)
}

func TestResolveProjectDir_EnvVarOverride(t *testing.T) {
	isolateHome(t)
	envDir := t.TempDir()
	t.Setenv(config.EnvProjectDir, envDir)

	got := config.ResolveProjectDir(context.Background(), "", "/does/not/matter")

	assert.Equal(t, filepath.Join(envDir, ".chronoline"), got)
}

func TestResolveProjectDir_WalkUp(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	project := filepath.Join(root, ".chronoline")
	require.NoError(t, os.MkdirAll(project, 0o755))

	subDir := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(subDir, 0o755))

	got := config.ResolveProjectDir(context.Background(), "", subDir)

	assert.Equal(t, project, got)
}

func TestResolveProjectDir_NoProject(t *testing.T) {
	isolateHome(t)

	got := config.ResolveProjectDir(context.Background(), "", t.TempDir())

	assert.Empty(t, got, "should return empty string when no project found")
}

func TestResolveProjectDir_SkipsGlobalHome(t *testing.T) {
	root := t.TempDir()
	global := filepath.Join(root, ".chronoline")
	require.NoError(t, os.MkdirAll(global, 0o755))
	t.Setenv(config.EnvHome, global)
	t.Setenv(config.EnvProjectDir, "")

	got := config.ResolveProjectDir(context.Background(), "", root)

	assert.Empty(t, got)
}

func TestLoadWithProjectDir(t *testing.T) {
	globalPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(globalPath, []byte("logging:\n  level: warn\n  format: json\n"), 0o600))

	t.Run("no project dir", func(t *testing.T) {
		cfg, err := config.LoadWithProjectDir(context.Background(), globalPath, "")
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, config.DefaultMode, cfg.View.Mode)
	})

	t.Run("project without config file", func(t *testing.T) {
		cfg, err := config.LoadWithProjectDir(context.Background(), globalPath, t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})

	t.Run("project overlay", func(t *testing.T) {
		project := t.TempDir()
		overlay := "view:\n  mode: alternating\n  estimated_item_height: 5\n  overscan: 2\n  card_width: 40\n"
		require.NoError(t, os.WriteFile(filepath.Join(project, "config.yaml"), []byte(overlay), 0o600))

		cfg, err := config.LoadWithProjectDir(context.Background(), globalPath, project)
		require.NoError(t, err)
		assert.Equal(t, "alternating", cfg.View.Mode)
		assert.Equal(t, 40, cfg.View.CardWidth)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})

	t.Run("broken overlay falls back to global", func(t *testing.T) {
		project := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(project, "config.yaml"), []byte("view: [oops\n"), 0o600))

		cfg, err := config.LoadWithProjectDir(context.Background(), globalPath, project)
		require.NoError(t, err)
		assert.Equal(t, config.DefaultMode, cfg.View.Mode)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})

	t.Run("broken global config is an error", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("logging: [\n"), 0o600))

		_, err := config.LoadWithProjectDir(context.Background(), bad, "")
		require.Error(t, err)
	})
}
