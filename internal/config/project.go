package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rshade/chronoline/internal/logging"
)

// EnvProjectDir overrides project directory discovery.
const EnvProjectDir = "CHRONOLINE_PROJECT_DIR"

// ResolveProjectDir determines the project-local .chronoline directory path.
// It checks (in order):
//  1. flagValue (--project-dir CLI flag)
//  2. CHRONOLINE_PROJECT_DIR env var
//  3. a .chronoline directory in startDir or any of its parents
//
// Returns an absolute path, or "" when no project directory was found.
// Does NOT create the directory.
func ResolveProjectDir(ctx context.Context, flagValue, startDir string) string {
	if flagValue != "" {
		return toAbsProjectDir(ctx, flagValue)
	}

	if envDir := os.Getenv(EnvProjectDir); envDir != "" {
		return toAbsProjectDir(ctx, envDir)
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, homeDirName)
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
			// The global home directory is not a project.
			if global, homeErr := HomeDir(); homeErr == nil && filepath.Clean(global) == candidate {
				return ""
			}
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// LoadWithProjectDir loads the global config at globalPath, then shallow-merges
// the project-local config.yaml from projectDir on top when it exists. A broken
// project overlay is logged and ignored.
func LoadWithProjectDir(ctx context.Context, globalPath, projectDir string) (*Config, error) {
	cfg, err := Load(globalPath)
	if err != nil {
		return nil, err
	}
	if projectDir == "" {
		return cfg, nil
	}

	overlayPath := filepath.Join(projectDir, configFileName)
	if _, statErr := os.Stat(overlayPath); statErr != nil {
		// Missing project config is not an error; use global settings.
		return cfg, nil
	}

	merged := *cfg
	if err = ShallowMergeYAML(&merged, overlayPath); err != nil {
		logging.FromContext(ctx).Warn().
			Str("component", "config").
			Str("operation", "merge_project_config").
			Err(err).
			Str("overlay_path", overlayPath).
			Msg("failed to merge project config, using global settings")
		return cfg, nil
	}
	return &merged, nil
}

// toAbsProjectDir converts dir to an absolute path and appends ".chronoline"
// unless it already ends with it.
func toAbsProjectDir(ctx context.Context, dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		logging.FromContext(ctx).Warn().
			Str("component", "config").
			Err(err).
			Str("dir", dir).
			Msg("failed to resolve absolute path for project directory")
		abs = dir
	}

	if filepath.Base(abs) == homeDirName {
		return abs
	}
	return filepath.Join(abs, homeDirName)
}
