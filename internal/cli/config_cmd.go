package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/chronoline/internal/config"
)

// newConfigCmd creates the config command group.
func newConfigCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(newConfigInitCmd(s), newConfigShowCmd(s), newConfigValidateCmd(s))
	return cmd
}

// newConfigInitCmd writes a configuration file with default values.
func newConfigInitCmd(s *session) *cobra.Command {
	var (
		force   bool
		project bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values.

With --project, creates $PWD/.chronoline/config.yaml (or the config.yaml of the
project directory already in use) with a .gitignore that keeps per-user view
state out of version control.`,
		Example: `  # Create global configuration
  chronoline config init

  # Create project-local configuration
  chronoline config init --project

  # Create configuration, overwriting existing
  chronoline config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !project {
				return writeDefaultConfig(cmd, s.configPath, force)
			}
			dir := s.projectDir
			if dir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("resolving working directory: %w", err)
				}
				dir = filepath.Join(wd, ".chronoline")
			}
			if err := writeDefaultConfig(cmd, filepath.Join(dir, "config.yaml"), force); err != nil {
				return err
			}
			created, err := config.EnsureGitignore(dir)
			if err != nil {
				return fmt.Errorf("failed to create .gitignore: %w", err)
			}
			if created {
				cmd.Printf("Created .gitignore to keep view state out of version control\n")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	cmd.Flags().BoolVar(&project, "project", false, "initialize project-local configuration")

	return cmd
}

func writeDefaultConfig(cmd *cobra.Command, path string, force bool) error {
	if !force {
		_, err := os.Stat(path)
		if err == nil {
			return errors.New("configuration file already exists, use --force to overwrite")
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access config path %s: %w", path, err)
		}
	}
	if err := config.New().Save(path); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	cmd.Printf("Configuration initialized at %s\n", path)
	return nil
}

// newConfigShowCmd prints the effective configuration.
func newConfigShowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Prints the configuration after the global file, the project overlay and
environment overrides have been applied.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := yaml.Marshal(s.cfg)
			if err != nil {
				return fmt.Errorf("encoding configuration: %w", err)
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "# global: %s\n", s.configPath)
			if s.projectDir != "" {
				_, _ = fmt.Fprintf(out, "# project: %s\n", s.projectDir)
			}
			_, err = out.Write(data)
			return err
		},
	}
}

// newConfigValidateCmd checks the effective configuration.
func newConfigValidateCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := s.cfg.Validate(); err != nil {
				return err
			}
			cmd.Println("Configuration is valid")
			return nil
		},
	}
}
