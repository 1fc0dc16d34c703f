package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/chronoline/internal/config"
	"github.com/rshade/chronoline/internal/logging"
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger = zerolog.Nop() //nolint:gochecknoglobals // Required for zerolog context integration

// session holds what PersistentPreRunE resolved for the running command.
type session struct {
	cfg        *config.Config
	configPath string
	projectDir string
	logResult  *logging.LogPathResult
}

// NewRootCmd creates the root Cobra command for the chronoline CLI.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithEnv(ver, os.LookupEnv)
}

// NewRootCmdWithEnv creates the root command with an explicit env lookup for testability.
func NewRootCmdWithEnv(ver string, lookupEnv func(string) (string, bool)) *cobra.Command {
	s := &session{}

	cmd := &cobra.Command{
		Use:     "chronoline",
		Short:   "Terminal timeline viewer",
		Long:    "chronoline: browse YAML and CSV timelines in the terminal, with search and a slideshow",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := s.load(cmd, lookupEnv); err != nil {
				return err
			}
			result := setupLogging(cmd, s.cfg.Logging)
			s.logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return cleanupLogging(s.logResult)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file (default $CHRONOLINE_HOME/config.yaml)")
	cmd.PersistentFlags().String("project-dir", "", "project directory holding a .chronoline/ overlay")
	cmd.AddCommand(newViewCmd(s), newValidateCmd(), newConfigCmd(s))

	return cmd
}

// load resolves the config file and project overlay, then applies environment
// overrides.
func (s *session) load(cmd *cobra.Command, lookupEnv func(string) (string, bool)) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	projectFlag, _ := cmd.Flags().GetString("project-dir")
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}
	ctx := cmd.Context()
	s.projectDir = config.ResolveProjectDir(ctx, projectFlag, wd)

	cfg, err := config.LoadWithProjectDir(ctx, path, s.projectDir)
	if err != nil {
		return err
	}
	if err = cfg.ApplyEnv(lookupEnv); err != nil {
		return fmt.Errorf("applying environment: %w", err)
	}
	s.cfg = cfg
	s.configPath = path
	return nil
}

const rootCmdExample = `  # Browse a timeline
  chronoline view history.yaml

  # Merge several files and start a slideshow
  chronoline view apollo.yaml gemini.csv --slideshow --duration 8s

  # Open in alternating mode with a search applied
  chronoline view history.yaml --mode alternating --search moon

  # Print the timeline without the interactive viewer
  chronoline view history.yaml --plain

  # Check files for errors
  chronoline validate history.yaml

  # Create a project-local configuration
  chronoline config init --project`
