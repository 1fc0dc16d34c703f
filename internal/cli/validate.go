package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/chronoline/internal/timeline"
)

// ErrInvalidFiles is returned by validate when at least one file fails to load.
var ErrInvalidFiles = errors.New("invalid timeline files")

// newValidateCmd creates the validate command, which loads files and reports
// problems without opening the viewer.
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check timeline files for errors",
		Long: `Loads each file on its own and reports its item count and date span, then
checks that the files can be merged (for example that item IDs are unique
across files).`,
		Example: `  chronoline validate history.yaml
  chronoline validate apollo.yaml gemini.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, paths []string) error {
	failed := 0
	for _, path := range paths {
		tl, err := timeline.LoadFile(path)
		if err == nil {
			err = tl.Finalize()
		}
		if err != nil {
			failed++
			cmd.Printf("✗ %v\n", err)
			continue
		}
		cmd.Printf("✓ %s: %s\n", path, describe(tl))
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d failed", ErrInvalidFiles, failed, len(paths))
	}

	if len(paths) > 1 {
		tl, err := timeline.LoadFiles(cmd.Context(), paths)
		if err != nil {
			cmd.Printf("✗ merge: %v\n", err)
			return fmt.Errorf("%w: %w", ErrInvalidFiles, err)
		}
		cmd.Printf("✓ merged: %s\n", describe(tl))
	}
	return nil
}

func describe(tl *timeline.Timeline) string {
	s := fmt.Sprintf("%d items", tl.Len())
	if first, last, ok := tl.Span(); ok {
		s += fmt.Sprintf(", %s → %s", timeline.FormatDate(first), timeline.FormatDate(last))
	}
	if tl.HasMode {
		s += ", mode " + tl.Mode.String()
	}
	return s
}
