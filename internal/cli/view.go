package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rshade/chronoline/internal/config"
	"github.com/rshade/chronoline/internal/logging"
	"github.com/rshade/chronoline/internal/timeline"
	"github.com/rshade/chronoline/internal/tui"
)

type viewFlags struct {
	mode      string
	slideshow bool
	duration  time.Duration
	search    string
	plain     bool
	resume    bool
}

// newViewCmd creates the view command, which opens one or more timeline files.
func newViewCmd(s *session) *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "view FILE...",
		Short: "Browse timeline files",
		Long: `Loads one or more YAML or CSV timeline files, merges them in date order and
opens the interactive viewer. When standard output is not a terminal the
timeline is printed as styled cards instead; --plain prints plain text.`,
		Example: `  chronoline view history.yaml
  chronoline view apollo.yaml gemini.csv --mode horizontal
  chronoline view history.yaml --slideshow --duration 3s
  chronoline view history.yaml --plain > history.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, s, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.mode, "mode", "", "layout: vertical, horizontal or alternating")
	cmd.Flags().BoolVar(&flags.slideshow, "slideshow", false, "start the slideshow immediately")
	cmd.Flags().DurationVar(&flags.duration, "duration", 0, "time each item is shown during the slideshow")
	cmd.Flags().StringVar(&flags.search, "search", "", "initial search query")
	cmd.Flags().BoolVar(&flags.plain, "plain", false, "print plain text and exit")
	cmd.Flags().BoolVar(&flags.resume, "resume", true, "reopen at the item selected when the timeline was last closed")

	return cmd
}

func runView(cmd *cobra.Command, s *session, paths []string, flags viewFlags) error {
	if err := s.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	ctx := cmd.Context()

	tl, err := timeline.LoadFiles(ctx, paths)
	if err != nil {
		return fmt.Errorf("loading timeline: %w", err)
	}

	out := cmd.OutOrStdout()
	if flags.plain {
		return tui.RenderPlain(out, tl)
	}

	var resumed *config.ViewState
	source := stateSource(paths)
	statePath := s.statePath()
	if flags.resume {
		if vs, ok := loadViewState(ctx, statePath, source); ok {
			resumed = &vs
		}
	}

	opts, err := viewOptions(s.cfg, tl, flags, cmd.Flags(), resumed)
	if err != nil {
		return err
	}
	opts.Context = ctx

	if !isTerminal(out) {
		if flags.search != "" {
			tl = filterTimeline(tl, flags.search, opts.CaseSensitive)
		}
		return tui.RenderStyled(out, tl, opts)
	}

	// The viewer owns the terminal; only file logging is kept.
	opts.Logger = zerolog.Nop()
	if s.logResult != nil && s.logResult.UsingFile {
		opts.Logger = logging.ComponentLogger(s.logResult.Logger, "tui")
	}

	model := tui.NewTimelineModel(tl, opts)
	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(out),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)
	final, err := program.Run()
	model.Close()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running viewer: %w", err)
	}

	if fm, ok := final.(tui.TimelineModel); ok {
		fm.Close()
		state := config.ViewState{
			Source:     source,
			SelectedID: fm.SelectedID(),
			Mode:       fm.Mode().String(),
			Slideshow:  fm.SlideshowEnabled(),
		}
		if saveErr := saveViewState(ctx, statePath, state); saveErr != nil {
			logger.Warn().Ctx(ctx).Err(saveErr).Msg("could not save view state")
		}
	}
	return nil
}

// viewOptions builds viewer options. Precedence, highest first: flags, the
// resumed session, the timeline file, the configuration.
func viewOptions(
	cfg *config.Config,
	tl *timeline.Timeline,
	flags viewFlags,
	set *pflag.FlagSet,
	resumed *config.ViewState,
) (tui.Options, error) {
	opts := tui.DefaultOptions()

	mode, err := timeline.ParseMode(cfg.View.Mode)
	if err != nil {
		return opts, err
	}
	if tl.HasMode {
		mode = tl.Mode
	}
	if resumed != nil && resumed.Mode != "" {
		if m, parseErr := timeline.ParseMode(resumed.Mode); parseErr == nil {
			mode = m
		}
	}
	if set.Changed("mode") {
		if mode, err = timeline.ParseMode(flags.mode); err != nil {
			return opts, err
		}
	}
	opts.Mode = mode

	opts.EstimatedItemHeight = cfg.View.EstimatedItemHeight
	opts.Overscan = cfg.View.Overscan
	opts.CardWidth = cfg.View.CardWidth
	opts.MarkdownStyle = cfg.View.MarkdownStyle
	opts.PrewarmThreshold = cfg.View.PrewarmThreshold

	opts.Slideshow = cfg.Slideshow.Enabled
	if resumed != nil {
		opts.Slideshow = resumed.Slideshow
	}
	if set.Changed("slideshow") {
		opts.Slideshow = flags.slideshow
	}
	opts.SlideDuration = cfg.Slideshow.Duration
	if set.Changed("duration") {
		if flags.duration <= 0 {
			return opts, fmt.Errorf("--duration must be positive, got %s", flags.duration)
		}
		opts.SlideDuration = flags.duration
	}
	opts.FrameInterval = cfg.Slideshow.FrameInterval
	opts.Loop = cfg.Slideshow.Loop

	opts.Search = flags.search
	opts.CaseSensitive = cfg.Search.CaseSensitive
	if resumed != nil {
		opts.InitialID = resumed.SelectedID
	}
	return opts, nil
}

// filterTimeline keeps the items matching query, for non-interactive output.
func filterTimeline(tl *timeline.Timeline, query string, caseSensitive bool) *timeline.Timeline {
	out := *tl
	out.Items = nil
	for _, i := range timeline.Search(tl.Items, query, caseSensitive) {
		out.Items = append(out.Items, tl.Items[i])
	}
	return &out
}

// stateSource identifies a set of input files in the view state store.
func stateSource(paths []string) string {
	abs := make([]string, len(paths))
	for i, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			a = p
		}
		abs[i] = a
	}
	return strings.Join(abs, string(filepath.ListSeparator))
}

// statePath returns where view state is kept: the project directory when one
// was found, otherwise the chronoline home directory.
func (s *session) statePath() string {
	if s.projectDir != "" {
		return filepath.Join(s.projectDir, "state.json")
	}
	return ""
}

func loadViewState(ctx context.Context, path, source string) (config.ViewState, bool) {
	store, err := config.NewViewStateStore(path)
	if err != nil {
		logger.Warn().Ctx(ctx).Err(err).Msg("could not locate view state")
		return config.ViewState{}, false
	}
	if err = store.Load(); err != nil {
		logger.Warn().Ctx(ctx).Err(err).Str("path", store.FilePath()).Msg("ignoring view state")
		return config.ViewState{}, false
	}
	return store.Get(source)
}

// saveViewState records state, dropping records untouched for staleStateAge.
func saveViewState(ctx context.Context, path string, state config.ViewState) error {
	store, err := config.NewViewStateStore(path)
	if err != nil {
		return err
	}
	if err = store.Load(); err != nil && !errors.Is(err, config.ErrStateCorrupted) {
		return err
	}
	if err = store.Set(state); err != nil {
		return err
	}
	if n := store.Prune(time.Now().Add(-staleStateAge)); n > 0 {
		logger.Debug().Ctx(ctx).Int("pruned", n).Msg("pruned stale view state")
	}
	return store.Save()
}

const staleStateAge = 90 * 24 * time.Hour
