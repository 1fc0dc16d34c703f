package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/chronoline/internal/config"
	"github.com/rshade/chronoline/internal/timeline"
)

// parsedViewFlags parses args against the view command's flags.
func parsedViewFlags(t *testing.T, args ...string) (*cobra.Command, viewFlags) {
	t.Helper()
	var flags viewFlags
	cmd := newViewCmd(&session{})
	require.NoError(t, cmd.ParseFlags(args))
	flags.mode, _ = cmd.Flags().GetString("mode")
	flags.slideshow, _ = cmd.Flags().GetBool("slideshow")
	flags.duration, _ = cmd.Flags().GetDuration("duration")
	flags.search, _ = cmd.Flags().GetString("search")
	return cmd, flags
}

func TestViewOptions_Precedence(t *testing.T) {
	cfg := config.New()
	cfg.View.Mode = "horizontal"
	cfg.View.CardWidth = 60
	cfg.Slideshow.Duration = 7 * time.Second
	cfg.Search.CaseSensitive = true

	fileMode := &timeline.Timeline{Mode: timeline.ModeAlternating, HasMode: true}
	noMode := &timeline.Timeline{}
	resumed := &config.ViewState{SelectedID: "apollo-11", Mode: "vertical", Slideshow: true}

	tests := []struct {
		name          string
		tl            *timeline.Timeline
		resumed       *config.ViewState
		args          []string
		wantMode      timeline.Mode
		wantSlideshow bool
		wantDuration  time.Duration
		wantInitialID string
	}{
		{name: "config", tl: noMode, wantMode: timeline.ModeHorizontal, wantDuration: 7 * time.Second},
		{name: "file over config", tl: fileMode, wantMode: timeline.ModeAlternating, wantDuration: 7 * time.Second},
		{
			name: "resumed over file", tl: fileMode, resumed: resumed,
			wantMode: timeline.ModeVertical, wantSlideshow: true, wantDuration: 7 * time.Second, wantInitialID: "apollo-11",
		},
		{
			name: "flags over resumed", tl: fileMode, resumed: resumed,
			args:     []string{"--mode", "horizontal", "--slideshow=false", "--duration", "2s"},
			wantMode: timeline.ModeHorizontal, wantDuration: 2 * time.Second, wantInitialID: "apollo-11",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, flags := parsedViewFlags(t, tt.args...)

			opts, err := viewOptions(cfg, tt.tl, flags, cmd.Flags(), tt.resumed)

			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, opts.Mode)
			assert.Equal(t, tt.wantSlideshow, opts.Slideshow)
			assert.Equal(t, tt.wantDuration, opts.SlideDuration)
			assert.Equal(t, tt.wantInitialID, opts.InitialID)
			assert.Equal(t, 60, opts.CardWidth)
			assert.True(t, opts.CaseSensitive)
		})
	}
}

func TestViewOptions_BadResumedModeIgnored(t *testing.T) {
	cmd, flags := parsedViewFlags(t)

	opts, err := viewOptions(config.New(), &timeline.Timeline{}, flags, cmd.Flags(), &config.ViewState{Mode: "sideways"})

	require.NoError(t, err)
	assert.Equal(t, timeline.ModeVertical, opts.Mode)
}

func TestStateSource(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	source := stateSource([]string{"a.yaml", "b.csv"})

	parts := strings.Split(source, string(filepath.ListSeparator))
	require.Len(t, parts, 2)
	assert.Equal(t, filepath.Join(wd, "a.yaml"), parts[0])
	assert.Equal(t, filepath.Join(wd, "b.csv"), parts[1])
	assert.NotEqual(t, source, stateSource([]string{"b.csv", "a.yaml"}))
}

func TestViewState_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	_, ok := loadViewState(ctx, path, "src")
	assert.False(t, ok)

	require.NoError(t, saveViewState(ctx, path, config.ViewState{
		Source: "src", SelectedID: "apollo-8", Mode: "alternating", Slideshow: true,
	}))

	vs, ok := loadViewState(ctx, path, "src")
	require.True(t, ok)
	assert.Equal(t, "apollo-8", vs.SelectedID)
	assert.Equal(t, "alternating", vs.Mode)
	assert.True(t, vs.Slideshow)
	assert.False(t, vs.UpdatedAt.IsZero())
}

func TestViewState_CorruptFileIsReplaced(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, ok := loadViewState(ctx, path, "src")
	assert.False(t, ok)

	require.NoError(t, saveViewState(ctx, path, config.ViewState{Source: "src", SelectedID: "x"}))
	vs, ok := loadViewState(ctx, path, "src")
	require.True(t, ok)
	assert.Equal(t, "x", vs.SelectedID)
}

func TestSession_StatePath(t *testing.T) {
	assert.Empty(t, (&session{}).statePath())
	assert.Equal(t, filepath.Join("/p/.chronoline", "state.json"),
		(&session{projectDir: "/p/.chronoline"}).statePath())
}
