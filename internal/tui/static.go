package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/chronoline/internal/timeline"
)

// RenderPlain writes tl as plain text with no styling, one block per item.
func RenderPlain(w io.Writer, tl *timeline.Timeline) error {
	var b strings.Builder
	if tl.Title != "" {
		b.WriteString(tl.Title + "\n")
		b.WriteString(strings.Repeat("=", lipgloss.Width(tl.Title)) + "\n\n")
	}
	for i, it := range tl.Items {
		if i > 0 {
			b.WriteString("\n")
		}
		date := timeline.FormatDate(it.Date)
		if date == "" {
			date = "undated"
		}
		fmt.Fprintf(&b, "%s  %s\n", date, it.Heading())
		if it.Title != "" && it.CardTitle != "" {
			fmt.Fprintf(&b, "    %s\n", it.Title)
		}
		if it.CardSubtitle != "" {
			fmt.Fprintf(&b, "    %s\n", it.CardSubtitle)
		}
		for _, line := range strings.Split(strings.TrimSpace(it.Detail), "\n") {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(&b, "    %s\n", strings.TrimRight(line, " "))
			}
		}
		if it.URL != "" {
			fmt.Fprintf(&b, "    %s\n", it.URL)
		}
		if it.Media != nil && it.Media.URL != "" {
			fmt.Fprintf(&b, "    %s\n", mediaLine(it.Media))
		}
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing timeline: %w", err)
	}
	return nil
}

// RenderStyled writes tl as styled cards in vertical or alternating layout.
// Horizontal mode falls back to vertical since output is not interactive.
func RenderStyled(w io.Writer, tl *timeline.Timeline, opts Options) error {
	cards := NewCardRenderer(NewMarkdownRenderer(opts.MarkdownStyle), opts.CardWidth)
	mode := opts.Mode
	if mode == timeline.ModeHorizontal {
		mode = timeline.ModeVertical
	}
	width := cards.CardWidth() + axisWidth + 1
	if mode == timeline.ModeAlternating {
		width = 2*cards.CardWidth() + axisWidth
	}

	var b strings.Builder
	if tl.Title != "" {
		b.WriteString(HeaderStyle.Render(tl.Title) + "\n\n")
	}
	for i, it := range tl.Items {
		b.WriteString(cards.Row(it, i, mode, CardNormal, width))
		b.WriteString("\n")
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing timeline: %w", err)
	}
	return nil
}
