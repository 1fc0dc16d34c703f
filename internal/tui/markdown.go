package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
)

// StyleAuto selects a light or dark style from the terminal background.
const StyleAuto = "auto"

// documentMargin is the left margin the standard glamour styles put around a
// document; word wrapping leaves room for it.
const documentMargin = 2

// MarkdownRenderer renders card details as Markdown wrapped to a given width.
// glamour renderers are not safe for concurrent use, so each width has a pool of
// them; rendered output is cached per width and source.
type MarkdownRenderer struct {
	style string

	mu    sync.Mutex
	pools map[int]*sync.Pool

	cacheMu sync.RWMutex
	cache   map[markdownKey]string
}

type markdownKey struct {
	width  int
	source string
}

// NewMarkdownRenderer creates a renderer using the named glamour style.
func NewMarkdownRenderer(style string) *MarkdownRenderer {
	if style == "" {
		style = StyleAuto
	}
	return &MarkdownRenderer{
		style: style,
		pools: make(map[int]*sync.Pool),
		cache: make(map[markdownKey]string),
	}
}

// Style returns the glamour style name.
func (r *MarkdownRenderer) Style() string {
	return r.style
}

// Render renders source wrapped so no line is wider than width cells. Blank
// source renders as "". When glamour fails the source is returned unchanged.
func (r *MarkdownRenderer) Render(source string, width int) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	width = max(width, 1)
	k := markdownKey{width: width, source: source}

	r.cacheMu.RLock()
	out, ok := r.cache[k]
	r.cacheMu.RUnlock()
	if ok {
		return out
	}

	out = r.render(source, width)

	r.cacheMu.Lock()
	r.cache[k] = out
	r.cacheMu.Unlock()
	return out
}

func (r *MarkdownRenderer) render(source string, width int) string {
	pool := r.pool(width)
	tr, _ := pool.Get().(*glamour.TermRenderer)
	if tr == nil {
		return strings.TrimSpace(source)
	}
	defer pool.Put(tr)

	out, err := tr.Render(source)
	if err != nil {
		return strings.TrimSpace(source)
	}
	return ansi.Hardwrap(trimBlankLines(out), width, true)
}

// trimBlankLines drops leading and trailing lines that render as whitespace and
// trailing spaces glamour pads each line with.
func trimBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	blank := func(ln string) bool {
		return strings.TrimSpace(ansi.Strip(ln)) == ""
	}
	for len(lines) > 0 && blank(lines[0]) {
		lines = lines[1:]
	}
	for len(lines) > 0 && blank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, " ")
	}
	return strings.Join(lines, "\n")
}

func (r *MarkdownRenderer) pool(width int) *sync.Pool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.pools[width]; ok {
		return p
	}
	style := r.style
	p := &sync.Pool{
		New: func() any {
			tr, err := glamour.NewTermRenderer(styleOption(style), glamour.WithWordWrap(max(width-documentMargin, 1)))
			if err != nil {
				return nil
			}
			return tr
		},
	}
	r.pools[width] = p
	return p
}

func styleOption(style string) glamour.TermRendererOption {
	if style == StyleAuto {
		return glamour.WithAutoStyle()
	}
	return glamour.WithStandardStyle(style)
}
