package timeline

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Mode is the layout used to present a timeline.
type Mode int

const (
	// ModeVertical stacks cards top to bottom.
	ModeVertical Mode = iota
	// ModeHorizontal shows a strip of dates with the selected card below it.
	ModeHorizontal
	// ModeAlternating stacks cards top to bottom on alternating sides of the axis.
	ModeAlternating
)

// ErrUnknownMode is returned by ParseMode for unrecognized names.
var ErrUnknownMode = errors.New("unknown timeline mode")

// ParseMode parses a mode name. Matching is case-insensitive; "tree" is accepted
// as an alias for alternating.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertical":
		return ModeVertical, nil
	case "horizontal":
		return ModeHorizontal, nil
	case "alternating", "vertical_alternating", "tree":
		return ModeAlternating, nil
	default:
		return ModeVertical, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// String returns the canonical mode name.
func (m Mode) String() string {
	switch m {
	case ModeVertical:
		return "vertical"
	case ModeHorizontal:
		return "horizontal"
	case ModeAlternating:
		return "alternating"
	default:
		return "unknown"
	}
}

// Modes lists every mode in cycling order.
func Modes() []Mode {
	return []Mode{ModeVertical, ModeAlternating, ModeHorizontal}
}

// Next returns the mode after m in cycling order.
func (m Mode) Next() Mode {
	modes := Modes()
	for i, candidate := range modes {
		if candidate == m {
			return modes[(i+1)%len(modes)]
		}
	}
	return ModeVertical
}

// Media is an optional attachment shown with a card.
type Media struct {
	// Type is a free-form kind such as "image" or "video".
	Type string `yaml:"type,omitempty"`
	URL  string `yaml:"url"`
	Name string `yaml:"name,omitempty"`
}

// Item is a single timeline entry.
type Item struct {
	ID string

	// Title is the short label shown on the axis. When empty, the date is used.
	Title string

	CardTitle    string
	CardSubtitle string

	// Detail is Markdown shown in the card body.
	Detail string

	// Date is the zero time for undated items.
	Date time.Time

	URL   string
	Media *Media
}

// Dated reports whether the item carries a date.
func (it Item) Dated() bool {
	return !it.Date.IsZero()
}

// Label returns the axis label: Title when set, otherwise the formatted date.
func (it Item) Label() string {
	if it.Title != "" {
		return it.Title
	}
	return FormatDate(it.Date)
}

// Heading returns the most prominent text of the card.
func (it Item) Heading() string {
	if it.CardTitle != "" {
		return it.CardTitle
	}
	return it.Label()
}

// FormatDate renders a date, including the time of day only when it is not midnight.
// The zero time renders as an empty string.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04")
}

// Timeline is an ordered collection of items.
type Timeline struct {
	Title string

	// Version is the schema version declared by the source file.
	Version string

	// Mode is the layout requested by the source; HasMode is false when the
	// source did not request one.
	Mode    Mode
	HasMode bool

	Items []Item
}

// Len returns the number of items.
func (tl *Timeline) Len() int {
	if tl == nil {
		return 0
	}
	return len(tl.Items)
}

// IndexOf returns the index of the item with the given ID, or -1.
func (tl *Timeline) IndexOf(id string) int {
	if tl == nil || id == "" {
		return -1
	}
	for i := range tl.Items {
		if tl.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Span returns the earliest and latest dates in the timeline. ok is false when no
// item is dated.
func (tl *Timeline) Span() (first, last time.Time, ok bool) {
	if tl == nil {
		return time.Time{}, time.Time{}, false
	}
	for _, it := range tl.Items {
		if !it.Dated() {
			continue
		}
		if !ok || it.Date.Before(first) {
			first = it.Date
		}
		if !ok || it.Date.After(last) {
			last = it.Date
		}
		ok = true
	}
	return first, last, ok
}
