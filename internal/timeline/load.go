package timeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/rshade/chronoline/internal/logging"
)

// SchemaConstraint is the range of file versions this package understands.
const SchemaConstraint = "^1"

// CurrentVersion is assumed for files that do not declare a version.
const CurrentVersion = "1.0"

// maxConcurrentLoads bounds the number of files read at once by LoadFiles.
const maxConcurrentLoads = 4

// Load errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported timeline file format")
	ErrUnsupportedSchema = errors.New("unsupported timeline schema version")
	ErrInvalidDate       = errors.New("invalid date")
	ErrEmptyItem         = errors.New("item has no title, card text or detail")
	ErrDuplicateID       = errors.New("duplicate item id")
	ErrMissingColumn     = errors.New("missing required column")
	ErrNoFiles           = errors.New("no timeline files given")
)

// dateLayouts are tried in order when parsing dates.
//
//nolint:gochecknoglobals // Read-only lookup table.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-01",
	"2006",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2006",
}

// ParseDate parses s using the supported layouts. An empty string yields the
// zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

type fileTimeline struct {
	Version string     `yaml:"version"`
	Title   string     `yaml:"title"`
	Mode    string     `yaml:"mode"`
	Items   []fileItem `yaml:"items"`
}

type fileItem struct {
	ID           string `yaml:"id"`
	Date         string `yaml:"date"`
	Title        string `yaml:"title"`
	CardTitle    string `yaml:"card_title"`
	CardSubtitle string `yaml:"card_subtitle"`
	Detail       string `yaml:"detail"`
	URL          string `yaml:"url"`
	Media        *Media `yaml:"media"`
}

func (fi fileItem) toItem() (Item, error) {
	date, err := ParseDate(fi.Date)
	if err != nil {
		return Item{}, err
	}
	it := Item{
		ID:           strings.TrimSpace(fi.ID),
		Title:        strings.TrimSpace(fi.Title),
		CardTitle:    strings.TrimSpace(fi.CardTitle),
		CardSubtitle: strings.TrimSpace(fi.CardSubtitle),
		Detail:       strings.TrimRight(fi.Detail, "\n"),
		Date:         date,
		URL:          strings.TrimSpace(fi.URL),
		Media:        fi.Media,
	}
	if it.Media != nil && strings.TrimSpace(it.Media.URL) == "" {
		it.Media = nil
	}
	if it.Title == "" && it.CardTitle == "" && it.CardSubtitle == "" && it.Detail == "" && !it.Dated() {
		return Item{}, ErrEmptyItem
	}
	return it, nil
}

// ParseYAML decodes a YAML timeline document. Items are returned in file order;
// call Finalize to assign IDs and sort.
func ParseYAML(r io.Reader) (*Timeline, error) {
	var ft fileTimeline
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ft); err != nil {
		if errors.Is(err, io.EOF) {
			return &Timeline{Version: CurrentVersion}, nil
		}
		return nil, fmt.Errorf("parsing timeline YAML: %w", err)
	}

	if err := checkVersion(ft.Version); err != nil {
		return nil, err
	}

	tl := &Timeline{
		Title:   strings.TrimSpace(ft.Title),
		Version: ft.Version,
		Items:   make([]Item, 0, len(ft.Items)),
	}
	if tl.Version == "" {
		tl.Version = CurrentVersion
	}
	if ft.Mode != "" {
		mode, err := ParseMode(ft.Mode)
		if err != nil {
			return nil, err
		}
		tl.Mode = mode
		tl.HasMode = true
	}

	for i, fi := range ft.Items {
		it, err := fi.toItem()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		tl.Items = append(tl.Items, it)
	}
	return tl, nil
}

// CSV column names.
const (
	colDate         = "date"
	colTimestamp    = "timestamp"
	colTitle        = "title"
	colCardTitle    = "card_title"
	colCardSubtitle = "card_subtitle"
	colDetail       = "detail"
	colID           = "id"
	colURL          = "url"
	colMediaType    = "media_type"
	colMediaURL     = "media_url"
)

// ParseCSV decodes a CSV timeline. The first row is a header; a date (or
// timestamp) column is required.
func ParseCSV(r io.Reader) (*Timeline, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s (empty file)", ErrMissingColumn, colDate)
		}
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	// Case-insensitive column mapping.
	columns := make(map[string]int, len(header))
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		name = strings.ReplaceAll(name, " ", "_")
		if _, seen := columns[name]; !seen {
			columns[name] = i
		}
	}
	if _, ok := columns[colDate]; !ok {
		idx, hasTimestamp := columns[colTimestamp]
		if !hasTimestamp {
			return nil, fmt.Errorf("%w: %s (have %v)", ErrMissingColumn, colDate, header)
		}
		columns[colDate] = idx
	}

	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	tl := &Timeline{Version: CurrentVersion}
	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("reading CSV: %w", readErr)
		}
		line, _ := reader.FieldPos(0)
		if blankRecord(record) {
			continue
		}

		fi := fileItem{
			ID:           field(record, colID),
			Date:         field(record, colDate),
			Title:        field(record, colTitle),
			CardTitle:    field(record, colCardTitle),
			CardSubtitle: field(record, colCardSubtitle),
			Detail:       field(record, colDetail),
			URL:          field(record, colURL),
		}
		if mediaURL := field(record, colMediaURL); mediaURL != "" {
			fi.Media = &Media{Type: field(record, colMediaType), URL: mediaURL}
		}

		it, itemErr := fi.toItem()
		if itemErr != nil {
			return nil, fmt.Errorf("line %d: %w", line, itemErr)
		}
		tl.Items = append(tl.Items, it)
	}
	return tl, nil
}

func blankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func checkVersion(v string) error {
	if v == "" {
		return nil
	}
	version, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrUnsupportedSchema, v, err)
	}
	constraint, err := semver.NewConstraint(SchemaConstraint)
	if err != nil {
		return fmt.Errorf("parsing schema constraint: %w", err)
	}
	if !constraint.Check(version) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedSchema, v, SchemaConstraint)
	}
	return nil
}

// LoadFile reads a single timeline file, choosing the parser by extension. The
// result is not finalized.
func LoadFile(path string) (*Timeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var tl *Timeline
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		tl, err = ParseYAML(f)
	case ".csv":
		tl, err = ParseCSV(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tl, nil
}

// LoadFiles reads every path concurrently and merges the results in argument
// order into one finalized timeline. The first non-empty title and mode win.
func LoadFiles(ctx context.Context, paths []string) (*Timeline, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}
	log := logging.FromContext(ctx)

	results := make([]*Timeline, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tl, err := LoadFile(path)
			if err != nil {
				return err
			}
			log.Debug().
				Str("component", "timeline").
				Str("path", path).
				Int("items", len(tl.Items)).
				Msg("loaded timeline file")
			results[i] = tl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := Merge(results...)
	if err := merged.Finalize(); err != nil {
		return nil, err
	}
	log.Debug().
		Str("component", "timeline").
		Int("files", len(paths)).
		Int("items", merged.Len()).
		Msg("timeline loaded")
	return merged, nil
}

// Merge concatenates timelines in order. The first non-empty title and the first
// requested mode are kept.
func Merge(parts ...*Timeline) *Timeline {
	merged := &Timeline{Version: CurrentVersion}
	for _, tl := range parts {
		if tl == nil {
			continue
		}
		if merged.Title == "" {
			merged.Title = tl.Title
		}
		if !merged.HasMode && tl.HasMode {
			merged.Mode = tl.Mode
			merged.HasMode = true
		}
		merged.Items = append(merged.Items, tl.Items...)
	}
	return merged
}

// Finalize assigns ULIDs to items without an ID, rejects duplicate IDs and sorts
// items chronologically. The sort is stable and undated items follow dated ones.
func (tl *Timeline) Finalize() error {
	seen := make(map[string]int, len(tl.Items))
	for i := range tl.Items {
		if tl.Items[i].ID == "" {
			tl.Items[i].ID = ulid.Make().String()
		}
		if prev, dup := seen[tl.Items[i].ID]; dup {
			return fmt.Errorf("%w: %q (items %d and %d)", ErrDuplicateID, tl.Items[i].ID, prev+1, i+1)
		}
		seen[tl.Items[i].ID] = i
	}

	sort.SliceStable(tl.Items, func(i, j int) bool {
		a, b := tl.Items[i], tl.Items[j]
		if a.Dated() != b.Dated() {
			return a.Dated()
		}
		return a.Date.Before(b.Date)
	})
	return nil
}
