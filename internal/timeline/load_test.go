package timeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{input: "1969-07-20", want: time.Date(1969, 7, 20, 0, 0, 0, 0, time.UTC)},
		{input: "1969-07-20 20:17", want: time.Date(1969, 7, 20, 20, 17, 0, 0, time.UTC)},
		{input: "1969-07-20T20:17:40Z", want: time.Date(1969, 7, 20, 20, 17, 40, 0, time.UTC)},
		{input: "1969-07", want: time.Date(1969, 7, 1, 0, 0, 0, 0, time.UTC)},
		{input: "1969", want: time.Date(1969, 1, 1, 0, 0, 0, 0, time.UTC)},
		{input: "07/20/1969", want: time.Date(1969, 7, 20, 0, 0, 0, 0, time.UTC)},
		{input: "July 20, 1969", want: time.Date(1969, 7, 20, 0, 0, 0, 0, time.UTC)},
		{input: "  ", want: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := ParseDate("the day after tomorrow")
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestParseYAML(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "apollo.yaml"))
	require.NoError(t, err)
	defer f.Close()

	tl, err := ParseYAML(f)
	require.NoError(t, err)

	assert.Equal(t, "Apollo program", tl.Title)
	assert.Equal(t, "1.2", tl.Version)
	assert.True(t, tl.HasMode)
	assert.Equal(t, ModeAlternating, tl.Mode)
	require.Len(t, tl.Items, 4)

	// File order is kept until Finalize.
	assert.Equal(t, "apollo-11", tl.Items[0].ID)
	assert.Equal(t, "Armstrong and Aldrin land in the **Sea of Tranquility**.", tl.Items[0].Detail)
	assert.False(t, tl.Items[2].Dated())
	require.NotNil(t, tl.Items[3].Media)
	assert.Equal(t, "The Blue Marble", tl.Items[3].Media.Name)
}

func TestParseYAML_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
		msg     string
	}{
		{name: "future schema", doc: "version: \"2.0\"\nitems: []\n", wantErr: ErrUnsupportedSchema},
		{name: "bad schema", doc: "version: banana\n", wantErr: ErrUnsupportedSchema},
		{name: "bad mode", doc: "mode: spiral\n", wantErr: ErrUnknownMode},
		{name: "bad date", doc: "items:\n  - date: someday\n    card_title: x\n", wantErr: ErrInvalidDate, msg: "item 1"},
		{name: "empty item", doc: "items:\n  - url: https://example.com\n", wantErr: ErrEmptyItem},
		{name: "unknown field", doc: "items:\n  - cardtitle: typo\n", msg: "parsing timeline YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML(strings.NewReader(tt.doc))
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestParseYAML_EmptyDocument(t *testing.T) {
	tl, err := ParseYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, tl.Len())
	assert.Equal(t, CurrentVersion, tl.Version)
}

func TestParseCSV(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "gemini.csv"))
	require.NoError(t, err)
	defer f.Close()

	tl, err := ParseCSV(f)
	require.NoError(t, err)
	require.Len(t, tl.Items, 3, "blank rows are skipped")

	assert.Equal(t, "gemini-3", tl.Items[0].ID)
	assert.Equal(t, "Gemini 3", tl.Items[0].CardTitle)
	assert.Equal(t, "Grissom and Young, three orbits", tl.Items[0].Detail)
	assert.Equal(t, time.Date(1965, 6, 3, 0, 0, 0, 0, time.UTC), tl.Items[1].Date)
	assert.Empty(t, tl.Items[1].ID)
}

func TestParseCSV_Columns(t *testing.T) {
	t.Run("timestamp alias", func(t *testing.T) {
		tl, err := ParseCSV(strings.NewReader("timestamp,title\n2001-01-01,Odyssey\n"))
		require.NoError(t, err)
		require.Len(t, tl.Items, 1)
		assert.Equal(t, "Odyssey", tl.Items[0].Title)
	})

	t.Run("media columns", func(t *testing.T) {
		tl, err := ParseCSV(strings.NewReader("date,card_title,media_type,media_url\n2001-01-01,x,image,https://example.com/a.png\n"))
		require.NoError(t, err)
		require.NotNil(t, tl.Items[0].Media)
		assert.Equal(t, "image", tl.Items[0].Media.Type)
	})

	t.Run("missing date column", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("title,detail\nx,y\n"))
		require.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader(""))
		require.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("bad date reports line", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("date,title\n2001-01-01,ok\nnever,bad\n"))
		require.ErrorIs(t, err, ErrInvalidDate)
		assert.Contains(t, err.Error(), "line 3")
	})
}

func TestFinalize(t *testing.T) {
	d := func(y int) time.Time { return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC) }
	tl := &Timeline{Items: []Item{
		{ID: "late", Date: d(1990)},
		{Title: "undated one"},
		{ID: "early", Date: d(1950)},
		{Title: "undated two"},
		{ID: "tie-a", Date: d(1970)},
		{ID: "tie-b", Date: d(1970)},
	}}

	require.NoError(t, tl.Finalize())

	ids := make([]string, 0, len(tl.Items))
	for _, it := range tl.Items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"early", "tie-a", "tie-b", "late"}, ids[:4])
	assert.Equal(t, "undated one", tl.Items[4].Title)
	assert.Equal(t, "undated two", tl.Items[5].Title)

	for _, it := range tl.Items[4:] {
		_, err := ulid.Parse(it.ID)
		assert.NoError(t, err, "generated id %q should be a ULID", it.ID)
	}
	assert.NotEqual(t, tl.Items[4].ID, tl.Items[5].ID)
}

func TestFinalize_DuplicateID(t *testing.T) {
	tl := &Timeline{Items: []Item{{ID: "a", Title: "x"}, {ID: "b", Title: "y"}, {ID: "a", Title: "z"}}}

	err := tl.Finalize()
	require.ErrorIs(t, err, ErrDuplicateID)
	assert.Contains(t, err.Error(), "items 1 and 3")
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeline.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	_, err := LoadFile(path)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadFiles(t *testing.T) {
	tl, err := LoadFiles(context.Background(), []string{
		filepath.Join("testdata", "apollo.yaml"),
		filepath.Join("testdata", "gemini.csv"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Apollo program", tl.Title)
	assert.Equal(t, ModeAlternating, tl.Mode)
	require.Equal(t, 7, tl.Len())

	// Gemini flights precede Apollo; the undated item is last.
	assert.Equal(t, "gemini-3", tl.Items[0].ID)
	assert.Equal(t, "Aftermath", tl.Items[6].CardTitle)
	for i := 1; i < 6; i++ {
		assert.False(t, tl.Items[i].Date.Before(tl.Items[i-1].Date), "items must be chronological at %d", i)
	}
}

func TestLoadFiles_Errors(t *testing.T) {
	_, err := LoadFiles(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoFiles)

	_, err = LoadFiles(context.Background(), []string{
		filepath.Join("testdata", "apollo.yaml"),
		filepath.Join("testdata", "missing.yaml"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")

	dup := filepath.Join(t.TempDir(), "dup.yaml")
	require.NoError(t, os.WriteFile(dup, []byte("items:\n  - id: apollo-8\n    card_title: again\n"), 0o600))
	_, err = LoadFiles(context.Background(), []string{filepath.Join("testdata", "apollo.yaml"), dup})
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestLoadFiles_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadFiles(ctx, []string{filepath.Join("testdata", "apollo.yaml")})
	require.ErrorIs(t, err, context.Canceled)
}
