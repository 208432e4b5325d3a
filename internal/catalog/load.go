package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Dataset column names.
const (
	colID       = "track_id"
	colName     = "track_name"
	colArtist   = "artists"
	colAlbum    = "album_name"
	colCategory = "track_genre"
)

// Sentinel errors.
var (
	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrEmptyCatalog is returned when the input holds no data rows.
	ErrEmptyCatalog = errors.New("catalog has no rows")

	// ErrItemNotFound is returned when an item id is not in the catalog.
	ErrItemNotFound = errors.New("item not found")
)

// MalformedRowError reports a data row that could not be loaded.
type MalformedRowError struct {
	Line   int    // 1-based line number in the input, header is line 1
	Column string // offending column, empty for structural problems
	Value  string
	Err    error
}

func (e *MalformedRowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("malformed catalog row at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("malformed catalog row at line %d, column %s (%q): %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *MalformedRowError) Unwrap() error {
	return e.Err
}

var errOutOfRange = errors.New("value outside [0,1]")

// LoadFile reads a catalog CSV from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	c, err := LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return c, nil
}

// LoadCSV parses a catalog in the Spotify tracks dataset layout.
// Columns are located by header name, so extra columns (including a
// leading unnamed index column) are ignored. Any malformed row fails the
// whole load with a *MalformedRowError.
func LoadCSV(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyCatalog
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog header: %w", err)
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var items []Item
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.Line
			}
			return nil, &MalformedRowError{Line: line, Err: err}
		}
		line, _ = reader.FieldPos(0)
		if blankRecord(record) {
			continue
		}

		item, err := cols.parse(record, line)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, ErrEmptyCatalog
	}
	return New(items), nil
}

// columnIndex records where each field lives in a record.
type columnIndex struct {
	id, name, artist, album, category int
	features                          [NumFeatures]int
	width                             int
}

func indexColumns(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	lookup := func(name string) (int, error) {
		i, ok := pos[name]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		return i, nil
	}

	var idx columnIndex
	var err error
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{colID, &idx.id},
		{colName, &idx.name},
		{colArtist, &idx.artist},
		{colCategory, &idx.category},
	} {
		if *c.dst, err = lookup(c.name); err != nil {
			return columnIndex{}, err
		}
	}
	for _, f := range AllFeatures {
		if idx.features[f], err = lookup(f.String()); err != nil {
			return columnIndex{}, err
		}
	}

	// Album is optional.
	idx.album = -1
	if i, ok := pos[colAlbum]; ok {
		idx.album = i
	}

	idx.width = 0
	for _, i := range []int{idx.id, idx.name, idx.artist, idx.category, idx.album} {
		idx.width = max(idx.width, i+1)
	}
	for _, i := range idx.features {
		idx.width = max(idx.width, i+1)
	}
	return idx, nil
}

func (c columnIndex) parse(record []string, line int) (Item, error) {
	if len(record) < c.width {
		return Item{}, &MalformedRowError{
			Line: line,
			Err:  fmt.Errorf("expected at least %d fields, got %d", c.width, len(record)),
		}
	}

	item := Item{
		ID:       strings.TrimSpace(record[c.id]),
		Name:     record[c.name],
		Artist:   record[c.artist],
		Category: strings.TrimSpace(record[c.category]),
	}
	if c.album >= 0 {
		item.Album = record[c.album]
	}
	if item.ID == "" {
		return Item{}, &MalformedRowError{Line: line, Column: colID, Err: errors.New("empty id")}
	}

	for _, f := range AllFeatures {
		raw := strings.TrimSpace(record[c.features[f]])
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Item{}, &MalformedRowError{Line: line, Column: f.String(), Value: raw, Err: err}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Item{}, &MalformedRowError{Line: line, Column: f.String(), Value: raw, Err: errors.New("not a finite number")}
		}
		if f.UnitScaled() && (v < 0 || v > 1) {
			return Item{}, &MalformedRowError{Line: line, Column: f.String(), Value: raw, Err: errOutOfRange}
		}
		if f == Tempo && v < 0 {
			return Item{}, &MalformedRowError{Line: line, Column: f.String(), Value: raw, Err: errors.New("negative tempo")}
		}
		item.Features[f] = v
	}
	return item, nil
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
