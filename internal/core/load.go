package core

// load.go reads the objects and events tables into typed rows.
//
// Loading happens at two levels:
//  1. Header validation: always-required columns must be present
//  2. Row decoding: each record becomes an ObjectRow or EventRow; absent cells
//     and file-only columns missing from a file row fail with MissingFieldError
//
// Input passes through x/text before encoding/csv sees it: bytes that are not
// valid UTF-8 fail the load with an encoding error, and a leading BOM is dropped.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	tableObjects = "objects"
	tableEvents  = "events"
)

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := idx[key]; dup {
			continue // first occurrence wins
		}
		idx[key] = i
	}
	return idx
}

// ValidateHeaders checks that every always-required column exists in headers.
// Returns the header index, or a MissingFieldError listing the absent columns.
func ValidateHeaders(table string, headers []string, specs []FieldSpec) (HeaderIndex, error) {
	idx := MakeHeaderIndex(headers)
	var missing []string

	for _, spec := range specs {
		if !spec.Required {
			continue
		}
		if _, ok := idx[strings.ToLower(spec.Name)]; !ok {
			missing = append(missing, spec.Name)
		}
	}

	if len(missing) > 0 {
		return nil, &MissingFieldError{Table: table, Fields: missing}
	}
	return idx, nil
}

// LoadObjectRows reads an objects table. name identifies the source in errors.
func LoadObjectRows(r io.Reader, name string) ([]ObjectRow, error) {
	idx, records, err := readTable(r, name, tableObjects, ObjectFieldSpecs)
	if err != nil {
		return nil, err
	}

	rows := make([]ObjectRow, 0, len(records))
	for i, rec := range records {
		row, err := decodeObjectRow(i+1, rec, idx)
		if err != nil {
			return nil, err
		}
		debugRow(tableObjects, row)
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadEventRows reads an events table. name identifies the source in errors.
func LoadEventRows(r io.Reader, name string) ([]EventRow, error) {
	idx, records, err := readTable(r, name, tableEvents, EventFieldSpecs)
	if err != nil {
		return nil, err
	}

	rows := make([]EventRow, 0, len(records))
	for i, rec := range records {
		row, err := decodeEventRow(i+1, rec, idx)
		if err != nil {
			return nil, err
		}
		debugRow(tableEvents, row)
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadObjectsFile opens path and reads it as an objects table.
func LoadObjectsFile(path string) ([]ObjectRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	defer f.Close()

	return LoadObjectRows(f, path)
}

// LoadEventsFile opens path and reads it as an events table.
func LoadEventsFile(path string) ([]EventRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	defer f.Close()

	return LoadEventRows(f, path)
}

// readTable parses the header and all data records of a table.
func readTable(r io.Reader, name, table string, specs []FieldSpec) (HeaderIndex, [][]string, error) {
	cr := csv.NewReader(transform.NewReader(r, transform.Chain(
		encoding.UTF8Validator,
		unicode.BOMOverride(transform.Nop),
	)))
	cr.FieldsPerRecord = -1 // short rows are reported per field below

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, &MissingFieldError{Table: table, Fields: requiredNames(specs)}
	}
	if err != nil {
		return nil, nil, readError(name, err)
	}

	idx, err := ValidateHeaders(table, header, specs)
	if err != nil {
		return nil, nil, err
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, readError(name, err)
	}
	return idx, records, nil
}

// readError separates malformed CSV and bad encoding from failures of the
// underlying reader.
func readError(name string, err error) error {
	if errors.Is(err, encoding.ErrInvalidUTF8) {
		return fmt.Errorf("encoding error in %s: %w", name, err)
	}
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("invalid csv %s: %w", name, err)
	}
	return &IOError{Op: "read", Path: name, Err: err}
}

func requiredNames(specs []FieldSpec) []string {
	var names []string
	for _, spec := range specs {
		if spec.Required {
			names = append(names, spec.Name)
		}
	}
	return names
}

// rowReader collects the names of absent cells while decoding one record.
type rowReader struct {
	rec     []string
	idx     HeaderIndex
	missing []string
}

// get returns the raw cell for name. Values are copied verbatim.
func (rr *rowReader) get(name string) string {
	pos, ok := rr.idx[strings.ToLower(name)]
	if !ok || pos >= len(rr.rec) {
		rr.missing = append(rr.missing, name)
		return ""
	}
	return rr.rec[pos]
}

func decodeObjectRow(line int, rec []string, idx HeaderIndex) (ObjectRow, error) {
	rr := &rowReader{rec: rec, idx: idx}
	row := ObjectRow{
		Line:                        line,
		ObjectIdentifier:            rr.get("objectIdentifier"),
		ObjectCategory:              rr.get("objectCategory"),
		LinkingEventIdentifierValue: rr.get("linkingEventIdentifierValue"),
	}

	if row.IsFile() {
		row.Size = rr.get("size")
		row.MessageDigestAlgorithm = rr.get("messageDigestAlgorithm")
		row.MessageDigest = rr.get("messageDigest")
		row.MessageDigestOriginator = rr.get("messageDigestOriginator")
		row.FormatRegistryName = rr.get("formatRegistryName")
		row.FormatRegistryKey = rr.get("formatRegistryKey")
		row.FormatRegistryRole = rr.get("formatRegistryRole")
		row.ContentLocationType = rr.get("contentLocationType")
		row.ContentLocationValue = rr.get("contentLocationValue")
	}

	if len(rr.missing) > 0 {
		return ObjectRow{}, &MissingFieldError{Table: tableObjects, Row: line, Fields: rr.missing}
	}
	return row, nil
}

func decodeEventRow(line int, rec []string, idx HeaderIndex) (EventRow, error) {
	rr := &rowReader{rec: rec, idx: idx}
	row := EventRow{
		Line:                   line,
		EventIdentifierType:    rr.get("eventIdentifierType"),
		EventIdentifierValue:   rr.get("eventIdentifierValue"),
		EventType:              rr.get("eventType"),
		EventDateTime:          rr.get("eventDateTime"),
		EventDetail:            rr.get("eventDetail"),
		EventOutcome:           rr.get("eventOutcome"),
		EventOutcomeDetailNote: rr.get("eventOutcomeDetailNote"),
	}

	if len(rr.missing) > 0 {
		return EventRow{}, &MissingFieldError{Table: tableEvents, Row: line, Fields: rr.missing}
	}
	return row, nil
}

func debugRow(table string, row any) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	slog.Debug("decoded row", "table", table, "row", spew.Sdump(row))
}
