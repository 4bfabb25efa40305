// Package source reads the tabular (CSV) inputs the catalog and delivery
// stores are built from.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrUnavailable reports that a source could not be opened.
var ErrUnavailable = errors.New("source: unavailable")

// Source is anything a CSV document can be opened from.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}

// MalformedRecordError reports a record, or the header, lacking a required
// field. Line is 1-based and counts the header. Header is only set when the
// header itself is at fault.
type MalformedRecordError struct {
	Source string
	Line   int
	Field  string
	Reason string
	Header []string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("source: %s line %d: %s %q", e.Source, e.Line, e.Reason, e.Field)
}

// Malformed builds a MalformedRecordError for the given record line.
func Malformed(src string, line int, field, reason string) *MalformedRecordError {
	return &MalformedRecordError{Source: src, Line: line, Field: field, Reason: reason}
}

// File is a CSV file on the local filesystem.
type File struct {
	Path string
}

func (f File) Open(_ context.Context) (io.ReadCloser, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, f.Path, err)
	}
	return fh, nil
}

func (f File) Name() string { return f.Path }

// Record is one CSV row keyed by header column.
type Record map[string]string

// Get returns the trimmed value of col, or "" when absent.
func (r Record) Get(col string) string {
	return strings.TrimSpace(r[col])
}

// Has reports whether col carries a non-blank value.
func (r Record) Has(col string) bool {
	return r.Get(col) != ""
}

// Read opens src and calls fn for every data record in order. The header must
// contain every column of required; otherwise nothing is read.
//
// A *MalformedRecordError returned by fn, or a row the CSV parser rejects, is
// collected and reading continues. All collected errors are returned joined.
// Any other error from fn stops the read.
func Read(ctx context.Context, src Source, required []string, fn func(line int, rec Record) error) error {
	rc, err := src.Open(ctx)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, src.Name(), err)
	}
	defer func() { _ = rc.Close() }()

	r := csv.NewReader(rc)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("source: %s: read header: %w", src.Name(), err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	if col, ok := missingColumn(header, required); ok {
		mal := Malformed(src.Name(), 1, col, "missing column")
		mal.Header = header
		return mal
	}

	var errs []error
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			errs = append(errs, Malformed(src.Name(), parseErr.StartLine, "", parseErr.Err.Error()))
			continue
		}
		if err != nil {
			return fmt.Errorf("source: %s: read: %w", src.Name(), err)
		}
		line, _ := r.FieldPos(0)

		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		if err := fn(line, rec); err != nil {
			var mal *MalformedRecordError
			if !errors.As(err, &mal) {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func missingColumn(header, required []string) (string, bool) {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}
	for _, col := range required {
		if _, ok := present[col]; !ok {
			return col, true
		}
	}
	return "", false
}
