// Package export writes close-approach query results as CSV, JSON or XLSX.
package export

import (
	"context"
	"fmt"
	"io"
	"iter"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/neodb/internal/domain/model"
	"github.com/okian/neodb/pkg/metrics"
)

// Format names an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// Columns is the header shared by the tabular formats.
var Columns = []string{
	"datetime_utc",
	"distance_au",
	"velocity_km_s",
	"designation",
	"name",
	"diameter_km",
	"potentially_hazardous",
}

// ParseFormat validates a format name such as "csv" or "JSON".
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatCSV, FormatJSON, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: no extension on %q", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Write dispatches to the writer for format and returns the number of rows written.
func Write(ctx context.Context, format Format, w io.Writer, seq iter.Seq[*model.CloseApproach]) (int, error) {
	var (
		n   int
		err error
	)
	switch format {
	case FormatCSV:
		n, err = WriteCSV(ctx, w, seq)
	case FormatJSON:
		n, err = WriteJSON(ctx, w, seq)
	case FormatXLSX:
		n, err = WriteXLSX(ctx, w, seq)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return n, err
	}
	metrics.RecordExportRows(string(format), n)
	return n, nil
}

// WriteFile creates path and writes seq in the format implied by its extension.
func WriteFile(ctx context.Context, path string, seq iter.Seq[*model.CloseApproach]) (int, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	n, err := Write(ctx, format, f, seq)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", path, cerr)
	}
	return n, err
}

// row is the flattened form of one approach. Unlinked approaches carry
// empty NEO fields.
type row struct {
	Time        string
	Distance    float64
	Velocity    float64
	Designation string
	Name        string
	Diameter    float64
	Hazardous   bool
}

func newRow(ca *model.CloseApproach) row {
	r := row{
		Time:        ca.TimeStr(),
		Distance:    ca.Distance,
		Velocity:    ca.Velocity,
		Designation: ca.Designation,
		Diameter:    math.NaN(),
	}
	if ca.NEO != nil {
		r.Name = ca.NEO.NameOrEmpty()
		r.Diameter = ca.NEO.Diameter
		r.Hazardous = ca.NEO.Hazardous
	}
	return r
}

func (r row) strings() []string {
	return []string{
		r.Time,
		formatFloat(r.Distance),
		formatFloat(r.Velocity),
		r.Designation,
		r.Name,
		formatFloat(r.Diameter),
		formatBool(r.Hazardous),
	}
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
