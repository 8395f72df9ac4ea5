package export

import (
	"context"
	"fmt"
	"io"
	"iter"
	"math"

	"github.com/okian/neodb/internal/domain/model"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding exported approaches.
const SheetName = "Approaches"

const xlsxColumnWidth = 18

// WriteXLSX writes a workbook with a single sheet of approaches. Rows are
// streamed into the sheet; the workbook itself is written once complete.
func WriteXLSX(ctx context.Context, w io.Writer, seq iter.Seq[*model.CloseApproach]) (int, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return 0, fmt.Errorf("stream writer: %w", err)
	}
	if err := sw.SetColWidth(1, len(Columns), xlsxColumnWidth); err != nil {
		return 0, fmt.Errorf("set column width: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	n := 0
	for ca := range seq {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		cell, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return n, err
		}
		if err := sw.SetRow(cell, xlsxValues(newRow(ca))); err != nil {
			return n, fmt.Errorf("write row %d: %w", n+1, err)
		}
		n++
	}
	if err := sw.Flush(); err != nil {
		return n, fmt.Errorf("flush sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return n, fmt.Errorf("write workbook: %w", err)
	}
	return n, nil
}

// xlsxValues keeps numbers numeric; an unknown diameter becomes an empty cell.
func xlsxValues(r row) []any {
	var diameter any
	if !math.IsNaN(r.Diameter) {
		diameter = r.Diameter
	}
	return []any{
		r.Time,
		r.Distance,
		r.Velocity,
		r.Designation,
		r.Name,
		diameter,
		r.Hazardous,
	}
}
