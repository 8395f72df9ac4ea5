package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"iter"

	"github.com/okian/neodb/internal/domain/model"
)

// WriteCSV writes a header row followed by one row per approach.
func WriteCSV(ctx context.Context, w io.Writer, seq iter.Seq[*model.CloseApproach]) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}

	n := 0
	for ca := range seq {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := cw.Write(newRow(ca).strings()); err != nil {
			return n, fmt.Errorf("write csv row %d: %w", n+1, err)
		}
		n++
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, fmt.Errorf("flush csv: %w", err)
	}
	return n, nil
}
