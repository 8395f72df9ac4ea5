package extract

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/neodb/internal/domain/model"
	"github.com/okian/neodb/pkg/logger"
)

// NEO CSV column names.
const (
	colDesignation = "pdes"
	colName        = "name"
	colDiameter    = "diameter"
	colHazardous   = "pha"
)

var errEmptyDesignation = errors.New("empty designation")

// NEOs reads a NEO CSV with a header row. Only pdes is required; name,
// diameter and pha may be absent and then normalise to unknown values.
func (ld *Loader) NEOs(ctx context.Context, r io.Reader) ([]*model.NearEarthObject, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, colDesignation)
		}
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedInput, err)
	}
	cols := indexColumns(header)
	desIdx, ok := cols[colDesignation]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, colDesignation)
	}

	var neos []*model.NearEarthObject
	skipped := 0
	for row := 1; ; row++ {
		if row%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped++
				if serr := ld.skip(ctx, SourceNEOs, row, err); serr != nil {
					return nil, serr
				}
				continue
			}
			return nil, fmt.Errorf("read neo row %d: %w", row, err)
		}

		des := field(rec, desIdx)
		if strings.TrimSpace(des) == "" {
			skipped++
			if serr := ld.skip(ctx, SourceNEOs, row, errEmptyDesignation); serr != nil {
				return nil, serr
			}
			continue
		}
		neos = append(neos, model.NewNearEarthObject(model.NEORecord{
			Designation: des,
			Name:        fieldByName(rec, cols, colName),
			Diameter:    fieldByName(rec, cols, colDiameter),
			Hazardous:   fieldByName(rec, cols, colHazardous),
		}))
	}

	if skipped > 0 {
		ld.logger.Warn(ctx, "skipped malformed neo rows", logger.Int("count", skipped))
	}
	return neos, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	return cols
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func fieldByName(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok {
		return ""
	}
	return field(rec, i)
}
