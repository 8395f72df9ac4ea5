package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/neodb/internal/domain/model"
	"github.com/okian/neodb/pkg/logger"
)

// CAD field names and their positions in the default field order.
const (
	fieldDesignation = "des"
	fieldTime        = "cd"
	fieldDistance    = "dist"
	fieldVelocity    = "v_rel"
)

var defaultCADColumns = map[string]int{
	fieldDesignation: 0,
	fieldTime:        3,
	fieldDistance:    4,
	fieldVelocity:    7,
}

// Approaches reads a close-approach document of the form
// {"fields": [...], "data": [[...], ...]}. Rows are decoded one at a time.
// Column positions come from "fields" when it precedes "data"; otherwise
// the standard CAD order is assumed.
func (ld *Loader) Approaches(ctx context.Context, r io.Reader) ([]*model.CloseApproach, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	cols := defaultCADColumns
	var approaches []*model.CloseApproach
	sawData := false
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		key, _ := tok.(string)
		switch key {
		case "fields":
			var fields []string
			if err := dec.Decode(&fields); err != nil {
				return nil, fmt.Errorf("%w: fields: %w", ErrMalformedInput, err)
			}
			cols = resolveColumns(fields)
		case "data":
			sawData = true
			approaches, err = ld.decodeRows(ctx, dec, cols)
			if err != nil {
				return nil, err
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrMalformedInput, key, err)
			}
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if !sawData {
		ld.logger.Warn(ctx, "approach document has no data array")
	}
	return approaches, nil
}

func (ld *Loader) decodeRows(ctx context.Context, dec *json.Decoder, cols map[string]int) ([]*model.CloseApproach, error) {
	// "data": null is an empty data set.
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: data: %w", ErrMalformedInput, err)
	}
	if tok == nil {
		return nil, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("%w: data: expected array, got %v", ErrMalformedInput, tok)
	}

	var (
		approaches []*model.CloseApproach
		skipped    int
		badTimes   int
	)
	for row := 1; dec.More(); row++ {
		if row%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		var raw []any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: data row %d: %w", ErrMalformedInput, row, err)
		}

		rec, err := approachRecord(raw, cols)
		if err != nil {
			skipped++
			if serr := ld.skip(ctx, SourceApproaches, row, err); serr != nil {
				return nil, serr
			}
			continue
		}
		ca := model.NewCloseApproach(rec)
		if !ca.HasTime() {
			badTimes++
		}
		approaches = append(approaches, ca)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}

	if skipped > 0 {
		ld.logger.Warn(ctx, "skipped malformed approach rows", logger.Int("count", skipped))
	}
	if badTimes > 0 {
		ld.logger.Warn(ctx, "approaches with unparseable times kept with unknown time", logger.Int("count", badTimes))
	}
	return approaches, nil
}

func approachRecord(raw []any, cols map[string]int) (model.ApproachRecord, error) {
	des := cell(raw, cols[fieldDesignation])
	if strings.TrimSpace(des) == "" {
		return model.ApproachRecord{}, errEmptyDesignation
	}
	dist, err := strconv.ParseFloat(cell(raw, cols[fieldDistance]), 64)
	if err != nil {
		return model.ApproachRecord{}, fmt.Errorf("distance: %w", err)
	}
	vel, err := strconv.ParseFloat(cell(raw, cols[fieldVelocity]), 64)
	if err != nil {
		return model.ApproachRecord{}, fmt.Errorf("velocity: %w", err)
	}
	return model.ApproachRecord{
		Designation: des,
		Time:        cell(raw, cols[fieldTime]),
		Distance:    dist,
		Velocity:    vel,
	}, nil
}

// resolveColumns maps CAD field names to positions, falling back to the
// default position for any field the header does not name.
func resolveColumns(fields []string) map[string]int {
	cols := make(map[string]int, len(defaultCADColumns))
	for name, pos := range defaultCADColumns {
		cols[name] = pos
	}
	for i, f := range fields {
		name := strings.TrimSpace(f)
		if _, wanted := defaultCADColumns[name]; wanted {
			cols[name] = i
		}
	}
	return cols
}

func cell(raw []any, i int) string {
	if i < 0 || i >= len(raw) {
		return ""
	}
	switch v := raw[i].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: unexpected end of input", ErrMalformedInput)
		}
		return fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q, got %v", ErrMalformedInput, want, tok)
	}
	return nil
}
