package export

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"math"

	"github.com/okian/neodb/internal/domain/model"
)

// Approach is the JSON shape of one exported close approach.
type Approach struct {
	DatetimeUTC string  `json:"datetime_utc"`
	DistanceAU  float64 `json:"distance_au"`
	VelocityKMS float64 `json:"velocity_km_s"`
	NEO         NEO     `json:"neo"`
}

// NEO is the nested object of an exported approach. DiameterKM is null
// when the diameter is unknown.
type NEO struct {
	Designation          string   `json:"designation"`
	Name                 string   `json:"name"`
	DiameterKM           *float64 `json:"diameter_km"`
	PotentiallyHazardous bool     `json:"potentially_hazardous"`
}

// NewApproach converts a model approach to its exported JSON shape.
func NewApproach(ca *model.CloseApproach) Approach {
	r := newRow(ca)
	out := Approach{
		DatetimeUTC: r.Time,
		DistanceAU:  r.Distance,
		VelocityKMS: r.Velocity,
		NEO: NEO{
			Designation:          r.Designation,
			Name:                 r.Name,
			PotentiallyHazardous: r.Hazardous,
		},
	}
	if !math.IsNaN(r.Diameter) {
		d := r.Diameter
		out.NEO.DiameterKM = &d
	}
	return out
}

// WriteJSON writes a JSON array, encoding one approach at a time.
func WriteJSON(ctx context.Context, w io.Writer, seq iter.Seq[*model.CloseApproach]) (int, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("["); err != nil {
		return 0, fmt.Errorf("write json: %w", err)
	}

	n := 0
	for ca := range seq {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		b, err := json.Marshal(NewApproach(ca))
		if err != nil {
			return n, fmt.Errorf("encode approach %d: %w", n+1, err)
		}
		if n > 0 {
			if err := bw.WriteByte(','); err != nil {
				return n, fmt.Errorf("write json: %w", err)
			}
		}
		if _, err := bw.Write(b); err != nil {
			return n, fmt.Errorf("write json: %w", err)
		}
		n++
	}
	if _, err := bw.WriteString("]\n"); err != nil {
		return n, fmt.Errorf("write json: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("flush json: %w", err)
	}
	return n, nil
}
