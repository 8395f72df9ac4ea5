package api

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/neodb/internal/adapters/export"
	"github.com/okian/neodb/internal/domain/filter"
	"github.com/okian/neodb/internal/domain/model"
	"github.com/okian/neodb/pkg/logger"
)

// ApproachesDependencies defines the query operations used by ApproachesHandler.
type ApproachesDependencies interface {
	Query(ctx context.Context, c filter.Criteria, limit int) (iter.Seq[*model.CloseApproach], error)
	MaxLimit() int
}

// ApproachesHandler streams filtered close approaches.
type ApproachesHandler struct {
	deps   ApproachesDependencies
	logger logger.Logger
}

// NewApproachesHandler creates a new approaches handler.
func NewApproachesHandler(deps ApproachesDependencies, l logger.Logger) *ApproachesHandler {
	if l == nil {
		l = logger.Nop()
	}
	return &ApproachesHandler{deps: deps, logger: l}
}

// HandleQuery handles GET /approaches. Filters come from the query string;
// limit defaults to the configured maximum and format to json.
func (h *ApproachesHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	c, err := parseCriteria(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	limit, err := h.parseLimit(q)
	if errors.Is(err, ErrLimitExceeded) {
		writeError(w, http.StatusBadRequest, "limit_exceeded", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	format := export.FormatJSON
	if raw := q.Get("format"); raw != "" {
		format, err = export.ParseFormat(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
	}

	seq, err := h.deps.Query(r.Context(), c, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if format == export.FormatXLSX {
		w.Header().Set("Content-Disposition", `attachment; filename="approaches.xlsx"`)
	}
	w.WriteHeader(http.StatusOK)
	n, err := export.Write(r.Context(), format, w, seq)
	if err != nil {
		// Headers are already sent; the client sees a truncated body.
		h.logger.Error(r.Context(), "approach stream failed",
			logger.String("requestID", RequestIDFrom(r.Context())),
			logger.Int("written", n),
			logger.Error(err),
		)
		return
	}
	h.logger.Debug(r.Context(), "approaches served",
		logger.String("requestID", RequestIDFrom(r.Context())),
		logger.String("format", string(format)),
		logger.Int("rows", n),
	)
}

func (h *ApproachesHandler) parseLimit(q url.Values) (int, error) {
	raw := q.Get("limit")
	if raw == "" {
		return h.deps.MaxLimit(), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, paramError("limit", fmt.Errorf("must be a positive integer, got %q", raw))
	}
	if maxLimit := h.deps.MaxLimit(); maxLimit > 0 && n > maxLimit {
		return 0, fmt.Errorf("%w: %d > %d", ErrLimitExceeded, n, maxLimit)
	}
	return n, nil
}

// parseCriteria reads the filter query parameters. Absent parameters are
// not filtered on.
func parseCriteria(q url.Values) (filter.Criteria, error) {
	var (
		c   filter.Criteria
		err error
	)
	dates := []struct {
		name string
		dst  **time.Time
	}{
		{"date", &c.Date},
		{"start_date", &c.StartDate},
		{"end_date", &c.EndDate},
	}
	for _, d := range dates {
		if *d.dst, err = optionalDate(q, d.name); err != nil {
			return c, err
		}
	}

	floats := []struct {
		name string
		dst  **float64
	}{
		{"distance_min", &c.DistanceMin},
		{"distance_max", &c.DistanceMax},
		{"velocity_min", &c.VelocityMin},
		{"velocity_max", &c.VelocityMax},
		{"diameter_min", &c.DiameterMin},
		{"diameter_max", &c.DiameterMax},
	}
	for _, f := range floats {
		if *f.dst, err = optionalFloat(q, f.name); err != nil {
			return c, err
		}
	}

	if raw := q.Get("hazardous"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return c, paramError("hazardous", err)
		}
		c.Hazardous = &v
	}
	return c, nil
}

func optionalDate(q url.Values, name string) (*time.Time, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := model.ParseDate(raw)
	if err != nil {
		return nil, paramError(name, err)
	}
	return &t, nil
}

func optionalFloat(q url.Values, name string) (*float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, paramError(name, err)
	}
	return &v, nil
}

func paramError(name string, err error) error {
	return fmt.Errorf("%w %s: %w", ErrInvalidParam, name, err)
}
