package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/neodb/internal/adapters/export"
	"github.com/okian/neodb/internal/domain/model"
)

// NEODependencies defines the lookups used by NEOHandler.
type NEODependencies interface {
	Inspect(ctx context.Context, designation, name string) (*model.NearEarthObject, error)
}

// NEOHandler serves single-NEO lookups.
type NEOHandler struct {
	deps NEODependencies
}

// NewNEOHandler creates a new NEO handler.
func NewNEOHandler(deps NEODependencies) *NEOHandler {
	return &NEOHandler{deps: deps}
}

type neoResponse struct {
	Designation          string            `json:"designation"`
	Name                 *string           `json:"name"`
	FullName             string            `json:"full_name"`
	DiameterKM           *float64          `json:"diameter_km"`
	PotentiallyHazardous bool              `json:"potentially_hazardous"`
	ApproachCount        int               `json:"approach_count"`
	Approaches           []export.Approach `json:"approaches,omitempty"`
}

func newNEOResponse(neo *model.NearEarthObject, withApproaches bool) neoResponse {
	resp := neoResponse{
		Designation:          neo.Designation,
		Name:                 neo.Name,
		FullName:             neo.FullName(),
		PotentiallyHazardous: neo.Hazardous,
		ApproachCount:        len(neo.Approaches),
	}
	if neo.HasDiameter() {
		d := neo.Diameter
		resp.DiameterKM = &d
	}
	if withApproaches {
		resp.Approaches = make([]export.Approach, 0, len(neo.Approaches))
		for _, ca := range neo.Approaches {
			resp.Approaches = append(resp.Approaches, export.NewApproach(ca))
		}
	}
	return resp
}

// HandleGetByDesignation handles GET /neos/{designation}.
func (h *NEOHandler) HandleGetByDesignation(w http.ResponseWriter, r *http.Request) {
	designation := strings.TrimSpace(r.PathValue("designation"))
	if designation == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	h.respond(w, r, designation, "")
}

// HandleGetByName handles GET /neos?name=NAME.
func (h *NEOHandler) HandleGetByName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing name"))
		return
	}
	h.respond(w, r, "", name)
}

func (h *NEOHandler) respond(w http.ResponseWriter, r *http.Request, designation, name string) {
	withApproaches := false
	if raw := r.URL.Query().Get("approaches"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", paramError("approaches", err))
			return
		}
		withApproaches = v
	}

	neo, err := h.deps.Inspect(r.Context(), designation, name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newNEOResponse(neo, withApproaches))
}
