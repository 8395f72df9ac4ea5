// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NEORecord is a raw near-Earth object row as produced by the extract layer.
type NEORecord struct {
	Designation string // primary designation, e.g. "433"
	Name        string // IAU name, empty when the object is unnamed
	Diameter    string // kilometres; empty or unparseable means unknown
	Hazardous   string // raw potentially-hazardous flag, "Y" or "N"
}

// NearEarthObject is a small body whose orbit brings it close to Earth.
//
// Approaches is populated once, by the database that owns the object.
type NearEarthObject struct {
	Designation string
	Name        *string // nil when unnamed
	Diameter    float64 // NaN when unknown
	Hazardous   bool

	Approaches []*CloseApproach
}

// NewNearEarthObject normalises a raw record. It never fails: missing names
// become nil and unknown diameters become NaN.
func NewNearEarthObject(rec NEORecord) *NearEarthObject {
	neo := &NearEarthObject{
		Designation: strings.TrimSpace(rec.Designation),
		Diameter:    parseDiameter(rec.Diameter),
		Hazardous:   parseFlag(rec.Hazardous),
		Approaches:  []*CloseApproach{},
	}
	if name := strings.TrimSpace(rec.Name); name != "" {
		neo.Name = &name
	}
	return neo
}

func parseDiameter(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return math.NaN()
	}
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return d
}

func parseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "y", "yes", "true", "1":
		return true
	default:
		return false
	}
}

// NameOrEmpty returns the IAU name, or "" for unnamed objects.
func (n *NearEarthObject) NameOrEmpty() string {
	if n.Name == nil {
		return ""
	}
	return *n.Name
}

// HasDiameter reports whether the diameter is known.
func (n *NearEarthObject) HasDiameter() bool {
	return !math.IsNaN(n.Diameter)
}

// FullName returns "designation (name)" or just the designation.
func (n *NearEarthObject) FullName() string {
	if n.Name == nil {
		return n.Designation
	}
	return fmt.Sprintf("%s (%s)", n.Designation, *n.Name)
}

func (n *NearEarthObject) String() string {
	hazard := "is not"
	if n.Hazardous {
		hazard = "is"
	}
	diameter := "an unknown diameter"
	if n.HasDiameter() {
		diameter = fmt.Sprintf("a diameter of %.3f km", n.Diameter)
	}
	return fmt.Sprintf("NEO %s has %s and %s potentially hazardous.", n.FullName(), diameter, hazard)
}
