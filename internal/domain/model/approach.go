package model

import (
	"fmt"
	"strings"
	"time"
)

// Time layouts used by the close-approach data set.
const (
	// ApproachTimeLayout is the layout of the "cd" field in CAD data, e.g. "2020-Jan-01 00:54".
	ApproachTimeLayout = "2006-Jan-02 15:04"
	// DisplayTimeLayout renders approach times without seconds.
	DisplayTimeLayout = "2006-01-02 15:04"
	// DateLayout is the calendar date layout accepted by query criteria.
	DateLayout = "2006-01-02"

	// UnknownTime is rendered in place of a missing approach time.
	UnknownTime = "unknown"
)

// ApproachRecord is a raw close-approach row as produced by the extract layer.
type ApproachRecord struct {
	Designation string
	Time        string
	Distance    float64 // astronomical units
	Velocity    float64 // km/s
}

// CloseApproach is a single recorded pass of a NEO near Earth.
type CloseApproach struct {
	// Designation links the approach to its NEO; kept even if no NEO matches.
	Designation string
	Time        time.Time // UTC; zero when unknown
	Distance    float64
	Velocity    float64

	// NEO is set by the owning database during linking.
	NEO *NearEarthObject
}

// NewCloseApproach builds an unlinked approach. An unparseable time leaves
// Time at its zero value.
func NewCloseApproach(rec ApproachRecord) *CloseApproach {
	t, _ := ParseApproachTime(rec.Time)
	return &CloseApproach{
		Designation: strings.TrimSpace(rec.Designation),
		Time:        t,
		Distance:    rec.Distance,
		Velocity:    rec.Velocity,
	}
}

// ParseApproachTime parses a CAD timestamp as UTC.
func ParseApproachTime(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(ApproachTimeLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse approach time %q: %w", raw, err)
	}
	return t, nil
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return d, nil
}

// HasTime reports whether the approach time is known.
func (a *CloseApproach) HasTime() bool {
	return !a.Time.IsZero()
}

// TimeStr formats the approach time, or returns UnknownTime.
func (a *CloseApproach) TimeStr() string {
	if !a.HasTime() {
		return UnknownTime
	}
	return a.Time.Format(DisplayTimeLayout)
}

// Date returns the calendar date of the approach as midnight UTC.
func (a *CloseApproach) Date() time.Time {
	return DateOf(a.Time)
}

// DateOf truncates t to midnight UTC of its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (a *CloseApproach) String() string {
	neo := "an unknown NEO"
	if a.NEO != nil {
		neo = "NEO " + a.NEO.FullName()
	}
	return fmt.Sprintf("At %s, %s approaches Earth at a distance of %.2f au and a velocity of %.2f km/s.",
		a.TimeStr(), neo, a.Distance, a.Velocity)
}
