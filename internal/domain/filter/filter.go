// Package filter builds close-approach predicates from user criteria and
// limits lazy result streams.
package filter

import (
	"time"

	"github.com/okian/neodb/internal/domain/model"
)

// Predicate reports whether a close approach should be kept.
type Predicate func(ca *model.CloseApproach) bool

// criteria holds the bound values; nil means the criterion was not supplied.
type criteria struct {
	date        *time.Time
	startDate   *time.Time
	endDate     *time.Time
	distanceMin *float64
	distanceMax *float64
	velocityMin *float64
	velocityMax *float64
	diameterMin *float64
	diameterMax *float64
	hazardous   *bool
}

// Option supplies one criterion to Create.
type Option func(*criteria)

// WithDate keeps approaches on exactly this calendar date.
func WithDate(d time.Time) Option {
	return func(c *criteria) { c.date = ptr(model.DateOf(d)) }
}

// WithStartDate keeps approaches on or after this calendar date.
func WithStartDate(d time.Time) Option {
	return func(c *criteria) { c.startDate = ptr(model.DateOf(d)) }
}

// WithEndDate keeps approaches on or before this calendar date.
func WithEndDate(d time.Time) Option {
	return func(c *criteria) { c.endDate = ptr(model.DateOf(d)) }
}

// WithDistanceMin keeps approaches at least this many au away.
func WithDistanceMin(au float64) Option {
	return func(c *criteria) { c.distanceMin = &au }
}

// WithDistanceMax keeps approaches at most this many au away.
func WithDistanceMax(au float64) Option {
	return func(c *criteria) { c.distanceMax = &au }
}

// WithVelocityMin keeps approaches at least this fast (km/s).
func WithVelocityMin(kms float64) Option {
	return func(c *criteria) { c.velocityMin = &kms }
}

// WithVelocityMax keeps approaches at most this fast (km/s).
func WithVelocityMax(kms float64) Option {
	return func(c *criteria) { c.velocityMax = &kms }
}

// WithDiameterMin keeps approaches whose linked NEO is at least this wide (km).
func WithDiameterMin(km float64) Option {
	return func(c *criteria) { c.diameterMin = &km }
}

// WithDiameterMax keeps approaches whose linked NEO is at most this wide (km).
func WithDiameterMax(km float64) Option {
	return func(c *criteria) { c.diameterMax = &km }
}

// WithHazardous keeps approaches whose linked NEO's hazardous flag equals v.
// Passing false is a real criterion: it requires a non-hazardous NEO.
func WithHazardous(v bool) Option {
	return func(c *criteria) { c.hazardous = &v }
}

// Create returns one predicate per supplied criterion. The order is fixed
// (dates, distance, velocity, diameter, hazardous) regardless of the order
// of opts; unsupplied criteria produce nothing.
func Create(opts ...Option) []Predicate {
	var c criteria
	for _, opt := range opts {
		opt(&c)
	}

	var preds []Predicate
	if c.date != nil {
		d := *c.date
		preds = append(preds, onDate(func(got time.Time) bool { return got.Equal(d) }))
	}
	if c.startDate != nil {
		d := *c.startDate
		preds = append(preds, onDate(func(got time.Time) bool { return !got.Before(d) }))
	}
	if c.endDate != nil {
		d := *c.endDate
		preds = append(preds, onDate(func(got time.Time) bool { return !got.After(d) }))
	}
	if c.distanceMin != nil {
		v := *c.distanceMin
		preds = append(preds, func(ca *model.CloseApproach) bool { return ca.Distance >= v })
	}
	if c.distanceMax != nil {
		v := *c.distanceMax
		preds = append(preds, func(ca *model.CloseApproach) bool { return ca.Distance <= v })
	}
	if c.velocityMin != nil {
		v := *c.velocityMin
		preds = append(preds, func(ca *model.CloseApproach) bool { return ca.Velocity >= v })
	}
	if c.velocityMax != nil {
		v := *c.velocityMax
		preds = append(preds, func(ca *model.CloseApproach) bool { return ca.Velocity <= v })
	}
	if c.diameterMin != nil {
		v := *c.diameterMin
		preds = append(preds, onNEO(func(neo *model.NearEarthObject) bool { return neo.Diameter >= v }))
	}
	if c.diameterMax != nil {
		v := *c.diameterMax
		preds = append(preds, onNEO(func(neo *model.NearEarthObject) bool { return neo.Diameter <= v }))
	}
	if c.hazardous != nil {
		v := *c.hazardous
		preds = append(preds, onNEO(func(neo *model.NearEarthObject) bool { return neo.Hazardous == v }))
	}
	return preds
}

// onDate adapts a calendar-date test; approaches with an unknown time never match.
func onDate(test func(time.Time) bool) Predicate {
	return func(ca *model.CloseApproach) bool {
		return ca.HasTime() && test(ca.Date())
	}
}

// onNEO adapts a NEO test; unlinked approaches never match.
func onNEO(test func(*model.NearEarthObject) bool) Predicate {
	return func(ca *model.CloseApproach) bool {
		return ca.NEO != nil && test(ca.NEO)
	}
}

// All returns the conjunction of preds. With no predicates it matches everything.
func All(preds ...Predicate) Predicate {
	return func(ca *model.CloseApproach) bool {
		for _, p := range preds {
			if !p(ca) {
				return false
			}
		}
		return true
	}
}

func ptr[T any](v T) *T { return &v }
