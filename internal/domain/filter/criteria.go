package filter

import "time"

// Criteria is the flag/query-string shaped form of the filter options.
// Nil fields are not filtered on.
type Criteria struct {
	Date        *time.Time
	StartDate   *time.Time
	EndDate     *time.Time
	DistanceMin *float64
	DistanceMax *float64
	VelocityMin *float64
	VelocityMax *float64
	DiameterMin *float64
	DiameterMax *float64
	Hazardous   *bool
}

// Options converts the supplied fields to filter options.
func (c Criteria) Options() []Option {
	var opts []Option
	if c.Date != nil {
		opts = append(opts, WithDate(*c.Date))
	}
	if c.StartDate != nil {
		opts = append(opts, WithStartDate(*c.StartDate))
	}
	if c.EndDate != nil {
		opts = append(opts, WithEndDate(*c.EndDate))
	}
	if c.DistanceMin != nil {
		opts = append(opts, WithDistanceMin(*c.DistanceMin))
	}
	if c.DistanceMax != nil {
		opts = append(opts, WithDistanceMax(*c.DistanceMax))
	}
	if c.VelocityMin != nil {
		opts = append(opts, WithVelocityMin(*c.VelocityMin))
	}
	if c.VelocityMax != nil {
		opts = append(opts, WithVelocityMax(*c.VelocityMax))
	}
	if c.DiameterMin != nil {
		opts = append(opts, WithDiameterMin(*c.DiameterMin))
	}
	if c.DiameterMax != nil {
		opts = append(opts, WithDiameterMax(*c.DiameterMax))
	}
	if c.Hazardous != nil {
		opts = append(opts, WithHazardous(*c.Hazardous))
	}
	return opts
}

// Predicates is shorthand for Create(c.Options()...).
func (c Criteria) Predicates() []Predicate {
	return Create(c.Options()...)
}

// Empty reports whether no criterion is set.
func (c Criteria) Empty() bool {
	return len(c.Options()) == 0
}
