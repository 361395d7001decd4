package compliance

import "infinite-experiment/hangar/internal/constants"

// Counters is a snapshot of an aircraft's five usage counters. Missing
// values are zero.
type Counters struct {
	Hobbs             float64 `json:"hobbs" db:"hobbs"`
	Tach              float64 `json:"tach" db:"tach"`
	AirframeTotalTime float64 `json:"airframe_total_time" db:"airframe_total_time"`
	EngineTotalTime   float64 `json:"engine_total_time" db:"engine_total_time"`
	PropTotalTime     float64 `json:"prop_total_time" db:"prop_total_time"`
}

// Value returns the reading for a counter type. ok is false for an unknown
// type.
func (c Counters) Value(t constants.CounterType) (value float64, ok bool) {
	switch t {
	case constants.CounterHobbs:
		return c.Hobbs, true
	case constants.CounterTach:
		return c.Tach, true
	case constants.CounterAirframeTT:
		return c.AirframeTotalTime, true
	case constants.CounterEngineTT:
		return c.EngineTotalTime, true
	case constants.CounterPropTT:
		return c.PropTotalTime, true
	}
	return 0, false
}
