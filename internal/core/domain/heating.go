package domain

import "time"

type CurveType string

const (
	CurveLinear    CurveType = "linear"
	CurveQuadratic CurveType = "quadratic"
	CurveCustom    CurveType = "custom"
)

// HeatingCurveConfig describes one weather compensation curve: the outdoor
// temperature window and the flow temperatures mapped to its ends.
type HeatingCurveConfig struct {
	MinOutdoorTemp float64
	MaxOutdoorTemp float64
	MinFlowTemp    float64
	MaxFlowTemp    float64
	CurveType      CurveType
	// Steepness reshapes quadratic and custom curves. 1.0 is linear.
	Steepness float64
}

type ActiveCurve string

const (
	CurvePrimary ActiveCurve = "primary"
	CurveBoost   ActiveCurve = "boost"
)

// WeatherCompStatus is a point-in-time snapshot of the compensation engine.
type WeatherCompStatus struct {
	Enabled          bool
	ActiveCurve      ActiveCurve
	BoostActive      bool
	BoostEndsAt      time.Time
	BoostRemaining   time.Duration
	BoostReason      string
	LastOutdoorTemp  *float64
	LastFlowTemp     *float64
	LastCalculation  time.Time
	CalculationCount uint64
}

// CurvePoint is one sample of a curve, used for reports.
type CurvePoint struct {
	OutdoorTemp float64
	FlowTemp    float64
}

// ZoneAdjustment maps the base compensated flow temperature onto a zone.
// Secondary zones usually run cooler (underfloor vs radiators).
type ZoneAdjustment struct {
	Factor      float64
	Offset      float64
	MinFlowTemp float64
	MaxFlowTemp float64
}

// WeatherCompTickResult is the outcome of one compensation calculation.
type WeatherCompTickResult struct {
	FlowTemp     float64
	ActiveCurve  ActiveCurve
	BoostExpired bool
}
