package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"aerona2mqtt/internal/core/domain"
	"aerona2mqtt/internal/core/port"

	"go.uber.org/zap"
)

// Installer-policy bounds for curve parameters. A curve outside these is a
// misconfiguration, not a preference.
const (
	curveMinOutdoorLow   = -30
	curveMinOutdoorHigh  = 20
	curveMaxOutdoorLow   = 15
	curveMaxOutdoorHigh  = 30
	curveMinFlowLow      = 20
	curveMinFlowHigh     = 40
	curveMaxFlowLow      = 35
	curveMaxFlowHigh     = 70
	defaultBoostDuration = 120 * time.Minute
)

// ValidateHeatingCurveConfig collects every reason a curve is unusable.
// An empty slice means the curve is valid.
func ValidateHeatingCurveConfig(cfg domain.HeatingCurveConfig) []string {
	var problems []string

	if cfg.MinOutdoorTemp < curveMinOutdoorLow || cfg.MinOutdoorTemp > curveMinOutdoorHigh {
		problems = append(problems, fmt.Sprintf("min outdoor temperature %.1f outside [%d, %d]",
			cfg.MinOutdoorTemp, curveMinOutdoorLow, curveMinOutdoorHigh))
	}
	if cfg.MaxOutdoorTemp < curveMaxOutdoorLow || cfg.MaxOutdoorTemp > curveMaxOutdoorHigh {
		problems = append(problems, fmt.Sprintf("max outdoor temperature %.1f outside [%d, %d]",
			cfg.MaxOutdoorTemp, curveMaxOutdoorLow, curveMaxOutdoorHigh))
	}
	if cfg.MinOutdoorTemp >= cfg.MaxOutdoorTemp {
		problems = append(problems, fmt.Sprintf("degenerate outdoor temperature range: min %.1f must be below max %.1f",
			cfg.MinOutdoorTemp, cfg.MaxOutdoorTemp))
	}
	if cfg.MinFlowTemp < curveMinFlowLow || cfg.MinFlowTemp > curveMinFlowHigh {
		problems = append(problems, fmt.Sprintf("min flow temperature %.1f outside [%d, %d]",
			cfg.MinFlowTemp, curveMinFlowLow, curveMinFlowHigh))
	}
	if cfg.MaxFlowTemp < curveMaxFlowLow || cfg.MaxFlowTemp > curveMaxFlowHigh {
		problems = append(problems, fmt.Sprintf("max flow temperature %.1f outside [%d, %d]",
			cfg.MaxFlowTemp, curveMaxFlowLow, curveMaxFlowHigh))
	}
	if cfg.MinFlowTemp >= cfg.MaxFlowTemp {
		problems = append(problems, fmt.Sprintf("min flow temperature %.1f must be below max flow temperature %.1f",
			cfg.MinFlowTemp, cfg.MaxFlowTemp))
	}
	switch cfg.CurveType {
	case domain.CurveLinear, domain.CurveQuadratic, domain.CurveCustom:
	default:
		problems = append(problems, fmt.Sprintf("unknown curve type %q", cfg.CurveType))
	}
	if cfg.CurveType != domain.CurveLinear && cfg.Steepness <= 0 {
		problems = append(problems, fmt.Sprintf("curve steepness %.2f must be positive", cfg.Steepness))
	}
	return problems
}

// CalculateCurveFlowTemp maps an outdoor temperature onto a curve. Outdoor
// values beyond the window clamp to the window ends, results round to one
// decimal, matching the register resolution.
func CalculateCurveFlowTemp(cfg domain.HeatingCurveConfig, outdoorTemp float64) float64 {
	if outdoorTemp <= cfg.MinOutdoorTemp {
		return roundFlow(cfg.MaxFlowTemp)
	}
	if outdoorTemp >= cfg.MaxOutdoorTemp {
		return roundFlow(cfg.MinFlowTemp)
	}

	ratio := (outdoorTemp - cfg.MinOutdoorTemp) / (cfg.MaxOutdoorTemp - cfg.MinOutdoorTemp)
	flowRange := cfg.MaxFlowTemp - cfg.MinFlowTemp

	var flow float64
	switch cfg.CurveType {
	case domain.CurveQuadratic:
		factor := 1 - math.Pow(ratio, cfg.Steepness)
		flow = cfg.MinFlowTemp + factor*flowRange
	case domain.CurveCustom:
		flow = cfg.MaxFlowTemp - ratio*flowRange
		// cold-snap lift below freezing
		if outdoorTemp <= 0 {
			flow += (cfg.Steepness - 1) * 5
		}
		flow = math.Min(flow, cfg.MaxFlowTemp)
		flow = math.Max(flow, cfg.MinFlowTemp)
	default:
		flow = cfg.MaxFlowTemp - ratio*flowRange
	}
	return roundFlow(flow)
}

// AdjustZoneFlow maps the base compensated temperature onto a zone and
// clamps the result to the zone emitter limits.
func AdjustZoneFlow(baseFlowTemp float64, zone domain.ZoneAdjustment) float64 {
	flow := baseFlowTemp*zone.Factor + zone.Offset
	flow = math.Max(zone.MinFlowTemp, math.Min(zone.MaxFlowTemp, flow))
	return roundFlow(flow)
}

func roundFlow(v float64) float64 {
	return math.Round(v*10) / 10
}

// WeatherCompensationEngine holds the dual-curve state machine. Not safe
// for concurrent use, the owning actor serializes access.
type WeatherCompensationEngine struct {
	Primary domain.HeatingCurveConfig
	Boost   *domain.HeatingCurveConfig
	Logger  *zap.Logger
	Now     func() time.Time

	activeCurve      domain.ActiveCurve
	boostEndsAt      time.Time
	boostReason      string
	lastOutdoorTemp  *float64
	lastFlowTemp     *float64
	lastCalculation  time.Time
	calculationCount uint64
}

func NewWeatherCompensationEngine(primary domain.HeatingCurveConfig, boost *domain.HeatingCurveConfig,
	logger *zap.Logger) (*WeatherCompensationEngine, error) {
	if problems := ValidateHeatingCurveConfig(primary); len(problems) > 0 {
		return nil, fmt.Errorf("invalid primary heating curve: %v", problems)
	}
	if boost != nil {
		if problems := ValidateHeatingCurveConfig(*boost); len(problems) > 0 {
			return nil, fmt.Errorf("invalid boost heating curve: %v", problems)
		}
	}
	return &WeatherCompensationEngine{
		Primary:     primary,
		Boost:       boost,
		Logger:      logger,
		Now:         time.Now,
		activeCurve: domain.CurvePrimary,
	}, nil
}

// Calculate runs one compensation step. Boost expiry is checked lazily
// here, there is no timer ticking behind the engine's back.
func (e *WeatherCompensationEngine) Calculate(outdoorTemp float64) domain.WeatherCompTickResult {
	expired := e.expireBoostIfDue()

	curve := e.Primary
	if e.activeCurve == domain.CurveBoost && e.Boost != nil {
		curve = *e.Boost
	}
	flow := CalculateCurveFlowTemp(curve, outdoorTemp)

	e.lastOutdoorTemp = &outdoorTemp
	e.lastFlowTemp = &flow
	e.lastCalculation = e.Now()
	e.calculationCount++

	return domain.WeatherCompTickResult{
		FlowTemp:     flow,
		ActiveCurve:  e.activeCurve,
		BoostExpired: expired,
	}
}

func (e *WeatherCompensationEngine) expireBoostIfDue() bool {
	if e.activeCurve != domain.CurveBoost {
		return false
	}
	if e.Now().Before(e.boostEndsAt) {
		return false
	}
	e.Logger.Info("boost period expired, reverting to primary curve",
		zap.String("reason", e.boostReason))
	e.activeCurve = domain.CurvePrimary
	e.boostReason = ""
	e.boostEndsAt = time.Time{}
	return true
}

// ActivateBoost switches to the boost curve for the given duration. A zero
// duration uses the 120 minute default. Re-activation extends the window.
func (e *WeatherCompensationEngine) ActivateBoost(duration time.Duration, reason string) (bool, error) {
	if e.Boost == nil {
		return false, errors.New("no boost curve configured")
	}
	if duration <= 0 {
		duration = defaultBoostDuration
	}
	already := e.activeCurve == domain.CurveBoost
	e.activeCurve = domain.CurveBoost
	e.boostEndsAt = e.Now().Add(duration)
	e.boostReason = reason
	e.Logger.Info("boost mode activated",
		zap.Duration("duration", duration), zap.String("reason", reason))
	return !already, nil
}

// DeactivateBoost reverts to the primary curve. Idempotent.
func (e *WeatherCompensationEngine) DeactivateBoost(reason string) bool {
	if e.activeCurve != domain.CurveBoost {
		return false
	}
	e.activeCurve = domain.CurvePrimary
	e.boostEndsAt = time.Time{}
	e.boostReason = ""
	e.Logger.Info("boost mode deactivated", zap.String("reason", reason))
	return true
}

func (e *WeatherCompensationEngine) Status() domain.WeatherCompStatus {
	status := domain.WeatherCompStatus{
		Enabled:          true,
		ActiveCurve:      e.activeCurve,
		BoostActive:      e.activeCurve == domain.CurveBoost,
		LastOutdoorTemp:  e.lastOutdoorTemp,
		LastFlowTemp:     e.lastFlowTemp,
		LastCalculation:  e.lastCalculation,
		CalculationCount: e.calculationCount,
	}
	if status.BoostActive {
		status.BoostEndsAt = e.boostEndsAt
		status.BoostReason = e.boostReason
		if remaining := e.boostEndsAt.Sub(e.Now()); remaining > 0 {
			status.BoostRemaining = remaining
		}
	}
	return status
}

// CurvePoints samples the active curve across its outdoor window.
func (e *WeatherCompensationEngine) CurvePoints(samples int) []domain.CurvePoint {
	curve := e.Primary
	if e.activeCurve == domain.CurveBoost && e.Boost != nil {
		curve = *e.Boost
	}
	if samples < 2 {
		samples = 2
	}
	points := make([]domain.CurvePoint, 0, samples)
	step := (curve.MaxOutdoorTemp - curve.MinOutdoorTemp) / float64(samples-1)
	for i := 0; i < samples; i++ {
		outdoor := curve.MinOutdoorTemp + float64(i)*step
		points = append(points, domain.CurvePoint{
			OutdoorTemp: math.Round(outdoor*10) / 10,
			FlowTemp:    CalculateCurveFlowTemp(curve, outdoor),
		})
	}
	return points
}

// ensure interface compliance
var _ port.WeatherCompensationLogic = (*WeatherCompensationEngine)(nil)
