package service

import (
	"strings"
	"testing"
	"time"

	"aerona2mqtt/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testCurve() domain.HeatingCurveConfig {
	return domain.HeatingCurveConfig{
		MinOutdoorTemp: -5,
		MaxOutdoorTemp: 18,
		MinFlowTemp:    25,
		MaxFlowTemp:    45,
		CurveType:      domain.CurveLinear,
		Steepness:      1,
	}
}

func TestLinearCurveEndpoints(t *testing.T) {
	curve := testCurve()

	assert.Equal(t, 45.0, CalculateCurveFlowTemp(curve, -5))
	assert.Equal(t, 25.0, CalculateCurveFlowTemp(curve, 18))
	assert.Equal(t, 35.0, CalculateCurveFlowTemp(curve, 6.5))
}

func TestCurveClampsBeyondWindow(t *testing.T) {
	curve := testCurve()

	assert.Equal(t, 45.0, CalculateCurveFlowTemp(curve, -25))
	assert.Equal(t, 25.0, CalculateCurveFlowTemp(curve, 35))
}

func TestCurveIsMonotonicNonIncreasing(t *testing.T) {
	for _, curveType := range []domain.CurveType{domain.CurveLinear, domain.CurveQuadratic, domain.CurveCustom} {
		curve := testCurve()
		curve.CurveType = curveType
		curve.Steepness = 2

		prev := CalculateCurveFlowTemp(curve, -10)
		for outdoor := -9.5; outdoor <= 25; outdoor += 0.5 {
			flow := CalculateCurveFlowTemp(curve, outdoor)
			assert.LessOrEqual(t, flow, prev, "curve %s not monotonic at %.1f", curveType, outdoor)
			prev = flow
		}
	}
}

func TestCurveIsPure(t *testing.T) {
	curve := testCurve()
	curve.CurveType = domain.CurveQuadratic
	curve.Steepness = 1.5

	first := CalculateCurveFlowTemp(curve, 3.3)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, CalculateCurveFlowTemp(curve, 3.3))
	}
}

func TestQuadraticCurvePreservesEndpoints(t *testing.T) {
	curve := testCurve()
	curve.CurveType = domain.CurveQuadratic
	curve.Steepness = 2

	assert.Equal(t, 45.0, CalculateCurveFlowTemp(curve, -5))
	assert.Equal(t, 25.0, CalculateCurveFlowTemp(curve, 18))
	// steepness > 1 holds the flow temperature up in the mid range
	linear := testCurve()
	assert.Greater(t, CalculateCurveFlowTemp(curve, 6.5), CalculateCurveFlowTemp(linear, 6.5))
}

func TestCustomCurveColdSnapLiftIsClamped(t *testing.T) {
	curve := testCurve()
	curve.CurveType = domain.CurveCustom
	curve.Steepness = 3

	// lift applies below freezing but never exceeds the max flow temp
	assert.Equal(t, 45.0, CalculateCurveFlowTemp(curve, -4))
	assert.Greater(t, CalculateCurveFlowTemp(curve, -1), CalculateCurveFlowTemp(testCurve(), -1))
	assert.Equal(t, CalculateCurveFlowTemp(testCurve(), 5), CalculateCurveFlowTemp(curve, 5))
}

func TestCurveRoundsToOneDecimal(t *testing.T) {
	curve := testCurve()

	// ratio at 7.77 gives 33.896…, the engine reports 33.9
	assert.Equal(t, 33.9, CalculateCurveFlowTemp(curve, 7.77))
}

func TestValidateAcceptsSaneCurve(t *testing.T) {
	assert.Empty(t, ValidateHeatingCurveConfig(testCurve()))
}

func TestValidateDegenerateOutdoorRange(t *testing.T) {
	curve := testCurve()
	curve.MinOutdoorTemp = 18
	curve.MaxOutdoorTemp = 18

	problems := ValidateHeatingCurveConfig(curve)
	assert.NotEmpty(t, problems)
	found := false
	for _, p := range problems {
		if strings.Contains(p, "outdoor temperature") {
			found = true
		}
	}
	assert.True(t, found, "expected a problem mentioning the outdoor temperature range: %v", problems)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	curve := domain.HeatingCurveConfig{
		MinOutdoorTemp: -40,
		MaxOutdoorTemp: 50,
		MinFlowTemp:    10,
		MaxFlowTemp:    90,
		CurveType:      "spline",
	}
	problems := ValidateHeatingCurveConfig(curve)
	assert.GreaterOrEqual(t, len(problems), 5)
}

func TestZoneAdjustmentClamped(t *testing.T) {
	zone := domain.ZoneAdjustment{Factor: 0.8, Offset: -2, MinFlowTemp: 20, MaxFlowTemp: 60}

	assert.Equal(t, 34.0, AdjustZoneFlow(45, zone))
	// cold result clamps to the zone floor
	assert.Equal(t, 20.0, AdjustZoneFlow(25, domain.ZoneAdjustment{Factor: 0.5, Offset: 0, MinFlowTemp: 20, MaxFlowTemp: 60}))
	// hot result clamps to the zone ceiling
	assert.Equal(t, 60.0, AdjustZoneFlow(55, domain.ZoneAdjustment{Factor: 1.2, Offset: 5, MinFlowTemp: 20, MaxFlowTemp: 60}))
}

func testEngine(t *testing.T, boost *domain.HeatingCurveConfig) (*WeatherCompensationEngine, *time.Time) {
	t.Helper()
	engine, err := NewWeatherCompensationEngine(testCurve(), boost, zap.NewNop())
	assert.NoError(t, err)
	now := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	engine.Now = func() time.Time { return now }
	return engine, &now
}

func boostCurve() *domain.HeatingCurveConfig {
	return &domain.HeatingCurveConfig{
		MinOutdoorTemp: -5,
		MaxOutdoorTemp: 18,
		MinFlowTemp:    30,
		MaxFlowTemp:    50,
		CurveType:      domain.CurveLinear,
		Steepness:      1,
	}
}

func TestBoostRequiresSecondCurve(t *testing.T) {
	engine, _ := testEngine(t, nil)

	changed, err := engine.ActivateBoost(time.Hour, "manual")
	assert.Error(t, err)
	assert.False(t, changed)
	assert.Equal(t, domain.CurvePrimary, engine.Status().ActiveCurve)
}

func TestBoostSwitchesCurve(t *testing.T) {
	engine, _ := testEngine(t, boostCurve())

	base := engine.Calculate(6.5)
	assert.Equal(t, 35.0, base.FlowTemp)

	changed, err := engine.ActivateBoost(0, "cold morning")
	assert.NoError(t, err)
	assert.True(t, changed)

	boosted := engine.Calculate(6.5)
	assert.Equal(t, domain.CurveBoost, boosted.ActiveCurve)
	assert.Equal(t, 40.0, boosted.FlowTemp)

	status := engine.Status()
	assert.True(t, status.BoostActive)
	assert.Equal(t, "cold morning", status.BoostReason)
	assert.Equal(t, 2*time.Hour, status.BoostRemaining)
}

func TestBoostExpiresLazily(t *testing.T) {
	engine, now := testEngine(t, boostCurve())

	_, err := engine.ActivateBoost(0, "scheduled")
	assert.NoError(t, err)

	// one minute before the default 120 minute window ends
	*now = now.Add(119 * time.Minute)
	result := engine.Calculate(6.5)
	assert.Equal(t, domain.CurveBoost, result.ActiveCurve)
	assert.False(t, result.BoostExpired)

	// past the window, the next calculation reverts
	*now = now.Add(2 * time.Minute)
	result = engine.Calculate(6.5)
	assert.Equal(t, domain.CurvePrimary, result.ActiveCurve)
	assert.True(t, result.BoostExpired)
	assert.Equal(t, 35.0, result.FlowTemp)
}

func TestDeactivateBoostIsIdempotent(t *testing.T) {
	engine, _ := testEngine(t, boostCurve())

	assert.False(t, engine.DeactivateBoost("nothing active"))

	_, err := engine.ActivateBoost(time.Hour, "test")
	assert.NoError(t, err)
	assert.True(t, engine.DeactivateBoost("done"))
	assert.False(t, engine.DeactivateBoost("done again"))
}

func TestEngineTracksStatus(t *testing.T) {
	engine, _ := testEngine(t, nil)

	assert.Equal(t, uint64(0), engine.Status().CalculationCount)
	engine.Calculate(2)
	engine.Calculate(4)
	status := engine.Status()
	assert.Equal(t, uint64(2), status.CalculationCount)
	assert.NotNil(t, status.LastOutdoorTemp)
	assert.Equal(t, 4.0, *status.LastOutdoorTemp)
	assert.NotNil(t, status.LastFlowTemp)
}

func TestEngineRejectsInvalidCurves(t *testing.T) {
	bad := testCurve()
	bad.MaxFlowTemp = 200

	_, err := NewWeatherCompensationEngine(bad, nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewWeatherCompensationEngine(testCurve(), &bad, zap.NewNop())
	assert.Error(t, err)
}

func TestCurvePointsSpanWindow(t *testing.T) {
	engine, _ := testEngine(t, nil)

	points := engine.CurvePoints(24)
	assert.Len(t, points, 24)
	assert.Equal(t, -5.0, points[0].OutdoorTemp)
	assert.Equal(t, 45.0, points[0].FlowTemp)
	assert.Equal(t, 18.0, points[len(points)-1].OutdoorTemp)
	assert.Equal(t, 25.0, points[len(points)-1].FlowTemp)
}
