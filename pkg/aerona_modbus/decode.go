package aerona_modbus

import (
	"fmt"
	"math"
	"time"
)

// RegisterValue is one decoded reading.
type RegisterValue struct {
	Id      string
	Raw     uint16
	Value   float64
	Display string
	// Cached marks a value carried over from the last successful cycle
	// after a failed or discarded read.
	Cached bool
	ReadAt time.Time
}

func (v RegisterValue) IsEnum() bool {
	return v.Display != ""
}

// ValidationError reports a decoded value outside its plausible range.
type ValidationError struct {
	Id    string
	Value float64
	Min   float64
	Max   float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("register %s value %.1f outside plausible range [%.1f, %.1f]",
		e.Id, e.Value, e.Min, e.Max)
}

type sanityRange struct {
	min float64
	max float64
}

// Plausibility bounds per device class. A sensor reading outside these is
// a transmission artifact, not weather.
var sanityRanges = map[string]sanityRange{
	"temperature": {-50, 100},
	"power":       {0, 20000},
	"frequency":   {0, 150},
	"humidity":    {0, 100},
	"percent":     {0, 100},
}

// DecodeValue turns a raw register word into a physical reading: sign,
// scale, enum display, plausibility check, in that order.
func DecodeValue(def RegisterDefinition, raw uint16, at time.Time) (RegisterValue, error) {
	val := RegisterValue{Id: def.Id, Raw: raw, ReadAt: at}

	signed := float64(raw)
	if def.Signed && raw > math.MaxInt16 {
		signed = float64(raw) - 65536
	}
	val.Value = roundTo1(signed * def.Scale)

	if len(def.EnumMapping) > 0 {
		display, known := def.EnumMapping[raw]
		if !known {
			display = fmt.Sprintf("Unknown (%d)", raw)
		}
		val.Display = display
	}

	if r, checked := sanityRanges[def.DeviceClass]; checked {
		if val.Value < r.min || val.Value > r.max {
			return RegisterValue{}, &ValidationError{Id: def.Id, Value: val.Value, Min: r.min, Max: r.max}
		}
	}
	if def.MinValue != nil && val.Value < *def.MinValue {
		return RegisterValue{}, &ValidationError{Id: def.Id, Value: val.Value, Min: *def.MinValue, Max: maxOrInf(def.MaxValue)}
	}
	if def.MaxValue != nil && val.Value > *def.MaxValue {
		return RegisterValue{}, &ValidationError{Id: def.Id, Value: val.Value, Min: minOrInf(def.MinValue), Max: *def.MaxValue}
	}
	return val, nil
}

// EncodeValue converts a physical value into the raw word written to a
// holding register. Bounds are enforced before scaling.
func EncodeValue(def RegisterDefinition, value float64) (uint16, error) {
	if !def.Writable() {
		return 0, fmt.Errorf("register %s is read only", def.Id)
	}
	if def.MinValue != nil && value < *def.MinValue {
		return 0, fmt.Errorf("register %s value %.1f below minimum %.1f", def.Id, value, *def.MinValue)
	}
	if def.MaxValue != nil && value > *def.MaxValue {
		return 0, fmt.Errorf("register %s value %.1f above maximum %.1f", def.Id, value, *def.MaxValue)
	}
	raw := int(math.Round(value / def.Scale))
	if raw < 0 {
		if !def.Signed {
			return 0, fmt.Errorf("register %s cannot hold negative value %.1f", def.Id, value)
		}
		raw += 65536
	}
	if raw > math.MaxUint16 {
		return 0, fmt.Errorf("register %s value %.1f overflows a register word", def.Id, value)
	}
	return uint16(raw), nil
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

func maxOrInf(v *float64) float64 {
	if v == nil {
		return math.Inf(1)
	}
	return *v
}

func minOrInf(v *float64) float64 {
	if v == nil {
		return math.Inf(-1)
	}
	return *v
}
