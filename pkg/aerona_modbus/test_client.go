package aerona_modbus

import (
	"fmt"
	"time"
)

// TestHeatPumpModbusReader serves canned register values and records
// writes. Used by actor and service tests in place of a live unit.
type TestHeatPumpModbusReader struct {
	catalog *Catalog
	enabled []RegisterDefinition
	// Raw word per register id, on top of testDefaults.
	RawOverrides map[string]uint16
	// Written values by register id, appended in call order.
	HoldingWrites map[string][]float64
	CoilWrites    map[string][]bool
	FailSnapshot  bool
	FailInfo      bool
}

func CreateTestHeatPumpModbusReader(features FeatureSet) (*TestHeatPumpModbusReader, error) {
	catalog, err := DefaultCatalog()
	if err != nil {
		return nil, err
	}
	return &TestHeatPumpModbusReader{
		catalog:       catalog,
		enabled:       ResolveEnabled(catalog, features),
		RawOverrides:  map[string]uint16{},
		HoldingWrites: map[string][]float64{},
		CoilWrites:    map[string][]bool{},
	}, nil
}

// testDefaults is a plausible mid-season heating state.
var testDefaults = map[string]uint16{
	"return_temp":           32,
	"compressor_frequency":  48,
	"discharge_temp":        62,
	"power_consumption":     21, // 2100 W
	"fan_speed":             65, // 650 rpm
	"defrost_temp":          4,
	"outdoor_temp":          7,
	"pump_speed":            28, // 2800 rpm
	"suction_temp":          3,
	"flow_temp":             38,
	"operating_mode":        1, // Heating
	"zone1_setpoint":        350,
	"zone2_setpoint":        320,
	"dhw_mode":              1,
	"dhw_temp":              482,
	"external_outdoor_temp": 68, // 6.8 °C
	"buffer_temp":           361,
	"mix_water_temp":        342,
	"zone1_fixed_flow":      400,
	"zone1_max_flow":        550,
	"zone1_min_flow":        250,
	"zone2_fixed_flow":      380,
	"zone2_max_flow":        500,
	"zone2_min_flow":        250,
	"dhw_setpoint":          500,
	"dhw_hysteresis":        50,
	"zone1_weather_comp":    1,
	"control_mode":          1,
}

func (r *TestHeatPumpModbusReader) GetInfo() (*HeatPumpInfo, error) {
	if r.FailInfo {
		return nil, &ConnectionError{Addr: "tcp://test:502", Err: fmt.Errorf("connection refused")}
	}
	return &HeatPumpInfo{
		Manufacturer: "Grant",
		Model:        "Aerona3",
		SlaveId:      1,
		Registers:    len(r.enabled),
	}, nil
}

func (r *TestHeatPumpModbusReader) EnabledRegisters() []RegisterDefinition {
	return r.enabled
}

func (r *TestHeatPumpModbusReader) ReadSnapshot() (*RegisterSnapshot, error) {
	if r.FailSnapshot {
		return nil, &ConnectionError{Addr: "tcp://test:502", Err: fmt.Errorf("connection refused")}
	}
	snap := &RegisterSnapshot{
		Values: make(map[string]RegisterValue, len(r.enabled)),
		ReadAt: time.Now(),
	}
	for _, def := range r.enabled {
		raw, ok := r.RawOverrides[def.Id]
		if !ok {
			raw, ok = testDefaults[def.Id]
		}
		if !ok {
			continue
		}
		val, err := DecodeValue(def, raw, snap.ReadAt)
		if err != nil {
			snap.Partial = true
			continue
		}
		snap.Values[def.Id] = val
	}
	return snap, nil
}

func (r *TestHeatPumpModbusReader) WriteHolding(id string, value float64) error {
	def, ok := r.catalog.Lookup(id)
	if !ok {
		return fmt.Errorf("unknown register id %q", id)
	}
	if _, err := EncodeValue(def, value); err != nil {
		return err
	}
	r.HoldingWrites[id] = append(r.HoldingWrites[id], value)
	return nil
}

func (r *TestHeatPumpModbusReader) WriteCoil(id string, on bool) error {
	if _, ok := r.catalog.Lookup(id); !ok {
		return fmt.Errorf("unknown register id %q", id)
	}
	r.CoilWrites[id] = append(r.CoilWrites[id], on)
	return nil
}
