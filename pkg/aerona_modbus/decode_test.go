package aerona_modbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mustLookup(t *testing.T, id string) RegisterDefinition {
	t.Helper()
	catalog, err := DefaultCatalog()
	assert.NoError(t, err)
	def, ok := catalog.Lookup(id)
	assert.True(t, ok, id)
	return def
}

func TestDecodeNegativeTemperature(t *testing.T) {
	def := mustLookup(t, "external_outdoor_temp")

	// 65530 is -6 in two's complement, scaled by 0.1
	val, err := DecodeValue(def, 65530, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, -0.6, val.Value)
}

func TestDecodePositiveScaled(t *testing.T) {
	def := mustLookup(t, "power_consumption")

	val, err := DecodeValue(def, 21, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 2100.0, val.Value)
}

func TestDecodeEnumDisplay(t *testing.T) {
	def := mustLookup(t, "operating_mode")

	val, err := DecodeValue(def, 1, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, "Heating", val.Display)

	val, err = DecodeValue(def, 9, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, "Unknown (9)", val.Display)
}

func TestDecodeEnumStillBoundsChecked(t *testing.T) {
	def := RegisterDefinition{
		Id: "mode", Address: 99, Class: INPUT_REGISTER, Scale: 1,
		EnumMapping: map[uint16]string{0: "Off", 1: "On"},
		MaxValue:    bound(3),
	}

	// unknown but plausible raw word keeps the fallback display
	val, err := DecodeValue(def, 2, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, "Unknown (2)", val.Display)

	// out of range is rejected even though a display exists for it
	_, err = DecodeValue(def, 9, time.Now())
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "mode", verr.Id)
}

func TestDecodeRejectsImplausibleTemperature(t *testing.T) {
	def := mustLookup(t, "return_temp")

	// 850 °C is a bus glitch, not water
	_, err := DecodeValue(def, 850, time.Now())
	assert.Error(t, err)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "return_temp", verr.Id)
}

func TestDecodeRejectsImplausiblePower(t *testing.T) {
	def := mustLookup(t, "power_consumption")

	// raw 400 scales to 40 kW, four times the unit's ceiling
	_, err := DecodeValue(def, 400, time.Now())
	assert.Error(t, err)
}

func TestEncodeScalesAndRounds(t *testing.T) {
	def := mustLookup(t, "zone1_fixed_flow")

	raw, err := EncodeValue(def, 42.5)
	assert.NoError(t, err)
	assert.Equal(t, uint16(425), raw)
}

func TestEncodeEnforcesBounds(t *testing.T) {
	def := mustLookup(t, "dhw_setpoint")

	_, err := EncodeValue(def, 70)
	assert.Error(t, err)
	_, err = EncodeValue(def, 30)
	assert.Error(t, err)
}

func TestEncodeRefusesInputRegisters(t *testing.T) {
	def := mustLookup(t, "outdoor_temp")

	_, err := EncodeValue(def, 10)
	assert.Error(t, err)
}

func TestEncodeNegativeSignedValue(t *testing.T) {
	def := mustLookup(t, "wc_min_outdoor")

	raw, err := EncodeValue(def, -5)
	assert.NoError(t, err)
	assert.Equal(t, uint16(65486), raw) // -50 as two's complement
}

func TestTestReaderSnapshot(t *testing.T) {
	reader, err := CreateTestHeatPumpModbusReader(FeatureSet{DHWCylinder: true, ExternalOutdoorSensor: true})
	assert.NoError(t, err)

	snap, err := reader.ReadSnapshot()
	assert.NoError(t, err)

	outdoor, ok := snap.Get("external_outdoor_temp")
	assert.True(t, ok)
	assert.Equal(t, 6.8, outdoor.Value)

	dhw, ok := snap.Get("dhw_temp")
	assert.True(t, ok)
	assert.Equal(t, 48.2, dhw.Value)

	_, ok = snap.Get("zone2_setpoint")
	assert.False(t, ok)
}

func TestTestReaderWriteValidation(t *testing.T) {
	reader, err := CreateTestHeatPumpModbusReader(FeatureSet{})
	assert.NoError(t, err)

	assert.NoError(t, reader.WriteHolding("zone1_fixed_flow", 45))
	assert.Equal(t, []float64{45}, reader.HoldingWrites["zone1_fixed_flow"])

	assert.Error(t, reader.WriteHolding("zone1_fixed_flow", 80))
	assert.Error(t, reader.WriteHolding("nope", 10))
}
