package aerona_modbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func enabledIds(defs []RegisterDefinition) map[string]bool {
	ids := make(map[string]bool, len(defs))
	for _, def := range defs {
		ids[def.Id] = true
	}
	return ids
}

func TestResolveMinimalInstallation(t *testing.T) {
	catalog, err := DefaultCatalog()
	assert.NoError(t, err)

	ids := enabledIds(ResolveEnabled(catalog, FeatureSet{}))

	// basic always on
	assert.True(t, ids["return_temp"])
	assert.True(t, ids["outdoor_temp"])
	assert.True(t, ids["operating_mode"])
	// zones category on by default, but zone 2 registers are feature gated
	assert.True(t, ids["zone1_setpoint"])
	assert.True(t, ids["zone1_fixed_flow"])
	assert.False(t, ids["zone2_setpoint"])
	assert.False(t, ids["zone2_fixed_flow"])
	// no DHW cylinder, nothing DHW
	assert.False(t, ids["dhw_temp"])
	assert.False(t, ids["dhw_enable"])
	assert.False(t, ids["dhw_setpoint"])
	// advanced and diagnostic off by default
	assert.False(t, ids["plate_hx_temp"])
	assert.False(t, ids["error_code_1"])
	// feature-gated external registers off, ungated external on
	assert.False(t, ids["external_outdoor_temp"])
	assert.False(t, ids["backup_heater_runtime"])
}

func TestResolveDHWInstallation(t *testing.T) {
	catalog, err := DefaultCatalog()
	assert.NoError(t, err)

	ids := enabledIds(ResolveEnabled(catalog, FeatureSet{DHWCylinder: true}))

	assert.True(t, ids["dhw_temp"])
	assert.True(t, ids["dhw_mode"])
	assert.True(t, ids["dhw_setpoint"])
	assert.True(t, ids["dhw_enable"])
	assert.True(t, ids["dhw_boost"])
	assert.True(t, ids["anti_legionella"])
	// unrelated gates stay closed
	assert.False(t, ids["zone2_setpoint"])
	assert.False(t, ids["circulation_pump"])
}

func TestResolveFullInstallation(t *testing.T) {
	catalog, err := DefaultCatalog()
	assert.NoError(t, err)

	fs := FeatureSet{
		Zone2:                 true,
		DHWCylinder:           true,
		ExternalOutdoorSensor: true,
		HumiditySensor:        true,
		BackupHeater:          true,
		FlowMetering:          true,
		CirculationPump:       true,
		AdvancedFeatures:      true,
		DiagnosticMonitoring:  true,
	}
	enabled := ResolveEnabled(catalog, fs)
	assert.Equal(t, catalog.Len(), len(enabled))
}

func TestResolveIsDeterministic(t *testing.T) {
	catalog, err := DefaultCatalog()
	assert.NoError(t, err)

	fs := FeatureSet{Zone2: true, DHWCylinder: true, DiagnosticMonitoring: true}
	first := ResolveEnabled(catalog, fs)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ResolveEnabled(catalog, fs))
	}
}

func TestGroupBlocksMergesAdjacentOnly(t *testing.T) {
	defs := []RegisterDefinition{
		{Id: "a", Address: 0, Class: INPUT_REGISTER, Scale: 1},
		{Id: "b", Address: 1, Class: INPUT_REGISTER, Scale: 1},
		{Id: "c", Address: 3, Class: INPUT_REGISTER, Scale: 1}, // hole at 2 splits the run
		{Id: "d", Address: 10, Class: INPUT_REGISTER, Scale: 1},
		{Id: "e", Address: 11, Class: INPUT_REGISTER, Scale: 1},
	}
	blocks := GroupBlocks(defs)
	assert.Equal(t, []RegisterBlock{
		{Start: 0, Count: 2},
		{Start: 3, Count: 1},
		{Start: 10, Count: 2},
	}, blocks)
}

func TestGroupBlocksCoverOnlyClaimedAddresses(t *testing.T) {
	defs := []RegisterDefinition{
		{Id: "a", Address: 5, Class: INPUT_REGISTER, Scale: 1},
		{Id: "b", Address: 7, Class: INPUT_REGISTER, Scale: 1},
	}
	blocks := GroupBlocks(defs)

	claimed := map[uint16]bool{5: true, 7: true}
	for _, block := range blocks {
		for addr := block.Start; addr < block.Start+block.Count; addr++ {
			assert.True(t, claimed[addr], addr)
		}
	}
}

func TestGroupBlocksIgnoresHoldingAndCoils(t *testing.T) {
	defs := []RegisterDefinition{
		{Id: "a", Address: 2, Class: HOLDING_REGISTER, Scale: 1},
		{Id: "b", Address: 3, Class: COIL, Scale: 1},
	}
	assert.Nil(t, GroupBlocks(defs))
}

func TestGroupBlocksFullCatalog(t *testing.T) {
	catalog, err := DefaultCatalog()
	assert.NoError(t, err)

	fs := FeatureSet{
		Zone2: true, DHWCylinder: true, ExternalOutdoorSensor: true,
		HumiditySensor: true, BackupHeater: true, FlowMetering: true,
		AdvancedFeatures: true, DiagnosticMonitoring: true,
	}
	blocks := GroupBlocks(ResolveEnabled(catalog, fs))
	// inputs 0..28 are contiguous, 32 stands alone past the gap
	assert.Equal(t, []RegisterBlock{
		{Start: 0, Count: 29},
		{Start: 32, Count: 1},
	}, blocks)
}
