package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	inst, _ := TemplateDefaults(TemplateSingleZoneBasic)
	return Config{
		HeatPumpModbusTcp: HeatPumpModbusTCPConfig{
			Host:          "192.168.1.50",
			Port:          502,
			SlaveId:       1,
			TimeoutMillis: 5000,
		},
		MQTT: MQTTConfig{
			Host:      "localhost",
			Port:      1883,
			BaseTopic: "aerona2mqtt",
		},
		Installation: inst,
		WeatherComp: WeatherCompConfig{
			Enabled:              true,
			UpdateIntervalMillis: 60000,
			Primary: CurveConfig{
				MinOutdoorTemp: -5, MaxOutdoorTemp: 18,
				MinFlowTemp: 25, MaxFlowTemp: 45,
				CurveType: "linear", Steepness: 1,
			},
		},
		MonitorConfig: MonitorConfig{PollIntervalMillis: 30000},
		Port:          8080,
		ConfigVersion: CurrentConfigVersion,
	}
}

func TestValidConfigHasNoProblems(t *testing.T) {
	cfg := validConfig()
	assert.Empty(t, cfg.Validate())
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.HeatPumpModbusTcp.Host = ""
	cfg.HeatPumpModbusTcp.SlaveId = 300
	cfg.MonitorConfig.PollIntervalMillis = 10

	problems := cfg.Validate()
	assert.Len(t, problems, 3)
}

func TestValidateZoneBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Installation.Zone2.Enabled = true
	cfg.Installation.Zone2.CompensationFactor = 5
	cfg.Installation.Zone2.MinFlowTemp = 60
	cfg.Installation.Zone2.MaxFlowTemp = 40

	problems := cfg.Validate()
	assert.Len(t, problems, 2)
}

func TestDualCurveRequiresBoostCurve(t *testing.T) {
	cfg := validConfig()
	cfg.WeatherComp.DualCurve = true
	cfg.WeatherComp.Boost = nil

	assert.NotEmpty(t, cfg.Validate())
}

func TestFeatureSetFromConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Installation.DHWCylinder = true
	cfg.Installation.Zone2.Enabled = true

	fs := cfg.FeatureSet()
	assert.True(t, fs.DHWCylinder)
	assert.True(t, fs.Zone2)
	assert.False(t, fs.BackupHeater)
	assert.False(t, fs.DiagnosticMonitoring)
}

func TestTemplateDefaults(t *testing.T) {
	basic, ok := TemplateDefaults(TemplateSingleZoneBasic)
	assert.True(t, ok)
	assert.True(t, basic.Zone1.Enabled)
	assert.False(t, basic.Zone2.Enabled)
	assert.False(t, basic.DHWCylinder)

	dual, ok := TemplateDefaults(TemplateDualZoneSystem)
	assert.True(t, ok)
	assert.True(t, dual.Zone2.Enabled)
	assert.True(t, dual.DHWCylinder)
	assert.True(t, TemplateUsesDualCurve(TemplateDualZoneSystem))

	_, ok = TemplateDefaults("mansion")
	assert.False(t, ok)
}

func TestMigrateV1FillsDefaults(t *testing.T) {
	settings := map[string]any{
		"heatpump_modbus_tcp": map[string]any{
			"host": "10.0.0.5", "port": 502, "slave_id": 1,
		},
		"installation": map[string]any{
			"dhw_cylinder": true,
		},
	}

	migrated, changed := MigrateSettings(settings)
	assert.True(t, changed)
	assert.Equal(t, CurrentConfigVersion, migrated["config_version"])

	installation := migrated["installation"].(map[string]any)
	assert.Equal(t, TemplateSingleZoneDHW, installation["template"])
	// present keys are never overwritten
	assert.Equal(t, true, installation["dhw_cylinder"])
	assert.Equal(t, false, installation["backup_heater"])
	assert.Equal(t, "fixed_rate", installation["flow_rate_method"])

	zone1 := installation["zone_1"].(map[string]any)
	assert.Equal(t, true, zone1["enabled"])
	zone2 := installation["zone_2"].(map[string]any)
	assert.Equal(t, false, zone2["enabled"])

	wc := migrated["weather_compensation"].(map[string]any)
	assert.Equal(t, true, wc["enabled"])
}

func TestMigratePreservesUserValues(t *testing.T) {
	settings := map[string]any{
		"installation": map[string]any{
			"template": TemplateReplacement,
			"zone_1": map[string]any{
				"name": "Radiators",
			},
		},
	}

	migrated, changed := MigrateSettings(settings)
	assert.True(t, changed)

	installation := migrated["installation"].(map[string]any)
	assert.Equal(t, TemplateReplacement, installation["template"])
	zone1 := installation["zone_1"].(map[string]any)
	assert.Equal(t, "Radiators", zone1["name"])
	// missing zone keys still filled
	assert.Equal(t, 1.0, zone1["compensation_factor"])
}

func TestMigrateIsIdempotent(t *testing.T) {
	settings := map[string]any{}
	migrated, changed := MigrateSettings(settings)
	assert.True(t, changed)

	_, changedAgain := MigrateSettings(migrated)
	assert.False(t, changedAgain)
}

func TestCheckMQTTTopic(t *testing.T) {
	topic, err := CheckMQTTTopic("Aerona2MQTT")
	assert.NoError(t, err)
	assert.Equal(t, "aerona2mqtt", topic)

	_, err = CheckMQTTTopic("bad/topic")
	assert.Error(t, err)
}
