package config

// Settings migration for config files written by earlier releases.
// Version 1 predates installation templates, zones and weather
// compensation. Migration only fills missing keys, a value the user set is
// never overwritten.

func settingsVersion(settings map[string]any) int {
	if v, ok := settings["config_version"]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return 1
}

// MigrateSettings upgrades a raw settings map to the current version.
// Returns the (possibly same) map and whether anything changed.
func MigrateSettings(settings map[string]any) (map[string]any, bool) {
	if settingsVersion(settings) >= CurrentConfigVersion {
		return settings, false
	}
	return migrateV1toV2(settings), true
}

func migrateV1toV2(settings map[string]any) map[string]any {
	installation := subMap(settings, "installation")

	dhw := boolAt(installation, "dhw_cylinder")
	if _, ok := installation["template"]; !ok {
		if dhw {
			installation["template"] = TemplateSingleZoneDHW
		} else {
			installation["template"] = TemplateSingleZoneBasic
		}
	}
	setDefault(installation, "dhw_cylinder", false)
	setDefault(installation, "backup_heater", false)
	setDefault(installation, "external_outdoor_sensor", false)
	setDefault(installation, "humidity_sensor", false)
	setDefault(installation, "flow_metering", false)
	setDefault(installation, "circulation_pump", false)
	setDefault(installation, "advanced_features", false)
	setDefault(installation, "diagnostic_monitoring", false)
	setDefault(installation, "flow_rate_method", "fixed_rate")
	setDefault(installation, "flow_rate", 20.0)

	zone1 := subMap(installation, "zone_1")
	applyZoneDefaults(zone1, defaultZone1())
	zone2 := subMap(installation, "zone_2")
	applyZoneDefaults(zone2, defaultZone2())

	wc := subMap(settings, "weather_compensation")
	setDefault(wc, "enabled", true)
	setDefault(wc, "dual_curve", false)
	setDefault(wc, "update_interval_millis", 60000)

	settings["config_version"] = CurrentConfigVersion
	return settings
}

func applyZoneDefaults(zone map[string]any, defaults ZoneConfig) {
	setDefault(zone, "enabled", defaults.Enabled)
	setDefault(zone, "name", defaults.Name)
	setDefault(zone, "compensation_factor", defaults.CompensationFactor)
	setDefault(zone, "temperature_offset", defaults.TemperatureOffset)
	setDefault(zone, "min_flow_temp", defaults.MinFlowTemp)
	setDefault(zone, "max_flow_temp", defaults.MaxFlowTemp)
}

func subMap(settings map[string]any, key string) map[string]any {
	if m, ok := settings[key].(map[string]any); ok {
		return m
	}
	m := map[string]any{}
	settings[key] = m
	return m
}

func setDefault(m map[string]any, key string, value any) {
	if _, ok := m[key]; !ok {
		m[key] = value
	}
}

func boolAt(m map[string]any, key string) bool {
	v, ok := m[key].(bool)
	return ok && v
}
