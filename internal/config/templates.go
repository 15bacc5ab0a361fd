package config

// Installation templates mirror the common Aerona3 system layouts an
// installer starts from. A template only seeds defaults, every field can
// still be overridden.

const (
	TemplateSingleZoneBasic = "single_zone_basic"
	TemplateSingleZoneDHW   = "single_zone_dhw"
	TemplateDualZoneSystem  = "dual_zone_system"
	TemplateReplacement     = "replacement_system"
)

func defaultZone1() ZoneConfig {
	return ZoneConfig{
		Enabled:            true,
		Name:               "Main Zone",
		CompensationFactor: 1.0,
		TemperatureOffset:  0,
		MinFlowTemp:        20,
		MaxFlowTemp:        60,
	}
}

func defaultZone2() ZoneConfig {
	return ZoneConfig{
		Enabled:            false,
		Name:               "Second Zone",
		CompensationFactor: 0.9,
		TemperatureOffset:  0,
		MinFlowTemp:        20,
		MaxFlowTemp:        60,
	}
}

// TemplateDefaults returns the installation profile a template stands for.
// The second result is false for unknown template names.
func TemplateDefaults(template string) (InstallationConfig, bool) {
	base := InstallationConfig{
		Template:       template,
		Zone1:          defaultZone1(),
		Zone2:          defaultZone2(),
		FlowRateMethod: "fixed_rate",
		FlowRate:       20,
	}
	switch template {
	case TemplateSingleZoneBasic:
		return base, true
	case TemplateSingleZoneDHW:
		base.DHWCylinder = true
		return base, true
	case TemplateDualZoneSystem:
		base.Zone2.Enabled = true
		base.DHWCylinder = true
		return base, true
	case TemplateReplacement:
		// boiler swap with the old radiator circuit kept, runs hotter
		base.DHWCylinder = true
		base.BackupHeater = true
		base.Zone1.MaxFlowTemp = 60
		return base, true
	}
	return InstallationConfig{}, false
}

// TemplateUsesDualCurve reports whether a template defaults to dual-curve
// weather compensation.
func TemplateUsesDualCurve(template string) bool {
	return template == TemplateDualZoneSystem
}
