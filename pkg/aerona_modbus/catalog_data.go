package aerona_modbus

// Register map for the Grant Aerona3 (Chofu) R32 range. Addresses and
// scale factors follow the latest unit generation; older units report
// whole-degree temperatures on some inputs but accept the same map.

func bound(v float64) *float64 {
	return &v
}

// DefaultCatalog builds the full Aerona3 register catalog.
func DefaultCatalog() (*Catalog, error) {
	return NewCatalog(defaultRegisterDefs())
}

func defaultRegisterDefs() []RegisterDefinition {
	var defs []RegisterDefinition
	defs = append(defs, inputRegisterDefs()...)
	defs = append(defs, holdingRegisterDefs()...)
	defs = append(defs, coilDefs()...)
	return defs
}

func inputRegisterDefs() []RegisterDefinition {
	return []RegisterDefinition{
		{
			Id: "return_temp", Address: 0, Class: INPUT_REGISTER, Category: CategoryBasic,
			Name: "Return Water Temperature", Unit: "°C", Scale: 1, DeviceClass: "temperature", Signed: true,
		},
		{
			Id: "compressor_frequency", Address: 1, Class: INPUT_REGISTER, Category: CategoryBasic,
			Name: "Compressor Frequency", Unit: "Hz", Scale: 1, DeviceClass: "frequency",
		},
		{
			Id: "discharge_temp", Address: 2, Class: INPUT_REGISTER, Category: CategoryBasic,
			Name: "Discharge Temperature", Unit: "°C", Scale: 1, DeviceClass: "temperature", Signed: true,
		},
		{
			Id: "power_consumption", Address: 3, Class: INPUT_REGISTER, Category: CategoryBasic,
			Name: "Current Power Consumption", Unit: "W", Scale: 100, DeviceClass: "power",
		},
		{
			Id: "fan_speed", Address: 4, Class: INPUT_REGISTER, Category: CategoryBasic,
			Name: "Fan Speed", Unit: "rpm", Scale: 10,
		},
		{
			Id: "defrost_temp", Address: 5, Class: INPUT_REGISTER, Category: CategoryBasic,
			Name: "Defrost Temperature", Unit: "°C", Scale: 1, DeviceClass: "temperature", Signed: true,
		},
		{
			Id: "outdoor_temp", Address: 6, Class: INPUT_REGISTER, Category: CategoryBasic,
			Name: "Outdoor Air Temperature", Unit: "°C", Scale: 1, DeviceClass: "temperature", Signed: true,
		},
		{
			Id: "pump_speed", Address: 7, Class: INPUT_REGISTER, Category: CategoryBasic,
			Name: "Water Pump Speed", Unit: "rpm", Scale: 100,
		},
		{
			Id: "suction_temp", Address: 8, Class: INPUT_REGISTER, Category: CategoryBasic,
			Name: "Suction Temperature", Unit: "°C", Scale: 1, DeviceClass: "temperature", Signed: true,
		},
		{
			Id: "flow_temp", Address: 9, Class: INPUT_REGISTER, Category: CategoryBasic,
			Name: "Outgoing Water Temperature", Unit: "°C", Scale: 1, DeviceClass: "temperature", Signed: true,
		},
		{
			Id: "operating_mode", Address: 10, Class: INPUT_REGISTER, Category: CategoryBasic,
			Name: "Operating Mode", Scale: 1,
			EnumMapping: map[uint16]string{
				0: "Off", 1: "Heating", 2: "Cooling", 3: "DHW",
			},
		},
		{
			Id: "zone1_setpoint", Address: 11, Class: INPUT_REGISTER, Category: CategoryZones,
			Name: "Zone 1 Set Temperature", Unit: "°C", Scale: 0.1, DeviceClass: "temperature", Signed: true,
		},
		{
			Id: "zone2_setpoint", Address: 12, Class: INPUT_REGISTER, Category: CategoryZones,
			Name: "Zone 2 Set Temperature", Unit: "°C", Scale: 0.1, DeviceClass: "temperature", Signed: true,
			RequiresFeature: FeatureZone2, HasFeatureGate: true,
		},
		{
			Id: "dhw_mode", Address: 13, Class: INPUT_REGISTER, Category: CategoryDHW,
			Name: "DHW Operating Mode", Scale: 1,
			EnumMapping: map[uint16]string{
				0: "Disabled", 1: "Comfort", 2: "Economy", 3: "Force",
			},
			RequiresFeature: FeatureDHWCylinder, HasFeatureGate: true,
		},
		{
			Id: "legionella_day", Address: 14, Class: INPUT_REGISTER, Category: CategoryDHW,
			Name: "Day for Legionella Cycle", Scale: 1,
			EnumMapping: map[uint16]string{
				0: "Monday", 1: "Tuesday", 2: "Wednesday", 3: "Thursday",
				4: "Friday", 5: "Saturday", 6: "Sunday",
			},
			RequiresFeature: FeatureDHWCylinder, HasFeatureGate: true,
		},
		{
			Id: "legionella_time", Address: 15, Class: INPUT_REGISTER, Category: CategoryDHW,
			Name: "Legionella Cycle Start Time", Scale: 1,
			RequiresFeature: FeatureDHWCylinder, HasFeatureGate: true,
		},
		{
			Id: "dhw_temp", Address: 16, Class: INPUT_REGISTER, Category: CategoryDHW,
			Name: "DHW Tank Temperature", Unit: "°C", Scale: 0.1, DeviceClass: "temperature", Signed: true,
			RequiresFeature: FeatureDHWCylinder, HasFeatureGate: true,
		},
		{
			Id: "external_outdoor_temp", Address: 17, Class: INPUT_REGISTER, Category: CategoryExternal,
			Name: "External Outdoor Temperature", Unit: "°C", Scale: 0.1, DeviceClass: "temperature", Signed: true,
			RequiresFeature: FeatureExternalOutdoorSensor, HasFeatureGate: true,
		},
		{
			Id: "buffer_temp", Address: 18, Class: INPUT_REGISTER, Category: CategoryBasic,
			Name: "Buffer Tank Temperature", Unit: "°C", Scale: 0.1, DeviceClass: "temperature", Signed: true,
		},
		{
			Id: "mix_water_temp", Address: 19, Class: INPUT_REGISTER, Category: CategoryZones,
			Name: "Mix Water Temperature", Unit: "°C", Scale: 0.1, DeviceClass: "temperature", Signed: true,
		},
		{
			Id: "humidity", Address: 20, Class: INPUT_REGISTER, Category: CategoryExternal,
			Name: "Humidity Sensor", Unit: "%", Scale: 1, DeviceClass: "humidity",
			RequiresFeature: FeatureHumiditySensor, HasFeatureGate: true,
		},
		{
			Id: "error_code_1", Address: 21, Class: INPUT_REGISTER, Category: CategoryDiagnostic,
			Name: "Error Code 1", Scale: 1,
		},
		{
			Id: "error_code_2", Address: 22, Class: INPUT_REGISTER, Category: CategoryDiagnostic,
			Name: "Error Code 2", Scale: 1,
		},
		{
			Id: "system_runtime", Address: 23, Class: INPUT_REGISTER, Category: CategoryDiagnostic,
			Name: "System Runtime Hours", Unit: "h", Scale: 1,
		},
		{
			Id: "compressor_runtime", Address: 24, Class: INPUT_REGISTER, Category: CategoryDiagnostic,
			Name: "Compressor Runtime Hours", Unit: "h", Scale: 1,
		},
		{
			Id: "defrost_count", Address: 25, Class: INPUT_REGISTER, Category: CategoryDiagnostic,
			Name: "Defrost Cycle Count", Scale: 1,
		},
		{
			Id: "backup_heater_runtime", Address: 26, Class: INPUT_REGISTER, Category: CategoryExternal,
			Name: "Backup Heater Runtime", Unit: "h", Scale: 1,
			RequiresFeature: FeatureBackupHeater, HasFeatureGate: true,
		},
		{
			Id: "flow_rate", Address: 27, Class: INPUT_REGISTER, Category: CategoryAdvanced,
			Name: "Flow Rate", Unit: "L/min", Scale: 0.1,
			RequiresFeature: FeatureFlowMetering, HasFeatureGate: true,
		},
		{
			Id: "dhw_flow_rate", Address: 28, Class: INPUT_REGISTER, Category: CategoryDHW,
			Name: "DHW Flow Rate", Unit: "L/min", Scale: 0.1,
			RequiresFeature: FeatureDHWCylinder, HasFeatureGate: true,
		},
		{
			Id: "plate_hx_temp", Address: 32, Class: INPUT_REGISTER, Category: CategoryAdvanced,
			Name: "Plate Heat Exchanger Temperature", Unit: "°C", Scale: 0.1, DeviceClass: "temperature", Signed: true,
		},
	}
}

func holdingRegisterDefs() []RegisterDefinition {
	return []RegisterDefinition{
		{
			Id: "zone1_fixed_flow", Address: 2, Class: HOLDING_REGISTER, Category: CategoryZones,
			Name: "Zone 1 Fixed Flow Temperature", Unit: "°C", Scale: 0.1, DeviceClass: "temperature",
			MinValue: bound(23), MaxValue: bound(60),
		},
		{
			Id: "zone1_max_flow", Address: 3, Class: HOLDING_REGISTER, Category: CategoryZones,
			Name: "Zone 1 Max Flow Temperature", Unit: "°C", Scale: 0.1, DeviceClass: "temperature",
			MinValue: bound(23), MaxValue: bound(60),
		},
		{
			Id: "zone1_min_flow", Address: 4, Class: HOLDING_REGISTER, Category: CategoryZones,
			Name: "Zone 1 Min Flow Temperature", Unit: "°C", Scale: 0.1, DeviceClass: "temperature",
			MinValue: bound(23), MaxValue: bound(60),
		},
		{
			Id: "zone2_fixed_flow", Address: 7, Class: HOLDING_REGISTER, Category: CategoryZones,
			Name: "Zone 2 Fixed Flow Temperature", Unit: "°C", Scale: 0.1, DeviceClass: "temperature",
			MinValue: bound(23), MaxValue: bound(60),
			RequiresFeature: FeatureZone2, HasFeatureGate: true,
		},
		{
			Id: "zone2_max_flow", Address: 8, Class: HOLDING_REGISTER, Category: CategoryZones,
			Name: "Zone 2 Max Flow Temperature", Unit: "°C", Scale: 0.1, DeviceClass: "temperature",
			MinValue: bound(23), MaxValue: bound(60),
			RequiresFeature: FeatureZone2, HasFeatureGate: true,
		},
		{
			Id: "zone2_min_flow", Address: 9, Class: HOLDING_REGISTER, Category: CategoryZones,
			Name: "Zone 2 Min Flow Temperature", Unit: "°C", Scale: 0.1, DeviceClass: "temperature",
			MinValue: bound(23), MaxValue: bound(60),
			RequiresFeature: FeatureZone2, HasFeatureGate: true,
		},
		{
			Id: "dhw_setpoint", Address: 26, Class: HOLDING_REGISTER, Category: CategoryDHW,
			Name: "DHW Target Temperature", Unit: "°C", Scale: 0.1, DeviceClass: "temperature",
			MinValue: bound(40), MaxValue: bound(65),
			RequiresFeature: FeatureDHWCylinder, HasFeatureGate: true,
		},
		{
			Id: "dhw_hysteresis", Address: 27, Class: HOLDING_REGISTER, Category: CategoryDHW,
			Name: "DHW Hysteresis", Unit: "°C", Scale: 0.1, DeviceClass: "temperature",
			MinValue: bound(2), MaxValue: bound(10),
			RequiresFeature: FeatureDHWCylinder, HasFeatureGate: true,
		},
		{
			Id: "wc_min_outdoor", Address: 40, Class: HOLDING_REGISTER, Category: CategoryAdvanced,
			Name: "Weather Comp Min Outdoor Temp", Unit: "°C", Scale: 0.1, DeviceClass: "temperature", Signed: true,
			MinValue: bound(-20), MaxValue: bound(5),
		},
		{
			Id: "wc_max_outdoor", Address: 41, Class: HOLDING_REGISTER, Category: CategoryAdvanced,
			Name: "Weather Comp Max Outdoor Temp", Unit: "°C", Scale: 0.1, DeviceClass: "temperature",
			MinValue: bound(15), MaxValue: bound(25),
		},
		{
			Id: "backup_heater_setpoint", Address: 50, Class: HOLDING_REGISTER, Category: CategoryExternal,
			Name: "Backup Heater Activation Temperature", Unit: "°C", Scale: 0.1, DeviceClass: "temperature", Signed: true,
			MinValue: bound(-15), MaxValue: bound(5),
			RequiresFeature: FeatureBackupHeater, HasFeatureGate: true,
		},
	}
}

func coilDefs() []RegisterDefinition {
	return []RegisterDefinition{
		{
			Id: "zone1_weather_comp", Address: 2, Class: COIL, Category: CategoryZones,
			Name: "Zone 1 Weather Compensation", Scale: 1,
		},
		{
			Id: "zone2_weather_comp", Address: 3, Class: COIL, Category: CategoryZones,
			Name: "Zone 2 Weather Compensation", Scale: 1,
			RequiresFeature: FeatureZone2, HasFeatureGate: true,
		},
		{
			Id: "dhw_enable", Address: 6, Class: COIL, Category: CategoryDHW,
			Name: "DHW Enable", Scale: 1,
			RequiresFeature: FeatureDHWCylinder, HasFeatureGate: true,
		},
		{
			Id: "control_mode", Address: 7, Class: COIL, Category: CategoryBasic,
			Name: "Control Mode", Scale: 1,
		},
		{
			Id: "frost_protect_room", Address: 8, Class: COIL, Category: CategoryBasic,
			Name: "Frost Protection Room", Scale: 1,
		},
		{
			Id: "frost_protect_outdoor", Address: 9, Class: COIL, Category: CategoryBasic,
			Name: "Frost Protection Outdoor", Scale: 1,
		},
		{
			Id: "frost_protect_water", Address: 10, Class: COIL, Category: CategoryBasic,
			Name: "Frost Protection Water", Scale: 1,
		},
		// Earlier register maps listed the anti-legionella coil at address 6,
		// clashing with dhw_enable. The unit exposes it at 11.
		{
			Id: "anti_legionella", Address: 11, Class: COIL, Category: CategoryDHW,
			Name: "Anti-Legionella Function", Scale: 1,
			RequiresFeature: FeatureDHWCylinder, HasFeatureGate: true,
		},
		{
			Id: "backup_heater_enable", Address: 15, Class: COIL, Category: CategoryExternal,
			Name: "Backup Heater Enable", Scale: 1,
			RequiresFeature: FeatureBackupHeater, HasFeatureGate: true,
		},
		{
			Id: "circulation_pump", Address: 16, Class: COIL, Category: CategoryExternal,
			Name: "Circulation Pump", Scale: 1,
			RequiresFeature: FeatureCirculationPump, HasFeatureGate: true,
		},
		{
			Id: "dhw_boost", Address: 20, Class: COIL, Category: CategoryDHW,
			Name: "DHW Boost Mode", Scale: 1,
			RequiresFeature: FeatureDHWCylinder, HasFeatureGate: true,
		},
		{
			Id: "dhw_remote_relay", Address: 21, Class: COIL, Category: CategoryDHW,
			Name: "DHW Remote Relay", Scale: 1,
			RequiresFeature: FeatureDHWCylinder, HasFeatureGate: true,
		},
	}
}
