package util

import (
	"aerona2mqtt/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	installation, _ := config.TemplateDefaults(config.TemplateSingleZoneBasic)
	return config.Config{
		LogLevel: zap.DebugLevel,
		HeatPumpModbusTcp: config.HeatPumpModbusTCPConfig{
			Host:          "-.-.-.-",
			Port:          502,
			SlaveId:       1,
			TimeoutMillis: 5000,
		},
		MQTT: config.MQTTConfig{
			Host:      "localhost",
			Port:      1883,
			BaseTopic: "aerona2mqtt",
		},
		Installation: installation,
		WeatherComp: config.WeatherCompConfig{
			Enabled:              true,
			UpdateIntervalMillis: 60000,
			Primary: config.CurveConfig{
				MinOutdoorTemp: -5, MaxOutdoorTemp: 18,
				MinFlowTemp: 25, MaxFlowTemp: 45,
				CurveType: "linear", Steepness: 1,
			},
		},
		MonitorConfig: config.MonitorConfig{
			PollIntervalMillis: 5000,
		},
		Port:          8080,
		ConfigVersion: config.CurrentConfigVersion,
	}
}
