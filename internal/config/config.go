package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"aerona2mqtt/pkg/aerona_modbus"

	"go.uber.org/zap/zapcore"
)

const CurrentConfigVersion = 2

type Config struct {
	LogLevel          zapcore.Level
	HeatPumpModbusTcp HeatPumpModbusTCPConfig `mapstructure:"heatpump_modbus_tcp"`
	MQTT              MQTTConfig              `mapstructure:"mqtt"`

	Installation  InstallationConfig `mapstructure:"installation"`
	WeatherComp   WeatherCompConfig  `mapstructure:"weather_compensation"`
	MonitorConfig MonitorConfig      `mapstructure:"monitor"`
	Port          uint               `mapstructure:"port"`
	HttpLog       bool               `mapstructure:"http_log"`
	ConfigVersion int                `mapstructure:"config_version"`
}

type HeatPumpModbusTCPConfig struct {
	Host          string
	Port          uint
	SlaveId       uint   `mapstructure:"slave_id"`
	TimeoutMillis uint32 `mapstructure:"timeout_millis"`
}

type MonitorConfig struct {
	PollIntervalMillis uint32 `mapstructure:"poll_interval_millis"`
}

type InstallationConfig struct {
	Template              string     `mapstructure:"template"`
	Zone1                 ZoneConfig `mapstructure:"zone_1"`
	Zone2                 ZoneConfig `mapstructure:"zone_2"`
	DHWCylinder           bool       `mapstructure:"dhw_cylinder"`
	BackupHeater          bool       `mapstructure:"backup_heater"`
	ExternalOutdoorSensor bool       `mapstructure:"external_outdoor_sensor"`
	HumiditySensor        bool       `mapstructure:"humidity_sensor"`
	FlowMetering          bool       `mapstructure:"flow_metering"`
	CirculationPump       bool       `mapstructure:"circulation_pump"`
	AdvancedFeatures      bool       `mapstructure:"advanced_features"`
	DiagnosticMonitoring  bool       `mapstructure:"diagnostic_monitoring"`
	FlowRateMethod        string     `mapstructure:"flow_rate_method"`
	FlowRate              float64    `mapstructure:"flow_rate"`
}

type ZoneConfig struct {
	Enabled            bool    `mapstructure:"enabled"`
	Name               string  `mapstructure:"name"`
	CompensationFactor float64 `mapstructure:"compensation_factor"`
	TemperatureOffset  float64 `mapstructure:"temperature_offset"`
	MinFlowTemp        float64 `mapstructure:"min_flow_temp"`
	MaxFlowTemp        float64 `mapstructure:"max_flow_temp"`
}

type WeatherCompConfig struct {
	Enabled              bool         `mapstructure:"enabled"`
	DualCurve            bool         `mapstructure:"dual_curve"`
	UpdateIntervalMillis uint32       `mapstructure:"update_interval_millis"`
	Primary              CurveConfig  `mapstructure:"primary"`
	Boost                *CurveConfig `mapstructure:"boost"`
}

type CurveConfig struct {
	MinOutdoorTemp float64 `mapstructure:"min_outdoor_temp"`
	MaxOutdoorTemp float64 `mapstructure:"max_outdoor_temp"`
	MinFlowTemp    float64 `mapstructure:"min_flow_temp"`
	MaxFlowTemp    float64 `mapstructure:"max_flow_temp"`
	CurveType      string  `mapstructure:"curve_type"`
	Steepness      float64 `mapstructure:"steepness"`
}

type MQTTConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

// FeatureSet resolves the typed installation profile used by the register
// layer. This is the single place where config flags become features.
func (c *Config) FeatureSet() aerona_modbus.FeatureSet {
	inst := c.Installation
	return aerona_modbus.FeatureSet{
		Zone2:                 inst.Zone2.Enabled,
		DHWCylinder:           inst.DHWCylinder,
		ExternalOutdoorSensor: inst.ExternalOutdoorSensor,
		HumiditySensor:        inst.HumiditySensor,
		BackupHeater:          inst.BackupHeater,
		FlowMetering:          inst.FlowMetering,
		CirculationPump:       inst.CirculationPump,
		AdvancedFeatures:      inst.AdvancedFeatures,
		DiagnosticMonitoring:  inst.DiagnosticMonitoring,
	}
}

// ConfigurationError carries every validation problem found at startup.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", strings.Join(e.Problems, "; "))
}

// Validate collects every non-curve configuration problem. Curve bounds
// are the compensation engine's business and are checked there.
func (c *Config) Validate() []string {
	var problems []string

	if c.HeatPumpModbusTcp.Host == "" {
		problems = append(problems, "heat pump host is required")
	}
	if c.HeatPumpModbusTcp.Port == 0 || c.HeatPumpModbusTcp.Port > 65535 {
		problems = append(problems, fmt.Sprintf("heat pump port %d outside [1, 65535]", c.HeatPumpModbusTcp.Port))
	}
	if c.HeatPumpModbusTcp.SlaveId == 0 || c.HeatPumpModbusTcp.SlaveId > 247 {
		problems = append(problems, fmt.Sprintf("slave id %d outside [1, 247]", c.HeatPumpModbusTcp.SlaveId))
	}
	if c.MonitorConfig.PollIntervalMillis < 1000 {
		problems = append(problems, "poll interval must be at least 1000 ms")
	}
	if c.WeatherComp.Enabled && c.WeatherComp.UpdateIntervalMillis < 10000 {
		problems = append(problems, "weather compensation update interval must be at least 10000 ms")
	}
	if !c.Installation.Zone1.Enabled {
		problems = append(problems, "zone 1 must be enabled")
	}
	problems = append(problems, validateZone("zone 1", c.Installation.Zone1)...)
	if c.Installation.Zone2.Enabled {
		problems = append(problems, validateZone("zone 2", c.Installation.Zone2)...)
	}
	switch c.Installation.FlowRateMethod {
	case "", "fixed_rate", "measured":
	default:
		problems = append(problems, fmt.Sprintf("unknown flow rate method %q", c.Installation.FlowRateMethod))
	}
	if c.WeatherComp.DualCurve && c.WeatherComp.Boost == nil {
		problems = append(problems, "dual curve compensation requires a boost curve")
	}
	return problems
}

func validateZone(name string, zone ZoneConfig) []string {
	var problems []string
	if zone.CompensationFactor < 0.1 || zone.CompensationFactor > 2 {
		problems = append(problems, fmt.Sprintf("%s compensation factor %.2f outside [0.1, 2.0]", name, zone.CompensationFactor))
	}
	if zone.TemperatureOffset < -10 || zone.TemperatureOffset > 10 {
		problems = append(problems, fmt.Sprintf("%s temperature offset %.1f outside [-10, 10]", name, zone.TemperatureOffset))
	}
	if zone.MinFlowTemp >= zone.MaxFlowTemp {
		problems = append(problems, fmt.Sprintf("%s min flow temp %.1f must be below max flow temp %.1f", name, zone.MinFlowTemp, zone.MaxFlowTemp))
	}
	return problems
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}
