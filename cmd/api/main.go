package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adactor "aerona2mqtt/internal/adapter/actor"
	"aerona2mqtt/internal/config"
	"aerona2mqtt/internal/core/actor"
	"aerona2mqtt/internal/core/domain"
	"aerona2mqtt/internal/core/service"
	"aerona2mqtt/internal/server"
	"aerona2mqtt/internal/util/actorutil"
	"aerona2mqtt/pkg/aerona_modbus"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		os.Exit(1)
	}
	safePrintConfig(*cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	defer logger.Sync()

	// init Modbus actor provider
	modbusProv, err := modbusActorProvider(cfg, logger)
	if err != nil {
		panic(err)
	}

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterOfPuppetsActor(*cfg, modbusProv, mqttActorProvider(cfg, logger), logger)
	})
	pid, err := ctx.SpawnNamed(props, "master")
	if err != nil {
		return
	}

	server := server.NewServer(*cfg, ctx, pid)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	ctx.Stop(pid)
	as.Shutdown()
}

func initConfig() (*config.Config, error) {

	// alias PORT => AERONA_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("AERONA_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("aerona")
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	// upgrade settings written by earlier releases
	if migrated, changed := config.MigrateSettings(viper.AllSettings()); changed {
		slog.Info("Migrated config", "version", config.CurrentConfigVersion)
		if err := viper.MergeConfigMap(migrated); err != nil {
			return nil, err
		}
	}

	// the installation template seeds defaults, explicit settings win
	template := viper.GetString("installation.template")
	installation, ok := config.TemplateDefaults(template)
	if !ok {
		return nil, fmt.Errorf("unknown installation template %q", template)
	}
	setInstallationDefaults(installation)
	if config.TemplateUsesDualCurve(template) {
		viper.SetDefault("weather_compensation.dual_curve", true)
		setCurveDefaults("weather_compensation.boost", config.CurveConfig{
			MinOutdoorTemp: -5, MaxOutdoorTemp: 18,
			MinFlowTemp: 30, MaxFlowTemp: 50,
			CurveType: "linear", Steepness: 1,
		})
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	// check and fix base topic
	baseTopic, err := config.CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return nil, errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.BaseTopic = baseTopic

	// check and fix homeassistant discovery topic
	hadBaseTopic, err := config.CheckMQTTTopic(cfg.MQTT.HADiscoveryTopic)
	if err != nil {
		return nil, errors.New("invalid homeassistant discovery topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.HADiscoveryTopic = hadBaseTopic

	problems := cfg.Validate()
	if cfg.WeatherComp.Enabled {
		for _, p := range service.ValidateHeatingCurveConfig(heatingCurve(cfg.WeatherComp.Primary)) {
			problems = append(problems, "primary curve: "+p)
		}
		if cfg.WeatherComp.Boost != nil {
			for _, p := range service.ValidateHeatingCurveConfig(heatingCurve(*cfg.WeatherComp.Boost)) {
				problems = append(problems, "boost curve: "+p)
			}
		}
	}
	if len(problems) > 0 {
		return nil, &config.ConfigurationError{Problems: problems}
	}

	return &cfg, nil
}

func heatingCurve(curve config.CurveConfig) domain.HeatingCurveConfig {
	return domain.HeatingCurveConfig{
		MinOutdoorTemp: curve.MinOutdoorTemp,
		MaxOutdoorTemp: curve.MaxOutdoorTemp,
		MinFlowTemp:    curve.MinFlowTemp,
		MaxFlowTemp:    curve.MaxFlowTemp,
		CurveType:      domain.CurveType(curve.CurveType),
		Steepness:      curve.Steepness,
	}
}

func modbusActorProvider(cfg *config.Config, logger *zap.Logger) (actor.ModbusActorProvider, error) {

	catalog, err := aerona_modbus.DefaultCatalog()
	if err != nil {
		return nil, err
	}

	reader, err := aerona_modbus.CreateAeronaModbusReader(cfg.HeatPumpModbusTcp.Host,
		cfg.HeatPumpModbusTcp.Port, uint8(cfg.HeatPumpModbusTcp.SlaveId),
		time.Duration(cfg.HeatPumpModbusTcp.TimeoutMillis)*time.Millisecond,
		catalog, cfg.FeatureSet(), logger, nil)

	if err != nil {
		return nil, err
	}

	return func() *adactor.ModbusActor {
		return adactor.NewModbusActor(reader, logger)
	}, nil
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func(es *eventstream.EventStream) *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, es, logger)
	}
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("mqtt.ha_discovery_enable", false)
	viper.SetDefault("mqtt.base_topic", "aerona2mqtt")
	viper.SetDefault("mqtt.ha_discovery_topic", "homeassistant")
	viper.SetDefault("heatpump_modbus_tcp.port", 502)
	viper.SetDefault("heatpump_modbus_tcp.slave_id", 1)
	viper.SetDefault("heatpump_modbus_tcp.timeout_millis", 5000)
	viper.SetDefault("monitor.poll_interval_millis", 5000)
	viper.SetDefault("installation.template", config.TemplateSingleZoneBasic)
	viper.SetDefault("weather_compensation.enabled", true)
	viper.SetDefault("weather_compensation.dual_curve", false)
	viper.SetDefault("weather_compensation.update_interval_millis", 60000)
	setCurveDefaults("weather_compensation.primary", config.CurveConfig{
		MinOutdoorTemp: -5, MaxOutdoorTemp: 18,
		MinFlowTemp: 25, MaxFlowTemp: 45,
		CurveType: "linear", Steepness: 1,
	})
	viper.SetDefault("port", 8080)
}

func setInstallationDefaults(inst config.InstallationConfig) {
	viper.SetDefault("installation.dhw_cylinder", inst.DHWCylinder)
	viper.SetDefault("installation.backup_heater", inst.BackupHeater)
	viper.SetDefault("installation.external_outdoor_sensor", inst.ExternalOutdoorSensor)
	viper.SetDefault("installation.humidity_sensor", inst.HumiditySensor)
	viper.SetDefault("installation.flow_metering", inst.FlowMetering)
	viper.SetDefault("installation.circulation_pump", inst.CirculationPump)
	viper.SetDefault("installation.advanced_features", inst.AdvancedFeatures)
	viper.SetDefault("installation.diagnostic_monitoring", inst.DiagnosticMonitoring)
	viper.SetDefault("installation.flow_rate_method", inst.FlowRateMethod)
	viper.SetDefault("installation.flow_rate", inst.FlowRate)
	setZoneDefaults("installation.zone_1", inst.Zone1)
	setZoneDefaults("installation.zone_2", inst.Zone2)
}

func setZoneDefaults(prefix string, zone config.ZoneConfig) {
	viper.SetDefault(prefix+".enabled", zone.Enabled)
	viper.SetDefault(prefix+".name", zone.Name)
	viper.SetDefault(prefix+".compensation_factor", zone.CompensationFactor)
	viper.SetDefault(prefix+".temperature_offset", zone.TemperatureOffset)
	viper.SetDefault(prefix+".min_flow_temp", zone.MinFlowTemp)
	viper.SetDefault(prefix+".max_flow_temp", zone.MaxFlowTemp)
}

func setCurveDefaults(prefix string, curve config.CurveConfig) {
	viper.SetDefault(prefix+".min_outdoor_temp", curve.MinOutdoorTemp)
	viper.SetDefault(prefix+".max_outdoor_temp", curve.MaxOutdoorTemp)
	viper.SetDefault(prefix+".min_flow_temp", curve.MinFlowTemp)
	viper.SetDefault(prefix+".max_flow_temp", curve.MaxFlowTemp)
	viper.SetDefault(prefix+".curve_type", curve.CurveType)
	viper.SetDefault(prefix+".steepness", curve.Steepness)
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	slog.Info("Using", "config", cfg)
}
