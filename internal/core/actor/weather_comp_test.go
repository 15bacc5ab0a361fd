package actor

import (
	"testing"
	"time"

	adactor "aerona2mqtt/internal/adapter/actor"
	"aerona2mqtt/internal/config"
	"aerona2mqtt/internal/core/domain"
	"aerona2mqtt/internal/core/events"
	"aerona2mqtt/internal/util"
	"aerona2mqtt/pkg/aerona_modbus"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func spawnTestWeatherComp(t *testing.T, mutate func(*config.Config)) (*actor.ActorSystem, *actor.PID, *aerona_modbus.TestHeatPumpModbusReader, *eventstream.EventStream) {
	cfg := util.LoadTestConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	reader, err := aerona_modbus.CreateTestHeatPumpModbusReader(cfg.FeatureSet())
	if err != nil {
		t.Fatal(err)
	}

	logger := zap.Must(zap.NewDevelopment())
	as := actor.NewActorSystem()
	context := as.Root

	modbusProps := actor.PropsFromProducer(func() actor.Actor { return adactor.NewModbusActor(reader, logger) })
	modbusPID := context.Spawn(modbusProps)

	es := &eventstream.EventStream{}
	wcProps := actor.PropsFromProducer(func() actor.Actor {
		return NewWeatherCompActor(&cfg, modbusPID, es, logger)
	})
	wcPID := context.Spawn(wcProps)

	time.Sleep(500 * time.Millisecond)

	return as, wcPID, reader, es
}

func TestWeatherCompWritesZoneFlowOnRecalculate(t *testing.T) {

	as, pid, reader, _ := spawnTestWeatherComp(t, nil)
	context := as.Root

	_, err := context.RequestFuture(pid, domain.WeatherCompRecalculateRequest{}, 5*time.Second).Result()
	assert.NoError(t, err)

	time.Sleep(2 * time.Second)

	// outdoor 7.0 on a (-5, 18) -> (45, 25) linear curve gives 34.6
	writes := reader.HoldingWrites["zone1_fixed_flow"]
	assert.NotEmpty(t, writes)
	assert.Equal(t, 34.6, writes[len(writes)-1])
	assert.Empty(t, reader.HoldingWrites["zone2_fixed_flow"])

	context.Stop(pid)
	as.Shutdown()
}

func TestWeatherCompSecondZone(t *testing.T) {

	as, pid, reader, _ := spawnTestWeatherComp(t, func(cfg *config.Config) {
		cfg.Installation.Zone2.Enabled = true
		cfg.Installation.Zone2.CompensationFactor = 0.9
		cfg.Installation.Zone2.TemperatureOffset = -2
	})
	context := as.Root

	_, err := context.RequestFuture(pid, domain.WeatherCompRecalculateRequest{}, 5*time.Second).Result()
	assert.NoError(t, err)

	time.Sleep(2 * time.Second)

	// zone 2 runs cooler: 34.6*0.9 - 2 = 29.1
	writes := reader.HoldingWrites["zone2_fixed_flow"]
	assert.NotEmpty(t, writes)
	assert.Equal(t, 29.1, writes[len(writes)-1])

	context.Stop(pid)
	as.Shutdown()
}

func TestWeatherCompBoostCommands(t *testing.T) {

	boost := &config.CurveConfig{
		MinOutdoorTemp: -5, MaxOutdoorTemp: 18,
		MinFlowTemp: 30, MaxFlowTemp: 50,
		CurveType: "linear", Steepness: 1,
	}
	as, pid, _, _ := spawnTestWeatherComp(t, func(cfg *config.Config) {
		cfg.WeatherComp.DualCurve = true
		cfg.WeatherComp.Boost = boost
	})
	context := as.Root

	res, err := context.RequestFuture(pid, domain.WeatherCompActivateBoostRequest{
		DurationMinutes: 60,
		Reason:          "test",
	}, 5*time.Second).Result()
	if err != nil {
		t.Fatal(err)
	}
	activateResp := res.(domain.WeatherCompActivateBoostResponse)
	assert.False(t, activateResp.HasResponseError())
	assert.True(t, activateResp.Changed)

	res, err = context.RequestFuture(pid, domain.WeatherCompGetStatusRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Fatal(err)
	}
	statusResp := res.(domain.WeatherCompGetStatusResponse)
	assert.Equal(t, domain.CurveBoost, statusResp.Status.ActiveCurve)
	assert.True(t, statusResp.Status.BoostActive)
	assert.NotEmpty(t, statusResp.Curve)
	// boost curve report tops out at the boost maximum
	assert.Equal(t, 50.0, statusResp.Curve[0].FlowTemp)

	res, err = context.RequestFuture(pid, domain.WeatherCompDeactivateBoostRequest{
		Reason: "test",
	}, 5*time.Second).Result()
	if err != nil {
		t.Fatal(err)
	}
	deactivateResp := res.(domain.WeatherCompDeactivateBoostResponse)
	assert.True(t, deactivateResp.Changed)

	context.Stop(pid)
	as.Shutdown()
}

func TestWeatherCompCommandsRunSingleCycle(t *testing.T) {

	boost := &config.CurveConfig{
		MinOutdoorTemp: -5, MaxOutdoorTemp: 18,
		MinFlowTemp: 30, MaxFlowTemp: 50,
		CurveType: "linear", Steepness: 1,
	}
	as, pid, reader, _ := spawnTestWeatherComp(t, func(cfg *config.Config) {
		cfg.WeatherComp.UpdateIntervalMillis = 0
		cfg.WeatherComp.DualCurve = true
		cfg.WeatherComp.Boost = boost
	})
	context := as.Root

	_, err := context.RequestFuture(pid, domain.WeatherCompActivateBoostRequest{
		DurationMinutes: 60,
		Reason:          "test",
	}, 5*time.Second).Result()
	assert.NoError(t, err)

	_, err = context.RequestFuture(pid, domain.WeatherCompDeactivateBoostRequest{
		Reason: "test",
	}, 5*time.Second).Result()
	assert.NoError(t, err)

	_, err = context.RequestFuture(pid, domain.WeatherCompRecalculateRequest{}, 5*time.Second).Result()
	assert.NoError(t, err)

	// give any stray rescheduled cycles time to surface before counting
	time.Sleep(2 * time.Second)

	// one compensation cycle per state change, nothing keeps running after
	assert.Len(t, reader.HoldingWrites["zone1_fixed_flow"], 3)

	context.Stop(pid)
	as.Shutdown()
}

func TestWeatherCompBoostWithoutCurveFails(t *testing.T) {

	as, pid, _, _ := spawnTestWeatherComp(t, nil)
	context := as.Root

	res, err := context.RequestFuture(pid, domain.WeatherCompActivateBoostRequest{
		Reason: "test",
	}, 5*time.Second).Result()
	if err != nil {
		t.Fatal(err)
	}
	activateResp := res.(domain.WeatherCompActivateBoostResponse)
	assert.True(t, activateResp.HasResponseError())

	context.Stop(pid)
	as.Shutdown()
}

func TestWeatherCompBoostDurationUpdate(t *testing.T) {

	as, pid, _, es := spawnTestWeatherComp(t, nil)
	context := as.Root

	var published []any
	sub := es.Subscribe(func(value any) {
		published = append(published, value)
	})
	defer es.Unsubscribe(sub)

	res, err := context.RequestFuture(pid, domain.WeatherCompSetBoostDurationRequest{
		Minutes: 90,
	}, 5*time.Second).Result()
	if err != nil {
		t.Fatal(err)
	}
	durationResp := res.(domain.WeatherCompSetBoostDurationResponse)
	assert.Equal(t, uint(90), durationResp.Minutes)

	// out of range values clamp to the allowed window
	res, err = context.RequestFuture(pid, domain.WeatherCompSetBoostDurationRequest{
		Minutes: 10000,
	}, 5*time.Second).Result()
	if err != nil {
		t.Fatal(err)
	}
	durationResp = res.(domain.WeatherCompSetBoostDurationResponse)
	assert.Equal(t, uint(480), durationResp.Minutes)

	time.Sleep(200 * time.Millisecond)

	found := false
	for _, ev := range published {
		if upd, ok := ev.(domain.InputNumberSensorUpdateEvent); ok && upd.Id == events.INPUT_NUMBER_ID_WC_BOOST_DURATION {
			found = true
		}
	}
	assert.True(t, found)

	context.Stop(pid)
	as.Shutdown()
}
