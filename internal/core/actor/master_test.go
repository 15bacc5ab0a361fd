package actor

import (
	"fmt"
	"testing"
	"time"

	adactor "aerona2mqtt/internal/adapter/actor"
	cfgpkg "aerona2mqtt/internal/config"
	"aerona2mqtt/internal/core/domain"
	"aerona2mqtt/internal/util"
	"aerona2mqtt/pkg/aerona_modbus"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func spawnTestMaster(t *testing.T, mutate func(*cfgpkg.Config)) (*actor.ActorSystem, *actor.PID, *aerona_modbus.TestHeatPumpModbusReader) {
	as := actor.NewActorSystem()
	context := as.Root

	config := util.LoadTestConfig()
	if mutate != nil {
		mutate(&config)
	}
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(config.LogLevel)
	logger := zap.Must(logCfg.Build())

	reader, err := aerona_modbus.CreateTestHeatPumpModbusReader(config.FeatureSet())
	if err != nil {
		t.Fatal(err)
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(config, func() *adactor.ModbusActor {
			return adactor.NewModbusActor(reader, logger)
		}, func(es *eventstream.EventStream) *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&config, es, logger)
		}, logger)
	})
	pid, err := context.SpawnNamed(props, domain.ACTOR_ID_MASTER)
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(2 * time.Second)

	return as, pid, reader
}

func TestMasterActor(t *testing.T) {

	as, pid, _ := spawnTestMaster(t, nil)
	context := as.Root

	res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
	}
	healthResp, ok := res.(domain.ActorHealthResponse)
	assert.True(t, ok)
	fmt.Printf("Health response: %+v\n", healthResp)
	assert.NotNil(t, healthResp)

	assert.True(t, healthResp.Healthy, "healthy is true")

	context.Stop(pid)

	as.Shutdown()
}

func TestMasterForwardsWeatherCompStatus(t *testing.T) {

	as, pid, _ := spawnTestMaster(t, nil)
	context := as.Root

	res, err := context.RequestFuture(pid, domain.WeatherCompGetStatusRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	statusResp, ok := res.(domain.WeatherCompGetStatusResponse)
	assert.True(t, ok)
	assert.False(t, statusResp.HasResponseError())
	assert.Equal(t, domain.CurvePrimary, statusResp.Status.ActiveCurve)

	context.Stop(pid)

	as.Shutdown()
}

func TestMasterForwardsEnabledRegisters(t *testing.T) {

	as, pid, _ := spawnTestMaster(t, nil)
	context := as.Root

	res, err := context.RequestFuture(pid, domain.GetEnabledRegistersRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	registersResp, ok := res.(domain.GetEnabledRegistersResponse)
	assert.True(t, ok)
	assert.NotEmpty(t, registersResp.Registers)

	context.Stop(pid)

	as.Shutdown()
}
