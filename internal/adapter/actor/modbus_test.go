package actor

import (
	"testing"
	"time"

	"aerona2mqtt/internal/core/domain"
	"aerona2mqtt/internal/util/actorutil"
	"aerona2mqtt/pkg/aerona_modbus"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func spawnTestModbusActor(t *testing.T, features aerona_modbus.FeatureSet) (*actor.ActorSystem, *actor.PID, *aerona_modbus.TestHeatPumpModbusReader) {
	reader, err := aerona_modbus.CreateTestHeatPumpModbusReader(features)
	if err != nil {
		t.Fatal(err)
	}

	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)

	props := actor.PropsFromProducer(func() actor.Actor { return NewModbusActor(reader, logger) })
	pid := as.Root.Spawn(props)

	time.Sleep(500 * time.Millisecond)

	return as, pid, reader
}

func TestGetHeatPumpInfoModbusActor(t *testing.T) {

	assert := assert.New(t)

	as, pid, _ := spawnTestModbusActor(t, aerona_modbus.FeatureSet{DHWCylinder: true})
	context := as.Root

	msg := domain.GetHeatPumpInfoRequest{}
	result, err := context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetHeatPumpInfoResponse)

	assert.Equal("Grant", resp.Info.Manufacturer, "heat pump manufacturer")
	assert.Equal("Aerona3", resp.Info.Model, "heat pump model")
	assert.True(resp.Info.Registers > 0, "enabled register count")

	context.Stop(pid)
	as.Shutdown()
}

func TestGetRegisterSnapshotModbusActor(t *testing.T) {

	assert := assert.New(t)

	as, pid, _ := spawnTestModbusActor(t, aerona_modbus.FeatureSet{
		DHWCylinder:           true,
		ExternalOutdoorSensor: true,
	})
	context := as.Root

	msg := domain.GetRegisterSnapshotRequest{}
	result, err := context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetRegisterSnapshotResponse)

	assert.NoError(resp.ResponseError)
	flow, ok := resp.Snapshot.Get("flow_temp")
	assert.True(ok, "flow temp present")
	assert.Equal(38.0, flow.Value, "flow temp value")
	outdoor, ok := resp.Snapshot.Get("external_outdoor_temp")
	assert.True(ok, "external outdoor temp present")
	assert.Equal(6.8, outdoor.Value, "external outdoor temp value")

	context.Stop(pid)
	as.Shutdown()
}

func TestWriteRegistersModbusActor(t *testing.T) {

	assert := assert.New(t)

	as, pid, reader := spawnTestModbusActor(t, aerona_modbus.FeatureSet{DHWCylinder: true})
	context := as.Root

	result, err := context.RequestFuture(pid, domain.WriteHoldingRegisterRequest{
		RegisterId: "zone1_fixed_flow",
		Value:      42.5,
	}, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	writeResp := result.(domain.WriteHoldingRegisterResponse)
	assert.NoError(writeResp.ResponseError)
	assert.Equal([]float64{42.5}, reader.HoldingWrites["zone1_fixed_flow"])

	result, err = context.RequestFuture(pid, domain.WriteCoilRequest{
		RegisterId: "dhw_enable",
		Value:      true,
	}, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	coilResp := result.(domain.WriteCoilResponse)
	assert.NoError(coilResp.ResponseError)
	assert.Equal([]bool{true}, reader.CoilWrites["dhw_enable"])

	context.Stop(pid)
	as.Shutdown()
}

func TestSnapshotFailureModbusActor(t *testing.T) {

	assert := assert.New(t)

	as, pid, reader := spawnTestModbusActor(t, aerona_modbus.FeatureSet{})
	reader.FailSnapshot = true
	context := as.Root

	result, err := context.RequestFuture(pid, domain.GetRegisterSnapshotRequest{}, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetRegisterSnapshotResponse)
	assert.Error(resp.ResponseError)
	assert.Nil(resp.Snapshot)

	context.Stop(pid)
	as.Shutdown()
}
