package actor

import (
	"testing"
	"time"

	"aerona2mqtt/internal/core/domain"
	"aerona2mqtt/internal/util"
	"aerona2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMQTTActor(t *testing.T) {

	cfg := util.LoadTestConfig()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)

	context := as.Root

	es := eventstream.EventStream{}

	props := actor.PropsFromProducer(func() actor.Actor { return NewTestMQTTActor(&cfg, &es, logger) })
	pid := context.Spawn(props)

	time.Sleep(500 * time.Millisecond)

	msg := domain.ActorHealthRequest{}
	result, err := context.RequestFuture(pid, msg, 2*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp, ok := result.(domain.ActorHealthResponse)
	assert.True(t, ok)
	assert.True(t, resp.Healthy)

	self := domain.ActorRef{}
	update := domain.PublishSensorUpdateRequest{
		ActorRequestMixIn: domain.ActorRequestMixIn{ReplyToRef: &self},
		Event: domain.FloatSensorUpdateEvent{
			SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{
				Id: "flow_temp",
			},
			Value:    38.0,
			Decimals: 1,
		},
	}
	pubResult, err := context.RequestFuture(pid, update, 2*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	pubResp, ok := pubResult.(domain.PublishSensorUpdateResponse)
	assert.True(t, ok)
	assert.NoError(t, pubResp.ResponseError)

	context.Stop(pid)

	as.Shutdown()
}
