package actor

import (
	"fmt"
	"time"

	"aerona2mqtt/internal/config"
	"aerona2mqtt/internal/core/domain"
	"aerona2mqtt/internal/core/events"
	. "aerona2mqtt/internal/util/actorutil"
	"aerona2mqtt/pkg/aerona_modbus"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

// offline after this many failed poll cycles in a row
const pollerOfflineThreshold = 3

type PollerActor struct {
	behavior  actor.Behavior
	stash     *Stash
	scheduler *scheduler.TimerScheduler

	modbusActor *actor.PID
	config      *config.Config
	eventStream *eventstream.EventStream
	enabled     []aerona_modbus.RegisterDefinition

	consecutiveFailures uint
	online              bool

	logger *zap.Logger
}

type pollTick struct {
}

func NewPollerActor(config *config.Config, modbusActor *actor.PID, eventStream *eventstream.EventStream, logger *zap.Logger) *PollerActor {
	act := &PollerActor{
		config:      config,
		modbusActor: modbusActor,
		behavior:    actor.NewBehavior(),
		stash:       &Stash{},
		logger:      ActorLogger(domain.ACTOR_ID_POLLER, logger),
		eventStream: eventStream,
		online:      true,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *PollerActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *PollerActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("poller@starting started")

		if state.config.MonitorConfig.PollIntervalMillis > 0 {
			state.scheduler = scheduler.NewTimerScheduler(ctx)
			state.scheduler.RequestOnce(time.Duration(state.config.MonitorConfig.PollIntervalMillis)*time.Millisecond, ctx.Self(), pollTick{})
		}

		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.modbusActor, domain.GetEnabledRegistersRequest{}, 1*time.Second), func(err error) any {
			return domain.GetEnabledRegistersResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})
		state.behavior.Become(state.WaitingRegistersReceive)
	case *actor.Restarting:
	default:
		state.logger.Debug("poller@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *PollerActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("poller@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_POLLER,
			Healthy: true,
			State:   "idle",
		})
	case pollTick:
		state.logger.Debug("poller@default tick")
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.modbusActor, domain.GetRegisterSnapshotRequest{}, 15*time.Second), func(err error) any {
			return domain.GetRegisterSnapshotResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})

		// schedule next tick
		state.scheduler.RequestOnce(time.Duration(state.config.MonitorConfig.PollIntervalMillis)*time.Millisecond, ctx.Self(), pollTick{})
		state.behavior.BecomeStacked(state.WaitingSnapshotReceive)
	default:
		state.logger.Debug("poller@default: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *PollerActor) WaitingSnapshotReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetRegisterSnapshotResponse:
		if msg.HasResponseError() {
			state.logger.Error("poller@waiting GetRegisterSnapshotResponse error", zap.Error(msg.GetResponseError()))
			state.onPollFailure()
			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
			return
		}
		state.logger.Debug("poller@waiting GetRegisterSnapshotResponse",
			zap.Int("registers", len(msg.Snapshot.Values)), zap.Bool("partial", msg.Snapshot.Partial))
		state.onPollSuccess()

		evs := events.SnapshotToUpdateEvents(msg.Snapshot, state.enabled)
		for _, ev := range evs {
			state.eventStream.Publish(ev)
		}

		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("poller@waiting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *PollerActor) WaitingRegistersReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetEnabledRegistersResponse:
		if msg.HasResponseError() {
			state.logger.Error("poller@waitingRegisters GetEnabledRegistersResponse", zap.Error(msg.GetResponseError()))
			panic(msg.GetResponseError())
		}
		state.logger.Debug("poller@waitingRegisters GetEnabledRegistersResponse", zap.Int("registers", len(msg.Registers)))
		state.enabled = msg.Registers
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("poller@waitingRegisters: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *PollerActor) onPollFailure() {
	state.consecutiveFailures++
	if state.online && state.consecutiveFailures >= pollerOfflineThreshold {
		state.logger.Warn("heat pump considered offline", zap.Uint("failures", state.consecutiveFailures))
		state.online = false
		state.eventStream.Publish(domain.BridgeStateUpdateEvent{
			SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: domain.SENSOR_ID_BRIDGE_STATE},
			Value:                  false,
		})
	}
}

func (state *PollerActor) onPollSuccess() {
	state.consecutiveFailures = 0
	if !state.online {
		state.logger.Info("heat pump back online")
		state.online = true
		state.eventStream.Publish(domain.BridgeStateUpdateEvent{
			SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: domain.SENSOR_ID_BRIDGE_STATE},
			Value:                  true,
		})
	}
}
