package actor

import (
	"fmt"
	"time"

	"aerona2mqtt/internal/core/domain"
	"aerona2mqtt/internal/util/actorutil"
	"aerona2mqtt/pkg/aerona_modbus"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/reugn/go-quartz/logger"
	"go.uber.org/zap"
)

const modbusOpTimeout = 10 * time.Second

// ModbusActor serializes access to the heat pump. Every request opens its
// own TCP connection inside the reader, so only one operation may be in
// flight at a time and anything else is stashed until it finishes.
type ModbusActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash
	reader   aerona_modbus.HeatPumpModbusReader
	logger   *zap.Logger
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

func NewModbusActor(reader aerona_modbus.HeatPumpModbusReader, logger *zap.Logger) *ModbusActor {
	act := &ModbusActor{
		reader:   reader,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_MODBUS, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *ModbusActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *ModbusActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("modbus@starting started")
		// connectivity probe, supervision restarts us if the pump is unreachable
		info, err := state.reader.GetInfo()
		if err != nil {
			panic(err)
		}
		state.logger.Info("heat pump reachable", zap.String("model", info.Model),
			zap.Uint8("slaveId", info.SlaveId))
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("modbus@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *ModbusActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("modbus@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MODBUS,
			Healthy: true,
			State:   "idle",
		})
	case domain.GetHeatPumpInfoRequest:
		state.logger.Debug("modbus@default: GetHeatPumpInfoRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.getHeatPumpInfo),
			mapTaskResult[domain.GetHeatPumpInfoResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetHeatPumpInfoResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(modbusOpTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingModbus)
	case domain.GetRegisterSnapshotRequest:
		state.logger.Debug("modbus@default: GetRegisterSnapshotRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.getRegisterSnapshot),
			mapTaskResult[domain.GetRegisterSnapshotResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetRegisterSnapshotResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(modbusOpTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingModbus)
	case domain.GetEnabledRegistersRequest:
		state.logger.Debug("modbus@default: GetEnabledRegistersRequest")
		// catalog resolution is pure, no modbus round trip needed
		ctx.Respond(domain.GetEnabledRegistersResponse{
			Registers: state.reader.EnabledRegisters(),
		})
	case domain.WriteHoldingRegisterRequest:
		state.logger.Debug("modbus@default: WriteHoldingRegisterRequest",
			zap.String("register", msg.RegisterId), zap.Float64("value", msg.Value))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTaskNoError(ctx, func() *domain.WriteHoldingRegisterResponse {
			a := state.writeHolding(msg.RegisterId, msg.Value)
			return &a
		}), mapTaskResult[domain.WriteHoldingRegisterResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.WriteHoldingRegisterResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
					RegisterId: msg.RegisterId,
				},
				replyTo: sender,
			}
		}).WithTimeout(modbusOpTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingModbus)
	case domain.WriteCoilRequest:
		state.logger.Debug("modbus@default: WriteCoilRequest",
			zap.String("register", msg.RegisterId), zap.Bool("value", msg.Value))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTaskNoError(ctx, func() *domain.WriteCoilResponse {
			a := state.writeCoil(msg.RegisterId, msg.Value)
			return &a
		}), mapTaskResult[domain.WriteCoilResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.WriteCoilResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
					RegisterId: msg.RegisterId,
				},
				replyTo: sender,
			}
		}).WithTimeout(modbusOpTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingModbus)
	default:
		state.logger.Debug("modbus@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *ModbusActor) WaitingModbus(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case backgroundTaskResult:
		state.logger.Debug("modbus@WaitingModbus backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		ctx.Send(msg.replyTo, msg.message)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("modbus@WaitingModbus stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (a *ModbusActor) getHeatPumpInfo() (*domain.GetHeatPumpInfoResponse, error) {
	info, err := a.reader.GetInfo()
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.GetHeatPumpInfoResponse{
		Info: info,
	}, nil
}

func (a *ModbusActor) getRegisterSnapshot() (*domain.GetRegisterSnapshotResponse, error) {
	snapshot, err := a.reader.ReadSnapshot()
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.GetRegisterSnapshotResponse{
		Snapshot: snapshot,
	}, nil
}

func (a *ModbusActor) writeHolding(registerId string, value float64) domain.WriteHoldingRegisterResponse {
	if err := a.reader.WriteHolding(registerId, value); err != nil {
		logger.Error(err)
		return domain.WriteHoldingRegisterResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
			RegisterId: registerId,
		}
	}
	return domain.WriteHoldingRegisterResponse{
		RegisterId: registerId,
		Value:      value,
	}
}

func (a *ModbusActor) writeCoil(registerId string, value bool) domain.WriteCoilResponse {
	if err := a.reader.WriteCoil(registerId, value); err != nil {
		logger.Error(err)
		return domain.WriteCoilResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
			RegisterId: registerId,
		}
	}
	return domain.WriteCoilResponse{
		RegisterId: registerId,
		Value:      value,
	}
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
