package actor

import (
	"errors"
	"fmt"
	"time"

	"aerona2mqtt/internal/config"
	"aerona2mqtt/internal/core/domain"
	"aerona2mqtt/internal/core/events"
	"aerona2mqtt/internal/util/actorutil"
	"aerona2mqtt/pkg/aerona_modbus"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// HADiscoveryActor announces every enabled entity to Home Assistant once
// the modbus and MQTT actors are up, then goes dormant.
type HADiscoveryActor struct {
	config             *config.Config
	behavior           actor.Behavior
	stash              *actorutil.Stash
	modbusActor        *actor.PID
	mqttActor          *actor.PID
	modbusActorHealthy bool
	mqttActorHealthy   bool
	healthyRecv        int

	info      *aerona_modbus.HeatPumpInfo
	registers []aerona_modbus.RegisterDefinition

	logger *zap.Logger
}

func NewHADiscoveryActor(config *config.Config, modbusActor *actor.PID, mqttActor *actor.PID, logger *zap.Logger) *HADiscoveryActor {
	act := &HADiscoveryActor{
		config:      config,
		modbusActor: modbusActor,
		mqttActor:   mqttActor,
		behavior:    actor.NewBehavior(),
		stash:       &actorutil.Stash{},
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_HA_DISCOVERY, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *HADiscoveryActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *HADiscoveryActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("hadiscovery@starting started")

		// Check Modbus and MQTT actor healthy
		state.healthyRecv = 0
		state.modbusActorHealthy = false
		state.mqttActorHealthy = false
		// Modbus Actor Request
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.modbusActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MODBUS,
				Healthy: false,
			}
		})
		// MQTT Actor Request
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MQTT,
				Healthy: false,
			}
		})
		state.behavior.Become(state.WaitingHealthyReceive)
	case *actor.Restarting:
	default:
		state.logger.Debug("hadiscovery@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) WaitingHealthyReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthResponse:
		state.logger.Debug("hadiscovery@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.healthyRecv++
		if msg.Healthy {
			switch msg.Id {
			case domain.ACTOR_ID_MODBUS:
				state.modbusActorHealthy = true
			case domain.ACTOR_ID_MQTT:
				state.mqttActorHealthy = true
			}
		}
		if state.healthyRecv == 2 {

			if state.modbusActorHealthy && state.mqttActorHealthy {
				actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.modbusActor, domain.GetHeatPumpInfoRequest{}, 2*time.Second), func(err error) any {
					return domain.GetHeatPumpInfoResponse{
						ActorResponseMixIn: domain.ActorResponseMixIn{
							ResponseError: err,
						},
					}
				})
				actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.modbusActor, domain.GetEnabledRegistersRequest{}, 2*time.Second), func(err error) any {
					return domain.GetEnabledRegistersResponse{
						ActorResponseMixIn: domain.ActorResponseMixIn{
							ResponseError: err,
						},
					}
				})
				state.behavior.Become(state.WaitingInfoReceive)
				state.stash.UnstashAll(ctx)
			} else {
				panic(errors.New("MQTT Actor or Modbus Actor are not healthy"))
			}
		}
	default:
		state.logger.Debug("hadiscovery@healthcheck: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) Done(ctx actor.Context) {

}

func (state *HADiscoveryActor) WaitingInfoReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetHeatPumpInfoResponse:
		if msg.HasResponseError() {
			panic(msg.GetResponseError())
		}
		state.logger.Debug("hadiscovery@info: GetHeatPumpInfoResponse", zap.Any("response", msg))
		state.info = msg.Info
		state.publishWhenReady(ctx)
	case domain.GetEnabledRegistersResponse:
		if msg.HasResponseError() {
			panic(msg.GetResponseError())
		}
		state.logger.Debug("hadiscovery@info: GetEnabledRegistersResponse", zap.Int("registers", len(msg.Registers)))
		state.registers = msg.Registers
		state.publishWhenReady(ctx)
	default:
		state.logger.Debug("hadiscovery@info: default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *HADiscoveryActor) publishWhenReady(ctx actor.Context) {
	if state.info == nil || state.registers == nil {
		return
	}

	var sensors []domain.GenericSensor
	var switches []domain.GenericSwitch
	var inputNumbers []domain.GenericInputNumber

	bridgeDevice := events.BridgeDevice(state.config.MQTT.BaseTopic)
	sensors = append(sensors, events.BridgeSensors(bridgeDevice)...)

	hpDevice := events.HeatPumpDevice(state.info, state.config.HeatPumpModbusTcp.Host)
	hpDevice.ViaDevice = bridgeDevice.Id
	registerSensors := events.RegisterSensors(hpDevice, state.registers)
	for i := range registerSensors {
		if i > 0 {
			registerSensors[i].Device = events.IdDevice(hpDevice)
		}
		sensors = append(sensors, registerSensors[i])
	}
	switches = append(switches, events.RegisterSwitches(events.IdDevice(hpDevice), state.registers)...)
	inputNumbers = append(inputNumbers, events.RegisterInputNumbers(events.IdDevice(hpDevice), state.registers)...)

	if state.config.WeatherComp.Enabled {
		sensors = append(sensors, events.WeatherCompSensors(events.IdDevice(hpDevice))...)
		switches = append(switches, events.WeatherCompSwitches(events.IdDevice(hpDevice))...)
		inputNumbers = append(inputNumbers, events.WeatherCompInputNumbers(events.IdDevice(hpDevice))...)
	}

	ctx.Send(state.mqttActor, domain.PublishDiscoveryRequest{
		Sensors:      sensors,
		Switches:     switches,
		InputNumbers: inputNumbers,
	})
	state.behavior.Become(state.Done)
}
