package actor

import (
	"errors"
	"fmt"
	"time"

	"aerona2mqtt/internal/config"
	"aerona2mqtt/internal/core/domain"
	"aerona2mqtt/internal/core/events"
	"aerona2mqtt/internal/core/port"
	"aerona2mqtt/internal/core/service"
	. "aerona2mqtt/internal/util/actorutil"
	"aerona2mqtt/pkg/aerona_modbus"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

const (
	minBoostDurationMinutes = 10
	maxBoostDurationMinutes = 480

	// sampling resolution of the curve report in status responses
	curveReportSamples = 12
)

// WeatherCompActor periodically recomputes the zone flow setpoints from the
// outdoor temperature and pushes them to the heat pump.
type WeatherCompActor struct {
	ActorWithStates
	scheduler   *scheduler.TimerScheduler
	stash       *Stash
	modbusActor *actor.PID
	config      *config.Config
	eventStream *eventstream.EventStream

	engine               port.WeatherCompensationLogic
	zone1                domain.ZoneAdjustment
	zone2                domain.ZoneAdjustment
	zone2Enabled         bool
	boostDurationMinutes uint

	logger *zap.Logger
}

// weatherCompTick drives the periodic chain: handling one schedules the
// next. weatherCompRecalcNow runs a single extra cycle without touching
// the schedule, commands use it so an immediate recalculation never
// spawns a second chain.
type weatherCompTick struct {
}

type weatherCompRecalcNow struct {
}

func NewWeatherCompActor(config *config.Config, modbusActor *actor.PID, eventStream *eventstream.EventStream, logger *zap.Logger) *WeatherCompActor {
	act := &WeatherCompActor{
		config:               config,
		modbusActor:          modbusActor,
		stash:                &Stash{},
		logger:               ActorLogger(domain.ACTOR_ID_WEATHER_COMP, logger),
		eventStream:          eventStream,
		zone1:                zoneAdjustment(config.Installation.Zone1),
		zone2:                zoneAdjustment(config.Installation.Zone2),
		zone2Enabled:         config.Installation.Zone2.Enabled,
		boostDurationMinutes: 120,
		ActorWithStates: ActorWithStates{
			Behavior: actor.NewBehavior(),
		},
	}
	act.Become(WCStartingState{
		actor: act,
	})
	return act
}

func (state *WeatherCompActor) Receive(context actor.Context) {
	state.Behavior.Receive(context)
}

func zoneAdjustment(zone config.ZoneConfig) domain.ZoneAdjustment {
	return domain.ZoneAdjustment{
		Factor:      zone.CompensationFactor,
		Offset:      zone.TemperatureOffset,
		MinFlowTemp: zone.MinFlowTemp,
		MaxFlowTemp: zone.MaxFlowTemp,
	}
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

// Starting state

type WCStartingState struct {
	ActorState
	actor *WeatherCompActor
}

func (state WCStartingState) Name() string {
	return "starting"
}

func (state WCStartingState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.actor.logger.Debug("weather_comp@starting started")

		var boost *domain.HeatingCurveConfig
		if state.actor.config.WeatherComp.DualCurve && state.actor.config.WeatherComp.Boost != nil {
			b := heatingCurve(*state.actor.config.WeatherComp.Boost)
			boost = &b
		}
		engine, err := service.NewWeatherCompensationEngine(
			heatingCurve(state.actor.config.WeatherComp.Primary), boost, state.actor.logger)
		if err != nil {
			panic(err)
		}
		state.actor.engine = engine

		state.actor.scheduler = scheduler.NewTimerScheduler(ctx)
		if state.actor.config.WeatherComp.UpdateIntervalMillis > 0 {
			state.actor.scheduler.RequestOnce(time.Duration(state.actor.config.WeatherComp.UpdateIntervalMillis)*time.Millisecond,
				ctx.Self(), weatherCompTick{})
		}

		state.actor.Become(WCIdleState{
			actor: state.actor,
		})
		state.actor.stash.UnstashAll(ctx)
	case *actor.Restarting:
	default:
		state.actor.logger.Debug("weather_comp@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.actor.stash.Stash(ctx, msg)
	}
}

// Idle state

type WCIdleState struct {
	ActorState
	actor *WeatherCompActor
}

func (state WCIdleState) Name() string {
	return "idle"
}

func (state WCIdleState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.actor.logger.Debug("weather_comp@idle: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_WEATHER_COMP,
			Healthy: true,
			State:   state.Name(),
		})
	case weatherCompTick:
		state.actor.logger.Debug("weather_comp@idle tick")
		state.actor.scheduler.RequestOnce(time.Duration(state.actor.config.WeatherComp.UpdateIntervalMillis)*time.Millisecond,
			ctx.Self(), weatherCompTick{})
		state.actor.BecomeStacked(WCAwaitSnapshotState{
			actor: state.actor,
		}.OnEnterAction(ctx))
	case weatherCompRecalcNow:
		state.actor.logger.Debug("weather_comp@idle recalc")
		state.actor.BecomeStacked(WCAwaitSnapshotState{
			actor: state.actor,
		}.OnEnterAction(ctx))
	case domain.GetRegisterSnapshotResponse:
		state.actor.processSnapshot(ctx, msg)
	case domain.WriteHoldingRegisterResponse:
		if msg.HasResponseError() {
			state.actor.logger.Error("weather_comp@idle: flow setpoint write failed",
				zap.String("register", msg.RegisterId), zap.Error(msg.GetResponseError()))
		}
	case domain.WeatherCompRequest:
		state.actor.handleCommand(ctx, msg)
	default:
		state.actor.logger.Debug("weather_comp@idle: recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// Await snapshot state

type WCAwaitSnapshotState struct {
	ActorState
	actor *WeatherCompActor
}

func (state WCAwaitSnapshotState) Name() string {
	return "awaitSnapshotReceive"
}

func (state WCAwaitSnapshotState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetRegisterSnapshotResponse:
		ctx.SetReceiveTimeout(0)
		state.actor.logger.Debug("weather_comp@awaitSnapshotReceive: GetRegisterSnapshotResponse")
		ctx.RequestWithCustomSender(ctx.Self(), msg, ctx.Sender())
		state.actor.UnbecomeStacked()
		state.actor.stash.UnstashAll(ctx)
	case *actor.ReceiveTimeout:
		ctx.SetReceiveTimeout(0)
		state.actor.logger.Debug("weather_comp@awaitSnapshotReceive: ReceiveTimeout")
		ctx.RequestWithCustomSender(ctx.Self(), domain.GetRegisterSnapshotResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: errors.New("receive timeout"),
			},
		}, ctx.Sender())
		state.actor.UnbecomeStacked()
		state.actor.stash.UnstashAll(ctx)
	default:
		state.actor.logger.Debug("weather_comp@awaitSnapshotReceive: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.actor.stash.Stash(ctx, msg)
	}
}

func (state WCAwaitSnapshotState) OnEnterAction(ctx actor.Context) WCAwaitSnapshotState {
	PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.actor.modbusActor,
		domain.GetRegisterSnapshotRequest{}, 15*time.Second),
		func(err error) any {
			return domain.GetRegisterSnapshotResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})
	ctx.SetReceiveTimeout(15 * time.Second)
	return state
}

// Actor function helpers

func (state *WeatherCompActor) processSnapshot(ctx actor.Context, msg domain.GetRegisterSnapshotResponse) {
	if msg.HasResponseError() {
		state.logger.Error("weather_comp: snapshot failed, skipping compensation cycle", zap.Error(msg.GetResponseError()))
		return
	}
	outdoor, ok := outdoorTemperature(msg.Snapshot)
	if !ok {
		state.logger.Warn("weather_comp: no outdoor temperature available, skipping compensation cycle")
		return
	}

	result := state.engine.Calculate(outdoor)
	if result.BoostExpired {
		state.logger.Info("weather_comp: boost expired during calculation")
	}

	zone1Flow := service.AdjustZoneFlow(result.FlowTemp, state.zone1)
	ctx.Request(state.modbusActor, domain.WriteHoldingRegisterRequest{
		RegisterId: "zone1_fixed_flow",
		Value:      zone1Flow,
	})

	var zone2Flow *float64
	if state.zone2Enabled {
		z2 := service.AdjustZoneFlow(result.FlowTemp, state.zone2)
		zone2Flow = &z2
		ctx.Request(state.modbusActor, domain.WriteHoldingRegisterRequest{
			RegisterId: "zone2_fixed_flow",
			Value:      z2,
		})
	}

	state.logger.Debug("weather_comp: cycle complete",
		zap.Float64("outdoor", outdoor), zap.Float64("zone1Flow", zone1Flow),
		zap.String("curve", string(result.ActiveCurve)))

	state.publishStatus(zone2Flow)
}

// outdoorTemperature prefers the dedicated external sensor over the unit's
// own ambient probe.
func outdoorTemperature(snapshot *aerona_modbus.RegisterSnapshot) (float64, bool) {
	if v, ok := snapshot.Get("external_outdoor_temp"); ok {
		return v.Value, true
	}
	if v, ok := snapshot.Get("outdoor_temp"); ok {
		return v.Value, true
	}
	return 0, false
}

func (state *WeatherCompActor) handleCommand(ctx actor.Context, msg domain.WeatherCompRequest) {
	switch cmd := msg.(type) {
	case domain.WeatherCompActivateBoostRequest:
		state.logger.Sugar().Debugf("weather_comp: cmd activate boost (%s)", cmd.Reason)
		minutes := cmd.DurationMinutes
		if minutes == 0 {
			minutes = state.boostDurationMinutes
		}
		changed, err := state.engine.ActivateBoost(time.Duration(minutes)*time.Minute, cmd.Reason)
		respondIfAsked(ctx, cmd, domain.WeatherCompActivateBoostResponse{
			WeatherCompResponseMixIn: responseMixIn(err),
			Changed:                  changed,
		})
		if err != nil {
			state.logger.Error("weather_comp: boost activation failed", zap.Error(err))
			return
		}
		state.publishStatus(nil)
		if changed {
			ctx.Send(ctx.Self(), weatherCompRecalcNow{})
		}
	case domain.WeatherCompDeactivateBoostRequest:
		state.logger.Sugar().Debugf("weather_comp: cmd deactivate boost (%s)", cmd.Reason)
		changed := state.engine.DeactivateBoost(cmd.Reason)
		respondIfAsked(ctx, cmd, domain.WeatherCompDeactivateBoostResponse{
			Changed: changed,
		})
		state.publishStatus(nil)
		if changed {
			ctx.Send(ctx.Self(), weatherCompRecalcNow{})
		}
	case domain.WeatherCompSetBoostDurationRequest:
		minutes := cmd.Minutes
		if minutes < minBoostDurationMinutes {
			minutes = minBoostDurationMinutes
		}
		if minutes > maxBoostDurationMinutes {
			minutes = maxBoostDurationMinutes
		}
		state.logger.Sugar().Debugf("weather_comp: cmd boost duration %d min", minutes)
		state.boostDurationMinutes = minutes
		respondIfAsked(ctx, cmd, domain.WeatherCompSetBoostDurationResponse{
			Minutes: minutes,
		})
		state.eventStream.Publish(domain.InputNumberSensorUpdateEvent{
			SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: events.INPUT_NUMBER_ID_WC_BOOST_DURATION},
			Value:                  float64(minutes),
		})
	case domain.WeatherCompGetStatusRequest:
		respondIfAsked(ctx, cmd, domain.WeatherCompGetStatusResponse{
			Status: state.engine.Status(),
			Curve:  state.engine.CurvePoints(curveReportSamples),
		})
	case domain.WeatherCompRecalculateRequest:
		state.logger.Debug("weather_comp: cmd recalculate")
		status := state.engine.Status()
		respondIfAsked(ctx, cmd, domain.WeatherCompRecalculateResponse{
			FlowTemp: status.LastFlowTemp,
		})
		ctx.Send(ctx.Self(), weatherCompRecalcNow{})
	}
}

func (state *WeatherCompActor) publishStatus(zone2FlowTemp *float64) {
	evs := events.WeatherCompStatusToUpdateEvents(state.engine.Status(), zone2FlowTemp)
	for _, ev := range evs {
		state.eventStream.Publish(ev)
	}
}

func respondIfAsked(ctx actor.Context, req domain.ActorRequest, resp domain.ActorResponse) {
	if ctx.Sender() != nil || req.ReplyTo() != nil {
		ForRequest(req).Respond(ctx, resp)
	}
}

func responseMixIn(err error) domain.WeatherCompResponseMixIn {
	return domain.WeatherCompResponseMixIn{
		ActorResponseMixIn: domain.ActorResponseMixIn{
			ResponseError: err,
		},
	}
}
