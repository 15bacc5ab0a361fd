package actorutil

import (
	"log/slog"
	"strconv"
	"time"

	"aerona2mqtt/internal/core/domain"
	"aerona2mqtt/internal/core/events"
	"aerona2mqtt/internal/mqtt"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"
	"go.uber.org/zap"
)

func PipeToSelfWithRecover(ctx actor.Context, future *actor.Future, mapFn func(error) any) {
	ctx.ReenterAfter(future, func(msg any, err error) {
		if err != nil {
			ctx.Send(ctx.Self(), mapFn(err))
			return
		}
		ctx.Send(ctx.Self(), msg)
	})
}

func NewActorSystemWithZapLogger(logger *zap.Logger) *actor.ActorSystem {
	stdOutLogger := zap.NewStdLog(logger)

	var slogLevel slog.Level = slog.LevelInfo

	switch logger.Level() {
	case zap.DebugLevel:
		slogLevel = slog.LevelDebug
	case zap.InfoLevel:
		slogLevel = slog.LevelInfo
	case zap.WarnLevel:
		slogLevel = slog.LevelWarn
	case zap.ErrorLevel:
		slogLevel = slog.LevelError
	case zap.PanicLevel:
		slogLevel = slog.LevelError
	}

	return actor.NewActorSystem(actor.WithLoggerFactory(func(system *actor.ActorSystem) *slog.Logger {

		// create a new logger
		return slog.New(tint.NewHandler(stdOutLogger.Writer(), &tint.Options{
			Level:      slogLevel,
			TimeFormat: time.DateTime,
		}))
	}))
}

func ActorLogger(actorName string, logger *zap.Logger) *zap.Logger {
	return logger.With(zap.String("actor", actorName))
}

// ParsedMQTTCommandToCommand maps an MQTT command topic onto an actor
// request. Weather compensation entities get their dedicated requests,
// every other entity id is a register write.
func ParsedMQTTCommandToCommand(cmd mqtt.ParsedMQTTCommand) (domain.ActorRequest, error) {
	switch {
	case cmd.DeviceId == events.SWITCH_ID_WC_BOOST:
		if cmd.Payload == "on" {
			return domain.WeatherCompActivateBoostRequest{
				Reason: "mqtt command",
			}, nil
		}
		return domain.WeatherCompDeactivateBoostRequest{
			Reason: "mqtt command",
		}, nil
	case cmd.DeviceId == events.INPUT_NUMBER_ID_WC_BOOST_DURATION:
		value, err := strconv.ParseUint(cmd.Payload, 10, 16)
		if err != nil {
			return nil, err
		}
		return domain.WeatherCompSetBoostDurationRequest{
			Minutes: uint(value),
		}, nil
	case cmd.Command == "switch":
		return domain.WriteCoilRequest{
			RegisterId: cmd.DeviceId,
			Value:      cmd.Payload == "on",
		}, nil
	case cmd.Command == "number":
		value, err := strconv.ParseFloat(cmd.Payload, 64)
		if err != nil {
			return nil, err
		}
		return domain.WriteHoldingRegisterRequest{
			RegisterId: cmd.DeviceId,
			Value:      value,
		}, nil
	}
	return nil, nil
}
