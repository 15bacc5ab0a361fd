package port

import (
	"time"

	"aerona2mqtt/internal/core/domain"
)

type WeatherCompensationLogic interface {
	Calculate(outdoorTemp float64) domain.WeatherCompTickResult
	ActivateBoost(duration time.Duration, reason string) (bool, error)
	DeactivateBoost(reason string) bool
	Status() domain.WeatherCompStatus
	CurvePoints(samples int) []domain.CurvePoint
}
