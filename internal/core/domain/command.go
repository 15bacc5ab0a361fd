package domain

import "fmt"

// WeatherCompRequest

type WeatherCompRequest interface {
	ActorRequest
	WeatherCompCommand() string
}

type WeatherCompRequestMixIn struct {
	ActorRequestMixIn
}

func (r WeatherCompRequestMixIn) WeatherCompCommand() string {
	return fmt.Sprintf("%T", r)
}

// WeatherCompResponse

type WeatherCompResponse interface {
	ActorResponse
	WeatherCompResponse() string
}

type WeatherCompResponseMixIn struct {
	ActorResponseMixIn
}

func (r WeatherCompResponseMixIn) WeatherCompResponse() string {
	return fmt.Sprintf("%T", r)
}

// WeatherComp commands

type WeatherCompActivateBoostRequest struct {
	WeatherCompRequestMixIn
	DurationMinutes uint
	Reason          string
}

type WeatherCompActivateBoostResponse struct {
	WeatherCompResponseMixIn
	Changed bool
}

type WeatherCompDeactivateBoostRequest struct {
	WeatherCompRequestMixIn
	Reason string
}

type WeatherCompDeactivateBoostResponse struct {
	WeatherCompResponseMixIn
	Changed bool
}

type WeatherCompSetBoostDurationRequest struct {
	WeatherCompRequestMixIn
	Minutes uint
}

type WeatherCompSetBoostDurationResponse struct {
	WeatherCompResponseMixIn
	Minutes uint
}

type WeatherCompGetStatusRequest struct {
	WeatherCompRequestMixIn
}

type WeatherCompGetStatusResponse struct {
	WeatherCompResponseMixIn
	Status WeatherCompStatus
	Curve  []CurvePoint
}

type WeatherCompRecalculateRequest struct {
	WeatherCompRequestMixIn
}

type WeatherCompRecalculateResponse struct {
	WeatherCompResponseMixIn
	FlowTemp *float64
}

// ensure interface compliance
var _ WeatherCompRequest = (*WeatherCompActivateBoostRequest)(nil)
