package server

import (
	"net/http"
	"time"

	"aerona2mqtt/internal/core/domain"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.GET("/weathercomp", s.WeatherCompStatusHandler)
	e.GET("/registers", s.EnabledRegistersHandler)

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

type weatherCompStatusDTO struct {
	Enabled          bool            `json:"enabled"`
	ActiveCurve      string          `json:"active_curve"`
	BoostActive      bool            `json:"boost_active"`
	BoostEndsAt      *string         `json:"boost_ends_at,omitempty"`
	BoostReason      string          `json:"boost_reason,omitempty"`
	LastOutdoorTemp  *float64        `json:"last_outdoor_temp,omitempty"`
	LastFlowTemp     *float64        `json:"last_flow_temp,omitempty"`
	CalculationCount uint64          `json:"calculation_count"`
	Curve            []curvePointDTO `json:"curve,omitempty"`
}

type curvePointDTO struct {
	OutdoorTemp float64 `json:"outdoor_temp"`
	FlowTemp    float64 `json:"flow_temp"`
}

func (s *Server) WeatherCompStatusHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.WeatherCompGetStatusRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "weather compensation status unavailable")
	}
	response, ok := res.(domain.WeatherCompGetStatusResponse)
	if !ok || response.HasResponseError() {
		return c.String(http.StatusServiceUnavailable, "weather compensation status unavailable")
	}
	status := response.Status
	dto := weatherCompStatusDTO{
		Enabled:          status.Enabled,
		ActiveCurve:      string(status.ActiveCurve),
		BoostActive:      status.BoostActive,
		BoostReason:      status.BoostReason,
		LastOutdoorTemp:  status.LastOutdoorTemp,
		LastFlowTemp:     status.LastFlowTemp,
		CalculationCount: status.CalculationCount,
	}
	if status.BoostActive {
		endsAt := status.BoostEndsAt.Format(time.RFC3339)
		dto.BoostEndsAt = &endsAt
	}
	for _, p := range response.Curve {
		dto.Curve = append(dto.Curve, curvePointDTO{OutdoorTemp: p.OutdoorTemp, FlowTemp: p.FlowTemp})
	}
	return c.JSON(http.StatusOK, dto)
}

type registerDTO struct {
	Id       string `json:"id"`
	Address  uint16 `json:"address"`
	Class    string `json:"class"`
	Category string `json:"category"`
	Name     string `json:"name"`
	Unit     string `json:"unit,omitempty"`
	Writable bool   `json:"writable"`
}

func (s *Server) EnabledRegistersHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.GetEnabledRegistersRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "registers unavailable")
	}
	response, ok := res.(domain.GetEnabledRegistersResponse)
	if !ok || response.HasResponseError() {
		return c.String(http.StatusServiceUnavailable, "registers unavailable")
	}
	dtos := make([]registerDTO, 0, len(response.Registers))
	for _, def := range response.Registers {
		dtos = append(dtos, registerDTO{
			Id:       def.Id,
			Address:  def.Address,
			Class:    def.Class.String(),
			Category: def.Category.String(),
			Name:     def.Name,
			Unit:     def.Unit,
			Writable: def.Writable(),
		})
	}
	return c.JSON(http.StatusOK, dtos)
}
