package domain

import "aerona2mqtt/pkg/aerona_modbus"

const (
	ACTOR_ID_MASTER       = "master"
	ACTOR_ID_MODBUS       = "modbus"
	ACTOR_ID_POLLER       = "poller"
	ACTOR_ID_MQTT         = "mqtt"
	ACTOR_ID_WEATHER_COMP = "weather_comp"
	ACTOR_ID_HA_DISCOVERY = "hadiscovery"
)

type GetHeatPumpInfoRequest struct {
	ActorRequestMixIn
}

type GetHeatPumpInfoResponse struct {
	ActorResponseMixIn
	Info *aerona_modbus.HeatPumpInfo
}

type GetRegisterSnapshotRequest struct {
	ActorRequestMixIn
}

type GetRegisterSnapshotResponse struct {
	ActorResponseMixIn
	Snapshot *aerona_modbus.RegisterSnapshot
}

type GetEnabledRegistersRequest struct {
	ActorRequestMixIn
}

type GetEnabledRegistersResponse struct {
	ActorResponseMixIn
	Registers []aerona_modbus.RegisterDefinition
}

type WriteHoldingRegisterRequest struct {
	ActorRequestMixIn
	RegisterId string
	Value      float64
}

type WriteHoldingRegisterResponse struct {
	ActorResponseMixIn
	RegisterId string
	Value      float64
}

type WriteCoilRequest struct {
	ActorRequestMixIn
	RegisterId string
	Value      bool
}

type WriteCoilResponse struct {
	ActorResponseMixIn
	RegisterId string
	Value      bool
}

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type PublishSensorUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  SensorUpdateEvent
}

type PublishSensorUpdateResponse struct {
	ActorResponseMixIn
}

type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Sensors      []GenericSensor
	Switches     []GenericSwitch
	InputNumbers []GenericInputNumber
}

type PublishDiscoveryResponse struct {
	ActorResponseMixIn
}

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
