package events

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	. "aerona2mqtt/internal/core/domain"
	"aerona2mqtt/pkg/aerona_modbus"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_WC_ACTIVE_CURVE    = "wc_active_curve"
	SENSOR_ID_WC_FLOW_TEMP       = "wc_flow_temp"
	SENSOR_ID_WC_ZONE2_FLOW_TEMP = "wc_zone2_flow_temp"
	SENSOR_ID_WC_BOOST_REMAINING = "wc_boost_remaining"

	SWITCH_ID_WC_BOOST = "wc_boost"

	INPUT_NUMBER_ID_WC_BOOST_DURATION = "wc_boost_duration"

	STATE_CLASS_MEASUREMENT      = "measurement"
	STATE_CLASS_TOTAL_INCREASING = "total_increasing"

	DEVICE_CLASS_TEMPERATURE  = "temperature"
	DEVICE_CLASS_DURATION     = "duration"
	DEVICE_CLASS_CONNECTIVITY = "connectivity"

	ENTITY_CLASS_DIAGNOSTIC = "diagnostic"

	INPUT_NUMBER_MODE_BOX = "box"
)

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("aerona_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "aerona2mqtt",
		Model:        "Aerona2MQTT",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("Aerona2MQTT %s", md5HashShort(baseTopic)),
	}
}

func HeatPumpDevice(info *aerona_modbus.HeatPumpInfo, host string) Device {
	serial := fmt.Sprintf("%s#%d", host, info.SlaveId)
	return Device{
		Id:           fmt.Sprintf("aerona_hp_%s", md5HashShort(serial)),
		Manufacturer: info.Manufacturer,
		Model:        info.Model,
		Name:         fmt.Sprintf("%s %s %s", info.Manufacturer, info.Model, md5HashShort(serial)),
	}
}

func IdDevice(device Device) Device {
	return Device{
		Id:   device.Id,
		Name: device.Name,
	}
}

// RegisterSensors builds sensor entities for the readable registers. Every
// entity is derived from the definition, there is no per-register code.
func RegisterSensors(device Device, defs []aerona_modbus.RegisterDefinition) []GenericSensor {
	var sensors []GenericSensor
	for _, def := range defs {
		if def.Class != aerona_modbus.INPUT_REGISTER {
			continue
		}
		sensor := GenericSensor{
			Device:            device,
			Id:                def.Id,
			SensorType:        SENSOR_TYPE_SENSOR,
			Name:              def.Name,
			UnitOfMeasurement: def.Unit,
			DeviceClass:       def.DeviceClass,
			UniqueId:          uniqueId(device.Id, def.Id),
		}
		switch {
		case len(def.EnumMapping) > 0:
			// enum registers publish their display text, no numeric state
		case def.Unit == "h":
			sensor.StateClass = STATE_CLASS_TOTAL_INCREASING
			sensor.DeviceClass = DEVICE_CLASS_DURATION
		default:
			sensor.StateClass = STATE_CLASS_MEASUREMENT
		}
		if def.Category == aerona_modbus.CategoryDiagnostic {
			sensor.EntityCategory = ENTITY_CLASS_DIAGNOSTIC
		}
		sensors = append(sensors, sensor)
	}
	return sensors
}

// RegisterSwitches builds a switch entity per enabled coil.
func RegisterSwitches(device Device, defs []aerona_modbus.RegisterDefinition) []GenericSwitch {
	var switches []GenericSwitch
	for _, def := range defs {
		if def.Class != aerona_modbus.COIL {
			continue
		}
		switches = append(switches, GenericSwitch{
			Device:   device,
			Id:       def.Id,
			Name:     def.Name,
			UniqueId: uniqueId(device.Id, def.Id),
			Icon:     "mdi:toggle-switch",
		})
	}
	return switches
}

// RegisterInputNumbers builds a number entity per enabled holding register,
// bounded by the register write limits and stepped at its resolution.
func RegisterInputNumbers(device Device, defs []aerona_modbus.RegisterDefinition) []GenericInputNumber {
	var numbers []GenericInputNumber
	for _, def := range defs {
		if def.Class != aerona_modbus.HOLDING_REGISTER {
			continue
		}
		number := GenericInputNumber{
			Device:   device,
			Id:       def.Id,
			Name:     def.Name,
			UniqueId: uniqueId(device.Id, def.Id),
			Step:     def.Scale,
			Mode:     INPUT_NUMBER_MODE_BOX,
		}
		if def.MinValue != nil {
			number.Min = *def.MinValue
		}
		if def.MaxValue != nil {
			number.Max = *def.MaxValue
		}
		numbers = append(numbers, number)
	}
	return numbers
}

func WeatherCompSensors(device Device) []GenericSensor {
	return []GenericSensor{
		{
			Device:     device,
			Id:         SENSOR_ID_WC_ACTIVE_CURVE,
			SensorType: SENSOR_TYPE_SENSOR,
			Name:       "Weather compensation active curve",
			Icon:       "mdi:chart-bell-curve",
			UniqueId:   uniqueId(device.Id, SENSOR_ID_WC_ACTIVE_CURVE),
		},
		{
			Device:            device,
			Id:                SENSOR_ID_WC_FLOW_TEMP,
			SensorType:        SENSOR_TYPE_SENSOR,
			Name:              "Weather compensation flow temperature",
			StateClass:        STATE_CLASS_MEASUREMENT,
			DeviceClass:       DEVICE_CLASS_TEMPERATURE,
			UnitOfMeasurement: "°C",
			UniqueId:          uniqueId(device.Id, SENSOR_ID_WC_FLOW_TEMP),
		},
		{
			Device:            device,
			Id:                SENSOR_ID_WC_ZONE2_FLOW_TEMP,
			SensorType:        SENSOR_TYPE_SENSOR,
			Name:              "Weather compensation zone 2 flow temperature",
			StateClass:        STATE_CLASS_MEASUREMENT,
			DeviceClass:       DEVICE_CLASS_TEMPERATURE,
			UnitOfMeasurement: "°C",
			UniqueId:          uniqueId(device.Id, SENSOR_ID_WC_ZONE2_FLOW_TEMP),
		},
		{
			Device:            device,
			Id:                SENSOR_ID_WC_BOOST_REMAINING,
			SensorType:        SENSOR_TYPE_SENSOR,
			Name:              "Boost time remaining",
			UnitOfMeasurement: "min",
			Icon:              "mdi:timer-sand",
			UniqueId:          uniqueId(device.Id, SENSOR_ID_WC_BOOST_REMAINING),
		},
	}
}

func WeatherCompSwitches(device Device) []GenericSwitch {
	return []GenericSwitch{
		{
			Device:   device,
			Id:       SWITCH_ID_WC_BOOST,
			Name:     "Heating boost",
			UniqueId: uniqueId(device.Id, SWITCH_ID_WC_BOOST),
			Icon:     "mdi:fire",
		},
	}
}

func WeatherCompInputNumbers(device Device) []GenericInputNumber {
	return []GenericInputNumber{
		{
			Device:       device,
			Id:           INPUT_NUMBER_ID_WC_BOOST_DURATION,
			Name:         "Boost duration",
			UniqueId:     uniqueId(device.Id, INPUT_NUMBER_ID_WC_BOOST_DURATION),
			Icon:         "mdi:timer-cog",
			Min:          10,
			Max:          480,
			Step:         10,
			Mode:         INPUT_NUMBER_MODE_BOX,
			InitialValue: 120,
		},
	}
}

func BridgeSensors(bridgeDevice Device) []GenericSensor {
	return []GenericSensor{
		{
			Device:         bridgeDevice,
			Id:             SENSOR_ID_BRIDGE_STATE,
			SensorType:     SENSOR_TYPE_BINARY,
			Name:           "Connection state",
			DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
			EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
			UniqueId:       uniqueId(bridgeDevice.Id, SENSOR_ID_BRIDGE_STATE),
		},
	}
}

// SnapshotToUpdateEvents converts a register snapshot into sensor update
// events, one per decoded register, in definition order.
func SnapshotToUpdateEvents(snapshot *aerona_modbus.RegisterSnapshot, defs []aerona_modbus.RegisterDefinition) []any {
	var events []any
	for _, def := range defs {
		value, ok := snapshot.Get(def.Id)
		if !ok {
			continue
		}
		switch {
		case len(def.EnumMapping) > 0:
			events = append(events, TextSensorUpdateEvent{
				SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: def.Id},
				Value:                  value.Display,
			})
		case def.Class == aerona_modbus.COIL:
			events = append(events, SwitchSensorUpdateEvent{
				SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: def.Id},
				Value:                  value.Value != 0,
			})
		case def.Class == aerona_modbus.HOLDING_REGISTER:
			events = append(events, InputNumberSensorUpdateEvent{
				SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: def.Id},
				Value:                  value.Value,
				Decimals:               decimalsFor(def),
			})
		default:
			events = append(events, FloatSensorUpdateEvent{
				SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: def.Id},
				Value:                  value.Value,
				Decimals:               decimalsFor(def),
			})
		}
	}
	return events
}

// WeatherCompStatusToUpdateEvents publishes the compensation engine state.
func WeatherCompStatusToUpdateEvents(status WeatherCompStatus, zone2FlowTemp *float64) []any {
	var events []any
	events = append(events, TextSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: SENSOR_ID_WC_ACTIVE_CURVE},
		Value:                  string(status.ActiveCurve),
	})
	events = append(events, SwitchSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: SWITCH_ID_WC_BOOST},
		Value:                  status.BoostActive,
	})
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: SENSOR_ID_WC_BOOST_REMAINING},
		Value:                  status.BoostRemaining.Round(time.Minute).Minutes(),
	})
	if status.LastFlowTemp != nil {
		events = append(events, FloatSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: SENSOR_ID_WC_FLOW_TEMP},
			Value:                  *status.LastFlowTemp,
			Decimals:               1,
		})
	}
	if zone2FlowTemp != nil {
		events = append(events, FloatSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: SENSOR_ID_WC_ZONE2_FLOW_TEMP},
			Value:                  *zone2FlowTemp,
			Decimals:               1,
		})
	}
	return events
}

func decimalsFor(def aerona_modbus.RegisterDefinition) uint {
	if def.Scale < 1 {
		return 1
	}
	return 0
}

func uniqueId(baseId, id string) string {
	return fmt.Sprintf("uid_%s_%s", baseId, id)
}

func md5Hash(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])
}

func md5HashShort(text string) string {
	hash := md5Hash(text)
	return hash[0:8]
}
