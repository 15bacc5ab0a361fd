package aerona_modbus

import (
	"time"

	"github.com/simonvetter/modbus"
	"go.uber.org/zap"
)

type ModbusInstrument struct {
	RecordTime func(fnName string, readTime time.Duration)
}

func (r *aeronaModbusReader) readRegister(addr uint16, regType modbus.RegType) (uint16, error) {
	defer RecordTimer("ReadRegister", r.instrument)()
	return r.client.ReadRegister(addr, regType)
}

func (r *aeronaModbusReader) readRegisters(addr uint16, quantity uint16, regType modbus.RegType) ([]uint16, error) {
	defer RecordTimer("ReadRegisters", r.instrument)()
	return r.client.ReadRegisters(addr, quantity, regType)
}

func (r *aeronaModbusReader) readCoil(addr uint16) (bool, error) {
	defer RecordTimer("ReadCoil", r.instrument)()
	return r.client.ReadCoil(addr)
}

func (r *aeronaModbusReader) writeRegister(addr uint16, value uint16) error {
	defer RecordTimer("WriteRegister", r.instrument)()
	return r.client.WriteRegister(addr, value)
}

func (r *aeronaModbusReader) writeCoil(addr uint16, value bool) error {
	defer RecordTimer("WriteCoil", r.instrument)()
	return r.client.WriteCoil(addr, value)
}

func RecordTimer(name string, instrument []ModbusInstrument) func() {
	if instrument == nil {
		return func() {}
	}

	start := time.Now()
	return func() {
		duration := time.Since(start)
		for i := range instrument {
			instrument[i].RecordTime(name, duration)
		}
	}
}

func traceLoggerInstrumentation(logger *zap.Logger) *ModbusInstrument {
	return &ModbusInstrument{
		RecordTime: func(fnName string, readTime time.Duration) {
			logger.Debug("modbus op", zap.String("fn", fnName), zap.Int64("millis", readTime.Milliseconds()))
		},
	}
}
