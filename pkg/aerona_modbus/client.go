package aerona_modbus

import (
	"fmt"
	"time"

	"github.com/simonvetter/modbus"
	"go.uber.org/zap"
)

// ConnectionError means the heat pump could not be reached at all. The
// whole cycle is lost, nothing device-specific can be concluded.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("heat pump unreachable at %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// DeviceError means the connection worked but the unit rejected or failed
// a single register operation.
type DeviceError struct {
	RegisterId string
	Err        error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device error on register %s: %v", e.RegisterId, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

type HeatPumpInfo struct {
	Manufacturer string
	Model        string
	SlaveId      uint8
	Registers    int
}

// RegisterSnapshot is the result of one poll cycle. Values carried over
// from the previous cycle after a failed read have Cached set.
type RegisterSnapshot struct {
	Values map[string]RegisterValue
	ReadAt time.Time
	// Partial is set when at least one enabled register is missing or cached.
	Partial bool
}

func (s *RegisterSnapshot) Get(id string) (RegisterValue, bool) {
	v, ok := s.Values[id]
	return v, ok
}

type HeatPumpModbusReader interface {
	GetInfo() (*HeatPumpInfo, error)
	// ReadSnapshot connects, reads every enabled register and disconnects.
	ReadSnapshot() (*RegisterSnapshot, error)
	// WriteHolding writes a physical value to a holding register by id.
	WriteHolding(id string, value float64) error
	WriteCoil(id string, on bool) error
	EnabledRegisters() []RegisterDefinition
}

type aeronaModbusReader struct {
	client     *modbus.ModbusClient
	addr       string
	slaveId    uint8
	catalog    *Catalog
	enabled    []RegisterDefinition
	blocks     []RegisterBlock
	lastValues map[string]RegisterValue
	instrument []ModbusInstrument
	logger     *zap.Logger
}

// CreateAeronaModbusReader builds a reader for one heat pump. The TCP
// connection is opened per operation and closed right after, the Aerona3
// service port drops idle clients and accepts a single session.
func CreateAeronaModbusReader(ip string, port uint, slaveId uint8, timeout time.Duration,
	catalog *Catalog, features FeatureSet, logger *zap.Logger, instrumentation *ModbusInstrument) (HeatPumpModbusReader, error) {
	addr := fmt.Sprintf("tcp://%s:%d", ip, port)
	client, err := modbus.NewClient(&modbus.ClientConfiguration{
		URL:     addr,
		Timeout: timeout,
	})
	if err != nil {
		return nil, err
	}
	if err := client.SetUnitId(slaveId); err != nil {
		return nil, err
	}
	// instrumentation
	var inst []ModbusInstrument
	logInst := traceLoggerInstrumentation(logger.With(zap.String("target", "heatpump")).With(zap.Uint8("slaveId", slaveId)))
	if logInst != nil {
		inst = append(inst, *logInst)
	}
	if instrumentation != nil {
		inst = append(inst, *instrumentation)
	}

	enabled := ResolveEnabled(catalog, features)
	reader := &aeronaModbusReader{
		client:     client,
		addr:       addr,
		slaveId:    slaveId,
		catalog:    catalog,
		enabled:    enabled,
		blocks:     GroupBlocks(enabled),
		lastValues: make(map[string]RegisterValue),
		instrument: inst,
		logger:     logger,
	}
	return reader, nil
}

func (r *aeronaModbusReader) EnabledRegisters() []RegisterDefinition {
	out := make([]RegisterDefinition, len(r.enabled))
	copy(out, r.enabled)
	return out
}

// GetInfo reports the unit identity after one probe read on the wire, so
// an unreachable or misaddressed pump fails here instead of on the first
// poll cycle.
func (r *aeronaModbusReader) GetInfo() (*HeatPumpInfo, error) {
	if err := r.probe(); err != nil {
		return nil, err
	}
	return &HeatPumpInfo{
		Manufacturer: "Grant",
		Model:        "Aerona3",
		SlaveId:      r.slaveId,
		Registers:    len(r.enabled),
	}, nil
}

// probe performs a single register round trip against the unit.
func (r *aeronaModbusReader) probe() error {
	if len(r.enabled) == 0 {
		return nil
	}
	def := r.enabled[0]
	return r.withConnection(func() error {
		var err error
		switch def.Class {
		case COIL:
			_, err = r.readCoil(def.Address)
		case HOLDING_REGISTER:
			_, err = r.readRegister(def.Address, modbus.HOLDING_REGISTER)
		default:
			_, err = r.readRegister(def.Address, modbus.INPUT_REGISTER)
		}
		if err != nil {
			return &DeviceError{RegisterId: def.Id, Err: err}
		}
		return nil
	})
}

// withConnection opens the TCP session, runs fn and always closes.
func (r *aeronaModbusReader) withConnection(fn func() error) error {
	if err := r.client.Open(); err != nil {
		return &ConnectionError{Addr: r.addr, Err: err}
	}
	defer func() {
		_ = r.client.Close()
	}()
	return fn()
}

func (r *aeronaModbusReader) ReadSnapshot() (*RegisterSnapshot, error) {
	snap := &RegisterSnapshot{
		Values: make(map[string]RegisterValue, len(r.enabled)),
		ReadAt: time.Now(),
	}
	err := r.withConnection(func() error {
		r.readInputBlocks(snap)
		r.readIndividual(snap)
		return nil
	})
	if err != nil {
		return nil, err
	}
	for id, v := range snap.Values {
		if !v.Cached {
			r.lastValues[id] = v
		}
	}
	return snap, nil
}

// readInputBlocks bulk-reads the grouped input ranges. A failed block
// falls back to the cached values of its registers.
func (r *aeronaModbusReader) readInputBlocks(snap *RegisterSnapshot) {
	for _, block := range r.blocks {
		words, err := r.readRegisters(block.Start, block.Count, modbus.INPUT_REGISTER)
		if err != nil {
			r.logger.Warn("input block read failed, serving cached values",
				zap.Uint16("start", block.Start), zap.Uint16("count", block.Count), zap.Error(err))
			r.fallbackBlock(snap, block)
			continue
		}
		for i, raw := range words {
			// blocks only span adjacent enabled registers, every word maps
			def, known := r.catalog.LookupByAddress(block.Start+uint16(i), INPUT_REGISTER)
			if !known {
				continue
			}
			r.decodeInto(snap, def, raw)
		}
	}
}

// readIndividual reads holding registers and coils one by one.
func (r *aeronaModbusReader) readIndividual(snap *RegisterSnapshot) {
	for _, def := range r.enabled {
		switch def.Class {
		case HOLDING_REGISTER:
			raw, err := r.readRegister(def.Address, modbus.HOLDING_REGISTER)
			if err != nil {
				r.fallbackOne(snap, def.Id)
				continue
			}
			r.decodeInto(snap, def, raw)
		case COIL:
			on, err := r.readCoil(def.Address)
			if err != nil {
				r.fallbackOne(snap, def.Id)
				continue
			}
			var raw uint16
			if on {
				raw = 1
			}
			r.decodeInto(snap, def, raw)
		}
	}
}

func (r *aeronaModbusReader) decodeInto(snap *RegisterSnapshot, def RegisterDefinition, raw uint16) {
	val, err := DecodeValue(def, raw, snap.ReadAt)
	if err != nil {
		r.logger.Warn("discarding implausible register value", zap.Error(err))
		r.fallbackOne(snap, def.Id)
		return
	}
	snap.Values[def.Id] = val
}

func (r *aeronaModbusReader) fallbackBlock(snap *RegisterSnapshot, block RegisterBlock) {
	for addr := block.Start; addr < block.Start+block.Count; addr++ {
		if def, known := r.catalog.LookupByAddress(addr, INPUT_REGISTER); known {
			r.fallbackOne(snap, def.Id)
		}
	}
}

func (r *aeronaModbusReader) fallbackOne(snap *RegisterSnapshot, id string) {
	snap.Partial = true
	if last, ok := r.lastValues[id]; ok {
		last.Cached = true
		snap.Values[id] = last
	}
}

func (r *aeronaModbusReader) WriteHolding(id string, value float64) error {
	def, ok := r.catalog.Lookup(id)
	if !ok {
		return fmt.Errorf("unknown register id %q", id)
	}
	if def.Class != HOLDING_REGISTER {
		return fmt.Errorf("register %s is not a holding register", id)
	}
	raw, err := EncodeValue(def, value)
	if err != nil {
		return err
	}
	return r.withConnection(func() error {
		if err := r.writeRegister(def.Address, raw); err != nil {
			return &DeviceError{RegisterId: id, Err: err}
		}
		return nil
	})
}

func (r *aeronaModbusReader) WriteCoil(id string, on bool) error {
	def, ok := r.catalog.Lookup(id)
	if !ok {
		return fmt.Errorf("unknown register id %q", id)
	}
	if def.Class != COIL {
		return fmt.Errorf("register %s is not a coil", id)
	}
	return r.withConnection(func() error {
		if err := r.writeCoil(def.Address, on); err != nil {
			return &DeviceError{RegisterId: id, Err: err}
		}
		return nil
	})
}
