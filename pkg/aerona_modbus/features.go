package aerona_modbus

import "sort"

// Feature identifies an installation capability that gates registers.
type Feature int

const (
	FeatureNone Feature = iota
	FeatureZone2
	FeatureDHWCylinder
	FeatureExternalOutdoorSensor
	FeatureHumiditySensor
	FeatureBackupHeater
	FeatureFlowMetering
	FeatureCirculationPump
)

func (f Feature) String() string {
	switch f {
	case FeatureZone2:
		return "zone_2"
	case FeatureDHWCylinder:
		return "dhw_cylinder"
	case FeatureExternalOutdoorSensor:
		return "external_outdoor_sensor"
	case FeatureHumiditySensor:
		return "humidity_sensor"
	case FeatureBackupHeater:
		return "backup_heater"
	case FeatureFlowMetering:
		return "flow_metering"
	case FeatureCirculationPump:
		return "circulation_pump"
	}
	return "none"
}

// FeatureSet is the resolved installation profile. Zero value means the
// minimal installation: single zone, no DHW, nothing optional.
type FeatureSet struct {
	Zone2                 bool
	DHWCylinder           bool
	ExternalOutdoorSensor bool
	HumiditySensor        bool
	BackupHeater          bool
	FlowMetering          bool
	CirculationPump       bool
	AdvancedFeatures      bool
	DiagnosticMonitoring  bool
}

func (fs FeatureSet) Has(f Feature) bool {
	switch f {
	case FeatureZone2:
		return fs.Zone2
	case FeatureDHWCylinder:
		return fs.DHWCylinder
	case FeatureExternalOutdoorSensor:
		return fs.ExternalOutdoorSensor
	case FeatureHumiditySensor:
		return fs.HumiditySensor
	case FeatureBackupHeater:
		return fs.BackupHeater
	case FeatureFlowMetering:
		return fs.FlowMetering
	case FeatureCirculationPump:
		return fs.CirculationPump
	}
	return false
}

// categoryEnabled is the default policy for registers without an explicit
// feature gate. Basic never reaches here, it is always on.
func (fs FeatureSet) categoryEnabled(cat RegisterCategory) bool {
	switch cat {
	case CategoryZones:
		return true
	case CategoryDHW:
		return fs.DHWCylinder
	case CategoryExternal:
		return true
	case CategoryAdvanced:
		return fs.AdvancedFeatures
	case CategoryDiagnostic:
		return fs.DiagnosticMonitoring
	}
	return false
}

// RegisterEnabled decides whether a single definition is active for this
// installation. An explicit feature gate wins over the category policy.
func (fs FeatureSet) RegisterEnabled(def RegisterDefinition) bool {
	if def.Category == CategoryBasic {
		return true
	}
	if def.HasFeatureGate {
		return fs.Has(def.RequiresFeature)
	}
	return fs.categoryEnabled(def.Category)
}

// ResolveEnabled computes the active register set for an installation.
// Pure function of (catalog, features): same inputs, same output, in
// catalog order.
func ResolveEnabled(cat *Catalog, fs FeatureSet) []RegisterDefinition {
	var enabled []RegisterDefinition
	for _, def := range cat.All() {
		if fs.RegisterEnabled(def) {
			enabled = append(enabled, def)
		}
	}
	return enabled
}

// RegisterBlock is a contiguous address range read in one modbus request.
type RegisterBlock struct {
	Start uint16
	Count uint16
}

// GroupBlocks merges sorted input register addresses into blocks of
// strictly adjacent addresses, so a block never reads a word no enabled
// register claims. Holding registers and coils are read individually and
// never grouped.
func GroupBlocks(defs []RegisterDefinition) []RegisterBlock {
	var addrs []uint16
	for _, def := range defs {
		if def.Class == INPUT_REGISTER {
			addrs = append(addrs, def.Address)
		}
	}
	if len(addrs) == 0 {
		return nil
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	var blocks []RegisterBlock
	current := RegisterBlock{Start: addrs[0], Count: 1}
	for _, addr := range addrs[1:] {
		end := current.Start + current.Count - 1
		if addr <= end+1 {
			current.Count = addr - current.Start + 1
		} else {
			blocks = append(blocks, current)
			current = RegisterBlock{Start: addr, Count: 1}
		}
	}
	return append(blocks, current)
}
