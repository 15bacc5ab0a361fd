package aerona_modbus

import (
	"fmt"
	"sort"
)

type RegisterClass int

const (
	INPUT_REGISTER RegisterClass = iota
	HOLDING_REGISTER
	COIL
)

func (c RegisterClass) String() string {
	switch c {
	case INPUT_REGISTER:
		return "input"
	case HOLDING_REGISTER:
		return "holding"
	case COIL:
		return "coil"
	}
	return "unknown"
}

type RegisterCategory int

const (
	CategoryBasic RegisterCategory = iota
	CategoryZones
	CategoryDHW
	CategoryExternal
	CategoryAdvanced
	CategoryDiagnostic
)

func (c RegisterCategory) String() string {
	switch c {
	case CategoryBasic:
		return "basic"
	case CategoryZones:
		return "zones"
	case CategoryDHW:
		return "dhw"
	case CategoryExternal:
		return "external"
	case CategoryAdvanced:
		return "advanced"
	case CategoryDiagnostic:
		return "diagnostic"
	}
	return "unknown"
}

// RegisterDefinition describes a single heat pump register. Behavior is
// data: the poller, the write path and the MQTT entity builders are all
// driven from these fields, no per-register code exists anywhere else.
type RegisterDefinition struct {
	Id          string
	Address     uint16
	Class       RegisterClass
	Category    RegisterCategory
	Name        string
	Unit        string
	Scale       float64
	DeviceClass string
	// Write bounds in physical units. Only meaningful for holding registers.
	MinValue *float64
	MaxValue *float64
	// Display mapping for enum-like registers. Raw values outside the
	// mapping render as "Unknown (N)".
	EnumMapping map[uint16]string
	// When set, this feature gates the register regardless of category.
	RequiresFeature Feature
	HasFeatureGate  bool
	Signed          bool
}

func (def RegisterDefinition) Writable() bool {
	return def.Class != INPUT_REGISTER
}

// Catalog is the read-only set of register definitions, indexed by id and
// by (address, class).
type Catalog struct {
	byId      map[string]RegisterDefinition
	byAddress map[addressKey]RegisterDefinition
	ordered   []RegisterDefinition
}

type addressKey struct {
	address uint16
	class   RegisterClass
}

// NewCatalog builds a catalog from definitions. Duplicate ids and duplicate
// (address, class) pairs are build errors, never silent drops.
func NewCatalog(defs []RegisterDefinition) (*Catalog, error) {
	cat := &Catalog{
		byId:      make(map[string]RegisterDefinition, len(defs)),
		byAddress: make(map[addressKey]RegisterDefinition, len(defs)),
	}
	for _, def := range defs {
		if def.Id == "" {
			return nil, fmt.Errorf("register at address %d (%s) has no id", def.Address, def.Class)
		}
		if def.Scale == 0 {
			return nil, fmt.Errorf("register %q has zero scale", def.Id)
		}
		if _, dup := cat.byId[def.Id]; dup {
			return nil, fmt.Errorf("duplicate register id %q", def.Id)
		}
		key := addressKey{def.Address, def.Class}
		if other, dup := cat.byAddress[key]; dup {
			return nil, fmt.Errorf("registers %q and %q share %s address %d",
				other.Id, def.Id, def.Class, def.Address)
		}
		cat.byId[def.Id] = def
		cat.byAddress[key] = def
		cat.ordered = append(cat.ordered, def)
	}
	sort.Slice(cat.ordered, func(i, j int) bool {
		a, b := cat.ordered[i], cat.ordered[j]
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		return a.Address < b.Address
	})
	return cat, nil
}

func (cat *Catalog) Lookup(id string) (RegisterDefinition, bool) {
	def, ok := cat.byId[id]
	return def, ok
}

func (cat *Catalog) LookupByAddress(address uint16, class RegisterClass) (RegisterDefinition, bool) {
	def, ok := cat.byAddress[addressKey{address, class}]
	return def, ok
}

// All returns definitions sorted by class then address.
func (cat *Catalog) All() []RegisterDefinition {
	out := make([]RegisterDefinition, len(cat.ordered))
	copy(out, cat.ordered)
	return out
}

func (cat *Catalog) Len() int {
	return len(cat.ordered)
}
