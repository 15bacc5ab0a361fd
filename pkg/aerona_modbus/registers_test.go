package aerona_modbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultCatalogBuilds(t *testing.T) {
	catalog, err := DefaultCatalog()
	assert.NoError(t, err)
	assert.Greater(t, catalog.Len(), 40)

	def, ok := catalog.Lookup("outdoor_temp")
	assert.True(t, ok)
	assert.Equal(t, uint16(6), def.Address)
	assert.Equal(t, INPUT_REGISTER, def.Class)

	byAddr, ok := catalog.LookupByAddress(6, INPUT_REGISTER)
	assert.True(t, ok)
	assert.Equal(t, "outdoor_temp", byAddr.Id)

	// same address, different class, different register
	coil, ok := catalog.LookupByAddress(6, COIL)
	assert.True(t, ok)
	assert.Equal(t, "dhw_enable", coil.Id)
}

func TestEnumRegistersCarryUnitScale(t *testing.T) {
	catalog, err := DefaultCatalog()
	assert.NoError(t, err)

	enums := 0
	for _, def := range catalog.All() {
		if len(def.EnumMapping) == 0 {
			continue
		}
		enums++
		assert.Equal(t, 1.0, def.Scale, def.Id)
		val, derr := DecodeValue(def, 1, time.Now())
		assert.NoError(t, derr, def.Id)
		assert.Equal(t, 1.0, val.Value, def.Id)
	}
	assert.Equal(t, 3, enums)
}

func TestCatalogRejectsZeroScale(t *testing.T) {
	_, err := NewCatalog([]RegisterDefinition{
		{Id: "a", Address: 1, Class: INPUT_REGISTER},
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "zero scale")
}

func TestCatalogRejectsDuplicateAddress(t *testing.T) {
	_, err := NewCatalog([]RegisterDefinition{
		{Id: "a", Address: 6, Class: COIL, Scale: 1},
		{Id: "b", Address: 6, Class: COIL, Scale: 1},
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "share coil address 6")
}

func TestCatalogRejectsDuplicateId(t *testing.T) {
	_, err := NewCatalog([]RegisterDefinition{
		{Id: "a", Address: 1, Class: COIL, Scale: 1},
		{Id: "a", Address: 2, Class: COIL, Scale: 1},
	})
	assert.Error(t, err)
}

func TestCatalogAllowsSameAddressAcrossClasses(t *testing.T) {
	cat, err := NewCatalog([]RegisterDefinition{
		{Id: "a", Address: 6, Class: COIL, Scale: 1},
		{Id: "b", Address: 6, Class: INPUT_REGISTER, Scale: 1},
		{Id: "c", Address: 6, Class: HOLDING_REGISTER, Scale: 1},
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, cat.Len())
}

func TestInputRegistersNotWritable(t *testing.T) {
	catalog, err := DefaultCatalog()
	assert.NoError(t, err)
	for _, def := range catalog.All() {
		if def.Class == INPUT_REGISTER {
			assert.False(t, def.Writable(), def.Id)
		} else {
			assert.True(t, def.Writable(), def.Id)
		}
	}
}
