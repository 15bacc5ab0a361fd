package aerona_modbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestGetInfoFailsWhenUnitUnreachable(t *testing.T) {
	catalog, err := DefaultCatalog()
	assert.NoError(t, err)

	// port 1 refuses immediately, no heat pump listens there
	reader, err := CreateAeronaModbusReader("127.0.0.1", 1, 1, 200*time.Millisecond,
		catalog, FeatureSet{}, zap.NewNop(), nil)
	assert.NoError(t, err)

	_, err = reader.GetInfo()
	assert.Error(t, err)
	var cerr *ConnectionError
	assert.ErrorAs(t, err, &cerr)
}

func TestGetInfoReportsEnabledRegisterCount(t *testing.T) {
	reader, err := CreateTestHeatPumpModbusReader(FeatureSet{DHWCylinder: true})
	assert.NoError(t, err)

	info, err := reader.GetInfo()
	assert.NoError(t, err)
	assert.Equal(t, "Aerona3", info.Model)
	assert.Equal(t, len(reader.EnabledRegisters()), info.Registers)

	reader.FailInfo = true
	_, err = reader.GetInfo()
	assert.Error(t, err)
}
