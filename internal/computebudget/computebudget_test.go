package computebudget

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInstructions(t *testing.T) {
	instructions, err := BuildInstructions(Config{Units: 400_000, UnitPrice: 5_000})
	require.NoError(t, err)
	require.Len(t, instructions, 2)

	limitData, err := instructions[0].Data()
	require.NoError(t, err)
	assert.Equal(t, SetComputeUnitLimit, limitData[0])
	assert.Equal(t, uint32(400_000), binary.LittleEndian.Uint32(limitData[1:5]))
	assert.Len(t, limitData, 5)

	priceData, err := instructions[1].Data()
	require.NoError(t, err)
	assert.Equal(t, SetComputeUnitPrice, priceData[0])
	assert.Equal(t, uint64(5_000), binary.LittleEndian.Uint64(priceData[1:9]))
	assert.Len(t, priceData, 9)
}

func TestBuildInstructions_ZeroPriceSkipsPriceInstruction(t *testing.T) {
	instructions, err := BuildInstructions(Config{Units: 200_000})
	require.NoError(t, err)
	assert.Len(t, instructions, 1)
}

func TestBuildInstructions_ZeroConfigUsesDefaults(t *testing.T) {
	instructions, err := BuildInstructions(Config{})
	require.NoError(t, err)
	assert.Len(t, instructions, 2)
}
