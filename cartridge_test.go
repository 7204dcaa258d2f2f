package famicore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"famicore/mapper"
)

func TestCartridgeCHRRAM(t *testing.T) {
	info := RomInfo{MapperID: 0, PrgBanks: 1, ChrBanks: 0}
	cart, err := NewCartridge(info, make([]uint8, prgBankSize), nil)
	require.NoError(t, err)

	assert.True(t, cart.ppuWrite(0x0123, 0x5A))
	data, ok := cart.ppuRead(0x0123)
	require.True(t, ok)
	assert.Equal(t, uint8(0x5A), data)
}

func TestCartridgeCHRROMRejectsWrites(t *testing.T) {
	info := RomInfo{MapperID: 0, PrgBanks: 1, ChrBanks: 1}
	chr := make([]uint8, chrBankSize)
	chr[0x0123] = 0x77
	cart, err := NewCartridge(info, make([]uint8, prgBankSize), chr)
	require.NoError(t, err)

	assert.False(t, cart.ppuWrite(0x0123, 0x5A))
	data, ok := cart.ppuRead(0x0123)
	require.True(t, ok)
	assert.Equal(t, uint8(0x77), data)
}

func TestCartridgeMirrorFallsBackToHeader(t *testing.T) {
	info := RomInfo{MapperID: 0, PrgBanks: 1, ChrBanks: 1, Mirroring: mapper.Horizontal}
	cart, err := NewCartridge(info, make([]uint8, prgBankSize), make([]uint8, chrBankSize))
	require.NoError(t, err)

	assert.Equal(t, mapper.Horizontal, cart.Mirror())
}

func TestCartridgeUnknownMapper(t *testing.T) {
	info := RomInfo{MapperID: 99, PrgBanks: 1, ChrBanks: 1}
	_, err := NewCartridge(info, make([]uint8, prgBankSize), make([]uint8, chrBankSize))
	require.ErrorIs(t, err, mapper.ErrUnknownMapper)
}

func TestCartridgePRGReadThroughMapper(t *testing.T) {
	prg := make([]uint8, prgBankSize)
	prg[0x0010] = 0xAB
	info := RomInfo{MapperID: 0, PrgBanks: 1, ChrBanks: 1}
	cart, err := NewCartridge(info, prg, make([]uint8, chrBankSize))
	require.NoError(t, err)

	// Single bank mirrors across both CPU windows.
	lo, ok := cart.cpuRead(0x8010)
	require.True(t, ok)
	hi, ok := cart.cpuRead(0xC010)
	require.True(t, ok)
	assert.Equal(t, uint8(0xAB), lo)
	assert.Equal(t, lo, hi)
}
