package famicore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"famicore/mapper"
)

func buildINES(prgBanks, chrBanks uint8, flags6, flags7 uint8) []byte {
	header := make([]byte, inesHeaderSize)
	copy(header, inesMagic[:])
	header[4] = prgBanks
	header[5] = chrBanks
	header[6] = flags6
	header[7] = flags7

	image := append([]byte{}, header...)
	image = append(image, make([]byte, int(prgBanks)*prgBankSize)...)
	image = append(image, make([]byte, int(chrBanks)*chrBankSize)...)
	return image
}

func TestDecodeINES(t *testing.T) {
	image := buildINES(2, 1, 0x01, 0x00)
	image[inesHeaderSize] = 0x42

	info, prg, chr, err := DecodeINES(image)
	require.NoError(t, err)

	assert.Equal(t, uint8(0), info.MapperID)
	assert.Equal(t, uint8(2), info.PrgBanks)
	assert.Equal(t, uint8(1), info.ChrBanks)
	assert.Equal(t, mapper.Vertical, info.Mirroring)
	assert.Len(t, prg, 2*prgBankSize)
	assert.Len(t, chr, chrBankSize)
	assert.Equal(t, uint8(0x42), prg[0])
}

func TestDecodeINESMapperNibbles(t *testing.T) {
	// Mapper id is split across flags 6 and 7 high nibbles.
	image := buildINES(1, 1, 0x20, 0x40)

	info, _, _, err := DecodeINES(image)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x42), info.MapperID)
}

func TestDecodeINESSkipsTrainer(t *testing.T) {
	header := make([]byte, inesHeaderSize)
	copy(header, inesMagic[:])
	header[4] = 1
	header[6] = 0x04

	image := append([]byte{}, header...)
	image = append(image, make([]byte, trainerSize)...)
	prg := make([]byte, prgBankSize)
	prg[0] = 0x99
	image = append(image, prg...)

	_, gotPrg, _, err := DecodeINES(image)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x99), gotPrg[0])
}

func TestDecodeINESRejectsShortImage(t *testing.T) {
	_, _, _, err := DecodeINES([]byte{'N', 'E', 'S'})
	require.ErrorIs(t, err, ErrMalformedROM)
}

func TestDecodeINESRejectsBadMagic(t *testing.T) {
	image := buildINES(1, 1, 0, 0)
	image[0] = 'X'

	_, _, _, err := DecodeINES(image)
	require.ErrorIs(t, err, ErrMalformedROM)
}

func TestDecodeINESRejectsZeroPRG(t *testing.T) {
	_, _, _, err := DecodeINES(buildINES(0, 1, 0, 0))
	require.ErrorIs(t, err, ErrMalformedROM)
}

func TestDecodeINESRejectsTruncatedBanks(t *testing.T) {
	image := buildINES(2, 1, 0, 0)
	image = image[:len(image)-1]

	_, _, _, err := DecodeINES(image)
	require.ErrorIs(t, err, ErrMalformedROM)
}
