package famicore

import (
	"fmt"
	"os"

	"famicore/mapper"
)

const (
	inesHeaderSize = 16
	trainerSize    = 512
	prgBankSize    = 16384
	chrBankSize    = 8192
)

var inesMagic = [4]byte{'N', 'E', 'S', 0x1A}

// RomInfo is the decoded cartridge description the core consumes.
type RomInfo struct {
	MapperID  uint8
	PrgBanks  uint8
	ChrBanks  uint8
	Mirroring mapper.Mirror
}

// DecodeINES validates an iNES image and splits it into its decoded
// description plus raw PRG and CHR data. Every validation failure wraps
// ErrMalformedROM with the check that failed.
func DecodeINES(data []byte) (RomInfo, []uint8, []uint8, error) {
	if len(data) < inesHeaderSize {
		return RomInfo{}, nil, nil, fmt.Errorf("%w: %d byte image is shorter than the 16 byte header", ErrMalformedROM, len(data))
	}
	if data[0] != inesMagic[0] || data[1] != inesMagic[1] || data[2] != inesMagic[2] || data[3] != inesMagic[3] {
		return RomInfo{}, nil, nil, fmt.Errorf("%w: bad magic %02x %02x %02x %02x", ErrMalformedROM, data[0], data[1], data[2], data[3])
	}

	info := RomInfo{
		PrgBanks: data[4],
		ChrBanks: data[5],
		MapperID: (data[7] & 0xF0) | (data[6] >> 4),
	}
	info.Mirroring = mapper.Horizontal
	if data[6]&0x01 != 0 {
		info.Mirroring = mapper.Vertical
	}
	if info.PrgBanks == 0 {
		return RomInfo{}, nil, nil, fmt.Errorf("%w: header declares zero 16KB program banks", ErrMalformedROM)
	}

	offset := inesHeaderSize
	if data[6]&0x04 != 0 {
		offset += trainerSize
	}

	prgSize := int(info.PrgBanks) * prgBankSize
	chrSize := int(info.ChrBanks) * chrBankSize
	if len(data) < offset+prgSize+chrSize {
		return RomInfo{}, nil, nil, fmt.Errorf("%w: header declares %d bytes of bank data but image holds %d",
			ErrMalformedROM, prgSize+chrSize, len(data)-offset)
	}

	prg := make([]uint8, prgSize)
	copy(prg, data[offset:offset+prgSize])
	chr := make([]uint8, chrSize)
	copy(chr, data[offset+prgSize:offset+prgSize+chrSize])
	return info, prg, chr, nil
}

// LoadROMFile reads and decodes a .nes file from disk.
func LoadROMFile(path string) (RomInfo, []uint8, []uint8, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RomInfo{}, nil, nil, err
	}
	return DecodeINES(data)
}
