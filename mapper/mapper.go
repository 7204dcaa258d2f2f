package mapper

import (
	"errors"
	"fmt"
)

// ErrUnknownMapper is returned by New for mapper ids with no implementation.
var ErrUnknownMapper = errors.New("unknown mapper")

type Mirror uint8

const (
	Hardware Mirror = iota
	Horizontal
	Vertical
	OneScreenLo
	OneScreenHi
)

// Mapper translates logical cartridge addresses into offsets inside the raw
// PRG/CHR arrays owned by the cartridge. Map calls return ok=false when the
// address does not land in cartridge storage; writes into bank-select ranges
// mutate mapper registers and report ok=false so storage stays untouched.
type Mapper interface {
	CpuMapRead(addr uint16) (uint32, bool)
	CpuMapWrite(addr uint16, data uint8) (uint32, bool)
	PpuMapRead(addr uint16) (uint32, bool)
	PpuMapWrite(addr uint16) (uint32, bool)
	Reset()

	// Mirror reports the nametable arrangement, Hardware when the solder
	// pads on the board decide (i.e. the iNES header bit applies).
	Mirror() Mirror

	// State exposes the bank registers for save states. SetState must
	// accept exactly what State produced.
	State() []uint8
	SetState([]uint8)
}

// New builds the mapper for an iNES mapper id.
func New(id uint8, prgBanks uint8, chrBanks uint8) (Mapper, error) {
	switch id {
	case 0:
		return &Mapper000{PrgBanks: prgBanks, ChrBanks: chrBanks}, nil
	case 2:
		return &Mapper002{PrgBanks: prgBanks, ChrBanks: chrBanks}, nil
	case 3:
		return &Mapper003{PrgBanks: prgBanks, ChrBanks: chrBanks}, nil
	}
	return nil, fmt.Errorf("%w: id %d", ErrUnknownMapper, id)
}
