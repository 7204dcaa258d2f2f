package mapper

// Mapper000 is NROM: fixed PRG, mirrored when the ROM declares a single
// 16KB bank. CHR is ROM unless the header declares zero banks, in which
// case the cartridge provides 8KB of CHR RAM.
type Mapper000 struct {
	PrgBanks uint8
	ChrBanks uint8
}

func (m *Mapper000) prgMask() uint16 {
	if m.PrgBanks > 1 {
		return 0x7FFF
	}
	return 0x3FFF
}

func (m *Mapper000) CpuMapRead(addr uint16) (uint32, bool) {
	if addr >= 0x8000 {
		return uint32(addr & m.prgMask()), true
	}
	return 0, false
}

func (m *Mapper000) CpuMapWrite(addr uint16, data uint8) (uint32, bool) {
	// PRG is ROM, writes land nowhere.
	return 0, false
}

func (m *Mapper000) PpuMapRead(addr uint16) (uint32, bool) {
	if addr <= 0x1FFF {
		return uint32(addr), true
	}
	return 0, false
}

func (m *Mapper000) PpuMapWrite(addr uint16) (uint32, bool) {
	if addr <= 0x1FFF && m.ChrBanks == 0 {
		return uint32(addr), true
	}
	return 0, false
}

func (m *Mapper000) Reset() {}

func (m *Mapper000) Mirror() Mirror { return Hardware }

func (m *Mapper000) State() []uint8 { return nil }

func (m *Mapper000) SetState([]uint8) {}
