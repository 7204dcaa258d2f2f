package mapper

// Mapper003 is CNROM: fixed PRG like NROM plus a switchable 8KB CHR bank.
type Mapper003 struct {
	PrgBanks uint8
	ChrBanks uint8

	chrBank uint8
}

func (m *Mapper003) CpuMapRead(addr uint16) (uint32, bool) {
	if addr >= 0x8000 {
		if m.PrgBanks > 1 {
			return uint32(addr & 0x7FFF), true
		}
		return uint32(addr & 0x3FFF), true
	}
	return 0, false
}

func (m *Mapper003) CpuMapWrite(addr uint16, data uint8) (uint32, bool) {
	if addr >= 0x8000 {
		m.chrBank = data & 0x03
	}
	return 0, false
}

func (m *Mapper003) PpuMapRead(addr uint16) (uint32, bool) {
	if addr <= 0x1FFF {
		return uint32(m.chrBank)*0x2000 + uint32(addr), true
	}
	return 0, false
}

func (m *Mapper003) PpuMapWrite(addr uint16) (uint32, bool) {
	// CHR is always ROM on CNROM boards.
	return 0, false
}

func (m *Mapper003) Reset() {
	m.chrBank = 0
}

func (m *Mapper003) Mirror() Mirror { return Hardware }

func (m *Mapper003) State() []uint8 { return []uint8{m.chrBank} }

func (m *Mapper003) SetState(s []uint8) {
	if len(s) == 1 {
		m.chrBank = s[0]
	}
}
