package mapper

// Mapper002 is UxROM: the $8000-$BFFF window selects a 16KB PRG bank, the
// $C000-$FFFF window is fixed to the last bank.
type Mapper002 struct {
	PrgBanks uint8
	ChrBanks uint8

	prgBankLo uint8
	prgBankHi uint8
}

func (m *Mapper002) CpuMapRead(addr uint16) (uint32, bool) {
	if addr >= 0x8000 && addr <= 0xBFFF {
		return uint32(m.prgBankLo)*0x4000 + uint32(addr&0x3FFF), true
	}
	if addr >= 0xC000 {
		return uint32(m.prgBankHi)*0x4000 + uint32(addr&0x3FFF), true
	}
	return 0, false
}

func (m *Mapper002) CpuMapWrite(addr uint16, data uint8) (uint32, bool) {
	if addr >= 0x8000 {
		m.prgBankLo = data & 0x0F
	}
	return 0, false
}

func (m *Mapper002) PpuMapRead(addr uint16) (uint32, bool) {
	if addr <= 0x1FFF {
		return uint32(addr), true
	}
	return 0, false
}

func (m *Mapper002) PpuMapWrite(addr uint16) (uint32, bool) {
	if addr <= 0x1FFF && m.ChrBanks == 0 {
		return uint32(addr), true
	}
	return 0, false
}

func (m *Mapper002) Reset() {
	m.prgBankLo = 0
	m.prgBankHi = m.PrgBanks - 1
}

func (m *Mapper002) Mirror() Mirror { return Hardware }

func (m *Mapper002) State() []uint8 { return []uint8{m.prgBankLo, m.prgBankHi} }

func (m *Mapper002) SetState(s []uint8) {
	if len(s) == 2 {
		m.prgBankLo, m.prgBankHi = s[0], s[1]
	}
}
