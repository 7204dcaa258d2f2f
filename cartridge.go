package famicore

import (
	"famicore/mapper"
)

// Cartridge owns the raw PRG/CHR arrays and the mapper that translates bus
// addresses into them. It is built from an already-decoded RomInfo, so
// container parsing stays outside the emulation core.
type Cartridge struct {
	info   RomInfo
	prg    []uint8
	chr    []uint8
	chrRAM bool
	mapper mapper.Mapper
}

// NewCartridge assembles a cartridge from a decoded ROM description and its
// bank data. A zero CHR bank count means the board carries 8KB of CHR RAM.
func NewCartridge(info RomInfo, prg []uint8, chr []uint8) (*Cartridge, error) {
	m, err := mapper.New(info.MapperID, info.PrgBanks, info.ChrBanks)
	if err != nil {
		return nil, err
	}
	cart := &Cartridge{
		info:   info,
		prg:    prg,
		chr:    chr,
		mapper: m,
	}
	if info.ChrBanks == 0 {
		cart.chr = make([]uint8, chrBankSize)
		cart.chrRAM = true
	}
	cart.mapper.Reset()
	return cart, nil
}

// LoadCartridge decodes a .nes file and assembles the cartridge.
func LoadCartridge(path string) (*Cartridge, error) {
	info, prg, chr, err := LoadROMFile(path)
	if err != nil {
		return nil, err
	}
	return NewCartridge(info, prg, chr)
}

func (c *Cartridge) cpuRead(addr uint16) (uint8, bool) {
	if mapped, ok := c.mapper.CpuMapRead(addr); ok {
		return c.prg[mapped], true
	}
	return 0, false
}

func (c *Cartridge) cpuWrite(addr uint16, data uint8) bool {
	if mapped, ok := c.mapper.CpuMapWrite(addr, data); ok {
		c.prg[mapped] = data
		return true
	}
	// Bank-select writes already landed in mapper registers.
	return false
}

func (c *Cartridge) ppuRead(addr uint16) (uint8, bool) {
	if mapped, ok := c.mapper.PpuMapRead(addr); ok {
		return c.chr[mapped], true
	}
	return 0, false
}

func (c *Cartridge) ppuWrite(addr uint16, data uint8) bool {
	if mapped, ok := c.mapper.PpuMapWrite(addr); ok {
		c.chr[mapped] = data
		return true
	}
	return false
}

// Mirror resolves the active nametable arrangement: the mapper can override
// the hardware mirroring bit from the header.
func (c *Cartridge) Mirror() mapper.Mirror {
	if m := c.mapper.Mirror(); m != mapper.Hardware {
		return m
	}
	return c.info.Mirroring
}

func (c *Cartridge) reset() {
	c.mapper.Reset()
}
