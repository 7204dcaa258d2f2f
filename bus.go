package famicore

// Bus is the single resolver for the CPU address space. Dispatch order
// follows the hardware: the cartridge gets first claim on every access,
// then internal RAM, the PPU register window, and the APU/IO range.
// Unmapped reads return the last value driven on the data lines.
type Bus struct {
	cpuRam      [2048]uint8
	cpu         *CPU
	ppu         *PPU
	apu         *APU
	cartridge   *Cartridge
	controllers [2]*Controller

	openBus  uint8
	dmaStall int
}

func NewBus(cpu *CPU, ppu *PPU, apu *APU) *Bus {
	bus := &Bus{
		cpu: cpu,
		ppu: ppu,
		apu: apu,
		controllers: [2]*Controller{
			NewController(),
			NewController(),
		},
	}
	cpu.connectBus(bus)
	return bus
}

func (b *Bus) insertCartridge(cartridge *Cartridge) {
	b.cartridge = cartridge
	b.ppu.connectCartridge(cartridge)
}

func (b *Bus) cpuWrite(addr uint16, data uint8) {
	b.openBus = data

	if b.cartridge != nil && b.cartridge.cpuWrite(addr, data) {
		return
	}

	switch {
	case addr <= 0x1FFF:
		b.cpuRam[addr&0x07FF] = data
	case addr <= 0x3FFF:
		b.ppu.cpuWrite(addr&0x0007, data)
	case addr == 0x4014:
		b.oamDMA(data)
	case addr == 0x4016:
		b.controllers[0].write(data)
		b.controllers[1].write(data)
	case addr <= 0x4017:
		b.apu.cpuWrite(addr, data)
	}
}

func (b *Bus) cpuRead(addr uint16, readOnly bool) uint8 {
	if b.cartridge != nil {
		if data, ok := b.cartridge.cpuRead(addr); ok {
			if !readOnly {
				b.openBus = data
			}
			return data
		}
	}

	switch {
	case addr <= 0x1FFF:
		data := b.cpuRam[addr&0x07FF]
		if !readOnly {
			b.openBus = data
		}
		return data
	case addr <= 0x3FFF:
		data := b.ppu.cpuRead(addr&0x0007, readOnly)
		if !readOnly {
			b.openBus = data
		}
		return data
	case addr == 0x4015:
		if readOnly {
			return b.openBus
		}
		data := b.apu.readStatus()
		b.openBus = data
		return data
	case addr == 0x4016 || addr == 0x4017:
		if readOnly {
			return b.openBus
		}
		// Only the serial data line is driven, the rest is open bus.
		data := (b.openBus & 0xE0) | b.controllers[addr&0x0001].read()
		b.openBus = data
		return data
	}

	return b.openBus
}

// oamDMA copies one 256-byte page into PPU OAM and stalls the CPU for 513
// cycles, 514 when the write lands on an odd CPU cycle.
func (b *Bus) oamDMA(page uint8) {
	base := uint16(page) << 8
	for i := uint16(0); i < 256; i++ {
		b.ppu.writeOAMByte(b.cpuRead(base+i, false))
	}
	b.dmaStall = 513
	if b.cpu.totalCycles%2 == 1 {
		b.dmaStall++
	}
}

// takeDMAStall consumes the pending DMA stall so the scheduler can account
// the stolen cycles exactly once.
func (b *Bus) takeDMAStall() int {
	stall := b.dmaStall
	b.dmaStall = 0
	return stall
}

func (b *Bus) reset() {
	if b.cartridge != nil {
		b.cartridge.reset()
	}
	b.cpu.Reset()
	b.ppu.reset()
	b.apu.reset()
	b.openBus = 0
	b.dmaStall = 0
}
