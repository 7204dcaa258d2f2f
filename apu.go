package famicore

// Frame counter quarter-frame boundaries in CPU cycles.
const (
	frameStep1 = 7457
	frameStep2 = 14913
	frameStep3 = 22371
	frameStep4 = 29829
)

// APU holds the audio register file and the frame counter. Sample synthesis
// lives outside the core; what must stay in here is everything that reaches
// CPU timing, which is the frame-counter IRQ and the $4015 status bits.
type APU struct {
	registers [0x18]uint8

	fiveStepMode bool
	irqInhibit   bool
	frameIRQ     bool
	frameCycle   int
}

func NewAPU() *APU {
	return &APU{}
}

func (a *APU) cpuWrite(addr uint16, data uint8) {
	if addr < 0x4000 || addr > 0x4017 {
		return
	}
	a.registers[addr-0x4000] = data

	switch addr {
	case 0x4015:
		// Channel enables; no IRQ side effect for the frame counter.
	case 0x4017:
		a.fiveStepMode = data&0x80 != 0
		a.irqInhibit = data&0x40 != 0
		if a.irqInhibit {
			a.frameIRQ = false
		}
		a.frameCycle = 0
	}
}

// readStatus implements the $4015 read: bit 6 reports the frame IRQ and
// reading acknowledges it.
func (a *APU) readStatus() uint8 {
	status := a.registers[0x15] & 0x1F
	if a.frameIRQ {
		status |= 0x40
	}
	a.frameIRQ = false
	return status
}

// Tick advances the frame counter by the given number of CPU cycles. In
// 4-step mode the final step raises the frame IRQ unless inhibited.
func (a *APU) Tick(cpuCycles int) {
	for i := 0; i < cpuCycles; i++ {
		a.frameCycle++
		if a.fiveStepMode {
			if a.frameCycle >= 37281 {
				a.frameCycle = 0
			}
			continue
		}
		if a.frameCycle >= frameStep4 {
			if !a.irqInhibit {
				a.frameIRQ = true
			}
			a.frameCycle = 0
		}
	}
}

// IRQ reports whether the frame-counter interrupt line is asserted.
func (a *APU) IRQ() bool {
	return a.frameIRQ
}

func (a *APU) reset() {
	a.registers = [0x18]uint8{}
	a.fiveStepMode = false
	a.irqInhibit = false
	a.frameIRQ = false
	a.frameCycle = 0
}
