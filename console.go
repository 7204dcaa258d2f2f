package famicore

// dotsPerCPUCycle is the fixed PPU:CPU clock ratio.
const dotsPerCPUCycle = 3

// Console wires the CPU, PPU, APU and Bus together and drives them in
// lockstep: one CPU instruction, then exactly three PPU dots per consumed
// cycle. The interleaving is part of the observable contract, so nothing
// here runs concurrently.
type Console struct {
	cpu       *CPU
	ppu       *PPU
	apu       *APU
	bus       *Bus
	cartridge *Cartridge
}

// Option configures a Console at construction time.
type Option func(*Console) error

// WithController wires a caller-owned controller into the given port.
func WithController(port int, controller *Controller) Option {
	return func(n *Console) error {
		n.bus.controllers[port&0x01] = controller
		return nil
	}
}

// NewConsole assembles a powered-on console around the given cartridge.
func NewConsole(cartridge *Cartridge, options ...Option) (*Console, error) {
	cpu := NewCPU()
	ppu := NewPPU()
	apu := NewAPU()
	bus := NewBus(cpu, ppu, apu)
	bus.insertCartridge(cartridge)

	n := &Console{
		cpu:       cpu,
		ppu:       ppu,
		apu:       apu,
		bus:       bus,
		cartridge: cartridge,
	}
	for _, option := range options {
		if err := option(n); err != nil {
			return nil, err
		}
	}
	n.Reset()
	return n, nil
}

// Reset performs a power-on reset: the CPU refetches the reset vector and
// the PPU restarts at the pre-render scanline.
func (n *Console) Reset() {
	n.bus.reset()
}

// stepInstruction runs one CPU instruction plus its DMA stall, then keeps
// the PPU and APU phase locked to the cycles that instruction consumed.
func (n *Console) stepInstruction() (int, error) {
	cycles, err := n.cpu.Step()
	if err != nil {
		return 0, err
	}
	if stall := n.bus.takeDMAStall(); stall > 0 {
		cycles += stall
		n.cpu.addStallCycles(stall)
	}

	for i := 0; i < cycles*dotsPerCPUCycle; i++ {
		n.ppu.Step()
	}
	n.apu.Tick(cycles)

	// Interrupts become visible to the CPU at the next instruction
	// boundary, never sooner.
	if n.ppu.takeNMI() {
		n.cpu.TriggerNMI()
	}
	n.cpu.SetIRQ(n.apu.IRQ())

	return cycles, nil
}

// AdvanceFrame runs the console until the PPU completes one full frame and
// returns the finished picture. Cancellation and save states align with
// these boundaries; there is no mid-frame suspension point.
func (n *Console) AdvanceFrame() (*Frame, error) {
	for {
		if _, err := n.stepInstruction(); err != nil {
			return nil, err
		}
		if n.ppu.takeFrameComplete() {
			return n.ppu.Frame(), nil
		}
	}
}

// StepInstruction executes a single instruction, for debuggers and tests.
func (n *Console) StepInstruction() (int, error) {
	return n.stepInstruction()
}

// CPU exposes the processor for front ends and tests.
func (n *Console) CPU() *CPU { return n.cpu }

// PPU exposes the picture unit for front ends and tests.
func (n *Console) PPU() *PPU { return n.ppu }

// Controller returns the joypad wired into the given port.
func (n *Console) Controller(port int) *Controller {
	return n.bus.controllers[port&0x01]
}

// ReadMemory performs a side-effect-free read of the CPU address space.
func (n *Console) ReadMemory(addr uint16) uint8 {
	return n.bus.cpuRead(addr, true)
}
