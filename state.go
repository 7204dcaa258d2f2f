package famicore

import (
	"encoding/gob"
	"fmt"
	"io"
)

// Save states serialize every mutable entity of the machine through a gob
// stream behind a small versioned header. Saving and loading are only
// coherent between frames; the Console API offers no mid-frame entry point,
// so a snapshot is atomic relative to AdvanceFrame by construction.

const (
	stateMagic   = "FCSTATE"
	stateVersion = 1
)

type cpuState struct {
	A, X, Y, SP, Status uint8
	PC                  uint16
	Fetched             uint8
	AddrAbs, AddrRel    uint16
	Opcode              uint8
	TotalCycles         uint64
	NMIPending, IRQLine bool
}

type ppuState struct {
	TableName    [2][1024]uint8
	TablePattern [2][4096]uint8
	TablePalette [32]uint8

	Status, Mask, Control uint16
	VramAddr, TramAddr    uint16
	FineX                 uint8
	AddressLatch          uint8
	DataBuffer            uint8

	OAM     [256]uint8
	OAMAddr uint8

	Scanline, Cycle int16
	OddFrame        bool
	TotalDots       uint64
	FrameCount      uint64
	NMI             bool

	BgNextTileId, BgNextTileAttrib     uint8
	BgNextTileLsb, BgNextTileMsb       uint8
	BgShifterPatternLo                 uint16
	BgShifterPatternHi                 uint16
	BgShifterAttribLo                  uint16
	BgShifterAttribHi                  uint16
	SpriteScanline                     [8][4]uint8
	SpriteCount                        uint8
	SpriteShifterLo, SpriteShifterHi   [8]uint8
	SpriteZeroPossible, SpriteZeroHere bool

	Frames [2]Frame
	Back   int
}

type apuState struct {
	Registers    [0x18]uint8
	FiveStepMode bool
	IRQInhibit   bool
	FrameIRQ     bool
	FrameCycle   int
}

type controllerState struct {
	Buttons, Shift uint8
	Strobe         bool
}

type snapshot struct {
	Magic   string
	Version int

	CPU         cpuState
	PPU         ppuState
	APU         apuState
	RAM         [2048]uint8
	OpenBus     uint8
	Controllers [2]controllerState
	Mapper      []uint8
	ChrRAM      []uint8
}

func (c *CPU) state() cpuState {
	return cpuState{
		A: c.accumulator, X: c.xRegister, Y: c.yRegister,
		SP: c.stkp, Status: c.status, PC: c.pc,
		Fetched: c.fetched, AddrAbs: c.addrAbs, AddrRel: c.addrRel,
		Opcode: c.opcode, TotalCycles: c.totalCycles,
		NMIPending: c.nmiPending, IRQLine: c.irqLine,
	}
}

func (c *CPU) restore(s cpuState) {
	c.accumulator, c.xRegister, c.yRegister = s.A, s.X, s.Y
	c.stkp, c.status, c.pc = s.SP, s.Status, s.PC
	c.fetched, c.addrAbs, c.addrRel = s.Fetched, s.AddrAbs, s.AddrRel
	c.opcode, c.totalCycles = s.Opcode, s.TotalCycles
	c.nmiPending, c.irqLine = s.NMIPending, s.IRQLine
}

func (p *PPU) state() ppuState {
	return ppuState{
		TableName:    p.tableName,
		TablePattern: p.tablePattern,
		TablePalette: p.tablePalette,
		Status:       p.status.Reg,
		Mask:         p.mask.Reg,
		Control:      p.control.Reg,
		VramAddr:     p.vramAddr.Reg,
		TramAddr:     p.tramAddr.Reg,
		FineX:        p.fineX,
		AddressLatch: p.addressLatch,
		DataBuffer:   p.ppuDataBuffer,
		OAM:          p.oam,
		OAMAddr:      p.oamAddr,
		Scanline:     p.scanline,
		Cycle:        p.cycle,
		OddFrame:     p.oddFrame,
		TotalDots:    p.totalDots,
		FrameCount:   p.frameCount,
		NMI:          p.nmi,

		BgNextTileId:       p.bgNextTileId,
		BgNextTileAttrib:   p.bgNextTileAttrib,
		BgNextTileLsb:      p.bgNextTileLsb,
		BgNextTileMsb:      p.bgNextTileMsb,
		BgShifterPatternLo: p.bgShifterPatternLo,
		BgShifterPatternHi: p.bgShifterPatternHi,
		BgShifterAttribLo:  p.bgShifterAttribLo,
		BgShifterAttribHi:  p.bgShifterAttribHi,
		SpriteCount:        p.spriteCount,
		SpriteShifterLo:    p.spriteShifterPatternLo,
		SpriteShifterHi:    p.spriteShifterPatternHi,
		SpriteZeroPossible: p.spriteZeroHitPossible,
		SpriteZeroHere:     p.spriteZeroBeingRendered,
		SpriteScanline:     p.packSprites(),

		Frames: p.frames,
		Back:   p.back,
	}
}

func (p *PPU) packSprites() [8][4]uint8 {
	var out [8][4]uint8
	for i, s := range p.spriteScanline {
		out[i] = [4]uint8{s.y, s.id, s.attribute, s.x}
	}
	return out
}

func (p *PPU) restore(s ppuState) {
	p.tableName = s.TableName
	p.tablePattern = s.TablePattern
	p.tablePalette = s.TablePalette
	p.status.Reg = s.Status
	p.mask.Reg = s.Mask
	p.control.Reg = s.Control
	p.vramAddr.Reg = s.VramAddr
	p.tramAddr.Reg = s.TramAddr
	p.fineX = s.FineX
	p.addressLatch = s.AddressLatch
	p.ppuDataBuffer = s.DataBuffer
	p.oam = s.OAM
	p.oamAddr = s.OAMAddr
	p.scanline = s.Scanline
	p.cycle = s.Cycle
	p.oddFrame = s.OddFrame
	p.totalDots = s.TotalDots
	p.frameCount = s.FrameCount
	p.nmi = s.NMI
	p.frames = s.Frames
	p.back = s.Back

	p.bgNextTileId = s.BgNextTileId
	p.bgNextTileAttrib = s.BgNextTileAttrib
	p.bgNextTileLsb = s.BgNextTileLsb
	p.bgNextTileMsb = s.BgNextTileMsb
	p.bgShifterPatternLo = s.BgShifterPatternLo
	p.bgShifterPatternHi = s.BgShifterPatternHi
	p.bgShifterAttribLo = s.BgShifterAttribLo
	p.bgShifterAttribHi = s.BgShifterAttribHi
	p.spriteCount = s.SpriteCount
	p.spriteShifterPatternLo = s.SpriteShifterLo
	p.spriteShifterPatternHi = s.SpriteShifterHi
	p.spriteZeroHitPossible = s.SpriteZeroPossible
	p.spriteZeroBeingRendered = s.SpriteZeroHere
	for i, raw := range s.SpriteScanline {
		p.spriteScanline[i] = spriteEntry{y: raw[0], id: raw[1], attribute: raw[2], x: raw[3]}
	}
}

func (a *APU) state() apuState {
	return apuState{
		Registers:    a.registers,
		FiveStepMode: a.fiveStepMode,
		IRQInhibit:   a.irqInhibit,
		FrameIRQ:     a.frameIRQ,
		FrameCycle:   a.frameCycle,
	}
}

func (a *APU) restore(s apuState) {
	a.registers = s.Registers
	a.fiveStepMode = s.FiveStepMode
	a.irqInhibit = s.IRQInhibit
	a.frameIRQ = s.FrameIRQ
	a.frameCycle = s.FrameCycle
}

// SaveState writes a versioned snapshot of the whole machine.
func (n *Console) SaveState(w io.Writer) error {
	s := snapshot{
		Magic:   stateMagic,
		Version: stateVersion,
		CPU:     n.cpu.state(),
		PPU:     n.ppu.state(),
		APU:     n.apu.state(),
		RAM:     n.bus.cpuRam,
		OpenBus: n.bus.openBus,
		Mapper:  n.cartridge.mapper.State(),
	}
	for i, c := range n.bus.controllers {
		s.Controllers[i] = controllerState{Buttons: c.buttons, Shift: c.shift, Strobe: c.strobe}
	}
	if n.cartridge.chrRAM {
		s.ChrRAM = append([]uint8(nil), n.cartridge.chr...)
	}
	return gob.NewEncoder(w).Encode(&s)
}

// LoadState restores a snapshot written by SaveState. The console must be
// running the same cartridge the snapshot was taken from.
func (n *Console) LoadState(r io.Reader) error {
	var s snapshot
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return fmt.Errorf("decoding save state: %w", err)
	}
	if s.Magic != stateMagic {
		return fmt.Errorf("save state magic %q does not match %q", s.Magic, stateMagic)
	}
	if s.Version != stateVersion {
		return fmt.Errorf("save state version %d not supported", s.Version)
	}

	n.cpu.restore(s.CPU)
	n.ppu.restore(s.PPU)
	n.apu.restore(s.APU)
	n.bus.cpuRam = s.RAM
	n.bus.openBus = s.OpenBus
	n.bus.dmaStall = 0
	for i := range n.bus.controllers {
		c := n.bus.controllers[i]
		c.buttons = s.Controllers[i].Buttons
		c.shift = s.Controllers[i].Shift
		c.strobe = s.Controllers[i].Strobe
	}
	n.cartridge.mapper.SetState(s.Mapper)
	if n.cartridge.chrRAM && len(s.ChrRAM) == len(n.cartridge.chr) {
		copy(n.cartridge.chr, s.ChrRAM)
	}
	return nil
}
