package famicore

import "fmt"

const (
	stackBase = uint16(0x0100)

	vectorNMI   = uint16(0xFFFA)
	vectorReset = uint16(0xFFFC)
	vectorIRQ   = uint16(0xFFFE)

	interruptCycles = 7
)

type CPUFlag uint8

const (
	C = CPUFlag(1 << 0)
	Z = CPUFlag(1 << 1)
	I = CPUFlag(1 << 2)
	D = CPUFlag(1 << 3)
	B = CPUFlag(1 << 4)
	U = CPUFlag(1 << 5)
	V = CPUFlag(1 << 6)
	N = CPUFlag(1 << 7)
)

// CPU is the 6502 core. All memory traffic goes through the connected Bus;
// interrupt lines are sampled only at Step boundaries.
type CPU struct {
	accumulator uint8
	xRegister   uint8
	yRegister   uint8
	stkp        uint8
	pc          uint16
	status      uint8

	fetched uint8
	addrAbs uint16
	addrRel uint16
	opcode  uint8
	cycles  uint8

	totalCycles uint64

	nmiPending bool
	irqLine    bool

	bus *Bus
}

func NewCPU() *CPU {
	return &CPU{}
}

func (c *CPU) connectBus(bus *Bus) {
	c.bus = bus
}

// Addressing modes. Each returns 1 when indexing crossed a page and the
// instruction may owe an extra cycle.

var addressModes = map[string]func(*CPU) uint8{
	"IMP": imp,
	"IMM": imm,
	"ZP0": zp0,
	"ZPX": zpx,
	"ZPY": zpy,
	"REL": rel,
	"ABS": abs,
	"ABX": abx,
	"ABY": aby,
	"IND": ind,
	"IZX": izx,
	"IZY": izy,
}

func imp(c *CPU) uint8 {
	c.fetched = c.accumulator
	return 0
}

func imm(c *CPU) uint8 {
	c.addrAbs = c.pc
	c.pc++
	return 0
}

func zp0(c *CPU) uint8 {
	c.addrAbs = uint16(c.read(c.pc)) & 0x00FF
	c.pc++
	return 0
}

func zpx(c *CPU) uint8 {
	c.addrAbs = (uint16(c.read(c.pc)) + uint16(c.xRegister)) & 0x00FF
	c.pc++
	return 0
}

func zpy(c *CPU) uint8 {
	c.addrAbs = (uint16(c.read(c.pc)) + uint16(c.yRegister)) & 0x00FF
	c.pc++
	return 0
}

func rel(c *CPU) uint8 {
	c.addrRel = uint16(c.read(c.pc))
	c.pc++
	if c.addrRel&0x80 != 0 {
		c.addrRel |= 0xFF00
	}
	return 0
}

func abs(c *CPU) uint8 {
	lo := c.read(c.pc)
	c.pc++
	hi := c.read(c.pc)
	c.pc++
	c.addrAbs = (uint16(hi) << 8) | uint16(lo)
	return 0
}

func abx(c *CPU) uint8 {
	lo := c.read(c.pc)
	c.pc++
	hi := c.read(c.pc)
	c.pc++

	c.addrAbs = (uint16(hi) << 8) | uint16(lo)
	c.addrAbs += uint16(c.xRegister)

	if (c.addrAbs & 0xFF00) != (uint16(hi) << 8) {
		return 1
	}
	return 0
}

func aby(c *CPU) uint8 {
	lo := c.read(c.pc)
	c.pc++
	hi := c.read(c.pc)
	c.pc++

	c.addrAbs = (uint16(hi) << 8) | uint16(lo)
	c.addrAbs += uint16(c.yRegister)

	if (c.addrAbs & 0xFF00) != (uint16(hi) << 8) {
		return 1
	}
	return 0
}

func ind(c *CPU) uint8 {
	ptrLo := c.read(c.pc)
	c.pc++
	ptrHi := c.read(c.pc)
	c.pc++

	ptr := (uint16(ptrHi) << 8) | uint16(ptrLo)
	if ptrLo == 0xFF {
		// 6502 page-boundary bug: the high byte is fetched from the
		// start of the same page, not the next one.
		c.addrAbs = (uint16(c.read(ptr&0xFF00)) << 8) | uint16(c.read(ptr))
		return 0
	}

	c.addrAbs = (uint16(c.read(ptr+1)) << 8) | uint16(c.read(ptr))
	return 0
}

func izx(c *CPU) uint8 {
	t := uint16(c.read(c.pc))
	c.pc++

	lo := uint16(c.read((t + uint16(c.xRegister)) & 0x00FF))
	hi := uint16(c.read((t + uint16(c.xRegister) + 1) & 0x00FF))
	c.addrAbs = (hi << 8) | lo
	return 0
}

func izy(c *CPU) uint8 {
	t := uint16(c.read(c.pc))
	c.pc++

	lo := uint16(c.read(t & 0x00FF))
	hi := uint16(c.read((t + 1) & 0x00FF))

	c.addrAbs = (hi << 8) | lo
	c.addrAbs += uint16(c.yRegister)

	if (c.addrAbs & 0xFF00) != (hi << 8) {
		return 1
	}
	return 0
}

// Operations. A return of 1 means the instruction pays the page-cross
// penalty when the addressing mode reported one; stores return 0.

var operations = map[string]func(*CPU) uint8{
	"ADC": adc, "SBC": sbc, "AND": and, "ASL": asl,
	"BCC": bcc, "BCS": bcs, "BEQ": beq, "BIT": bit,
	"BMI": bmi, "BNE": bne, "BPL": bpl, "BRK": brk,
	"BVC": bvc, "BVS": bvs, "CLC": clc, "CLD": cld,
	"CLI": cli, "CLV": clv, "CMP": cmp, "CPX": cpx,
	"CPY": cpy, "DEC": dec, "DEX": dex, "DEY": dey,
	"EOR": eor, "INC": inc, "INX": inx, "INY": iny,
	"JMP": jmp, "JSR": jsr, "LDA": lda, "LDX": ldx,
	"LDY": ldy, "LSR": lsr, "NOP": nop, "ORA": ora,
	"PHA": pha, "PHP": php, "PLA": pla, "PLP": plp,
	"ROL": rol, "ROR": ror, "RTI": rti, "RTS": rts,
	"SEC": sec, "SED": sed, "SEI": sei, "STA": sta,
	"STX": stx, "STY": sty, "TAX": tax, "TAY": tay,
	"TSX": tsx, "TXA": txa, "TXS": txs, "TYA": tya,
}

func adc(c *CPU) uint8 {
	c.fetch()
	temp := uint16(c.accumulator) + uint16(c.fetched) + uint16(c.getFlag(C))
	c.setFlag(C, temp > 255)
	c.setFlag(Z, (temp&0x00FF) == 0)
	overflow := ((^(uint16(c.accumulator) ^ uint16(c.fetched))) & (uint16(c.accumulator) ^ temp)) & 0x0080
	c.setFlag(V, overflow != 0)
	c.setFlag(N, (temp&0x80) != 0)
	c.accumulator = uint8(temp & 0x00FF)
	return 1
}

func sbc(c *CPU) uint8 {
	c.fetch()
	value := uint16(c.fetched) ^ 0x00FF
	temp := uint16(c.accumulator) + value + uint16(c.getFlag(C))
	c.setFlag(C, (temp&0xFF00) != 0)
	c.setFlag(Z, (temp&0x00FF) == 0)
	c.setFlag(V, ((temp^uint16(c.accumulator))&(temp^value)&0x0080) != 0)
	c.setFlag(N, temp&0x0080 != 0)
	c.accumulator = uint8(temp & 0x00FF)
	return 1
}

func and(c *CPU) uint8 {
	c.fetch()
	c.accumulator &= c.fetched
	c.setZN(c.accumulator)
	return 1
}

func asl(c *CPU) uint8 {
	c.fetch()
	temp := uint16(c.fetched) << 1
	c.setFlag(C, (temp&0xFF00) != 0)
	c.setFlag(Z, (temp&0x00FF) == 0)
	c.setFlag(N, temp&0x80 != 0)
	if lookup[c.opcode].AddrMode == "IMP" {
		c.accumulator = uint8(temp & 0x00FF)
		return 0
	}
	c.write(c.addrAbs, uint8(temp&0x00FF))
	return 0
}

func (c *CPU) branch() {
	c.cycles++
	c.addrAbs = c.pc + c.addrRel
	if (c.addrAbs & 0xFF00) != (c.pc & 0xFF00) {
		c.cycles++
	}
	c.pc = c.addrAbs
}

func bcc(c *CPU) uint8 {
	if c.getFlag(C) == 0 {
		c.branch()
	}
	return 0
}

func bcs(c *CPU) uint8 {
	if c.getFlag(C) == 1 {
		c.branch()
	}
	return 0
}

func beq(c *CPU) uint8 {
	if c.getFlag(Z) == 1 {
		c.branch()
	}
	return 0
}

func bit(c *CPU) uint8 {
	c.fetch()
	temp := c.accumulator & c.fetched
	c.setFlag(Z, temp == 0)
	c.setFlag(N, c.fetched&(1<<7) != 0)
	c.setFlag(V, c.fetched&(1<<6) != 0)
	return 0
}

func bmi(c *CPU) uint8 {
	if c.getFlag(N) == 1 {
		c.branch()
	}
	return 0
}

func bne(c *CPU) uint8 {
	if c.getFlag(Z) == 0 {
		c.branch()
	}
	return 0
}

func bpl(c *CPU) uint8 {
	if c.getFlag(N) == 0 {
		c.branch()
	}
	return 0
}

func brk(c *CPU) uint8 {
	c.pc++
	c.push16(c.pc)

	// The stacked P carries the pre-interrupt I; the flag is raised
	// only after the push.
	c.setFlag(B, true)
	c.push(c.status)
	c.setFlag(B, false)
	c.setFlag(I, true)

	c.pc = c.read16(vectorIRQ)
	return 0
}

func bvc(c *CPU) uint8 {
	if c.getFlag(V) == 0 {
		c.branch()
	}
	return 0
}

func bvs(c *CPU) uint8 {
	if c.getFlag(V) == 1 {
		c.branch()
	}
	return 0
}

func clc(c *CPU) uint8 {
	c.setFlag(C, false)
	return 0
}

func cld(c *CPU) uint8 {
	c.setFlag(D, false)
	return 0
}

func cli(c *CPU) uint8 {
	c.setFlag(I, false)
	return 0
}

func clv(c *CPU) uint8 {
	c.setFlag(V, false)
	return 0
}

func cmp(c *CPU) uint8 {
	c.fetch()
	temp := uint16(c.accumulator) - uint16(c.fetched)
	c.setFlag(C, c.accumulator >= c.fetched)
	c.setFlag(Z, (temp&0x00FF) == 0)
	c.setFlag(N, (temp&0x0080) != 0)
	return 1
}

func cpx(c *CPU) uint8 {
	c.fetch()
	temp := uint16(c.xRegister) - uint16(c.fetched)
	c.setFlag(C, c.xRegister >= c.fetched)
	c.setFlag(Z, (temp&0x00FF) == 0)
	c.setFlag(N, (temp&0x0080) != 0)
	return 0
}

func cpy(c *CPU) uint8 {
	c.fetch()
	temp := uint16(c.yRegister) - uint16(c.fetched)
	c.setFlag(C, c.yRegister >= c.fetched)
	c.setFlag(Z, (temp&0x00FF) == 0)
	c.setFlag(N, (temp&0x0080) != 0)
	return 0
}

func dec(c *CPU) uint8 {
	c.fetch()
	temp := c.fetched - 1
	c.write(c.addrAbs, temp)
	c.setZN(temp)
	return 0
}

func dex(c *CPU) uint8 {
	c.xRegister--
	c.setZN(c.xRegister)
	return 0
}

func dey(c *CPU) uint8 {
	c.yRegister--
	c.setZN(c.yRegister)
	return 0
}

func eor(c *CPU) uint8 {
	c.fetch()
	c.accumulator ^= c.fetched
	c.setZN(c.accumulator)
	return 1
}

func inc(c *CPU) uint8 {
	c.fetch()
	temp := c.fetched + 1
	c.write(c.addrAbs, temp)
	c.setZN(temp)
	return 0
}

func inx(c *CPU) uint8 {
	c.xRegister++
	c.setZN(c.xRegister)
	return 0
}

func iny(c *CPU) uint8 {
	c.yRegister++
	c.setZN(c.yRegister)
	return 0
}

func jmp(c *CPU) uint8 {
	c.pc = c.addrAbs
	return 0
}

func jsr(c *CPU) uint8 {
	c.pc--
	c.push16(c.pc)
	c.pc = c.addrAbs
	return 0
}

func lda(c *CPU) uint8 {
	c.fetch()
	c.accumulator = c.fetched
	c.setZN(c.accumulator)
	return 1
}

func ldx(c *CPU) uint8 {
	c.fetch()
	c.xRegister = c.fetched
	c.setZN(c.xRegister)
	return 1
}

func ldy(c *CPU) uint8 {
	c.fetch()
	c.yRegister = c.fetched
	c.setZN(c.yRegister)
	return 1
}

func lsr(c *CPU) uint8 {
	c.fetch()
	c.setFlag(C, c.fetched&0x01 != 0)
	temp := c.fetched >> 1
	c.setZN(temp)
	if lookup[c.opcode].AddrMode == "IMP" {
		c.accumulator = temp
		return 0
	}
	c.write(c.addrAbs, temp)
	return 0
}

func nop(c *CPU) uint8 {
	return 0
}

func ora(c *CPU) uint8 {
	c.fetch()
	c.accumulator |= c.fetched
	c.setZN(c.accumulator)
	return 1
}

func pha(c *CPU) uint8 {
	c.push(c.accumulator)
	return 0
}

func php(c *CPU) uint8 {
	c.push(c.status | uint8(B) | uint8(U))
	c.setFlag(B, false)
	c.setFlag(U, false)
	return 0
}

func pla(c *CPU) uint8 {
	c.accumulator = c.pop()
	c.setZN(c.accumulator)
	return 0
}

func plp(c *CPU) uint8 {
	c.status = c.pop()
	c.setFlag(U, true)
	return 0
}

func rol(c *CPU) uint8 {
	c.fetch()
	temp := (uint16(c.fetched) << 1) | uint16(c.getFlag(C))
	c.setFlag(C, (temp&0xFF00) != 0)
	c.setFlag(Z, (temp&0x00FF) == 0)
	c.setFlag(N, (temp&0x0080) != 0)
	if lookup[c.opcode].AddrMode == "IMP" {
		c.accumulator = uint8(temp & 0x00FF)
		return 0
	}
	c.write(c.addrAbs, uint8(temp&0x00FF))
	return 0
}

func ror(c *CPU) uint8 {
	c.fetch()
	temp := (uint16(c.getFlag(C)) << 7) | (uint16(c.fetched) >> 1)
	c.setFlag(C, c.fetched&0x01 != 0)
	c.setFlag(Z, (temp&0x00FF) == 0)
	c.setFlag(N, temp&0x0080 != 0)
	if lookup[c.opcode].AddrMode == "IMP" {
		c.accumulator = uint8(temp & 0x00FF)
		return 0
	}
	c.write(c.addrAbs, uint8(temp&0x00FF))
	return 0
}

func rti(c *CPU) uint8 {
	c.status = c.pop()
	c.status &= ^uint8(B)
	c.status &= ^uint8(U)
	c.pc = c.pop16()
	return 0
}

func rts(c *CPU) uint8 {
	c.pc = c.pop16() + 1
	return 0
}

func sec(c *CPU) uint8 {
	c.setFlag(C, true)
	return 0
}

func sed(c *CPU) uint8 {
	c.setFlag(D, true)
	return 0
}

func sei(c *CPU) uint8 {
	c.setFlag(I, true)
	return 0
}

func sta(c *CPU) uint8 {
	c.write(c.addrAbs, c.accumulator)
	return 0
}

func stx(c *CPU) uint8 {
	c.write(c.addrAbs, c.xRegister)
	return 0
}

func sty(c *CPU) uint8 {
	c.write(c.addrAbs, c.yRegister)
	return 0
}

func tax(c *CPU) uint8 {
	c.xRegister = c.accumulator
	c.setZN(c.xRegister)
	return 0
}

func tay(c *CPU) uint8 {
	c.yRegister = c.accumulator
	c.setZN(c.yRegister)
	return 0
}

func tsx(c *CPU) uint8 {
	c.xRegister = c.stkp
	c.setZN(c.xRegister)
	return 0
}

func txa(c *CPU) uint8 {
	c.accumulator = c.xRegister
	c.setZN(c.accumulator)
	return 0
}

func txs(c *CPU) uint8 {
	c.stkp = c.xRegister
	return 0
}

func tya(c *CPU) uint8 {
	c.accumulator = c.yRegister
	c.setZN(c.accumulator)
	return 0
}

// Flag and stack helpers.

func (c *CPU) getFlag(flag CPUFlag) uint8 {
	if c.status&uint8(flag) != 0 {
		return 1
	}
	return 0
}

func (c *CPU) setFlag(flag CPUFlag, v bool) {
	if v {
		c.status |= uint8(flag)
	} else {
		c.status &= ^uint8(flag)
	}
}

func (c *CPU) setZN(value uint8) {
	c.setFlag(Z, value == 0)
	c.setFlag(N, value&0x80 != 0)
}

func (c *CPU) fetch() uint8 {
	if lookup[c.opcode].AddrMode != "IMP" {
		c.fetched = c.read(c.addrAbs)
	}
	return c.fetched
}

func (c *CPU) read(addr uint16) uint8 {
	return c.bus.cpuRead(addr, false)
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := uint16(c.read(addr))
	hi := uint16(c.read(addr + 1))
	return (hi << 8) | lo
}

func (c *CPU) write(addr uint16, data uint8) {
	c.bus.cpuWrite(addr, data)
}

func (c *CPU) push(data uint8) {
	c.write(stackBase+uint16(c.stkp), data)
	c.stkp--
}

func (c *CPU) push16(value uint16) {
	c.push(uint8(value >> 8))
	c.push(uint8(value & 0x00FF))
}

func (c *CPU) pop() uint8 {
	c.stkp++
	return c.read(stackBase + uint16(c.stkp))
}

func (c *CPU) pop16() uint16 {
	lo := uint16(c.pop())
	hi := uint16(c.pop())
	return (hi << 8) | lo
}

// Interrupt lines.

// TriggerNMI arms the non-maskable interrupt. The line is edge sensitive:
// arming it twice before the next Step still services it once.
func (c *CPU) TriggerNMI() {
	c.nmiPending = true
}

// SetIRQ drives the level-sensitive interrupt request line.
func (c *CPU) SetIRQ(asserted bool) {
	c.irqLine = asserted
}

func (c *CPU) interrupt(vector uint16) {
	c.push16(c.pc)

	c.setFlag(B, false)
	c.setFlag(U, true)
	c.push(c.status)
	c.setFlag(I, true)

	c.pc = c.read16(vector)
}

// Step executes exactly one instruction, or services a pending interrupt,
// and returns the cycles consumed. The PC never moves mid-call.
func (c *CPU) Step() (int, error) {
	if c.nmiPending {
		c.nmiPending = false
		c.interrupt(vectorNMI)
		c.totalCycles += interruptCycles
		return interruptCycles, nil
	}
	if c.irqLine && c.getFlag(I) == 0 {
		c.interrupt(vectorIRQ)
		c.totalCycles += interruptCycles
		return interruptCycles, nil
	}

	c.opcode = c.read(c.pc)
	inst := &lookup[c.opcode]
	if inst.Name == unknownMnemonic {
		return 0, fmt.Errorf("%w: $%02X at $%04X", ErrUnknownOpcode, c.opcode, c.pc)
	}

	c.setFlag(U, true)
	c.pc++
	c.cycles = inst.Cycles

	additionalCycle1 := addressModes[inst.AddrMode](c)
	additionalCycle2 := operations[inst.Name](c)
	c.cycles += additionalCycle1 & additionalCycle2
	c.setFlag(U, true)

	c.totalCycles += uint64(c.cycles)
	return int(c.cycles), nil
}

// addStallCycles accounts cycles stolen from the CPU by DMA so the cycle
// counter keeps matching what the rest of the machine observed.
func (c *CPU) addStallCycles(n int) {
	c.totalCycles += uint64(n)
}

// Reset loads the PC from the reset vector and restores power-on register
// state.
func (c *CPU) Reset() {
	c.pc = c.read16(vectorReset)

	c.accumulator = 0
	c.xRegister = 0
	c.yRegister = 0
	c.stkp = 0xFD
	c.status = uint8(U) | uint8(I)

	c.addrRel = 0
	c.addrAbs = 0
	c.fetched = 0

	c.nmiPending = false
	c.irqLine = false
	c.totalCycles = 0
}

// Register accessors for front ends and tests.

func (c *CPU) PC() uint16 { return c.pc }

func (c *CPU) A() uint8 { return c.accumulator }

func (c *CPU) X() uint8 { return c.xRegister }

func (c *CPU) Y() uint8 { return c.yRegister }

func (c *CPU) SP() uint8 { return c.stkp }

func (c *CPU) Status() uint8 { return c.status }

func (c *CPU) Cycles() uint64 { return c.totalCycles }

func (c *CPU) Flag(f CPUFlag) bool { return c.status&uint8(f) != 0 }
