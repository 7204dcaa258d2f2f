package famicore

import "fmt"

// DisassembledInstruction is one decoded line plus links to its neighbors,
// so a debug view can walk in both directions despite variable instruction
// lengths.
type DisassembledInstruction struct {
	Text     string
	NextAddr uint16
	PrevAddr uint16
}

// Disassemble decodes the address range using side-effect-free bus peeks
// and returns the lines keyed by instruction address.
func (c *CPU) Disassemble(start, stop uint16) map[uint16]DisassembledInstruction {
	lines := make(map[uint16]DisassembledInstruction)

	addr := uint32(start)
	prevAddr := uint16(0)
	for addr <= uint32(stop) {
		lineAddr := uint16(addr)
		opcode := c.bus.cpuRead(uint16(addr), true)
		addr++
		inst := &lookup[opcode]

		peek := func() uint8 {
			value := c.bus.cpuRead(uint16(addr), true)
			addr++
			return value
		}
		peek16 := func() uint16 {
			lo := uint16(peek())
			hi := uint16(peek())
			return (hi << 8) | lo
		}

		var operand string
		switch inst.AddrMode {
		case "IMP":
			operand = ""
		case "IMM":
			operand = fmt.Sprintf("#$%02X", peek())
		case "ZP0":
			operand = fmt.Sprintf("$%02X", peek())
		case "ZPX":
			operand = fmt.Sprintf("$%02X,X", peek())
		case "ZPY":
			operand = fmt.Sprintf("$%02X,Y", peek())
		case "IZX":
			operand = fmt.Sprintf("($%02X,X)", peek())
		case "IZY":
			operand = fmt.Sprintf("($%02X),Y", peek())
		case "ABS":
			operand = fmt.Sprintf("$%04X", peek16())
		case "ABX":
			operand = fmt.Sprintf("$%04X,X", peek16())
		case "ABY":
			operand = fmt.Sprintf("$%04X,Y", peek16())
		case "IND":
			operand = fmt.Sprintf("($%04X)", peek16())
		case "REL":
			rel := uint16(peek())
			if rel&0x80 != 0 {
				rel |= 0xFF00
			}
			operand = fmt.Sprintf("$%04X", uint16(addr)+rel)
		}

		text := fmt.Sprintf("$%04X: %s", lineAddr, inst.Name)
		if operand != "" {
			text += " " + operand
		}
		lines[lineAddr] = DisassembledInstruction{
			Text:     text,
			PrevAddr: prevAddr,
			NextAddr: uint16(addr),
		}
		prevAddr = lineAddr
	}
	return lines
}

// TraceLine formats the current CPU state as a one-line log entry.
func (c *CPU) TraceLine() string {
	return fmt.Sprintf("%04X A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d",
		c.pc, c.accumulator, c.xRegister, c.yRegister, c.status, c.stkp, c.totalCycles)
}
