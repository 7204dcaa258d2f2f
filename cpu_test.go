package famicore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"famicore/mapper"
)

// newTestConsole builds an NROM console whose reset vector points at the
// given program, loaded at $8000.
func newTestConsole(t *testing.T, program ...uint8) *Console {
	t.Helper()

	prg := make([]uint8, prgBankSize)
	copy(prg, program)
	// Reset at $8000, NMI at $8100, IRQ at $8200.
	prg[0x3FFA] = 0x00
	prg[0x3FFB] = 0x81
	prg[0x3FFC] = 0x00
	prg[0x3FFD] = 0x80
	prg[0x3FFE] = 0x00
	prg[0x3FFF] = 0x82

	info := RomInfo{MapperID: 0, PrgBanks: 1, ChrBanks: 1, Mirroring: mapper.Vertical}
	cart, err := NewCartridge(info, prg, make([]uint8, chrBankSize))
	require.NoError(t, err)

	console, err := NewConsole(cart)
	require.NoError(t, err)
	return console
}

func stepN(t *testing.T, n *Console, count int) int {
	t.Helper()
	total := 0
	for i := 0; i < count; i++ {
		cycles, err := n.cpu.Step()
		require.NoError(t, err)
		total += cycles
	}
	return total
}

func TestLDAImmediate(t *testing.T) {
	n := newTestConsole(t, 0xA9, 0x05)

	cycles := stepN(t, n, 1)

	assert.Equal(t, 2, cycles)
	assert.Equal(t, uint8(0x05), n.cpu.A())
	assert.False(t, n.cpu.Flag(Z))
	assert.False(t, n.cpu.Flag(N))
}

func TestLDAZeroFlag(t *testing.T) {
	n := newTestConsole(t, 0xA9, 0x00)

	stepN(t, n, 1)

	assert.Equal(t, uint8(0x00), n.cpu.A())
	assert.True(t, n.cpu.Flag(Z))
	assert.False(t, n.cpu.Flag(N))
}

func TestTAX(t *testing.T) {
	n := newTestConsole(t, 0xA9, 0x45, 0xAA)

	stepN(t, n, 2)

	assert.Equal(t, uint8(0x45), n.cpu.X())
	assert.False(t, n.cpu.Flag(Z))
	assert.False(t, n.cpu.Flag(N))
}

func TestINXWrapsToZero(t *testing.T) {
	n := newTestConsole(t, 0xA2, 0xFF, 0xE8)

	stepN(t, n, 2)

	assert.Equal(t, uint8(0x00), n.cpu.X())
	assert.True(t, n.cpu.Flag(Z))
}

func TestADCCarryBoundary(t *testing.T) {
	// 0xFF + 0x01 + carry wraps to 0x01 with carry out and no signed
	// overflow.
	n := newTestConsole(t, 0xA9, 0xFF, 0x38, 0x69, 0x01)

	stepN(t, n, 3)

	assert.Equal(t, uint8(0x01), n.cpu.A())
	assert.True(t, n.cpu.Flag(C))
	assert.False(t, n.cpu.Flag(V))
	assert.False(t, n.cpu.Flag(Z))
}

func TestADCSignedOverflow(t *testing.T) {
	n := newTestConsole(t, 0xA9, 0x7F, 0x69, 0x01)

	stepN(t, n, 2)

	assert.Equal(t, uint8(0x80), n.cpu.A())
	assert.True(t, n.cpu.Flag(V))
	assert.True(t, n.cpu.Flag(N))
	assert.False(t, n.cpu.Flag(C))
}

func TestSBCWithBorrowClear(t *testing.T) {
	n := newTestConsole(t, 0xA9, 0x05, 0x38, 0xE9, 0x03)

	stepN(t, n, 3)

	assert.Equal(t, uint8(0x02), n.cpu.A())
	assert.True(t, n.cpu.Flag(C))
	assert.False(t, n.cpu.Flag(Z))
}

func TestFlagSetAndClearInstructions(t *testing.T) {
	n := newTestConsole(t, 0x38, 0xF8, 0x78, 0x18, 0xD8, 0x58)

	stepN(t, n, 3)
	assert.True(t, n.cpu.Flag(C))
	assert.True(t, n.cpu.Flag(D))
	assert.True(t, n.cpu.Flag(I))

	stepN(t, n, 3)
	assert.False(t, n.cpu.Flag(C))
	assert.False(t, n.cpu.Flag(D))
	assert.False(t, n.cpu.Flag(I))
}

func TestAbsoluteIndexedPageCrossPenalty(t *testing.T) {
	// LDX #$01 then LDA $80FF,X crosses into $8100.
	n := newTestConsole(t, 0xA2, 0x01, 0xBD, 0xFF, 0x80)

	stepN(t, n, 1)
	cycles := stepN(t, n, 1)
	assert.Equal(t, 5, cycles)
}

func TestAbsoluteIndexedNoCross(t *testing.T) {
	n := newTestConsole(t, 0xA2, 0x01, 0xBD, 0x00, 0x80)

	stepN(t, n, 1)
	cycles := stepN(t, n, 1)
	assert.Equal(t, 4, cycles)
}

func TestStoreTakesNoPageCrossPenalty(t *testing.T) {
	// STA $00FF,X with X=1 crosses a page but stores always pay the
	// fixed cost.
	n := newTestConsole(t, 0xA2, 0x01, 0xA9, 0x37, 0x9D, 0xFF, 0x00)

	stepN(t, n, 2)
	cycles := stepN(t, n, 1)

	assert.Equal(t, 5, cycles)
	assert.Equal(t, uint8(0x37), n.ReadMemory(0x0100))
}

func TestBranchCycleCosts(t *testing.T) {
	// BNE not taken: 2 cycles. BEQ taken, same page: 3 cycles.
	n := newTestConsole(t, 0xA9, 0x00, 0xD0, 0x10, 0xF0, 0x02)

	stepN(t, n, 1)
	assert.Equal(t, 2, stepN(t, n, 1))
	assert.Equal(t, 3, stepN(t, n, 1))
}

func TestJSRAndRTS(t *testing.T) {
	// JSR $8005; KIL...; at $8005: RTS back to $8003.
	n := newTestConsole(t, 0x20, 0x05, 0x80, 0xEA, 0xEA, 0x60)

	assert.Equal(t, 6, stepN(t, n, 1))
	assert.Equal(t, uint16(0x8005), n.cpu.PC())

	assert.Equal(t, 6, stepN(t, n, 1))
	assert.Equal(t, uint16(0x8003), n.cpu.PC())
}

func TestUnknownOpcode(t *testing.T) {
	n := newTestConsole(t, 0x02)

	_, err := n.cpu.Step()
	require.ErrorIs(t, err, ErrUnknownOpcode)
	assert.Contains(t, err.Error(), "$02")
}

func TestNMIServicedOnlyAtInstructionBoundary(t *testing.T) {
	n := newTestConsole(t, 0xA9, 0x05, 0xA9, 0x06)

	// Armed before the boundary: the interrupt wins the next Step and
	// the instruction stream is untouched until it returns.
	n.cpu.TriggerNMI()
	cycles := stepN(t, n, 1)

	assert.Equal(t, interruptCycles, cycles)
	assert.Equal(t, uint16(0x8100), n.cpu.PC())
	assert.Equal(t, uint8(0x00), n.cpu.A())
	assert.True(t, n.cpu.Flag(I))
}

func TestIRQMaskedByInterruptDisable(t *testing.T) {
	n := newTestConsole(t, 0x78, 0x58, 0xA9, 0x05)

	stepN(t, n, 1)
	n.cpu.SetIRQ(true)

	// I is set: the IRQ line is ignored, CLI executes.
	stepN(t, n, 1)
	assert.Equal(t, uint16(0x8002), n.cpu.PC())

	// Now unmasked: the next boundary services it.
	cycles := stepN(t, n, 1)
	assert.Equal(t, interruptCycles, cycles)
	assert.Equal(t, uint16(0x8200), n.cpu.PC())
}

func TestBRKUsesIRQVector(t *testing.T) {
	n := newTestConsole(t, 0x00)

	cycles := stepN(t, n, 1)
	assert.Equal(t, 7, cycles)
	assert.Equal(t, uint16(0x8200), n.cpu.PC())
}

func TestBRKPushesStatusBeforeRaisingI(t *testing.T) {
	// CLI; BRK. The stacked P must carry the old I with B set; the
	// live I is raised only on entry to the handler.
	n := newTestConsole(t, 0x58, 0x00)

	stepN(t, n, 2)

	stacked := n.ReadMemory(0x0100 + uint16(n.cpu.SP()) + 1)
	assert.Zero(t, stacked&uint8(I))
	assert.NotZero(t, stacked&uint8(B))
	assert.True(t, n.cpu.Flag(I))
}

func TestRunProgramStoresToRAM(t *testing.T) {
	// LDA #$05; STA $0010; JMP self.
	n := newTestConsole(t, 0xA9, 0x05, 0x85, 0x10, 0x4C, 0x04, 0x80)

	stepN(t, n, 4)

	assert.Equal(t, uint8(0x05), n.ReadMemory(0x0010))
	assert.Equal(t, uint16(0x8004), n.cpu.PC())
}

func TestDisassemble(t *testing.T) {
	n := newTestConsole(t, 0xA9, 0x05, 0x8D, 0x34, 0x12)

	lines := n.cpu.Disassemble(0x8000, 0x8004)

	assert.Equal(t, "$8000: LDA #$05", lines[0x8000].Text)
	assert.Equal(t, "$8002: STA $1234", lines[0x8002].Text)
	assert.Equal(t, uint16(0x8002), lines[0x8000].NextAddr)
}
