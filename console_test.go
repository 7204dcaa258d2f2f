package famicore

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerPhaseInvariant(t *testing.T) {
	// LDA #$05; STA $0010; JMP self.
	n := newTestConsole(t, 0xA9, 0x05, 0x85, 0x10, 0x4C, 0x04, 0x80)

	for i := 0; i < 1000; i++ {
		_, err := n.StepInstruction()
		require.NoError(t, err)
		require.Equal(t, 3*n.cpu.Cycles(), n.ppu.Dots())
	}
}

func TestSchedulerPhaseInvariantAcrossDMA(t *testing.T) {
	// LDA #$02; STA $4014; JMP self.
	n := newTestConsole(t, 0xA9, 0x02, 0x8D, 0x14, 0x40, 0x4C, 0x05, 0x80)

	for i := 0; i < 10; i++ {
		_, err := n.StepInstruction()
		require.NoError(t, err)
		require.Equal(t, 3*n.cpu.Cycles(), n.ppu.Dots())
	}
}

func TestAdvanceFrameReturnsCompletedFrame(t *testing.T) {
	n := newTestConsole(t, 0x4C, 0x00, 0x80)

	frame, err := n.AdvanceFrame()
	require.NoError(t, err)
	require.NotNil(t, frame)

	// A CPU frame is roughly a third of the dot count per frame.
	assert.InDelta(t, 341*262/3, int(n.cpu.Cycles()), 10)
}

func TestAdvanceFrameStopsOnUnknownOpcode(t *testing.T) {
	n := newTestConsole(t, 0xEA, 0x02)

	_, err := n.AdvanceFrame()
	require.ErrorIs(t, err, ErrUnknownOpcode)
}

func TestSaveStateRoundTrip(t *testing.T) {
	// Counter loop: INC $10; JMP self, with NMI enabled rendering.
	n := newTestConsole(t, 0xE6, 0x10, 0x4C, 0x00, 0x80)

	for i := 0; i < 5000; i++ {
		_, err := n.StepInstruction()
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	require.NoError(t, n.SaveState(&buf))

	saved := bytes.NewReader(buf.Bytes())

	// Run the original ahead and record the divergence point.
	for i := 0; i < 100; i++ {
		_, err := n.StepInstruction()
		require.NoError(t, err)
	}
	wantPC := n.cpu.PC()
	wantCycles := n.cpu.Cycles()
	wantCounter := n.ReadMemory(0x0010)
	wantDots := n.ppu.Dots()

	// Restore into the same console and replay the same steps.
	require.NoError(t, n.LoadState(saved))
	for i := 0; i < 100; i++ {
		_, err := n.StepInstruction()
		require.NoError(t, err)
	}

	assert.Equal(t, wantPC, n.cpu.PC())
	assert.Equal(t, wantCycles, n.cpu.Cycles())
	assert.Equal(t, wantCounter, n.ReadMemory(0x0010))
	assert.Equal(t, wantDots, n.ppu.Dots())
}

func TestSaveStateRoundTripFrames(t *testing.T) {
	n := newTestConsole(t, 0x4C, 0x00, 0x80)
	n.bus.cpuWrite(0x2001, 0x08)

	_, err := n.AdvanceFrame()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, n.SaveState(&buf))

	first, err := n.AdvanceFrame()
	require.NoError(t, err)
	want := *first

	require.NoError(t, n.LoadState(bytes.NewReader(buf.Bytes())))
	second, err := n.AdvanceFrame()
	require.NoError(t, err)

	assert.Equal(t, want, *second)
}

func TestLoadStateRejectsGarbage(t *testing.T) {
	n := newTestConsole(t)

	err := n.LoadState(bytes.NewReader([]byte("not a snapshot")))
	assert.Error(t, err)
}

func TestResetRestoresPowerOnState(t *testing.T) {
	n := newTestConsole(t, 0xA9, 0x05, 0x4C, 0x02, 0x80)

	for i := 0; i < 100; i++ {
		_, err := n.StepInstruction()
		require.NoError(t, err)
	}

	n.Reset()

	assert.Equal(t, uint16(0x8000), n.cpu.PC())
	assert.Equal(t, uint64(0), n.cpu.Cycles())
	assert.Equal(t, uint64(0), n.ppu.Dots())
}

func TestWithControllerOption(t *testing.T) {
	prg := make([]uint8, prgBankSize)
	prg[0x3FFD] = 0x80
	info := RomInfo{MapperID: 0, PrgBanks: 1, ChrBanks: 1}
	cart, err := NewCartridge(info, prg, make([]uint8, chrBankSize))
	require.NoError(t, err)

	pad := NewController()
	n, err := NewConsole(cart, WithController(1, pad))
	require.NoError(t, err)

	assert.Same(t, pad, n.Controller(1))
}
