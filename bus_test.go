package famicore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRAMMirroring(t *testing.T) {
	n := newTestConsole(t)

	n.bus.cpuWrite(0x0000, 0x11)
	assert.Equal(t, uint8(0x11), n.bus.cpuRead(0x0800, false))
	assert.Equal(t, uint8(0x11), n.bus.cpuRead(0x1000, false))
	assert.Equal(t, uint8(0x11), n.bus.cpuRead(0x1800, false))

	n.bus.cpuWrite(0x1FFF, 0x22)
	assert.Equal(t, uint8(0x22), n.bus.cpuRead(0x07FF, false))
}

func TestPPURegisterMirroring(t *testing.T) {
	n := newTestConsole(t)

	// $2000-$2007 repeats through $3FFF, so $2008 aliases $2000.
	n.bus.cpuWrite(0x2008, 0x04)
	n.bus.cpuWrite(0x3FF6, 0x21)
	n.bus.cpuWrite(0x3FFE, 0x00)
	n.bus.cpuWrite(0x200F, 0x55)

	n.bus.cpuWrite(0x2006, 0x21)
	n.bus.cpuWrite(0x2006, 0x20)
	n.bus.cpuRead(0x2007, false)
	assert.Equal(t, uint8(0x55), n.bus.cpuRead(0x2007, false))
}

func TestOpenBusReturnsLastDrivenValue(t *testing.T) {
	n := newTestConsole(t)

	n.bus.cpuWrite(0x0000, 0xAB)
	assert.Equal(t, uint8(0xAB), n.bus.cpuRead(0x4020, false))

	// A read from mapped space refreshes the latched value.
	n.bus.cpuWrite(0x0001, 0xCD)
	n.bus.cpuRead(0x0001, false)
	assert.Equal(t, uint8(0xCD), n.bus.cpuRead(0x5000, false))
}

func TestReadOnlyPeekHasNoSideEffects(t *testing.T) {
	n := newTestConsole(t)

	n.bus.cpuWrite(0x0000, 0xAB)
	for !n.ppu.VerticalBlank() {
		n.ppu.Step()
	}

	// A peek must not clear vblank or disturb the open bus latch.
	n.bus.cpuRead(0x2002, true)
	assert.True(t, n.ppu.VerticalBlank())
	assert.Equal(t, uint8(0xAB), n.bus.cpuRead(0x4020, false))
}

func TestControllerStrobeAndShift(t *testing.T) {
	n := newTestConsole(t)

	pad := n.Controller(0)
	pad.SetButtons(ButtonA | ButtonStart)

	n.bus.cpuWrite(0x4016, 1)
	n.bus.cpuWrite(0x4016, 0)

	// A, B, Select, Start, Up, Down, Left, Right, then the exhausted
	// register reports 1.
	want := []uint8{1, 0, 0, 1, 0, 0, 0, 0, 1, 1, 1}
	for i, bit := range want {
		got := n.bus.cpuRead(0x4016, false) & 0x01
		assert.Equal(t, bit, got, "read %d", i)
	}
}

func TestControllerReadCarriesOpenBusHighBits(t *testing.T) {
	n := newTestConsole(t)

	n.bus.cpuWrite(0x4016, 0x00)
	got := n.bus.cpuRead(0x4016, false)
	assert.Equal(t, uint8(0x00), got&0xE0)

	n.bus.cpuWrite(0x0000, 0xFF)
	got = n.bus.cpuRead(0x4017, false)
	assert.Equal(t, uint8(0xE0), got&0xE0)
}

func TestOAMDMACopiesPageAndStallsCPU(t *testing.T) {
	n := newTestConsole(t)

	for i := uint16(0); i < 256; i++ {
		n.bus.cpuWrite(0x0200+i, uint8(i))
	}

	n.bus.cpuWrite(0x4014, 0x02)

	stall := n.bus.takeDMAStall()
	assert.Contains(t, []int{513, 514}, stall)
	assert.Zero(t, n.bus.takeDMAStall())

	n.bus.cpuWrite(0x2003, 0x00)
	assert.Equal(t, uint8(0x00), n.bus.cpuRead(0x2004, false))
	n.bus.cpuWrite(0x2003, 0x7F)
	assert.Equal(t, uint8(0x7F), n.bus.cpuRead(0x2004, false))
	n.bus.cpuWrite(0x2003, 0xFF)
	assert.Equal(t, uint8(0xFF), n.bus.cpuRead(0x2004, false))
}

func TestFrameCounterIRQ(t *testing.T) {
	n := newTestConsole(t)

	// Four-step mode with IRQ enabled.
	n.bus.cpuWrite(0x4017, 0x00)
	n.apu.Tick(frameStep4 + 1)
	assert.True(t, n.apu.IRQ())

	// Reading $4015 acknowledges.
	status := n.bus.cpuRead(0x4015, false)
	assert.NotZero(t, status&0x40)
	assert.False(t, n.apu.IRQ())
}

func TestFrameCounterIRQInhibited(t *testing.T) {
	n := newTestConsole(t)

	n.bus.cpuWrite(0x4017, 0x40)
	n.apu.Tick(frameStep4 + 1)
	assert.False(t, n.apu.IRQ())

	// Five-step mode never raises the frame IRQ.
	n.bus.cpuWrite(0x4017, 0x80)
	n.apu.Tick(frameStep4 + 1)
	assert.False(t, n.apu.IRQ())
}
