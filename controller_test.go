package famicore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestControllerReadsOneAfterExhaustion(t *testing.T) {
	pad := NewController()
	pad.SetButtons(ButtonA)

	pad.write(1)
	pad.write(0)

	assert.Equal(t, uint8(1), pad.read())
	for i := 1; i < 8; i++ {
		assert.Equal(t, uint8(0), pad.read(), "read %d", i)
	}
	for i := 8; i < 12; i++ {
		assert.Equal(t, uint8(1), pad.read(), "read %d", i)
	}
}

func TestControllerStrobeHighRepeatsButtonA(t *testing.T) {
	pad := NewController()
	pad.SetButtons(ButtonA)

	// While the strobe stays high the register reloads on every read.
	pad.write(1)
	for i := 0; i < 10; i++ {
		assert.Equal(t, uint8(1), pad.read(), "read %d", i)
	}

	pad.SetButtons(0)
	assert.Equal(t, uint8(0), pad.read())
}
