package famicore

// Button bits as latched by the controller strobe. Bit 7 shifts out first.
const (
	ButtonA      = uint8(0x80)
	ButtonB      = uint8(0x40)
	ButtonSelect = uint8(0x20)
	ButtonStart  = uint8(0x10)
	ButtonUp     = uint8(0x08)
	ButtonDown   = uint8(0x04)
	ButtonLeft   = uint8(0x02)
	ButtonRight  = uint8(0x01)
)

// Controller is the standard joypad register hook. The presentation layer
// feeds it button state; the bus drives strobe writes and serial reads.
type Controller struct {
	buttons uint8
	shift   uint8
	strobe  bool
}

func NewController() *Controller {
	return &Controller{}
}

// SetButtons replaces the current physical button state.
func (c *Controller) SetButtons(buttons uint8) {
	c.buttons = buttons
}

func (c *Controller) write(data uint8) {
	c.strobe = data&0x01 != 0
	if c.strobe {
		c.shift = c.buttons
	}
}

func (c *Controller) read() uint8 {
	if c.strobe {
		c.shift = c.buttons
	}
	data := uint8(0)
	if c.shift&0x80 != 0 {
		data = 1
	}
	// Ones shift in behind the button bits, so reads past the eighth
	// report 1 the way the hardware serial line does.
	c.shift = c.shift<<1 | 0x01
	return data
}
