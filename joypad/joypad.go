// Package joypad implements the P1/JOYP register: two select-line latches
// written by the processor and two active-low button nibbles pushed in by
// the host.
package joypad

import "github.com/willow-systems/gbcore/membus"

// Joypad holds the two select lines the processor writes to P1 and the two
// button nibbles the host pushes in.
type Joypad struct {
	selectAction, selectDirection bool
	direction, action             uint8 // active-low nibbles, as presented on the bus
}

// New constructs a Joypad with both button groups released and registers
// its single register on the bus.
func New(bus *membus.Bus) *Joypad {
	j := &Joypad{direction: 0x0f, action: 0x0f}
	bus.RegisterIOHandler(0xff00, j.read, j.write)
	return j
}

func (j *Joypad) write(val uint8) {
	j.selectAction = (val>>5)&1 == 0
	j.selectDirection = (val>>4)&1 == 0
}

func (j *Joypad) read() uint8 {
	switch {
	case j.selectDirection:
		return j.direction
	case j.selectAction:
		return j.action
	default:
		return 0x0f
	}
}

// SetState unpacks the host's single active-low byte: bits 0-3 are the
// direction buttons (Right, Left, Up, Down) and bits 4-7 are the action
// buttons (A, B, Select, Start). A set bit means released.
func (j *Joypad) SetState(state uint8) {
	j.direction = state & 0x0f
	j.action = (state >> 4) & 0x0f
}
