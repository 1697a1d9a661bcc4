package joypad

import (
	"testing"

	"github.com/willow-systems/gbcore/membus"
)

func TestNoSelectionReadsAllReleased(t *testing.T) {
	bus := membus.New()
	New(bus)

	// Nothing pressed, nothing selected: low nibble reads released.
	if got := bus.Read8(0xff00) & 0x0f; got != 0x0f {
		t.Fatalf("expected all released, got 0x%02x", got)
	}
}

func TestStateByteSplitsIntoNibbles(t *testing.T) {
	bus := membus.New()
	j := New(bus)

	// Right (bit 0) and Start (bit 7) pressed, active low.
	j.SetState(0x7e)

	bus.Write8(0xff00, 0x20) // select direction keys
	if got := bus.Read8(0xff00) & 0x0f; got != 0x0e {
		t.Fatalf("expected Right pressed in direction nibble, got 0x%02x", got)
	}

	bus.Write8(0xff00, 0x10) // select action keys
	if got := bus.Read8(0xff00) & 0x0f; got != 0x07 {
		t.Fatalf("expected Start pressed in action nibble, got 0x%02x", got)
	}
}
