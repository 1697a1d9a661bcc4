package apu

import (
	"testing"

	"github.com/willow-systems/gbcore/membus"
	"github.com/willow-systems/gbcore/scheduler"
)

func TestRegisterSpaceRoundTrips(t *testing.T) {
	bus := membus.New()
	sched := scheduler.New()
	New(bus, sched)

	bus.Write8(0xff11, 0x80) // NR11
	bus.Write8(0xff3f, 0x5a) // last wave RAM byte
	if got := bus.Read8(0xff11); got != 0x80 {
		t.Fatalf("expected NR11 round-trip, got 0x%02x", got)
	}
	if got := bus.Read8(0xff3f); got != 0x5a {
		t.Fatalf("expected wave RAM round-trip, got 0x%02x", got)
	}
}

func TestFrameSequencerAdvancesEvery8192Cycles(t *testing.T) {
	bus := membus.New()
	sched := scheduler.New()
	a := New(bus, sched)

	for i := 0; i < 3; i++ {
		sched.Advance(frameSequencerPeriod)
		sched.ProcessEvents()
	}

	if a.FrameStep() != 3 {
		t.Fatalf("expected 3 sequencer steps, got %d", a.FrameStep())
	}
}
