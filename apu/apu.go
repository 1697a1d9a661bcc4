// Package apu is the audio event sink. It owns the NR10-NR52 and wave-RAM
// register space and the frame-sequencer clock; it produces no samples. The
// register surface and sequencer cadence are in place so a host mixer can
// attach without changes to the core.
package apu

import (
	"github.com/willow-systems/gbcore/membus"
	"github.com/willow-systems/gbcore/scheduler"
)

// frameSequencerPeriod is the 512 Hz frame-sequencer interval in T-cycles.
const frameSequencerPeriod = 8192

// APU holds the raw register bytes (0xFF10-0xFF3F) and the 8-step frame
// sequencer position.
type APU struct {
	regs      [0x30]uint8
	frameStep uint8
}

// New constructs the stub, registers its address space on the bus, and
// starts the frame sequencer on the scheduler.
func New(bus *membus.Bus, sched *scheduler.Scheduler) *APU {
	a := &APU{}
	for addr := uint16(0xff10); addr <= 0xff3f; addr++ {
		reg := addr - 0xff10
		bus.RegisterIOHandler(addr,
			func() uint8 { return a.regs[reg] },
			func(v uint8) { a.regs[reg] = v })
	}
	a.scheduleFrameSequencer(sched)
	return a
}

func (a *APU) scheduleFrameSequencer(sched *scheduler.Scheduler) {
	sched.Schedule(scheduler.EventFrameSequencer, frameSequencerPeriod, func() {
		a.frameStep = (a.frameStep + 1) & 7
		a.scheduleFrameSequencer(sched)
	})
}

// FrameStep exposes the sequencer position for a host mixer.
func (a *APU) FrameStep() uint8 { return a.frameStep }
