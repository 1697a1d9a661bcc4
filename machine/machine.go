// Package machine wires the processor, memory bus, picture unit, timer,
// joypad, and scheduler together and runs them in lockstep: one instruction
// at a time, the instruction's cycle count fanned out to every component.
package machine

import (
	"os"

	"github.com/pkg/errors"

	"github.com/willow-systems/gbcore/apu"
	"github.com/willow-systems/gbcore/cpu"
	"github.com/willow-systems/gbcore/joypad"
	"github.com/willow-systems/gbcore/membus"
	"github.com/willow-systems/gbcore/ppu"
	"github.com/willow-systems/gbcore/scheduler"
	"github.com/willow-systems/gbcore/timer"
)

// FrameCycles is the T-cycle length of one frame: 154 lines of 456 cycles.
const FrameCycles = 70224

// Machine is the single owner of all core state. Components hold no
// references to each other; the bus and scheduler are passed in explicitly
// at each step.
type Machine struct {
	bus    *membus.Bus
	cpu    *cpu.CPU
	ppu    *ppu.PPU
	timer  *timer.Timer
	apu    *apu.APU
	joypad *joypad.Joypad
	sched  *scheduler.Scheduler

	rom []byte
	cnt int
}

// New returns a machine with no cartridge loaded.
func New() *Machine {
	m := &Machine{}
	m.build()
	return m
}

// build constructs every component from scratch; the bus handler table is
// repopulated as each component registers its registers.
func (m *Machine) build() {
	m.bus = membus.New()
	m.sched = scheduler.New()
	m.cpu = cpu.New()
	m.ppu = ppu.New(m.bus)
	m.timer = timer.New(m.bus)
	m.joypad = joypad.New(m.bus)
	m.apu = apu.New(m.bus, m.sched)
	m.cnt = 0
}

// LoadROM parses the image and installs the matching cartridge controller.
// On failure the machine keeps its previous state.
func (m *Machine) LoadROM(rom []byte) error {
	if err := m.bus.LoadROM(rom); err != nil {
		return err
	}
	m.rom = rom
	return nil
}

// Reset rebuilds every component in the post-boot state and reloads the
// current ROM, so the first frame after any number of resets is identical.
func (m *Machine) Reset() error {
	m.build()
	if m.rom == nil {
		return nil
	}
	return m.bus.LoadROM(m.rom)
}

// Step executes one instruction and fans its cycle count out to the picture
// unit, the timer, and the scheduler, in that order. Returns the T-cycles
// consumed.
func (m *Machine) Step() int {
	tick := m.cpu.Step(m.bus)
	m.ppu.Step(tick, m.bus)
	m.timer.Step(tick, m.bus)
	m.sched.Advance(uint64(tick))
	m.sched.ProcessEvents()
	return tick
}

// RunFrame steps until a frame's worth of cycles has accumulated. The
// residual beyond FrameCycles carries into the next frame.
func (m *Machine) RunFrame() {
	for m.cnt < FrameCycles {
		m.cnt += m.Step()
	}
	m.cnt -= FrameCycles
}

// SetJoypad pushes the host's active-low button byte (1 = released).
func (m *Machine) SetJoypad(state uint8) {
	m.joypad.SetState(state)
}

// Framebuffer exposes the picture unit's 160x144 RGBA pixels.
func (m *Machine) Framebuffer() []uint32 { return m.ppu.Framebuffer() }

func (m *Machine) FrameReady() bool { return m.ppu.FrameReady() }
func (m *Machine) ClearFrameReady() { m.ppu.ClearFrameReady() }

// SaveRAM writes the cartridge RAM image to path as a raw byte stream.
func (m *Machine) SaveRAM(path string) error {
	data := m.bus.SaveRAM()
	if data == nil {
		return errors.New("save RAM: no cartridge loaded")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "save RAM")
	}
	return nil
}

// LoadRAM restores cartridge RAM from a file written by SaveRAM.
func (m *Machine) LoadRAM(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "load RAM")
	}
	return m.bus.LoadRAM(data)
}
