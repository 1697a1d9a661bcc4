// Package membus implements the memory bus: a 256-entry page table over a
// small byte arena resolves VRAM, WRAM, and echo RAM without branching into
// region logic; everything else dispatches by range to the cartridge, OAM,
// HRAM, or a per-register I/O handler table that the owning components
// (timer, ppu, joypad, apu) register into.
package membus

import (
	"github.com/pkg/errors"

	"github.com/willow-systems/gbcore/cartridge"
	"github.com/willow-systems/gbcore/diag"
)

const (
	vramSize = 0x2000
	wramSize = 0x2000
	oamSize  = 0xa0
	hramSize = 0x7f
	ioSize   = 0x80

	// arena layout: VRAM first, WRAM second. Only these two regions (plus
	// their echo) are fast-path; everything else dispatches.
	arenaVRAMBase = 0
	arenaWRAMBase = vramSize
	arenaSize     = vramSize + wramSize
)

// IF bit positions.
const (
	IntVBlank = 1 << 0
	IntLCD    = 1 << 1
	IntTimer  = 1 << 2
	IntSerial = 1 << 3
	IntJoypad = 1 << 4
)

// ReadFunc/WriteFunc back a single I/O register. Handlers must not call back
// into the bus for their own address; they manipulate their owning
// component's cached state directly.
type ReadFunc func() uint8
type WriteFunc func(val uint8)

type ioHandler struct {
	read  ReadFunc
	write WriteFunc
}

// Bus owns every byte the processor, picture unit, and timer see, plus the
// cartridge controller. The processor, picture unit, and timer do not store
// it; the machine passes it to each of their Step calls.
type Bus struct {
	arena    [arenaSize]byte
	pageFast [256]bool
	pageBase [256]int

	oam  [oamSize]byte
	hram [hramSize]byte
	io   [ioSize]byte
	ie   uint8

	cart cartridge.Controller

	handlers [ioSize]ioHandler
}

// New returns a bus with the fast-path page table initialized and every I/O
// slot defaulting to its backing buffer byte.
func New() *Bus {
	b := &Bus{}
	for page := 0x80; page <= 0x9f; page++ {
		b.pageFast[page] = true
		b.pageBase[page] = arenaVRAMBase + (page-0x80)*0x100
	}
	for page := 0xc0; page <= 0xdf; page++ {
		b.pageFast[page] = true
		b.pageBase[page] = arenaWRAMBase + (page-0xc0)*0x100
	}
	for page := 0xe0; page <= 0xfd; page++ {
		b.pageFast[page] = true
		b.pageBase[page] = arenaWRAMBase + (page-0xe0)*0x100
	}
	for i := range b.handlers {
		addr := uint16(0xff00 + i)
		b.handlers[i] = ioHandler{
			read:  b.defaultIORead(addr),
			write: b.defaultIOWrite(addr),
		}
	}
	b.RegisterIOHandler(0xff46, nil, func(val uint8) { b.StartOAMDMA(val) })
	return b
}

func (b *Bus) defaultIORead(addr uint16) ReadFunc {
	return func() uint8 { return b.io[addr-0xff00] }
}
func (b *Bus) defaultIOWrite(addr uint16) WriteFunc {
	return func(val uint8) { b.io[addr-0xff00] = val }
}

// RegisterIOHandler overrides a single I/O byte's read and write behavior. A
// nil read or write keeps the default backing-buffer behavior for that half.
func (b *Bus) RegisterIOHandler(addr uint16, read ReadFunc, write WriteFunc) {
	idx := addr - 0xff00
	if read != nil {
		b.handlers[idx].read = read
	}
	if write != nil {
		b.handlers[idx].write = write
	}
}

// LoadROM parses the cartridge header and installs the matching controller.
// The bus remains in its pre-load state if parsing fails.
func (b *Bus) LoadROM(rom []byte) error {
	cart, err := cartridge.Load(rom)
	if err != nil {
		return errors.Wrap(err, "load ROM")
	}
	b.cart = cart
	return nil
}

// SaveRAM returns a copy of the cartridge's RAM, or nil if no cartridge is
// loaded.
func (b *Bus) SaveRAM() []byte {
	if b.cart == nil {
		return nil
	}
	return b.cart.SaveRAM()
}

// LoadRAM restores cartridge RAM from a previously saved buffer.
func (b *Bus) LoadRAM(data []byte) error {
	if b.cart == nil {
		return errors.New("load RAM: no cartridge loaded")
	}
	return b.cart.LoadRAM(data)
}

// Read8 resolves the page table first and falls back to the range dispatch
// for everything slow-path.
func (b *Bus) Read8(addr uint16) uint8 {
	page := addr >> 8
	if b.pageFast[page] {
		return b.arena[b.pageBase[page]+int(addr&0xff)]
	}
	return b.slowRead(addr)
}

func (b *Bus) slowRead(addr uint16) uint8 {
	switch {
	case addr <= 0x7fff:
		if b.cart == nil {
			return 0xff
		}
		return b.cart.Read(addr)
	case addr >= 0xa000 && addr <= 0xbfff:
		if b.cart == nil {
			return 0xff
		}
		return b.cart.ReadRAM(addr)
	case addr >= 0xfe00 && addr <= 0xfe9f:
		return b.oam[addr-0xfe00]
	case addr >= 0xfea0 && addr <= 0xfeff:
		return 0xff
	case addr >= 0xff00 && addr <= 0xff7f:
		return b.handlers[addr-0xff00].read()
	case addr >= 0xff80 && addr <= 0xfffe:
		return b.hram[addr-0xff80]
	case addr == 0xffff:
		return b.ie
	default:
		diag.UnmappedAccess("read", addr)
		return 0xff
	}
}

// Write8 implements the write side of the same algorithm.
func (b *Bus) Write8(addr uint16, val uint8) {
	page := addr >> 8
	if b.pageFast[page] {
		b.arena[b.pageBase[page]+int(addr&0xff)] = val
		return
	}
	b.slowWrite(addr, val)
}

func (b *Bus) slowWrite(addr uint16, val uint8) {
	switch {
	case addr <= 0x7fff:
		if b.cart != nil {
			b.cart.Write(addr, val)
		}
	case addr >= 0xa000 && addr <= 0xbfff:
		if b.cart != nil {
			b.cart.WriteRAM(addr, val)
		}
	case addr >= 0xfe00 && addr <= 0xfe9f:
		b.oam[addr-0xfe00] = val
	case addr >= 0xfea0 && addr <= 0xfeff:
		// discarded
	case addr >= 0xff00 && addr <= 0xff7f:
		b.handlers[addr-0xff00].write(val)
	case addr >= 0xff80 && addr <= 0xfffe:
		b.hram[addr-0xff80] = val
	case addr == 0xffff:
		b.ie = val
	default:
		diag.UnmappedAccess("write", addr)
	}
}

// Read16/Write16 are little-endian, performed as two 8-bit accesses with the
// low byte first.
func (b *Bus) Read16(addr uint16) uint16 {
	lo := uint16(b.Read8(addr))
	hi := uint16(b.Read8(addr + 1))
	return lo | hi<<8
}

func (b *Bus) Write16(addr uint16, val uint16) {
	b.Write8(addr, uint8(val))
	b.Write8(addr+1, uint8(val>>8))
}

// OAMByte/SetOAMByte give the picture unit direct, un-dispatched access to
// OAM for sprite evaluation and DMA, avoiding a detour through Read8.
func (b *Bus) OAMByte(off int) uint8       { return b.oam[off] }
func (b *Bus) SetOAMByte(off int, v uint8) { b.oam[off] = v }

// VRAMByte gives the picture unit direct access to tile data and tile maps
// during scanline rendering.
func (b *Bus) VRAMByte(off int) uint8 { return b.arena[arenaVRAMBase+off] }

// RequestInterrupt ORs the given IF bit(s) directly into the IF byte.
func (b *Bus) RequestInterrupt(bit uint8) {
	b.io[0x0f] |= bit
}

// IF/SetIF/IE/SetIE give the processor direct access to the interrupt
// registers for interrupt service.
func (b *Bus) IF() uint8       { return b.io[0x0f] }
func (b *Bus) SetIF(val uint8) { b.io[0x0f] = val }
func (b *Bus) IE() uint8       { return b.ie }
func (b *Bus) SetIE(val uint8) { b.ie = val }

// StartOAMDMA performs the synchronous 160-byte transfer triggered by a
// write to FF46, copying page (val<<8) into OAM. The bus installs it as its
// own handler since both the source read and OAM live here.
func (b *Bus) StartOAMDMA(srcPage uint8) {
	base := uint16(srcPage) << 8
	for i := 0; i < oamSize; i++ {
		b.oam[i] = b.Read8(base + uint16(i))
	}
}
