// Package ppu implements the picture unit: the per-line mode state machine
// (OAM scan, drawing, horizontal blank, then ten vertical-blank lines), the
// sprite buffer, and background/window/sprite composition into a 160x144
// RGBA framebuffer.
package ppu

import "github.com/willow-systems/gbcore/membus"

const (
	LCDWidth  = 160
	LCDHeight = 144

	ModeHBlank  uint8 = 0
	ModeVBlank  uint8 = 1
	ModeOAMScan uint8 = 2
	ModeDrawing uint8 = 3

	oamScanCycles = 80
	drawingCycles = 172
	hblankCycles  = 204
	lineCycles    = 456

	lastLine = 153

	oamEntries     = 40
	maxLineSprites = 10
)

// LCDC bits.
const (
	lcdcBGEnable     = 1 << 0
	lcdcOBJEnable    = 1 << 1
	lcdcOBJSize      = 1 << 2
	lcdcBGMap        = 1 << 3
	lcdcTileData     = 1 << 4
	lcdcWindowEnable = 1 << 5
	lcdcWindowMap    = 1 << 6
	lcdcLCDEnable    = 1 << 7
)

// STAT interrupt-enable bits.
const (
	statHBlankIRQ = 1 << 3
	statVBlankIRQ = 1 << 4
	statOAMIRQ    = 1 << 5
	statLYCIRQ    = 1 << 6
)

// The fixed four-level grayscale, RGBA8 packed little-endian (R in the low
// byte, A in the high byte).
var grayscale = [4]uint32{0xffffffff, 0xffaaaaaa, 0xff555555, 0xff000000}

// PPU caches its memory-mapped registers locally; the bus handlers
// registered in New keep the cache and the I/O space coherent without a
// round trip through the bus.
type PPU struct {
	mode uint8
	tick int
	ly   uint8

	lcdc, stat      uint8
	scx, scy        uint8
	lyc             uint8
	bgp, obp0, obp1 uint8
	wx, wy          uint8

	sprites    []object // selected for the current line, OAM order
	frameReady bool

	// bgColor holds the palette-mapped background/window shade per x for
	// the line being drawn; sprites with the behind-BG attribute only draw
	// where it is 0.
	bgColor [LCDWidth]uint8

	framebuffer [LCDWidth * LCDHeight]uint32
}

// New constructs a PPU in the post-boot register state and registers its
// registers on the bus. FF46 (OAM DMA) belongs to the bus itself.
func New(bus *membus.Bus) *PPU {
	p := &PPU{
		mode:    ModeOAMScan,
		lcdc:    0x91,
		bgp:     0xfc,
		obp0:    0xff,
		obp1:    0xff,
		sprites: make([]object, 0, maxLineSprites),
	}
	bus.RegisterIOHandler(0xff40, func() uint8 { return p.lcdc }, func(v uint8) { p.writeLCDC(v) })
	bus.RegisterIOHandler(0xff41, func() uint8 { return p.readSTAT() }, func(v uint8) { p.stat = v & 0x78 })
	bus.RegisterIOHandler(0xff42, func() uint8 { return p.scy }, func(v uint8) { p.scy = v })
	bus.RegisterIOHandler(0xff43, func() uint8 { return p.scx }, func(v uint8) { p.scx = v })
	bus.RegisterIOHandler(0xff44, func() uint8 { return p.ly }, func(uint8) {})
	bus.RegisterIOHandler(0xff45, func() uint8 { return p.lyc }, func(v uint8) { p.lyc = v })
	bus.RegisterIOHandler(0xff47, func() uint8 { return p.bgp }, func(v uint8) { p.bgp = v })
	bus.RegisterIOHandler(0xff48, func() uint8 { return p.obp0 }, func(v uint8) { p.obp0 = v })
	bus.RegisterIOHandler(0xff49, func() uint8 { return p.obp1 }, func(v uint8) { p.obp1 = v })
	bus.RegisterIOHandler(0xff4a, func() uint8 { return p.wy }, func(v uint8) { p.wy = v })
	bus.RegisterIOHandler(0xff4b, func() uint8 { return p.wx }, func(v uint8) { p.wx = v })
	return p
}

func (p *PPU) enabled() bool { return p.lcdc&lcdcLCDEnable != 0 }

func (p *PPU) writeLCDC(v uint8) {
	wasEnabled := p.enabled()
	p.lcdc = v
	if wasEnabled && !p.enabled() {
		// Switching the LCD off freezes LY at 0; re-enabling resumes from
		// an OAM scan on line 0.
		p.ly = 0
		p.tick = 0
		p.mode = ModeOAMScan
	}
}

// readSTAT composes the live mode and coincidence bits under the stored
// interrupt-enable bits. With the LCD off the mode field reads as HBLANK.
func (p *PPU) readSTAT() uint8 {
	v := 0x80 | p.stat
	if p.ly == p.lyc {
		v |= 1 << 2
	}
	if p.enabled() {
		v |= p.mode
	}
	return v
}

// Mode returns the current mode, HBLANK while the LCD is disabled.
func (p *PPU) Mode() uint8 {
	if !p.enabled() {
		return ModeHBlank
	}
	return p.mode
}

func (p *PPU) LY() uint8 { return p.ly }

// FrameReady reports that a frame has been completed since the last clear;
// the host presents the framebuffer and clears it.
func (p *PPU) FrameReady() bool { return p.frameReady }
func (p *PPU) ClearFrameReady() { p.frameReady = false }

// Framebuffer exposes the 160x144 RGBA pixels, row-major.
func (p *PPU) Framebuffer() []uint32 { return p.framebuffer[:] }

// Step advances the mode state machine by the given T-cycles. A no-op while
// the LCD is disabled.
func (p *PPU) Step(cycles int, bus *membus.Bus) {
	if !p.enabled() {
		return
	}
	p.tick += cycles
	for {
		switch p.mode {
		case ModeOAMScan:
			if p.tick < oamScanCycles {
				return
			}
			p.tick -= oamScanCycles
			p.scanOAM(bus)
			p.setMode(ModeDrawing, bus)

		case ModeDrawing:
			if p.tick < drawingCycles {
				return
			}
			p.tick -= drawingCycles
			p.drawLine(bus)
			p.setMode(ModeHBlank, bus)

		case ModeHBlank:
			if p.tick < hblankCycles {
				return
			}
			p.tick -= hblankCycles
			p.ly++
			p.checkLYC(bus)
			if p.ly >= LCDHeight {
				p.setMode(ModeVBlank, bus)
				p.frameReady = true
				bus.RequestInterrupt(membus.IntVBlank)
			} else {
				p.setMode(ModeOAMScan, bus)
			}

		case ModeVBlank:
			if p.tick < lineCycles {
				return
			}
			p.tick -= lineCycles
			p.ly++
			if p.ly > lastLine {
				p.ly = 0
				p.checkLYC(bus)
				p.setMode(ModeOAMScan, bus)
			} else {
				p.checkLYC(bus)
			}
		}
	}
}

// setMode switches the mode and raises the STAT interrupt when the
// corresponding enable bit is set. Mode 3 has no enable bit.
func (p *PPU) setMode(mode uint8, bus *membus.Bus) {
	p.mode = mode
	var bit uint8
	switch mode {
	case ModeHBlank:
		bit = statHBlankIRQ
	case ModeVBlank:
		bit = statVBlankIRQ
	case ModeOAMScan:
		bit = statOAMIRQ
	default:
		return
	}
	if p.stat&bit != 0 {
		bus.RequestInterrupt(membus.IntLCD)
	}
}

func (p *PPU) checkLYC(bus *membus.Bus) {
	if p.ly == p.lyc && p.stat&statLYCIRQ != 0 {
		bus.RequestInterrupt(membus.IntLCD)
	}
}

func (p *PPU) spriteHeight() int {
	if p.lcdc&lcdcOBJSize != 0 {
		return 16
	}
	return 8
}

// scanOAM walks the 40 OAM entries in order and keeps the first 10 whose Y
// range covers the current line.
func (p *PPU) scanOAM(bus *membus.Bus) {
	p.sprites = p.sprites[:0]
	height := p.spriteHeight()
	for i := 0; i < oamEntries && len(p.sprites) < maxLineSprites; i++ {
		o := newObject(bus, i)
		if o.covers(int(p.ly), height) {
			p.sprites = append(p.sprites, o)
		}
	}
}

// tilePixel decodes the 2-bit color id of one pixel of a tile row: bit 7 of
// each plane byte is the leftmost pixel, the second plane supplies the high
// bit.
func tilePixel(bus *membus.Bus, tileBase, px, py int) uint8 {
	lo := bus.VRAMByte(tileBase + py*2)
	hi := bus.VRAMByte(tileBase + py*2 + 1)
	bit := uint(7 - px)
	return (hi>>bit&1)<<1 | lo>>bit&1
}

// tileBase resolves a tile index to its VRAM offset: unsigned indices from
// 0x8000 when LCDC.4 is set, signed indices centered at 0x9000 otherwise.
func (p *PPU) tileBase(index uint8) int {
	if p.lcdc&lcdcTileData != 0 {
		return int(index) * 16
	}
	return 0x1000 + int(int8(index))*16
}

// mapIndex reads the tile index at (tx, ty) of the given 32x32 tile map.
// mapBase is the VRAM offset of the map (0x1800 or 0x1c00).
func mapIndex(bus *membus.Bus, mapBase, tx, ty int) uint8 {
	return bus.VRAMByte(mapBase + ty*32 + tx)
}

func (p *PPU) bgMapBase() int {
	if p.lcdc&lcdcBGMap != 0 {
		return 0x1c00
	}
	return 0x1800
}

func (p *PPU) windowMapBase() int {
	if p.lcdc&lcdcWindowMap != 0 {
		return 0x1c00
	}
	return 0x1800
}

func shade(palette, id uint8) uint8 {
	return palette >> (id * 2) & 3
}

// drawLine composes the current line: background, then window, then the
// selected sprites in reverse buffer order.
func (p *PPU) drawLine(bus *membus.Bus) {
	if p.ly >= LCDHeight {
		return
	}
	row := int(p.ly) * LCDWidth

	for x := 0; x < LCDWidth; x++ {
		var id uint8
		if p.lcdc&lcdcBGEnable != 0 {
			sy := (int(p.scy) + int(p.ly)) & 0xff
			sx := (int(p.scx) + x) & 0xff
			index := mapIndex(bus, p.bgMapBase(), sx/8, sy/8)
			id = tilePixel(bus, p.tileBase(index), sx%8, sy%8)
		}
		p.bgColor[x] = shade(p.bgp, id)
		p.framebuffer[row+x] = grayscale[p.bgColor[x]]
	}

	if p.lcdc&lcdcWindowEnable != 0 && int(p.ly) >= int(p.wy) {
		wyRow := int(p.ly) - int(p.wy)
		for x := 0; x < LCDWidth; x++ {
			wxCol := x + 7 - int(p.wx)
			if wxCol < 0 {
				continue
			}
			index := mapIndex(bus, p.windowMapBase(), wxCol/8, wyRow/8)
			id := tilePixel(bus, p.tileBase(index), wxCol%8, wyRow%8)
			p.bgColor[x] = shade(p.bgp, id)
			p.framebuffer[row+x] = grayscale[p.bgColor[x]]
		}
	}

	if p.lcdc&lcdcOBJEnable == 0 {
		return
	}
	height := p.spriteHeight()
	for i := len(p.sprites) - 1; i >= 0; i-- {
		o := &p.sprites[i]
		py := int(p.ly) - o.screenY()
		if o.yFlip() {
			py = height - 1 - py
		}
		tile := o.tileIndex
		if height == 16 {
			tile &^= 1
		}
		base := int(tile) * 16 // sprites always use unsigned addressing
		palette := p.obp0
		if o.useOBP1() {
			palette = p.obp1
		}
		for px := 0; px < 8; px++ {
			sx := o.screenX() + px
			if sx < 0 || sx >= LCDWidth {
				continue
			}
			srcX := px
			if o.xFlip() {
				srcX = 7 - px
			}
			id := tilePixel(bus, base, srcX, py)
			if id == 0 {
				continue // color 0 is transparent
			}
			if o.behindBG() && p.bgColor[sx] != 0 {
				continue
			}
			p.framebuffer[row+sx] = grayscale[shade(palette, id)]
		}
	}
}
