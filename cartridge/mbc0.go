package cartridge

// mbc0 is the no-op controller: a single ROM bank, no RAM (or a fixed RAM
// size the header advertises, kept for parity with MBC1's RAM handling).
type mbc0 struct {
	rom, ram []byte
	title    string
}

func newMBC0(rom []byte) *mbc0 {
	ramSize, _ := ramSizeBytes(rom[headerRAMSize])
	return &mbc0{
		rom:   rom,
		ram:   make([]byte, ramSize),
		title: romTitle(rom),
	}
}

func (c *mbc0) Title() string { return c.title }

func (c *mbc0) Read(addr uint16) uint8 {
	if int(addr) >= len(c.rom) {
		return 0xff
	}
	return c.rom[addr]
}

func (c *mbc0) Write(addr uint16, val uint8) {
	// Writes to the ROM region are ignored; there is no banking register.
}

func (c *mbc0) ReadRAM(addr uint16) uint8 {
	off := int(addr - 0xa000)
	if off >= len(c.ram) {
		return 0xff
	}
	return c.ram[off]
}

func (c *mbc0) WriteRAM(addr uint16, val uint8) {
	off := int(addr - 0xa000)
	if off < len(c.ram) {
		c.ram[off] = val
	}
}

func (c *mbc0) SaveRAM() []byte {
	out := make([]byte, len(c.ram))
	copy(out, c.ram)
	return out
}

func (c *mbc0) LoadRAM(data []byte) error {
	copy(c.ram, data)
	return nil
}
