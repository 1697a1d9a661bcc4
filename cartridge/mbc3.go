package cartridge

import "time"

// rtcRegister indices, selected the same way the RAM-bank register is
// selected on MBC1: a write to 0x4000-0x5FFF of 0x08-0x0C switches the
// 0xA000-0xBFFF window from RAM to one of these five latched values.
const (
	rtcSeconds = 0x08
	rtcMinutes = 0x09
	rtcHours   = 0x0a
	rtcDayLow  = 0x0b
	rtcDayHigh = 0x0c
)

// mbc3 adds a 7-bit ROM bank register (no secondary/banking-mode split), a
// RAM bank register that doubles as the RTC register selector, and the RTC
// latch itself. RTC values are wall-clock derived: the epoch is recorded at
// construction and the latch snapshots elapsed time into the five registers
// on the write's 0->1 edge.
type mbc3 struct {
	rom, ram      []byte
	title         string
	romBankNumber int // 7-bit register, 0 redirected to 1
	ramBank       int // 0-3 selects a RAM bank; 0x08-0x0c selects an RTC register
	ramEnabled    bool
	epoch         time.Time
	latchPending  uint8 // last byte written to 0x6000-0x7FFF, for edge detection
	latched       [5]uint8
}

func newMBC3(rom []byte, ramSize, romBankCount int) *mbc3 {
	return &mbc3{
		rom:           rom,
		ram:           make([]byte, ramSize),
		title:         romTitle(rom),
		romBankNumber: 1,
		epoch:         time.Now(),
		latchPending:  0x01, // so a first 0x01 write with no 0x00 before it does not latch
	}
}

func (c *mbc3) Title() string { return c.title }

func (c *mbc3) Read(addr uint16) uint8 {
	if addr <= 0x3fff {
		if int(addr) >= len(c.rom) {
			return 0xff
		}
		return c.rom[addr]
	}
	return bankedROMRead(c.rom, c.romBankNumber, addr)
}

func (c *mbc3) Write(addr uint16, val uint8) {
	switch {
	case addr <= 0x1fff:
		c.ramEnabled = val&0x0f == 0x0a
	case addr <= 0x3fff:
		num := int(val & 0x7f)
		if num == 0 {
			num = 1
		}
		c.romBankNumber = num
	case addr <= 0x5fff:
		c.ramBank = int(val)
	case addr <= 0x7fff:
		if c.latchPending == 0x00 && val == 0x01 {
			c.latch()
		}
		c.latchPending = val
	}
}

func (c *mbc3) latch() {
	elapsed := time.Since(c.epoch)
	totalSeconds := int64(elapsed / time.Second)
	days := totalSeconds / 86400
	rem := totalSeconds % 86400
	c.latched[0] = uint8(rem % 60)
	c.latched[1] = uint8((rem / 60) % 60)
	c.latched[2] = uint8((rem / 3600) % 24)
	c.latched[3] = uint8(days & 0xff)
	dayHigh := uint8((days >> 8) & 0x01)
	if days > 0x1ff {
		dayHigh |= 0x80 // day counter overflow/carry bit
	}
	c.latched[4] = dayHigh
}

func (c *mbc3) isRTCSelected() bool {
	return c.ramBank >= rtcSeconds && c.ramBank <= rtcDayHigh
}

func (c *mbc3) rtcIndex() int { return c.ramBank - rtcSeconds }

func (c *mbc3) ReadRAM(addr uint16) uint8 {
	if !c.ramEnabled {
		return 0xff
	}
	if c.isRTCSelected() {
		return c.latched[c.rtcIndex()]
	}
	off := int(addr-0xa000) + c.ramBank*0x2000
	if off < 0 || off >= len(c.ram) {
		return 0xff
	}
	return c.ram[off]
}

func (c *mbc3) WriteRAM(addr uint16, val uint8) {
	if !c.ramEnabled {
		return
	}
	if c.isRTCSelected() {
		c.latched[c.rtcIndex()] = val
		return
	}
	off := int(addr-0xa000) + c.ramBank*0x2000
	if off >= 0 && off < len(c.ram) {
		c.ram[off] = val
	}
}

func (c *mbc3) SaveRAM() []byte {
	out := make([]byte, len(c.ram))
	copy(out, c.ram)
	return out
}

func (c *mbc3) LoadRAM(data []byte) error {
	copy(c.ram, data)
	return nil
}
