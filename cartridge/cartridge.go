// Package cartridge implements the cartridge header parse and the bank
// translation of the four supported memory bank controllers: MBC0, MBC1,
// MBC3 (with RTC), and MBC5.
package cartridge

import (
	"github.com/pkg/errors"
)

const (
	headerTitleStart = 0x0134
	headerTitleEnd   = 0x0143
	headerType       = 0x0147
	headerROMSize    = 0x0148
	headerRAMSize    = 0x0149
	minROMSize       = 0x0150
)

// Controller is the closed set of operations every bank controller exposes.
// The memory bus holds the selected controller behind this interface.
type Controller interface {
	Read(addr uint16) uint8
	Write(addr uint16, val uint8)
	ReadRAM(addr uint16) uint8
	WriteRAM(addr uint16, val uint8)
	SaveRAM() []byte
	LoadRAM(data []byte) error
	Title() string
}

// ramSizeBytes maps the header's RAM-size code to a capacity in bytes.
func ramSizeBytes(code uint8) (int, error) {
	switch code {
	case 0x00:
		return 0, nil
	case 0x01:
		return 2 * 1024, nil
	case 0x02:
		return 8 * 1024, nil
	case 0x03:
		return 32 * 1024, nil
	case 0x04:
		return 128 * 1024, nil
	case 0x05:
		return 64 * 1024, nil
	default:
		return 0, errors.Errorf("unsupported RAM size code: 0x%02x", code)
	}
}

func romTitle(rom []byte) string {
	raw := rom[headerTitleStart : headerTitleEnd+1]
	end := len(raw)
	for i, b := range raw {
		if b == 0x00 {
			end = i
			break
		}
	}
	return string(raw[:end])
}

// Load parses the cartridge header at offset 0x0147 and returns the
// matching controller. ROM images shorter than minROMSize, or carrying an
// unrecognized cartridge-type byte, are a LoadError.
func Load(rom []byte) (Controller, error) {
	if len(rom) < minROMSize {
		return nil, errors.Errorf("ROM too small: %d bytes, need at least %d", len(rom), minROMSize)
	}

	ramSize, err := ramSizeBytes(rom[headerRAMSize])
	if err != nil {
		return nil, errors.Wrap(err, "load cartridge")
	}
	romBankCount := (32 * 1024 << rom[headerROMSize]) / 0x4000

	catType := rom[headerType]
	switch {
	case catType == 0x00:
		return newMBC0(rom), nil
	case catType >= 0x01 && catType <= 0x03:
		return newMBC1(rom, ramSize, romBankCount), nil
	case catType >= 0x0f && catType <= 0x13:
		return newMBC3(rom, ramSize, romBankCount), nil
	case catType >= 0x19 && catType <= 0x1e:
		return newMBC5(rom, ramSize, romBankCount), nil
	default:
		return nil, errors.Errorf("unsupported cartridge type: 0x%02x", catType)
	}
}

// bankedROMRead reads ROM byte bank*0x4000+(addr-0x4000) with bounds
// checking; out-of-range reads return 0xFF.
func bankedROMRead(rom []byte, bank int, addr uint16) uint8 {
	off := bank*0x4000 + int(addr-0x4000)
	if off < 0 || off >= len(rom) {
		return 0xff
	}
	return rom[off]
}
