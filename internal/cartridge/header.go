// Package cartridge implements Game Boy cartridge images and the memory bank
// controllers (MBCs) that live on them.
package cartridge

import (
	"errors"
	"fmt"
	"strings"
)

// Header is the parsed cartridge header (0x0100-0x014F). It is read-only
// after ParseHeader returns it.
type Header struct {
	// Entry point (0x0100-0x0103)
	EntryPoint [4]byte

	// Nintendo logo (0x0104-0x0133)
	Logo [48]byte

	// Title (0x0134-0x0143). Newer cartridges reuse the tail of this field
	// for the manufacturer code and CGB flag.
	Title [16]byte

	// CGB flag (0x0143)
	// 0x80 = works on both DMG and CGB
	// 0xC0 = CGB only
	// anything else = DMG only
	CGBFlag byte

	// New licensee code (0x0144-0x0145)
	NewLicenseeCode [2]byte

	// SGB flag (0x0146)
	SGBFlag byte

	// Cartridge type (0x0147), selects the MBC variant and the presence of
	// RAM, battery and timer
	CartridgeType byte

	// ROM size code (0x0148): 32 KiB << N for N in [0,8]
	ROMSize byte

	// RAM size code (0x0149): 0x00 none, 0x02 8 KiB, 0x03 32 KiB,
	// 0x04 128 KiB, 0x05 64 KiB
	RAMSize byte

	// Destination code (0x014A)
	DestinationCode byte

	// Old licensee code (0x014B)
	OldLicenseeCode byte

	// Mask ROM version (0x014C)
	MaskROMVersion byte

	// Header checksum (0x014D), covers 0x0134-0x014C
	HeaderChecksum byte

	// Global checksum (0x014E-0x014F), big-endian; not enforced because many
	// commercial images ship with a wrong one
	GlobalChecksum uint16
}

// CGB flag values that declare Game Boy Color support.
const (
	cgbCompatible = 0x80
	cgbOnly       = 0xC0
)

// Type identifies the cartridge hardware declared at 0x0147.
type Type byte

// Cartridge types handled (or at least named) by this core.
const (
	TypeROMOnly          Type = 0x00
	TypeMBC1             Type = 0x01
	TypeMBC1RAM          Type = 0x02
	TypeMBC1RAMBattery   Type = 0x03
	TypeROMRAM           Type = 0x08
	TypeROMRAMBattery    Type = 0x09
	TypeMBC3TimerBattery Type = 0x0F
	TypeMBC3TimerRAMBatt Type = 0x10
	TypeMBC3             Type = 0x11
	TypeMBC3RAM          Type = 0x12
	TypeMBC3RAMBattery   Type = 0x13
)

// String returns a human-readable name for the cartridge type.
func (t Type) String() string {
	switch t {
	case TypeROMOnly:
		return "ROM ONLY"
	case TypeMBC1:
		return "MBC1"
	case TypeMBC1RAM:
		return "MBC1+RAM"
	case TypeMBC1RAMBattery:
		return "MBC1+RAM+BATTERY"
	case TypeROMRAM:
		return "ROM+RAM"
	case TypeROMRAMBattery:
		return "ROM+RAM+BATTERY"
	case TypeMBC3TimerBattery:
		return "MBC3+TIMER+BATTERY"
	case TypeMBC3TimerRAMBatt:
		return "MBC3+TIMER+RAM+BATTERY"
	case TypeMBC3:
		return "MBC3"
	case TypeMBC3RAM:
		return "MBC3+RAM"
	case TypeMBC3RAMBattery:
		return "MBC3+RAM+BATTERY"
	default:
		return fmt.Sprintf("UNKNOWN (0x%02X)", byte(t))
	}
}

// HasRAM reports whether the cartridge type has an external RAM line.
func (t Type) HasRAM() bool {
	switch t {
	case TypeMBC1RAM, TypeMBC1RAMBattery,
		TypeROMRAM, TypeROMRAMBattery,
		TypeMBC3TimerRAMBatt, TypeMBC3RAM, TypeMBC3RAMBattery:
		return true
	default:
		return false
	}
}

// HasBattery reports whether the cartridge type includes a battery.
func (t Type) HasBattery() bool {
	switch t {
	case TypeMBC1RAMBattery,
		TypeROMRAMBattery,
		TypeMBC3TimerBattery, TypeMBC3TimerRAMBatt, TypeMBC3RAMBattery:
		return true
	default:
		return false
	}
}

// HasTimer reports whether the cartridge type carries the MBC3 real-time clock.
func (t Type) HasTimer() bool {
	return t == TypeMBC3TimerBattery || t == TypeMBC3TimerRAMBatt
}

// ROMBanks returns the number of 16 KiB ROM banks, or 0 for an invalid size code.
func (h *Header) ROMBanks() int {
	if h.ROMSize <= 0x08 {
		return 2 << h.ROMSize
	}
	return 0
}

// ROMSizeBytes returns the total ROM size in bytes.
func (h *Header) ROMSizeBytes() int {
	return h.ROMBanks() * 0x4000
}

// RAMBanks returns the number of 8 KiB external RAM banks, or 0 for none or
// an invalid size code.
func (h *Header) RAMBanks() int {
	switch h.RAMSize {
	case 0x02:
		return 1
	case 0x03:
		return 4
	case 0x04:
		return 16
	case 0x05:
		return 8
	default:
		return 0
	}
}

// RAMSizeBytes returns the total external RAM size in bytes.
func (h *Header) RAMSizeBytes() int {
	return h.RAMBanks() * 0x2000
}

// TitleString returns the title with trailing NULs trimmed.
func (h *Header) TitleString() string {
	return strings.TrimRight(string(h.Title[:]), "\x00")
}

// SupportsCGB reports whether the CGB flag declares Game Boy Color support.
func (h *Header) SupportsCGB() bool {
	return h.CGBFlag == cgbCompatible || h.CGBFlag == cgbOnly
}

// ErrInvalidROMSize indicates the image is too small to hold a header.
var ErrInvalidROMSize = errors.New("ROM too small: must be at least 336 bytes (0x0150)")

// ErrInvalidHeaderChecksum indicates the header checksum did not match.
var ErrInvalidHeaderChecksum = errors.New("invalid header checksum")

// ParseHeader parses and validates the cartridge header from a ROM image.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < 0x0150 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidROMSize, len(rom))
	}

	h := &Header{}
	copy(h.EntryPoint[:], rom[0x0100:0x0104])
	copy(h.Logo[:], rom[0x0104:0x0134])
	copy(h.Title[:], rom[0x0134:0x0144])
	h.CGBFlag = rom[0x0143]
	copy(h.NewLicenseeCode[:], rom[0x0144:0x0146])
	h.SGBFlag = rom[0x0146]
	h.CartridgeType = rom[0x0147]
	h.ROMSize = rom[0x0148]
	h.RAMSize = rom[0x0149]
	h.DestinationCode = rom[0x014A]
	h.OldLicenseeCode = rom[0x014B]
	h.MaskROMVersion = rom[0x014C]
	h.HeaderChecksum = rom[0x014D]
	h.GlobalChecksum = uint16(rom[0x014E])<<8 | uint16(rom[0x014F])

	if HeaderChecksum(rom) != h.HeaderChecksum {
		return nil, ErrInvalidHeaderChecksum
	}

	return h, nil
}

// HeaderChecksum computes the header checksum over bytes 0x0134-0x014C.
// Formula: checksum = 0; for each byte: checksum = checksum - byte - 1.
func HeaderChecksum(rom []byte) byte {
	checksum := byte(0)
	for addr := 0x0134; addr <= 0x014C; addr++ {
		checksum = checksum - rom[addr] - 1
	}
	return checksum
}
