package cartridge

import (
	"errors"
	"fmt"
)

// Cartridge is the capability set shared by all mapper variants. ROM offsets
// are relative to the 0x0000-0x7FFF bus window, RAM offsets to 0xA000-0xBFFF.
type Cartridge interface {
	// ReadROM returns a byte from the ROM window (offset 0x0000-0x7FFF).
	ReadROM(offset uint16) uint8

	// WriteROM interprets a write into the ROM window as an MBC command.
	// ROM bytes are never modified. It returns the value accepted by the
	// controller, or 0xFF when the write was ignored.
	WriteROM(offset uint16, value uint8) uint8

	// ReadRAM returns a byte from the external RAM window (offset 0x0000-0x1FFF).
	ReadRAM(offset uint16) uint8

	// WriteRAM stores a byte into the external RAM window. It returns the
	// value actually stored, or 0xFF when the write was dropped.
	WriteRAM(offset uint16, value uint8) uint8

	// Header returns the parsed cartridge header.
	Header() *Header

	// SupportsCGB reports whether the header declares Game Boy Color support.
	SupportsCGB() bool

	// HasBattery reports whether external RAM is battery-backed.
	HasBattery() bool

	// RAM returns a copy of the external RAM buffer for persistence, or nil.
	RAM() []byte

	// SetRAM loads persisted save data into the external RAM buffer.
	SetRAM(data []byte) error
}

// openBus is the value returned when nothing drives the data lines.
const openBus = 0xFF

// ErrInvalidCartridgeType indicates an unsupported or unknown cartridge type.
var ErrInvalidCartridgeType = errors.New("invalid or unsupported cartridge type")

// ErrHeaderMismatch indicates the declared ROM/RAM sizes conflict with the
// cartridge type.
var ErrHeaderMismatch = errors.New("header sizes conflict with cartridge type")

// ErrROMSizeMismatch indicates the image is shorter than the header declares.
var ErrROMSizeMismatch = errors.New("ROM size does not match header")

// ErrROMTooLarge indicates the image exceeds the maximum mappable size.
var ErrROMTooLarge = errors.New("ROM size exceeds maximum allowed size of 8 MiB")

// base carries the state every variant owns: the ROM image, the external RAM
// buffer (nil when the type has no RAM line) and the parsed header.
type base struct {
	header *Header
	rom    []byte
	ram    []byte
}

func (b *base) Header() *Header   { return b.header }
func (b *base) SupportsCGB() bool { return b.header.SupportsCGB() }

func (b *base) HasBattery() bool {
	return Type(b.header.CartridgeType).HasBattery()
}

func (b *base) RAM() []byte {
	if b.ram == nil {
		return nil
	}
	ramCopy := make([]byte, len(b.ram))
	copy(ramCopy, b.ram)
	return ramCopy
}

func (b *base) SetRAM(data []byte) error {
	if b.ram == nil {
		return nil
	}
	copy(b.ram, data[:min(len(data), len(b.ram))])
	return nil
}

// allocRAM zero-initializes the external RAM buffer declared by the header.
func (b *base) allocRAM() {
	if Type(b.header.CartridgeType).HasRAM() && b.header.RAMSizeBytes() > 0 {
		b.ram = make([]byte, b.header.RAMSizeBytes())
	}
}

// New creates a cartridge from a ROM image. It parses and validates the
// header, dispatches on the cartridge type, runs the variant's type-specific
// validation and zero-initializes external RAM.
func New(rom []byte) (Cartridge, error) {
	const maxROMSize = 8 * 1024 * 1024
	if len(rom) > maxROMSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrROMTooLarge, len(rom))
	}

	header, err := ParseHeader(rom)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	if len(rom) < header.ROMSizeBytes() {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrROMSizeMismatch, header.ROMSizeBytes(), len(rom))
	}

	switch Type(header.CartridgeType) {
	case TypeROMOnly, TypeROMRAM, TypeROMRAMBattery:
		return newROMOnly(rom, header)

	case TypeMBC1, TypeMBC1RAM, TypeMBC1RAMBattery:
		return newMBC1(rom, header)

	case TypeMBC3TimerBattery, TypeMBC3TimerRAMBatt, TypeMBC3, TypeMBC3RAM, TypeMBC3RAMBattery:
		return newMBC3(rom, header)

	default:
		return nil, fmt.Errorf("%w: type 0x%02X (%s)",
			ErrInvalidCartridgeType, header.CartridgeType, Type(header.CartridgeType))
	}
}
