package cartridge

import "fmt"

// ROMOnly represents a simple cartridge with no bank controller.
// Supports exactly 32 KiB of ROM and optional 8 KiB of RAM.
type ROMOnly struct {
	base
}

// newROMOnly creates a new ROM-only cartridge.
func newROMOnly(rom []byte, header *Header) (*ROMOnly, error) {
	if err := validateROMOnly(header); err != nil {
		return nil, err
	}

	cart := &ROMOnly{base{header: header, rom: rom}}
	cart.allocRAM()
	return cart, nil
}

// validateROMOnly rejects headers whose declared sizes are impossible for a
// cartridge without a bank controller.
func validateROMOnly(header *Header) error {
	if header.ROMSize != 0 {
		return fmt.Errorf("%w: ROM-only cartridge declares ROM size code 0x%02X",
			ErrHeaderMismatch, header.ROMSize)
	}
	switch Type(header.CartridgeType) {
	case TypeROMOnly:
		if header.RAMSize != 0 {
			return fmt.Errorf("%w: type ROM ONLY declares RAM size code 0x%02X",
				ErrHeaderMismatch, header.RAMSize)
		}
	default:
		if header.RAMSize != 0 && header.RAMSize != 0x02 {
			return fmt.Errorf("%w: type %s declares RAM size code 0x%02X",
				ErrHeaderMismatch, Type(header.CartridgeType), header.RAMSize)
		}
	}
	return nil
}

// ReadROM reads a byte from ROM.
func (c *ROMOnly) ReadROM(offset uint16) uint8 {
	if int(offset) < len(c.rom) {
		return c.rom[offset]
	}
	return openBus
}

// WriteROM ignores the write; there is no controller to command.
func (c *ROMOnly) WriteROM(_ uint16, _ uint8) uint8 {
	return openBus
}

// ReadRAM reads a byte from external RAM, if present.
func (c *ROMOnly) ReadRAM(offset uint16) uint8 {
	if int(offset) < len(c.ram) {
		return c.ram[offset]
	}
	return openBus
}

// WriteRAM stores a byte into external RAM, if present.
func (c *ROMOnly) WriteRAM(offset uint16, value uint8) uint8 {
	if int(offset) < len(c.ram) {
		c.ram[offset] = value
		return value
	}
	return openBus
}
