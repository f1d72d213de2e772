package cartridge

import "fmt"

// MBC1 represents a cartridge with MBC1 (Memory Bank Controller 1),
// supporting up to 2 MiB of ROM and 32 KiB of RAM.
//
// Control registers (selected by the ROM-window write offset):
// - 0x0000-0x1FFF: RAM enable (0x0A in the low nibble enables)
// - 0x2000-0x3FFF: ROM bank number, lower 5 bits (0 promoted to 1)
// - 0x4000-0x5FFF: RAM bank number / upper 2 ROM bank bits
// - 0x6000-0x7FFF: banking mode (0 = simple, 1 = advanced)
type MBC1 struct {
	base

	ramEnabled  bool
	romBank     uint8 // 5 bits, never reads back as 0
	ramBank     uint8 // 2 bits, doubles as ROM bank bits 5-6 on large ROMs
	bankingMode uint8 // bit 0 only

	romBanks int
	ramBanks int
}

// newMBC1 creates a new MBC1 cartridge.
func newMBC1(rom []byte, header *Header) (*MBC1, error) {
	if err := validateMBC1(header); err != nil {
		return nil, err
	}

	cart := &MBC1{
		base:     base{header: header, rom: rom},
		romBank:  1,
		romBanks: header.ROMBanks(),
		ramBanks: header.RAMBanks(),
	}
	cart.allocRAM()
	return cart, nil
}

// validateMBC1 rejects headers whose declared sizes are impossible for MBC1.
func validateMBC1(header *Header) error {
	if header.ROMSize > 0x06 { // 2 MiB is the most MBC1 can address
		return fmt.Errorf("%w: MBC1 declares ROM size code 0x%02X",
			ErrHeaderMismatch, header.ROMSize)
	}
	t := Type(header.CartridgeType)
	if !t.HasRAM() && header.RAMSize != 0 {
		return fmt.Errorf("%w: type %s declares RAM size code 0x%02X",
			ErrHeaderMismatch, t, header.RAMSize)
	}
	if t.HasRAM() && header.RAMSize > 0x03 {
		return fmt.Errorf("%w: MBC1 declares RAM size code 0x%02X",
			ErrHeaderMismatch, header.RAMSize)
	}
	return nil
}

// ReadROM reads a byte from the currently mapped ROM bank.
func (c *MBC1) ReadROM(offset uint16) uint8 {
	var bank int
	if offset < 0x4000 {
		// Fixed region. In advanced mode on large ROMs (>= 1 MiB) the RAM
		// bank register supplies ROM bank bits 5-6 here too.
		if c.bankingMode == 1 && c.romBanks >= 64 {
			bank = int(c.ramBank) << 5
		}
	} else {
		bank = int(c.ramBank)<<5 | int(c.romBank)
	}

	// Mask to the available banks, as hardware leaves the upper bank lines
	// unconnected on small cartridges.
	bank &= c.romBanks - 1

	var offsetInBank int
	if offset < 0x4000 {
		offsetInBank = int(offset)
	} else {
		offsetInBank = int(offset - 0x4000)
	}
	pos := bank*0x4000 + offsetInBank
	if pos < len(c.rom) {
		return c.rom[pos]
	}
	return openBus
}

// WriteROM reprograms the banking registers.
func (c *MBC1) WriteROM(offset uint16, value uint8) uint8 {
	switch {
	case offset < 0x2000:
		c.ramEnabled = value&0x0F == 0x0A

	case offset < 0x4000:
		c.romBank = value & 0x1F
		if c.romBank == 0 {
			c.romBank = 1
		}

	case offset < 0x6000:
		c.ramBank = value & 0x03

	default:
		c.bankingMode = value & 0x01
	}
	return value
}

// ramOffset translates an external RAM window offset to a buffer position.
func (c *MBC1) ramOffset(offset uint16) int {
	bank := 0
	if c.bankingMode == 1 && c.ramBanks > 1 {
		bank = int(c.ramBank) % c.ramBanks
	}
	return bank*0x2000 + int(offset)
}

// ReadRAM reads a byte from the currently mapped RAM bank.
func (c *MBC1) ReadRAM(offset uint16) uint8 {
	if !c.ramEnabled || c.ram == nil {
		return openBus
	}
	if pos := c.ramOffset(offset); pos < len(c.ram) {
		return c.ram[pos]
	}
	return openBus
}

// WriteRAM stores a byte into the currently mapped RAM bank.
func (c *MBC1) WriteRAM(offset uint16, value uint8) uint8 {
	if !c.ramEnabled || c.ram == nil {
		return openBus
	}
	if pos := c.ramOffset(offset); pos < len(c.ram) {
		c.ram[pos] = value
		return value
	}
	return openBus
}
