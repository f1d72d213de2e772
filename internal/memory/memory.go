// Package memory implements the console-resident memories: work RAM with
// CGB-style banking, high RAM and the SVBK bank-select register.
package memory

const (
	// wramBankSize is the size of one work RAM bank (4 KiB).
	wramBankSize = 0x1000

	// hramSize is the size of high RAM (0xFF80-0xFFFE).
	hramSize = 0x7F

	// dmgWRAMSize is the work RAM size on the original Game Boy: two fixed banks.
	dmgWRAMSize = 2 * wramBankSize

	// cgbWRAMSize is the work RAM size on the Game Boy Color: eight banks,
	// bank 0 fixed and banks 1-7 switchable through SVBK.
	cgbWRAMSize = 8 * wramBankSize
)

// Memory holds work RAM, high RAM and the SVBK register. The layout depends
// on whether the attached cartridge put the console in CGB mode.
type Memory struct {
	wram []uint8
	hram [hramSize]uint8
	svbk uint8
	cgb  bool
}

// New creates a zero-filled Memory for the given hardware mode.
func New(cgb bool) *Memory {
	m := &Memory{cgb: cgb}
	if cgb {
		m.wram = make([]uint8, cgbWRAMSize)
		m.svbk = 0xF8 // bank index 0, promoted to 1 on access
	} else {
		m.wram = make([]uint8, dmgWRAMSize)
	}
	return m
}

// CGB reports whether the memory is laid out for Game Boy Color mode.
func (m *Memory) CGB() bool {
	return m.cgb
}

// wramPos translates a work RAM window offset (0x0000-0x1FFF) to a buffer
// position. The low half always maps bank 0; the high half maps the bank
// selected by SVBK in CGB mode (0 promoted to 1) and bank 1 on DMG.
func (m *Memory) wramPos(offset uint16) int {
	if offset < wramBankSize {
		return int(offset)
	}
	bank := 1
	if m.cgb {
		bank = int(m.svbk & 0x07)
		if bank == 0 {
			bank = 1
		}
	}
	return bank*wramBankSize + int(offset-wramBankSize)
}

// ReadWRAM reads a byte from the work RAM window (offset 0x0000-0x1FFF).
func (m *Memory) ReadWRAM(offset uint16) uint8 {
	return m.wram[m.wramPos(offset&0x1FFF)]
}

// WriteWRAM writes a byte to the work RAM window (offset 0x0000-0x1FFF).
func (m *Memory) WriteWRAM(offset uint16, value uint8) {
	m.wram[m.wramPos(offset&0x1FFF)] = value
}

// ReadHRAM reads a byte from high RAM (offset 0x00-0x7E).
func (m *Memory) ReadHRAM(offset uint16) uint8 {
	return m.hram[offset%hramSize]
}

// WriteHRAM writes a byte to high RAM (offset 0x00-0x7E).
func (m *Memory) WriteHRAM(offset uint16, value uint8) {
	m.hram[offset%hramSize] = value
}

// ReadSVBK returns the SVBK register. Outside CGB mode the register does not
// exist and reads as open bus; in CGB mode bits 3-7 read as 1.
func (m *Memory) ReadSVBK() uint8 {
	if !m.cgb {
		return 0xFF
	}
	return 0xF8 | m.svbk&0x07
}

// WriteSVBK stores the switchable work RAM bank index. Ignored on DMG.
func (m *Memory) WriteSVBK(value uint8) {
	if m.cgb {
		m.svbk = value
	}
}
