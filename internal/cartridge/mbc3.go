package cartridge

import (
	"fmt"
	"time"
)

// now is swapped out by tests that need a deterministic clock.
var now = time.Now

// RealTimeClock is implemented by cartridge variants that carry a
// battery-backed clock. The bus advances the clock through this interface
// without naming a concrete variant; the persistence collaborator uses it to
// save and restore the register file.
type RealTimeClock interface {
	// UpdateClock folds the wall-clock time elapsed since the last update
	// into the live clock registers.
	UpdateClock()

	// Clock returns the current clock register file.
	Clock() ClockState

	// SetClock restores a previously saved clock register file.
	SetClock(state ClockState)
}

// ClockState is the MBC3 clock register file: the live counters, the latched
// mirror and the wall-clock instant the live counters were last advanced to.
type ClockState struct {
	Seconds, Minutes, Hours uint8
	DayLow, DayHigh         uint8

	LatchedSeconds, LatchedMinutes, LatchedHours uint8
	LatchedDayLow, LatchedDayHigh                uint8

	LastUpdate time.Time
}

// DayHigh bits: bit 0 is day counter bit 8, bit 6 halts the clock, bit 7 is
// the sticky day-overflow flag.
const (
	dayHighBit8     = 0x01
	dayHighHalt     = 0x40
	dayHighOverflow = 0x80
)

// MBC3 represents a cartridge with MBC3, supporting up to 2 MiB of ROM,
// 32 KiB of RAM and an optional real-time clock.
//
// Control registers (selected by the ROM-window write offset):
// - 0x0000-0x1FFF: RAM and timer enable (0x0A in the low nibble enables)
// - 0x2000-0x3FFF: ROM bank number, 7 bits (0 promoted to 1)
// - 0x4000-0x5FFF: RAM bank (0x00-0x03) or RTC register (0x08-0x0C) select
// - 0x6000-0x7FFF: clock latch, armed by a 0x00 write and fired by 0x01
type MBC3 struct {
	base

	ramTimerEnabled bool
	romBank         uint8 // 7 bits, never reads back as 0
	ramOrClockSel   uint8 // 4 bits

	clock      ClockState
	latchArmed bool

	hasClock bool
	romBanks int
	ramBanks int
}

// RTC register selector values seen at 0x4000-0x5FFF.
const (
	selSeconds = 0x08
	selMinutes = 0x09
	selHours   = 0x0A
	selDayLow  = 0x0B
	selDayHigh = 0x0C
)

// newMBC3 creates a new MBC3 cartridge.
func newMBC3(rom []byte, header *Header) (*MBC3, error) {
	if err := validateMBC3(header); err != nil {
		return nil, err
	}

	cart := &MBC3{
		base:     base{header: header, rom: rom},
		romBank:  1,
		hasClock: Type(header.CartridgeType).HasTimer(),
		romBanks: header.ROMBanks(),
		ramBanks: header.RAMBanks(),
	}
	cart.clock.LastUpdate = now()
	cart.allocRAM()
	return cart, nil
}

// validateMBC3 rejects headers whose declared sizes are impossible for MBC3.
func validateMBC3(header *Header) error {
	if header.ROMSize > 0x06 { // 7 bank bits address at most 2 MiB
		return fmt.Errorf("%w: MBC3 declares ROM size code 0x%02X",
			ErrHeaderMismatch, header.ROMSize)
	}
	t := Type(header.CartridgeType)
	if !t.HasRAM() && header.RAMSize != 0 {
		return fmt.Errorf("%w: type %s declares RAM size code 0x%02X",
			ErrHeaderMismatch, t, header.RAMSize)
	}
	if t.HasRAM() && header.RAMSize > 0x03 {
		return fmt.Errorf("%w: MBC3 declares RAM size code 0x%02X",
			ErrHeaderMismatch, header.RAMSize)
	}
	return nil
}

// ReadROM reads a byte from the currently mapped ROM bank.
func (c *MBC3) ReadROM(offset uint16) uint8 {
	if offset < 0x4000 {
		return c.rom[offset]
	}
	bank := int(c.romBank) & (c.romBanks - 1)
	pos := bank*0x4000 + int(offset-0x4000)
	if pos < len(c.rom) {
		return c.rom[pos]
	}
	return openBus
}

// WriteROM reprograms the banking registers and drives the clock latch.
func (c *MBC3) WriteROM(offset uint16, value uint8) uint8 {
	switch {
	case offset < 0x2000:
		c.ramTimerEnabled = value&0x0F == 0x0A

	case offset < 0x4000:
		c.romBank = value & 0x7F
		if c.romBank == 0 {
			c.romBank = 1
		}

	case offset < 0x6000:
		c.ramOrClockSel = value & 0x0F

	default:
		c.writeLatch(value)
	}
	return value
}

// writeLatch tracks the 0x00 -> 0x01 sequence that snapshots the live clock
// into the latched registers.
func (c *MBC3) writeLatch(value uint8) {
	switch {
	case value == 0x00:
		c.latchArmed = true
	case value == 0x01 && c.latchArmed:
		c.UpdateClock()
		c.clock.LatchedSeconds = c.clock.Seconds
		c.clock.LatchedMinutes = c.clock.Minutes
		c.clock.LatchedHours = c.clock.Hours
		c.clock.LatchedDayLow = c.clock.DayLow
		c.clock.LatchedDayHigh = c.clock.DayHigh
		c.latchArmed = false
	default:
		c.latchArmed = false
	}
}

// ramPos translates an external RAM window offset to a buffer position,
// wrapping the selected bank to the populated bank count.
func (c *MBC3) ramPos(offset uint16) int {
	bank := int(c.ramOrClockSel) % c.ramBanks
	return bank*0x2000 + int(offset)
}

// ReadRAM reads from the mapped RAM bank or the latched RTC register.
func (c *MBC3) ReadRAM(offset uint16) uint8 {
	if !c.ramTimerEnabled {
		return openBus
	}
	switch {
	case c.ramOrClockSel <= 0x03:
		if c.ram == nil {
			return openBus
		}
		if pos := c.ramPos(offset); pos < len(c.ram) {
			return c.ram[pos]
		}
		return openBus

	case c.hasClock:
		switch c.ramOrClockSel {
		case selSeconds:
			return c.clock.LatchedSeconds
		case selMinutes:
			return c.clock.LatchedMinutes
		case selHours:
			return c.clock.LatchedHours
		case selDayLow:
			return c.clock.LatchedDayLow
		case selDayHigh:
			return c.clock.LatchedDayHigh
		}
	}
	return openBus
}

// WriteRAM writes to the mapped RAM bank or the live RTC register.
func (c *MBC3) WriteRAM(offset uint16, value uint8) uint8 {
	if !c.ramTimerEnabled {
		return openBus
	}
	switch {
	case c.ramOrClockSel <= 0x03:
		if c.ram == nil {
			return openBus
		}
		if pos := c.ramPos(offset); pos < len(c.ram) {
			c.ram[pos] = value
			return c.ram[pos]
		}
		return openBus

	case c.hasClock:
		switch c.ramOrClockSel {
		case selSeconds:
			c.clock.Seconds = value & 0x3F
		case selMinutes:
			c.clock.Minutes = value & 0x3F
		case selHours:
			c.clock.Hours = value & 0x1F
		case selDayLow:
			c.clock.DayLow = value
		case selDayHigh:
			c.clock.DayHigh = value & (dayHighBit8 | dayHighHalt | dayHighOverflow)
		default:
			return openBus
		}
		return value
	}
	return openBus
}

// UpdateClock implements RealTimeClock. Whole elapsed seconds are folded into
// the counters with carries through the 9-bit day counter; the fractional
// remainder stays accounted in LastUpdate so repeated updates never lose time.
func (c *MBC3) UpdateClock() {
	if !c.hasClock {
		return
	}
	if c.clock.DayHigh&dayHighHalt != 0 {
		// Halted: time passing while stopped is discarded.
		c.clock.LastUpdate = now()
		return
	}

	elapsed := int64(now().Sub(c.clock.LastUpdate) / time.Second)
	if elapsed <= 0 {
		return
	}
	c.clock.LastUpdate = c.clock.LastUpdate.Add(time.Duration(elapsed) * time.Second)

	c.clock.Seconds += uint8(elapsed % 60)
	if c.clock.Seconds >= 60 {
		c.clock.Seconds -= 60
		c.clock.Minutes++
	}
	elapsed /= 60
	c.clock.Minutes += uint8(elapsed % 60)
	if c.clock.Minutes >= 60 {
		c.clock.Minutes -= 60
		c.clock.Hours++
	}
	elapsed /= 60
	c.clock.Hours += uint8(elapsed % 24)
	days := int64(0)
	if c.clock.Hours >= 24 {
		c.clock.Hours -= 24
		days++
	}
	elapsed /= 24

	days += elapsed
	days += int64(c.clock.DayLow)
	days += int64(c.clock.DayHigh&dayHighBit8) << 8
	if days > 511 {
		days %= 512
		c.clock.DayHigh |= dayHighOverflow // sticky until software clears it
	}

	c.clock.DayLow = uint8(days)
	c.clock.DayHigh &^= dayHighBit8
	if days >= 256 {
		c.clock.DayHigh |= dayHighBit8
	}
}

// Clock implements RealTimeClock.
func (c *MBC3) Clock() ClockState {
	return c.clock
}

// SetClock implements RealTimeClock.
func (c *MBC3) SetClock(state ClockState) {
	if !c.hasClock {
		return
	}
	c.clock = state
	if c.clock.LastUpdate.IsZero() {
		c.clock.LastUpdate = now()
	}
}
