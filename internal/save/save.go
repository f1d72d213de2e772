// Package save persists battery-backed cartridge RAM to .sav files. The file
// is the raw external RAM buffer; cartridges with a clock get a 48-byte
// trailer holding the clock register file, in the little-endian word layout
// most emulators share.
package save

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chroma-emu/chromagb/internal/cartridge"
)

// ErrSaveTooShort indicates the save file is smaller than the cartridge RAM.
var ErrSaveTooShort = errors.New("save file shorter than cartridge RAM")

// clockTrailerSize is ten 32-bit clock registers plus a 64-bit timestamp.
const clockTrailerSize = 10*4 + 8

// Store writes the cartridge's battery-backed state to path. Cartridges
// without a battery are skipped. Call only while emulation is paused.
func Store(path string, cart cartridge.Cartridge) error {
	if cart == nil || !cart.HasBattery() {
		return nil
	}

	data := cart.RAM()
	if rtc, ok := cart.(cartridge.RealTimeClock); ok {
		rtc.UpdateClock()
		data = append(data, encodeClock(rtc.Clock())...)
	}
	if len(data) == 0 {
		return nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write save file: %w", err)
	}
	return nil
}

// Load restores battery-backed state from path. Cartridges without a battery
// are skipped. A missing file is reported via fs.ErrNotExist for the caller
// to treat as a fresh cartridge.
func Load(path string, cart cartridge.Cartridge) error {
	if cart == nil || !cart.HasBattery() {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read save file: %w", err)
	}

	ramLen := len(cart.RAM())
	if len(data) < ramLen {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrSaveTooShort, ramLen, len(data))
	}
	if err := cart.SetRAM(data[:ramLen]); err != nil {
		return fmt.Errorf("failed to restore cartridge RAM: %w", err)
	}

	if rtc, ok := cart.(cartridge.RealTimeClock); ok && len(data) >= ramLen+clockTrailerSize {
		rtc.SetClock(decodeClock(data[ramLen : ramLen+clockTrailerSize]))
	}
	return nil
}

func encodeClock(state cartridge.ClockState) []byte {
	buf := make([]byte, clockTrailerSize)
	regs := []uint8{
		state.Seconds, state.Minutes, state.Hours, state.DayLow, state.DayHigh,
		state.LatchedSeconds, state.LatchedMinutes, state.LatchedHours,
		state.LatchedDayLow, state.LatchedDayHigh,
	}
	for i, r := range regs {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(r))
	}
	binary.LittleEndian.PutUint64(buf[40:], uint64(state.LastUpdate.Unix()))
	return buf
}

func decodeClock(buf []byte) cartridge.ClockState {
	reg := func(i int) uint8 {
		return uint8(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return cartridge.ClockState{
		Seconds:        reg(0),
		Minutes:        reg(1),
		Hours:          reg(2),
		DayLow:         reg(3),
		DayHigh:        reg(4),
		LatchedSeconds: reg(5),
		LatchedMinutes: reg(6),
		LatchedHours:   reg(7),
		LatchedDayLow:  reg(8),
		LatchedDayHigh: reg(9),
		LastUpdate:     time.Unix(int64(binary.LittleEndian.Uint64(buf[40:])), 0),
	}
}
