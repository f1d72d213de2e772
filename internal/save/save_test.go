package save

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chroma-emu/chromagb/internal/cartridge"
)

// buildCart creates a cartridge of the given type with 8 KiB of external RAM.
func buildCart(t *testing.T, cartType byte) cartridge.Cartridge {
	t.Helper()
	rom := make([]byte, 0x8000)
	rom[0x0147] = cartType
	rom[0x0149] = 0x02
	rom[0x014D] = cartridge.HeaderChecksum(rom)
	cart, err := cartridge.New(rom)
	if err != nil {
		t.Fatalf("cartridge.New() error = %v", err)
	}
	return cart
}

func TestStoreAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.sav")
	cart := buildCart(t, 0x03) // MBC1+RAM+BATTERY

	ram := make([]byte, 0x2000)
	for i := range ram {
		ram[i] = uint8(i)
	}
	if err := cart.SetRAM(ram); err != nil {
		t.Fatalf("SetRAM() error = %v", err)
	}
	if err := Store(path, cart); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	fresh := buildCart(t, 0x03)
	if err := Load(path, fresh); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !bytes.Equal(fresh.RAM(), ram) {
		t.Error("restored RAM does not match stored RAM")
	}
}

func TestStoreSkipsBatteryless(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.sav")
	cart := buildCart(t, 0x02) // MBC1+RAM, no battery

	if err := Store(path, cart); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Error("Store() wrote a file for a batteryless cartridge")
	}
	if err := Load(path, cart); err != nil {
		t.Errorf("Load() error = %v, want nil for batteryless cartridge", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cart := buildCart(t, 0x03)
	err := Load(filepath.Join(t.TempDir(), "nope.sav"), cart)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load() error = %v, want fs.ErrNotExist", err)
	}
}

func TestLoadShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.sav")
	if err := os.WriteFile(path, make([]byte, 16), 0o644); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}

	cart := buildCart(t, 0x03)
	if err := Load(path, cart); !errors.Is(err, ErrSaveTooShort) {
		t.Errorf("Load() error = %v, want ErrSaveTooShort", err)
	}
}

func TestClockTrailerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.sav")
	cart := buildCart(t, 0x10) // MBC3+TIMER+RAM+BATTERY

	rtc, ok := cart.(cartridge.RealTimeClock)
	if !ok {
		t.Fatal("MBC3 timer cartridge does not expose a clock")
	}
	state := cartridge.ClockState{
		Seconds: 30, Minutes: 45, Hours: 12,
		DayLow: 0xFF, DayHigh: 0x01,
		LatchedSeconds: 29, LatchedMinutes: 45, LatchedHours: 12,
		LatchedDayLow: 0xFF, LatchedDayHigh: 0x01,
		LastUpdate: time.Now(),
	}
	rtc.SetClock(state)

	if err := Store(path, cart); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("os.ReadFile() error = %v", err)
	}
	if want := 0x2000 + clockTrailerSize; len(data) != want {
		t.Fatalf("save file is %d bytes, want %d", len(data), want)
	}

	fresh := buildCart(t, 0x10)
	if err := Load(path, fresh); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got := fresh.(cartridge.RealTimeClock).Clock()
	if got.Seconds != state.Seconds || got.Minutes != state.Minutes ||
		got.Hours != state.Hours || got.DayLow != state.DayLow ||
		got.DayHigh != state.DayHigh {
		t.Errorf("restored clock = %+v, want registers of %+v", got, state)
	}
	if got.LatchedSeconds != state.LatchedSeconds || got.LatchedDayLow != state.LatchedDayLow {
		t.Error("restored latched registers do not match")
	}
	if got.LastUpdate.Unix() != state.LastUpdate.Unix() {
		t.Errorf("restored timestamp = %v, want %v", got.LastUpdate.Unix(), state.LastUpdate.Unix())
	}
}
