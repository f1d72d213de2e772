package cartridge

import (
	"testing"
	"time"
)

// setupHeader writes a minimal header into rom and fixes up the checksum.
// Call again after modifying any header byte.
func setupHeader(rom []byte, cartType, romSize, ramSize byte) {
	copy(rom[0x0134:], []byte("TEST"))
	rom[0x0147] = cartType
	rom[0x0148] = romSize
	rom[0x0149] = ramSize
	rom[0x014D] = HeaderChecksum(rom)
}

// buildROM allocates a ROM image of the given size with a valid header.
func buildROM(size int, cartType, romSize, ramSize byte) []byte {
	rom := make([]byte, size)
	setupHeader(rom, cartType, romSize, ramSize)
	return rom
}

// mustNew builds a cartridge via the factory and fails the test on error.
func mustNew(t *testing.T, rom []byte) Cartridge {
	t.Helper()
	cart, err := New(rom)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return cart
}

// fakeClock pins the package clock to a controllable instant.
func fakeClock(t *testing.T, start time.Time) *time.Time {
	t.Helper()
	current := start
	now = func() time.Time { return current }
	t.Cleanup(func() { now = time.Now })
	return &current
}
