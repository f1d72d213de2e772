package cartridge

import (
	"errors"
	"testing"
)

func TestParseHeader(t *testing.T) {
	rom := make([]byte, 0x8000)

	// Entry point: NOP; JP 0x0150
	rom[0x0100] = 0x00
	rom[0x0101] = 0xC3
	rom[0x0102] = 0x50
	rom[0x0103] = 0x01

	copy(rom[0x0134:], []byte("TETRIS"))
	rom[0x0143] = 0x00 // DMG only
	rom[0x0144] = '0'
	rom[0x0145] = '1'
	rom[0x0147] = 0x00 // ROM only
	rom[0x0148] = 0x00 // 32 KiB
	rom[0x0149] = 0x00 // no RAM
	rom[0x014A] = 0x01
	rom[0x014B] = 0x33
	rom[0x014D] = HeaderChecksum(rom)
	rom[0x014E] = 0xAB
	rom[0x014F] = 0xCD

	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}

	if got := h.TitleString(); got != "TETRIS" {
		t.Errorf("TitleString() = %q, want %q", got, "TETRIS")
	}
	if h.SupportsCGB() {
		t.Error("SupportsCGB() = true for DMG-only header")
	}
	if h.CartridgeType != 0x00 {
		t.Errorf("CartridgeType = 0x%02X, want 0x00", h.CartridgeType)
	}
	if got := h.ROMBanks(); got != 2 {
		t.Errorf("ROMBanks() = %d, want 2", got)
	}
	if got := h.ROMSizeBytes(); got != 0x8000 {
		t.Errorf("ROMSizeBytes() = %d, want 32768", got)
	}
	if got := h.RAMBanks(); got != 0 {
		t.Errorf("RAMBanks() = %d, want 0", got)
	}
	if h.GlobalChecksum != 0xABCD {
		t.Errorf("GlobalChecksum = 0x%04X, want 0xABCD", h.GlobalChecksum)
	}
}

func TestParseHeaderCGBFlag(t *testing.T) {
	tests := []struct {
		name string
		flag byte
		want bool
	}{
		{"DMG only", 0x00, false},
		{"CGB compatible", 0x80, true},
		{"CGB only", 0xC0, true},
		{"garbage", 0x42, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rom := buildROM(0x8000, 0x00, 0x00, 0x00)
			rom[0x0143] = tt.flag
			rom[0x014D] = HeaderChecksum(rom)

			h, err := ParseHeader(rom)
			if err != nil {
				t.Fatalf("ParseHeader() error = %v", err)
			}
			if got := h.SupportsCGB(); got != tt.want {
				t.Errorf("SupportsCGB() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseHeaderTooSmall(t *testing.T) {
	_, err := ParseHeader(make([]byte, 0x0100))
	if !errors.Is(err, ErrInvalidROMSize) {
		t.Errorf("ParseHeader() error = %v, want ErrInvalidROMSize", err)
	}
}

func TestParseHeaderBadChecksum(t *testing.T) {
	rom := buildROM(0x8000, 0x00, 0x00, 0x00)
	rom[0x014D] ^= 0xFF

	_, err := ParseHeader(rom)
	if !errors.Is(err, ErrInvalidHeaderChecksum) {
		t.Errorf("ParseHeader() error = %v, want ErrInvalidHeaderChecksum", err)
	}
}

func TestTypeCapabilities(t *testing.T) {
	tests := []struct {
		typ                      Type
		hasRAM, hasBatt, hasTime bool
	}{
		{TypeROMOnly, false, false, false},
		{TypeROMRAM, true, false, false},
		{TypeROMRAMBattery, true, true, false},
		{TypeMBC1, false, false, false},
		{TypeMBC1RAM, true, false, false},
		{TypeMBC1RAMBattery, true, true, false},
		{TypeMBC3TimerBattery, false, true, true},
		{TypeMBC3TimerRAMBatt, true, true, true},
		{TypeMBC3, false, false, false},
		{TypeMBC3RAM, true, false, false},
		{TypeMBC3RAMBattery, true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			if got := tt.typ.HasRAM(); got != tt.hasRAM {
				t.Errorf("HasRAM() = %v, want %v", got, tt.hasRAM)
			}
			if got := tt.typ.HasBattery(); got != tt.hasBatt {
				t.Errorf("HasBattery() = %v, want %v", got, tt.hasBatt)
			}
			if got := tt.typ.HasTimer(); got != tt.hasTime {
				t.Errorf("HasTimer() = %v, want %v", got, tt.hasTime)
			}
		})
	}
}

func TestRAMBanks(t *testing.T) {
	tests := []struct {
		code  byte
		banks int
	}{
		{0x00, 0},
		{0x01, 0}, // unused code
		{0x02, 1},
		{0x03, 4},
		{0x04, 16},
		{0x05, 8},
		{0x06, 0}, // invalid code
	}

	for _, tt := range tests {
		h := &Header{RAMSize: tt.code}
		if got := h.RAMBanks(); got != tt.banks {
			t.Errorf("RAMBanks(0x%02X) = %d, want %d", tt.code, got, tt.banks)
		}
		if got := h.RAMSizeBytes(); got != tt.banks*0x2000 {
			t.Errorf("RAMSizeBytes(0x%02X) = %d, want %d", tt.code, got, tt.banks*0x2000)
		}
	}
}
