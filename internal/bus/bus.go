// Package bus implements the system bus: it routes 16-bit addresses to the
// cartridge, work RAM, high RAM and the I/O registers owned by the memory
// component, and models open-bus behaviour everywhere else.
package bus

import (
	"github.com/chroma-emu/chromagb/internal/cartridge"
	"github.com/chroma-emu/chromagb/internal/memory"
)

// openBus is the value seen when no device drives the data lines.
const openBus = 0xFF

// Observer receives a notification after every routed access, including
// open-bus ones. Callbacks run synchronously on the bus thread and must not
// mutate bus state; OnRead may substitute the value the caller sees.
type Observer interface {
	// OnRead is called with the address and the value the bus produced.
	// Whatever it returns is what the reader receives.
	OnRead(addr uint16, value uint8) uint8

	// OnWrite is called with the address, the value the writer attempted,
	// and the value actually stored (0xFF when the write was dropped).
	OnWrite(addr uint16, attempted, stored uint8)
}

// AccessRules configures the side effects of a single bus access. Unknown
// future rules default to zero values, so a zero AccessRules is a plain
// side-effect-free access.
type AccessRules struct {
	// UpdateRTC advances the cartridge clock, if any, before the access.
	UpdateRTC bool
}

// DefaultRules returns the rules applied to ordinary CPU accesses.
func DefaultRules() AccessRules {
	return AccessRules{UpdateRTC: true}
}

// DebugRules returns the rules for debugger inspections, which must not
// disturb time-dependent state.
func DebugRules() AccessRules {
	return AccessRules{}
}

// Bus routes reads and writes by address range. It owns its Memory
// exclusively; the cartridge handle is shared with the frontend, which must
// only touch it while emulation is paused.
type Bus struct {
	cart     cartridge.Cartridge
	mem      *memory.Memory
	observer Observer
}

// New creates a bus with no cartridge attached. Cartridge-window accesses
// return open bus until one is attached; work RAM and high RAM respond
// immediately, laid out for DMG.
func New() *Bus {
	return &Bus{mem: memory.New(false)}
}

// Attach installs a cartridge, replacing any prior one, and resets the bus:
// memory is recreated zero-filled, sized by the cartridge's CGB support.
func (b *Bus) Attach(cart cartridge.Cartridge) {
	b.cart = cart
	b.mem = memory.New(cart != nil && cart.SupportsCGB())
}

// Detach removes the cartridge. The cartridge windows revert to open bus;
// memory keeps its current contents.
func (b *Bus) Detach() {
	b.cart = nil
}

// Cartridge returns the attached cartridge, or nil.
func (b *Bus) Cartridge() cartridge.Cartridge {
	return b.cart
}

// Memory returns the bus-owned memory component.
func (b *Bus) Memory() *memory.Memory {
	return b.mem
}

// SetObserver installs the access observer. A nil observer disables
// notifications.
func (b *Bus) SetObserver(o Observer) {
	b.observer = o
}

// applyRules runs the pre-access side effects requested by the caller.
func (b *Bus) applyRules(rules AccessRules) {
	if rules.UpdateRTC {
		if rtc, ok := b.cart.(cartridge.RealTimeClock); ok {
			rtc.UpdateClock()
		}
	}
}

// Read reads a byte from the bus. Unmapped addresses read as open bus with
// no side effects.
func (b *Bus) Read(addr uint16, rules AccessRules) uint8 {
	b.applyRules(rules)

	value := uint8(openBus)
	switch {
	// Cartridge ROM (0x0000-0x7FFF)
	case addr < 0x8000:
		if b.cart != nil {
			value = b.cart.ReadROM(addr)
		}

	// Cartridge external RAM (0xA000-0xBFFF)
	case addr >= 0xA000 && addr < 0xC000:
		if b.cart != nil {
			value = b.cart.ReadRAM(addr - 0xA000)
		}

	// Work RAM (0xC000-0xDFFF)
	case addr >= 0xC000 && addr < 0xE000:
		value = b.mem.ReadWRAM(addr - 0xC000)

	// High RAM (0xFF80-0xFFFE)
	case addr >= 0xFF80 && addr < 0xFFFF:
		value = b.mem.ReadHRAM(addr - 0xFF80)

	// SVBK (0xFF70)
	case addr == 0xFF70:
		value = b.mem.ReadSVBK()
	}

	if b.observer != nil {
		value = b.observer.OnRead(addr, value)
	}
	return value
}

// Write writes a byte to the bus and returns the value actually stored, or
// 0xFF when the write was dropped. Unmapped addresses drop the write.
func (b *Bus) Write(addr uint16, value uint8, rules AccessRules) uint8 {
	b.applyRules(rules)

	stored := uint8(openBus)
	switch {
	// Cartridge ROM window: MBC commands (0x0000-0x7FFF)
	case addr < 0x8000:
		if b.cart != nil {
			stored = b.cart.WriteROM(addr, value)
		}

	// Cartridge external RAM (0xA000-0xBFFF)
	case addr >= 0xA000 && addr < 0xC000:
		if b.cart != nil {
			stored = b.cart.WriteRAM(addr-0xA000, value)
		}

	// Work RAM (0xC000-0xDFFF)
	case addr >= 0xC000 && addr < 0xE000:
		b.mem.WriteWRAM(addr-0xC000, value)
		stored = value

	// High RAM (0xFF80-0xFFFE)
	case addr >= 0xFF80 && addr < 0xFFFF:
		b.mem.WriteHRAM(addr-0xFF80, value)
		stored = value

	// SVBK (0xFF70): readback reports what the register now holds, which on
	// DMG is open bus because the register does not exist.
	case addr == 0xFF70:
		b.mem.WriteSVBK(value)
		stored = b.mem.ReadSVBK()
	}

	if b.observer != nil {
		b.observer.OnWrite(addr, value, stored)
	}
	return stored
}

// Tick runs one step of bus housekeeping: the cartridge clock, if any, is
// advanced to the current wall-clock time.
func (b *Bus) Tick() {
	if rtc, ok := b.cart.(cartridge.RealTimeClock); ok {
		rtc.UpdateClock()
	}
}
