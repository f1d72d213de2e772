// Package emulator ties the cartridge and bus together and drives the tick
// loop through an explicit Executive, so callers decide which context is
// active instead of reaching through process-wide state.
package emulator

import (
	"errors"
	"fmt"

	"github.com/chroma-emu/chromagb/internal/bus"
	"github.com/chroma-emu/chromagb/internal/cartridge"
)

// ErrNoContext indicates the Executive was ticked with no context attached.
var ErrNoContext = errors.New("no system context attached")

// NewSystem loads a cartridge from a ROM image and attaches it to a fresh
// bus. A failed load leaves nothing attached anywhere.
func NewSystem(rom []byte) (*bus.Bus, error) {
	cart, err := cartridge.New(rom)
	if err != nil {
		return nil, fmt.Errorf("failed to load cartridge: %w", err)
	}

	b := bus.New()
	b.Attach(cart)
	return b, nil
}

// Executive forwards ticks to at most one active system context. The zero
// value has no context and reports ErrNoContext from Tick.
type Executive struct {
	ctx *bus.Bus
}

// Use sets the active context. Passing nil deactivates the Executive.
func (e *Executive) Use(ctx *bus.Bus) {
	e.ctx = ctx
}

// Context returns the active context, or nil.
func (e *Executive) Context() *bus.Bus {
	return e.ctx
}

// Tick forwards one step to the active context.
func (e *Executive) Tick() error {
	if e.ctx == nil {
		return ErrNoContext
	}
	e.ctx.Tick()
	return nil
}
