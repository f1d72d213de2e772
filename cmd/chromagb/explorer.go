package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/chroma-emu/chromagb/internal/bus"
	"github.com/chroma-emu/chromagb/internal/emulator"
)

const (
	// One page is bytesPerRow x visibleRows bytes of the address space.
	bytesPerRow = 16
	visibleRows = 32
	pageSize    = bytesPerRow * visibleRows

	// Each byte is drawn as a cellSize x cellSize block.
	cellSize   = 8
	gridWidth  = bytesPerRow * cellSize
	gridHeight = visibleRows * cellSize
)

// Explorer implements the Ebiten game interface as an interactive hex-less
// memory viewer: every byte of the visible page is drawn as a shaded cell,
// read through the bus with debug rules so inspection does not advance the
// cartridge clock. A bus observer feeds a heat map drawn as a green tint
// over recently written cells.
type Explorer struct {
	ctx    *bus.Bus
	exec   emulator.Executive
	base   uint16 // address of the top-left cell, page aligned
	cursor uint16
	pixels []byte // RGBA, pre-allocated to avoid per-frame allocation
	heat   [0x10000]uint8
}

// NewExplorer creates an explorer over the given system context and installs
// itself as the bus observer.
func NewExplorer(ctx *bus.Bus) *Explorer {
	e := &Explorer{
		ctx:    ctx,
		pixels: make([]byte, gridWidth*gridHeight*4),
	}
	e.exec.Use(ctx)
	ctx.SetObserver(e)
	return e
}

// OnRead implements bus.Observer. The value passes through untouched; the
// explorer's own page scans go through here too, so reads do not heat cells.
func (e *Explorer) OnRead(_ uint16, value uint8) uint8 {
	return value
}

// OnWrite implements bus.Observer. Written cells flash on the heat map.
func (e *Explorer) OnWrite(addr uint16, _, _ uint8) {
	e.heat[addr] = 0xFF
}

// Update handles navigation and forwards one tick to the active context.
func (e *Explorer) Update() error {
	if err := e.exec.Tick(); err != nil {
		return err
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		e.cursor -= bytesPerRow
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		e.cursor += bytesPerRow
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		e.cursor--
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		e.cursor++
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		e.cursor -= pageSize
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown):
		e.cursor += pageSize
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		e.cursor = 0
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		// Poke 0x0A: on an MBC enable register this switches RAM on.
		e.ctx.Write(e.cursor, 0x0A, bus.DefaultRules())
	case inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		e.ctx.Write(e.cursor, 0x00, bus.DefaultRules())
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	}
	e.base = e.cursor - e.cursor%pageSize

	// The cursor read uses default rules: pointing at an RTC register shows
	// it ticking.
	value := e.ctx.Read(e.cursor, bus.DefaultRules())
	ebiten.SetWindowTitle(fmt.Sprintf("chromagb - %04X: %02X", e.cursor, value))

	// Cool the heat map.
	for i := range e.heat {
		if e.heat[i] > 0 {
			e.heat[i] -= min(e.heat[i], 8)
		}
	}
	return nil
}

// Draw renders the visible page.
func (e *Explorer) Draw(screen *ebiten.Image) {
	for row := 0; row < visibleRows; row++ {
		for col := 0; col < bytesPerRow; col++ {
			addr := e.base + uint16(row*bytesPerRow+col)
			value := e.ctx.Read(addr, bus.DebugRules())

			r, g, b := value, value, value
			if h := e.heat[addr]; h > 0 {
				g = max(g, h)
			}
			if addr == e.cursor {
				r, g, b = 0xFF-r, 0xFF-g, 0xFF-b
			}
			e.fillCell(col, row, r, g, b)
		}
	}
	screen.WritePixels(e.pixels)
}

// fillCell paints one byte cell into the pixel buffer.
func (e *Explorer) fillCell(col, row int, r, g, b uint8) {
	for y := row * cellSize; y < (row+1)*cellSize; y++ {
		for x := col * cellSize; x < (col+1)*cellSize; x++ {
			i := (y*gridWidth + x) * 4
			e.pixels[i] = r
			e.pixels[i+1] = g
			e.pixels[i+2] = b
			e.pixels[i+3] = 0xFF
		}
	}
}

// Layout implements the Ebiten game interface.
func (e *Explorer) Layout(_, _ int) (int, int) {
	return gridWidth, gridHeight
}
