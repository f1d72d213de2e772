// Package main provides the chromagb CLI.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/chroma-emu/chromagb/internal/cartridge"
	"github.com/chroma-emu/chromagb/internal/emulator"
	"github.com/chroma-emu/chromagb/internal/romfile"
	"github.com/chroma-emu/chromagb/internal/save"
)

// ErrInvalidScale indicates the scale factor is out of valid range.
var ErrInvalidScale = errors.New("scale must be between 1 and 10")

// CLI represents the command-line interface structure.
type CLI struct {
	Info    InfoCmd    `cmd:"" help:"Display cartridge information."`
	Explore ExploreCmd `cmd:"" help:"Open an interactive memory explorer for a ROM."`
}

// InfoCmd displays cartridge header information.
type InfoCmd struct {
	ROM string `arg:"" type:"existingfile" help:"Path to ROM file (.gb/.gbc, optionally zipped)."`
}

// Run executes the info command.
func (c *InfoCmd) Run() error {
	data, err := romfile.Load(c.ROM)
	if err != nil {
		return err
	}

	cart, err := cartridge.New(data)
	if err != nil {
		return fmt.Errorf("failed to load cartridge: %w", err)
	}

	header := cart.Header()
	fmt.Printf("ROM Information:\n")
	fmt.Printf("  Title:          %s\n", header.TitleString())
	fmt.Printf("  Cartridge Type: %s (0x%02X)\n", cartridge.Type(header.CartridgeType), header.CartridgeType)
	fmt.Printf("  ROM Size:       %d KiB (%d banks)\n", header.ROMSizeBytes()/1024, header.ROMBanks())
	fmt.Printf("  RAM Size:       %d KiB (%d banks)\n", header.RAMSizeBytes()/1024, header.RAMBanks())
	fmt.Printf("  Has Battery:    %v\n", cart.HasBattery())
	fmt.Printf("  CGB Support:    %v (flag 0x%02X)\n", cart.SupportsCGB(), header.CGBFlag)
	fmt.Printf("  SGB Flag:       0x%02X\n", header.SGBFlag)
	fmt.Printf("  Fingerprint:    %016x\n", romfile.Fingerprint(data))

	return nil
}

// ExploreCmd opens an interactive viewer over the system bus.
type ExploreCmd struct {
	ROM   string `arg:"" type:"existingfile" help:"Path to ROM file."`
	Scale int    `help:"Display scale factor (1-10)." default:"3"`
	Save  string `help:"Battery save file to load on start and store on exit."`
}

// Run executes the explore command.
func (c *ExploreCmd) Run() error {
	if c.Scale < 1 || c.Scale > 10 {
		return fmt.Errorf("%w: got %d", ErrInvalidScale, c.Scale)
	}

	data, err := romfile.Load(c.ROM)
	if err != nil {
		return err
	}

	ctx, err := emulator.NewSystem(data)
	if err != nil {
		return err
	}

	if c.Save != "" {
		if err := save.Load(c.Save, ctx.Cartridge()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	explorer := NewExplorer(ctx)
	ebiten.SetWindowTitle("chromagb - " + ctx.Cartridge().Header().TitleString())
	ebiten.SetWindowSize(gridWidth*c.Scale, gridHeight*c.Scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(explorer); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("explorer error: %w", err)
	}

	if c.Save != "" {
		if err := save.Store(c.Save, ctx.Cartridge()); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("chromagb"),
		kong.Description("Game Boy / Game Boy Color memory-system tools."),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
