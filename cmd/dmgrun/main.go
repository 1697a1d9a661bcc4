// Command dmgrun is a minimal host: it loads a ROM, drives one emulated
// frame per display tick, maps the keyboard onto the joypad byte, and blits
// the framebuffer. Cartridge RAM is restored from and persisted to the file
// named by -save when that flag is given.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/willow-systems/gbcore/diag"
	"github.com/willow-systems/gbcore/machine"
	"github.com/willow-systems/gbcore/ppu"
)

var (
	flagTrace = flag.Bool("trace", false, "enable diagnostic logging")
	flagSave  = flag.String("save", "", "cartridge RAM file")
	flagScale = flag.Int("scale", 3, "window scale factor")
)

type game struct {
	m      *machine.Machine
	save   string
	pixels []byte
}

func newGame(m *machine.Machine, save string) *game {
	return &game{
		m:      m,
		save:   save,
		pixels: make([]byte, 4*ppu.LCDWidth*ppu.LCDHeight),
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ppu.LCDWidth, ppu.LCDHeight
}

// joypadByte builds the active-low state byte: bits 0-3 Right/Left/Up/Down,
// bits 4-7 A/B/Select/Start.
func joypadByte() uint8 {
	state := uint8(0xff)
	press := func(key ebiten.Key, bit uint8) {
		if ebiten.IsKeyPressed(key) {
			state &^= 1 << bit
		}
	}
	press(ebiten.KeyD, 0)
	press(ebiten.KeyA, 1)
	press(ebiten.KeyW, 2)
	press(ebiten.KeyS, 3)
	press(ebiten.KeyK, 4)
	press(ebiten.KeyJ, 5)
	press(ebiten.KeySpace, 6)
	press(ebiten.KeyEnter, 7)
	return state
}

func (g *game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		if g.save != "" {
			if err := g.m.SaveRAM(g.save); err != nil {
				log.Printf("%v", err)
			}
		}
		os.Exit(0)
	}

	g.m.SetJoypad(joypadByte())
	g.m.RunFrame()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.m.FrameReady() {
		for i, px := range g.m.Framebuffer() {
			g.pixels[i*4+0] = uint8(px)
			g.pixels[i*4+1] = uint8(px >> 8)
			g.pixels[i*4+2] = uint8(px >> 16)
			g.pixels[i*4+3] = uint8(px >> 24)
		}
		g.m.ClearFrameReady()
	}
	screen.WritePixels(g.pixels)
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return fmt.Errorf("usage: %s [flags] ROM", os.Args[0])
	}
	if *flagTrace {
		diag.EnableTrace()
	}

	rom, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		return err
	}

	m := machine.New()
	if err := m.LoadROM(rom); err != nil {
		return err
	}
	if *flagSave != "" {
		if _, err := os.Stat(*flagSave); err == nil {
			if err := m.LoadRAM(*flagSave); err != nil {
				return err
			}
		}
	}

	ebiten.SetTPS(60)
	ebiten.SetWindowSize(ppu.LCDWidth*(*flagScale), ppu.LCDHeight*(*flagScale))
	ebiten.SetWindowTitle("dmgrun")
	return ebiten.RunGame(newGame(m, *flagSave))
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
