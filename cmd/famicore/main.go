package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/examples/resources/fonts"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"famicore"
)

var controllerKeys = map[ebiten.Key]uint8{
	ebiten.KeyX:     famicore.ButtonA,
	ebiten.KeyZ:     famicore.ButtonB,
	ebiten.KeyA:     famicore.ButtonSelect,
	ebiten.KeyS:     famicore.ButtonStart,
	ebiten.KeyUp:    famicore.ButtonUp,
	ebiten.KeyDown:  famicore.ButtonDown,
	ebiten.KeyLeft:  famicore.ButtonLeft,
	ebiten.KeyRight: famicore.ButtonRight,
}

var (
	white = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	green = color.RGBA{G: 0xFF, A: 0xFF}
	red   = color.RGBA{R: 0xFF, A: 0xFF}
)

type Game struct {
	console   *famicore.Console
	statePath string

	screen *ebiten.Image
	pixels []byte

	paused    bool
	showDebug bool

	defaultFont font.Face
}

func (g *Game) Update() error {
	buttons := uint8(0)
	for _, key := range inpututil.AppendPressedKeys(nil) {
		buttons |= controllerKeys[key]
	}
	g.console.Controller(0).SetButtons(buttons)

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.console.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.showDebug = !g.showDebug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		if err := g.saveState(); err != nil {
			log.Printf("save state: %v", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		if err := g.loadState(); err != nil {
			log.Printf("load state: %v", err)
		}
	}

	if g.paused {
		return nil
	}

	frame, err := g.console.AdvanceFrame()
	if err != nil {
		return err
	}
	g.blit(frame)
	return nil
}

func (g *Game) blit(frame *famicore.Frame) {
	i := 0
	for y := 0; y < famicore.FrameHeight; y++ {
		for x := 0; x < famicore.FrameWidth; x++ {
			c := frame.ColorAt(x, y)
			g.pixels[i] = c.R
			g.pixels[i+1] = c.G
			g.pixels[i+2] = c.B
			g.pixels[i+3] = 0xFF
			i += 4
		}
	}
	g.screen.WritePixels(g.pixels)
}

func (g *Game) saveState() error {
	f, err := os.Create(g.statePath)
	if err != nil {
		return err
	}
	defer f.Close()
	return g.console.SaveState(f)
}

func (g *Game) loadState() error {
	f, err := os.Open(g.statePath)
	if err != nil {
		return err
	}
	defer f.Close()
	return g.console.LoadState(f)
}

func (g *Game) getDefaultFont() font.Face {
	if g.defaultFont != nil {
		return g.defaultFont
	}
	tt, err := opentype.Parse(fonts.MPlus1pRegular_ttf)
	if err != nil {
		log.Fatal(err)
	}
	face, err := opentype.NewFace(tt, &opentype.FaceOptions{
		Size:    8,
		DPI:     144,
		Hinting: font.HintingNone,
	})
	if err != nil {
		log.Fatal(err)
	}
	g.defaultFont = face
	return g.defaultFont
}

func (g *Game) drawCPU(screen *ebiten.Image, x, y int) {
	cpu := g.console.CPU()

	text.Draw(screen, "STATUS:", g.getDefaultFont(), x, y, white)
	flags := []struct {
		name string
		flag famicore.CPUFlag
	}{
		{"N", famicore.N}, {"V", famicore.V}, {"B", famicore.B}, {"D", famicore.D},
		{"I", famicore.I}, {"Z", famicore.Z}, {"C", famicore.C},
	}
	for i, f := range flags {
		clr := red
		if cpu.Flag(f.flag) {
			clr = green
		}
		text.Draw(screen, f.name, g.getDefaultFont(), x+70+i*10, y, clr)
	}

	lines := []string{
		fmt.Sprintf("PC: $%04X", cpu.PC()),
		fmt.Sprintf("A: $%02X", cpu.A()),
		fmt.Sprintf("X: $%02X", cpu.X()),
		fmt.Sprintf("Y: $%02X", cpu.Y()),
		fmt.Sprintf("SP: $%02X", cpu.SP()),
	}
	for i, line := range lines {
		text.Draw(screen, line, g.getDefaultFont(), x, y+(i+1)*16, white)
	}
}

func (g *Game) drawRAM(screen *ebiten.Image, x, y int, addr uint16, rows, columns int) {
	for row := 0; row < rows; row++ {
		line := fmt.Sprintf("$%04X:", addr)
		for col := 0; col < columns; col++ {
			line = fmt.Sprintf("%s %02X", line, g.console.ReadMemory(addr))
			addr++
		}
		ebitenutil.DebugPrintAt(screen, line, x, y)
		y += 16
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(3, 3)
	screen.DrawImage(g.screen, op)

	if g.showDebug {
		g.drawCPU(screen, famicore.FrameWidth*3+10, 20)
		g.drawRAM(screen, famicore.FrameWidth*3+10, 140, 0x0000, 16, 8)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return famicore.FrameWidth*3 + 240, famicore.FrameHeight * 3
}

func main() {
	romPath := flag.String("rom", "", "path to an iNES rom image")
	statePath := flag.String("state", "", "save state file (defaults to <rom>.state)")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("usage: famicore -rom game.nes")
	}
	if *statePath == "" {
		*statePath = *romPath + ".state"
	}

	cart, err := famicore.LoadCartridge(*romPath)
	if err != nil {
		log.Fatal(err)
	}
	console, err := famicore.NewConsole(cart)
	if err != nil {
		log.Fatal(err)
	}

	game := &Game{
		console:   console,
		statePath: *statePath,
		screen:    ebiten.NewImage(famicore.FrameWidth, famicore.FrameHeight),
		pixels:    make([]byte, famicore.FrameWidth*famicore.FrameHeight*4),
	}

	ebiten.SetWindowSize(famicore.FrameWidth*3+240, famicore.FrameHeight*3)
	ebiten.SetWindowTitle("famicore")
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
