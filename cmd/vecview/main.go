// Command vecview is a terminal editor for vecpad drawings.
//
//	vecview [--log file] [--sample] [drawing.bin]
//	vecview discover [--timeout 2s]
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli"

	"github.com/inamate/vecpad/internal/config"
	"github.com/inamate/vecpad/internal/discovery"
	"github.com/inamate/vecpad/internal/engine"
	"github.com/inamate/vecpad/internal/geom"
	"github.com/inamate/vecpad/internal/render"
	"github.com/inamate/vecpad/internal/render/term"
	"github.com/inamate/vecpad/internal/workspace"
)

const (
	keyZoom = 1.25
	panStep = 4.0 // cells
)

var toolKeys = map[rune]string{
	'l': "line",
	'b': "rectangle",
	'c': "circle",
	'p': "connectedline",
	'd': "scribble",
	'e': "eraser",
	'v': engine.ToolSelect,
}

// Swapped out in tests.
var (
	runEditor = run
	browse    = discovery.Browse
)

func main() {
	if err := makeapp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func makeapp(out io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "vecview"
	app.Usage = "edit vecpad drawings in the terminal"
	app.ArgsUsage = "[drawing.bin]"
	app.Writer = out
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "log", Value: "", Usage: "write logs to this file"},
		cli.BoolFlag{Name: "sample", Usage: "start with the built-in sample drawing"},
	}
	app.Action = func(c *cli.Context) error {
		closeLog, err := setupLog(c.String("log"))
		if err != nil {
			return err
		}
		defer closeLog()
		return runEditor(c.Args().First(), c.Bool("sample"))
	}
	app.Commands = []cli.Command{
		{
			Name:  "discover",
			Usage: "list vecpad servers on the local network",
			Flags: []cli.Flag{
				cli.DurationFlag{Name: "timeout", Value: 2 * time.Second, Usage: "how long to listen for answers"},
			},
			Action: func(c *cli.Context) error {
				servers, err := browse(c.Duration("timeout"))
				if err != nil {
					return err
				}
				for _, s := range servers {
					fmt.Fprintf(out, "%s\t%s\tversion=%s\n", s.Name, s.Addr, s.Info["version"])
				}
				return nil
			},
		},
	}
	return app
}

// setupLog points the default logger at path, or discards logs when path is
// empty since the terminal belongs to the editor.
func setupLog(path string) (func(), error) {
	logOut, closeLog := io.Discard, func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log: %w", err)
		}
		logOut, closeLog = f, func() { f.Close() }
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return closeLog, nil
}

type app struct {
	screen tcell.Screen
	sink   *term.Sink
	eng    *engine.Engine
	ws     *workspace.Workspace
	status string
	// Mouse buttons held at the previous event.
	buttons tcell.ButtonMask
}

func run(path string, sample bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	sink := term.New(screen, render.White)
	w, h := sink.ViewSize()
	opts := engine.Options{Margin: cfg.ViewMargin / 4, ZoomStep: cfg.ZoomStep, HitTolerance: cfg.HitTolerance}
	if cfg.ScreenHitTolerance {
		opts.ScreenHitTolerance = cfg.HitTolerance
	}
	eng := engine.NewEngine(w, h, opts)

	a := &app{
		screen: screen,
		sink:   sink,
		eng:    eng,
		ws:     workspace.New(eng, &termPrompter{screen: screen}, slog.Default()),
	}

	switch {
	case path != "":
		if err := a.ws.Open(path); err != nil {
			return err
		}
	case sample:
		eng.LoadSampleDocument()
	}
	a.status = "l line  b rect  c circle  p polyline  d scribble  e eraser  v select  ? help"

	for {
		a.draw()
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			w, h := sink.ViewSize()
			eng.Resize(w, h)
			screen.Sync()
		case *tcell.EventKey:
			if a.handleKey(ev) {
				return nil
			}
		case *tcell.EventMouse:
			a.handleMouse(ev)
		}
	}
}

// toView maps a cell to the view point at its centre.
func toView(x, y int) geom.Point {
	return geom.Pt(float64(x)+0.5, (float64(y)+0.5)*term.CellAspect)
}

func (a *app) handleKey(ev *tcell.EventKey) (quit bool) {
	switch ev.Key() {
	case tcell.KeyLeft:
		a.report(a.eng.Pan(geom.Pt(panStep, 0)))
	case tcell.KeyRight:
		a.report(a.eng.Pan(geom.Pt(-panStep, 0)))
	case tcell.KeyUp:
		a.report(a.eng.Pan(geom.Pt(0, panStep*term.CellAspect)))
	case tcell.KeyDown:
		a.report(a.eng.Pan(geom.Pt(0, -panStep*term.CellAspect)))
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		a.deleteSelected()
	case tcell.KeyEscape:
		if a.eng.IsDrawing() {
			a.eng.Finish()
		} else {
			a.eng.ClearSelection()
		}
	case tcell.KeyCtrlC:
		return a.quit()
	case tcell.KeyRune:
		return a.handleRune(ev.Rune())
	}
	return false
}

func (a *app) handleRune(r rune) (quit bool) {
	if tool, ok := toolKeys[r]; ok {
		if err := a.eng.SetTool(tool); err != nil {
			a.status = err.Error()
		} else {
			a.status = "tool: " + tool
		}
		return false
	}

	var err error
	switch r {
	case '+', '=':
		err = a.eng.Zoom(1 / keyZoom)
	case '-':
		err = a.eng.Zoom(keyZoom)
	case 'f':
		err = a.eng.FitToDocument()
	case 'u':
		if !a.eng.Undo() {
			a.status = "nothing to undo"
		}
	case 'r':
		if !a.eng.Redo() {
			a.status = "nothing to redo"
		}
	case 's':
		err = a.ws.Save()
	case 'a':
		err = a.ws.SaveAs()
	case 'o':
		err = a.ws.Open("")
	case 'n':
		err = a.ws.New()
	case 'x':
		a.deleteSelected()
	case 'q':
		return a.quit()
	case '?':
		a.status = "arrows pan  +/- zoom  f fit  u/r undo/redo  x delete  s save  a save as  o open  n new  q quit"
	}
	a.report(err)
	return false
}

func (a *app) deleteSelected() {
	if a.eng.DeleteSelected() {
		a.status = "deleted"
	} else {
		a.status = "nothing selected"
	}
}

func (a *app) quit() bool {
	err := a.ws.Exit()
	if err == nil {
		return true
	}
	a.report(err)
	return false
}

func (a *app) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, workspace.ErrCancelled):
		a.status = "cancelled"
	default:
		slog.Error("command failed", "error", err)
		a.status = err.Error()
	}
}

func (a *app) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	p := toView(x, y)
	buttons := ev.Buttons()
	pressed := buttons&tcell.Button1 != 0
	wasPressed := a.buttons&tcell.Button1 != 0

	switch {
	case buttons&tcell.WheelUp != 0:
		a.report(a.eng.Wheel(p, 1))
	case buttons&tcell.WheelDown != 0:
		a.report(a.eng.Wheel(p, -1))
	case buttons&tcell.Button2 != 0 && a.buttons&tcell.Button2 == 0:
		a.report(a.eng.FitToDocument())
	case pressed && !wasPressed:
		a.report(a.eng.PointerDown(p))
	case pressed:
		a.eng.PointerMove(p)
	case wasPressed:
		a.eng.PointerUp(p)
	default:
		a.eng.PointerMove(p)
	}
	a.buttons = buttons
}

func (a *app) draw() {
	a.screen.Clear()
	a.eng.Render(a.sink)

	m := a.eng.Measure()
	modified := ""
	if a.eng.Modified() {
		modified = "*"
	}
	line := fmt.Sprintf("%s%s [%s] x=%.2f y=%.2f", a.ws.Name(), modified, a.eng.Tool(), m.X, m.Y)
	if a.eng.IsDrawing() {
		line += fmt.Sprintf(" dx=%.2f dy=%.2f len=%.2f angle=%.1f", m.DX, m.DY, m.Length, m.Angle)
	}
	if a.status != "" {
		line += "  | " + a.status
	}
	drawStatus(a.screen, line, tcell.StyleDefault.Reverse(true))
	a.screen.Show()
}
