package main

import (
	"github.com/gdamore/tcell/v2"

	"github.com/inamate/vecpad/internal/workspace"
)

// termPrompter asks questions on the bottom row of the screen.
type termPrompter struct {
	screen tcell.Screen
}

func (p *termPrompter) ConfirmSave(name string) (workspace.Answer, error) {
	p.show("Save changes to " + name + "? (y/n, esc cancels)")
	for {
		ev, ok := p.screen.PollEvent().(*tcell.EventKey)
		if !ok {
			continue
		}
		switch {
		case ev.Key() == tcell.KeyEscape:
			return workspace.AnswerCancel, nil
		case ev.Rune() == 'y' || ev.Rune() == 'Y':
			return workspace.AnswerYes, nil
		case ev.Rune() == 'n' || ev.Rune() == 'N':
			return workspace.AnswerNo, nil
		}
	}
}

func (p *termPrompter) PickOpenPath() (string, error) {
	return p.readLine("Open: ", ""), nil
}

func (p *termPrompter) PickSavePath(suggested string) (string, error) {
	return p.readLine("Save as: ", suggested), nil
}

// readLine edits a single line; escape returns "".
func (p *termPrompter) readLine(label, text string) string {
	buf := []rune(text)
	for {
		p.show(label + string(buf) + "_")
		ev, ok := p.screen.PollEvent().(*tcell.EventKey)
		if !ok {
			continue
		}
		switch ev.Key() {
		case tcell.KeyEscape:
			return ""
		case tcell.KeyEnter:
			return string(buf)
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
			}
		case tcell.KeyRune:
			buf = append(buf, ev.Rune())
		}
	}
}

func (p *termPrompter) show(text string) {
	drawStatus(p.screen, text, tcell.StyleDefault.Reverse(true))
	p.screen.Show()
}

// drawStatus fills the bottom row with text.
func drawStatus(screen tcell.Screen, text string, style tcell.Style) {
	cols, rows := screen.Size()
	y := rows - 1
	x := 0
	for _, r := range text {
		if x >= cols {
			break
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
	for ; x < cols; x++ {
		screen.SetContent(x, y, ' ', nil, style)
	}
}
