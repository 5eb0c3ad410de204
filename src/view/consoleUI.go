package view

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"

	"termlife/src/simulation"
	"termlife/src/universe"
)

const (
	viewHeader        = "header"
	viewStats         = "stats"
	viewConfiguration = "configuration"
	viewUniverse      = "universe"
	viewHelp          = "help"

	title = "Game of Life"
)

//Controller is the part of the simulation the UI drives
type Controller interface {
	Status() simulation.Status
	Options() simulation.Options
	Step()
	TogglePause()
	Reseed()
}

type keyBindings struct {
	key      interface{}
	name     string
	descr    string
	handler  func(v *gocui.View) error
	viewName string
}

//ConsoleUI is the interactive terminal viewer
type ConsoleUI struct {
	c          Controller
	g          *gocui.Gui
	k          []keyBindings
	liveFiller string
	status     struct {
		simulation.Status
		sync.Mutex
		//closed is set once the main loop returned, Update must not be called after that
		closed bool
	}
}

var runningStateDescr = map[simulation.RunningState]string{
	simulation.RunningStateManual:   aurora.Colorize("paused", aurora.BlueFg).String(),
	simulation.RunningStateRun:      aurora.Colorize("running", aurora.CyanFg).String(),
	simulation.RunningStateFinished: aurora.Colorize("finished", aurora.RedFg).String(),
}

//NewConsoleUI takes over the terminal
func NewConsoleUI(c Controller) (*ConsoleUI, error) {
	var err error
	t := ConsoleUI{
		c:          c,
		liveFiller: aurora.Green(universe.AliveGlyph).String(),
	}
	t.status.Status = c.Status()

	t.g, err = gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, errors.Wrap(err, "open terminal")
	}

	t.k = []keyBindings{
		{'q', "Q", "Quit", t.cmdQuit, ""},
		{gocui.KeyCtrlC, "^C", "Quit", t.cmdQuit, ""},
		{gocui.KeySpace, "SPACE", "Pause/Resume", t.cmdTogglePause, ""},
		{'n', "N", "Next step", t.cmdNextStep, ""},
		{'w', "W", "Settle with random", t.cmdReseed, ""},
	}
	t.g.SetManagerFunc(t.layout)

	if err := t.initKeyBindings(t.k); err != nil {
		t.g.Close()
		return nil, err
	}
	return &t, nil
}

func (t *ConsoleUI) initKeyBindings(k []keyBindings) error {
	for _, kb := range k {
		h := kb.handler
		if err := t.g.SetKeybinding(kb.viewName, kb.key, gocui.ModNone, func(gui *gocui.Gui, view *gocui.View) error { return h(view) }); err != nil {
			return errors.Wrapf(err, "bind %s", kb.name)
		}
	}
	return nil
}

//Start runs the UI main loop until the user quits or ctx is done
func (t *ConsoleUI) Start(ctx context.Context) error {
	defer t.g.Close()
	loopDone := make(chan struct{})
	defer func() {
		t.status.Lock()
		t.status.closed = true
		t.status.Unlock()
		close(loopDone)
	}()
	go quitOnDone(ctx, loopDone, func() {
		t.g.Update(func(*gocui.Gui) error { return gocui.ErrQuit })
	})
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		return errors.Wrap(err, "ui main loop")
	}
	return nil
}

//quitOnDone calls quit when ctx is done while the main loop still runs
//it returns without calling quit once loopDone is closed
func quitOnDone(ctx context.Context, loopDone <-chan struct{}, quit func()) {
	select {
	case <-loopDone:
	case <-ctx.Done():
		select {
		case <-loopDone:
		default:
			quit()
		}
	}
}

func (t *ConsoleUI) Refresh(st simulation.Status) {
	t.status.Lock()
	t.status.Status = st
	closed := t.status.closed
	t.status.Unlock()
	if closed {
		return
	}
	//it needs to call Update when calls from goroutine
	t.g.Update(func(g *gocui.Gui) error {
		t.renderUniverse(g)
		t.renderStats(g)
		return nil
	})
}

func (t *ConsoleUI) currentStatus() simulation.Status {
	t.status.Lock()
	defer t.status.Unlock()
	return t.status.Status
}

func (t *ConsoleUI) renderUniverse(g *gocui.Gui) {
	v, err := g.View(viewUniverse)
	if err != nil {
		return
	}
	v.Clear()

	maxW, maxH := v.Size()
	lines, cropped := cropLines(t.currentStatus().Text, maxW, maxH)

	var b bytes.Buffer
	for i, l := range lines {
		if i != 0 {
			b.WriteByte('\n')
		}
		if cropped && i == len(lines)-1 {
			b.WriteString(aurora.Red("The universe is larger than the viewing area").BgBlack().String())
			break
		}
		b.WriteString(strings.ReplaceAll(l, universe.AliveGlyph, t.liveFiller))
	}
	_, _ = fmt.Fprint(v, b.String())
}

func (t *ConsoleUI) renderStats(g *gocui.Gui) {
	s := t.currentStatus()
	if v, e := g.View(viewStats); e == nil {
		v.Clear()
		_, _ = fmt.Fprintln(v, t.renderProp("Alive cells", "%v", s.Alive))
		_, _ = fmt.Fprintln(v, t.renderProp("Dead cells", "%v", s.Dead))
		_, _ = fmt.Fprintln(v)
		_, _ = fmt.Fprintln(v, t.renderProp("Generation", "%v", s.Generation))
		_, _ = fmt.Fprintln(v, t.renderProp("Evaluation", "%v", s.IterationTime.Round(time.Microsecond)))
		mode := runningStateDescr[s.Mode]
		if s.Reason != "" {
			mode += " (" + s.Reason + ")"
		}
		_, _ = fmt.Fprintln(v, t.renderProp("Mode", "%v", mode))
	}
}

func (t *ConsoleUI) renderConfiguration(g *gocui.Gui) {
	o := t.c.Options()
	s := t.currentStatus()
	if v, e := g.View(viewConfiguration); e == nil {
		v.Clear()
		_, _ = fmt.Fprintln(v, t.renderProp("Dimension", "%v x %v", s.Size, s.Size))
		_, _ = fmt.Fprintln(v, t.renderProp("Interval", "%v", o.Interval))
		if o.MaxSteps > 0 {
			_, _ = fmt.Fprintln(v, t.renderProp("Generations", "%v", o.MaxSteps))
		} else {
			_, _ = fmt.Fprintln(v, t.renderProp("Generations", "unlimited"))
		}
	}
}

func (t *ConsoleUI) renderProp(name string, valueformat string, values ...interface{}) string {
	return fmt.Sprintf(" "+aurora.Colorize(name, aurora.GreenFg).String()+": "+valueformat, values...)
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	leftColumnWidth := 28
	minWindowHeight := 16

	if maxY < minWindowHeight {
		if _, err := t.headerLayout(g, maxY, "Terminal height too small"); err != nil && err != gocui.ErrUnknownView {
			return err
		}
		_ = g.DeleteView(viewStats)
		_ = g.DeleteView(viewConfiguration)
		_ = g.DeleteView(viewUniverse)
		return nil
	}
	if _, err := t.headerLayout(g, 3, title); err != nil && err != gocui.ErrUnknownView {
		return err
	}

	if v, err := g.SetView(viewStats, 0, 3, leftColumnWidth, 3+(maxY-5-3)/2); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Stats"
		v.Frame = true
	}
	t.renderStats(g)

	if v, err := g.SetView(viewConfiguration, 0, 3+(maxY-5-3)/2+1, leftColumnWidth, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Configuration"
		v.Frame = true
	}
	t.renderConfiguration(g)

	if v, err := g.SetView(viewUniverse, leftColumnWidth+1, 3, maxX-1, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Universe"
		v.Frame = true
	}
	t.renderUniverse(g)

	if v, err := g.SetView(viewHelp, -1, maxY-5, maxX, maxY-3); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
		_, _ = fmt.Fprintln(v, helpLine(t.k))
	}
	return nil
}

func (t *ConsoleUI) headerLayout(g *gocui.Gui, height int, text string) (v *gocui.View, err error) {
	maxX, _ := g.Size()
	if v, err = g.SetView(viewHeader, -1, -1, maxX+1, height); err != nil {
		if err == gocui.ErrUnknownView && v != nil {
			v.Frame = false
			v.BgColor = gocui.ColorCyan
			v.FgColor = gocui.ColorBlack
		}
	}
	if v != nil {
		v.Clear()
		pad := 0
		if maxX > len(text) {
			pad = (maxX - len(text)) / 2
		}
		_, _ = fmt.Fprintln(v, strings.Repeat("\n", height/2+1)+strings.Repeat(" ", pad)+text)
	}
	return
}

func (t *ConsoleUI) cmdQuit(_ *gocui.View) error {
	return gocui.ErrQuit
}

func (t *ConsoleUI) cmdNextStep(_ *gocui.View) error {
	t.c.Step()
	return nil
}

func (t *ConsoleUI) cmdTogglePause(_ *gocui.View) error {
	t.c.TogglePause()
	return nil
}

func (t *ConsoleUI) cmdReseed(_ *gocui.View) error {
	t.c.Reseed()
	return nil
}

func helpLine(k []keyBindings) string {
	b := bytes.Buffer{}
	b.WriteString("KEYBINDINGS: ")
	for i, kb := range k {
		if i != 0 {
			b.WriteString(", ")
		}
		b.WriteString(aurora.Green(kb.name).String())
		b.WriteString(": ")
		b.WriteString(kb.descr)
	}
	return b.String()
}

//cropLines splits the rendered universe into the lines fitting maxW x maxH
//when something doesn't fit the last line is reserved for the warning
func cropLines(text string, maxW int, maxH int) (lines []string, cropped bool) {
	if maxW <= 0 || maxH <= 0 {
		return nil, text != ""
	}
	all := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if text == "" {
		all = nil
	}
	for _, l := range all {
		if utf8.RuneCountInString(l) > maxW {
			cropped = true
			break
		}
	}
	if len(all) > maxH {
		cropped = true
	}

	for i, l := range all {
		if i >= maxH {
			break
		}
		if utf8.RuneCountInString(l) > maxW {
			l = string([]rune(l)[:maxW])
		}
		lines = append(lines, l)
	}
	if cropped && len(lines) == maxH {
		//the warning line takes the place of the last visible row
		lines[maxH-1] = ""
	} else if cropped {
		lines = append(lines, "")
	}
	return lines, cropped
}
