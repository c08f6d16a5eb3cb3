// Command editcore is a terminal front-end for the editing core. It
// drives the core through Actions and renders the update-op stream
// into a local line cache, the way a remote front-end would.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
	"github.com/tidwall/gjson"

	"github.com/dshills/editcore/internal/app"
	"github.com/dshills/editcore/internal/client"
	"github.com/dshills/editcore/internal/config"
	"github.com/dshills/editcore/internal/editor"
	"github.com/dshills/editcore/internal/frontend"
	"github.com/dshills/editcore/internal/view"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	var configPath string
	var logLevel string
	var showVersion bool
	flag.StringVar(&configPath, "config", "", "path to configuration file")
	flag.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "show version")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: editcore [options] [file]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("editcore %s\n", version)
		return 0
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if logLevel == "" {
		logLevel = cfg.Log.Level
	}
	log := app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(logLevel),
		Output: os.Stderr,
		Prefix: "editcore",
	})

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: create screen: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: init screen: %v\n", err)
		return 1
	}
	defer screen.Fini()
	screen.EnableMouse()

	cl := client.NewClient(1024)
	core, err := editor.NewCore(cl, cfg.Settings())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer core.Close()
	core.SetLogger(log)

	if configPath != "" {
		watcher, err := config.Watch(configPath, func(cfg config.Config) {
			core.ApplySettings(cfg.Settings())
		})
		if err != nil {
			log.Warn("config watch: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	path := flag.Arg(0)
	viewID, err := core.NewView(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	u := &ui{
		screen: screen,
		core:   core,
		client: cl,
		view:   viewID,
		path:   path,
		cache:  frontend.NewLineCache(),
		styles: make(map[int]client.Style),
		log:    log,
	}
	u.resize()
	u.loop()
	return 0
}

// ui owns the screen and the mirrored line cache for one view.
type ui struct {
	screen tcell.Screen
	core   *editor.Core
	client *client.Client
	view   client.ViewID
	path   string
	cache  *frontend.LineCache
	styles map[int]client.Style
	log    *app.Logger

	height    int
	firstLine int
	status    string
	quit      bool
}

func (u *ui) loop() {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := u.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	for !u.quit {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			u.handleEvent(ev)
		case msg := <-u.client.Messages():
			u.handleMessage(msg)
		}
	}
}

func (u *ui) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		u.resize()
	case *tcell.EventKey:
		u.handleKey(ev)
	case *tcell.EventMouse:
		u.handleMouse(ev)
	}
}

func (u *ui) handleMessage(msg client.Message) {
	switch p := msg.Payload.(type) {
	case client.BufferUpdate:
		// Serialize and reparse so the cache consumes exactly what a
		// remote front-end would see on the wire.
		encoded, err := client.EncodeMessage(msg)
		if err != nil {
			u.log.Error("encode update: %v", err)
			return
		}
		u.cache.Apply(client.DecodeUpdate(gjson.Get(encoded, "params")))
		u.draw()
	case client.ScrollTo:
		u.scrollTo(p.Line)
		u.draw()
	case client.DefineStyle:
		u.styles[p.StyleID] = p.Style
	case client.Idle:
		u.core.DoIdle(p.Token)
	case client.ShowHover:
		u.status = p.Content
		u.draw()
	case *client.MeasureRequest:
		res := make([][]float64, len(p.Reqs))
		for i, req := range p.Reqs {
			widths := make([]float64, len(req.Strings))
			for j, s := range req.Strings {
				widths[j] = float64(uniseg.StringWidth(s))
			}
			res[i] = widths
		}
		p.Reply <- res
	}
}

func (u *ui) do(a editor.Action) {
	if err := u.core.DoAction(u.view, a); err != nil {
		u.log.Error("action: %v", err)
	}
}

func (u *ui) resize() {
	_, h := u.screen.Size()
	if h < 2 {
		h = 2
	}
	u.height = h - 1
	u.do(editor.Resize{Height: u.height})
	u.sendScroll()
}

func (u *ui) sendScroll() {
	u.do(editor.Scroll{First: u.firstLine, Last: u.firstLine + u.height})
}

func (u *ui) scrollTo(line int) {
	switch {
	case line < u.firstLine:
		u.firstLine = line
	case line >= u.firstLine+u.height:
		u.firstLine = line - u.height + 1
	default:
		return
	}
	u.sendScroll()
}

func (u *ui) scrollBy(n int) {
	first := u.firstLine + n
	if max := u.cache.Height() - u.height; first > max {
		first = max
	}
	if first < 0 {
		first = 0
	}
	if first == u.firstLine {
		return
	}
	u.firstLine = first
	u.sendScroll()
	u.draw()
}

func (u *ui) handleKey(ev *tcell.EventKey) {
	shift := ev.Modifiers()&tcell.ModShift != 0
	switch ev.Key() {
	case tcell.KeyCtrlQ, tcell.KeyEscape:
		u.quit = true
	case tcell.KeyCtrlS:
		if u.path != "" {
			if err := u.core.Save(u.view, u.path); err != nil {
				u.status = err.Error()
				u.draw()
			}
		}
	case tcell.KeyCtrlZ:
		u.do(editor.Undo{})
	case tcell.KeyCtrlY:
		u.do(editor.Redo{})
	case tcell.KeyCtrlA:
		u.do(editor.SelectAll{})
	case tcell.KeyCtrlC:
		u.do(editor.Copy{})
	case tcell.KeyCtrlX:
		u.do(editor.Cut{})
	case tcell.KeyCtrlV:
		u.do(editor.Yank{})
	case tcell.KeyCtrlD:
		u.do(editor.DuplicateLine{})
	case tcell.KeyCtrlT:
		u.do(editor.Transpose{})
	case tcell.KeyEnter:
		u.do(editor.InsertNewline{})
	case tcell.KeyTab:
		u.do(editor.InsertTab{})
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		u.do(editor.Delete{Motion: view.MotionBackward, Quantity: view.QuantityCharacter})
	case tcell.KeyDelete:
		u.do(editor.Delete{Motion: view.MotionForward, Quantity: view.QuantityCharacter})
	case tcell.KeyLeft:
		u.moveKey(view.MotionBackward, view.QuantityCharacter, shift)
	case tcell.KeyRight:
		u.moveKey(view.MotionForward, view.QuantityCharacter, shift)
	case tcell.KeyUp:
		u.moveKey(view.MotionAbove, view.QuantityCharacter, shift)
	case tcell.KeyDown:
		u.moveKey(view.MotionBelow, view.QuantityCharacter, shift)
	case tcell.KeyHome:
		u.moveKey(view.MotionFirst, view.QuantityLine, shift)
	case tcell.KeyEnd:
		u.moveKey(view.MotionLast, view.QuantityLine, shift)
	case tcell.KeyPgUp:
		u.moveKey(view.MotionAbove, view.QuantityPage, shift)
	case tcell.KeyPgDn:
		u.moveKey(view.MotionBelow, view.QuantityPage, shift)
	case tcell.KeyRune:
		u.do(editor.InsertChars{Chars: string(ev.Rune())})
	}
}

func (u *ui) moveKey(m view.Motion, q view.Quantity, extend bool) {
	if extend {
		u.do(editor.MoveSelection{Motion: m, Quantity: q})
	} else {
		u.do(editor.Move{Motion: m, Quantity: q})
	}
}

func (u *ui) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	switch {
	case ev.Buttons()&tcell.WheelUp != 0:
		u.scrollBy(-3)
	case ev.Buttons()&tcell.WheelDown != 0:
		u.scrollBy(3)
	case ev.Buttons()&tcell.Button1 != 0:
		// Cell columns approximate byte columns; exact for ASCII.
		u.do(editor.Gesture{
			Line: u.firstLine + y,
			Col:  x,
			Ty:   view.GestureType{Kind: view.GestureSelect, Quantity: view.QuantityCharacter},
		})
	}
}

func (u *ui) draw() {
	u.screen.Clear()
	u.screen.HideCursor()
	for row := 0; row < u.height; row++ {
		if line := u.cache.Line(u.firstLine + row); line != nil {
			u.drawLine(row, line)
		}
	}
	u.drawStatus()
	u.screen.Show()
}

func (u *ui) drawLine(row int, line *client.Line) {
	text := strings.TrimSuffix(line.Text, "\n")
	runs := decodeStyleRuns(line.Styles)

	col := 0
	byteIx := 0
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		st := tcell.StyleDefault
		for _, r := range runs {
			if byteIx >= r.start && byteIx < r.end {
				st = u.tcellStyle(r.id)
			}
		}
		runes := gr.Runes()
		u.screen.SetContent(col, row, runes[0], runes[1:], st)
		col += uniseg.StringWidth(gr.Str())
		byteIx += len(gr.Str())
	}

	for _, c := range line.Cursors {
		u.screen.ShowCursor(columnOfCodepoint(text, c), row)
	}
}

type styleRun struct {
	start, end, id int
}

// decodeStyleRuns expands the relative (start, len, style) triples of
// a line payload into absolute byte ranges.
func decodeStyleRuns(triples []int) []styleRun {
	var runs []styleRun
	pos := 0
	for i := 0; i+2 < len(triples); i += 3 {
		pos += triples[i]
		runs = append(runs, styleRun{start: pos, end: pos + triples[i+1], id: triples[i+2]})
		pos += triples[i+1]
	}
	return runs
}

// columnOfCodepoint maps a codepoint offset to a screen column.
func columnOfCodepoint(text string, cp int) int {
	col := 0
	for i, r := range []rune(text) {
		if i >= cp {
			break
		}
		col += uniseg.StringWidth(string(r))
	}
	return col
}

func (u *ui) tcellStyle(id int) tcell.Style {
	style, ok := u.styles[id]
	if !ok {
		// Selection has no definition unless a theme supplied one.
		return tcell.StyleDefault.Reverse(true)
	}
	st := tcell.StyleDefault
	if style.FgColor >= 0 {
		st = st.Foreground(tcell.NewHexColor(style.FgColor))
	}
	if style.BgColor >= 0 {
		st = st.Background(tcell.NewHexColor(style.BgColor))
	}
	if style.Bold {
		st = st.Bold(true)
	}
	if style.Italic {
		st = st.Italic(true)
	}
	if style.Underline {
		st = st.Underline(true)
	}
	return st
}

func (u *ui) drawStatus() {
	name := u.path
	if name == "" {
		name = "[scratch]"
	}
	dirty := ""
	if !u.cache.Pristine() {
		dirty = " [+]"
	}
	line := fmt.Sprintf(" %s%s  %s", name, dirty, u.status)
	st := tcell.StyleDefault.Reverse(true)
	w, _ := u.screen.Size()
	for col := 0; col < w; col++ {
		r := ' '
		if col < len(line) {
			r = rune(line[col])
		}
		u.screen.SetContent(col, u.height, r, nil, st)
	}
}
