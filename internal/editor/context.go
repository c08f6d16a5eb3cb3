package editor

import (
	"github.com/dshills/editcore/internal/client"
	"github.com/dshills/editcore/internal/view"
)

// Idle token kinds, OR-ed with the view id in the low bits.
const (
	tokenRender uint32 = 1 << 25
	tokenRewrap uint32 = 1 << 26
	tokenFind   uint32 = 1 << 27

	tokenKindMask = tokenRender | tokenRewrap | tokenFind
)

// EventCtx binds one view of a buffer to its editor, client, and width
// cache, and dispatches inbound actions. It also tracks which idle
// tokens are already scheduled so re-scheduling stays idempotent.
type EventCtx struct {
	Editor *Editor
	View   *view.View
	Client *client.Client
	Width  *client.WidthCache

	renderPending bool
	rewrapPending bool
}

// NewEventCtx wires a dispatcher for one view.
func NewEventCtx(ed *Editor, v *view.View, cl *client.Client, wc *client.WidthCache) *EventCtx {
	return &EventCtx{Editor: ed, View: v, Client: cl, Width: wc}
}

// DoAction performs one command and flushes its consequences: any
// produced delta is committed, the view rebased, and a render
// scheduled if something changed on screen.
func (c *EventCtx) DoAction(a Action) {
	c.dispatch(a)
	c.afterEvent()
}

func (c *EventCtx) dispatch(a Action) {
	ed, v := c.Editor, c.View
	text := ed.Text()
	switch a := a.(type) {
	case Resize:
		v.Resize(text, a.Height)
	case Scroll:
		v.SetScroll(a.First, a.Last)
	case RequestLines:
		v.RequestLines(text, ed.StyleSpans(), a.First, a.Last)
	case SetMode:
		v.SetMode(a.Mode)
	case GoToLine:
		v.GoToLine(text, a.Line)
	case Move:
		v.Move(text, a.Motion, a.Quantity)
	case MoveSelection:
		v.MoveSelection(text, a.Motion, a.Quantity)
	case AddSelection:
		v.AddSelection(text, a.Motion)
	case CollapseSelections:
		v.CollapseSelections(text)
	case SelectAll:
		v.SelectAll(text)
	case Gesture:
		v.DoGesture(text, a.Line, a.Col, a.Ty)
	case InsertChars:
		ed.InsertChars(v.Selection(), a.Chars)
	case InsertNewline:
		ed.InsertNewline(v.Selection())
	case InsertTab:
		ed.InsertTab(v.Selection())
	case Delete:
		ed.DeleteByMovement(v.Selection(), v.Lines(), v.Height(), a.Motion, a.Quantity)
	case Undo:
		ed.Undo()
	case Redo:
		ed.Redo()
	case Paste:
		ed.Paste(v.Selection(), a.Chars)
	case Cut:
		ed.Cut(v.Selection())
	case Copy:
		ed.Copy(v.Selection())
	case Yank:
		ed.Yank(v.Selection())
	case Indent:
		ed.Indent(v.Selection())
	case Outdent:
		ed.Outdent(v.Selection())
	case DuplicateLine:
		ed.DuplicateLine(v.Selection())
	case Duplicate:
		ed.Duplicate(v.Selection(), a.Quantity)
	case Replace:
		ed.Replace(v.Selection(), a.Quantity)
	case Transpose:
		ed.Transpose(v.Selection())
	case IncreaseNumber:
		ed.ChangeNumber(v.Selection(), 1)
	case DecreaseNumber:
		ed.ChangeNumber(v.Selection(), -1)
	case Uppercase:
		ed.Uppercase(v.Selection())
	case Lowercase:
		ed.Lowercase(v.Selection())
	case Repeat:
		for i := 0; i < a.Count; i++ {
			c.dispatch(a.Action)
		}
	case RequestHover:
		c.showHover(a.RequestID)
	}
}

// afterEvent commits any pending delta into the view, then pushes
// whatever the screen now needs.
func (c *EventCtx) afterEvent() {
	if d, lastText, drift, ok := c.Editor.CommitDelta(); ok {
		c.View.AfterEdit(c.Editor.Text(), lastText, d, c.Width, drift, c.Editor.IsPristine())
	}
	if !c.View.Lines().IsConverged() {
		c.scheduleRewrap()
	}
	c.View.RenderIfDirty(c.Editor.Text(), c.Editor.StyleSpans())
}

// ScheduleRender queues a deferred render for this view. Scheduling
// while one is already pending is a no-op.
func (c *EventCtx) ScheduleRender() {
	if c.renderPending {
		return
	}
	c.renderPending = true
	c.Client.ScheduleIdle(tokenRender | uint32(c.View.ID()))
}

func (c *EventCtx) scheduleRewrap() {
	if c.rewrapPending {
		return
	}
	c.rewrapPending = true
	c.Client.ScheduleIdle(tokenRewrap | uint32(c.View.ID()))
}

// DoIdle runs the deferred work a previously scheduled token stands
// for. Tokens for other views or unknown kinds are ignored.
func (c *EventCtx) DoIdle(token uint32) {
	if token&^tokenKindMask != uint32(c.View.ID()) {
		return
	}
	switch token & tokenKindMask {
	case tokenRender:
		c.renderPending = false
		c.View.RenderIfDirty(c.Editor.Text(), c.Editor.StyleSpans())
	case tokenRewrap:
		c.rewrapPending = false
		if c.View.Rewrap(c.Editor.Text(), c.Width) {
			c.scheduleRewrap()
		}
		c.View.RenderIfDirty(c.Editor.Text(), c.Editor.StyleSpans())
	}
}

// showHover reports the word under the last caret.
func (c *EventCtx) showHover(requestID int) {
	text := c.Editor.Text()
	regions := c.View.Selection().Regions()
	if len(regions) == 0 {
		return
	}
	caret := regions[len(regions)-1].End
	start, end := view.NewWordCursor(text, caret).SelectWord()
	c.Client.ShowHover(c.View.ID(), requestID, text.SliceString(start, end))
}
