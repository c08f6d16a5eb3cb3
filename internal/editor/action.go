package editor

import "github.com/dshills/editcore/internal/view"

// Action is one inbound editor command. The concrete types below are
// the full command vocabulary; EventCtx.DoAction dispatches them.
type Action interface {
	isAction()
}

// NewView opens a view, optionally backed by a file.
type NewView struct {
	Path string
}

// Resize sets the viewport height in visual lines.
type Resize struct {
	Height int
}

// Scroll tells the core what the front-end now displays.
type Scroll struct {
	First, Last int
}

// RequestLines asks for lines [First, Last) to be rendered now.
type RequestLines struct {
	First, Last int
}

// SetMode switches the view's modal state.
type SetMode struct {
	Mode view.Mode
}

// GoToLine places the caret at the start of a logical line.
type GoToLine struct {
	Line int
}

// InsertChars types a string at every region. A surrounding-pair
// opener with no caret region surrounds instead.
type InsertChars struct {
	Chars string
}

// InsertNewline inserts a line break at every region.
type InsertNewline struct{}

// InsertTab inserts a tab, or spaces up to the next tab stop.
type InsertTab struct{}

// Delete removes the text a movement would cross.
type Delete struct {
	Motion   view.Motion
	Quantity view.Quantity
}

// Move replaces the selection with a movement result.
type Move struct {
	Motion   view.Motion
	Quantity view.Quantity
}

// MoveSelection extends every region by a movement.
type MoveSelection struct {
	Motion   view.Motion
	Quantity view.Quantity
}

// AddSelection adds a caret above or below each region.
type AddSelection struct {
	Motion view.Motion
}

// CollapseSelections reduces every region to a caret.
type CollapseSelections struct{}

// SelectAll selects the whole buffer.
type SelectAll struct{}

// Undo reverts the most recent undo group.
type Undo struct{}

// Redo re-applies the most recently undone group.
type Redo struct{}

// Paste inserts clipboard text, one line per region when the counts
// line up.
type Paste struct {
	Chars string
}

// Cut removes the selected text into the kill ring.
type Cut struct{}

// Copy places the selected text into the kill ring.
type Copy struct{}

// Yank inserts the kill ring contents.
type Yank struct{}

// Indent shifts the selected lines right by one tab stop.
type Indent struct{}

// Outdent shifts the selected lines left by one tab stop.
type Outdent struct{}

// DuplicateLine copies the selected lines below themselves.
type DuplicateLine struct{}

// Transpose swaps the graphemes around each caret.
type Transpose struct{}

// IncreaseNumber adds one to the number under each caret.
type IncreaseNumber struct{}

// DecreaseNumber subtracts one from the number under each caret.
type DecreaseNumber struct{}

// Uppercase folds the selected text to upper case.
type Uppercase struct{}

// Lowercase folds the selected text to lower case.
type Lowercase struct{}

// Duplicate copies the unit under each region below itself.
type Duplicate struct {
	Quantity view.Quantity
}

// Replace substitutes the unit under each region with the kill ring.
type Replace struct {
	Quantity view.Quantity
}

// Repeat performs an action a number of times.
type Repeat struct {
	Action Action
	Count  int
}

// Gesture is a pointer event at a visual position.
type Gesture struct {
	Line, Col int
	Ty        view.GestureType
}

// RequestHover asks for hover content at the caret.
type RequestHover struct {
	RequestID int
}

func (NewView) isAction()            {}
func (Resize) isAction()             {}
func (Scroll) isAction()             {}
func (RequestLines) isAction()       {}
func (SetMode) isAction()            {}
func (GoToLine) isAction()           {}
func (InsertChars) isAction()        {}
func (InsertNewline) isAction()      {}
func (InsertTab) isAction()          {}
func (Delete) isAction()             {}
func (Move) isAction()               {}
func (MoveSelection) isAction()      {}
func (AddSelection) isAction()       {}
func (CollapseSelections) isAction() {}
func (SelectAll) isAction()          {}
func (Undo) isAction()               {}
func (Redo) isAction()               {}
func (Paste) isAction()              {}
func (Cut) isAction()                {}
func (Copy) isAction()               {}
func (Yank) isAction()               {}
func (Indent) isAction()             {}
func (Outdent) isAction()            {}
func (DuplicateLine) isAction()      {}
func (Transpose) isAction()          {}
func (IncreaseNumber) isAction()     {}
func (DecreaseNumber) isAction()     {}
func (Uppercase) isAction()          {}
func (Lowercase) isAction()          {}
func (Duplicate) isAction()          {}
func (Replace) isAction()            {}
func (Repeat) isAction()             {}
func (Gesture) isAction()            {}
func (RequestHover) isAction()       {}
