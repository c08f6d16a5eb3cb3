package view

import (
	"unicode"
	"unicode/utf8"

	"github.com/dshills/editcore/internal/engine/rope"
)

type wordProp uint8

const (
	propCr wordProp = iota
	propLf
	propSpace
	propPunct
	propWord
)

func wordPropOf(r rune) wordProp {
	switch {
	case r == '\r':
		return propCr
	case r == '\n':
		return propLf
	case unicode.IsSpace(r):
		return propSpace
	case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
		return propWord
	default:
		return propPunct
	}
}

type wordBoundary uint8

const (
	boundaryInterior wordBoundary = iota
	boundaryStart
	boundaryEnd
	boundaryBoth
)

func (b wordBoundary) isStart() bool { return b == boundaryStart || b == boundaryBoth }
func (b wordBoundary) isEnd() bool   { return b == boundaryEnd || b == boundaryBoth }

// classifyBoundary decides what the transition between two adjacent
// codepoints means for word motion. Runs of whitespace are interior,
// and a line feed both ends the word before it and starts a new one.
func classifyBoundary(prev, next wordProp) wordBoundary {
	switch {
	case prev == propLf && next == propLf:
		return boundaryStart
	case prev == propLf && next == propSpace:
		return boundaryInterior
	case prev == propCr && next == propLf:
		return boundaryInterior
	case prev == propSpace && (next == propLf || next == propCr || next == propSpace):
		return boundaryInterior
	case next == propSpace:
		return boundaryEnd
	case prev == propSpace || prev == propLf:
		return boundaryStart
	case next == propCr || next == propLf:
		return boundaryEnd
	case prev == propPunct && next == propWord:
		return boundaryBoth
	case prev == propWord && next == propPunct:
		return boundaryBoth
	default:
		return boundaryInterior
	}
}

// WordCursor steps a position through word boundaries.
type WordCursor struct {
	text rope.Rope
	pos  int
}

func NewWordCursor(text rope.Rope, pos int) *WordCursor {
	return &WordCursor{text: text, pos: pos}
}

func (c *WordCursor) Pos() int {
	return c.pos
}

// nextCodepoint returns the rune at the cursor and advances past it.
func (c *WordCursor) nextCodepoint() (rune, bool) {
	if c.pos >= c.text.Len() {
		return 0, false
	}
	end := c.pos + utf8.UTFMax
	if end > c.text.Len() {
		end = c.text.Len()
	}
	r, size := utf8.DecodeRuneInString(c.text.SliceString(c.pos, end))
	c.pos += size
	return r, true
}

// prevCodepoint returns the rune before the cursor and moves onto it.
func (c *WordCursor) prevCodepoint() (rune, bool) {
	if c.pos <= 0 {
		return 0, false
	}
	start := c.pos - utf8.UTFMax
	if start < 0 {
		start = 0
	}
	for !c.text.IsCodepointBoundary(start) {
		start++
	}
	window := c.text.SliceString(start, c.pos)
	r, size := utf8.DecodeLastRuneInString(window)
	c.pos -= size
	return r, true
}

func (c *WordCursor) peekNext() (wordProp, bool) {
	save := c.pos
	r, ok := c.nextCodepoint()
	c.pos = save
	if !ok {
		return 0, false
	}
	return wordPropOf(r), true
}

func (c *WordCursor) peekPrev() (wordProp, bool) {
	save := c.pos
	r, ok := c.prevCodepoint()
	c.pos = save
	if !ok {
		return 0, false
	}
	return wordPropOf(r), true
}

// PrevBoundary moves backward to the start of the previous word and
// returns it. At the start of the text it returns 0.
func (c *WordCursor) PrevBoundary() int {
	r, ok := c.prevCodepoint()
	if !ok {
		return 0
	}
	prop := wordPropOf(r)
	candidate := c.pos
	for {
		prev, ok := c.prevCodepoint()
		if !ok {
			c.pos = 0
			return 0
		}
		propPrev := wordPropOf(prev)
		if classifyBoundary(propPrev, prop).isStart() {
			break
		}
		prop = propPrev
		candidate = c.pos
	}
	c.pos = candidate
	return candidate
}

// NextBoundary moves forward to the end of the current or next word
// and returns it. At the end of the text it returns the text length.
func (c *WordCursor) NextBoundary() int {
	r, ok := c.nextCodepoint()
	if !ok {
		return c.text.Len()
	}
	prop := wordPropOf(r)
	candidate := c.pos
	for {
		next, ok := c.nextCodepoint()
		if !ok {
			c.pos = c.text.Len()
			return c.pos
		}
		propNext := wordPropOf(next)
		if classifyBoundary(prop, propNext).isEnd() {
			break
		}
		prop = propNext
		candidate = c.pos
	}
	c.pos = candidate
	return candidate
}

// SelectWord returns the extent of the run under the cursor, used for
// double click selection. A word run is preferred over whitespace or
// punctuation when the cursor sits between two runs.
func (c *WordCursor) SelectWord() (int, int) {
	after, hasAfter := c.peekNext()
	before, hasBefore := c.peekPrev()
	var target wordProp
	switch {
	case hasAfter && after == propWord:
		target = propWord
	case hasBefore && before == propWord:
		target = propWord
	case hasAfter:
		target = after
	case hasBefore:
		target = before
	default:
		return c.pos, c.pos
	}
	start, end := c.pos, c.pos
	save := c.pos
	for {
		r, ok := c.prevCodepoint()
		if !ok || wordPropOf(r) != target {
			break
		}
		start = c.pos
	}
	c.pos = save
	for {
		r, ok := c.nextCodepoint()
		if !ok || wordPropOf(r) != target {
			break
		}
		end = c.pos
	}
	c.pos = save
	return start, end
}
