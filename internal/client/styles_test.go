package client

import "testing"

func TestThemeStyleMapAllocates(t *testing.T) {
	m := NewThemeStyleMap()
	style := Style{FgColor: 0x00ff00, BgColor: -1}
	if got := m.Lookup(style); got != -1 {
		t.Fatalf("lookup of unknown style = %d, want -1", got)
	}
	id := m.Add(style)
	if id < styleFirstTheme {
		t.Fatalf("theme style id = %d, must not collide with selection or find", id)
	}
	if got := m.Lookup(style); got != id {
		t.Errorf("lookup after add = %d, want %d", got, id)
	}
	if got, ok := m.Get(id); !ok || got != style {
		t.Errorf("get(%d) = %v, %v", id, got, ok)
	}

	other := Style{FgColor: 0x0000ff, BgColor: -1, Italic: true}
	if m.Add(other) == id {
		t.Error("distinct styles share an id")
	}
}

func TestThemeStyleMapStableIDs(t *testing.T) {
	m := NewThemeStyleMap()
	style := Style{FgColor: 1, BgColor: -1}
	a := m.Add(style)
	b := m.Add(style)
	if a != b {
		t.Errorf("re-adding a style allocated a new id: %d then %d", a, b)
	}
}
