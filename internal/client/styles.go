package client

import "sync"

// Style is a resolved text style. Colors are 0xRRGGBB with the high
// byte unused; a negative value means unset, deferring to the theme
// default.
type Style struct {
	FgColor   int32
	BgColor   int32
	Bold      bool
	Italic    bool
	Underline bool
}

// DefaultStyle leaves every attribute to the theme.
func DefaultStyle() Style {
	return Style{FgColor: -1, BgColor: -1}
}

// StyleSelection is the style id reserved for the selection; ids from
// StyleFirstTheme up are allocated lazily per client connection.
const (
	StyleSelection = 0
	StyleFind      = 1
	// styleFirstTheme is the first id handed out by the allocator.
	styleFirstTheme = 2
)

// ThemeStyleMap allocates stable style ids for resolved styles, scoped
// to one client connection. Safe for concurrent use; plugins and the
// render path both consult it.
type ThemeStyleMap struct {
	mu     sync.Mutex
	ids    map[Style]int
	styles []Style
	next   int
}

func NewThemeStyleMap() *ThemeStyleMap {
	return &ThemeStyleMap{ids: make(map[Style]int), next: styleFirstTheme}
}

// Lookup returns the id for a style, or -1 when it has not been
// defined yet.
func (m *ThemeStyleMap) Lookup(style Style) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.ids[style]; ok {
		return id
	}
	return -1
}

// Add allocates an id for a style. The caller sends the matching
// define_style to the front-end.
func (m *ThemeStyleMap) Add(style Style) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.ids[style]; ok {
		return id
	}
	id := m.next
	m.next++
	m.ids[style] = id
	m.styles = append(m.styles, style)
	return id
}

// Get returns the style for an allocated id.
func (m *ThemeStyleMap) Get(id int) (Style, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ix := id - styleFirstTheme
	if ix < 0 || ix >= len(m.styles) {
		return Style{}, false
	}
	return m.styles[ix], true
}

// Len returns how many theme styles have been allocated.
func (m *ThemeStyleMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.styles)
}
