package editor

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/editcore/internal/app"
	"github.com/dshills/editcore/internal/client"
	"github.com/dshills/editcore/internal/engine/rope"
	"github.com/dshills/editcore/internal/view"
)

// Settings are the per-core knobs the config layer resolves.
type Settings struct {
	WrapWidth     view.WrapWidth
	TabSize       int
	TranslateTabs bool
	Autopair      bool
	Font          string
}

// DefaultSettings returns the settings used when no config is present.
func DefaultSettings() Settings {
	return Settings{
		WrapWidth: view.WrapWidth{Mode: view.WrapNone},
		TabSize:   4,
		Autopair:  true,
	}
}

// Core owns every open buffer and its views, routes inbound actions
// and idle tokens, and reloads buffers whose backing file changes on
// disk.
type Core struct {
	mu       sync.Mutex
	client   *client.Client
	styles   *client.ThemeStyleMap
	width    *client.WidthCache
	settings Settings

	log      *app.Logger
	watcher  *fsnotify.Watcher
	nextView client.ViewID
	views    map[client.ViewID]*EventCtx
	paths    map[string]client.ViewID
}

// NewCore starts a core talking to one client.
func NewCore(cl *client.Client, settings Settings) (*Core, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("editor: start file watcher: %w", err)
	}
	c := &Core{
		client:   cl,
		styles:   client.NewThemeStyleMap(),
		width:    client.NewWidthCache(settings.Font, cl),
		settings: settings,
		log:      app.NewLogger(app.DefaultLoggerConfig()).WithComponent("core"),
		watcher:  watcher,
		nextView: 1,
		views:    make(map[client.ViewID]*EventCtx),
		paths:    make(map[string]client.ViewID),
	}
	go c.watchLoop()
	return c, nil
}

// SetLogger replaces the core's logger.
func (c *Core) SetLogger(log *app.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = log.WithComponent("core")
}

// ApplySettings reconfigures the core and every open view, typically
// after a config file reload.
func (c *Core) ApplySettings(settings Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = settings
	for _, ctx := range c.views {
		ed := ctx.Editor
		ed.TabSize = settings.TabSize
		ed.TranslateTabs = settings.TranslateTabs
		ed.Autopair = settings.Autopair
		ctx.View.SetWrapWidth(ed.Text(), settings.WrapWidth)
		ctx.afterEvent()
	}
}

// Close stops the file watcher.
func (c *Core) Close() error {
	return c.watcher.Close()
}

// NewView opens a view, loading path when it names an existing file.
// An empty path opens an empty scratch buffer.
func (c *Core) NewView(path string) (client.ViewID, error) {
	initial := ""
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return 0, fmt.Errorf("editor: open %s: %w", path, err)
		}
		initial = string(data)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextView
	c.nextView++

	ed := New(initial)
	ed.TabSize = c.settings.TabSize
	ed.TranslateTabs = c.settings.TranslateTabs
	ed.Autopair = c.settings.Autopair
	v := view.NewView(id, c.client, c.styles)
	v.SetWrapWidth(ed.Text(), c.settings.WrapWidth)
	ctx := NewEventCtx(ed, v, c.client, c.width)
	c.views[id] = ctx

	if path != "" {
		c.paths[path] = id
		if err := c.watcher.Add(path); err != nil && !os.IsNotExist(err) {
			return 0, fmt.Errorf("editor: watch %s: %w", path, err)
		}
	}
	ctx.afterEvent()
	c.log.Info("opened view %d (%d bytes)", id, len(initial))
	return id, nil
}

// CloseView drops a view and stops watching its file.
func (c *Core) CloseView(id client.ViewID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for path, vid := range c.paths {
		if vid == id {
			delete(c.paths, path)
			c.watcher.Remove(path)
		}
	}
	delete(c.views, id)
}

// DoAction routes one command to its view. NewView actions open a
// fresh view; use the NewView method directly when the id is needed.
func (c *Core) DoAction(id client.ViewID, a Action) error {
	if nv, ok := a.(NewView); ok {
		_, err := c.NewView(nv.Path)
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ctx, ok := c.views[id]
	if !ok {
		return fmt.Errorf("editor: no view %d", id)
	}
	ctx.DoAction(a)
	return nil
}

// DoIdle delivers a previously scheduled idle token.
func (c *Core) DoIdle(token uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := client.ViewID(token &^ tokenKindMask)
	if ctx, ok := c.views[id]; ok {
		ctx.DoIdle(token)
	}
}

// View returns the event context for a view id.
func (c *Core) View(id client.ViewID) (*EventCtx, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ctx, ok := c.views[id]
	return ctx, ok
}

// Save writes a view's buffer back to path and marks it pristine.
func (c *Core) Save(id client.ViewID, path string) error {
	c.mu.Lock()
	ctx, ok := c.views[id]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("editor: no view %d", id)
	}
	text := ctx.Editor.Text()
	if err := os.WriteFile(path, []byte(text.SliceString(0, text.Len())), 0o644); err != nil {
		return err
	}
	ctx.Editor.SetPristine()
	ctx.View.SetDirty(text)
	ctx.afterEvent()
	return nil
}

// watchLoop feeds on-disk changes back into open buffers.
func (c *Core) watchLoop() {
	for event := range c.watcher.Events {
		if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			continue
		}
		data, err := os.ReadFile(event.Name)
		if err != nil {
			c.log.Warn("reload %s: %v", event.Name, err)
			continue
		}
		c.mu.Lock()
		if id, ok := c.paths[event.Name]; ok {
			if ctx, ok := c.views[id]; ok {
				ctx.Editor.Reload(rope.FromString(string(data)))
				ctx.afterEvent()
				c.log.Debug("reloaded view %d from %s", id, event.Name)
			}
		}
		c.mu.Unlock()
	}
}
