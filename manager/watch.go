package manager

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matgreaves/evtrace/evtspec"
)

// Loader parses a declarative configuration file at path into a Config.
// xmlconfig.Load satisfies this signature; tests can supply a fake.
type Loader func(path string) (*evtspec.Config, error)

// configWatcher polls a configuration file's modification time and
// reapplies it through the owning Manager whenever it changes, modeled on
// the teacher's IdleTimer in its use of a single background goroutine
// driven by a time.Ticker instead of a filesystem-notify API, which the
// teacher's codebase does not use anywhere in the retrieved pack.
type configWatcher struct {
	path   string
	load   Loader
	mgr    *Manager
	period time.Duration

	stopCh chan struct{}
	once   sync.Once

	reloadCount int64
	errorCount  int64
	lastModTime atomic.Value // time.Time
}

// DefaultWatchPeriod is how often the watcher checks the file's mtime.
const DefaultWatchPeriod = 2 * time.Second

// watchConfigFile starts polling path for changes and applies every new
// version through m.SetConfiguration. The returned watcher is also
// recorded on m so Shutdown stops it automatically.
func (m *Manager) watchConfigFile(path string, load Loader) *configWatcher {
	w := &configWatcher{
		path:   path,
		load:   load,
		mgr:    m,
		period: DefaultWatchPeriod,
		stopCh: make(chan struct{}),
	}
	w.lastModTime.Store(time.Time{})
	go w.run()

	m.mu.Lock()
	m.watcher = w
	m.mu.Unlock()
	return w
}

func (w *configWatcher) run() {
	ticker := time.NewTicker(w.period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.checkAndReload()
		case <-w.stopCh:
			return
		}
	}
}

func (w *configWatcher) checkAndReload() {
	info, err := os.Stat(w.path)
	if err != nil {
		atomic.AddInt64(&w.errorCount, 1)
		w.mgr.diag.Publish("reload_error", "stat "+w.path, err)
		return
	}
	last, _ := w.lastModTime.Load().(time.Time)
	if !info.ModTime().After(last) {
		return
	}
	w.lastModTime.Store(info.ModTime())

	cfg, err := w.load(w.path)
	if err != nil {
		atomic.AddInt64(&w.errorCount, 1)
		w.mgr.diag.Publish("reload_error", "parse "+w.path, err)
		return
	}
	if err := w.mgr.SetConfiguration(*cfg); err != nil {
		atomic.AddInt64(&w.errorCount, 1)
		w.mgr.diag.Publish("reload_error", "apply "+w.path, err)
		return
	}
	atomic.AddInt64(&w.reloadCount, 1)
	w.mgr.recordReload(context.Background())
}

// ReloadCount returns the number of configuration files successfully
// applied since the watcher started.
func (w *configWatcher) ReloadCount() int64 { return atomic.LoadInt64(&w.reloadCount) }

// ErrorCount returns the number of stat/load/apply failures the watcher
// has encountered. The watcher keeps polling after an error; it never
// gives up on a transiently broken config file.
func (w *configWatcher) ErrorCount() int64 { return atomic.LoadInt64(&w.errorCount) }

func (w *configWatcher) stop() {
	w.once.Do(func() { close(w.stopCh) })
}

// WatchConfigFile starts watching path for changes, applying every
// successfully parsed version through SetConfiguration. Only one watcher
// may be active at a time; calling this again replaces the previous one.
func (m *Manager) WatchConfigFile(path string, load Loader) {
	m.mu.Lock()
	if m.watcher != nil {
		m.watcher.stop()
	}
	m.mu.Unlock()
	m.watchConfigFile(path, load)
}
