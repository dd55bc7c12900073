package style

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a stylesheet from disk whenever its file changes,
// re-parses it, and hands the result to OnReload. A parse failure leaves
// the previously loaded stylesheet in place and is reported via OnError
// instead of replacing it with nothing, per §4.3's requirement that a
// broken edit not blank the screen.
type Watcher struct {
	path     string
	fsw      *fsnotify.Watcher
	done     chan struct{}
	OnReload func(*Stylesheet)
	OnError  func(error)
}

// NewWatcher starts watching path's containing directory (editors
// typically replace a file via rename-into-place, which does not emit
// events on the original inode; watching the directory catches that).
func NewWatcher(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("style: hot reload: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("style: hot reload: watch %s: %w", dir, err)
	}
	w := &Watcher{path: path, fsw: fsw, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	var debounce *time.Timer
	reload := func() {
		src, err := os.ReadFile(w.path)
		if err != nil {
			if w.OnError != nil {
				w.OnError(err)
			}
			return
		}
		sheet, err := ParseStylesheet(string(src))
		if err != nil {
			if w.OnError != nil {
				w.OnError(err)
			}
			return
		}
		if w.OnReload != nil {
			w.OnReload(sheet)
		}
	}

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(50*time.Millisecond, reload)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.OnError != nil {
				w.OnError(err)
			}
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
