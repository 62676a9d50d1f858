package fixture

import (
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// flagWatch tracks the crash-flag file for PolicyWhenFlag: the switch is set
// exactly while the file exists. Changes are picked up via fsnotify; if the
// watcher cannot be started the fixture degrades to stat-per-request rather
// than failing startup.
type flagWatch struct {
	path    string
	set     atomic.Bool
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func newFlagWatch(path string) *flagWatch {
	fw := &flagWatch{path: path}
	fw.set.Store(FileExists(path))

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn().Err(err).Msg("flag watcher unavailable, falling back to stat per request")
		return fw
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		logger.Warn().Err(err).Str("dir", filepath.Dir(path)).Msg("cannot watch flag directory, falling back to stat per request")
		w.Close()
		return fw
	}

	fw.watcher = w
	fw.done = make(chan struct{})
	go fw.loop()
	return fw
}

func (fw *flagWatch) loop() {
	defer close(fw.done)
	for {
		select {
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(fw.path) {
				continue
			}
			// Re-stat rather than trusting the event kind; editors and
			// supervisors touch files in surprising orders.
			fw.set.Store(FileExists(fw.path))
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn().Err(err).Msg("flag watcher error")
		}
	}
}

// Set reports whether the crash switch is currently on.
func (fw *flagWatch) Set() bool {
	if fw.watcher == nil {
		// Degraded mode: explicit per-request read.
		_, err := os.Stat(fw.path)
		return err == nil
	}
	return fw.set.Load()
}

// Close stops the watcher. The degraded stat-only mode has nothing to stop.
func (fw *flagWatch) Close() {
	if fw.watcher == nil {
		return
	}
	fw.watcher.Close()
	<-fw.done
}
