// Package watch reports debounced changes to a set of files.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher monitors files through their parent directories, so editors that
// save by rename-and-replace are still seen.
type Watcher struct {
	Changes <-chan string // cleaned path of the file that changed

	changes  chan string
	files    map[string]bool
	debounce time.Duration
	log      *logrus.Entry
	watcher  *fsnotify.Watcher
}

// New watches files. A debounce of zero means 100ms.
func New(debounce time.Duration, log *logrus.Entry, files ...string) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("watch: no files")
	}
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	ch := make(chan string, 16)
	w := &Watcher{
		Changes:  ch,
		changes:  ch,
		files:    make(map[string]bool, len(files)),
		debounce: debounce,
		log:      log,
		watcher:  fw,
	}
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch: %w", err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err = fw.Add(d); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", d, err)
		}
	}
	return w, nil
}

// Run delivers changes until ctx is done, then closes Changes
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.changes)
	defer w.watcher.Close()

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(max(w.debounce/2, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !w.files[name] {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending[name] = time.Now()
			}

		case now := <-ticker.C:
			for name, t := range pending {
				if now.Sub(t) < w.debounce {
					continue
				}
				delete(pending, name)
				select {
				case w.changes <- name:
				case <-ctx.Done():
					return
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("watch error")
		}
	}
}
