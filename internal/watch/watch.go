// Package watch re-runs a callback when a single file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/banshee-data/scanalign/internal/monitoring"
	"github.com/banshee-data/scanalign/internal/timeutil"
)

// DefaultDebounce is the quiet period after the last event before onChange runs.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches one file. Editors often replace a file rather than write
// it in place, so the parent directory is watched and events are filtered by
// name.
type Watcher struct {
	path     string
	onChange func(path string)
	debounce time.Duration
	clock    timeutil.Clock
	started  chan struct{}
}

// New creates a watcher that calls onChange(path) after each burst of
// writes to path.
func New(path string, onChange func(path string)) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		onChange: onChange,
		debounce: DefaultDebounce,
		clock:    timeutil.RealClock{},
		started:  make(chan struct{}),
	}
}

// WithDebounce sets the debounce period. Zero runs onChange on every event.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d >= 0 {
		w.debounce = d
	}
	return w
}

// WithClock replaces the clock used for debounce timers.
func (w *Watcher) WithClock(c timeutil.Clock) *Watcher {
	w.clock = c
	return w
}

// Started is closed once the directory watch is registered.
func (w *Watcher) Started() <-chan struct{} {
	return w.started
}

// Watch blocks until ctx is cancelled. onChange runs on the Watch goroutine,
// so calls never overlap.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	close(w.started)
	monitoring.Diagf("watching %s (debounce %s)", w.path, w.debounce)

	name := filepath.Base(w.path)
	var timer timeutil.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			monitoring.Tracef("watch event: %s", event)
			if w.debounce == 0 {
				w.onChange(w.path)
				continue
			}
			if timer == nil {
				timer = w.clock.NewTimer(w.debounce)
			} else {
				timer.Stop()
				timer.Reset(w.debounce)
			}
			fire = timer.C()

		case <-fire:
			fire = nil
			w.onChange(w.path)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			monitoring.Opsf("watcher error: %v", err)
		}
	}
}
