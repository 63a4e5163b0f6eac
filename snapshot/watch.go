package snapshot

import (
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes a project tree for changes made after a snapshot was
// taken, so the runner can warn before overwriting edits that happened while
// the model round trip was in flight.
//
// fsnotify does not recurse, so every non-excluded directory is registered
// individually. Watching is best effort: event overflow or watcher errors
// degrade to "no staleness information", never to a failed run.
type Watcher struct {
	w *fsnotify.Watcher

	mu      sync.Mutex
	changed map[string]bool

	done chan struct{}
}

// Watch starts watching root, pruning directories the same way Scan does.
func Watch(root string, exclude []string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		w.Close()
		return nil, err
	}

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != absRoot && excluded[d.Name()] {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
	if err != nil {
		w.Close()
		return nil, err
	}

	watcher := &Watcher{
		w:       w,
		changed: make(map[string]bool),
		done:    make(chan struct{}),
	}
	go watcher.run(absRoot)
	return watcher, nil
}

func (w *Watcher) run(root string) {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.w.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			rel, err := filepath.Rel(root, event.Name)
			if err != nil {
				continue
			}
			w.mu.Lock()
			w.changed[filepath.ToSlash(rel)] = true
			w.mu.Unlock()

		case _, ok := <-w.w.Errors:
			if !ok {
				return
			}
			// Overflow or transient watch error: staleness detection is
			// advisory, keep going with what we have.
		}
	}
}

// Changed returns the sorted set of paths (relative to root) modified since
// watching began.
func (w *Watcher) Changed() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	paths := make([]string, 0, len(w.changed))
	for p := range w.changed {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Close stops watching and waits for the event loop to drain.
func (w *Watcher) Close() error {
	err := w.w.Close()
	<-w.done
	return err
}
