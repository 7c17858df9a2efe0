package messagelog

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce groups bursts of events (a retention wipe removes dozens
// of files at once) into a single recount.
const watchDebounce = 50 * time.Millisecond

// Watch reports the number of records in store whenever the directory
// changes, starting with the current count. The channel is closed when ctx
// is done or the watcher fails.
//
// Only the most recent count is kept if the reader falls behind.
func Watch(ctx context.Context, store *FileStore) (<-chan int, error) {
	if err := os.MkdirAll(store.Dir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(store.Dir()); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	counts := make(chan int, 1)
	go func() {
		defer close(counts)
		defer func() { _ = watcher.Close() }()

		send := func() {
			names, err := store.List()
			if err != nil {
				return
			}
			select {
			case <-counts:
			default:
			}
			counts <- len(names)
		}
		send()

		debounce := time.NewTimer(watchDebounce)
		debounce.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(ev.Name, recordExt) {
					continue
				}
				if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				debounce.Reset(watchDebounce)

			case <-debounce.C:
				send()

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return counts, nil
}
