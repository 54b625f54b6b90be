// FILE: lixenwraith/goodconf/watch.go
package goodconf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchBuffer is the capacity of the change channel.
const DefaultWatchBuffer = 16

// WatchOptions configures file watching behavior
type WatchOptions struct {
	// Debounce duration to coalesce bursts of writes (minimum MinDebounce)
	Debounce time.Duration

	// Buffer is the capacity of the returned channel
	Buffer int
}

// DefaultWatchOptions returns sensible defaults for file watching
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		Debounce: DefaultDebounce,
		Buffer:   DefaultWatchBuffer,
	}
}

// Watch reloads the loaded configuration file whenever it changes and sends
// the path of every value whose resolved value changed. Reload failures are
// logged and the previous values are kept. The channel is closed once ctx is done.
func (c *Config) Watch(ctx context.Context, opts WatchOptions) (<-chan string, error) {
	filePath := c.ConfigFile()
	if filePath == "" {
		return nil, errors.New("no configuration file loaded to watch")
	}
	if opts.Debounce < MinDebounce {
		opts.Debounce = MinDebounce
	}
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultWatchBuffer
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Editors often replace the file, so watch the directory.
	if err := fw.Add(filepath.Dir(filePath)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch '%s': %w", filePath, err)
	}

	ch := make(chan string, opts.Buffer)
	go c.watchLoop(ctx, fw, filePath, opts.Debounce, ch)
	return ch, nil
}

// watchLoop is the main file watching loop
func (c *Config) watchLoop(ctx context.Context, fw *fsnotify.Watcher, filePath string, debounce time.Duration, ch chan<- string) {
	defer close(ch)
	defer fw.Close()

	c.mutex.RLock()
	logger := c.logger.With().Str("path", filePath).Logger()
	c.mutex.RUnlock()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filePath || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			// Debounce rapid changes
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn().Err(err).Msg("file watcher error")

		case <-fire:
			fire = nil
			if !c.reload(ctx, filePath, ch) {
				return
			}
		}
	}
}

// reload reloads the file source and reports changed paths. It returns
// false when ctx ended while sending.
func (c *Config) reload(ctx context.Context, filePath string, ch chan<- string) bool {
	c.mutex.RLock()
	logger := c.logger
	c.mutex.RUnlock()

	// Track what changed
	oldValues := c.snapshot()

	if err := c.LoadFile(filePath); err != nil {
		logger.Warn().Err(err).Str("path", filePath).Msg("config reload failed, keeping previous values")
		return true
	}

	newValues := c.snapshot()
	var changed []string
	for _, path := range c.paths() {
		oldVal, existed := oldValues[path]
		if newVal := newValues[path]; !existed || !reflect.DeepEqual(oldVal, newVal) {
			changed = append(changed, path)
		}
	}
	logger.Info().Str("path", filePath).Int("changed", len(changed)).Msg("config file reloaded")

	for _, path := range changed {
		select {
		case ch <- path:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// snapshot creates a snapshot of current values
func (c *Config) snapshot() map[string]any {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	snapshot := make(map[string]any, len(c.items))
	for path, item := range c.items {
		snapshot[path] = item.currentValue
	}
	return snapshot
}

// paths returns the registered paths in declaration order.
func (c *Config) paths() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return append([]string(nil), c.order...)
}
