package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ConfigWatcher re-applies the YAML overlay file when it changes on disk
type ConfigWatcher struct {
	path     string
	base     Config
	watcher  *fsnotify.Watcher
	current  *Config
	mu       sync.RWMutex
	onChange []func(*Config)
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
	debounce time.Duration
}

// NewConfigWatcher creates a watcher for base.ConfigFile. base is the
// environment-derived configuration the file is overlaid onto on every
// reload.
func NewConfigWatcher(base *Config, logger *zap.Logger) (*ConfigWatcher, error) {
	if base.ConfigFile == "" {
		return nil, fmt.Errorf("no config file to watch")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory so atomic saves (rename over) are seen
	if err := watcher.Add(filepath.Dir(base.ConfigFile)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	current := *base
	return &ConfigWatcher{
		path:     base.ConfigFile,
		base:     *base,
		watcher:  watcher,
		current:  &current,
		logger:   logger,
		stopCh:   make(chan struct{}),
		debounce: 100 * time.Millisecond,
	}, nil
}

// Start begins watching for configuration changes
func (w *ConfigWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("Configuration watcher started", zap.String("path", w.path))
}

// Stop stops watching for configuration changes
func (w *ConfigWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
		w.logger.Info("Configuration watcher stopped")
	})
}

func (w *ConfigWatcher) watchLoop() {
	var debounceTimer *time.Timer

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				if err := w.Reload(); err != nil {
					w.logger.Error("Failed to reload configuration", zap.Error(err))
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

// Reload reads the overlay file and, when the result is valid, swaps it in
// and notifies listeners. An invalid file keeps the current configuration.
func (w *ConfigWatcher) Reload() error {
	next := w.base
	if err := next.ApplyFile(w.path); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("invalid configuration, keeping current: %w", err)
	}

	w.mu.Lock()
	old := w.current
	w.current = &next
	handlers := append([]func(*Config){}, w.onChange...)
	w.mu.Unlock()

	if old.LogLevel != next.LogLevel {
		w.logger.Info("Configuration changes detected",
			zap.String("logLevel", old.LogLevel+" -> "+next.LogLevel),
		)
	}

	for _, handler := range handlers {
		handler(&next)
	}
	return nil
}

// OnChange registers a callback for configuration changes
func (w *ConfigWatcher) OnChange(handler func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, handler)
}

// GetCurrent returns the current configuration
func (w *ConfigWatcher) GetCurrent() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// LevelUpdater returns a callback that applies LOG_LEVEL changes to level
func LevelUpdater(level zap.AtomicLevel, logger *zap.Logger) func(*Config) {
	return func(c *Config) {
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			logger.Warn("Ignoring invalid log level", zap.String("level", c.LogLevel), zap.Error(err))
		}
	}
}
