package config

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"StoryStudio/internal/logging"
)

// Store holds the active configuration and swaps it atomically on reload
type Store struct {
	path string
	cfg  atomic.Pointer[Config]
}

// NewStore loads the configuration at path into a new Store
func NewStore(path string) (*Store, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	s := &Store{path: path}
	s.cfg.Store(cfg)
	return s, nil
}

// Get returns the current configuration
func (s *Store) Get() *Config {
	return s.cfg.Load()
}

// Reload re-reads the file. The previous configuration stays active on error.
func (s *Store) Reload() error {
	cfg, err := LoadConfig(s.path)
	if err != nil {
		return err
	}
	s.cfg.Store(cfg)
	return nil
}

// Watch reloads the configuration whenever the file is written, until ctx is done
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create config watcher: %w", err)
	}
	if err := watcher.Add(s.path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("could not watch %s: %w", s.path, err)
	}

	go func() {
		defer func() {
			if err := watcher.Close(); err != nil {
				logging.Error("Could not close config watcher: %v", err)
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					if err := s.Reload(); err != nil {
						logging.Error("Failed to reload config: %v", err)
					} else {
						logging.Info("Config reloaded from %s", s.path)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Error("Config watcher error: %v", err)
			}
		}
	}()

	return nil
}
