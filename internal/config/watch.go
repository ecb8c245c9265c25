package config

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchPreset re-reads the preset at path whenever it is written and hands each valid result,
// layered over base, to apply. Invalid presets are logged and skipped. Watching stops with ctx.
func WatchPreset(ctx context.Context, path string, base Config, apply func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	target := filepath.Clean(path)
	// editors replace files by rename, so watch the directory
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
					continue
				}
				reloaded := base
				if err := applyPresetFile(&reloaded, target); err != nil {
					log.Printf("[Config] preset reload failed: %v", err)
					continue
				}
				if err := validateConfig(&reloaded); err != nil {
					log.Printf("[Config] preset rejected: %v", err)
					continue
				}
				log.Printf("[Config] preset %s reloaded", target)
				apply(&reloaded)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[Config] watch error: %v", err)
			}
		}
	}()
	return nil
}

// EnvBase returns the configuration from the environment alone, the layer presets apply over
func EnvBase() Config {
	return *loadFromEnv()
}
