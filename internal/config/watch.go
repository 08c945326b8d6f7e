package config

import (
	"context"
	"log/slog"
	"reflect"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Diff returns the YAML keys whose values differ between old and new, in
// field order. A nil old reports every key.
func Diff(old, new *Config) []string {
	if new == nil {
		return nil
	}
	nv := reflect.ValueOf(new).Elem()
	var ov reflect.Value
	if old != nil {
		ov = reflect.ValueOf(old).Elem()
	}

	var changed []string
	t := nv.Type()
	for i := 0; i < t.NumField(); i++ {
		key, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		if key == "" || key == "-" {
			continue
		}
		if old == nil || !reflect.DeepEqual(ov.Field(i).Interface(), nv.Field(i).Interface()) {
			changed = append(changed, key)
		}
	}
	return changed
}

// Watch monitors path and calls onChange each time a write changes what the
// file parses to, passing the new Config and the keys that differ from the
// previously seen one. current is the Config the caller is running with. It
// runs until ctx is cancelled.
//
// The running reporter never applies the new Config; callers use onChange to
// tell the operator a restart is needed. A file that no longer parses is
// logged and skipped, and a write that leaves every value unchanged does not
// call onChange.
func Watch(ctx context.Context, path string, current *Config, onChange func(cfg *Config, changed []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	slog.Debug("config: watching for changes", "path", path)

	last := current
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Atomic-save editors replace the file, which shows up as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// Re-add the file in case an atomic save replaced the inode.
			_ = watcher.Add(path)

			cfg, err := Load(path)
			if err != nil {
				slog.Error("config: changed file does not load", "path", path, "err", err)
				continue
			}
			changed := Diff(last, cfg)
			if len(changed) == 0 {
				slog.Debug("config: file rewritten without changes", "path", path)
				continue
			}
			last = cfg
			onChange(cfg, changed)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}
