package main

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// watchDataDir logs when options.json or triggers.json change on disk
// outside of the runtime's own writes. Per spec §5 the in-memory state
// stays authoritative regardless — this is diagnostic only, useful for
// spotting an operator or backup job clobbering persisted files.
func watchDataDir(dir string, log *slog.Logger) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name == dir+"/options.json" || event.Name == dir+"/triggers.json" {
					log.Warn("persisted file changed outside the runtime", "file", event.Name, "op", event.Op.String())
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("data dir watch error", "error", err)
			}
		}
	}()
	return watcher, nil
}
