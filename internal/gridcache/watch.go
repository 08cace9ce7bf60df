package gridcache

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch invalidates cached grids whenever one of paths changes on disk and
// then calls onChange with the path. It runs until ctx is cancelled.
//
// The parent directories are watched rather than the files, since editors
// and spreadsheet apps usually save by writing a temp file and renaming it.
func (c *Cache) Watch(ctx context.Context, paths []string, onChange func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs := cleanPath(p)
		watched[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return err
		}
		dirs[dir] = true
	}
	c.logger.Info("watching %d inputs in %d directories", len(watched), len(dirs))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path := cleanPath(event.Name)
			if !watched[path] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}

			dropped := c.InvalidatePath(path)
			c.logger.Info("input changed: %s (%s), dropped %d cached grids", path, event.Op, dropped)
			if onChange != nil {
				onChange(path)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Error("watcher error: %v", err)
		}
	}
}
