package fototag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// Watch keeps running after the initial pass, tagging images as they land
// in the input directory.
func Watch(ctx context.Context, c *Config, b Backend, d Describer) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	dirs, err := watchDirs(c.InDir, c.Recursive)
	if err != nil {
		return fmt.Errorf("scan dirs: %w", err)
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	klog.Infof("watching %d dirs under %s ...", len(dirs), c.InDir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			fi, err := os.Stat(event.Name)
			if err != nil {
				continue
			}

			if fi.IsDir() {
				if c.Recursive {
					if err := w.Add(event.Name); err != nil {
						klog.Errorf("watch %s: %v", event.Name, err)
					}
				}
				continue
			}

			if !eligible(event.Name) {
				continue
			}

			switch o, err := processPhoto(ctx, c, b, d, event.Name); o {
			case outcomeDone:
				klog.Infof("tagged new arrival %s", event.Name)
			case outcomeSkipped:
				klog.Infof("skipped %s: already tagged", event.Name)
			case outcomeFailed:
				klog.Errorf("failed %s: %v", event.Name, err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			klog.Errorf("watch error: %v", err)
		}
	}
}

// watchDirs returns the directories to register with the watcher.
func watchDirs(root string, recursive bool) ([]string, error) {
	if !recursive {
		return []string{root}, nil
	}

	dirs := []string{}
	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if !de.IsDir() {
				return nil
			}
			if path != root && filepath.Base(path)[0] == '.' {
				return godirwalk.SkipThis
			}
			dirs = append(dirs, path)
			return nil
		},
	})

	return dirs, err
}
