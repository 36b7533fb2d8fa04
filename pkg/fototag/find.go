package fototag

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

var mediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".heic": "image/heic",
}

// eligible reports whether path is an image we know how to tag.
func eligible(path string) bool {
	base := filepath.Base(path)
	if base == "" || base[0] == '.' {
		return false
	}

	// exiftool leaves FILE_original backups beside modified files
	if strings.HasSuffix(base, "_original") {
		return false
	}

	return mediaTypes[strings.ToLower(filepath.Ext(base))] != ""
}

// Find returns the supported images under root, in directory-listing order.
func Find(root string, recursive bool) ([]*Photo, error) {
	found := []*Photo{}

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				if path == root {
					return nil
				}
				if !recursive || filepath.Base(path)[0] == '.' {
					return godirwalk.SkipThis
				}
				return nil
			}

			if !eligible(path) {
				return nil
			}

			fi, err := os.Stat(path)
			if err != nil {
				klog.Errorf("stat failure: %v", err)
				return err
			}

			klog.V(1).Infof("found %s", path)
			found = append(found, &Photo{
				Path:      path,
				MediaType: mediaTypes[strings.ToLower(filepath.Ext(path))],
				ModTime:   fi.ModTime(),
			})

			return nil
		},
	})

	return found, err
}
