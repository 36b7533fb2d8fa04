// datefix corrects EXIF dates in image files based on filename patterns.
package main

import (
	"flag"
	"os"

	"k8s.io/klog/v2"

	fototag "github.com/thimstedt/fototag/pkg/fototag"
)

var dryRun = flag.Bool("n", false, "dry-run mode, don't modify dates")

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	if len(flag.Args()) == 0 {
		klog.Exitf("no directory provided. Usage: %s [flags] <directory>", os.Args[0])
	}

	dir := flag.Arg(0)
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		klog.Exitf("not a directory: %s", dir)
	}

	b, err := fototag.NewExifBackend()
	if err != nil {
		klog.Exitf("exiftool: %v", err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			klog.Errorf("failed to close exiftool: %v", err)
		}
	}()

	if _, err := fototag.FixDates(dir, b, !*dryRun); err != nil {
		klog.Exitf("date correction failed: %v", err)
	}
}
