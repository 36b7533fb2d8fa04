package fototag

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/otiai10/copy"
	"k8s.io/klog/v2"
)

type outcome int

const (
	outcomeDone outcome = iota
	outcomeSkipped
	outcomeFailed
)

// Run processes every supported image under c.InDir, one file at a time.
// Per-file failures are logged and counted, never fatal; Run itself only
// fails when the directory scan does.
func Run(ctx context.Context, c *Config, b Backend, d Describer) (*Summary, error) {
	photos, err := Find(c.InDir, c.Recursive)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	klog.Infof("found %d images in %s", len(photos), c.InDir)

	s := &Summary{}
	for n, p := range photos {
		klog.V(1).Infof("processing %d/%d: %s", n+1, len(photos), p.Path)
		switch o, err := processPhoto(ctx, c, b, d, p.Path); o {
		case outcomeDone:
			s.Processed++
		case outcomeSkipped:
			s.Skipped++
			klog.Infof("skipped %s: already tagged", p.Path)
		case outcomeFailed:
			s.Failed++
			klog.Errorf("failed %s: %v", p.Path, err)
		}
	}

	klog.Infof("done with %s: %s", c.InDir, s)
	return s, nil
}

// processPhoto takes one file from Pending to Done, Skip or Failed.
func processPhoto(ctx context.Context, c *Config, b Backend, d Describer, path string) (outcome, error) {
	existing, err := b.Read(path)
	if err != nil {
		return outcomeFailed, err
	}

	if !existing.Empty() && !c.Overwrite {
		return outcomeSkipped, nil
	}

	desc, err := d.Describe(ctx, path)
	if err != nil {
		return outcomeFailed, err
	}

	f := Fields{
		Keywords: desc.Tags,
		Headline: desc.Headline,
		Abstract: desc.Abstract,
	}

	klog.V(1).Infof("%s: keywords=%v headline=%q abstract=%q", path, f.Keywords, f.Headline, f.Abstract)

	if c.DryRun {
		klog.Infof("dry-run: would tag %s with %v", path, f.Keywords)
		return outcomeDone, nil
	}

	if c.BackupDir != "" {
		if err := mirror(c, path); err != nil {
			return outcomeFailed, err
		}
	}

	if err := b.Write(path, f, c.Model); err != nil {
		return outcomeFailed, err
	}

	klog.Infof("tagged %s: %v", path, f.Keywords)
	return outcomeDone, nil
}

// mirror copies the untouched original into the backup directory, keeping
// its position relative to the input directory.
func mirror(c *Config, path string) error {
	rel, err := filepath.Rel(c.InDir, path)
	if err != nil {
		rel = filepath.Base(path)
	}

	dst := filepath.Join(c.BackupDir, rel)
	klog.V(1).Infof("mirroring %s -> %s", path, dst)
	if err := copy.Copy(path, dst); err != nil {
		return fmt.Errorf("mirror: %w", err)
	}

	return nil
}
