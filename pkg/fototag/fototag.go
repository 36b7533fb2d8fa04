// Package fototag tags photos with AI-generated keywords, headlines and abstracts.
package fototag

import (
	"fmt"
	"strings"
	"time"
)

// Config holds configuration for a tagging run.
type Config struct {
	InDir     string
	Model     string
	Overwrite bool
	Recursive bool
	DryRun    bool
	BackupDir string
}

// Fields are the descriptive metadata fields we read and write.
type Fields struct {
	Keywords []string
	Headline string
	Abstract string
}

// Empty reports whether no descriptive fields are set.
func (f Fields) Empty() bool {
	return len(f.Keywords) == 0 && f.Headline == "" && f.Abstract == ""
}

// Photo represents a single image file found in the input directory.
type Photo struct {
	Path      string
	MediaType string
	ModTime   time.Time
}

// Description is what the vision model returns for an image.
type Description struct {
	Tags     []string `json:"tags"`
	Headline string   `json:"headline"`
	Abstract string   `json:"abstract"`
}

// Summary counts per-file outcomes for a run.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d processed, %d skipped, %d failed", s.Processed, s.Skipped, s.Failed)
}

// ToolError is a failure of the external exiftool process.
type ToolError struct {
	Op   string
	Path string
	Err  error
}

func (e *ToolError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("exiftool %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("exiftool %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// DescribeError is a failure to obtain a description from the inference endpoint.
type DescribeError struct {
	Path   string
	Status int
	Err    error
}

func (e *DescribeError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("describe %q: HTTP %d: %v", e.Path, e.Status, e.Err)
	}
	return fmt.Sprintf("describe %q: %v", e.Path, e.Err)
}

func (e *DescribeError) Unwrap() error { return e.Err }

// cleanTags trims whitespace from each tag and drops empty ones.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
