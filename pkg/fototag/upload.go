package fototag

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"k8s.io/klog/v2"
)

var (
	// uploadEdge is the longest edge we send to the model. Larger images
	// are downscaled before upload.
	uploadEdge = 2048

	uploadQuality = 85
)

// prepareImage returns JPEG bytes for path, ready to send to a vision model.
// HEIC files are not decoded in-process: exiftool extracts their embedded
// full-resolution JPEG preview instead.
func prepareImage(ctx context.Context, path string) ([]byte, error) {
	if strings.ToLower(filepath.Ext(path)) == ".heic" {
		return extractPreview(ctx, path)
	}
	return downscaleJPEG(path)
}

// downscaleJPEG re-encodes a JPEG whose longest edge exceeds uploadEdge.
// Smaller files are passed through untouched.
func downscaleJPEG(path string) ([]byte, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imgio.Open: %w", err)
	}

	dx := img.Bounds().Dx()
	dy := img.Bounds().Dy()
	if dx == 0 || dy == 0 {
		return nil, fmt.Errorf("no dimensions for %q", path)
	}

	if dx <= uploadEdge && dy <= uploadEdge {
		return os.ReadFile(path)
	}

	x := uploadEdge
	y := uploadEdge
	if dx > dy {
		y = dy * uploadEdge / dx
	} else {
		x = dx * uploadEdge / dy
	}

	klog.V(1).Infof("downscaling %s: %dx%d -> %dx%d", path, dx, dy, x, y)
	rimg := transform.Resize(img, x, y, transform.Lanczos)

	var buf bytes.Buffer
	if err := imgio.JPEGEncoder(uploadQuality)(&buf, rimg); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	return buf.Bytes(), nil
}

// extractPreview pulls the embedded JPEG preview out of a HEIC file.
func extractPreview(ctx context.Context, path string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "exiftool", "-b", "-PreviewImage", path).Output()
	if err != nil {
		return nil, &ToolError{Op: "preview", Path: path, Err: err}
	}

	if len(out) == 0 {
		return nil, &ToolError{Op: "preview", Path: path, Err: fmt.Errorf("no embedded preview")}
	}

	return out, nil
}
