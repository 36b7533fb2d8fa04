package fototag

import (
	"bytes"
	"context"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestDownscaleJPEGPassThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.jpg")
	writeJPEG(t, path, 320, 240)

	bs, err := downscaleJPEG(path)
	if err != nil {
		t.Fatalf("downscaleJPEG: %v", err)
	}

	orig, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(bs, orig) {
		t.Error("small image was re-encoded instead of passed through")
	}
}

func TestDownscaleJPEGLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wide.jpg")
	writeJPEG(t, path, 4096, 1024)

	bs, err := downscaleJPEG(path)
	if err != nil {
		t.Fatalf("downscaleJPEG: %v", err)
	}

	ic, _, err := image.DecodeConfig(bytes.NewReader(bs))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ic.Width != 2048 || ic.Height != 512 {
		t.Errorf("downscaled to %dx%d, want 2048x512", ic.Width, ic.Height)
	}
}

func TestExtractPreviewGarbage(t *testing.T) {
	if _, err := exec.LookPath("exiftool"); err != nil {
		t.Skip("exiftool not installed")
	}

	path := filepath.Join(t.TempDir(), "garbage.heic")
	writeFile(t, path)

	if _, err := extractPreview(context.Background(), path); err == nil {
		t.Error("expected error for file without embedded preview")
	}
}
