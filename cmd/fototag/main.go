// fototag scans a directory of photos and writes AI-generated keywords,
// headlines and abstracts into their IPTC/XMP metadata via exiftool.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"k8s.io/klog/v2"

	fototag "github.com/thimstedt/fototag/pkg/fototag"
)

var (
	model     = flag.String("model", "gemma3:27b", "vision model to use")
	overwrite = flag.Bool("overwrite", false, "overwrite existing keywords, headline and abstract")
	aiServer  = flag.String("ai_server", "", "URL of an OpenAI-compatible inference server")
	apiKey    = flag.String("api_key", "", "API key for the inference server")
	provider  = flag.String("provider", "openai", "inference provider: openai or gemini")
	recursive = flag.Bool("recursive", true, "descend into subdirectories")
	timeout   = flag.Duration("timeout", 2*time.Minute, "per-image inference timeout")
	backupDir = flag.String("backup_dir", "", "mirror originals into this directory before writing")
	watchFlag = flag.Bool("watch", false, "keep running and tag images as they arrive")
	dryRun    = flag.Bool("n", false, "dry-run mode, don't write metadata")
)

var defaultLogFile = "/var/log/photo_tagger.log"

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if f := flag.Lookup("log_file"); f != nil && f.Value.String() == "" {
		_ = flag.Set("log_file", defaultLogFile)
		_ = flag.Set("logtostderr", "false")
		_ = flag.Set("alsologtostderr", "true")
	}
	defer klog.Flush()

	if len(flag.Args()) == 0 {
		klog.Exitf("no directory provided. Usage: %s [flags] <directory>", os.Args[0])
	}

	dir := flag.Arg(0)
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		klog.Exitf("not a directory: %s", dir)
	}

	ctx := context.Background()

	var d fototag.Describer
	switch *provider {
	case "openai":
		if *aiServer == "" {
			klog.Exitf("--ai_server is a required flag")
		}
		client := fototag.NewClient(*aiServer, *apiKey, *model, *timeout)
		if err := client.Check(ctx); err != nil {
			klog.Exitf("inference server unreachable: %v", err)
		}
		d = client
	case "gemini":
		g, err := fototag.NewGemini(ctx, *apiKey, *model)
		if err != nil {
			klog.Exitf("gemini: %v", err)
		}
		d = g
	default:
		klog.Exitf("unknown provider %q", *provider)
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

	c := &fototag.Config{
		InDir:     dir,
		Model:     *model,
		Overwrite: *overwrite,
		Recursive: *recursive,
		DryRun:    *dryRun,
		BackupDir: *backupDir,
	}

	s, err := fototag.Run(ctx, c, b, d)
	if err != nil {
		klog.Exitf("run failed: %v", err)
	}

	if *watchFlag {
		if err := fototag.Watch(ctx, c, b, d); err != nil {
			klog.Exitf("watch failed: %v", err)
		}
	}

	// exit non-zero only when nothing succeeded
	if s.Failed > 0 && s.Processed == 0 && s.Skipped == 0 {
		klog.Flush()
		os.Exit(1)
	}
}
