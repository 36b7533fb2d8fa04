package fototag

import (
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"k8s.io/klog/v2"
)

var (
	// 25-07-04 18-30-05 or 25-07-04 18.30.05, as produced by some messengers
	dashDatePattern = regexp.MustCompile(`(\d{2})-(\d{2})-(\d{2}) (\d{2})[-.](\d{2})[-.](\d{2})`)

	// IMG_20250704_183005 / PANO_20250704_183005, as produced by Android cameras
	imgDatePattern = regexp.MustCompile(`(?:IMG|PANO)_(\d{4})(\d{2})(\d{2})_(\d{2})(\d{2})(\d{2})`)
)

// DateFromName extracts a capture time from a file name, if the name
// matches a known camera or messenger pattern.
func DateFromName(name string) (time.Time, bool) {
	if m := dashDatePattern.FindStringSubmatch(name); m != nil {
		return buildDate("20"+m[1], m[2], m[3], m[4], m[5], m[6])
	}

	if m := imgDatePattern.FindStringSubmatch(name); m != nil {
		return buildDate(m[1], m[2], m[3], m[4], m[5], m[6])
	}

	return time.Time{}, false
}

func buildDate(yyyy, mm, dd, hh, mi, ss string) (time.Time, bool) {
	n := func(s string) int {
		v, _ := strconv.Atoi(s)
		return v
	}

	t := time.Date(n(yyyy), time.Month(n(mm)), n(dd), n(hh), n(mi), n(ss), 0, time.Local)
	if t.Year() != n(yyyy) || int(t.Month()) != n(mm) || t.Day() != n(dd) {
		return time.Time{}, false
	}

	return t, true
}

func differMoreThan24h(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d > 24*time.Hour
}

// FixDates walks root and corrects EXIF timestamps from filename patterns:
// absent dates are filled in, and dates off by more than 24 hours from the
// filename are overwritten. With modify false, nothing is written.
func FixDates(root string, b DateBackend, modify bool) (*Summary, error) {
	photos, err := Find(root, true)
	if err != nil {
		return nil, err
	}

	s := &Summary{}
	for _, p := range photos {
		switch o, err := fixDate(p.Path, b, modify); o {
		case outcomeDone:
			s.Processed++
		case outcomeSkipped:
			s.Skipped++
		case outcomeFailed:
			s.Failed++
			klog.Errorf("failed %s: %v", p.Path, err)
		}
	}

	klog.Infof("date correction done: %s", s)
	return s, nil
}

func fixDate(path string, b DateBackend, modify bool) (outcome, error) {
	want, ok := DateFromName(filepath.Base(path))
	if !ok {
		klog.V(1).Infof("no date pattern in %s", path)
		return outcomeSkipped, nil
	}

	d, err := b.ReadDates(path)
	if err != nil {
		return outcomeFailed, err
	}

	switch {
	case d.Original.IsZero() || d.Create.IsZero():
		klog.Infof("setting dates for %s to %s", path, want.Format(exifDate))
		d = Dates{Original: want, Create: want, Modify: want}
	case differMoreThan24h(want, d.Original) || differMoreThan24h(want, d.Create):
		klog.Infof("correcting %s: %s -> %s", path, d.Original.Format(exifDate), want.Format(exifDate))
		d.Original = want
	default:
		klog.V(1).Infof("date already correct for %s", path)
		return outcomeSkipped, nil
	}

	if !modify {
		klog.Infof("dry-run: would update dates for %s", path)
		return outcomeDone, nil
	}

	if err := b.WriteDates(path, d); err != nil {
		return outcomeFailed, err
	}

	return outcomeDone, nil
}
