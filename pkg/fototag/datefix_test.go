package fototag

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDateFromName(t *testing.T) {
	tests := []struct {
		name string
		want time.Time
		ok   bool
	}{
		{
			name: "25-07-04 18-30-05.jpg",
			want: time.Date(2025, 7, 4, 18, 30, 5, 0, time.Local),
			ok:   true,
		},
		{
			name: "WhatsApp 25-07-04 18.30.05 (1).jpg",
			want: time.Date(2025, 7, 4, 18, 30, 5, 0, time.Local),
			ok:   true,
		},
		{
			name: "IMG_20250704_183005.jpg",
			want: time.Date(2025, 7, 4, 18, 30, 5, 0, time.Local),
			ok:   true,
		},
		{
			name: "PANO_20231231_235959.jpg",
			want: time.Date(2023, 12, 31, 23, 59, 59, 0, time.Local),
			ok:   true,
		},
		{name: "holiday.jpg", ok: false},
		{name: "IMG_20251399_183005.jpg", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DateFromName(tt.name)
			if ok != tt.ok {
				t.Fatalf("DateFromName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("DateFromName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

type fakeDateBackend struct {
	dates  map[string]Dates
	writes map[string]Dates
}

func newFakeDateBackend() *fakeDateBackend {
	return &fakeDateBackend{dates: map[string]Dates{}, writes: map[string]Dates{}}
}

func (b *fakeDateBackend) ReadDates(path string) (Dates, error) {
	return b.dates[filepath.Base(path)], nil
}

func (b *fakeDateBackend) WriteDates(path string, d Dates) error {
	b.writes[filepath.Base(path)] = d
	return nil
}

func TestFixDates(t *testing.T) {
	root := testDir(t,
		"IMG_20250704_183005.jpg", // no EXIF dates: fill in
		"25-07-04 18-30-05.jpg",   // dates off by days: correct
		"IMG_20250101_120000.jpg", // dates close enough: leave alone
		"holiday.jpg",             // no pattern: leave alone
	)

	b := newFakeDateBackend()
	offDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	b.dates["25-07-04 18-30-05.jpg"] = Dates{Original: offDate, Create: offDate, Modify: offDate}
	closeDate := time.Date(2025, 1, 1, 9, 0, 0, 0, time.Local)
	b.dates["IMG_20250101_120000.jpg"] = Dates{Original: closeDate, Create: closeDate, Modify: closeDate}

	s, err := FixDates(root, b, true)
	if err != nil {
		t.Fatalf("FixDates: %v", err)
	}

	if s.Processed != 2 || s.Skipped != 2 || s.Failed != 0 {
		t.Errorf("summary = %+v, want 2 processed, 2 skipped", s)
	}

	want := time.Date(2025, 7, 4, 18, 30, 5, 0, time.Local)

	got, ok := b.writes["IMG_20250704_183005.jpg"]
	if !ok {
		t.Fatal("dates not written for IMG_20250704_183005.jpg")
	}
	for _, d := range []time.Time{got.Original, got.Create, got.Modify} {
		if !d.Equal(want) {
			t.Errorf("written date = %v, want %v", d, want)
		}
	}

	got, ok = b.writes["25-07-04 18-30-05.jpg"]
	if !ok {
		t.Fatal("dates not corrected for 25-07-04 18-30-05.jpg")
	}
	if !got.Original.Equal(want) {
		t.Errorf("corrected Original = %v, want %v", got.Original, want)
	}
	if !got.Create.Equal(offDate) {
		t.Errorf("Create was rewritten to %v", got.Create)
	}

	if _, ok := b.writes["IMG_20250101_120000.jpg"]; ok {
		t.Error("close-enough dates were rewritten")
	}
	if _, ok := b.writes["holiday.jpg"]; ok {
		t.Error("patternless file was rewritten")
	}
}

func TestFixDatesDryRun(t *testing.T) {
	root := testDir(t, "IMG_20250704_183005.jpg")

	b := newFakeDateBackend()
	s, err := FixDates(root, b, false)
	if err != nil {
		t.Fatalf("FixDates: %v", err)
	}

	if s.Processed != 1 {
		t.Errorf("summary = %+v, want 1 processed", s)
	}
	if len(b.writes) != 0 {
		t.Errorf("dry-run wrote dates: %v", b.writes)
	}
}
