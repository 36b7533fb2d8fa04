package fototag

import (
	"time"

	"github.com/barasher/go-exiftool"
	"k8s.io/klog/v2"
)

var exifDate = "2006:01:02 15:04:05"

// Backend reads and writes descriptive metadata for a single image file.
// It is an interface so tests can use a fake and other tools can substitute
// for exiftool.
type Backend interface {
	Read(path string) (Fields, error)
	Write(path string, f Fields, editor string) error
	Close() error
}

// ExifBackend implements Backend on top of a long-running exiftool process.
type ExifBackend struct {
	et *exiftool.Exiftool
}

// NewExifBackend starts exiftool in stay-open mode. Writes keep a
// FILE_original backup beside each modified file.
func NewExifBackend() (*ExifBackend, error) {
	et, err := exiftool.NewExiftool(exiftool.BackupOriginal())
	if err != nil {
		return nil, &ToolError{Op: "start", Err: err}
	}
	return &ExifBackend{et: et}, nil
}

// Close shuts down the exiftool process.
func (b *ExifBackend) Close() error {
	return b.et.Close()
}

// Read extracts the existing keywords, headline and abstract. Missing tags
// yield empty fields, not an error.
func (b *ExifBackend) Read(path string) (Fields, error) {
	fms := b.et.ExtractMetadata(path)
	fm := fms[0]
	if fm.Err != nil {
		return Fields{}, &ToolError{Op: "read", Path: path, Err: fm.Err}
	}

	for k, v := range fm.Fields {
		klog.V(2).Infof("%q=%v", k, v)
	}

	f := Fields{}

	if kw, err := fm.GetStrings("Keywords"); err == nil {
		f.Keywords = kw
	} else if kw, err := fm.GetStrings("Subject"); err == nil {
		f.Keywords = kw
	}

	if v, err := fm.GetString("Headline"); err == nil {
		f.Headline = v
	} else if v, err := fm.GetString("Title"); err == nil {
		f.Headline = v
	}

	if v, err := fm.GetString("Caption-Abstract"); err == nil {
		f.Abstract = v
	} else if v, err := fm.GetString("Description"); err == nil {
		f.Abstract = v
	}

	return f, nil
}

// Write sets the IPTC and XMP descriptive tags. editor is recorded as
// IPTC:Writer-Editor so tagged files are attributable to the model.
func (b *ExifBackend) Write(path string, f Fields, editor string) error {
	fm := exiftool.FileMetadata{File: path, Fields: map[string]interface{}{}}

	fm.SetStrings("IPTC:Keywords", f.Keywords)
	fm.SetStrings("XMP-dc:Subject", f.Keywords)
	fm.SetString("IPTC:Headline", f.Headline)
	fm.SetString("XMP-dc:Title", f.Headline)
	fm.SetString("EXIF:ImageDescription", f.Headline)
	fm.SetString("IPTC:Caption-Abstract", f.Abstract)
	fm.SetString("XMP-dc:Description", f.Abstract)
	fm.SetString("IPTC:Writer-Editor", editor)

	fms := []exiftool.FileMetadata{fm}
	b.et.WriteMetadata(fms)
	if fms[0].Err != nil {
		return &ToolError{Op: "write", Path: path, Err: fms[0].Err}
	}

	return nil
}

// Dates are the EXIF timestamps datefix cares about. Zero values mean the
// tag is absent.
type Dates struct {
	Original time.Time
	Create   time.Time
	Modify   time.Time
}

// DateBackend reads and writes EXIF timestamps.
type DateBackend interface {
	ReadDates(path string) (Dates, error)
	WriteDates(path string, d Dates) error
}

// ReadDates extracts DateTimeOriginal, CreateDate and ModifyDate.
func (b *ExifBackend) ReadDates(path string) (Dates, error) {
	fms := b.et.ExtractMetadata(path)
	fm := fms[0]
	if fm.Err != nil {
		return Dates{}, &ToolError{Op: "read", Path: path, Err: fm.Err}
	}

	d := Dates{}
	for tag, dst := range map[string]*time.Time{
		"DateTimeOriginal": &d.Original,
		"CreateDate":       &d.Create,
		"ModifyDate":       &d.Modify,
	} {
		s, err := fm.GetString(tag)
		if err != nil {
			continue
		}
		t, err := time.Parse(exifDate, s)
		if err != nil {
			klog.Warningf("unparsable %s for %s: %q", tag, path, s)
			continue
		}
		*dst = t
	}

	return d, nil
}

// WriteDates sets the non-zero timestamps in d.
func (b *ExifBackend) WriteDates(path string, d Dates) error {
	fm := exiftool.FileMetadata{File: path, Fields: map[string]interface{}{}}

	if !d.Original.IsZero() {
		fm.SetString("EXIF:DateTimeOriginal", d.Original.Format(exifDate))
	}
	if !d.Create.IsZero() {
		fm.SetString("EXIF:CreateDate", d.Create.Format(exifDate))
	}
	if !d.Modify.IsZero() {
		fm.SetString("EXIF:ModifyDate", d.Modify.Format(exifDate))
	}

	fms := []exiftool.FileMetadata{fm}
	b.et.WriteMetadata(fms)
	if fms[0].Err != nil {
		return &ToolError{Op: "write", Path: path, Err: fms[0].Err}
	}

	return nil
}
