// Package imagestest builds small catalogues and archive trees for tests
package imagestest

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"allsky/internal/core/catalogue"
	"allsky/internal/core/sidereal"
)

// Image is one fixture: directory, target sidereal hour on its night, size
type Image struct {
	Dir      string
	Sidereal float64
	Size     int64
}

// At returns a UTC instant on night (YYYYMMDD) whose observatory sidereal time is target
func At(night string, target float64) time.Time {
	d, err := time.Parse(catalogue.NightLayout, night)
	if err != nil {
		panic(err)
	}
	jd := sidereal.JulianDate(d.Year(), d.Month(), d.Day())
	h := sidereal.Wrap(target-sidereal.GST0(jd)-sidereal.ObservatoryLongitude/15) / 1.00273790935
	return d.Add(time.Duration(math.Round(h*3600)) * time.Second)
}

// Records turns fixtures into catalogue records in the given order
func Records(imgs ...Image) []catalogue.Record {
	out := make([]catalogue.Record, 0, len(imgs))
	for _, im := range imgs {
		out = append(out, catalogue.Record{
			Directory:          im.Dir,
			TimestampMiddleUTC: At(im.Dir[:8], im.Sidereal),
			FilesizeBytes:      im.Size,
		})
	}
	return out
}

// CSV renders fixtures in the indexer format, with the local timestamp column
// the decoder ignores
func CSV(imgs ...Image) string {
	var b strings.Builder
	b.WriteString("Directory,Timestamp middle,Timestamp middle UTC,Filesize (bytes)\n")
	for _, r := range Records(imgs...) {
		fmt.Fprintf(&b, "%s,%s,%s,%d\n",
			r.Directory,
			r.TimestampMiddleUTC.Add(10*time.Hour+30*time.Minute).Format("2006-01-02 15:04:05"),
			r.TimestampMiddleUTC.Format("2006-01-02 15:04:05+00:00"),
			r.FilesizeBytes,
		)
	}
	return b.String()
}

// WriteCSV writes the fixtures to a catalogue file under t.TempDir
func WriteCSV(t *testing.T, imgs ...Image) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "image_catalogue.csv")
	if err := os.WriteFile(p, []byte(CSV(imgs...)), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

// Tree creates one small file per fixture under a fresh base directory.
// File contents are the directory name so archives can be checked
func Tree(t *testing.T, imgs ...Image) string {
	t.Helper()
	base := t.TempDir()
	for _, im := range imgs {
		p := filepath.Join(base, filepath.FromSlash(im.Dir))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(im.Dir), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return base
}

// Source serves fixed records, or Err
type Source struct {
	Recs  []catalogue.Record
	Err   error
	Calls int
}

// Load implements repo.Source
func (s *Source) Load(ctx context.Context) ([]catalogue.Record, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Recs, ctx.Err()
}

// Name implements repo.Source
func (s *Source) Name() string { return "fixture" }

// Night fixtures: two nights with three images each plus one clear sized image.
// Sidereal hours are chosen so a 6.0 target picks one image per night
var Night = []Image{
	{Dir: "20200101/img_0001.jpg", Sidereal: 5.0, Size: 9_000_000},
	{Dir: "20200101/img_0002.jpg", Sidereal: 5.9, Size: 10_600_000},
	{Dir: "20200101/img_0003.jpg", Sidereal: 7.0, Size: 9_500_000},
	{Dir: "20200102/img_0001.jpg", Sidereal: 6.2, Size: 12_000_000},
	{Dir: "20200102/img_0002.jpg", Sidereal: 6.8, Size: 10_700_000},
	{Dir: "20200102/img_0003.jpg", Sidereal: 9.0, Size: 8_000_000},
}
