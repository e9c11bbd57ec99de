// Package catalogue holds the in-memory image catalogue shared by all requests
package catalogue

import (
	"fmt"
	"slices"
	"time"
)

// NightLayout is the folder prefix layout naming an observing night
const NightLayout = "20060102"

// Record is one captured image
type Record struct {
	// Directory is the image path relative to the archive root, prefixed by the night folder
	Directory string
	// NightDate is the observing night, derived from the first 8 characters of Directory
	NightDate time.Time
	// TimestampMiddleUTC is the exposure midpoint
	TimestampMiddleUTC time.Time
	// FilesizeBytes is the stored file size
	FilesizeBytes int64
}

// NightCount is the number of images captured in one night
type NightCount struct {
	NightDate time.Time
	Images    int
}

// Catalogue is an immutable, ordered set of records
// safe for concurrent readers; nothing mutates it after New
type Catalogue struct {
	records []Record
	nights  []NightCount
	byNight map[time.Time][]int
}

// NightDateOf parses the observing night from a directory prefix
func NightDateOf(directory string) (time.Time, error) {
	if len(directory) < len(NightLayout) {
		return time.Time{}, fmt.Errorf("directory %q shorter than night prefix", directory)
	}
	d, err := time.Parse(NightLayout, directory[:len(NightLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("directory %q: bad night prefix: %w", directory, err)
	}
	return d, nil
}

// New builds a catalogue from records in source order.
// NightDate is always re-derived from Directory; the camera folder name is authoritative.
func New(records []Record) (*Catalogue, error) {
	c := &Catalogue{
		records: make([]Record, len(records)),
		byNight: make(map[time.Time][]int),
	}
	seen := make(map[string]struct{}, len(records))

	for i, r := range records {
		if r.Directory == "" {
			return nil, fmt.Errorf("record %d: empty directory", i)
		}
		if _, dup := seen[r.Directory]; dup {
			return nil, fmt.Errorf("record %d: duplicate directory %q", i, r.Directory)
		}
		seen[r.Directory] = struct{}{}
		if r.FilesizeBytes < 0 {
			return nil, fmt.Errorf("record %d: negative file size %d", i, r.FilesizeBytes)
		}
		night, err := NightDateOf(r.Directory)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		r.NightDate = night
		r.TimestampMiddleUTC = r.TimestampMiddleUTC.UTC()
		c.records[i] = r
		c.byNight[night] = append(c.byNight[night], i)
	}

	for night, idx := range c.byNight {
		c.nights = append(c.nights, NightCount{NightDate: night, Images: len(idx)})
	}
	slices.SortFunc(c.nights, func(a, b NightCount) int { return a.NightDate.Compare(b.NightDate) })

	return c, nil
}

// Len returns the number of records
func (c *Catalogue) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// Records returns the records in source order. Callers must treat the slice as read-only.
func (c *Catalogue) Records() []Record {
	if c == nil {
		return nil
	}
	return slices.Clip(c.records)
}

// Nights returns per-night image counts in ascending night order
func (c *Catalogue) Nights() []NightCount {
	if c == nil {
		return nil
	}
	return slices.Clone(c.nights)
}

// Night returns a copy of the records of one night in source order
func (c *Catalogue) Night(night time.Time) []Record {
	if c == nil {
		return nil
	}
	idx := c.byNight[night]
	out := make([]Record, 0, len(idx))
	for _, i := range idx {
		out = append(out, c.records[i])
	}
	return out
}

// Span returns the first and last observing nights
func (c *Catalogue) Span() (first, last time.Time, ok bool) {
	if c == nil || len(c.nights) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return c.nights[0].NightDate, c.nights[len(c.nights)-1].NightDate, true
}
