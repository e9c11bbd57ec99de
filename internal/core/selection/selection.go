// Package selection picks catalogue images by observing night and sidereal time
package selection

import (
	"math"
	"slices"
	"time"

	"allsky/internal/core/catalogue"
	"allsky/internal/core/sidereal"
)

// DefaultTimeLimit is the nearest-match tolerance in sidereal hours
const DefaultTimeLimit = 0.5

// Clear-sky file size band in bytes, inclusive
const (
	ClearMinBytes int64 = 10_500_000
	ClearMaxBytes int64 = 11_000_000
)

// Request describes one selection
type Request struct {
	// Start and End bound the observing nights, inclusive, compared as calendar dates
	Start time.Time
	End   time.Time

	// SiderealStart is the target sidereal time in hours
	SiderealStart float64
	// SiderealEnd switches to range matching when set
	SiderealEnd *float64

	// TimeLimit is the nearest-match tolerance; <= 0 means DefaultTimeLimit
	TimeLimit float64

	// ClearOnly keeps only images inside the clear-sky size band
	ClearOnly bool
}

// Result is the outcome of a selection
type Result struct {
	Identifiers []string
	TotalBytes  int64
	TotalMB     float64
}

// candidate pairs a catalogue record with its sidereal time without touching the record
type candidate struct {
	rec      *catalogue.Record
	sidereal float64
}

// IsClear reports whether a file size falls in the clear-sky band
func IsClear(bytes int64) bool { return bytes >= ClearMinBytes && bytes <= ClearMaxBytes }

// CircularDistance is the shorter way round the 24h dial between a and b
func CircularDistance(a, b float64) float64 {
	return math.Min(mod24(a-b), mod24(b-a))
}

// Select applies the date and clarity filters then the nearest or range policy.
// records are only read.
func Select(records []catalogue.Record, req Request) Result {
	start, end := civil(req.Start), civil(req.End)

	var cands []candidate
	for i := range records {
		r := &records[i]
		night := civil(r.NightDate)
		if night.Before(start) || night.After(end) {
			continue
		}
		if req.ClearOnly && !IsClear(r.FilesizeBytes) {
			continue
		}
		cands = append(cands, candidate{rec: r})
	}

	for i := range cands {
		cands[i].sidereal = sidereal.Local(cands[i].rec.TimestampMiddleUTC)
	}

	var picked []*catalogue.Record
	if req.SiderealEnd == nil {
		limit := req.TimeLimit
		if limit <= 0 {
			limit = DefaultTimeLimit
		}
		picked = nearest(cands, req.SiderealStart, limit)
	} else {
		picked = within(cands, req.SiderealStart, *req.SiderealEnd)
	}

	res := Result{Identifiers: make([]string, 0, len(picked))}
	for _, r := range picked {
		res.Identifiers = append(res.Identifiers, r.Directory)
		res.TotalBytes += r.FilesizeBytes
	}
	res.TotalMB = float64(res.TotalBytes) / 1e6
	return res
}

// nearest picks at most one image per night, nights ascending
func nearest(cands []candidate, target, limit float64) []*catalogue.Record {
	var (
		order  []time.Time
		groups = map[time.Time][]candidate{}
	)
	for _, c := range cands {
		n := civil(c.rec.NightDate)
		if _, ok := groups[n]; !ok {
			order = append(order, n)
		}
		groups[n] = append(groups[n], c)
	}
	slices.SortFunc(order, time.Time.Compare)

	out := make([]*catalogue.Record, 0, len(order))
	for _, n := range order {
		best := -1
		bestDiff := math.Inf(1)
		for i, c := range groups[n] {
			if CircularDistance(c.sidereal, target) >= limit {
				continue
			}
			// absolute, not circular, difference breaks ties; first wins on equality
			if d := math.Abs(c.sidereal - target); d < bestDiff {
				best, bestDiff = i, d
			}
		}
		if best >= 0 {
			out = append(out, groups[n][best].rec)
		}
	}
	return out
}

// within keeps every image whose sidereal time falls in [start, end], wrapping past 24h
// when start >= end
func within(cands []candidate, start, end float64) []*catalogue.Record {
	var out []*catalogue.Record
	for _, c := range cands {
		t := c.sidereal
		var ok bool
		if start < end {
			ok = t >= start && t <= end
		} else {
			ok = t >= start || t <= end
		}
		if ok {
			out = append(out, c.rec)
		}
	}
	return out
}

// civil truncates t to its calendar date, keeping the wall clock date of t's location
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mod24(x float64) float64 { return x - 24*math.Floor(x/24) }
