package catalogue

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// CSV column headers written by the camera indexer
const (
	ColDirectory    = "Directory"
	ColTimestampUTC = "Timestamp middle UTC"
	ColFilesize     = "Filesize (bytes)"
)

// timestamp layouts seen in indexer output, tried in order
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
}

// ParseTimestamp parses an indexer timestamp; values without an offset are UTC
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// DecodeCSV reads records from an indexer CSV. Columns are located by header name,
// extra columns are ignored. Rows keep file order.
func DecodeCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("catalogue csv: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("catalogue csv: header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	idx := make([]int, 3)
	for i, name := range []string{ColDirectory, ColTimestampUTC, ColFilesize} {
		j, ok := col[name]
		if !ok {
			return nil, fmt.Errorf("catalogue csv: missing column %q", name)
		}
		idx[i] = j
	}

	var out []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalogue csv: %w", err)
		}
		if blank(row) {
			continue
		}
		line, _ := cr.FieldPos(0)
		for _, j := range idx {
			if j >= len(row) {
				return nil, fmt.Errorf("catalogue csv: line %d: expected %d fields, got %d", line, j+1, len(row))
			}
		}

		ts, err := ParseTimestamp(row[idx[1]])
		if err != nil {
			return nil, fmt.Errorf("catalogue csv: line %d: %w", line, err)
		}
		size, err := parseSize(row[idx[2]])
		if err != nil {
			return nil, fmt.Errorf("catalogue csv: line %d: %w", line, err)
		}
		out = append(out, Record{
			Directory:          strings.TrimSpace(row[idx[0]]),
			TimestampMiddleUTC: ts,
			FilesizeBytes:      size,
		})
	}
	return out, nil
}

// parseSize accepts integer sizes and float-rendered integers like "10600000.0"
func parseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("bad file size %q", s)
	}
	return int64(f), nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
