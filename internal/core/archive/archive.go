// Package archive streams selected catalogue images as a zip
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

// ErrUnsafePath is returned for entries that would escape the archive root
var ErrUnsafePath = errors.New("archive: path escapes base directory")

// ErrMissing is returned when a selected image is not on disk
var ErrMissing = errors.New("archive: image file missing")

// Stats reports what was written
type Stats struct {
	Files int
	Bytes int64
}

// openFile is a seam for tests
var openFile = func(name string) (fs.File, error) { return os.Open(name) }

// Resolve maps a catalogue directory onto a file path under baseDir
func Resolve(baseDir, directory string) (string, error) {
	rel := filepath.FromSlash(directory)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, directory)
	}
	return filepath.Join(baseDir, rel), nil
}

// Check verifies every entry resolves to a regular file under baseDir.
// Call before sending response headers; Write cannot report errors cleanly once streaming.
func Check(baseDir string, dirs []string) error {
	for _, d := range dirs {
		p, err := Resolve(baseDir, d)
		if err != nil {
			return err
		}
		fi, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: %s", ErrMissing, d)
			}
			return err
		}
		if !fi.Mode().IsRegular() {
			return fmt.Errorf("%w: %s is not a regular file", ErrMissing, d)
		}
	}
	return nil
}

// Write streams a zip holding each entry under its base name.
// Entries are stored uncompressed; camera JPEGs do not shrink.
// On error the central directory is never written, so a partial stream
// cannot be opened as a complete archive.
func Write(ctx context.Context, w io.Writer, baseDir string, dirs []string) (Stats, error) {
	var st Stats
	zw := zip.NewWriter(w)

	for _, d := range dirs {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		n, err := addFile(zw, baseDir, d)
		if err != nil {
			return st, err
		}
		st.Files++
		st.Bytes += n
	}

	if err := zw.Close(); err != nil {
		return st, fmt.Errorf("archive: finish zip: %w", err)
	}
	return st, nil
}

func addFile(zw *zip.Writer, baseDir, directory string) (int64, error) {
	p, err := Resolve(baseDir, directory)
	if err != nil {
		return 0, err
	}
	f, err := openFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrMissing, directory)
		}
		return 0, fmt.Errorf("archive: open %s: %w", directory, err)
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("archive: stat %s: %w", directory, err)
	}

	hdr := &zip.FileHeader{
		Name:     path.Base(filepath.ToSlash(directory)),
		Method:   zip.Store,
		Modified: fi.ModTime(),
	}
	hdr.SetMode(0o644)

	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return 0, fmt.Errorf("archive: header %s: %w", directory, err)
	}
	n, err := io.Copy(dst, f)
	if err != nil {
		return n, fmt.Errorf("archive: copy %s: %w", directory, err)
	}
	return n, nil
}
