package batch

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/pgzip"
)

// gzipSuffix is appended to compressed output names.
const gzipSuffix = ".gz"

// countingWriter counts bytes reaching the file, after compression.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)

	return n, err
}

// writeFile creates path and streams render into it, gzip-compressed when compress is set.
// It returns the number of bytes written to disk.
func writeFile(path string, compress bool, render func(io.Writer) error) (n int64, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close %s: %w", path, closeErr))
		}
	}()

	counter := &countingWriter{w: f}

	if !compress {
		if renderErr := render(counter); renderErr != nil {
			return counter.n, fmt.Errorf("write %s: %w", path, renderErr)
		}

		return counter.n, nil
	}

	gz := pgzip.NewWriter(counter)

	if renderErr := render(gz); renderErr != nil {
		return counter.n, errors.Join(fmt.Errorf("write %s: %w", path, renderErr), gz.Close())
	}

	if closeErr := gz.Close(); closeErr != nil {
		return counter.n, fmt.Errorf("compress %s: %w", path, closeErr)
	}

	return counter.n, nil
}
