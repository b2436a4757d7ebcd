package index

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
)

// gzipFile closes both the decompressor and the underlying file.
type gzipFile struct {
	*pgzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	g.Reader.Close()
	return g.f.Close()
}

// openInput opens path for reading, decompressing it if it ends in ".gz".
// Errors from os.Open are returned unwrapped so callers can test for
// fs.ErrNotExist. A bad gzip header is reported as malformed.
func openInput(path string, malformed error) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}

	gz, err := pgzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s: open gzip reader: %v", malformed, path, err)
	}
	return &gzipFile{Reader: gz, f: f}, nil
}
