// Package lines streams text lines from local or remote, optionally
// gzip-compressed, tab-separated resources.
package lines

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// httpTimeout bounds a full remote read. Annotation tables run to a few
// hundred MB, so the limit is generous.
const httpTimeout = 30 * time.Minute

// Open returns a reader for a local path or http(s) URL. Resources ending in
// .gz are transparently decompressed. The caller must Close the result.
func Open(pathOrURL string) (io.ReadCloser, error) {
	var rc io.ReadCloser

	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		client := &http.Client{Timeout: httpTimeout}
		resp, err := client.Get(pathOrURL)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", pathOrURL, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: HTTP %s", pathOrURL, resp.Status)
		}
		rc = resp.Body
	} else {
		f, err := os.Open(pathOrURL)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", pathOrURL, err)
		}
		rc = f
	}

	if strings.HasSuffix(pathOrURL, ".gz") {
		gz, err := gzip.NewReader(rc)
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("open gzip reader for %s: %w", pathOrURL, err)
		}
		return &gzipReadCloser{gz: gz, underlying: rc}, nil
	}

	return rc, nil
}

// gzipReadCloser closes both the gzip stream and the underlying source.
type gzipReadCloser struct {
	gz         *gzip.Reader
	underlying io.ReadCloser
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipReadCloser) Close() error {
	gzErr := g.gz.Close()
	if err := g.underlying.Close(); err != nil {
		return err
	}
	return gzErr
}

// Each calls fn for every line of r, with the trailing newline removed.
// Iteration stops at the first error returned by fn.
func Each(r io.Reader, fn func(line string) error) error {
	scanner := bufio.NewScanner(r)
	// Some genePred rows carry very long exon lists.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 4*1024*1024)

	for scanner.Scan() {
		if err := fn(scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// EachFrom opens pathOrURL and streams its lines through fn.
func EachFrom(pathOrURL string, fn func(line string) error) error {
	rc, err := Open(pathOrURL)
	if err != nil {
		return err
	}
	defer rc.Close()
	return Each(rc, fn)
}
