package signature

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cellbrowser/cbgenes/internal/lines"
	"github.com/cellbrowser/cbgenes/internal/output"
)

// WriteTable persists a release -> unique identifier set mapping as a
// tab-separated table: release name, then the pipe-joined identifiers.
// Identifiers are written in sorted order so rebuilding from the same inputs
// reproduces the same bytes. Empty sets are written as empty lists, not
// dropped.
func WriteTable(path string, unique map[string]Set) error {
	w, err := output.NewRowWriter(path)
	if err != nil {
		return err
	}

	releases := make([]string, 0, len(unique))
	for release := range unique {
		releases = append(releases, release)
	}
	sort.Strings(releases)

	for _, release := range releases {
		if err := w.WriteRow(release, strings.Join(unique[release].Sorted(), "|")); err != nil {
			w.Abort()
			return err
		}
	}
	return w.Close()
}

// ReadTable loads a signature table written by WriteTable. Lines starting
// with # are ignored.
func ReadTable(path string) (map[string]Set, error) {
	sets := make(map[string]Set)
	err := lines.EachFrom(path, func(line string) error {
		if line == "" || strings.HasPrefix(line, "#") {
			return nil
		}
		release, ids, ok := strings.Cut(line, "\t")
		if !ok {
			return fmt.Errorf("%s: malformed signature row %q", path, line)
		}
		set := make(Set)
		if ids != "" {
			for _, id := range strings.Split(ids, "|") {
				set[id] = struct{}{}
			}
		}
		sets[release] = set
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sets, nil
}
