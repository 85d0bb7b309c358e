package signature

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cellbrowser/cbgenes/internal/datadir"
	"github.com/cellbrowser/cbgenes/internal/lines"
)

// Errors reported by the guesser.
var (
	// ErrMissingUniverse means no signature table has been built for the
	// requested organism and identifier type. There is no degraded guess;
	// the caller must run the index build first.
	ErrMissingUniverse = errors.New("no signature table for universe")

	// ErrEmptyInput means the input file yielded no gene identifiers.
	ErrEmptyInput = errors.New("no gene identifiers in input")
)

// Universe identifies one organism+identifier-type signature table.
type Universe struct {
	Organism string // "human" or "mouse"
	IDType   string // "ids" or "syms"
}

func (u Universe) String() string {
	return u.Organism + "/" + u.IDType
}

// DetectUniverse classifies a gene identifier by its shape: Ensembl human and
// mouse accession prefixes, otherwise symbol case (human symbols are fully
// uppercase, mouse symbols are capitalized).
func DetectUniverse(gene string) Universe {
	switch {
	case strings.HasPrefix(gene, "ENSG"):
		return Universe{Organism: "human", IDType: "ids"}
	case strings.HasPrefix(gene, "ENSMUS"):
		return Universe{Organism: "mouse", IDType: "ids"}
	case gene == strings.ToUpper(gene):
		return Universe{Organism: "human", IDType: "syms"}
	default:
		return Universe{Organism: "mouse", IDType: "syms"}
	}
}

// GeneList is a parsed input gene list: a set of identifiers plus their
// first-seen order, which makes universe detection and example reporting
// deterministic.
type GeneList struct {
	ids []string
	set Set
}

// Len returns the number of distinct identifiers.
func (g *GeneList) Len() int { return len(g.ids) }

// First returns the first identifier seen in the input.
func (g *GeneList) First() string { return g.ids[0] }

// IDs returns the identifiers in first-seen order.
func (g *GeneList) IDs() []string { return g.ids }

// Has reports whether id is in the list.
func (g *GeneList) Has(id string) bool { return g.set.Has(id) }

// ParseGeneList reads gene identifiers from the first tab-separated column of
// r. The first line is discarded as a header. Version and isoform suffixes
// after "." or "|" are stripped, and duplicates are collapsed.
func ParseGeneList(r io.Reader) (*GeneList, error) {
	list := &GeneList{set: make(Set)}
	header := true
	err := lines.Each(r, func(line string) error {
		if header {
			header = false
			return nil
		}
		field, _, _ := strings.Cut(line, "\t")
		id := stripSuffix(strings.TrimSpace(field))
		if id == "" {
			return nil
		}
		if !list.set.Has(id) {
			list.set[id] = struct{}{}
			list.ids = append(list.ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(list.ids) == 0 {
		return nil, ErrEmptyInput
	}
	return list, nil
}

// ParseGeneListFile opens pathOrURL and parses it with ParseGeneList.
func ParseGeneListFile(pathOrURL string) (*GeneList, error) {
	rc, err := lines.Open(pathOrURL)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	list, err := ParseGeneList(rc)
	if err != nil {
		return nil, fmt.Errorf("parse gene list %s: %w", pathOrURL, err)
	}
	return list, nil
}

// stripSuffix removes a version or isoform marker, e.g.
// "ENSG00000141510.11" -> "ENSG00000141510".
func stripSuffix(id string) string {
	id, _, _ = strings.Cut(id, ".")
	id, _, _ = strings.Cut(id, "|")
	return id
}

// Score is the match count of the input gene list against one release's
// unique signature set.
type Score struct {
	Release  string
	Matches  int
	SetSize  int      // size of the release's unique signature set
	Examples []string // up to 5 matching identifiers
}

// Guesser matches gene lists against precomputed signature tables.
type Guesser struct {
	dir    datadir.Dir
	logger *zap.Logger
}

// NewGuesser creates a guesser reading signature tables from dir.
func NewGuesser(dir datadir.Dir) *Guesser {
	return &Guesser{dir: dir, logger: zap.NewNop()}
}

// SetLogger sets the logger for per-release diagnostic output.
func (g *Guesser) SetLogger(l *zap.Logger) {
	g.logger = l
}

// Guess scores genes against every release in the universe and returns the
// best-matching release name along with all scores, ordered best first.
// Ties on match count are broken by ascending release name.
func (g *Guesser) Guess(genes *GeneList, u Universe) (string, []Score, error) {
	path := g.dir.SignaturePath(u.Organism, u.IDType)
	if _, err := os.Stat(path); err != nil {
		return "", nil, fmt.Errorf("%w: %s (expected %s)", ErrMissingUniverse, u, path)
	}

	sets, err := ReadTable(path)
	if err != nil {
		return "", nil, err
	}
	if len(sets) == 0 {
		return "", nil, fmt.Errorf("signature table %s has no releases", path)
	}

	scores := make([]Score, 0, len(sets))
	for release, uniq := range sets {
		s := Score{Release: release, SetSize: len(uniq)}
		for _, id := range genes.IDs() {
			if uniq.Has(id) {
				s.Matches++
				if len(s.Examples) < 5 {
					s.Examples = append(s.Examples, id)
				}
			}
		}
		scores = append(scores, s)
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Matches != scores[j].Matches {
			return scores[i].Matches > scores[j].Matches
		}
		return scores[i].Release < scores[j].Release
	})

	for _, s := range scores {
		g.logger.Info("release signature matches",
			zap.String("release", s.Release),
			zap.Int("matches", s.Matches),
			zap.Int("signature_size", s.SetSize),
			zap.Strings("examples", s.Examples))
	}

	return scores[0].Release, scores, nil
}
