package signature

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cellbrowser/cbgenes/internal/datadir"
	"github.com/cellbrowser/cbgenes/internal/lines"
)

// Builder computes signature tables from all locally installed gene model
// symbol tables. One table is written per organism and identifier type.
type Builder struct {
	dir    datadir.Dir
	logger *zap.Logger
}

// NewBuilder creates a builder over the symbol tables in dir.
func NewBuilder(dir datadir.Dir) *Builder {
	return &Builder{dir: dir, logger: zap.NewNop()}
}

// SetLogger sets the logger for build progress output.
func (b *Builder) SetLogger(l *zap.Logger) {
	b.logger = l
}

// BuildAll rebuilds the signature tables for both organisms.
func (b *Builder) BuildAll() error {
	for _, org := range []string{"human", "mouse"} {
		if err := b.BuildOrganism(org); err != nil {
			return err
		}
	}
	return nil
}

// BuildOrganism reads every installed gencode symbol table for one organism
// and writes the ids and syms signature tables.
func (b *Builder) BuildOrganism(org string) error {
	fnames, err := filepath.Glob(filepath.Join(b.dir.GenesDir(), "gencode-*.symbols.tsv.gz"))
	if err != nil {
		return fmt.Errorf("scan symbol tables: %w", err)
	}

	allSyms := make(map[string]Set)
	allIDs := make(map[string]Set)
	for _, fname := range fnames {
		base := filepath.Base(fname)
		// Lifted and cross-organism releases would poison the signatures.
		if strings.Contains(base, "lift") || strings.Contains(base, "mouse") || strings.Contains(base, "human") {
			continue
		}
		geneType, _, _ := strings.Cut(base, ".")
		if isMouseRelease(geneType) != (org == "mouse") {
			continue
		}

		b.logger.Info("reading symbol table", zap.String("file", fname))
		syms, ids, err := readSymbolTable(fname)
		if err != nil {
			return err
		}
		allSyms[geneType] = syms
		allIDs[geneType] = ids
	}

	if len(allIDs) == 0 {
		return fmt.Errorf("no %s symbol tables found in %s", org, b.dir.GenesDir())
	}

	uniqSyms, commonSyms := BuildUniqueSets(allSyms)
	uniqIDs, commonIDs := BuildUniqueSets(allIDs)
	b.logger.Info("computed unique identifier sets",
		zap.String("organism", org),
		zap.Int("releases", len(allIDs)),
		zap.Int("common_symbols", commonSyms),
		zap.Int("common_ids", commonIDs))

	if err := WriteTable(b.dir.SignaturePath(org, "syms"), uniqSyms); err != nil {
		return err
	}
	return WriteTable(b.dir.SignaturePath(org, "ids"), uniqIDs)
}

// isMouseRelease reports whether a gencode release name is a mouse release
// (gencode-M25 vs gencode-34).
func isMouseRelease(geneType string) bool {
	return strings.Contains(strings.TrimPrefix(geneType, "gencode-"), "M")
}

// readSymbolTable reads a geneID<TAB>symbol table and returns the symbol and
// geneID sets. A row with fewer than two fields aborts the read.
func readSymbolTable(path string) (syms, ids Set, err error) {
	syms = make(Set)
	ids = make(Set)
	lineNum := 0
	err = lines.EachFrom(path, func(line string) error {
		lineNum++
		geneID, sym, ok := strings.Cut(line, "\t")
		if !ok {
			return fmt.Errorf("%s:%d: malformed symbol row %q", path, lineNum, line)
		}
		// The symbol column may itself carry trailing fields.
		sym, _, _ = strings.Cut(sym, "\t")
		ids[geneID] = struct{}{}
		syms[sym] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return syms, ids, nil
}
