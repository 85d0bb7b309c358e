// Package datadir resolves the on-disk layout of downloaded gene model data.
// All builders and guessers receive an explicit Dir instead of consulting
// process-wide state, so tests can point them at temporary directories.
package datadir

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir is the root of the local gene model data directory,
// by default ~/.cbgenes.
type Dir struct {
	Root string
}

// Default returns the data directory under the user's home directory.
func Default() (Dir, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Dir{}, fmt.Errorf("cannot determine home directory: %w", err)
	}
	return Dir{Root: filepath.Join(home, ".cbgenes")}, nil
}

// GenesDir is where symbol tables, location tables and signature tables live.
func (d Dir) GenesDir() string {
	return filepath.Join(d.Root, "genes")
}

// SignaturePath returns the signature table for one organism+identifier-type
// universe, e.g. genes/human.ids.unique.tsv.gz.
func (d Dir) SignaturePath(organism, idType string) string {
	return filepath.Join(d.GenesDir(), fmt.Sprintf("%s.%s.unique.tsv.gz", organism, idType))
}

// SymbolsPath returns the geneID<->symbol table for a gene model release,
// e.g. genes/gencode-34.symbols.tsv.gz.
func (d Dir) SymbolsPath(geneType string) string {
	return filepath.Join(d.GenesDir(), geneType+".symbols.tsv.gz")
}

// BedPath returns the canonical transcript table for an (assembly, release)
// pair, e.g. genes/hg38.gencode-34.bed.gz.
func (d Dir) BedPath(db, geneType string) string {
	return filepath.Join(d.GenesDir(), fmt.Sprintf("%s.%s.bed.gz", db, geneType))
}

// IndexPath returns the spatial index artifact for an (assembly, release)
// pair, e.g. genes/hg38.gencode-34.json.
func (d Dir) IndexPath(db, geneType string) string {
	return filepath.Join(d.GenesDir(), fmt.Sprintf("%s.%s.json", db, geneType))
}

// Ensure creates the genes directory if it does not exist.
func (d Dir) Ensure() error {
	if err := os.MkdirAll(d.GenesDir(), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	return nil
}
