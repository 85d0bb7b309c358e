package genemodel

import (
	"fmt"
	"strings"

	"github.com/cellbrowser/cbgenes/internal/lines"
	"github.com/cellbrowser/cbgenes/internal/output"
)

// Attribute tables (UCSC wgEncodeGencodeAttrs) carry the gene ID in column 0,
// the gene symbol in column 1 and the transcript ID in column 4.
const attrsMinFields = 5

// SymbolPair maps a gene ID to its symbol.
type SymbolPair struct {
	GeneID string
	Symbol string
}

// GeneSymbolPairs reads an attribute table and returns geneID/symbol pairs in
// first-seen order, one per gene ID.
func GeneSymbolPairs(pathOrURL string) ([]SymbolPair, error) {
	var pairs []SymbolPair
	seen := make(map[string]struct{})
	err := eachAttrsRow(pathOrURL, func(fields []string) {
		geneID, sym := fields[0], fields[1]
		if _, ok := seen[geneID]; ok {
			return
		}
		seen[geneID] = struct{}{}
		pairs = append(pairs, SymbolPair{GeneID: geneID, Symbol: sym})
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

// TranscriptGeneMap reads an attribute table and returns a transcript ID ->
// gene ID mapping. The first occurrence of a transcript ID wins.
func TranscriptGeneMap(pathOrURL string) (map[string]string, error) {
	m := make(map[string]string)
	err := eachAttrsRow(pathOrURL, func(fields []string) {
		transID, geneID := fields[4], fields[0]
		if _, ok := m[transID]; !ok {
			m[transID] = geneID
		}
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func eachAttrsRow(pathOrURL string, fn func(fields []string)) error {
	lineNum := 0
	return lines.EachFrom(pathOrURL, func(line string) error {
		lineNum++
		if line == "" || strings.HasPrefix(line, "#") {
			return nil
		}
		fields := strings.Split(line, "\t")
		if len(fields) < attrsMinFields {
			return fmt.Errorf("%s:%d: malformed attribute row: expected at least %d fields, got %d",
				pathOrURL, lineNum, attrsMinFields, len(fields))
		}
		fn(fields)
		return nil
	})
}

// WriteSymbols persists geneID/symbol pairs as a two-column table.
func WriteSymbols(path string, pairs []SymbolPair) error {
	w, err := output.NewRowWriter(path)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if err := w.WriteRow(p.GeneID, p.Symbol); err != nil {
			w.Abort()
			return err
		}
	}
	return w.Close()
}

// ReadSymbols loads a geneID -> symbol mapping written by WriteSymbols.
func ReadSymbols(path string) (map[string]string, error) {
	m := make(map[string]string)
	lineNum := 0
	err := lines.EachFrom(path, func(line string) error {
		lineNum++
		geneID, sym, ok := strings.Cut(line, "\t")
		if !ok {
			return fmt.Errorf("%s:%d: malformed symbol row %q", path, lineNum, line)
		}
		sym, _, _ = strings.Cut(sym, "\t")
		if _, dup := m[geneID]; !dup {
			m[geneID] = sym
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
