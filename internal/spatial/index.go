// Package spatial builds the chromosome-keyed, start-sorted gene locus index
// loaded by the viewer for genomic range queries.
package spatial

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/cellbrowser/cbgenes/internal/genemodel"
)

// Locus is one gene locus entry: start, end, strand and gene symbol.
// It serializes as a compact positional array.
type Locus struct {
	Start  int64
	End    int64
	Strand string
	Symbol string
}

// MarshalJSON encodes the locus as [start, end, strand, symbol].
func (l Locus) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]any{l.Start, l.End, l.Strand, l.Symbol})
}

// UnmarshalJSON decodes the positional array form.
func (l *Locus) UnmarshalJSON(data []byte) error {
	var arr [4]json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("locus must be a 4-element array: %w", err)
	}
	if err := json.Unmarshal(arr[0], &l.Start); err != nil {
		return fmt.Errorf("locus start: %w", err)
	}
	if err := json.Unmarshal(arr[1], &l.End); err != nil {
		return fmt.Errorf("locus end: %w", err)
	}
	if err := json.Unmarshal(arr[2], &l.Strand); err != nil {
		return fmt.Errorf("locus strand: %w", err)
	}
	if err := json.Unmarshal(arr[3], &l.Symbol); err != nil {
		return fmt.Errorf("locus symbol: %w", err)
	}
	return nil
}

// Index maps chromosome name to its loci, sorted ascending by start.
// Immutable once built.
type Index map[string][]Locus

// candidate is a locus competing to represent a symbol on one chromosome.
type candidate struct {
	length int64
	start  int64
	end    int64
	strand string
	geneID string
}

// Build converts canonical transcript records into a spatial index. Records
// are grouped by symbol, resolved through geneToSym; a gene ID missing from
// the mapping is an error. A symbol with several loci on one chromosome is
// represented by the longest one only; a symbol may still appear on more than
// one chromosome.
func Build(records []*genemodel.CanonicalRecord, geneToSym map[string]string) (Index, error) {
	// symbol -> chrom -> candidate loci
	bySym := make(map[string]map[string][]candidate)
	for _, rec := range records {
		sym, ok := geneToSym[rec.GeneID]
		if !ok {
			return nil, fmt.Errorf("gene %s: no symbol in symbol table", rec.GeneID)
		}
		byChrom, ok := bySym[sym]
		if !ok {
			byChrom = make(map[string][]candidate)
			bySym[sym] = byChrom
		}
		byChrom[rec.Chrom] = append(byChrom[rec.Chrom], candidate{
			length: rec.Length(),
			start:  rec.TxStart,
			end:    rec.TxEnd,
			strand: rec.Strand,
			geneID: rec.GeneID,
		})
	}

	idx := make(Index)
	for sym, byChrom := range bySym {
		for chrom, cands := range byChrom {
			best := cands[0]
			for _, c := range cands[1:] {
				if betterLocus(c, best) {
					best = c
				}
			}
			idx[chrom] = append(idx[chrom], Locus{
				Start:  best.start,
				End:    best.end,
				Strand: best.strand,
				Symbol: sym,
			})
		}
	}

	for chrom := range idx {
		loci := idx[chrom]
		sort.Slice(loci, func(i, j int) bool {
			a, b := loci[i], loci[j]
			if a.Start != b.Start {
				return a.Start < b.Start
			}
			if a.End != b.End {
				return a.End < b.End
			}
			if a.Strand != b.Strand {
				return a.Strand < b.Strand
			}
			return a.Symbol < b.Symbol
		})
	}
	return idx, nil
}

// betterLocus reports whether a should represent the symbol instead of b:
// greater length wins, ties fall to the ascending (start, end, strand,
// geneID) order.
func betterLocus(a, b candidate) bool {
	if a.length != b.length {
		return a.length > b.length
	}
	if a.start != b.start {
		return a.start < b.start
	}
	if a.end != b.end {
		return a.end < b.end
	}
	if a.strand != b.strand {
		return a.strand < b.strand
	}
	return a.geneID < b.geneID
}

// Write serializes the index as a single JSON object to path. Map keys are
// emitted in sorted order, so identical inputs produce identical bytes.
func Write(path string, idx Index) error {
	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("marshal spatial index: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write spatial index: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename spatial index: %w", err)
	}
	return nil
}

// Read loads an index written by Write.
func Read(path string) (Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spatial index: %w", err)
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse spatial index %s: %w", path, err)
	}
	return idx, nil
}
