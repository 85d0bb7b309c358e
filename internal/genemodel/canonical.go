package genemodel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cellbrowser/cbgenes/internal/lines"
	"github.com/cellbrowser/cbgenes/internal/output"
)

// ReadTranscripts parses a genePred table from a local path or URL. Comment
// lines are ignored; any malformed row aborts the read.
func ReadTranscripts(pathOrURL string) ([]*TranscriptRow, error) {
	var rows []*TranscriptRow
	lineNum := 0
	err := lines.EachFrom(pathOrURL, func(line string) error {
		lineNum++
		if line == "" || strings.HasPrefix(line, "#") {
			return nil
		}
		row, err := ParseTranscriptRow(line)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", pathOrURL, lineNum, err)
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ranked pairs a transcript with its gene's rank for canonical selection.
type ranked struct {
	rank int64
	row  *TranscriptRow
}

// lessRanked orders canonical candidates: lowest rank first, ties broken by
// the lexicographic order of the full input row.
func lessRanked(a, b ranked) bool {
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	return a.row.raw < b.row.raw
}

// SelectCanonical reduces a multi-transcript annotation table to exactly one
// record per gene. Transcripts are grouped by gene via transToGene; within
// each gene the transcript with the lowest rank wins, ties broken by
// lexicographic order of the full input row. Older accessions tend to be the
// most curated, so this choice is stable across annotation releases.
//
// Output records appear in first-seen gene order. A transcript whose ID is
// missing from transToGene is an error.
func SelectCanonical(rows []*TranscriptRow, transToGene map[string]string) ([]*CanonicalRecord, error) {
	byGene := make(map[string][]ranked)
	var geneOrder []string

	for _, row := range rows {
		geneID, ok := transToGene[row.TranscriptID]
		if !ok {
			return nil, fmt.Errorf("transcript %s: gene ID not found in attribute table", row.TranscriptID)
		}
		rank, err := extractRank(geneID)
		if err != nil {
			return nil, err
		}
		if _, seen := byGene[geneID]; !seen {
			geneOrder = append(geneOrder, geneID)
		}
		byGene[geneID] = append(byGene[geneID], ranked{rank: rank, row: row})
	}

	records := make([]*CanonicalRecord, 0, len(geneOrder))
	for _, geneID := range geneOrder {
		candidates := byGene[geneID]
		sort.Slice(candidates, func(i, j int) bool {
			return lessRanked(candidates[i], candidates[j])
		})

		rec, err := toCanonical(geneID, candidates[0])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// toCanonical flattens the chosen transcript into a canonical record,
// deriving BED block lists from the exon coordinate CSVs.
func toCanonical(geneID string, c ranked) (*CanonicalRecord, error) {
	row := c.row
	starts := strings.Split(row.ExonStarts, ",")
	ends := strings.Split(row.ExonEnds, ",")
	if len(ends) < len(starts) {
		return nil, fmt.Errorf("transcript %s: %d exon starts but %d ends", row.TranscriptID, len(starts), len(ends))
	}

	var blockSizes, blockStarts []int64
	for i, s := range starts {
		// Trailing separators leave empty entries.
		if s == "" {
			continue
		}
		start, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("transcript %s: parse exon start %q: %w", row.TranscriptID, s, err)
		}
		end, err := strconv.ParseInt(ends[i], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("transcript %s: parse exon end %q: %w", row.TranscriptID, ends[i], err)
		}
		blockSizes = append(blockSizes, end-start)
		blockStarts = append(blockStarts, start-row.TxStart)
	}

	return &CanonicalRecord{
		Chrom:       row.Chrom,
		TxStart:     row.TxStart,
		TxEnd:       row.TxEnd,
		GeneID:      geneID,
		Rank:        c.rank,
		Strand:      row.Strand,
		CDSStart:    row.CDSStart,
		CDSEnd:      row.CDSEnd,
		ExonCount:   row.ExonCount,
		BlockSizes:  blockSizes,
		BlockStarts: blockStarts,
		Symbol:      row.Name2,
	}, nil
}

// WriteBed writes canonical records as a 12-column tab-separated table,
// no header.
func WriteBed(path string, records []*CanonicalRecord) error {
	w, err := output.NewRowWriter(path)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.WriteRow(rec.Fields()...); err != nil {
			w.Abort()
			return err
		}
	}
	return w.Close()
}

// ReadBed reads a canonical transcript table written by WriteBed.
func ReadBed(path string) ([]*CanonicalRecord, error) {
	var records []*CanonicalRecord
	lineNum := 0
	err := lines.EachFrom(path, func(line string) error {
		lineNum++
		if line == "" {
			return nil
		}
		rec, err := parseBedRow(line)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNum, err)
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func parseBedRow(line string) (*CanonicalRecord, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 12 {
		return nil, fmt.Errorf("malformed canonical row: expected 12 fields, got %d", len(fields))
	}

	rec := &CanonicalRecord{
		Chrom:  fields[0],
		GeneID: fields[3],
		Strand: fields[5],
		Symbol: fields[11],
	}

	var err error
	if rec.TxStart, err = strconv.ParseInt(fields[1], 10, 64); err != nil {
		return nil, fmt.Errorf("parse txStart: %w", err)
	}
	if rec.TxEnd, err = strconv.ParseInt(fields[2], 10, 64); err != nil {
		return nil, fmt.Errorf("parse txEnd: %w", err)
	}
	if rec.Rank, err = strconv.ParseInt(fields[4], 10, 64); err != nil {
		return nil, fmt.Errorf("parse rank: %w", err)
	}
	if rec.CDSStart, err = strconv.ParseInt(fields[6], 10, 64); err != nil {
		return nil, fmt.Errorf("parse cdsStart: %w", err)
	}
	if rec.CDSEnd, err = strconv.ParseInt(fields[7], 10, 64); err != nil {
		return nil, fmt.Errorf("parse cdsEnd: %w", err)
	}
	if rec.ExonCount, err = strconv.Atoi(fields[8]); err != nil {
		return nil, fmt.Errorf("parse exonCount: %w", err)
	}
	if rec.BlockSizes, err = splitInts(fields[9]); err != nil {
		return nil, fmt.Errorf("parse blockSizes: %w", err)
	}
	if rec.BlockStarts, err = splitInts(fields[10]); err != nil {
		return nil, fmt.Errorf("parse blockStarts: %w", err)
	}
	return rec, nil
}

func splitInts(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	vals := make([]int64, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}
