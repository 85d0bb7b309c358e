// Package genemodel parses raw gene annotation tables and reduces them to
// one canonical transcript per gene.
package genemodel

import (
	"fmt"
	"strconv"
	"strings"
)

// genePred-with-bin tables carry 16 tab-separated fields.
const genePredFields = 16

// TranscriptRow is one row of a UCSC genePred annotation table, one row per
// transcript. Multiple rows may belong to the same gene.
type TranscriptRow struct {
	TranscriptID string
	Chrom        string
	Strand       string
	TxStart      int64
	TxEnd        int64
	CDSStart     int64
	CDSEnd       int64
	ExonCount    int
	ExonStarts   string // comma-separated, possibly with a trailing comma
	ExonEnds     string
	Name2        string // gene symbol carried by the annotation row

	// raw is the unparsed input row, kept for the deterministic
	// full-row tie-break during canonical selection.
	raw string
}

// ParseTranscriptRow parses one genePred line. A row with fewer fields than
// expected is an error; the table is rejected rather than silently indexed
// incomplete.
func ParseTranscriptRow(line string) (*TranscriptRow, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < genePredFields {
		return nil, fmt.Errorf("malformed transcript row: expected %d fields, got %d", genePredFields, len(fields))
	}

	row := &TranscriptRow{
		TranscriptID: fields[1],
		Chrom:        fields[2],
		Strand:       fields[3],
		ExonStarts:   fields[9],
		ExonEnds:     fields[10],
		Name2:        fields[12],
		raw:          line,
	}

	var err error
	if row.TxStart, err = strconv.ParseInt(fields[4], 10, 64); err != nil {
		return nil, fmt.Errorf("transcript %s: parse txStart: %w", row.TranscriptID, err)
	}
	if row.TxEnd, err = strconv.ParseInt(fields[5], 10, 64); err != nil {
		return nil, fmt.Errorf("transcript %s: parse txEnd: %w", row.TranscriptID, err)
	}
	if row.CDSStart, err = strconv.ParseInt(fields[6], 10, 64); err != nil {
		return nil, fmt.Errorf("transcript %s: parse cdsStart: %w", row.TranscriptID, err)
	}
	if row.CDSEnd, err = strconv.ParseInt(fields[7], 10, 64); err != nil {
		return nil, fmt.Errorf("transcript %s: parse cdsEnd: %w", row.TranscriptID, err)
	}
	if row.ExonCount, err = strconv.Atoi(fields[8]); err != nil {
		return nil, fmt.Errorf("transcript %s: parse exonCount: %w", row.TranscriptID, err)
	}

	return row, nil
}

// CanonicalRecord is the single transcript chosen to represent a gene,
// flattened to a BED12+1 row.
type CanonicalRecord struct {
	Chrom       string
	TxStart     int64
	TxEnd       int64
	GeneID      string
	Rank        int64 // accession number extracted from the gene ID
	Strand      string
	CDSStart    int64
	CDSEnd      int64
	ExonCount   int
	BlockSizes  []int64
	BlockStarts []int64 // offsets relative to TxStart
	Symbol      string
}

// Length returns the transcript extent, end minus start.
func (r *CanonicalRecord) Length() int64 {
	return r.TxEnd - r.TxStart
}

// Fields returns the 12 output columns of the canonical transcript table.
func (r *CanonicalRecord) Fields() []string {
	return []string{
		r.Chrom,
		strconv.FormatInt(r.TxStart, 10),
		strconv.FormatInt(r.TxEnd, 10),
		r.GeneID,
		strconv.FormatInt(r.Rank, 10),
		r.Strand,
		strconv.FormatInt(r.CDSStart, 10),
		strconv.FormatInt(r.CDSEnd, 10),
		strconv.Itoa(r.ExonCount),
		joinInts(r.BlockSizes),
		joinInts(r.BlockStarts),
		r.Symbol,
	}
}

func joinInts(vals []int64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

// extractRank forms an integer from the digit substring of a gene ID, e.g.
// "ENSG00000141510" -> 141510. Lower ranks are older accessions.
func extractRank(geneID string) (int64, error) {
	var digits strings.Builder
	for _, r := range geneID {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, fmt.Errorf("gene ID %q contains no digits", geneID)
	}
	rank, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("gene ID %q: %w", geneID, err)
	}
	return rank, nil
}
