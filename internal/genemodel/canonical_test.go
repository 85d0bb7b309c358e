package genemodel

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// genePredRow builds a 16-field genePred-with-bin line.
func genePredRow(transID, chrom, strand string, txStart, txEnd int64, exonStarts, exonEnds, name2 string) string {
	return fmt.Sprintf("585\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t2\t%s\t%s\t0\t%s\tcmpl\tcmpl\t0,0,",
		transID, chrom, strand, txStart, txEnd, txStart, txEnd, exonStarts, exonEnds, name2)
}

func mustParse(t *testing.T, line string) *TranscriptRow {
	t.Helper()
	row, err := ParseTranscriptRow(line)
	require.NoError(t, err)
	return row
}

func TestParseTranscriptRow(t *testing.T) {
	row := mustParse(t, genePredRow("ENST0001", "chr17", "-", 100, 500, "100,300,", "200,500,", "TP53"))

	assert.Equal(t, "ENST0001", row.TranscriptID)
	assert.Equal(t, "chr17", row.Chrom)
	assert.Equal(t, "-", row.Strand)
	assert.Equal(t, int64(100), row.TxStart)
	assert.Equal(t, int64(500), row.TxEnd)
	assert.Equal(t, 2, row.ExonCount)
	assert.Equal(t, "TP53", row.Name2)
}

func TestParseTranscriptRow_Malformed(t *testing.T) {
	_, err := ParseTranscriptRow("585\tENST0001\tchr17")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed transcript row")
}

func TestSelectCanonical_OneRecordPerGene(t *testing.T) {
	rows := []*TranscriptRow{
		mustParse(t, genePredRow("ENST0005", "chr1", "+", 100, 900, "100,", "900,", "G1")),
		mustParse(t, genePredRow("ENST0003", "chr1", "+", 150, 800, "150,", "800,", "G1")),
	}

	// Both transcripts belong to one gene: exactly one record comes out,
	// regardless of input row order.
	for _, ordered := range [][]*TranscriptRow{
		{rows[0], rows[1]},
		{rows[1], rows[0]},
	} {
		both := map[string]string{"ENST0005": "ENSG0000009", "ENST0003": "ENSG0000009"}
		records, err := SelectCanonical(ordered, both)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, int64(150), records[0].TxStart, "the earlier-sorting row must be chosen")
		assert.Equal(t, int64(9), records[0].Rank)
	}
}

func TestLessRanked_LowestRankWins(t *testing.T) {
	// Rank 3 beats rank 5 no matter how the rows compare.
	r5 := ranked{rank: 5, row: mustParse(t, genePredRow("ENST0001", "chr1", "+", 100, 900, "100,", "900,", "G1"))}
	r3 := ranked{rank: 3, row: mustParse(t, genePredRow("ENST0002", "chr1", "+", 150, 800, "150,", "800,", "G1"))}

	assert.True(t, lessRanked(r3, r5))
	assert.False(t, lessRanked(r5, r3))
}

func TestSelectCanonical_TieBrokenByFullRow(t *testing.T) {
	// Same gene, same rank: the lexicographically smaller row wins.
	a := genePredRow("ENST0001", "chr1", "+", 100, 900, "100,", "900,", "G1")
	b := genePredRow("ENST0002", "chr1", "+", 100, 900, "100,", "900,", "G1")
	rows := []*TranscriptRow{mustParse(t, b), mustParse(t, a)}
	transToGene := map[string]string{"ENST0001": "ENSG0000007", "ENST0002": "ENSG0000007"}

	records, err := SelectCanonical(rows, transToGene)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(7), records[0].Rank)
	// Row a sorts before row b on the transcript ID field.
	assert.Equal(t, "G1", records[0].Symbol)
}

func TestSelectCanonical_UnknownTranscript(t *testing.T) {
	rows := []*TranscriptRow{
		mustParse(t, genePredRow("ENST0001", "chr1", "+", 100, 900, "100,", "900,", "G1")),
	}

	_, err := SelectCanonical(rows, map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENST0001")
	assert.Contains(t, err.Error(), "not found")
}

func TestSelectCanonical_BlockLists(t *testing.T) {
	// Two exons at 100-200 and 300-500, with a trailing comma in the CSVs.
	rows := []*TranscriptRow{
		mustParse(t, genePredRow("ENST0001", "chr2", "+", 100, 500, "100,300,", "200,500,", "G2")),
	}

	records, err := SelectCanonical(rows, map[string]string{"ENST0001": "ENSG0000001"})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, []int64{100, 200}, rec.BlockSizes)
	assert.Equal(t, []int64{0, 200}, rec.BlockStarts, "block starts are offsets from txStart")
	assert.Equal(t, []string{
		"chr2", "100", "500", "ENSG0000001", "1", "+", "100", "500", "2", "100,200", "0,200", "G2",
	}, rec.Fields())
}

func TestSelectCanonical_FirstSeenGeneOrder(t *testing.T) {
	rows := []*TranscriptRow{
		mustParse(t, genePredRow("ENST0010", "chr1", "+", 100, 200, "100,", "200,", "GB")),
		mustParse(t, genePredRow("ENST0020", "chr1", "+", 300, 400, "300,", "400,", "GA")),
		mustParse(t, genePredRow("ENST0011", "chr1", "+", 120, 220, "120,", "220,", "GB")),
	}
	transToGene := map[string]string{
		"ENST0010": "ENSG0000002",
		"ENST0011": "ENSG0000002",
		"ENST0020": "ENSG0000001",
	}

	records, err := SelectCanonical(rows, transToGene)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ENSG0000002", records[0].GeneID, "gene order follows first appearance")
	assert.Equal(t, "ENSG0000001", records[1].GeneID)
}

func TestExtractRank(t *testing.T) {
	rank, err := extractRank("ENSG00000141510")
	require.NoError(t, err)
	assert.Equal(t, int64(141510), rank)

	_, err = extractRank("NODIGITS")
	require.Error(t, err)
}

func TestBed_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hg38.gencode-34.bed.gz")
	rows := []*TranscriptRow{
		mustParse(t, genePredRow("ENST0001", "chr2", "+", 100, 500, "100,300,", "200,500,", "G2")),
		mustParse(t, genePredRow("ENST0002", "chrX", "-", 900, 1800, "900,", "1800,", "G3")),
	}
	transToGene := map[string]string{"ENST0001": "ENSG0000001", "ENST0002": "ENSG0000002"}

	records, err := SelectCanonical(rows, transToGene)
	require.NoError(t, err)
	require.NoError(t, WriteBed(path, records))

	got, err := ReadBed(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, records, got)
}

func TestReadBed_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bed")
	require.NoError(t, os.WriteFile(path, []byte("chr1\t100\t200\n"), 0644))

	_, err := ReadBed(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed canonical row")
}
