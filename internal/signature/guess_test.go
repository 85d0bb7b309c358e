package signature

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellbrowser/cbgenes/internal/datadir"
)

func TestDetectUniverse(t *testing.T) {
	tests := []struct {
		gene string
		want Universe
	}{
		{"ENSG00000141510", Universe{"human", "ids"}},
		{"ENSG00000141510.11", Universe{"human", "ids"}},
		{"ENSMUSG00000059552", Universe{"mouse", "ids"}},
		{"TP53", Universe{"human", "syms"}},
		{"Trp53", Universe{"mouse", "syms"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectUniverse(tt.gene), "gene %s", tt.gene)
	}
}

func TestParseGeneList(t *testing.T) {
	input := strings.Join([]string{
		"gene\tcount", // header, discarded
		"ENSG00000000001.5\t12",
		"ENSG00000000002|3\t0",
		"ENSG00000000001\t7", // duplicate after suffix strip
		"  ENSG00000000003  \t1",
		"",
	}, "\n")

	genes, err := ParseGeneList(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, genes.Len())
	assert.Equal(t, "ENSG00000000001", genes.First())
	assert.Equal(t, []string{"ENSG00000000001", "ENSG00000000002", "ENSG00000000003"}, genes.IDs())
	assert.True(t, genes.Has("ENSG00000000002"))
	assert.False(t, genes.Has("ENSG00000000002|3"))
}

func TestParseGeneList_Empty(t *testing.T) {
	_, err := ParseGeneList(strings.NewReader("header only\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

// writeUniverse persists a signature table for (human, syms) under dir.
func writeUniverse(t *testing.T, dir datadir.Dir, unique map[string]Set) {
	t.Helper()
	require.NoError(t, dir.Ensure())
	require.NoError(t, WriteTable(dir.SignaturePath("human", "syms"), unique))
}

func parseList(t *testing.T, ids ...string) *GeneList {
	t.Helper()
	input := "header\n" + strings.Join(ids, "\n") + "\n"
	genes, err := ParseGeneList(strings.NewReader(input))
	require.NoError(t, err)
	return genes
}

func TestGuesser_MissingUniverse(t *testing.T) {
	dir := datadir.Dir{Root: t.TempDir()}
	g := NewGuesser(dir)

	_, _, err := g.Guess(parseList(t, "TP53"), Universe{"human", "syms"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingUniverse)
}

func TestGuesser_ExactSignatureMatch(t *testing.T) {
	dir := datadir.Dir{Root: t.TempDir()}
	writeUniverse(t, dir, map[string]Set{
		"gencode-32": NewSet("AAA", "BBB"),
		"gencode-33": NewSet("CCC", "DDD"),
		"gencode-34": NewSet("EEE"),
	})

	g := NewGuesser(dir)
	best, scores, err := g.Guess(parseList(t, "CCC", "DDD"), Universe{"human", "syms"})
	require.NoError(t, err)

	assert.Equal(t, "gencode-33", best)
	require.Len(t, scores, 3)
	assert.Equal(t, "gencode-33", scores[0].Release)
	assert.Equal(t, 2, scores[0].Matches)
	assert.ElementsMatch(t, []string{"CCC", "DDD"}, scores[0].Examples)
}

func TestGuesser_EmptySetNeverWinsUnlessAllZero(t *testing.T) {
	dir := datadir.Dir{Root: t.TempDir()}
	writeUniverse(t, dir, map[string]Set{
		"gencode-32": NewSet("AAA"),
		"gencode-33": {},
	})

	g := NewGuesser(dir)

	best, scores, err := g.Guess(parseList(t, "AAA", "ZZZ"), Universe{"human", "syms"})
	require.NoError(t, err)
	assert.Equal(t, "gencode-32", best)
	assert.Equal(t, 0, scores[1].Matches)

	// With no matches anywhere the tie-break falls to release name order.
	best, _, err = g.Guess(parseList(t, "ZZZ"), Universe{"human", "syms"})
	require.NoError(t, err)
	assert.Equal(t, "gencode-32", best)
}

func TestGuesser_TieBrokenByReleaseName(t *testing.T) {
	dir := datadir.Dir{Root: t.TempDir()}
	writeUniverse(t, dir, map[string]Set{
		"rel1": NewSet("A", "B"),
		"rel2": NewSet("C"),
		"rel3": {},
	})

	g := NewGuesser(dir)
	// Duplicate C collapses, X matches nothing: rel1=1, rel2=1, rel3=0.
	best, scores, err := g.Guess(parseList(t, "A", "C", "C", "X"), Universe{"human", "syms"})
	require.NoError(t, err)

	assert.Equal(t, "rel1", best)
	require.Len(t, scores, 3)
	assert.Equal(t, 1, scores[0].Matches)
	assert.Equal(t, 1, scores[1].Matches)
	assert.Equal(t, 0, scores[2].Matches)
	assert.Equal(t, "rel3", scores[2].Release)
}

func TestGuesser_ExampleListCapped(t *testing.T) {
	dir := datadir.Dir{Root: t.TempDir()}
	ids := []string{"A1", "A2", "A3", "A4", "A5", "A6", "A7"}
	writeUniverse(t, dir, map[string]Set{"rel1": NewSet(ids...)})

	g := NewGuesser(dir)
	_, scores, err := g.Guess(parseList(t, ids...), Universe{"human", "syms"})
	require.NoError(t, err)
	assert.Equal(t, 7, scores[0].Matches)
	assert.Len(t, scores[0].Examples, 5)
}

func TestGuesser_EmptyTable(t *testing.T) {
	dir := datadir.Dir{Root: t.TempDir()}
	writeUniverse(t, dir, map[string]Set{})

	g := NewGuesser(dir)
	_, _, err := g.Guess(parseList(t, "AAA"), Universe{"human", "syms"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMissingUniverse))
	assert.Contains(t, err.Error(), "no releases")
}
