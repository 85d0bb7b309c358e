package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellbrowser/cbgenes/internal/datadir"
	"github.com/cellbrowser/cbgenes/internal/output"
)

// writeSymbolTable creates a gzipped geneID<TAB>symbol table under dir.
func writeSymbolTable(t *testing.T, dir datadir.Dir, geneType string, rows [][2]string) {
	t.Helper()
	require.NoError(t, dir.Ensure())
	w, err := output.NewRowWriter(dir.SymbolsPath(geneType))
	require.NoError(t, err)
	for _, row := range rows {
		require.NoError(t, w.WriteRow(row[0], row[1]))
	}
	require.NoError(t, w.Close())
}

func TestBuilder_BuildOrganism(t *testing.T) {
	dir := datadir.Dir{Root: t.TempDir()}

	writeSymbolTable(t, dir, "gencode-33", [][2]string{
		{"ENSG00000000001", "TP53"},
		{"ENSG00000000002", "KRAS"},
	})
	writeSymbolTable(t, dir, "gencode-34", [][2]string{
		{"ENSG00000000001", "TP53"},
		{"ENSG00000000003", "BRAF"},
	})
	// Mouse release, must not leak into the human universe.
	writeSymbolTable(t, dir, "gencode-M25", [][2]string{
		{"ENSMUSG00000000001", "Trp53"},
	})

	b := NewBuilder(dir)
	require.NoError(t, b.BuildOrganism("human"))

	ids, err := ReadTable(dir.SignaturePath("human", "ids"))
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, []string{"ENSG00000000002"}, ids["gencode-33"].Sorted())
	assert.Equal(t, []string{"ENSG00000000003"}, ids["gencode-34"].Sorted())

	syms, err := ReadTable(dir.SignaturePath("human", "syms"))
	require.NoError(t, err)
	assert.Equal(t, []string{"KRAS"}, syms["gencode-33"].Sorted())
	assert.Equal(t, []string{"BRAF"}, syms["gencode-34"].Sorted())
}

func TestBuilder_MouseUniverse(t *testing.T) {
	dir := datadir.Dir{Root: t.TempDir()}

	writeSymbolTable(t, dir, "gencode-M24", [][2]string{
		{"ENSMUSG00000000001", "Trp53"},
		{"ENSMUSG00000000002", "Kras"},
	})
	writeSymbolTable(t, dir, "gencode-M25", [][2]string{
		{"ENSMUSG00000000002", "Kras"},
		{"ENSMUSG00000000003", "Braf"},
	})
	writeSymbolTable(t, dir, "gencode-34", [][2]string{
		{"ENSG00000000001", "TP53"},
	})

	b := NewBuilder(dir)
	require.NoError(t, b.BuildOrganism("mouse"))

	ids, err := ReadTable(dir.SignaturePath("mouse", "ids"))
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, []string{"ENSMUSG00000000001"}, ids["gencode-M24"].Sorted())
	assert.Equal(t, []string{"ENSMUSG00000000003"}, ids["gencode-M25"].Sorted())
}

func TestBuilder_NoTables(t *testing.T) {
	dir := datadir.Dir{Root: t.TempDir()}
	require.NoError(t, dir.Ensure())

	b := NewBuilder(dir)
	err := b.BuildOrganism("human")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no human symbol tables")
}

func TestBuilder_SkipsLiftedReleases(t *testing.T) {
	dir := datadir.Dir{Root: t.TempDir()}

	writeSymbolTable(t, dir, "gencode-33", [][2]string{
		{"ENSG00000000001", "TP53"},
	})
	writeSymbolTable(t, dir, "gencode-34", [][2]string{
		{"ENSG00000000002", "KRAS"},
	})
	// A lifted release would poison the signatures with duplicate IDs.
	writeSymbolTable(t, dir, "gencode-34lift37", [][2]string{
		{"ENSG00000000001", "TP53"},
		{"ENSG00000000002", "KRAS"},
	})

	b := NewBuilder(dir)
	require.NoError(t, b.BuildOrganism("human"))

	ids, err := ReadTable(dir.SignaturePath("human", "ids"))
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.NotContains(t, ids, "gencode-34lift37")
	assert.Equal(t, []string{"ENSG00000000001"}, ids["gencode-33"].Sorted())
}
