package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cellbrowser/cbgenes/internal/duckdb"
	"github.com/cellbrowser/cbgenes/internal/genemodel"
	"github.com/cellbrowser/cbgenes/internal/spatial"
	"github.com/cellbrowser/cbgenes/internal/ucsc"
)

func newSymsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "syms <geneType>",
		Short: "Download the geneId <-> symbol table for a gene model release",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return buildSymbolTable(args[0])
		},
	}
}

func newLocsCmd() *cobra.Command {
	var duckdbPath string
	cmd := &cobra.Command{
		Use:   "locs <assembly> <geneType>",
		Short: "Download a gene model table, pick one transcript per gene, and build the location index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return buildLocusIndex(args[0], args[1], duckdbPath)
		},
	}
	cmd.Flags().StringVar(&duckdbPath, "duckdb", "", "also store the canonical transcript table in this DuckDB database")
	return cmd
}

func newFetchCmd() *cobra.Command {
	var duckdbPath string
	cmd := &cobra.Command{
		Use:   "fetch <assembly> <geneType>",
		Short: "Run both 'syms' and 'locs' for a gene model release",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := buildSymbolTable(args[1]); err != nil {
				return err
			}
			return buildLocusIndex(args[0], args[1], duckdbPath)
		},
	}
	cmd.Flags().StringVar(&duckdbPath, "duckdb", "", "also store the canonical transcript table in this DuckDB database")
	return cmd
}

func newJSONCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "json <assembly> <geneType>",
		Short: "Rebuild the spatial index from an installed canonical transcript table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rebuildSpatialIndex(args[0], args[1])
		},
	}
}

// buildSymbolTable downloads the attribute table for a release and writes
// the two-column symbols table.
func buildSymbolTable(geneType string) error {
	release, err := ucsc.ParseRelease(geneType)
	if err != nil {
		return err
	}
	if err := dataDir.Ensure(); err != nil {
		return err
	}

	url := ucsc.AttrsURL(ucsc.DBForRelease(release), release)
	logger.Info("downloading attribute table", zap.String("url", url))
	pairs, err := genemodel.GeneSymbolPairs(url)
	if err != nil {
		return err
	}

	outPath := dataDir.SymbolsPath(geneType)
	if err := genemodel.WriteSymbols(outPath, pairs); err != nil {
		return err
	}
	logger.Info("wrote symbol table", zap.String("path", outPath), zap.Int("genes", len(pairs)))
	return nil
}

// buildLocusIndex downloads the comprehensive transcript table for a
// release, reduces it to one canonical transcript per gene, and writes the
// flat table plus the spatial index.
func buildLocusIndex(db, geneType, duckdbPath string) error {
	release, err := ucsc.ParseRelease(geneType)
	if err != nil {
		return err
	}
	if err := dataDir.Ensure(); err != nil {
		return err
	}

	attrsURL := ucsc.AttrsURL(ucsc.DBForRelease(release), release)
	logger.Info("downloading attribute table", zap.String("url", attrsURL))
	transToGene, err := genemodel.TranscriptGeneMap(attrsURL)
	if err != nil {
		return err
	}

	compURL := ucsc.CompURL(db, release)
	logger.Info("downloading transcript table", zap.String("url", compURL))
	rows, err := genemodel.ReadTranscripts(compURL)
	if err != nil {
		return err
	}

	logger.Info("picking one transcript per gene", zap.Int("transcripts", len(rows)))
	records, err := genemodel.SelectCanonical(rows, transToGene)
	if err != nil {
		return err
	}

	bedPath := dataDir.BedPath(db, geneType)
	if err := genemodel.WriteBed(bedPath, records); err != nil {
		return err
	}
	logger.Info("wrote canonical transcript table", zap.String("path", bedPath), zap.Int("genes", len(records)))

	if duckdbPath != "" {
		if err := storeCanonical(duckdbPath, db, geneType, records); err != nil {
			return err
		}
	}

	return writeSpatialIndex(db, geneType, records)
}

// writeSpatialIndex resolves symbols and writes the chromosome-keyed JSON
// index. The symbols table is built first if it is not installed yet.
func writeSpatialIndex(db, geneType string, records []*genemodel.CanonicalRecord) error {
	symsPath := dataDir.SymbolsPath(geneType)
	if _, err := os.Stat(symsPath); err != nil {
		if err := buildSymbolTable(geneType); err != nil {
			return err
		}
	}
	geneToSym, err := genemodel.ReadSymbols(symsPath)
	if err != nil {
		return err
	}

	idx, err := spatial.Build(records, geneToSym)
	if err != nil {
		return err
	}

	jsonPath := dataDir.IndexPath(db, geneType)
	if err := spatial.Write(jsonPath, idx); err != nil {
		return err
	}
	logger.Info("wrote spatial index", zap.String("path", jsonPath), zap.Int("chromosomes", len(idx)))
	return nil
}

// rebuildSpatialIndex regenerates the JSON artifact from an already
// installed canonical transcript table.
func rebuildSpatialIndex(db, geneType string) error {
	bedPath := dataDir.BedPath(db, geneType)
	records, err := genemodel.ReadBed(bedPath)
	if err != nil {
		return err
	}
	return writeSpatialIndex(db, geneType, records)
}

// storeCanonical mirrors the canonical transcript table into DuckDB.
func storeCanonical(path, db, geneType string, records []*genemodel.CanonicalRecord) error {
	store, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.WriteCanonical(db, geneType, records); err != nil {
		return err
	}
	logger.Info("stored canonical transcripts in duckdb",
		zap.String("path", path),
		zap.Int("genes", len(records)))
	return nil
}
