package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/cellbrowser/cbgenes/internal/genemodel"
)

// WriteCanonical batch-inserts canonical transcript records for one
// (assembly, gene type) pair using the Appender API. Any previous rows for
// that pair are replaced, matching the regenerate-from-scratch lifecycle of
// the flat-file artifacts.
func (s *Store) WriteCanonical(db, geneType string, records []*genemodel.CanonicalRecord) error {
	if _, err := s.db.Exec(
		`DELETE FROM canonical_transcripts WHERE db = ? AND gene_type = ?`, db, geneType); err != nil {
		return fmt.Errorf("clear previous records: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "canonical_transcripts")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range records {
		if err := appender.AppendRow(
			db, geneType,
			r.Chrom, r.TxStart, r.TxEnd, r.GeneID, r.Rank, r.Strand,
			r.CDSStart, r.CDSEnd, int32(r.ExonCount),
			joinInt64s(r.BlockSizes), joinInt64s(r.BlockStarts),
			r.Symbol,
		); err != nil {
			return fmt.Errorf("append canonical record for %s: %w", r.GeneID, err)
		}
	}
	return appender.Flush()
}

// GenesBySymbol returns the canonical records for a gene symbol within one
// (assembly, gene type) pair.
func (s *Store) GenesBySymbol(db, geneType, symbol string) ([]*genemodel.CanonicalRecord, error) {
	rows, err := s.db.Query(
		`SELECT chrom, tx_start, tx_end, gene_id, rank, strand,
		        cds_start, cds_end, exon_count, block_sizes, block_starts, symbol
		 FROM canonical_transcripts
		 WHERE db = ? AND gene_type = ? AND symbol = ?
		 ORDER BY chrom, tx_start`, db, geneType, symbol)
	if err != nil {
		return nil, fmt.Errorf("query by symbol: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// GenesInRegion returns the canonical records overlapping [start, end) on a
// chromosome, ordered by start position.
func (s *Store) GenesInRegion(db, geneType, chrom string, start, end int64) ([]*genemodel.CanonicalRecord, error) {
	rows, err := s.db.Query(
		`SELECT chrom, tx_start, tx_end, gene_id, rank, strand,
		        cds_start, cds_end, exon_count, block_sizes, block_starts, symbol
		 FROM canonical_transcripts
		 WHERE db = ? AND gene_type = ? AND chrom = ? AND tx_start < ? AND tx_end > ?
		 ORDER BY tx_start`, db, geneType, chrom, end, start)
	if err != nil {
		return nil, fmt.Errorf("query by region: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// CountGenes returns the number of canonical records stored for one
// (assembly, gene type) pair.
func (s *Store) CountGenes(db, geneType string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT count(*) FROM canonical_transcripts WHERE db = ? AND gene_type = ?`,
		db, geneType).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count genes: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRecords(rows rowScanner) ([]*genemodel.CanonicalRecord, error) {
	var records []*genemodel.CanonicalRecord
	for rows.Next() {
		var (
			rec                     genemodel.CanonicalRecord
			exonCount               int32
			blockSizes, blockStarts string
		)
		if err := rows.Scan(
			&rec.Chrom, &rec.TxStart, &rec.TxEnd, &rec.GeneID, &rec.Rank, &rec.Strand,
			&rec.CDSStart, &rec.CDSEnd, &exonCount, &blockSizes, &blockStarts, &rec.Symbol,
		); err != nil {
			return nil, fmt.Errorf("scan canonical record: %w", err)
		}
		rec.ExonCount = int(exonCount)
		var err error
		if rec.BlockSizes, err = splitInt64s(blockSizes); err != nil {
			return nil, fmt.Errorf("parse block_sizes: %w", err)
		}
		if rec.BlockStarts, err = splitInt64s(blockStarts); err != nil {
			return nil, fmt.Errorf("parse block_starts: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func joinInt64s(vals []int64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

func splitInt64s(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	vals := make([]int64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}
