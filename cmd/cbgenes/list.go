package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cellbrowser/cbgenes/internal/ucsc"
)

func newAvailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "avail",
		Short: "List all gene models that can be downloaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := ucsc.ListRemote()
			if err != nil {
				return err
			}
			for _, m := range models {
				fmt.Printf("%s\t%s\n", m.DB, m.GeneType)
			}
			return nil
		},
	}
}

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List all gene models installed on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listLocal()
		},
	}
}

func listLocal() error {
	genesDir := dataDir.GenesDir()

	symFiles, err := filepath.Glob(filepath.Join(genesDir, "*.symbols.tsv.gz"))
	if err != nil {
		return err
	}
	fmt.Println("Installed gene/symbol mappings:")
	for _, f := range symFiles {
		name, _, _ := strings.Cut(filepath.Base(f), ".")
		fmt.Println(name)
	}

	bedFiles, err := filepath.Glob(filepath.Join(genesDir, "*.bed.gz"))
	if err != nil {
		return err
	}
	fmt.Println("Installed gene/location mappings:")
	for _, f := range bedFiles {
		fmt.Println(strings.TrimSuffix(filepath.Base(f), ".bed.gz"))
	}
	return nil
}
