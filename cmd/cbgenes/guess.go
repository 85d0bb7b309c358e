package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cellbrowser/cbgenes/internal/signature"
)

func newGuessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guess <inFile> [organism]",
		Short: "Guess the gene model release of a gene list",
		Long: `Read gene identifiers from the first tab-separated column of a file and
score them against the unique signature identifiers of every known release.
The organism and identifier type are detected from the input unless an
organism is given explicitly. Run 'cbgenes index' first to build the
signature tables.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			organism := ""
			if len(args) == 2 {
				organism = args[1]
			}
			return runGuess(args[0], organism)
		},
	}
}

func runGuess(path, organism string) error {
	genes, err := signature.ParseGeneListFile(path)
	if err != nil {
		return err
	}

	u := signature.DetectUniverse(genes.First())
	if organism != "" {
		u.Organism = organism
	}
	logger.Info("detected gene list universe",
		zap.String("organism", u.Organism),
		zap.String("id_type", u.IDType),
		zap.Int("genes", genes.Len()))

	guesser := signature.NewGuesser(dataDir)
	guesser.SetLogger(logger)
	best, scores, err := guesser.Guess(genes, u)
	if err != nil {
		return err
	}

	for _, s := range scores {
		line := fmt.Sprintf("release %s: %d out of %d", s.Release, s.Matches, s.SetSize)
		if len(s.Examples) > 0 {
			line += " e.g. "
			for i, ex := range s.Examples {
				if i > 0 {
					line += ", "
				}
				line += ex
			}
		}
		fmt.Println(line)
	}

	fmt.Printf("Best %s gene model release\t%s\n", u.Organism, best)
	return nil
}

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Build the release signature tables from all installed symbol tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			builder := signature.NewBuilder(dataDir)
			builder.SetLogger(logger)
			return builder.BuildAll()
		},
	}
}
