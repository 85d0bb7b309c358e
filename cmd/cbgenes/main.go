// Package main provides the cbgenes command-line tool: it downloads gene
// model tables, builds canonical transcript indexes, and guesses which
// annotation release an arbitrary gene list came from.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/cellbrowser/cbgenes/internal/datadir"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
)

// Shared command state, initialized by the root PersistentPreRunE.
var (
	logger  *zap.Logger
	dataDir datadir.Dir
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		debug   bool
		dirFlag string
	)

	cmd := &cobra.Command{
		Use:     "cbgenes",
		Short:   "Download gene model files and auto-detect annotation releases",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Example: `  cbgenes avail
  cbgenes syms gencode-34            # human gencode release 34
  cbgenes syms gencode-M25           # mouse gencode release M25
  cbgenes locs hg38 gencode-34
  cbgenes ls
  cbgenes guess genes.txt mouse
  cbgenes index                      # prepare the signature tables for 'guess'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return err
			}

			var err error
			if debug {
				logger, err = zap.NewDevelopment()
			} else {
				logger, err = zap.NewProduction()
			}
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}

			root := dirFlag
			if root == "" {
				root = viper.GetString("datadir")
			}
			if root != "" {
				dataDir = datadir.Dir{Root: root}
			} else if dataDir, err = datadir.Default(); err != nil {
				return err
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "show debug messages")
	cmd.PersistentFlags().StringVar(&dirFlag, "data-dir", "", "gene model data directory (default: ~/.cbgenes)")

	cmd.AddCommand(newAvailCmd())
	cmd.AddCommand(newLsCmd())
	cmd.AddCommand(newSymsCmd())
	cmd.AddCommand(newLocsCmd())
	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newJSONCmd())
	cmd.AddCommand(newGuessCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig loads ~/.cbgenes.yaml if present.
func initConfig() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil // no home directory, no config file
	}
	viper.AddConfigPath(home)
	viper.SetConfigName(".cbgenes")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}
