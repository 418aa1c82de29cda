package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/kpotier/supercell/pkg/cfg"
	"github.com/kpotier/supercell/pkg/structdb"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "supercell [config]",
	Short: "Build supercells and cleave slabs from a structure database",
	Long: `supercell runs the calculations listed in a TOML configuration file.

The configuration file lists the steps to perform:

  types = [["supercell", "cleave"]]
  files = [["supercell.toml", "cleave.toml"]]

Calculations of the same step run in parallel.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cfg.New(args[0])
		if err != nil {
			return fmt.Errorf("New: %w", err)
		}
		return c.Start(logger)
	},
}

var structuresCmd = &cobra.Command{
	Use:   "structures [database]",
	Short: "List the structures and charges of a structure database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := structdb.Open(args[0])
		if err != nil {
			return fmt.Errorf("Open: %w", err)
		}

		w := cmd.OutOrStdout()
		for _, name := range db.Names() {
			fmt.Fprintln(w, name)
		}

		species := make([]string, 0, len(db.Charges))
		for k := range db.Charges {
			species = append(species, k)
		}
		sort.Strings(species)
		if len(species) != 0 {
			fmt.Fprintln(w, "\nCharges:")
		}
		for _, k := range species {
			fmt.Fprintf(w, "  %-3s %s\n", k, strconv.FormatFloat(db.Charges[k], 'f', -1, 64))
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(structuresCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "supercell:", err)
		os.Exit(1)
	}
}
