package commands

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tsawler/tabscan/config"
	"github.com/tsawler/tabscan/internal/logging"
)

var (
	cfgFile    string
	verbose    bool
	noProgress bool

	// Set by PersistentPreRunE
	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tabscan",
	Short: "Find and extract tables from scanned pages",
	Long: `tabscan finds bordered tables on page images by tracing the outlines of
ruled regions, and extracts the text inside them with a word-level parser
fed by hOCR files or Tesseract. The analyze command reads invoice fields
from the full text of each page.

Pages are given as image files or a directory of images (page_1.png,
page_2.png, ...), rendered at the configured DPI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if verbose {
			cfg.Log.Level = "debug"
		}

		lc := cfg.Logging()
		lc.Output = os.Stderr
		logger = logging.New(lc).With().Str("run_id", uuid.NewString()).Logger()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
