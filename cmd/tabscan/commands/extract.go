package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tsawler/tabscan/config"
	"github.com/tsawler/tabscan/coords"
	"github.com/tsawler/tabscan/hocr"
	"github.com/tsawler/tabscan/ocr"
	"github.com/tsawler/tabscan/parser"
	"github.com/tsawler/tabscan/raster"
	"github.com/tsawler/tabscan/report"
)

var (
	hocrDirFlag string
	useOCRFlag  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <images...|dir>",
	Short: "Extract the tables on each page",
	Long: `Extract detects table regions, parses the words inside each one into
rows and columns, and writes the tables to the output directory as
tables.json, tables.md and/or tables.xlsx.

Words come from page_N.hocr files (--hocr-dir, defaulting to the input
directory) or, in builds with the ocr tag, from Tesseract (--ocr).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().Float64Var(&dpiFlag, "dpi", 0, "render DPI (default from config)")
	extractCmd.Flags().IntSliceVarP(&pagesFlag, "pages", "p", nil, "pages to process (1-indexed)")
	extractCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "output directory")
	extractCmd.Flags().StringVar(&backendFlag, "backend", "", "vision backend")
	extractCmd.Flags().BoolVar(&imagesFlag, "images", false, "save page_N.png and page_N_detected.png")
	extractCmd.Flags().StringVar(&hocrDirFlag, "hocr-dir", "", "directory of page_N.hocr files")
	extractCmd.Flags().BoolVar(&useOCRFlag, "ocr", false, "run Tesseract instead of reading hOCR")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	applyFlags()
	if useOCRFlag {
		cfg.Parser.Source = config.SourceOCR
	}
	if hocrDirFlag != "" {
		cfg.Parser.HOCRDir = hocrDirFlag
	}

	pages, err := openPages(args)
	if err != nil {
		return err
	}
	pages.SourceDPI = cfg.Render.SourceDPI

	engine, err := newEngine(pages)
	if err != nil {
		return err
	}

	hook, finish := progressHook(pageTotal(pages))
	ext := newExtractor(pages).Engine(engine).OnPage(hook)
	if cfg.Output.SaveImages {
		ext = ext.OnPage(imageHook(cfg.Output.Dir))
	}

	result, warnings, err := ext.Tables(cmd.Context())
	finish()
	logWarnings(warnings)
	if err != nil {
		return err
	}

	for _, format := range cfg.Output.Formats {
		path, write := outputFile(format)
		if err := report.WriteFile(path, result, write); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
		logger.Info().Str("path", path).Msg("report written")
	}

	logger.Info().Int("tables", result.Len()).Int("warnings", len(warnings)).Msg("extraction complete")
	return nil
}

// newEngine builds the stream engine over the configured word source.
// hOCR boxes are scaled onto each page's size, so the files may come from
// the source scans at any resolution.
func newEngine(pages *raster.Images) (parser.Engine, error) {
	var source parser.WordSource
	switch cfg.Parser.Source {
	case config.SourceOCR:
		mapper, err := coords.New(cfg.Render.DPI)
		if err != nil {
			return nil, err
		}
		source = ocr.NewSource(pages, mapper, cfg.Parser.Language)
	default:
		dir := cfg.Parser.HOCRDir
		if dir == "" {
			dir = filepath.Dir(pages.Paths()[0])
		}
		source = hocr.NewSource(dir)
	}
	return parser.NewStreamEngine(source, cfg.Stream()), nil
}

func outputFile(format string) (string, report.Writer) {
	switch format {
	case "xlsx":
		return filepath.Join(cfg.Output.Dir, "tables.xlsx"), report.WriteXLSX
	case "markdown":
		return filepath.Join(cfg.Output.Dir, "tables.md"), report.WriteMarkdown
	default:
		return filepath.Join(cfg.Output.Dir, "tables.json"), report.WriteJSON
	}
}
