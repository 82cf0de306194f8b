package commands

import (
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/tsawler/tabscan/analysis"
	"github.com/tsawler/tabscan/config"
	"github.com/tsawler/tabscan/hocr"
	"github.com/tsawler/tabscan/ocr"
	"github.com/tsawler/tabscan/raster"
	"github.com/tsawler/tabscan/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <images...|dir>",
	Short: "Read invoice fields from the text of each page",
	Long: `Analyze reads the full text of every page and picks out the document
type, invoice number, date, subtotal, VAT, total and candidate line items.
Each page is analysed on its own and the whole document once more over
the joined text. The result is written to structured_document_with_pages.json
in the output directory.

Text comes from page_N.hocr files (--hocr-dir, defaulting to the input
directory) or, in builds with the ocr tag, from Tesseract (--ocr) using
the analysis.language setting.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Float64Var(&dpiFlag, "dpi", 0, "render DPI (default from config)")
	analyzeCmd.Flags().IntSliceVarP(&pagesFlag, "pages", "p", nil, "pages to process (1-indexed)")
	analyzeCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "output directory")
	analyzeCmd.Flags().BoolVar(&imagesFlag, "images", false, "save page_N.png")
	analyzeCmd.Flags().StringVar(&hocrDirFlag, "hocr-dir", "", "directory of page_N.hocr files")
	analyzeCmd.Flags().BoolVar(&useOCRFlag, "ocr", false, "run Tesseract instead of reading hOCR")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	numbers := pagesFlag
	if len(numbers) == 0 {
		for p := 1; p <= pages.PageCount(); p++ {
			numbers = append(numbers, p)
		}
	}

	opts := []analysis.Option{analysis.WithLogger(logger)}
	hook, finish := textProgressHook(len(numbers))
	opts = append(opts, analysis.WithPageHook(hook))
	if cfg.Output.SaveImages {
		opts = append(opts, analysis.WithPageHook(pageImageHook(cmd, pages, cfg.Output.Dir)))
	}

	rep, status, err := analysis.New(newTextSource(pages), opts...).Run(cmd.Context(), numbers)
	finish()
	for _, f := range status.Failures() {
		logger.Warn().Err(f).Msg("page skipped")
	}
	if err != nil {
		return err
	}

	path, err := report.WriteAnalysisFile(cfg.Output.Dir, rep)
	if err != nil {
		return err
	}
	logger.Info().
		Str("path", path).
		Str("document_type", rep.DocumentAnalysis.DocumentType).
		Int("pages", len(rep.PerPageAnalysis)).
		Msg("analysis written")
	return nil
}

// newTextSource picks the page text source from the configuration.
func newTextSource(pages *raster.Images) analysis.TextSource {
	if cfg.Parser.Source == config.SourceOCR {
		return ocr.NewTextSource(pages, cfg.Render.DPI, cfg.Analysis.Language)
	}
	dir := cfg.Parser.HOCRDir
	if dir == "" {
		dir = filepath.Dir(pages.Paths()[0])
	}
	return hocr.NewSource(dir)
}

// textProgressHook advances a progress bar for every page read.
func textProgressHook(total int) (analysis.PageHook, func()) {
	if noProgress || total == 0 {
		return func(int, string) error { return nil }, func() {}
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("pages"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
	return func(int, string) error { return bar.Add(1) }, func() { _ = bar.Finish() }
}

// pageImageHook saves the raster of every page that was read.
func pageImageHook(cmd *cobra.Command, r raster.Rasterizer, dir string) analysis.PageHook {
	return func(page int, _ string) error {
		p, err := r.Render(cmd.Context(), page, cfg.Render.DPI)
		if err != nil {
			return err
		}
		return report.SavePNG(report.PagePath(dir, page), p.Image)
	}
}
