package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect <images...|dir>",
	Short: "Detect table regions and print their coordinates",
	Long: `Detect prints one line per table region in reading order:

  page sequence x1,y1,x2,y2

Coordinates are in PDF points with the origin at the bottom-left of the
page, top-left corner first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().Float64Var(&dpiFlag, "dpi", 0, "render DPI (default from config)")
	detectCmd.Flags().IntSliceVarP(&pagesFlag, "pages", "p", nil, "pages to process (1-indexed)")
	detectCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "directory for page and overlay images")
	detectCmd.Flags().StringVar(&backendFlag, "backend", "", "vision backend")
	detectCmd.Flags().BoolVar(&imagesFlag, "images", false, "save page_N.png and page_N_detected.png")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	applyFlags()

	pages, err := openPages(args)
	if err != nil {
		return err
	}
	pages.SourceDPI = cfg.Render.SourceDPI

	hook, finish := progressHook(pageTotal(pages))
	ext := newExtractor(pages).OnPage(hook)
	if cfg.Output.SaveImages {
		ext = ext.OnPage(imageHook(cfg.Output.Dir))
	}

	detections, warnings, err := ext.Detect(cmd.Context())
	finish()
	logWarnings(warnings)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	count := 0
	for _, det := range detections {
		for _, r := range det.Regions {
			fmt.Fprintf(out, "%d %d %s\n", r.Page, r.Sequence, r.Spec())
			count++
		}
	}
	logger.Info().Int("pages", len(detections)).Int("regions", count).Msg("detection complete")
	return nil
}
