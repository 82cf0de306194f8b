// Package pipeline wires the detection stages together.
//
// A [PageProcessor] handles one page:
//
//	page raster -> mask -> contours -> filtered boxes -> mapped regions
//
// and draws a debug overlay of what it found. An [Aggregator] walks the
// pages of a document in order, renders each one through a
// [raster.Rasterizer], runs the PageProcessor, passes every region to a
// [parser.Engine] and collects the tables into a [model.DocumentResult]:
//
//	mapper, _ := coords.New(300)
//	backend, _ := vision.NewBackend("native", vision.DefaultThresholdConfig())
//	proc, _ := pipeline.NewPageProcessor(backend, tables.DefaultConfig(), mapper, zerolog.Nop())
//	agg := pipeline.NewAggregator(rasterizer, proc, engine)
//	result, status, err := agg.Run(ctx)
//
// Failures are isolated to the page or region they occur on and reported
// in the [model.RunStatus].
package pipeline
