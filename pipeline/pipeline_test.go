package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tsawler/tabscan/coords"
	"github.com/tsawler/tabscan/model"
	"github.com/tsawler/tabscan/parser"
	"github.com/tsawler/tabscan/raster"
	"github.com/tsawler/tabscan/tables"
	"github.com/tsawler/tabscan/vision"
)

const testDPI = 300

// tablePage returns a white 1000x1400 page with one 3px outlined box per
// rectangle.
func tablePage(boxes ...image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1000, 1400))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	black := image.NewUniform(color.Black)
	for _, r := range boxes {
		for _, e := range []image.Rectangle{
			image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+3),
			image.Rect(r.Min.X, r.Max.Y-3, r.Max.X, r.Max.Y),
			image.Rect(r.Min.X, r.Min.Y, r.Min.X+3, r.Max.Y),
			image.Rect(r.Max.X-3, r.Min.Y, r.Max.X, r.Max.Y),
		} {
			draw.Draw(img, e, black, image.Point{}, draw.Src)
		}
	}
	return img
}

var threeTables = []image.Rectangle{
	image.Rect(100, 100, 700, 300),
	image.Rect(100, 400, 700, 600),
	image.Rect(100, 700, 700, 900),
}

func newProcessor(t *testing.T) *PageProcessor {
	t.Helper()
	mapper, err := coords.New(testDPI)
	if err != nil {
		t.Fatal(err)
	}
	backend, err := vision.NewBackend(vision.DefaultBackend, vision.DefaultThresholdConfig())
	if err != nil {
		t.Fatal(err)
	}
	p, err := NewPageProcessor(backend, tables.DefaultConfig(), mapper, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// echoEngine returns a 2x2 table naming the region it was asked about.
func echoEngine() parser.Engine {
	return parser.EngineFunc(func(ctx context.Context, req parser.Request) ([][]string, error) {
		id := fmt.Sprintf("p%d-t%d", req.Region.Page, req.Region.Sequence)
		return [][]string{{"id", id}, {"area", req.Region.Spec()}}, nil
	})
}

// failingRaster fails to render the listed pages.
type failingRaster struct {
	raster.Rasterizer
	fail map[int]bool
}

func (f failingRaster) Render(ctx context.Context, page int, dpi float64) (*model.Page, error) {
	if f.fail[page] {
		return nil, errors.New("renderer crashed")
	}
	return f.Rasterizer.Render(ctx, page, dpi)
}

// nilRaster returns neither a page nor an error for the listed pages.
type nilRaster struct {
	raster.Rasterizer
	missing map[int]bool
}

func (n nilRaster) Render(ctx context.Context, page int, dpi float64) (*model.Page, error) {
	if n.missing[page] {
		return nil, nil
	}
	return n.Rasterizer.Render(ctx, page, dpi)
}

// lowResRaster renders every page at a fixed DPI regardless of the request.
type lowResRaster struct {
	*raster.Memory
}

func (l lowResRaster) Render(ctx context.Context, page int, dpi float64) (*model.Page, error) {
	return l.Memory.Render(ctx, page, 150)
}

// ============================================================================
// PageProcessor Tests
// ============================================================================

func TestNewPageProcessorValidates(t *testing.T) {
	mapper, _ := coords.New(testDPI)
	backend := vision.NewNativeBackend(vision.DefaultThresholdConfig())

	if _, err := NewPageProcessor(nil, tables.DefaultConfig(), mapper, zerolog.Nop()); err == nil {
		t.Error("expected error without backend")
	}
	bad := tables.DefaultConfig()
	bad.Tolerance = -1
	if _, err := NewPageProcessor(backend, bad, mapper, zerolog.Nop()); err == nil {
		t.Error("expected error for invalid filter")
	}
	if _, err := NewPageProcessor(backend, tables.DefaultConfig(), coords.Mapper{}, zerolog.Nop()); err == nil {
		t.Error("expected error for zero DPI mapper")
	}
}

func TestProcessSingleTable(t *testing.T) {
	p := newProcessor(t)
	page := model.NewPage(1, tablePage(image.Rect(200, 300, 800, 700)), testDPI)

	det, err := p.Process(page)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(det.Regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(det.Regions))
	}

	r := det.Regions[0]
	if r.Box != (model.Rect{X: 200, Y: 300, W: 600, H: 400}) {
		t.Errorf("box = %v", r.Box)
	}
	if r.Page != 1 || r.Sequence != 1 {
		t.Errorf("identity = page %d seq %d", r.Page, r.Sequence)
	}
	// 1000x1400 px at 300 DPI is 240x336 pt.
	if got, want := r.Spec(), "48.00,264.00,192.00,168.00"; got != want {
		t.Errorf("Spec() = %q, want %q", got, want)
	}
	if det.Contours < 2 {
		t.Errorf("Contours = %d, want outer and hole at least", det.Contours)
	}
	if det.Overlay == nil || det.Overlay.Bounds() != page.Image.Bounds() {
		t.Error("overlay missing or wrong size")
	}
}

func TestProcessBlankPage(t *testing.T) {
	p := newProcessor(t)
	det, err := p.Process(model.NewPage(1, tablePage(), testDPI))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(det.Regions) != 0 {
		t.Errorf("got %d regions on a blank page", len(det.Regions))
	}
}

func TestProcessInvalidPage(t *testing.T) {
	p := newProcessor(t)

	tests := []struct {
		name string
		page *model.Page
	}{
		{"nil", nil},
		{"no pixels", &model.Page{Number: 2, DPI: testDPI}},
		{"dpi mismatch", model.NewPage(3, tablePage(), 150)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Process(tt.page)
			if model.KindOf(err) != model.KindInvalidPage {
				t.Errorf("error = %v, want kind %s", err, model.KindInvalidPage)
			}
			if !errors.Is(err, model.ErrInvalidPage) {
				t.Errorf("error = %v, want ErrInvalidPage in chain", err)
			}
		})
	}
}

// ============================================================================
// Aggregator Tests
// ============================================================================

func TestAggregatorRun(t *testing.T) {
	r := raster.NewMemory(tablePage(threeTables...), tablePage(), tablePage(threeTables[1]))
	agg := NewAggregator(r, newProcessor(t), echoEngine())

	result, status, err := agg.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var ids []string
	for i, tbl := range result.Tables {
		ids = append(ids, tbl.Rows[0][1])
		if tbl.Number != i+1 {
			t.Errorf("table %d Number = %d", i, tbl.Number)
		}
	}
	want := []string{"p1-t1", "p1-t2", "p1-t3", "p3-t1"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("tables = %v, want %v", ids, want)
	}

	states := []model.PageState{model.PageOK, model.PageNoRegions, model.PageOK}
	if len(status.Pages) != len(states) {
		t.Fatalf("got %d page statuses", len(status.Pages))
	}
	for i, ps := range status.Pages {
		if ps.State != states[i] {
			t.Errorf("page %d state = %s, want %s", ps.Page, ps.State, states[i])
		}
	}
	if len(status.Failures()) != 0 {
		t.Errorf("unexpected failures: %v", status.Failures())
	}
}

func TestAggregatorRegionFailureIsolated(t *testing.T) {
	engine := parser.EngineFunc(func(ctx context.Context, req parser.Request) ([][]string, error) {
		if req.Region.Sequence == 2 {
			return nil, errors.New("engine crashed")
		}
		return [][]string{{"a", "b"}, {"c", "d"}}, nil
	})
	r := raster.NewMemory(tablePage(threeTables...))
	agg := NewAggregator(r, newProcessor(t), engine)

	result, status, err := agg.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Len() != 2 || result.Tables[0].Sequence != 1 || result.Tables[1].Sequence != 3 {
		t.Fatalf("tables = %+v, want sequences 1 and 3", result.Tables)
	}

	regions := status.Pages[0].Regions
	if len(regions) != 3 || regions[1].State != model.RegionParseFailed {
		t.Fatalf("region statuses = %+v", regions)
	}
	failures := status.Failures()
	if len(failures) != 1 || model.KindOf(failures[0]) != model.KindRegionParse {
		t.Errorf("failures = %v", failures)
	}
	var e *model.Error
	if !errors.As(failures[0], &e) || e.Page != 1 || e.Sequence != 2 {
		t.Errorf("failure scope = %+v", e)
	}
}

func TestAggregatorEmptyRegion(t *testing.T) {
	engine := parser.EngineFunc(func(ctx context.Context, req parser.Request) ([][]string, error) {
		return nil, nil
	})
	r := raster.NewMemory(tablePage(threeTables[0]))
	result, status, err := NewAggregator(r, newProcessor(t), engine).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Len() != 0 {
		t.Errorf("got %d tables, want 0", result.Len())
	}
	if got := status.Pages[0].Regions[0].State; got != model.RegionEmpty {
		t.Errorf("region state = %s, want %s", got, model.RegionEmpty)
	}
}

func TestAggregatorRasterizationFailureIsolated(t *testing.T) {
	r := failingRaster{
		Rasterizer: raster.NewMemory(tablePage(threeTables[0]), tablePage(threeTables[0]), tablePage(threeTables[0])),
		fail:       map[int]bool{2: true},
	}
	result, status, err := NewAggregator(r, newProcessor(t), echoEngine()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Len() != 2 || result.Tables[0].Page != 1 || result.Tables[1].Page != 3 {
		t.Errorf("tables = %+v, want pages 1 and 3", result.Tables)
	}
	if got := status.Pages[1]; got.State != model.PageRasterizationFailed || model.KindOf(got.Err) != model.KindRasterization {
		t.Errorf("page 2 status = %+v", got)
	}
}

func TestAggregatorMissingPage(t *testing.T) {
	r := nilRaster{
		Rasterizer: raster.NewMemory(tablePage(threeTables[0]), tablePage(threeTables[0])),
		missing:    map[int]bool{1: true},
	}
	result, status, err := NewAggregator(r, newProcessor(t), echoEngine()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Len() != 1 || result.Tables[0].Page != 2 {
		t.Errorf("tables = %+v, want one from page 2", result.Tables)
	}
	got := status.Pages[0]
	if got.State != model.PageInvalid || model.KindOf(got.Err) != model.KindInvalidPage || !errors.Is(got.Err, model.ErrInvalidPage) {
		t.Errorf("page 1 status = %+v", got)
	}
}

func TestAggregatorDPIMismatch(t *testing.T) {
	r := lowResRaster{raster.NewMemory(tablePage(threeTables[0]))}
	result, status, err := NewAggregator(r, newProcessor(t), echoEngine()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Len() != 0 {
		t.Errorf("got %d tables from a mismatched page", result.Len())
	}
	if status.Pages[0].State != model.PageInvalid {
		t.Errorf("page state = %s, want %s", status.Pages[0].State, model.PageInvalid)
	}
}

func TestAggregatorDeterministic(t *testing.T) {
	pages := []image.Image{tablePage(threeTables...), tablePage(threeTables[2], image.Rect(750, 1000, 990, 1300))}

	run := func() *model.DocumentResult {
		res, _, err := NewAggregator(raster.NewMemory(pages...), newProcessor(t), echoEngine()).Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return res
	}
	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Errorf("runs differ:\n%+v\n%+v", a, b)
	}
}

func TestAggregatorPagesOption(t *testing.T) {
	r := raster.NewMemory(tablePage(threeTables[0]), tablePage(threeTables[0]), tablePage(threeTables[0]))
	agg := NewAggregator(r, newProcessor(t), echoEngine(), WithPages(3, 1, 3))

	result, status, err := agg.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(status.Pages) != 2 || status.Pages[0].Page != 1 || status.Pages[1].Page != 3 {
		t.Errorf("pages visited = %+v", status.Pages)
	}
	if result.Len() != 2 {
		t.Errorf("got %d tables, want 2", result.Len())
	}
}

func TestAggregatorHook(t *testing.T) {
	r := raster.NewMemory(tablePage(threeTables[0]), tablePage(threeTables[0]))

	var seen []int
	hook := func(page *model.Page, det *PageDetection) error {
		seen = append(seen, page.Number)
		if len(det.Regions) != 1 {
			t.Errorf("page %d: %d regions", page.Number, len(det.Regions))
		}
		return nil
	}
	if _, _, err := NewAggregator(r, newProcessor(t), echoEngine(), WithPageHook(hook)).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(seen, []int{1, 2}) {
		t.Errorf("hook saw pages %v", seen)
	}

	stop := errors.New("disk full")
	failing := func(*model.Page, *PageDetection) error { return stop }
	_, _, err := NewAggregator(r, newProcessor(t), echoEngine(), WithPageHook(failing)).Run(context.Background())
	if !errors.Is(err, stop) {
		t.Errorf("Run() error = %v, want hook error", err)
	}
}

func TestAggregatorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := raster.NewMemory(tablePage(threeTables[0]))
	_, _, err := NewAggregator(r, newProcessor(t), echoEngine()).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestAggregatorRequiresEngine(t *testing.T) {
	r := raster.NewMemory(tablePage())
	if _, _, err := NewAggregator(r, newProcessor(t), nil).Run(context.Background()); err == nil {
		t.Error("expected error without engine")
	}
}

func TestAggregatorDetect(t *testing.T) {
	r := raster.NewMemory(tablePage(threeTables...), tablePage())
	dets, status, err := NewAggregator(r, newProcessor(t), nil).Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(dets) != 2 || len(dets[0].Regions) != 3 || len(dets[1].Regions) != 0 {
		t.Errorf("detections = %d pages", len(dets))
	}
	if status.RegionCount() != 3 {
		t.Errorf("RegionCount() = %d, want 3", status.RegionCount())
	}
}

func TestAggregatorDetectReleasesOverlays(t *testing.T) {
	r := raster.NewMemory(tablePage(threeTables...), tablePage(threeTables[0]))

	var drawn int
	hook := func(_ *model.Page, det *PageDetection) error {
		if det.Overlay != nil {
			drawn++
		}
		return nil
	}
	dets, _, err := NewAggregator(r, newProcessor(t), nil, WithPageHook(hook)).Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if drawn != 2 {
		t.Errorf("hook saw %d overlays, want 2", drawn)
	}
	for _, det := range dets {
		if det.Overlay != nil {
			t.Errorf("page %d detection still holds its overlay", det.Page)
		}
		if len(det.Regions) == 0 {
			t.Errorf("page %d detection lost its regions", det.Page)
		}
	}
}
