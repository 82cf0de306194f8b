package parser

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tsawler/tabscan/model"
)

// word places text at [left, right] x [bottom, top] in points.
func word(text string, left, right, bottom, top float64) Word {
	return Word{Text: text, BBox: model.NewBBox(left, bottom, right-left, top-bottom), Confidence: 90}
}

func region(page, seq int, area model.BBox) model.TableRegion {
	return model.TableRegion{Page: page, Sequence: seq, Box: model.Rect{X: 1, Y: 1, W: 1, H: 1}, Area: area}
}

var invoiceWords = []Word{
	word("Item", 60, 90, 668, 680),
	word("Qty", 200, 220, 668, 680),
	word("Price", 300, 330, 668, 680),
	word("Apple", 60, 95, 648, 660),
	word("3", 205, 210, 648, 660),
	word("1.20", 300, 320, 648, 660),
	word("Green", 60, 92, 628, 640),
	word("pear", 95, 120, 628, 640),
	word("2", 205, 210, 628, 640),
	word("0.80", 300, 320, 628, 640),
	word("Footer", 60, 120, 90, 100),
}

var invoiceArea = model.NewBBox(50, 500, 400, 200)

func TestStreamEngineParse(t *testing.T) {
	e := NewStreamEngine(StaticWords{1: invoiceWords}, DefaultConfig())
	rows, err := e.Parse(context.Background(), Request{Region: region(1, 1, invoiceArea)})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := [][]string{
		{"Item", "Qty", "Price"},
		{"Apple", "3", "1.20"},
		{"Green pear", "2", "0.80"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Parse() = %v, want %v", rows, want)
	}
}

func TestStreamEngineEmptyCell(t *testing.T) {
	words := []Word{
		word("A", 10, 20, 90, 100),
		word("B", 110, 120, 90, 100),
		word("C", 10, 20, 70, 80),
	}
	e := NewStreamEngine(StaticWords{1: words}, DefaultConfig())
	rows, err := e.Parse(context.Background(), Request{Region: region(1, 1, model.NewBBox(0, 0, 200, 200))})
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"A", "B"}, {"C", ""}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Parse() = %v, want %v", rows, want)
	}
}

func TestStreamEngineNotATable(t *testing.T) {
	tests := []struct {
		name  string
		words []Word
	}{
		{"no words", nil},
		{"single row", []Word{word("a", 10, 20, 90, 100), word("b", 110, 120, 90, 100)}},
		{"single column", []Word{word("a", 10, 20, 90, 100), word("b", 10, 20, 70, 80)}},
		{"words outside the region", []Word{word("a", 300, 310, 90, 100), word("b", 400, 410, 70, 80)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewStreamEngine(StaticWords{1: tt.words}, DefaultConfig())
			rows, err := e.Parse(context.Background(), Request{Region: region(1, 1, model.NewBBox(0, 0, 200, 200))})
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if rows != nil {
				t.Errorf("Parse() = %v, want nil", rows)
			}
		})
	}
}

func TestStreamEngineUnmappedRegion(t *testing.T) {
	e := NewStreamEngine(StaticWords{}, DefaultConfig())
	r := model.TableRegion{Page: 1, Sequence: 1, Box: model.Rect{X: 1, Y: 1, W: 10, H: 10}}
	if _, err := e.Parse(context.Background(), Request{Region: r}); err == nil {
		t.Error("expected error for a region without page-space area")
	}
}

func TestStreamEngineNormalizesText(t *testing.T) {
	words := []Word{
		word(" Cafe\u0301 ", 10, 40, 90, 100),
		word("x", 110, 120, 90, 100),
		word("y", 10, 20, 70, 80),
		word("z", 110, 120, 70, 80),
	}
	e := NewStreamEngine(StaticWords{1: words}, DefaultConfig())
	rows, err := e.Parse(context.Background(), Request{Region: region(1, 1, model.NewBBox(0, 0, 200, 200))})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) == 0 {
		t.Fatal("no rows")
	}
	if rows[0][0] != "Caf\u00e9" {
		t.Errorf("first cell = %q, want NFC %q", rows[0][0], "Caf\u00e9")
	}
}

func TestStreamEngineMinConfidence(t *testing.T) {
	words := append([]Word(nil), invoiceWords...)
	words[4].Confidence = 10 // "3"

	cfg := DefaultConfig()
	cfg.MinConfidence = 50
	e := NewStreamEngine(StaticWords{1: words}, cfg)
	rows, err := e.Parse(context.Background(), Request{Region: region(1, 1, invoiceArea)})
	if err != nil {
		t.Fatal(err)
	}
	if rows[1][1] != "" {
		t.Errorf("low-confidence word kept: %q", rows[1][1])
	}
}

type countingSource struct {
	calls map[int]int
	words map[int][]Word
	size  model.PageSize
	err   error
}

func (s *countingSource) Words(ctx context.Context, page int, size model.PageSize) ([]Word, error) {
	s.calls[page]++
	s.size = size
	if s.err != nil {
		return nil, s.err
	}
	return s.words[page], nil
}

func TestStreamEngineCachesPageWords(t *testing.T) {
	src := &countingSource{calls: map[int]int{}, words: map[int][]Word{1: invoiceWords, 2: invoiceWords}}
	e := NewStreamEngine(src, DefaultConfig())
	ctx := context.Background()

	for _, r := range []model.TableRegion{region(1, 1, invoiceArea), region(1, 2, invoiceArea), region(2, 1, invoiceArea)} {
		if _, err := e.Parse(ctx, Request{Region: r, PageSize: model.PageSize{Width: 612, Height: 792}}); err != nil {
			t.Fatal(err)
		}
	}
	if src.calls[1] != 1 || src.calls[2] != 1 {
		t.Errorf("source calls = %v, want one per page", src.calls)
	}
	if src.size.Width != 612 || src.size.Height != 792 {
		t.Errorf("page size passed to source = %+v, want 612x792", src.size)
	}
}

func TestStreamEngineSourceError(t *testing.T) {
	boom := errors.New("boom")
	src := &countingSource{calls: map[int]int{}, err: boom}
	e := NewStreamEngine(src, DefaultConfig())

	_, err := e.Parse(context.Background(), Request{Region: region(3, 1, invoiceArea)})
	if !errors.Is(err, boom) {
		t.Errorf("Parse() error = %v, want wrapped %v", err, boom)
	}
}

func TestEngineFunc(t *testing.T) {
	var got Request
	f := EngineFunc(func(ctx context.Context, req Request) ([][]string, error) {
		got = req
		return [][]string{{"x"}}, nil
	})

	req := Request{Region: region(2, 3, invoiceArea), PageSize: model.PageSize{Width: 612, Height: 792}}
	rows, err := f.Parse(context.Background(), req)
	if err != nil || len(rows) != 1 {
		t.Fatalf("Parse() = %v, %v", rows, err)
	}
	if got.Region.Sequence != 3 || got.PageSize.Width != 612 {
		t.Errorf("request not passed through: %+v", got)
	}
}

func TestStaticWordsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (StaticWords{}).Words(ctx, 1, model.PageSize{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Words() error = %v, want context.Canceled", err)
	}
}
