package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tsawler/tabscan/model"
)

// ErrNoText is returned when no page yielded any text.
var ErrNoText = errors.New("no text recognised on any page")

// TextSource supplies the recognised text of a page.
type TextSource interface {
	Text(ctx context.Context, page int) (string, error)
}

// PageAnalysis is the reading of a single page.
type PageAnalysis struct {
	PageNumber int    `json:"page_number"`
	Analysis   Result `json:"analysis"`
	RawText    string `json:"raw_text"`
}

// Report holds the analysis of the document as a whole and of each page.
type Report struct {
	DocumentAnalysis Result         `json:"document_analysis"`
	PerPageAnalysis  []PageAnalysis `json:"per_page_analysis"`
}

// PageHook is called with the text of every page that was read. Returning
// an error stops the run.
type PageHook func(page int, text string) error

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithPageHook registers a hook called after each page is read.
func WithPageHook(hook PageHook) Option {
	return func(a *Analyzer) {
		a.hooks = append(a.hooks, hook)
	}
}

// Analyzer reads the pages of a document one at a time and analyses their
// text.
type Analyzer struct {
	source TextSource
	hooks  []PageHook
	logger zerolog.Logger
}

// New creates an Analyzer reading from source.
func New(source TextSource, opts ...Option) *Analyzer {
	a := &Analyzer{source: source, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run analyses the given 1-indexed pages in ascending order. Pages whose
// text cannot be read are recorded in the status and left out of the
// report. The document analysis runs over the text of all read pages,
// separated by blank lines.
func (a *Analyzer) Run(ctx context.Context, pages []int) (*Report, *model.RunStatus, error) {
	status := &model.RunStatus{}
	if a.source == nil {
		return nil, status, errors.New("no text source configured")
	}

	report := &Report{PerPageAnalysis: []PageAnalysis{}}
	var texts []string
	for _, n := range uniquePages(pages) {
		if err := ctx.Err(); err != nil {
			return nil, status, err
		}

		ps := model.PageStatus{Page: n}
		log := a.logger.With().Int("page", n).Logger()

		text, err := a.source.Text(ctx, n)
		if err != nil {
			if ctx.Err() != nil {
				return nil, status, ctx.Err()
			}
			ps.State = model.PageTextFailed
			ps.Err = model.PageError(model.KindTextRecognition, n, err)
			log.Warn().Err(err).Msg("text recognition failed, skipping page")
			status.Add(ps)
			continue
		}

		for _, hook := range a.hooks {
			if err := hook(n, text); err != nil {
				status.Add(ps)
				return nil, status, fmt.Errorf("page %d: %w", n, err)
			}
		}

		ps.State = model.PageOK
		status.Add(ps)
		texts = append(texts, text)
		report.PerPageAnalysis = append(report.PerPageAnalysis, PageAnalysis{
			PageNumber: n,
			Analysis:   Analyze(text),
			RawText:    text,
		})
		log.Debug().Int("chars", len(text)).Msg("page analysed")
	}

	if len(texts) == 0 {
		return nil, status, ErrNoText
	}
	report.DocumentAnalysis = Analyze(strings.Join(texts, "\n\n"))

	a.logger.Info().
		Int("pages", len(report.PerPageAnalysis)).
		Str("document_type", report.DocumentAnalysis.DocumentType).
		Int("failures", len(status.Failures())).
		Msg("document analysed")
	return report, status, nil
}

func uniquePages(pages []int) []int {
	seen := make(map[int]bool, len(pages))
	var out []int
	for _, p := range pages {
		if p >= 1 && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out
}
