package model

// PageState is the outcome of processing one page.
type PageState string

const (
	PageOK                  PageState = "ok"
	PageNoRegions           PageState = "no_regions"
	PageInvalid             PageState = "invalid_page"
	PageRasterizationFailed PageState = "rasterization_failed"
	PageTextFailed          PageState = "text_failed"
)

// RegionState is the outcome of parsing one region.
type RegionState string

const (
	RegionOK          RegionState = "ok"
	RegionEmpty       RegionState = "empty"
	RegionParseFailed RegionState = "parse_failed"
)

// RegionStatus records what happened to one detected region.
type RegionStatus struct {
	Sequence int
	Region   TableRegion
	State    RegionState
	Err      error
}

// PageStatus records what happened to one page.
type PageStatus struct {
	Page    int
	State   PageState
	Err     error
	Regions []RegionStatus
}

// Failed reports whether the page or any of its regions failed.
func (p PageStatus) Failed() bool {
	if p.Err != nil {
		return true
	}
	for _, r := range p.Regions {
		if r.State == RegionParseFailed {
			return true
		}
	}
	return false
}

// RunStatus accumulates per-page outcomes for a document run. It is kept
// apart from DocumentResult so failures are reported but never mixed with
// table data.
type RunStatus struct {
	Pages []PageStatus
}

// Add appends a page status.
func (s *RunStatus) Add(p PageStatus) {
	s.Pages = append(s.Pages, p)
}

// Failures returns every page- or region-scoped error in page order.
func (s *RunStatus) Failures() []error {
	var errs []error
	for _, p := range s.Pages {
		if p.Err != nil {
			errs = append(errs, p.Err)
		}
		for _, r := range p.Regions {
			if r.Err != nil {
				errs = append(errs, r.Err)
			}
		}
	}
	return errs
}

// RegionCount returns the number of regions detected across all pages.
func (s *RunStatus) RegionCount() int {
	n := 0
	for _, p := range s.Pages {
		n += len(p.Regions)
	}
	return n
}
