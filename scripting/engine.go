package scripting

import (
	"context"
)

// Engine evaluates report expressions (e.g., JavaScript).
type Engine interface {
	// Execute evaluates a script and returns its exported value.
	Execute(ctx context.Context, script string) (interface{}, error)

	// RegisterDOM exposes the report being exported to scripts.
	RegisterDOM(dom ReportDOM) error
}

// ReportDOM exposes the export state to the scripting engine. Values are
// read on every access, so a single registration follows the export from
// page to page.
type ReportDOM interface {
	// ReportName returns the report title.
	ReportName() string

	// PageNumber returns the 1-based number of the page being drawn.
	PageNumber() int

	// TotalPages returns the number of pages in the report.
	TotalPages() int
}
