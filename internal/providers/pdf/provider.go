package pdf

import (
	"context"
	"io"
	"time"
)

type Provider interface {
	RenderReport(ctx context.Context, data ReportData) (io.Reader, error)
}

// ReportData is the flattened report printed as a single table.
type ReportData struct {
	Title       string
	GeneratedAt time.Time
	Rows        []ReportRow
}

type ReportRow struct {
	Pillar string
	Stage  string
	Metric string
	Value  string
}
