package pdf

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReport(t *testing.T) {
	rows := make([]ReportRow, 0, 40)
	for i := 0; i < 40; i++ {
		rows = append(rows, ReportRow{Pillar: "Revenue", Stage: "Validation Seekers", Metric: "Gross Margin", Value: "45.0%"})
	}

	reader, err := New().RenderReport(context.Background(), ReportData{
		Title:       "SaaS Traction Diagnostic Report",
		GeneratedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Rows:        rows,
	})
	require.NoError(t, err)

	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(body[:4]))
}

func TestRenderReportCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().RenderReport(ctx, ReportData{Title: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}
