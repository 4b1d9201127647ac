package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) RenderReport(ctx context.Context, data ReportData) (io.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, data.Title, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(8,
		text.NewCol(12, "Generated: "+data.GeneratedAt.UTC().Format("2006-01-02 15:04"), props.Text{
			Size:  9,
			Style: fontstyle.Italic,
		}),
	)

	// Table Header
	m.AddRow(10,
		text.NewCol(2, "Pillar", props.Text{Style: fontstyle.Bold, Size: 9, Top: 3}),
		text.NewCol(3, "Stage", props.Text{Style: fontstyle.Bold, Size: 9, Top: 3}),
		text.NewCol(5, "Metric", props.Text{Style: fontstyle.Bold, Size: 9, Top: 3}),
		text.NewCol(2, "Value", props.Text{Style: fontstyle.Bold, Size: 9, Top: 3, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	for _, row := range data.Rows {
		m.AddRow(10,
			text.NewCol(2, row.Pillar, props.Text{Size: 9}),
			text.NewCol(3, row.Stage, props.Text{Size: 9}),
			text.NewCol(5, row.Metric, props.Text{Size: 9}),
			text.NewCol(2, row.Value, props.Text{Size: 9, Align: align.Right}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate report pdf: %w", err)
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
