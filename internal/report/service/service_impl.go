package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tractionlens/internal/clock"
	"github.com/smallbiznis/tractionlens/internal/config"
	diagnosticdomain "github.com/smallbiznis/tractionlens/internal/diagnostic/domain"
	metricdomain "github.com/smallbiznis/tractionlens/internal/metric/domain"
	"github.com/smallbiznis/tractionlens/internal/observability/logger"
	"github.com/smallbiznis/tractionlens/internal/observability/metrics"
	"github.com/smallbiznis/tractionlens/internal/providers/pdf"
	referencedomain "github.com/smallbiznis/tractionlens/internal/reference/domain"
	"github.com/smallbiznis/tractionlens/internal/report/domain"
	"github.com/smallbiznis/tractionlens/internal/report/render"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Reference referencedomain.Repository
	Config    *config.DiagnosticConfigHolder
	Clock     clock.Clock
	Node      *snowflake.Node
	Renderer  *render.Renderer
	PDF       pdf.Provider
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	log       *zap.Logger
	reference referencedomain.Repository
	cfg       *config.DiagnosticConfigHolder
	clock     clock.Clock
	node      *snowflake.Node
	renderer  *render.Renderer
	pdf       pdf.Provider
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:       p.Log.Named("report.service"),
		reference: p.Reference,
		cfg:       p.Config,
		clock:     p.Clock,
		node:      p.Node,
		renderer:  p.Renderer,
		pdf:       p.PDF,
		metrics:   p.Metrics,
	}
}

func (s *Service) Generate(ctx context.Context, profile diagnosticdomain.Profile, responses []diagnosticdomain.MetricResponse) (*domain.Report, error) {
	if strings.TrimSpace(profile.GrowthStageName) == "" {
		return nil, domain.ErrProfileIncomplete
	}

	cfg := s.cfg.Get()
	now := s.clock.Now()
	log := logger.WithContext(ctx, s.log)

	report := &domain.Report{
		ID:           s.node.Generate().String(),
		Title:        domain.Title,
		GeneratedAt:  now,
		Header:       newHeader(profile),
		Sections:     []domain.Section{},
		NextSteps:    append([]string(nil), cfg.NextSteps...),
		FollowUpDate: now.AddDate(0, 0, cfg.FollowUpDays),
		Framework:    cfg.Framework,
	}

	sections := make(map[string]int)
	for _, resp := range responses {
		idx, ok := sections[resp.PillarName]
		if !ok {
			idx = len(report.Sections)
			sections[resp.PillarName] = idx
			report.Sections = append(report.Sections, domain.Section{
				Pillar:  resp.PillarName,
				Rows:    []domain.Row{},
				Flagged: []domain.FlaggedDetail{},
			})
		}
		section := &report.Sections[idx]

		unit := metricdomain.ParseUnit(resp.Unit)
		row := domain.Row{
			Metric:  resp.Name,
			Current: unit.Format(resp.Value),
			Target:  metricdomain.TargetRange(resp.TargetLowRange, resp.TargetHighRange, resp.Unit),
		}

		value, err := metricdomain.ParseValue(resp.Value)
		if err != nil {
			log.Warn("metric value could not be read as a number",
				zap.String("metric", resp.Name),
				zap.String("pillar", resp.PillarName),
				zap.Error(err),
			)
			s.metrics.RecordCoercionFailure(ctx, resp.PillarName)
			section.Rows = append(section.Rows, row)
			continue
		}

		row.Flagged = metricdomain.IsFlagged(value, resp.TargetLowRange, resp.TargetHighRange)
		section.Rows = append(section.Rows, row)
		if !row.Flagged {
			continue
		}

		detail, err := s.flaggedDetail(ctx, resp, row)
		if err != nil {
			return nil, err
		}
		section.Flagged = append(section.Flagged, detail)
		s.metrics.RecordFlaggedMetric(ctx, resp.PillarName)
	}

	log.Info("report generated",
		zap.String("report_id", report.ID),
		zap.Int("metrics", len(responses)),
		zap.Int("flagged", report.FlaggedCount()),
	)
	return report, nil
}

func (s *Service) Export(ctx context.Context, report *domain.Report, format domain.Format) (*domain.Document, error) {
	var (
		body []byte
		err  error
	)
	switch format {
	case domain.FormatMarkdown:
		body, err = s.renderer.Markdown(report)
	case domain.FormatHTML:
		body, err = s.renderer.HTML(report)
	case domain.FormatPDF:
		body, err = s.renderPDF(ctx, report)
	default:
		return nil, domain.ErrInvalidFormat
	}
	if err != nil {
		return nil, fmt.Errorf("render %s report: %w", format, err)
	}

	s.metrics.RecordReportGenerated(ctx, string(format))
	return &domain.Document{
		Filename:    report.Filename(format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func (s *Service) flaggedDetail(ctx context.Context, resp diagnosticdomain.MetricResponse, row domain.Row) (domain.FlaggedDetail, error) {
	detail := domain.FlaggedDetail{
		Metric:  row.Metric,
		Current: row.Current,
		Target:  row.Target,
	}

	recommendations, err := s.reference.ListRecommendationsByMetric(ctx, resp.MetricID)
	if err != nil {
		return domain.FlaggedDetail{}, fmt.Errorf("list recommendations: %w", err)
	}
	for _, rec := range recommendations {
		detail.Recommendations = append(detail.Recommendations, rec.Text)
	}
	if len(detail.Recommendations) == 0 {
		detail.Notice = domain.FallbackRecommendation
	}

	if resp.BlogLink != "" {
		detail.Resources = append(detail.Resources, domain.Resource{Label: domain.GuideLabel, URL: resp.BlogLink})
	}
	if resp.VideoLink != "" {
		detail.Resources = append(detail.Resources, domain.Resource{Label: domain.VideoLabel, URL: resp.VideoLink})
	}
	return detail, nil
}

func (s *Service) renderPDF(ctx context.Context, report *domain.Report) ([]byte, error) {
	data := pdf.ReportData{
		Title:       report.Title,
		GeneratedAt: report.GeneratedAt,
	}
	for _, section := range report.Sections {
		for _, row := range section.Rows {
			data.Rows = append(data.Rows, pdf.ReportRow{
				Pillar: section.Pillar,
				Stage:  report.Header.GrowthStage,
				Metric: row.Metric,
				Value:  row.Current,
			})
		}
	}

	reader, err := s.pdf.RenderReport(ctx, data)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(reader)
}

func newHeader(profile diagnosticdomain.Profile) domain.Header {
	revenue := strconv.FormatFloat(math.Round(profile.AnnualRevenue*100)/100, 'f', -1, 64)
	return domain.Header{
		AnnualRevenue: "$" + revenue + "M",
		GrowthStage:   profile.GrowthStageName,
		BusinessModel: fmt.Sprintf("%s (%s)", profile.SaaSType, profile.Orientation),
		Industry:      profile.Industry,
	}
}
