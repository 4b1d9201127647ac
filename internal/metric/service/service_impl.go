package service

import (
	"context"
	"fmt"

	"github.com/smallbiznis/tractionlens/internal/metric/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:  p.Log.Named("metric.service"),
		repo: p.Repo,
	}
}

// GetMetrics returns every enabled association matching the query, wildcard
// rows included. It does not collapse duplicates of the same metric.
func (s *Service) GetMetrics(ctx context.Context, q domain.Query) ([]domain.Record, error) {
	if q.GrowthStageID <= 0 {
		return nil, domain.ErrInvalidGrowthStage
	}
	if q.PillarID <= 0 {
		return nil, domain.ErrInvalidPillar
	}

	records, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}

	s.log.Debug("metrics resolved",
		zap.Int64("growth_stage_id", q.GrowthStageID),
		zap.Int64("pillar_id", q.PillarID),
		zap.Int("count", len(records)),
	)

	return records, nil
}

func (s *Service) GetSliders(ctx context.Context, q domain.Query) ([]domain.SliderView, error) {
	records, err := s.GetMetrics(ctx, q)
	if err != nil {
		return nil, err
	}

	views := make([]domain.SliderView, 0, len(records))
	for _, rec := range records {
		views = append(views, domain.NewSliderView(rec))
	}
	return views, nil
}
