package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/smallbiznis/tractionlens/internal/cache"
	"github.com/smallbiznis/tractionlens/internal/classification/domain"
	"github.com/smallbiznis/tractionlens/internal/config"
	"github.com/smallbiznis/tractionlens/internal/observability/metrics"
	referencedomain "github.com/smallbiznis/tractionlens/internal/reference/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	stageCacheKey = "growth_stages"
	stageCacheTTL = time.Hour
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle                `optional:"true"`
	Log       *zap.Logger
	Repo      referencedomain.Repository
	Config    *config.DiagnosticConfigHolder
	Metrics   *metrics.Metrics            `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	repo    referencedomain.Repository
	cfg     *config.DiagnosticConfigHolder
	metrics *metrics.Metrics
	stages  cache.Cache[string, []referencedomain.GrowthStage]
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("classification.service"),
		repo:    p.Repo,
		cfg:     p.Config,
		metrics: p.Metrics,
		stages:  cache.Bind(p.Lifecycle, cache.NewTTLCache[string, []referencedomain.GrowthStage]()),
	}
}

func (s *Service) DetermineGrowthStage(ctx context.Context, revenue float64) (*domain.StageResult, error) {
	if math.IsNaN(revenue) || revenue < 0 {
		return nil, domain.ErrInvalidRevenue
	}

	stages, err := s.growthStages(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]referencedomain.GrowthStage, 0, 1)
	for _, stage := range stages {
		if stage.Contains(revenue) {
			matched = append(matched, stage)
		}
	}

	result := &domain.StageResult{
		Revenue:    revenue,
		Determined: len(matched) > 0,
		Stages:     matched,
	}
	if !result.Determined {
		result.Description = domain.UndeterminedStage
	}

	outcome := "determined"
	switch {
	case !result.Determined:
		outcome = "undetermined"
	case result.Disqualified():
		outcome = "disqualified"
	}
	s.metrics.RecordStageResolution(ctx, outcome)

	return result, nil
}

func (s *Service) growthStages(ctx context.Context) ([]referencedomain.GrowthStage, error) {
	if stages, ok := s.stages.Get(stageCacheKey); ok {
		return stages, nil
	}

	stages, err := s.repo.ListGrowthStages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list growth stages: %w", err)
	}
	sort.SliceStable(stages, func(i, j int) bool {
		if stages[i].LowRange == stages[j].LowRange {
			return stages[i].ID < stages[j].ID
		}
		return stages[i].LowRange < stages[j].LowRange
	})

	s.stages.Set(stageCacheKey, stages, stageCacheTTL)
	return stages, nil
}

func (s *Service) ListIndustries(ctx context.Context, saasTypeID, orientationID *int64) ([]referencedomain.Industry, error) {
	if saasTypeID == nil || orientationID == nil {
		return s.repo.ListIndustries(ctx)
	}
	return s.repo.ListIndustriesByProfile(ctx, *saasTypeID, *orientationID)
}

func (s *Service) ClassifyRevenue(ctx context.Context, req domain.RevenueRequest) (*domain.RevenueResult, error) {
	cfg := s.cfg.Get()

	arr, fromMRR, err := domain.AnnualRecurringRevenue(req.Amount, req.MonthsExisted, cfg)
	if err != nil {
		return nil, err
	}

	stage, err := s.DetermineGrowthStage(ctx, arr)
	if err != nil {
		return nil, err
	}

	result := &domain.RevenueResult{
		AnnualRevenue: arr,
		MRRInput:      fromMRR,
		Stage:         *stage,
	}
	if arr > cfg.AdvisoryRevenueCeiling {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Annual revenue above $%gM. Targets are calibrated for earlier stages, so treat the results as advisory.",
			cfg.AdvisoryRevenueCeiling,
		))
	}
	switch {
	case !stage.Determined:
		result.Warnings = append(result.Warnings, domain.UndeterminedStage)
	case stage.Disqualified():
		result.Warnings = append(result.Warnings,
			"Annual revenue is below the minimum for this diagnostic. Focus on product market fit before scaling.")
	}

	s.log.Debug("revenue classified",
		zap.Float64("annual_revenue", arr),
		zap.Bool("mrr_input", fromMRR),
		zap.Bool("determined", stage.Determined),
	)

	return result, nil
}
