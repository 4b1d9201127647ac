package domain

import (
	"context"
	"errors"
)

type Repository interface {
	List(ctx context.Context, q Query) ([]Record, error)
}

type Service interface {
	GetMetrics(ctx context.Context, q Query) ([]Record, error)
	GetSliders(ctx context.Context, q Query) ([]SliderView, error)
}

// NoMetricsMessage is shown when a stage and pillar have no metrics.
const NoMetricsMessage = "no metrics found"

var (
	ErrInvalidGrowthStage = errors.New("invalid_growth_stage")
	ErrInvalidPillar      = errors.New("invalid_pillar")
)
