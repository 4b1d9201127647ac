package domain

import "context"

// Repository reads the seeded reference tables.
type Repository interface {
	ListSaaSTypes(ctx context.Context) ([]SaaSType, error)
	ListOrientations(ctx context.Context) ([]Orientation, error)
	ListIndustries(ctx context.Context) ([]Industry, error)
	ListIndustriesByProfile(ctx context.Context, saasTypeID, orientationID int64) ([]Industry, error)
	ListGrowthStages(ctx context.Context) ([]GrowthStage, error)
	ListPillars(ctx context.Context) ([]ArchitecturePillar, error)
	ListRecommendationsByMetric(ctx context.Context, metricID int64) ([]Recommendation, error)
	FindSaaSTypeByName(ctx context.Context, name string) (*SaaSType, error)
	FindOrientationByName(ctx context.Context, name string) (*Orientation, error)
	FindIndustryByName(ctx context.Context, name string) (*Industry, error)
}
