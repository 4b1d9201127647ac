package reference

import (
	"context"

	"github.com/smallbiznis/tractionlens/internal/reference/domain"
	"github.com/smallbiznis/tractionlens/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	db           *gorm.DB
	saasTypes    repository.Repository[domain.SaaSType]
	orientations repository.Repository[domain.Orientation]
	industries   repository.Repository[domain.Industry]
	stages       repository.Repository[domain.GrowthStage]
	pillars      repository.Repository[domain.ArchitecturePillar]
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repo{
		db:           db,
		saasTypes:    repository.ProvideStore[domain.SaaSType](db),
		orientations: repository.ProvideStore[domain.Orientation](db),
		industries:   repository.ProvideStore[domain.Industry](db),
		stages:       repository.ProvideStore[domain.GrowthStage](db),
		pillars:      repository.ProvideStore[domain.ArchitecturePillar](db),
	}
}

func (r *repo) ListSaaSTypes(ctx context.Context) ([]domain.SaaSType, error) {
	return r.saasTypes.Find(ctx, nil, repository.OrderBy("id"))
}

func (r *repo) ListOrientations(ctx context.Context) ([]domain.Orientation, error) {
	return r.orientations.Find(ctx, nil, repository.OrderBy("id"))
}

func (r *repo) ListIndustries(ctx context.Context) ([]domain.Industry, error) {
	return r.industries.Find(ctx, nil, repository.OrderBy("name"))
}

func (r *repo) ListIndustriesByProfile(ctx context.Context, saasTypeID, orientationID int64) ([]domain.Industry, error) {
	var industries []domain.Industry
	err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT i.id, i.name
			FROM industries i
			JOIN industry_mappings im ON im.industry_id = i.id
			WHERE im.saas_type_id = ? AND im.orientation_id = ?
			ORDER BY i.name`, saasTypeID, orientationID).
		Scan(&industries).Error
	if err != nil {
		return nil, err
	}

	return industries, nil
}

func (r *repo) ListGrowthStages(ctx context.Context) ([]domain.GrowthStage, error) {
	return r.stages.Find(ctx, nil, repository.OrderBy("low_range, id"))
}

func (r *repo) ListPillars(ctx context.Context) ([]domain.ArchitecturePillar, error) {
	return r.pillars.Find(ctx, nil,
		repository.Where("enabled = ?", true),
		repository.OrderBy("display_order, id"),
	)
}

func (r *repo) ListRecommendationsByMetric(ctx context.Context, metricID int64) ([]domain.Recommendation, error) {
	type row struct {
		ID       int64  `gorm:"column:id"`
		MetricID int64  `gorm:"column:metric_id"`
		Text     string `gorm:"column:recommendation"`
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, metric_id, recommendation FROM recommendations WHERE metric_id = ? ORDER BY id`, metricID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]domain.Recommendation, 0, len(rows))
	for _, item := range rows {
		items = append(items, domain.Recommendation{
			ID:       item.ID,
			MetricID: item.MetricID,
			Text:     item.Text,
		})
	}

	return items, nil
}

func (r *repo) FindSaaSTypeByName(ctx context.Context, name string) (*domain.SaaSType, error) {
	return first(r.saasTypes.Find(ctx, nil, repository.Where("LOWER(name) = LOWER(?)", name)))
}

func (r *repo) FindOrientationByName(ctx context.Context, name string) (*domain.Orientation, error) {
	return first(r.orientations.Find(ctx, nil, repository.Where("LOWER(name) = LOWER(?)", name)))
}

func (r *repo) FindIndustryByName(ctx context.Context, name string) (*domain.Industry, error) {
	return first(r.industries.Find(ctx, nil, repository.Where("LOWER(name) = LOWER(?)", name)))
}

// first returns nil without error when nothing matched.
func first[T any](items []T, err error) (*T, error) {
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return &items[0], nil
}
