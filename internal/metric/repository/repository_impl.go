package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/smallbiznis/tractionlens/internal/metric/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

type recordRow struct {
	AssociationID  int64           `gorm:"column:association_id"`
	MetricID       int64           `gorm:"column:metric_id"`
	Name           string          `gorm:"column:name"`
	Description    string          `gorm:"column:description"`
	BlogLink       sql.NullString  `gorm:"column:blog_link"`
	VideoLink      sql.NullString  `gorm:"column:video_link"`
	Units          string          `gorm:"column:units"`
	MetricTypeID   int64           `gorm:"column:metric_type_id"`
	MetricTypeName string          `gorm:"column:metric_type_name"`
	GrowthStageID  int64           `gorm:"column:growth_stage_id"`
	PillarID       int64           `gorm:"column:pillar_id"`
	PillarName     string          `gorm:"column:pillar_name"`
	SaaSTypeID     sql.NullInt64   `gorm:"column:saas_type_id"`
	IndustryID     sql.NullInt64   `gorm:"column:industry_id"`
	MinValue       sql.NullFloat64 `gorm:"column:min_value"`
	MaxValue       sql.NullFloat64 `gorm:"column:max_value"`
	LoRangeValue   sql.NullFloat64 `gorm:"column:lo_range_value"`
	HiRangeValue   sql.NullFloat64 `gorm:"column:hi_range_value"`
}

func (r *repo) List(ctx context.Context, q domain.Query) ([]domain.Record, error) {
	var (
		query strings.Builder
		args  = []any{true, q.GrowthStageID, q.PillarID}
	)
	query.WriteString(`SELECT ma.id AS association_id,
			m.id AS metric_id,
			m.name,
			m.description,
			m.blog_link,
			m.video_link,
			m.units,
			m.metric_type_id,
			mt.name AS metric_type_name,
			ma.growth_stage_id,
			ma.architecture_pillar_id AS pillar_id,
			ap.name AS pillar_name,
			ma.saas_type_id,
			ma.industry_id,
			ma.min_value,
			ma.max_value,
			ma.lo_range_value,
			ma.hi_range_value
		FROM metric_associations ma
		JOIN metrics m ON m.id = ma.metric_id
		JOIN metric_types mt ON mt.id = m.metric_type_id
		JOIN architecture_pillars ap ON ap.id = ma.architecture_pillar_id
		WHERE ma.enabled = ?
			AND ma.growth_stage_id = ?
			AND ma.architecture_pillar_id = ?`)

	if q.SaaSTypeID != nil {
		query.WriteString(` AND (ma.saas_type_id = ? OR ma.saas_type_id IS NULL)`)
		args = append(args, *q.SaaSTypeID)
	}
	if q.IndustryID != nil {
		query.WriteString(` AND (ma.industry_id = ? OR ma.industry_id IS NULL)`)
		args = append(args, *q.IndustryID)
	}
	query.WriteString(` ORDER BY ma.id`)

	var rows []recordRow
	if err := r.db.WithContext(ctx).Raw(query.String(), args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.Record{
			AssociationID:  row.AssociationID,
			MetricID:       row.MetricID,
			Name:           row.Name,
			Description:    row.Description,
			BlogLink:       row.BlogLink.String,
			VideoLink:      row.VideoLink.String,
			Units:          row.Units,
			Unit:           domain.ParseUnit(row.Units),
			MetricTypeID:   row.MetricTypeID,
			MetricTypeName: row.MetricTypeName,
			GrowthStageID:  row.GrowthStageID,
			PillarID:       row.PillarID,
			PillarName:     row.PillarName,
			SaaSTypeID:     nullableID(row.SaaSTypeID),
			IndustryID:     nullableID(row.IndustryID),
			MinValue:       row.MinValue.Float64,
			MaxValue:       row.MaxValue.Float64,
			LoRangeValue:   row.LoRangeValue.Float64,
			HiRangeValue:   row.HiRangeValue.Float64,
		})
	}

	return records, nil
}

func nullableID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}
