package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/smallbiznis/tractionlens/internal/reference/domain"
	"github.com/smallbiznis/tractionlens/pkg/db"
	"github.com/smallbiznis/tractionlens/pkg/repository"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Counts maps table name to row count.
type Counts map[string]int64

var group singleflight.Group

// EnsureReferenceData inserts the embedded reference rows. Rows that already
// exist are left untouched, so calling it again is a no-op. Concurrent calls
// against the same database share one run.
func EnsureReferenceData(ctx context.Context, conn *gorm.DB) (Counts, error) {
	if conn == nil {
		return nil, errors.New("seed database handle is required")
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, eris.Wrap(err, "resolve sql handle")
	}

	key := fmt.Sprintf("reference:%p", sqlDB)
	v, err, _ := group.Do(key, func() (any, error) {
		data, err := LoadReferenceData()
		if err != nil {
			return nil, err
		}
		if err := insertAll(ctx, conn, data); err != nil {
			return nil, err
		}
		return CountRows(ctx, conn)
	})
	if err != nil {
		return nil, err
	}
	return v.(Counts), nil
}

func insertAll(ctx context.Context, conn *gorm.DB, data *ReferenceData) error {
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			table string
			rows  any
			n     int
		}{
			{"saas_types", &data.SaaSTypes, len(data.SaaSTypes)},
			{"orientations", &data.Orientations, len(data.Orientations)},
			{"industries", &data.Industries, len(data.Industries)},
			{"growth_stages", &data.GrowthStages, len(data.GrowthStages)},
			{"architecture_pillars", &data.Pillars, len(data.Pillars)},
			{"metric_types", &data.MetricTypes, len(data.MetricTypes)},
			{"metrics", &data.Metrics, len(data.Metrics)},
			{"industry_mappings", &data.IndustryMappings, len(data.IndustryMappings)},
			{"metric_associations", &data.MetricAssociations, len(data.MetricAssociations)},
			{"recommendations", &data.Recommendations, len(data.Recommendations)},
		}

		for _, step := range steps {
			if step.n == 0 {
				continue
			}
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(step.rows).Error
			if err != nil && !db.IsDuplicateKeyErr(err) {
				return eris.Wrapf(err, "seed %s", step.table)
			}
		}
		return nil
	})
}

// CountRows reports the row count of every reference table.
func CountRows(ctx context.Context, conn *gorm.DB) (Counts, error) {
	counts := Counts{}
	var err error
	add := func(table string, n int64, cerr error) {
		if err != nil {
			return
		}
		if cerr != nil {
			err = eris.Wrapf(cerr, "count %s", table)
			return
		}
		counts[table] = n
	}

	add(count[domain.SaaSType](ctx, conn, "saas_types"))
	add(count[domain.Orientation](ctx, conn, "orientations"))
	add(count[domain.Industry](ctx, conn, "industries"))
	add(count[domain.GrowthStage](ctx, conn, "growth_stages"))
	add(count[domain.ArchitecturePillar](ctx, conn, "architecture_pillars"))
	add(count[domain.MetricType](ctx, conn, "metric_types"))
	add(count[domain.Metric](ctx, conn, "metrics"))
	add(count[domain.IndustryMapping](ctx, conn, "industry_mappings"))
	add(count[domain.MetricAssociation](ctx, conn, "metric_associations"))
	add(count[domain.Recommendation](ctx, conn, "recommendations"))

	if err != nil {
		return nil, err
	}
	return counts, nil
}

func count[T any](ctx context.Context, conn *gorm.DB, table string) (string, int64, error) {
	n, err := repository.ProvideStore[T](conn).Count(ctx, nil)
	return table, n, err
}
