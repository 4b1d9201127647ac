package service_test

import (
	"context"
	"testing"

	"github.com/smallbiznis/tractionlens/internal/metric/domain"
	"github.com/smallbiznis/tractionlens/internal/metric/repository"
	"github.com/smallbiznis/tractionlens/internal/metric/service"
	"github.com/smallbiznis/tractionlens/internal/seed"
	"github.com/smallbiznis/tractionlens/internal/seed/seedtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) domain.Service {
	t.Helper()
	return service.New(service.Params{
		Log:  zap.NewNop(),
		Repo: repository.Provide(seedtest.NewDB(t)),
	})
}

func ptr(v int64) *int64 { return &v }

func TestGetMetricsWildcardMonotonicity(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, pillarID := range []int64{1, 2, 3, 4} {
		broad, err := svc.GetMetrics(ctx, domain.Query{GrowthStageID: 2, PillarID: pillarID})
		require.NoError(t, err)

		broadIDs := make(map[int64]struct{}, len(broad))
		for _, rec := range broad {
			broadIDs[rec.AssociationID] = struct{}{}
		}

		for _, saasTypeID := range []int64{1, 2, 3} {
			narrow, err := svc.GetMetrics(ctx, domain.Query{GrowthStageID: 2, PillarID: pillarID, SaaSTypeID: ptr(saasTypeID)})
			require.NoError(t, err)

			for _, rec := range narrow {
				_, ok := broadIDs[rec.AssociationID]
				assert.True(t, ok, "association %d missing from unfiltered query", rec.AssociationID)
				if rec.SaaSTypeID != nil {
					assert.Equal(t, saasTypeID, *rec.SaaSTypeID)
				}
			}
		}
	}
}

func TestGetMetricsKeepsWildcardAndSpecificRows(t *testing.T) {
	svc := newService(t)

	records, err := svc.GetMetrics(context.Background(), domain.Query{
		GrowthStageID: 2,
		PillarID:      2,
		SaaSTypeID:    ptr(2),
		IndustryID:    ptr(2),
	})
	require.NoError(t, err)

	perMetric := map[int64]int{}
	for _, rec := range records {
		perMetric[rec.MetricID]++
		assert.NotEmpty(t, rec.MetricTypeName)
		assert.Equal(t, "Product", rec.PillarName)
	}
	assert.Equal(t, 2, perMetric[5])
	assert.Equal(t, 2, perMetric[9])

	collapsed := domain.MostSpecific(records)
	for _, rec := range collapsed {
		if rec.MetricID == 5 {
			require.NotNil(t, rec.SaaSTypeID)
			assert.Equal(t, 20.0, rec.LoRangeValue)
		}
	}
}

func TestGetMetricsSkipsDisabledAssociations(t *testing.T) {
	svc := newService(t)

	records, err := svc.GetMetrics(context.Background(), domain.Query{GrowthStageID: 2, PillarID: 1, SaaSTypeID: ptr(1)})
	require.NoError(t, err)
	for _, rec := range records {
		if rec.MetricID == 24 {
			assert.Nil(t, rec.SaaSTypeID)
		}
	}
}

func TestGetMetricsEmptyForPreQualification(t *testing.T) {
	svc := newService(t)

	records, err := svc.GetMetrics(context.Background(), domain.Query{GrowthStageID: 1, PillarID: 1})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGetMetricsValidatesQuery(t *testing.T) {
	svc := newService(t)

	_, err := svc.GetMetrics(context.Background(), domain.Query{PillarID: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidGrowthStage)

	_, err = svc.GetMetrics(context.Background(), domain.Query{GrowthStageID: 2})
	assert.ErrorIs(t, err, domain.ErrInvalidPillar)
}

func TestDefaultValueWithinBoundsForSeededAssociations(t *testing.T) {
	data, err := seed.LoadReferenceData()
	require.NoError(t, err)

	names := make(map[int64]string, len(data.Metrics))
	for _, m := range data.Metrics {
		names[m.ID] = m.Name
	}

	for _, a := range data.MetricAssociations {
		rec := domain.Record{
			AssociationID: a.ID,
			Name:          names[a.MetricID],
			MinValue:      a.MinValue,
			MaxValue:      a.MaxValue,
			LoRangeValue:  a.LoRangeValue,
			HiRangeValue:  a.HiRangeValue,
		}
		v := domain.DefaultValue(rec)
		assert.GreaterOrEqual(t, v, a.MinValue, "association %d", a.ID)
		assert.LessOrEqual(t, v, a.MaxValue, "association %d", a.ID)
		assert.Equal(t, v, domain.DefaultValue(rec), "association %d", a.ID)
	}
}

func TestGetSliders(t *testing.T) {
	svc := newService(t)

	views, err := svc.GetSliders(context.Background(), domain.Query{GrowthStageID: 2, PillarID: 1})
	require.NoError(t, err)
	require.NotEmpty(t, views)

	for _, view := range views {
		assert.Equal(t, view.Record.PersistentKey(), view.PersistentKey)
		assert.Positive(t, view.Step)
	}
}
