package service_test

import (
	"context"
	"testing"

	"github.com/smallbiznis/tractionlens/internal/classification/domain"
	"github.com/smallbiznis/tractionlens/internal/classification/service"
	"github.com/smallbiznis/tractionlens/internal/config"
	"github.com/smallbiznis/tractionlens/internal/reference"
	referencedomain "github.com/smallbiznis/tractionlens/internal/reference/domain"
	"github.com/smallbiznis/tractionlens/internal/seed/seedtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) domain.Service {
	t.Helper()
	return service.New(service.Params{
		Log:    zap.NewNop(),
		Repo:   reference.NewRepository(seedtest.NewDB(t)),
		Config: config.NewStaticDiagnosticConfigHolder(config.DefaultDiagnosticConfig()),
	})
}

func TestDetermineGrowthStage(t *testing.T) {
	svc := newService(t)

	cases := []struct {
		revenue float64
		want    string
	}{
		{0.5, "Pre-Qualification"},
		{1.5, "Validation Seekers"},
		{1.99, "Traction Builders"},
		{999.99, "Expansion Navigators"},
	}

	for _, tc := range cases {
		result, err := svc.DetermineGrowthStage(context.Background(), tc.revenue)
		require.NoError(t, err)
		require.True(t, result.Determined, "revenue %v", tc.revenue)
		require.Len(t, result.Stages, 1)
		assert.Equal(t, tc.want, result.Primary().Name, "revenue %v", tc.revenue)
	}
}

func TestDetermineGrowthStageUndetermined(t *testing.T) {
	svc := newService(t)

	result, err := svc.DetermineGrowthStage(context.Background(), 1000.0)
	require.NoError(t, err)
	assert.False(t, result.Determined)
	assert.Empty(t, result.Stages)
	assert.Nil(t, result.Primary())
	assert.Equal(t, "Could not determine company stage", result.Description)
	assert.False(t, result.Qualified())
}

func TestDetermineGrowthStageBoundsAreInclusive(t *testing.T) {
	svc := newService(t)

	for _, revenue := range []float64{1.0, 1.98} {
		result, err := svc.DetermineGrowthStage(context.Background(), revenue)
		require.NoError(t, err)
		require.True(t, result.Determined)
		assert.Equal(t, "Validation Seekers", result.Primary().Name)
	}
}

func TestDetermineGrowthStageDisqualified(t *testing.T) {
	svc := newService(t)

	result, err := svc.DetermineGrowthStage(context.Background(), 0.5)
	require.NoError(t, err)
	assert.True(t, result.Disqualified())
	assert.False(t, result.Qualified())
}

func TestDetermineGrowthStageRejectsNegative(t *testing.T) {
	svc := newService(t)

	_, err := svc.DetermineGrowthStage(context.Background(), -0.1)
	assert.ErrorIs(t, err, domain.ErrInvalidRevenue)
}

func TestListIndustries(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	all, err := svc.ListIndustries(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 8)

	b2c, horizontal := int64(2), int64(1)
	scoped, err := svc.ListIndustries(ctx, &b2c, &horizontal)
	require.NoError(t, err)
	assert.Len(t, scoped, 4)

	// either side left open means every industry
	partial, err := svc.ListIndustries(ctx, &b2c, nil)
	require.NoError(t, err)
	assert.Len(t, partial, 8)

	b2b2c, vertical := int64(3), int64(2)
	empty, err := svc.ListIndustries(ctx, &b2b2c, &vertical)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestClassifyRevenueWarnings(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	mrr, err := svc.ClassifyRevenue(ctx, domain.RevenueRequest{Amount: 125, MonthsExisted: 12})
	require.NoError(t, err)
	assert.True(t, mrr.MRRInput)
	assert.InDelta(t, 1.5, mrr.AnnualRevenue, 1e-9)
	assert.Equal(t, "Validation Seekers", mrr.Stage.Primary().Name)
	assert.Empty(t, mrr.Warnings)

	large, err := svc.ClassifyRevenue(ctx, domain.RevenueRequest{Amount: 12, MonthsExisted: 48})
	require.NoError(t, err)
	require.Len(t, large.Warnings, 1)
	assert.Contains(t, large.Warnings[0], "advisory")

	small, err := svc.ClassifyRevenue(ctx, domain.RevenueRequest{Amount: 0.4, MonthsExisted: 36})
	require.NoError(t, err)
	assert.True(t, small.Stage.Disqualified())
	assert.Len(t, small.Warnings, 1)
}

// stageRepo serves a fixed stage table and nothing else.
type stageRepo struct {
	referencedomain.Repository
	stages []referencedomain.GrowthStage
}

func (r stageRepo) ListGrowthStages(context.Context) ([]referencedomain.GrowthStage, error) {
	return append([]referencedomain.GrowthStage(nil), r.stages...), nil
}

func TestDetermineGrowthStageReturnsEveryOverlappingBand(t *testing.T) {
	svc := service.New(service.Params{
		Log: zap.NewNop(),
		Repo: stageRepo{stages: []referencedomain.GrowthStage{
			{ID: 4, Name: "Overlap C", LowRange: 1, HighRange: 1.6},
			{ID: 2, Name: "Overlap B", LowRange: 1, HighRange: 3},
			{ID: 1, Name: "Overlap A", LowRange: 0, HighRange: 2},
			{ID: 5, Name: "Far", LowRange: 5, HighRange: 9},
		}},
		Config: config.NewStaticDiagnosticConfigHolder(config.DefaultDiagnosticConfig()),
	})

	result, err := svc.DetermineGrowthStage(context.Background(), 1.5)
	require.NoError(t, err)
	require.True(t, result.Determined)

	names := make([]string, 0, len(result.Stages))
	for _, stage := range result.Stages {
		names = append(names, stage.Name)
	}
	assert.Equal(t, []string{"Overlap A", "Overlap B", "Overlap C"}, names)
	require.NotNil(t, result.Primary())
	assert.Equal(t, "Overlap A", result.Primary().Name)

	result, err = svc.DetermineGrowthStage(context.Background(), 2.5)
	require.NoError(t, err)
	require.Len(t, result.Stages, 1)
	assert.EqualValues(t, 2, result.Stages[0].ID)
}
