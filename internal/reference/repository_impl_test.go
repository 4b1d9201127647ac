package reference_test

import (
	"context"
	"testing"

	"github.com/smallbiznis/tractionlens/internal/reference"
	"github.com/smallbiznis/tractionlens/internal/seed/seedtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListIndustriesByProfile(t *testing.T) {
	repo := reference.NewRepository(seedtest.NewDB(t))
	ctx := context.Background()

	industries, err := repo.ListIndustriesByProfile(ctx, 2, 1)
	require.NoError(t, err)

	names := make([]string, 0, len(industries))
	for _, item := range industries {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"E-commerce & Retail", "Education", "Fintech", "Healthcare"}, names)

	none, err := repo.ListIndustriesByProfile(ctx, 3, 2)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListPillarsOrdered(t *testing.T) {
	repo := reference.NewRepository(seedtest.NewDB(t))

	pillars, err := repo.ListPillars(context.Background())
	require.NoError(t, err)
	require.Len(t, pillars, 4)
	assert.Equal(t, "Revenue", pillars[0].Name)
	assert.Equal(t, "People", pillars[3].Name)
}

func TestListRecommendationsInInsertionOrder(t *testing.T) {
	repo := reference.NewRepository(seedtest.NewDB(t))

	recs, err := repo.ListRecommendationsByMetric(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Less(t, recs[0].ID, recs[1].ID)

	none, err := repo.ListRecommendationsByMetric(context.Background(), 9)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFindByName(t *testing.T) {
	repo := reference.NewRepository(seedtest.NewDB(t))
	ctx := context.Background()

	saasType, err := repo.FindSaaSTypeByName(ctx, "B2C")
	require.NoError(t, err)
	require.NotNil(t, saasType)
	assert.Equal(t, int64(2), saasType.ID)

	lower, err := repo.FindSaaSTypeByName(ctx, "b2c")
	require.NoError(t, err)
	require.NotNil(t, lower)
	assert.Equal(t, saasType.ID, lower.ID)

	orientation, err := repo.FindOrientationByName(ctx, "horizontal")
	require.NoError(t, err)
	require.NotNil(t, orientation)
	assert.Equal(t, "Horizontal", orientation.Name)

	industry, err := repo.FindIndustryByName(ctx, "HEALTHCARE")
	require.NoError(t, err)
	require.NotNil(t, industry)
	assert.Equal(t, "Healthcare", industry.Name)

	missing, err := repo.FindIndustryByName(ctx, "Aerospace")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
