package domain

import (
	"math"
	"testing"

	"github.com/smallbiznis/tractionlens/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnualRecurringRevenue(t *testing.T) {
	cfg := config.DefaultDiagnosticConfig()

	cases := []struct {
		name    string
		amount  float64
		months  int
		want    float64
		fromMRR bool
	}{
		{name: "young company enters MRR in thousands", amount: 125, months: 12, want: 1.5, fromMRR: true},
		{name: "threshold month enters ARR", amount: 1.5, months: 24, want: 1.5},
		{name: "older company enters ARR", amount: 42, months: 120, want: 42},
		{name: "zero revenue", amount: 0, months: 1, want: 0, fromMRR: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			arr, fromMRR, err := AnnualRecurringRevenue(tc.amount, tc.months, cfg)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, arr, 1e-9)
			assert.Equal(t, tc.fromMRR, fromMRR)
		})
	}
}

func TestAnnualRecurringRevenueRejectsBadInput(t *testing.T) {
	cfg := config.DefaultDiagnosticConfig()

	_, _, err := AnnualRecurringRevenue(-1, 12, cfg)
	assert.ErrorIs(t, err, ErrInvalidRevenue)

	_, _, err = AnnualRecurringRevenue(math.NaN(), 12, cfg)
	assert.ErrorIs(t, err, ErrInvalidRevenue)

	_, _, err = AnnualRecurringRevenue(1, 0, cfg)
	assert.ErrorIs(t, err, ErrInvalidMonthsExisted)

	_, _, err = AnnualRecurringRevenue(1, 241, cfg)
	assert.ErrorIs(t, err, ErrInvalidMonthsExisted)
}
