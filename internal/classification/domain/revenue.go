package domain

import (
	"math"

	"github.com/smallbiznis/tractionlens/internal/config"
)

// AnnualRecurringRevenue converts the revenue input to ARR in millions.
// Companies younger than the MRR threshold enter monthly revenue in
// thousands; everyone else enters ARR in millions directly.
func AnnualRecurringRevenue(amount float64, monthsExisted int, cfg config.DiagnosticConfig) (arr float64, fromMRR bool, err error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, false, ErrInvalidRevenue
	}
	if monthsExisted < cfg.MinMonthsExisted || monthsExisted > cfg.MaxMonthsExisted {
		return 0, false, ErrInvalidMonthsExisted
	}

	if monthsExisted < cfg.MRRThresholdMonths {
		return amount * 12 / 1000, true, nil
	}
	return amount, false, nil
}
