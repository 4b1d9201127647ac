package domain

import (
	"context"
	"errors"

	referencedomain "github.com/smallbiznis/tractionlens/internal/reference/domain"
)

// UndeterminedStage is the description returned when no band contains the revenue.
const UndeterminedStage = "Could not determine company stage"

type Service interface {
	DetermineGrowthStage(ctx context.Context, revenue float64) (*StageResult, error)
	ListIndustries(ctx context.Context, saasTypeID, orientationID *int64) ([]referencedomain.Industry, error)
	ClassifyRevenue(ctx context.Context, req RevenueRequest) (*RevenueResult, error)
}

// StageResult lists every growth stage whose band contains the revenue,
// ordered by low range then id.
type StageResult struct {
	Revenue     float64                       `json:"revenue"`
	Determined  bool                          `json:"determined"`
	Stages      []referencedomain.GrowthStage `json:"stages"`
	Description string                        `json:"description,omitempty"`
}

// Primary returns the first matching stage, or nil when undetermined.
func (r StageResult) Primary() *referencedomain.GrowthStage {
	if !r.Determined || len(r.Stages) == 0 {
		return nil
	}
	return &r.Stages[0]
}

// Disqualified reports whether the company sits below the diagnostic's
// revenue floor.
func (r StageResult) Disqualified() bool {
	primary := r.Primary()
	return primary != nil && primary.Name == referencedomain.PreQualificationStage
}

// Qualified reports whether the wizard may proceed past the company profile.
func (r StageResult) Qualified() bool {
	return r.Determined && !r.Disqualified()
}

type RevenueRequest struct {
	Amount        float64 `json:"amount"`
	MonthsExisted int     `json:"months_existed"`
}

type RevenueResult struct {
	AnnualRevenue float64     `json:"annual_revenue"`
	MRRInput      bool        `json:"mrr_input"`
	Stage         StageResult `json:"stage"`
	Warnings      []string    `json:"warnings,omitempty"`
}

var (
	ErrInvalidRevenue       = errors.New("invalid_revenue")
	ErrInvalidMonthsExisted = errors.New("invalid_months_existed")
)
