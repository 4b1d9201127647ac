package domain

import (
	"context"
	"errors"

	diagnosticdomain "github.com/smallbiznis/tractionlens/internal/diagnostic/domain"
)

type Service interface {
	// Generate compiles the report for a finished questionnaire. It reads
	// reference data and never changes the session.
	Generate(ctx context.Context, profile diagnosticdomain.Profile, responses []diagnosticdomain.MetricResponse) (*Report, error)
	Export(ctx context.Context, report *Report, format Format) (*Document, error)
}

var (
	ErrInvalidFormat     = errors.New("invalid_report_format")
	ErrProfileIncomplete = errors.New("report_profile_incomplete")
)
