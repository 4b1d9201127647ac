package domain

import (
	"testing"
	"time"

	metricdomain "github.com/smallbiznis/tractionlens/internal/metric/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession() *Session {
	return NewSession("01HZX3J5W7Q6V0K8T2M4N6P8R0", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
}

func TestParseStep(t *testing.T) {
	step, err := ParseStep(" Product_Metrics ")
	require.NoError(t, err)
	assert.Equal(t, StepProductMetrics, step)
	assert.Equal(t, int64(2), step.PillarID())

	_, err = ParseStep("pricing")
	assert.ErrorIs(t, err, ErrInvalidStep)
}

func TestStepNext(t *testing.T) {
	next, ok := StepPeopleMetrics.Next()
	require.True(t, ok)
	assert.Equal(t, StepReport, next)

	_, ok = StepReport.Next()
	assert.False(t, ok)
}

func TestGating(t *testing.T) {
	s := newTestSession()

	assert.True(t, s.CanVisit(StepCompanyProfile))
	assert.False(t, s.CanVisit(StepRevenueMetrics))
	assert.Equal(t, StepCompanyProfile, s.FirstIncomplete())

	s.Completed[StepCompanyProfile] = true
	s.Completed[StepRevenueMetrics] = true
	assert.True(t, s.CanVisit(StepProductMetrics))
	assert.False(t, s.CanVisit(StepReport))
	assert.Equal(t, StepProductMetrics, s.FirstIncomplete())

	s.Completed[StepProductMetrics] = true
	s.Completed[StepSystemMetrics] = true
	s.Completed[StepPeopleMetrics] = true
	assert.True(t, s.CanVisit(StepReport))
	assert.Equal(t, StepReport, s.FirstIncomplete())
}

func TestHistory(t *testing.T) {
	s := newTestSession()
	s.Completed[StepCompanyProfile] = true
	s.Completed[StepRevenueMetrics] = true

	s.MoveTo(StepRevenueMetrics)
	s.MoveTo(StepRevenueMetrics)
	s.MoveTo(StepProductMetrics)
	assert.Equal(t, []Step{StepCompanyProfile, StepRevenueMetrics}, s.History)

	require.True(t, s.Back())
	assert.Equal(t, StepRevenueMetrics, s.CurrentStep)
	require.True(t, s.Back())
	assert.Equal(t, StepCompanyProfile, s.CurrentStep)
	assert.False(t, s.Back())
	assert.Equal(t, StepCompanyProfile, s.CurrentStep)
}

func TestResetProgressPrunesLockedHistory(t *testing.T) {
	s := newTestSession()
	s.Completed[StepCompanyProfile] = true
	s.MoveTo(StepRevenueMetrics)
	s.Completed[StepRevenueMetrics] = true
	s.MoveTo(StepProductMetrics)
	s.Completed[StepProductMetrics] = true
	s.MoveTo(StepSystemMetrics)
	s.MoveTo(StepCompanyProfile)
	require.Equal(t, []Step{StepCompanyProfile, StepRevenueMetrics, StepProductMetrics, StepSystemMetrics}, s.History)

	s.Completed[StepCompanyProfile] = false
	s.ResetProgress()
	assert.Equal(t, []Step{StepCompanyProfile}, s.History)

	assert.False(t, s.Back())
	assert.Equal(t, StepCompanyProfile, s.CurrentStep)
	assert.Empty(t, s.History)
}

func TestBackSkipsLockedSteps(t *testing.T) {
	s := newTestSession()
	s.CurrentStep = StepRevenueMetrics
	s.History = []Step{StepCompanyProfile, StepProductMetrics, StepSystemMetrics}
	s.Completed[StepCompanyProfile] = true

	require.True(t, s.Back())
	assert.Equal(t, StepCompanyProfile, s.CurrentStep)
	assert.Empty(t, s.History)
}

func TestCacheMetricKeepsVisitorValue(t *testing.T) {
	s := newTestSession()
	rec := metricdomain.Record{
		AssociationID: 201, MetricID: 14, PillarID: 1, PillarName: "Revenue", Name: "Gross Margin",
		Units: "Percentage", Unit: metricdomain.UnitPercentage,
		MinValue: 0, MaxValue: 100, LoRangeValue: 50, HiRangeValue: 65,
	}

	s.CacheMetric(rec)
	assert.Equal(t, 50.0, s.Values["metric_1_14"])

	s.Values["metric_1_14"] = 42.0
	s.CacheMetric(rec)
	assert.Equal(t, 42.0, s.Values["metric_1_14"])
	assert.Equal(t, []string{"Gross Margin"}, s.MetricOrder)

	responses := s.Responses()
	require.Len(t, responses, 1)
	assert.Equal(t, "Revenue", responses[0].PillarName)
	assert.Equal(t, 42.0, responses[0].Value)

	s.ResetProgress()
	assert.Empty(t, s.MetricsCache)
	assert.Empty(t, s.Responses())
}
