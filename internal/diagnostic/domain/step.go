package domain

import "strings"

// Step is a page of the diagnostic wizard.
type Step string

const (
	StepCompanyProfile Step = "company_profile"
	StepRevenueMetrics Step = "revenue_metrics"
	StepProductMetrics Step = "product_metrics"
	StepSystemMetrics  Step = "system_metrics"
	StepPeopleMetrics  Step = "people_metrics"
	StepReport         Step = "report"
)

// Steps lists the wizard in order. Each step requires every earlier step to
// be complete.
var Steps = []Step{
	StepCompanyProfile,
	StepRevenueMetrics,
	StepProductMetrics,
	StepSystemMetrics,
	StepPeopleMetrics,
	StepReport,
}

var stepPillars = map[Step]int64{
	StepRevenueMetrics: 1,
	StepProductMetrics: 2,
	StepSystemMetrics:  3,
	StepPeopleMetrics:  4,
}

func ParseStep(raw string) (Step, error) {
	step := Step(strings.ToLower(strings.TrimSpace(raw)))
	if step.Index() < 0 {
		return "", ErrInvalidStep
	}
	return step, nil
}

// Index is the step's position in Steps, or -1 when unknown.
func (s Step) Index() int {
	for i, step := range Steps {
		if step == s {
			return i
		}
	}
	return -1
}

// PillarID returns the architecture pillar a metric step collects, or 0.
func (s Step) PillarID() int64 {
	return stepPillars[s]
}

func (s Step) IsPillar() bool {
	return s.PillarID() != 0
}

func (s Step) Terminal() bool {
	return s == StepReport
}

// Next returns the following step. The report step has no successor.
func (s Step) Next() (Step, bool) {
	i := s.Index()
	if i < 0 || i+1 >= len(Steps) {
		return "", false
	}
	return Steps[i+1], true
}
