package domain

import (
	"time"

	metricdomain "github.com/smallbiznis/tractionlens/internal/metric/domain"
)

// Selection labels meaning "no filter" for a profile dimension.
const (
	AllSaaSTypes    = "All SaaS Types"
	AllOrientations = "All Orientations"
	AllIndustries   = "All Industries"
)

// CachedMetric is what a session remembers about a metric shown on a pillar
// step, keyed by metric name in MetricsCache.
type CachedMetric struct {
	PersistentKey   string  `json:"persistent_key"`
	PillarID        int64   `json:"pillar_id"`
	PillarName      string  `json:"pillar_name"`
	MetricID        int64   `json:"metric_id"`
	Unit            string  `json:"unit"`
	TargetLowRange  float64 `json:"target_low_range"`
	TargetHighRange float64 `json:"target_high_range"`
	MinValue        float64 `json:"min_value"`
	MaxValue        float64 `json:"max_value"`
	BlogLink        string  `json:"blog_link"`
	VideoLink       string  `json:"video_link"`
}

// Session is the per-visitor wizard state.
type Session struct {
	ID                  string                  `json:"id"`
	SelectedSaaSType    string                  `json:"selected_saas_type"`
	SelectedOrientation string                  `json:"selected_orientation"`
	SelectedIndustry    string                  `json:"selected_industry"`
	SaaSTypeID          *int64                  `json:"saas_type_id,omitempty"`
	OrientationID       *int64                  `json:"orientation_id,omitempty"`
	IndustryID          *int64                  `json:"industry_id,omitempty"`
	MonthsExisted       int                     `json:"months_existed"`
	RevenueInput        float64                 `json:"revenue_input"`
	AnnualRevenue       float64                 `json:"annual_revenue"`
	GrowthStageID       int64                   `json:"growth_stage_id"`
	GrowthStageName     string                  `json:"growth_stage_name"`
	Completed           map[Step]bool           `json:"completed"`
	MetricsCache        map[string]CachedMetric `json:"metrics_cache"`
	MetricOrder         []string                `json:"metric_order"`
	Values              map[string]any          `json:"values"`
	History             []Step                  `json:"history"`
	CurrentStep         Step                    `json:"current_step"`
	CreatedAt           time.Time               `json:"created_at"`
	UpdatedAt           time.Time               `json:"updated_at"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		Completed:    map[Step]bool{},
		MetricsCache: map[string]CachedMetric{},
		Values:       map[string]any{},
		CurrentStep:  StepCompanyProfile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Normalize fills maps left nil by a decoder.
func (s *Session) Normalize() *Session {
	if s.Completed == nil {
		s.Completed = map[Step]bool{}
	}
	if s.MetricsCache == nil {
		s.MetricsCache = map[string]CachedMetric{}
	}
	if s.Values == nil {
		s.Values = map[string]any{}
	}
	if s.CurrentStep == "" {
		s.CurrentStep = StepCompanyProfile
	}
	return s
}

// FirstIncomplete returns the earliest step that is not complete. The report
// step is never marked complete, so it is returned once every other step is.
func (s *Session) FirstIncomplete() Step {
	for _, step := range Steps {
		if !s.Completed[step] {
			return step
		}
	}
	return StepReport
}

// CanVisit reports whether every step before target is complete.
func (s *Session) CanVisit(target Step) bool {
	idx := target.Index()
	if idx < 0 {
		return false
	}
	for _, step := range Steps[:idx] {
		if !s.Completed[step] {
			return false
		}
	}
	return true
}

// MoveTo records the current step on the history stack and switches to target.
func (s *Session) MoveTo(target Step) {
	if s.CurrentStep == target {
		return
	}
	s.History = append(s.History, s.CurrentStep)
	s.CurrentStep = target
}

// Back pops the history stack, skipping steps that are locked again. It
// reports false when there is nowhere to go.
func (s *Session) Back() bool {
	for len(s.History) > 0 {
		last := len(s.History) - 1
		prev := s.History[last]
		s.History = s.History[:last]
		if prev == s.CurrentStep || !s.CanVisit(prev) {
			continue
		}
		s.CurrentStep = prev
		return true
	}
	return false
}

// ResetProgress drops every metric step result, keeping the profile. History
// entries for steps that are no longer reachable are pruned.
func (s *Session) ResetProgress() {
	for _, step := range Steps[1:] {
		delete(s.Completed, step)
	}
	s.MetricsCache = map[string]CachedMetric{}
	s.MetricOrder = nil
	s.Values = map[string]any{}

	kept := s.History[:0]
	for _, step := range s.History {
		if s.CanVisit(step) {
			kept = append(kept, step)
		}
	}
	s.History = kept
}

// CacheMetric stores a resolved metric and seeds its value with the default
// when the visitor has not set one.
func (s *Session) CacheMetric(rec metricdomain.Record) {
	key := rec.PersistentKey()
	if _, ok := s.MetricsCache[rec.Name]; !ok {
		s.MetricOrder = append(s.MetricOrder, rec.Name)
	}
	s.MetricsCache[rec.Name] = CachedMetric{
		PersistentKey:   key,
		PillarID:        rec.PillarID,
		PillarName:      rec.PillarName,
		MetricID:        rec.MetricID,
		Unit:            rec.Units,
		TargetLowRange:  rec.LoRangeValue,
		TargetHighRange: rec.HiRangeValue,
		MinValue:        rec.MinValue,
		MaxValue:        rec.MaxValue,
		BlogLink:        rec.BlogLink,
		VideoLink:       rec.VideoLink,
	}
	if _, ok := s.Values[key]; !ok {
		s.Values[key] = metricdomain.DefaultValue(rec)
	}
}

// MetricByKey looks up a cached metric by persistent key.
func (s *Session) MetricByKey(key string) (string, CachedMetric, bool) {
	for _, name := range s.MetricOrder {
		cached := s.MetricsCache[name]
		if cached.PersistentKey == key {
			return name, cached, true
		}
	}
	return "", CachedMetric{}, false
}

func (s *Session) Profile() Profile {
	return Profile{
		SaaSType:        s.SelectedSaaSType,
		Orientation:     s.SelectedOrientation,
		Industry:        s.SelectedIndustry,
		MonthsExisted:   s.MonthsExisted,
		AnnualRevenue:   s.AnnualRevenue,
		GrowthStageID:   s.GrowthStageID,
		GrowthStageName: s.GrowthStageName,
	}
}

// Responses returns the cached metrics with their values in the order the
// visitor first saw them.
func (s *Session) Responses() []MetricResponse {
	out := make([]MetricResponse, 0, len(s.MetricOrder))
	for _, name := range s.MetricOrder {
		cached, ok := s.MetricsCache[name]
		if !ok {
			continue
		}
		value, ok := s.Values[cached.PersistentKey]
		if !ok {
			continue
		}
		out = append(out, MetricResponse{
			Name:            name,
			PersistentKey:   cached.PersistentKey,
			PillarID:        cached.PillarID,
			PillarName:      cached.PillarName,
			MetricID:        cached.MetricID,
			Unit:            cached.Unit,
			TargetLowRange:  cached.TargetLowRange,
			TargetHighRange: cached.TargetHighRange,
			BlogLink:        cached.BlogLink,
			VideoLink:       cached.VideoLink,
			Value:           value,
		})
	}
	return out
}

// Profile is the company profile collected on the first step.
type Profile struct {
	SaaSType        string  `json:"saas_type"`
	Orientation     string  `json:"orientation"`
	Industry        string  `json:"industry"`
	MonthsExisted   int     `json:"months_existed"`
	AnnualRevenue   float64 `json:"annual_revenue"`
	GrowthStageID   int64   `json:"growth_stage_id"`
	GrowthStageName string  `json:"growth_stage_name"`
}

// MetricResponse is one metric answered by the visitor.
type MetricResponse struct {
	Name            string  `json:"name"`
	PersistentKey   string  `json:"persistent_key"`
	PillarID        int64   `json:"pillar_id"`
	PillarName      string  `json:"pillar_name"`
	MetricID        int64   `json:"metric_id"`
	Unit            string  `json:"unit"`
	TargetLowRange  float64 `json:"target_low_range"`
	TargetHighRange float64 `json:"target_high_range"`
	BlogLink        string  `json:"blog_link,omitempty"`
	VideoLink       string  `json:"video_link,omitempty"`
	Value           any     `json:"value"`
}
