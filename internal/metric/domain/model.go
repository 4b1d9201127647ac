package domain

import (
	"fmt"
	"math"
	"strings"
)

// Query selects metric associations for one growth stage and pillar. A nil
// SaaSTypeID or IndustryID leaves that dimension unfiltered.
type Query struct {
	GrowthStageID int64  `json:"growth_stage_id"`
	PillarID      int64  `json:"pillar_id"`
	SaaSTypeID    *int64 `json:"saas_type_id,omitempty"`
	IndustryID    *int64 `json:"industry_id,omitempty"`
}

// Record is a metric joined with one of its associations. Records are keyed
// by AssociationID; the same metric may appear once per matching association.
type Record struct {
	AssociationID  int64    `json:"association_id"`
	MetricID       int64    `json:"metric_id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	BlogLink       string   `json:"blog_link,omitempty"`
	VideoLink      string   `json:"video_link,omitempty"`
	Units          string   `json:"units"`
	Unit           UnitKind `json:"unit"`
	MetricTypeID   int64    `json:"metric_type_id"`
	MetricTypeName string   `json:"metric_type_name"`
	GrowthStageID  int64    `json:"growth_stage_id"`
	PillarID       int64    `json:"pillar_id"`
	PillarName     string   `json:"pillar_name"`
	SaaSTypeID     *int64   `json:"saas_type_id,omitempty"`
	IndustryID     *int64   `json:"industry_id,omitempty"`
	MinValue       float64  `json:"min_value"`
	MaxValue       float64  `json:"max_value"`
	LoRangeValue   float64  `json:"lo_range_value"`
	HiRangeValue   float64  `json:"hi_range_value"`
}

// Specificity counts the non-wildcard dimensions.
func (r Record) Specificity() int {
	n := 0
	if r.SaaSTypeID != nil {
		n++
	}
	if r.IndustryID != nil {
		n++
	}
	return n
}

// PersistentKey is the stable key a value is stored under in a session.
func (r Record) PersistentKey() string {
	return PersistentKey(r.PillarID, r.MetricID)
}

func PersistentKey(pillarID, metricID int64) string {
	return fmt.Sprintf("metric_%d_%d", pillarID, metricID)
}

// DefaultValue picks the initial slider value: the low target when it is
// above the floor, else the high target when it is below the ceiling, else
// the midpoint. Trend metrics start at 0 in the last case. The result is
// always inside [min, max].
func DefaultValue(r Record) float64 {
	var v float64
	switch {
	case r.MinValue != r.LoRangeValue:
		v = r.LoRangeValue
	case r.MaxValue != r.HiRangeValue:
		v = r.HiRangeValue
	case strings.Contains(strings.ToLower(r.Name), "trend"):
		v = 0
	default:
		v = (r.LoRangeValue + r.HiRangeValue) / 2
	}
	return math.Min(math.Max(v, r.MinValue), r.MaxValue)
}

// IsFlagged reports whether v falls outside the inclusive target range.
func IsFlagged(v, lo, hi float64) bool {
	return v < lo || v > hi
}

// MostSpecific keeps one record per metric: the one with the most concrete
// dimensions, ties going to the lowest association id. Metrics keep the
// order in which they first appear.
func MostSpecific(records []Record) []Record {
	best := make(map[int64]Record, len(records))
	order := make([]int64, 0, len(records))
	for _, rec := range records {
		current, ok := best[rec.MetricID]
		if !ok {
			order = append(order, rec.MetricID)
			best[rec.MetricID] = rec
			continue
		}
		if moreSpecific(rec, current) {
			best[rec.MetricID] = rec
		}
	}

	out := make([]Record, 0, len(order))
	for _, id := range order {
		out = append(out, best[id])
	}
	return out
}

func moreSpecific(a, b Record) bool {
	if a.Specificity() != b.Specificity() {
		return a.Specificity() > b.Specificity()
	}
	return a.AssociationID < b.AssociationID
}

// SliderView is a record prepared for rendering as an input slider.
type SliderView struct {
	Record
	PersistentKey string  `json:"persistent_key"`
	DefaultValue  float64 `json:"default_value"`
	Step          float64 `json:"step"`
	SliderFormat  string  `json:"slider_format"`
	TargetRange   string  `json:"target_range"`
	Label         string  `json:"label"`
}

func NewSliderView(r Record) SliderView {
	target := TargetRange(r.LoRangeValue, r.HiRangeValue, r.Units)
	return SliderView{
		Record:        r,
		PersistentKey: r.PersistentKey(),
		DefaultValue:  DefaultValue(r),
		Step:          r.Unit.Step(),
		SliderFormat:  r.Unit.SliderFormat(),
		TargetRange:   target,
		Label:         fmt.Sprintf("The target range is [%s]. What is your value:", target),
	}
}
