package seed

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/smallbiznis/tractionlens/internal/reference/domain"
	"gopkg.in/yaml.v3"
)

//go:embed data/reference.yaml
var referenceYAML []byte

// ReferenceData is the decoded seed file, already converted to table rows.
type ReferenceData struct {
	SaaSTypes          []domain.SaaSType
	Orientations       []domain.Orientation
	Industries         []domain.Industry
	GrowthStages       []domain.GrowthStage
	Pillars            []domain.ArchitecturePillar
	MetricTypes        []domain.MetricType
	Metrics            []domain.Metric
	IndustryMappings   []domain.IndustryMapping
	MetricAssociations []domain.MetricAssociation
	Recommendations    []domain.Recommendation
}

type namedRow struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

type stageRow struct {
	ID          int64   `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Low         float64 `yaml:"low"`
	High        float64 `yaml:"high"`
}

type pillarRow struct {
	ID          int64  `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	Order       int    `yaml:"order"`
	Enabled     bool   `yaml:"enabled"`
}

type metricRow struct {
	ID           int64  `yaml:"id"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	Units        string `yaml:"units"`
	MetricTypeID int64  `yaml:"metric_type_id"`
	BlogLink     string `yaml:"blog_link"`
	VideoLink    string `yaml:"video_link"`
}

type mappingRow struct {
	SaaSTypeID    int64 `yaml:"saas_type_id"`
	OrientationID int64 `yaml:"orientation_id"`
	IndustryID    int64 `yaml:"industry_id"`
}

type associationRow struct {
	ID            int64   `yaml:"id"`
	GrowthStageID int64   `yaml:"growth_stage_id"`
	PillarID      int64   `yaml:"pillar_id"`
	MetricID      int64   `yaml:"metric_id"`
	SaaSTypeID    *int64  `yaml:"saas_type_id"`
	IndustryID    *int64  `yaml:"industry_id"`
	Min           float64 `yaml:"min"`
	Max           float64 `yaml:"max"`
	Lo            float64 `yaml:"lo"`
	Hi            float64 `yaml:"hi"`
	Enabled       bool    `yaml:"enabled"`
}

type recommendationRow struct {
	ID       int64  `yaml:"id"`
	MetricID int64  `yaml:"metric_id"`
	Text     string `yaml:"text"`
}

type seedFile struct {
	SaaSTypes          []namedRow          `yaml:"saas_types"`
	Orientations       []namedRow          `yaml:"orientations"`
	Industries         []namedRow          `yaml:"industries"`
	GrowthStages       []stageRow          `yaml:"growth_stages"`
	Pillars            []pillarRow         `yaml:"architecture_pillars"`
	MetricTypes        []namedRow          `yaml:"metric_types"`
	Metrics            []metricRow         `yaml:"metrics"`
	IndustryMappings   []mappingRow        `yaml:"industry_mappings"`
	MetricAssociations []associationRow    `yaml:"metric_associations"`
	Recommendations    []recommendationRow `yaml:"recommendations"`
}

// LoadReferenceData decodes and validates the embedded seed file.
func LoadReferenceData() (*ReferenceData, error) {
	return parseReferenceData(referenceYAML)
}

func parseReferenceData(raw []byte) (*ReferenceData, error) {
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, eris.Wrap(err, "decode reference seed")
	}

	data := &ReferenceData{}
	for _, row := range file.SaaSTypes {
		data.SaaSTypes = append(data.SaaSTypes, domain.SaaSType{ID: row.ID, Name: row.Name})
	}
	for _, row := range file.Orientations {
		data.Orientations = append(data.Orientations, domain.Orientation{ID: row.ID, Name: row.Name})
	}
	for _, row := range file.Industries {
		data.Industries = append(data.Industries, domain.Industry{ID: row.ID, Name: row.Name})
	}
	for _, row := range file.GrowthStages {
		data.GrowthStages = append(data.GrowthStages, domain.GrowthStage{
			ID:          row.ID,
			Name:        row.Name,
			Description: row.Description,
			LowRange:    row.Low,
			HighRange:   row.High,
		})
	}
	for _, row := range file.Pillars {
		data.Pillars = append(data.Pillars, domain.ArchitecturePillar{
			ID:           row.ID,
			Name:         row.Name,
			Description:  row.Description,
			DisplayIcon:  row.Icon,
			DisplayOrder: row.Order,
			Enabled:      row.Enabled,
		})
	}
	for _, row := range file.MetricTypes {
		data.MetricTypes = append(data.MetricTypes, domain.MetricType{ID: row.ID, Name: row.Name})
	}
	for _, row := range file.Metrics {
		data.Metrics = append(data.Metrics, domain.Metric{
			ID:           row.ID,
			Name:         row.Name,
			Description:  row.Description,
			BlogLink:     optionalString(row.BlogLink),
			VideoLink:    optionalString(row.VideoLink),
			Units:        row.Units,
			MetricTypeID: row.MetricTypeID,
		})
	}
	for _, row := range file.IndustryMappings {
		data.IndustryMappings = append(data.IndustryMappings, domain.IndustryMapping{
			SaaSTypeID:    row.SaaSTypeID,
			OrientationID: row.OrientationID,
			IndustryID:    row.IndustryID,
		})
	}
	for _, row := range file.MetricAssociations {
		data.MetricAssociations = append(data.MetricAssociations, domain.MetricAssociation{
			ID:                   row.ID,
			GrowthStageID:        row.GrowthStageID,
			ArchitecturePillarID: row.PillarID,
			MetricID:             row.MetricID,
			SaaSTypeID:           row.SaaSTypeID,
			IndustryID:           row.IndustryID,
			MinValue:             row.Min,
			MaxValue:             row.Max,
			LoRangeValue:         row.Lo,
			HiRangeValue:         row.Hi,
			Enabled:              row.Enabled,
		})
	}
	for _, row := range file.Recommendations {
		data.Recommendations = append(data.Recommendations, domain.Recommendation{
			ID:       row.ID,
			MetricID: row.MetricID,
			Text:     row.Text,
		})
	}

	if err := data.Validate(); err != nil {
		return nil, err
	}
	return data, nil
}

// Validate checks the invariants the resolvers rely on: association bounds
// are ordered and growth stage bands do not overlap.
func (d *ReferenceData) Validate() error {
	for _, a := range d.MetricAssociations {
		if !(a.MinValue <= a.LoRangeValue && a.LoRangeValue <= a.HiRangeValue && a.HiRangeValue <= a.MaxValue) {
			return eris.Errorf("metric association %d: expected min <= lo <= hi <= max, got %v/%v/%v/%v",
				a.ID, a.MinValue, a.LoRangeValue, a.HiRangeValue, a.MaxValue)
		}
	}

	stages := make([]domain.GrowthStage, len(d.GrowthStages))
	copy(stages, d.GrowthStages)
	sort.Slice(stages, func(i, j int) bool { return stages[i].LowRange < stages[j].LowRange })
	for i, s := range stages {
		if s.LowRange > s.HighRange {
			return eris.Errorf("growth stage %q: low range above high range", s.Name)
		}
		if i > 0 && stages[i-1].HighRange >= s.LowRange {
			return eris.Errorf("growth stages %q and %q overlap", stages[i-1].Name, s.Name)
		}
	}

	if err := checkRefs(d); err != nil {
		return err
	}
	return nil
}

func checkRefs(d *ReferenceData) error {
	metrics := make(map[int64]struct{}, len(d.Metrics))
	for _, m := range d.Metrics {
		metrics[m.ID] = struct{}{}
	}
	for _, a := range d.MetricAssociations {
		if _, ok := metrics[a.MetricID]; !ok {
			return eris.New(fmt.Sprintf("metric association %d references unknown metric %d", a.ID, a.MetricID))
		}
	}
	for _, r := range d.Recommendations {
		if _, ok := metrics[r.MetricID]; !ok {
			return eris.New(fmt.Sprintf("recommendation %d references unknown metric %d", r.ID, r.MetricID))
		}
	}
	return nil
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
