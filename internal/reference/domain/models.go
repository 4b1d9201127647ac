package domain

// PreQualificationStage names the growth stage that sits below the revenue
// floor the diagnostic is built for.
const PreQualificationStage = "Pre-Qualification"

type SaaSType struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name string `json:"name" gorm:"type:text;not null;uniqueIndex"`
}

func (SaaSType) TableName() string { return "saas_types" }

type Orientation struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name string `json:"name" gorm:"type:text;not null;uniqueIndex"`
}

func (Orientation) TableName() string { return "orientations" }

type Industry struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name string `json:"name" gorm:"type:text;not null;uniqueIndex"`
}

func (Industry) TableName() string { return "industries" }

// IndustryMapping lists the industries valid for a SaaS type and orientation pair.
type IndustryMapping struct {
	SaaSTypeID    int64 `json:"saas_type_id" gorm:"primaryKey;autoIncrement:false;column:saas_type_id"`
	OrientationID int64 `json:"orientation_id" gorm:"primaryKey;autoIncrement:false"`
	IndustryID    int64 `json:"industry_id" gorm:"primaryKey;autoIncrement:false"`
}

func (IndustryMapping) TableName() string { return "industry_mappings" }

// GrowthStage is a revenue band expressed in millions of ARR.
type GrowthStage struct {
	ID          int64   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name        string  `json:"name" gorm:"type:text;not null;uniqueIndex"`
	Description string  `json:"description" gorm:"type:text;not null"`
	LowRange    float64 `json:"low_range" gorm:"not null"`
	HighRange   float64 `json:"high_range" gorm:"not null"`
}

func (GrowthStage) TableName() string { return "growth_stages" }

// Contains reports whether revenue lies in the inclusive band.
func (s GrowthStage) Contains(revenue float64) bool {
	return s.LowRange <= revenue && revenue <= s.HighRange
}

type ArchitecturePillar struct {
	ID           int64  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name         string `json:"name" gorm:"type:text;not null;uniqueIndex"`
	Description  string `json:"description" gorm:"type:text;not null"`
	DisplayIcon  string `json:"display_icon" gorm:"type:text"`
	DisplayOrder int    `json:"display_order" gorm:"not null"`
	Enabled      bool   `json:"enabled" gorm:"not null"`
}

func (ArchitecturePillar) TableName() string { return "architecture_pillars" }

// MetricType classifies a metric as leading or lagging.
type MetricType struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name string `json:"name" gorm:"type:text;not null;uniqueIndex"`
}

func (MetricType) TableName() string { return "metric_types" }

type Metric struct {
	ID           int64   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name         string  `json:"name" gorm:"type:text;not null;uniqueIndex"`
	Description  string  `json:"description" gorm:"type:text;not null"`
	BlogLink     *string `json:"blog_link,omitempty" gorm:"type:text"`
	VideoLink    *string `json:"video_link,omitempty" gorm:"type:text"`
	Units        string  `json:"units" gorm:"type:text;not null"`
	MetricTypeID int64   `json:"metric_type_id" gorm:"not null;index"`
}

func (Metric) TableName() string { return "metrics" }

// MetricAssociation places a metric under a growth stage and pillar with its
// slider bounds and target range. A nil SaaSTypeID or IndustryID matches any
// value of that dimension.
type MetricAssociation struct {
	ID                   int64   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	GrowthStageID        int64   `json:"growth_stage_id" gorm:"not null;index:idx_metric_associations_lookup,priority:1"`
	ArchitecturePillarID int64   `json:"architecture_pillar_id" gorm:"not null;index:idx_metric_associations_lookup,priority:2"`
	MetricID             int64   `json:"metric_id" gorm:"not null;index"`
	SaaSTypeID           *int64  `json:"saas_type_id,omitempty" gorm:"column:saas_type_id"`
	IndustryID           *int64  `json:"industry_id,omitempty"`
	MinValue             float64 `json:"min_value" gorm:"not null"`
	MaxValue             float64 `json:"max_value" gorm:"not null"`
	LoRangeValue         float64 `json:"lo_range_value" gorm:"not null"`
	HiRangeValue         float64 `json:"hi_range_value" gorm:"not null"`
	Enabled              bool    `json:"enabled" gorm:"not null"`
}

func (MetricAssociation) TableName() string { return "metric_associations" }

type Recommendation struct {
	ID       int64  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	MetricID int64  `json:"metric_id" gorm:"not null;index"`
	Text     string `json:"text" gorm:"column:recommendation;type:text;not null"`
}

func (Recommendation) TableName() string { return "recommendations" }

// Models lists every reference table in seeding order.
func Models() []any {
	return []any{
		&SaaSType{},
		&Orientation{},
		&Industry{},
		&GrowthStage{},
		&ArchitecturePillar{},
		&MetricType{},
		&Metric{},
		&IndustryMapping{},
		&MetricAssociation{},
		&Recommendation{},
	}
}
