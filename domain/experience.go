package domain

import (
	"time"
)

type WeightUnit string

const (
	WeightUnitLbs WeightUnit = "lbs"
	WeightUnitKg  WeightUnit = "kg"
)

// KgToLbs converts kilograms to pounds.
const KgToLbs = 2.20462

type Weight struct {
	Value float64    `json:"value"`
	Unit  WeightUnit `json:"unit"`
}

// Lbs returns the weight normalized to pounds. Unknown units are treated as lbs.
func (w Weight) Lbs() float64 {
	if w.Unit == WeightUnitKg {
		return w.Value * KgToLbs
	}
	return w.Value
}

type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Valid reports whether s is one of mild, moderate or severe.
func (s Severity) Valid() bool {
	switch s {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

// SideEffect is a side-effect entry as stored upstream. Name may hold a
// legacy JSON-encoded {name, severity} object; see aggregation.ParseSideEffect.
type SideEffect struct {
	Name     string   `json:"name"`
	Severity Severity `json:"severity,omitempty"`
}

type DrugSource string

const (
	DrugSourceBrand       DrugSource = "brand"
	DrugSourceCompounded  DrugSource = "compounded"
	DrugSourceOutOfPocket DrugSource = "out-of-pocket"
	DrugSourceOther       DrugSource = "other"
)

type AgeBucket string

const (
	AgeBucket18To24 AgeBucket = "18-24"
	AgeBucket25To34 AgeBucket = "25-34"
	AgeBucket35To44 AgeBucket = "35-44"
	AgeBucket45To54 AgeBucket = "45-54"
	AgeBucket55To64 AgeBucket = "55-64"
	AgeBucket65Plus AgeBucket = "65+"
)

// AgeBuckets lists buckets in ascending order.
var AgeBuckets = []AgeBucket{
	AgeBucket18To24,
	AgeBucket25To34,
	AgeBucket35To44,
	AgeBucket45To54,
	AgeBucket55To64,
	AgeBucket65Plus,
}

const (
	SourceTypePost    = "post"
	SourceTypeComment = "comment"
)

// ExperienceRecord is one denormalized, deduplicated experience per
// originating post. Records live inside an immutable snapshot and must not be
// mutated once published.
type ExperienceRecord struct {
	ID          string     `json:"id"`
	PostID      string     `json:"post_id"`
	CommentID   *string    `json:"comment_id"`
	Subreddit   *string    `json:"subreddit"`
	SourceType  string     `json:"source_type"`
	ProcessedAt *time.Time `json:"processed_at"`
	CreatedAt   *time.Time `json:"created_at"`

	PostTitle   string  `json:"post_title"`
	PostText    string  `json:"post_text"`
	CommentText string  `json:"comment_text"`
	Author      *string `json:"author"`
	Score       int     `json:"score"`

	PrimaryDrug         *string  `json:"primary_drug"`
	Summary             string   `json:"summary"`
	SentimentPre        *float64 `json:"sentiment_pre"`
	SentimentPost       *float64 `json:"sentiment_post"`
	RecommendationScore *float64 `json:"recommendation_score"`

	Age      *int    `json:"age"`
	Sex      *string `json:"sex"`
	Location *string `json:"location"`
	State    *string `json:"state"`
	Country  *string `json:"country"`

	BeginningWeight   *Weight      `json:"beginning_weight"`
	EndWeight         *Weight      `json:"end_weight"`
	DurationWeeks     *float64     `json:"duration_weeks"`
	CostPerMonth      *float64     `json:"cost_per_month"`
	Currency          *string      `json:"currency"`
	InsuranceCoverage *bool        `json:"insurance_coverage"`
	InsuranceProvider *string      `json:"insurance_provider"`
	SideEffects       []SideEffect `json:"side_effects"`
	Comorbidities     []string     `json:"comorbidities"`
	DrugSource        *DrugSource  `json:"drug_source"`
	PlateauMentioned  *bool        `json:"plateau_mentioned"`
	ReboundWeightGain *bool        `json:"rebound_weight_gain"`

	// derived at materialization time
	BeginningWeightLbs             *float64   `json:"beginning_weight_lbs"`
	EndWeightLbs                   *float64   `json:"end_weight_lbs"`
	WeightLossLbs                  *float64   `json:"weight_loss_lbs"`
	WeightLossPercent              *float64   `json:"weight_loss_percent"`
	WeightLossSpeedLbsPerMonth     *float64   `json:"weight_loss_speed_lbs_per_month"`
	WeightLossSpeedPercentPerMonth *float64   `json:"weight_loss_speed_percent_per_month"`
	SentimentChange                *float64   `json:"sentiment_change"`
	AgeBucket                      *AgeBucket `json:"age_bucket"`
}

// Drug returns the primary drug or "" when unknown.
func (r ExperienceRecord) Drug() string {
	if r.PrimaryDrug == nil {
		return ""
	}
	return *r.PrimaryDrug
}
