package domain

import "time"

type SideEffectStat struct {
	Name                  string  `json:"name"`
	Count                 int     `json:"count"`
	PercentageOfReporters float64 `json:"percentage_of_reporters"`
}

// SeverityDistribution holds percentages that sum to 100, or all zero when no
// entry carried a known severity.
type SeverityDistribution struct {
	Mild     float64 `json:"mild"`
	Moderate float64 `json:"moderate"`
	Severe   float64 `json:"severe"`
}

type DrugSourceBreakdown struct {
	Brand       int `json:"brand"`
	Compounded  int `json:"compounded"`
	OutOfPocket int `json:"out_of_pocket"`
	Other       int `json:"other"`
}

type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

type Demographics struct {
	AgeBuckets   map[AgeBucket]int `json:"age_buckets"`
	Sex          map[string]int    `json:"sex"`
	TopLocations []LocationCount   `json:"top_locations"`
}

// DrugStatistics is derived from a snapshot and never persisted as a source of
// truth. Averages are nil when no record in the cohort carried the field.
type DrugStatistics struct {
	Drug  string `json:"drug"`
	Count int    `json:"count"`

	AvgWeightLossPercent   *float64 `json:"avg_weight_loss_percent"`
	AvgWeightLossAbs       *float64 `json:"avg_weight_loss_abs"`
	AvgDurationWeeks       *float64 `json:"avg_duration_weeks"`
	AvgCostPerMonth        *float64 `json:"avg_cost_per_month"`
	AvgSentimentPre        *float64 `json:"avg_sentiment_pre"`
	AvgSentimentPost       *float64 `json:"avg_sentiment_post"`
	AvgRecommendationScore *float64 `json:"avg_recommendation_score"`

	PlateauRate           float64 `json:"plateau_rate"`
	ReboundRate           float64 `json:"rebound_rate"`
	InsuranceCoverageRate float64 `json:"insurance_coverage_rate"`

	TopSideEffects                 []SideEffectStat     `json:"top_side_effects"`
	SideEffectSeverityDistribution SeverityDistribution `json:"side_effect_severity_distribution"`
	DrugSourceBreakdown            DrugSourceBreakdown  `json:"drug_source_breakdown"`
	Demographics                   Demographics         `json:"demographics"`
}

type PlatformStats struct {
	TotalExperiences int       `json:"total_experiences"`
	UniqueDrugs      int       `json:"unique_drugs"`
	LocationsTracked int       `json:"locations_tracked"`
	SnapshotVersion  uint64    `json:"snapshot_version"`
	GeneratedAt      time.Time `json:"generated_at"`
}
