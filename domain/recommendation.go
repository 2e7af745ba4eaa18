package domain

// RecommendationProfile is the user profile sent to the similarity-matching
// collaborator.
type RecommendationProfile struct {
	CurrentWeight      float64  `json:"currentWeight" validate:"required,gt=0"`
	WeightUnit         string   `json:"weightUnit" validate:"required,oneof=lbs kg"`
	GoalWeight         float64  `json:"goalWeight" validate:"required,gt=0,ltfield=CurrentWeight"`
	Age                int      `json:"age" validate:"gte=18,lte=100"`
	Sex                string   `json:"sex" validate:"oneof=male female other"`
	State              *string  `json:"state"`
	Country            string   `json:"country"`
	Comorbidities      []string `json:"comorbidities"`
	HasInsurance       bool     `json:"hasInsurance"`
	InsuranceProvider  *string  `json:"insuranceProvider"`
	MaxBudget          *float64 `json:"maxBudget" validate:"omitempty,gt=0"`
	SideEffectConcerns []string `json:"sideEffectConcerns"`
}

type ExpectedWeightLoss struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Avg  float64 `json:"avg"`
	Unit string  `json:"unit"`
}

type SideEffectProbability struct {
	Effect      string  `json:"effect"`
	Probability float64 `json:"probability"`
	Severity    string  `json:"severity"`
}

type DrugRecommendation struct {
	Drug                  string                  `json:"drug"`
	MatchScore            float64                 `json:"matchScore"`
	ExpectedWeightLoss    ExpectedWeightLoss      `json:"expectedWeightLoss"`
	SuccessRate           float64                 `json:"successRate"`
	EstimatedCost         *float64                `json:"estimatedCost"`
	SideEffectProbability []SideEffectProbability `json:"sideEffectProbability"`
	SimilarUserCount      int                     `json:"similarUserCount"`
	Pros                  []string                `json:"pros"`
	Cons                  []string                `json:"cons"`
}

type RecommendationResult struct {
	Recommendations  []DrugRecommendation `json:"recommendations"`
	TotalExperiences int                  `json:"totalExperiences"`
	ProcessingTime   *float64             `json:"processingTime,omitempty"`
}
