package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CREATE TABLE public.extracted_features (
//     id                   UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//     post_id              TEXT REFERENCES reddit_posts(post_id),
//     comment_id           TEXT REFERENCES reddit_comments(comment_id),
//     processed_at         TIMESTAMPTZ DEFAULT NOW(),
//     primary_drug         TEXT,
//     summary              TEXT,
//     beginning_weight     JSONB,   -- {"value": 250, "unit": "lbs"}
//     end_weight           JSONB,
//     side_effects         JSONB,   -- [{"name": "nausea", "severity": "mild"}] or legacy strings
//     comorbidities        JSONB,
//     ...
// );

type ExtractedFeature struct {
	ID                  string         `gorm:"column:id;primaryKey"`
	PostID              *string        `gorm:"column:post_id;index"`
	CommentID           *string        `gorm:"column:comment_id"`
	ProcessedAt         *time.Time     `gorm:"column:processed_at"`
	PrimaryDrug         *string        `gorm:"column:primary_drug"`
	Summary             *string        `gorm:"column:summary;type:text"`
	SentimentPre        *float64       `gorm:"column:sentiment_pre"`
	SentimentPost       *float64       `gorm:"column:sentiment_post"`
	RecommendationScore *float64       `gorm:"column:recommendation_score"`
	Age                 *int           `gorm:"column:age"`
	Sex                 *string        `gorm:"column:sex"`
	Location            *string        `gorm:"column:location"`
	State               *string        `gorm:"column:state"`
	Country             *string        `gorm:"column:country"`
	BeginningWeight     datatypes.JSON `gorm:"column:beginning_weight"`
	EndWeight           datatypes.JSON `gorm:"column:end_weight"`
	DurationWeeks       *float64       `gorm:"column:duration_weeks"`
	CostPerMonth        *float64       `gorm:"column:cost_per_month"`
	Currency            *string        `gorm:"column:currency"`
	HasInsurance        *bool          `gorm:"column:has_insurance"`
	InsuranceProvider   *string        `gorm:"column:insurance_provider"`
	SideEffects         datatypes.JSON `gorm:"column:side_effects"`
	Comorbidities       datatypes.JSON `gorm:"column:comorbidities"`
	DrugSource          *string        `gorm:"column:drug_source"`
	PlateauMentioned    *bool          `gorm:"column:plateau_mentioned"`
	ReboundWeightGain   *bool          `gorm:"column:rebound_weight_gain"`
}

func (ExtractedFeature) TableName() string {
	return "extracted_features"
}

type RedditPost struct {
	PostID    string     `gorm:"column:post_id;primaryKey"`
	Subreddit *string    `gorm:"column:subreddit"`
	Title     *string    `gorm:"column:title"`
	Body      *string    `gorm:"column:body;type:text"`
	Author    *string    `gorm:"column:author"`
	Score     *int       `gorm:"column:score"`
	CreatedAt *time.Time `gorm:"column:created_at"`
}

func (RedditPost) TableName() string {
	return "reddit_posts"
}

type RedditComment struct {
	CommentID string     `gorm:"column:comment_id;primaryKey"`
	PostID    *string    `gorm:"column:post_id"`
	Subreddit *string    `gorm:"column:subreddit"`
	Body      *string    `gorm:"column:body;type:text"`
	Author    *string    `gorm:"column:author"`
	Score     *int       `gorm:"column:score"`
	CreatedAt *time.Time `gorm:"column:created_at"`
}

func (RedditComment) TableName() string {
	return "reddit_comments"
}

// RawExperience is one extracted_features row joined with its originating
// post and comment. Several rows may share a PostID.
type RawExperience struct {
	FeatureID   string     `gorm:"column:feature_id"`
	PostID      *string    `gorm:"column:post_id"`
	CommentID   *string    `gorm:"column:comment_id"`
	ProcessedAt *time.Time `gorm:"column:processed_at"`

	PostSubreddit    *string    `gorm:"column:post_subreddit"`
	CommentSubreddit *string    `gorm:"column:comment_subreddit"`
	PostTitle        *string    `gorm:"column:post_title"`
	PostBody         *string    `gorm:"column:post_body"`
	CommentBody      *string    `gorm:"column:comment_body"`
	PostAuthor       *string    `gorm:"column:post_author"`
	CommentAuthor    *string    `gorm:"column:comment_author"`
	PostScore        *int       `gorm:"column:post_score"`
	CommentScore     *int       `gorm:"column:comment_score"`
	PostCreatedAt    *time.Time `gorm:"column:post_created_at"`
	CommentCreatedAt *time.Time `gorm:"column:comment_created_at"`

	PrimaryDrug         *string        `gorm:"column:primary_drug"`
	Summary             *string        `gorm:"column:summary"`
	SentimentPre        *float64       `gorm:"column:sentiment_pre"`
	SentimentPost       *float64       `gorm:"column:sentiment_post"`
	RecommendationScore *float64       `gorm:"column:recommendation_score"`
	Age                 *int           `gorm:"column:age"`
	Sex                 *string        `gorm:"column:sex"`
	Location            *string        `gorm:"column:location"`
	State               *string        `gorm:"column:state"`
	Country             *string        `gorm:"column:country"`
	BeginningWeight     datatypes.JSON `gorm:"column:beginning_weight"`
	EndWeight           datatypes.JSON `gorm:"column:end_weight"`
	DurationWeeks       *float64       `gorm:"column:duration_weeks"`
	CostPerMonth        *float64       `gorm:"column:cost_per_month"`
	Currency            *string        `gorm:"column:currency"`
	HasInsurance        *bool          `gorm:"column:has_insurance"`
	InsuranceProvider   *string        `gorm:"column:insurance_provider"`
	SideEffects         datatypes.JSON `gorm:"column:side_effects"`
	Comorbidities       datatypes.JSON `gorm:"column:comorbidities"`
	DrugSource          *string        `gorm:"column:drug_source"`
	PlateauMentioned    *bool          `gorm:"column:plateau_mentioned"`
	ReboundWeightGain   *bool          `gorm:"column:rebound_weight_gain"`
}

// OriginKey identifies the originating post. Rows without a post fall back to
// their comment so that they still dedup among themselves.
func (r RawExperience) OriginKey() string {
	if r.PostID != nil && *r.PostID != "" {
		return *r.PostID
	}
	if r.CommentID != nil && *r.CommentID != "" {
		return "comment:" + *r.CommentID
	}
	return ""
}
