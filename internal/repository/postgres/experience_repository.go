package postgres

import (
	"context"
	"fmt"

	"whichGLP/domain"

	"gorm.io/gorm"
)

const experienceColumns = `
	ef.id AS feature_id,
	ef.post_id,
	ef.comment_id,
	ef.processed_at,
	rp.subreddit AS post_subreddit,
	rc.subreddit AS comment_subreddit,
	rp.title AS post_title,
	rp.body AS post_body,
	rc.body AS comment_body,
	rp.author AS post_author,
	rc.author AS comment_author,
	rp.score AS post_score,
	rc.score AS comment_score,
	rp.created_at AS post_created_at,
	rc.created_at AS comment_created_at,
	ef.primary_drug,
	ef.summary,
	ef.sentiment_pre,
	ef.sentiment_post,
	ef.recommendation_score,
	ef.age,
	ef.sex,
	ef.location,
	ef.state,
	ef.country,
	ef.beginning_weight,
	ef.end_weight,
	ef.duration_weeks,
	ef.cost_per_month,
	ef.currency,
	ef.has_insurance,
	ef.insurance_provider,
	ef.side_effects,
	ef.comorbidities,
	ef.drug_source,
	ef.plateau_mentioned,
	ef.rebound_weight_gain`

// ExperienceRepository reads extracted features joined with their reddit
// source rows. Rows come back grouped by post with the preferred
// representative first; deduplication itself happens in the materializer.
type ExperienceRepository struct {
	DB *gorm.DB
}

func NewExperienceRepository(db *gorm.DB) *ExperienceRepository {
	return &ExperienceRepository{
		DB: db,
	}
}

func (r *ExperienceRepository) ScanExperiences(ctx context.Context) ([]domain.RawExperience, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.RawExperience
	err := r.DB.WithContext(ctx).
		Table("extracted_features AS ef").
		Select(experienceColumns).
		Joins("LEFT JOIN reddit_posts rp ON ef.post_id = rp.post_id").
		Joins("LEFT JOIN reddit_comments rc ON ef.comment_id = rc.comment_id").
		Where("ef.primary_drug IS NOT NULL").
		Where("ef.summary IS NOT NULL AND TRIM(ef.summary) <> ''").
		Order("ef.post_id").
		Order("CASE WHEN ef.comment_id IS NULL THEN 0 ELSE 1 END").
		Order("ef.sentiment_post DESC NULLS LAST").
		Order("ef.processed_at DESC NULLS LAST").
		Order("ef.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to scan experiences: %w", err)
	}

	return rows, nil
}

// Ping reports whether the database is reachable.
func (r *ExperienceRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
