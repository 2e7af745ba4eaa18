//go:build !integration

package postgres

import (
	"context"
	"testing"
	"time"

	"whichGLP/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func sp(s string) *string { return &s }

func fp(f float64) *float64 { return &f }

func ip(i int) *int { return &i }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps the in-memory database alive for the test
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&domain.RedditPost{}, &domain.RedditComment{}, &domain.ExtractedFeature{}))
	return db
}

func TestExperienceRepository_ScanExperiences(t *testing.T) {
	db := newTestDB(t)
	created := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	processed := created.Add(time.Hour)

	require.NoError(t, db.Create(&domain.RedditPost{
		PostID:    "p1",
		Subreddit: sp("Zepbound"),
		Title:     sp("3 months in"),
		Body:      sp("long post"),
		Author:    sp("someone"),
		Score:     ip(42),
		CreatedAt: &created,
	}).Error)
	require.NoError(t, db.Create(&domain.RedditComment{
		CommentID: "c1",
		PostID:    sp("p1"),
		Subreddit: sp("Zepbound"),
		Body:      sp("same here"),
	}).Error)

	features := []domain.ExtractedFeature{
		{
			ID:            "f-b",
			PostID:        sp("p1"),
			CommentID:     sp("c1"),
			PrimaryDrug:   sp("Zepbound"),
			Summary:       sp("comment summary"),
			SentimentPost: fp(0.9),
		},
		{
			ID:              "f-a",
			PostID:          sp("p1"),
			ProcessedAt:     &processed,
			PrimaryDrug:     sp("Zepbound"),
			Summary:         sp("post summary"),
			SentimentPost:   fp(0.4),
			BeginningWeight: datatypes.JSON(`{"value": 250, "unit": "lbs"}`),
			SideEffects:     datatypes.JSON(`[{"name":"nausea","severity":"mild"}]`),
		},
		{ID: "f-c", PostID: sp("p2"), PrimaryDrug: sp("Wegovy"), Summary: sp("   ")},
		{ID: "f-d", PostID: sp("p3"), Summary: sp("no drug")},
	}
	require.NoError(t, db.Create(&features).Error)

	repo := NewExperienceRepository(db)
	rows, err := repo.ScanExperiences(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	post := rows[0]
	assert.Equal(t, "f-a", post.FeatureID, "post-level row comes first")
	assert.Nil(t, post.CommentID)
	require.NotNil(t, post.PostSubreddit)
	assert.Equal(t, "Zepbound", *post.PostSubreddit)
	require.NotNil(t, post.PostScore)
	assert.Equal(t, 42, *post.PostScore)
	require.NotNil(t, post.PostCreatedAt)
	assert.True(t, created.Equal(*post.PostCreatedAt))
	assert.JSONEq(t, `{"value": 250, "unit": "lbs"}`, string(post.BeginningWeight))

	comment := rows[1]
	assert.Equal(t, "f-b", comment.FeatureID)
	require.NotNil(t, comment.CommentBody)
	assert.Equal(t, "same here", *comment.CommentBody)
}

func TestExperienceRepository_ContextCanceled(t *testing.T) {
	repo := NewExperienceRepository(newTestDB(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.ScanExperiences(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
