//go:build !integration

package recommendation

import (
	"context"
	"errors"
	"testing"
	"time"

	"whichGLP/domain"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	got    domain.RecommendationProfile
	result domain.RecommendationResult
	err    error
}

func (s *stubProvider) Recommend(ctx context.Context, profile domain.RecommendationProfile) (domain.RecommendationResult, error) {
	s.got = profile
	return s.result, s.err
}

func validProfile() domain.RecommendationProfile {
	return domain.RecommendationProfile{
		CurrentWeight: 240,
		WeightUnit:    "LBS",
		GoalWeight:    190,
	}
}

func TestRecommend_AppliesDefaultsAndSorts(t *testing.T) {
	provider := &stubProvider{result: domain.RecommendationResult{
		Recommendations: []domain.DrugRecommendation{
			{Drug: "Wegovy", MatchScore: 61},
			{Drug: "Zepbound", MatchScore: 88},
		},
		TotalExperiences: 412,
	}}
	svc := NewRecommendationService(provider, validator.New(), time.Second)

	res, err := svc.Recommend(context.Background(), validProfile())
	require.NoError(t, err)

	assert.Equal(t, 35, provider.got.Age)
	assert.Equal(t, "other", provider.got.Sex)
	assert.Equal(t, "USA", provider.got.Country)
	assert.Equal(t, "lbs", provider.got.WeightUnit)

	require.Len(t, res.Recommendations, 2)
	assert.Equal(t, "Zepbound", res.Recommendations[0].Drug)
	assert.Equal(t, 412, res.TotalExperiences)
}

func TestRecommend_InvalidProfile(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *domain.RecommendationProfile)
	}{
		{"goal above current", func(p *domain.RecommendationProfile) { p.GoalWeight = 260 }},
		{"unknown unit", func(p *domain.RecommendationProfile) { p.WeightUnit = "stone" }},
		{"too young", func(p *domain.RecommendationProfile) { p.Age = 16 }},
		{"bad sex", func(p *domain.RecommendationProfile) { p.Sex = "unknown" }},
		{"negative budget", func(p *domain.RecommendationProfile) { b := -10.0; p.MaxBudget = &b }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &stubProvider{}
			svc := NewRecommendationService(provider, validator.New(), time.Second)

			p := validProfile()
			tt.mutate(&p)
			_, err := svc.Recommend(context.Background(), p)
			assert.ErrorIs(t, err, domain.ErrInvalidProfile)
		})
	}
}

func TestRecommend_ProviderErrors(t *testing.T) {
	provider := &stubProvider{err: errors.Join(domain.ErrRecommenderUnavailable, errors.New("502"))}
	svc := NewRecommendationService(provider, validator.New(), time.Second)

	_, err := svc.Recommend(context.Background(), validProfile())
	assert.ErrorIs(t, err, domain.ErrRecommenderUnavailable)
}

func TestRecommend_NoProviderConfigured(t *testing.T) {
	svc := NewRecommendationService(nil, validator.New(), time.Second)

	_, err := svc.Recommend(context.Background(), validProfile())
	assert.ErrorIs(t, err, domain.ErrRecommenderUnavailable)
}
