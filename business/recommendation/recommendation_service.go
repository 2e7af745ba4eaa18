package recommendation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"whichGLP/domain"
	"whichGLP/pkg/logger"

	"github.com/go-playground/validator/v10"
)

const (
	defaultAge     = 35
	defaultSex     = "other"
	defaultCountry = "USA"
)

// Provider is the similarity-matching collaborator.
type Provider interface {
	Recommend(ctx context.Context, profile domain.RecommendationProfile) (domain.RecommendationResult, error)
}

type RecommendationService struct {
	provider Provider
	validate *validator.Validate
	timeout  time.Duration
}

func NewRecommendationService(provider Provider, validate *validator.Validate, timeout time.Duration) *RecommendationService {
	return &RecommendationService{
		provider: provider,
		validate: validate,
		timeout:  timeout,
	}
}

func (s *RecommendationService) Recommend(ctx context.Context, profile domain.RecommendationProfile) (domain.RecommendationResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecommendationResult{}, fmt.Errorf("context error: %w", err)
	}

	profile = withDefaults(profile)
	if err := s.validate.Struct(profile); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return domain.RecommendationResult{}, fmt.Errorf("%w: %s", domain.ErrInvalidProfile, describe(verrs))
		}
		return domain.RecommendationResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidProfile, err)
	}

	if s.provider == nil {
		return domain.RecommendationResult{}, fmt.Errorf("%w: no recommender configured", domain.ErrRecommenderUnavailable)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.provider.Recommend(ctx, profile)
	if err != nil {
		logger.Error("recommender call failed", "error", err)
		return domain.RecommendationResult{}, err
	}

	sort.SliceStable(result.Recommendations, func(i, j int) bool {
		return result.Recommendations[i].MatchScore > result.Recommendations[j].MatchScore
	})
	if result.Recommendations == nil {
		result.Recommendations = []domain.DrugRecommendation{}
	}

	return result, nil
}

func withDefaults(p domain.RecommendationProfile) domain.RecommendationProfile {
	if p.Age == 0 {
		p.Age = defaultAge
	}
	p.Sex = strings.ToLower(strings.TrimSpace(p.Sex))
	if p.Sex == "" {
		p.Sex = defaultSex
	}
	p.WeightUnit = strings.ToLower(strings.TrimSpace(p.WeightUnit))
	if strings.TrimSpace(p.Country) == "" {
		p.Country = defaultCountry
	}
	return p
}

func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
