package recommender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"whichGLP/domain"
	"whichGLP/pkg/logger"
	"whichGLP/pkg/metrics"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	recommendPath   = "/api/recommendations"
	maxErrorBodyLen = 512
	breakerName     = "recommender"
)

type RecommenderConfig struct {
	BaseURL string
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that opens the
	// breaker. Defaults to 5.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	// Defaults to 30s.
	OpenTimeout time.Duration
}

// RecommenderRepository calls the similarity-matching service over HTTP.
// Calls go through a circuit breaker so a dead service fails fast instead of
// holding request goroutines for the full client timeout.
type RecommenderRepository struct {
	config  RecommenderConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[domain.RecommendationResult]
}

func NewRecommenderRepository(cfg RecommenderConfig) *RecommenderRepository {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	metrics.RecommenderBreakerState.Set(0)

	breaker := gobreaker.NewCircuitBreaker[domain.RecommendationResult](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// a rejected profile is the caller's fault, not the service's
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrInvalidProfile)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			metrics.RecommenderBreakerState.Set(float64(to))
		},
	})

	return &RecommenderRepository{
		config:  cfg,
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
	}
}

func (r *RecommenderRepository) Recommend(ctx context.Context, profile domain.RecommendationProfile) (domain.RecommendationResult, error) {
	result, err := r.breaker.Execute(func() (domain.RecommendationResult, error) {
		return r.recommend(ctx, profile)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.RecommendationResult{}, fmt.Errorf("%w: %v", domain.ErrRecommenderUnavailable, err)
	}
	return result, err
}

func (r *RecommenderRepository) recommend(ctx context.Context, profile domain.RecommendationProfile) (domain.RecommendationResult, error) {
	payload, err := json.Marshal(profile)
	if err != nil {
		return domain.RecommendationResult{}, fmt.Errorf("failed to marshal profile: %w", err)
	}

	url := strings.TrimRight(r.config.BaseURL, "/") + recommendPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return domain.RecommendationResult{}, fmt.Errorf("failed to build recommender request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return domain.RecommendationResult{}, fmt.Errorf("%w: %w", domain.ErrRecommenderUnavailable, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return domain.RecommendationResult{}, fmt.Errorf("%w: read body: %w", domain.ErrRecommenderUnavailable, err)
	}

	switch {
	case res.StatusCode == http.StatusBadRequest || res.StatusCode == http.StatusUnprocessableEntity:
		return domain.RecommendationResult{}, fmt.Errorf("%w: %s", domain.ErrInvalidProfile, truncate(body))
	case res.StatusCode != http.StatusOK:
		return domain.RecommendationResult{}, fmt.Errorf("%w: status %d: %s", domain.ErrRecommenderUnavailable, res.StatusCode, truncate(body))
	}

	var result domain.RecommendationResult
	if err := json.Unmarshal(body, &result); err != nil {
		return domain.RecommendationResult{}, fmt.Errorf("%w: decode response: %v", domain.ErrRecommenderUnavailable, err)
	}

	return result, nil
}

// Ping checks the service health endpoint.
func (r *RecommenderRepository) Ping(ctx context.Context) error {
	url := strings.TrimRight(r.config.BaseURL, "/") + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	res, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRecommenderUnavailable, err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", domain.ErrRecommenderUnavailable, res.StatusCode)
	}
	return nil
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBodyLen {
		return s[:maxErrorBodyLen]
	}
	return s
}
