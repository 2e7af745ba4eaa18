package domain

import "errors"

var (
	ErrExperienceNotFound     = errors.New("experience not found")
	ErrDrugStatsNotFound      = errors.New("drug statistics not found")
	ErrInvalidSortField       = errors.New("invalid sort field")
	ErrInvalidSortDirection   = errors.New("invalid sort direction")
	ErrInvalidProfile         = errors.New("invalid recommendation profile")
	ErrRecommenderUnavailable = errors.New("recommendation service unavailable")
	ErrRefreshInProgress      = errors.New("refresh already in progress")
	ErrUnauthorized           = errors.New("unauthorized")
)
