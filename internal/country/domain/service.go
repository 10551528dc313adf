package domain

import (
	"context"
	"errors"
	"time"
)

const (
	SortGDPDesc = "gdp_desc"
	SortGDPAsc  = "gdp_asc"
)

type ListRequest struct {
	Region   string
	Currency string
	Sort     string
}

type RefreshResult struct {
	Total           int
	LastRefreshedAt time.Time
}

type Status struct {
	TotalCountries  int64      `json:"total_countries"`
	LastRefreshedAt *time.Time `json:"last_refreshed_at"`
}

type Service interface {
	Refresh(ctx context.Context) (RefreshResult, error)
	List(ctx context.Context, req ListRequest) ([]Country, error)
	GetByName(ctx context.Context, name string) (Country, error)
	DeleteByName(ctx context.Context, name string) error
	Status(ctx context.Context) (Status, error)
	SummaryImagePath() string
}

var (
	ErrNotFound    = errors.New("not_found")
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidSort = errors.New("invalid_sort")
)
