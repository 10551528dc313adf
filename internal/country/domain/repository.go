package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// ListFilter composes case-insensitive equality filters with AND; Sort is
// one of the Sort* constants or empty.
type ListFilter struct {
	Region   string
	Currency string
	Sort     string
}

type Repository interface {
	EnsureSchema(ctx context.Context, db *gorm.DB) error
	UpsertAll(ctx context.Context, db *gorm.DB, countries []*Country) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Country, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Country, error)
	DeleteByName(ctx context.Context, db *gorm.DB, name string) (int64, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
	LastRefreshedAt(ctx context.Context, db *gorm.DB) (*time.Time, error)
	TopByGDP(ctx context.Context, db *gorm.DB, limit int) ([]Country, error)
}
