package repository

import (
	"context"
	"time"

	"github.com/geofin/countrypulse/internal/country/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// EnsureSchema creates the countries table when absent. It is idempotent and
// intentionally not a migration: refresh and status both call it.
func (r *repo) EnsureSchema(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec(`
		CREATE TABLE IF NOT EXISTS countries (
			id BIGINT PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE,
			capital VARCHAR(100),
			region VARCHAR(100),
			population BIGINT NOT NULL,
			currency_code VARCHAR(10),
			exchange_rate DOUBLE PRECISION,
			estimated_gdp DOUBLE PRECISION,
			flag_url TEXT,
			last_refreshed_at TIMESTAMP NOT NULL
		)`).Error
}

// UpsertAll inserts the batch, overwriting every non-key column for names
// that already exist. Row IDs of existing rows are preserved.
func (r *repo) UpsertAll(ctx context.Context, db *gorm.DB, countries []*domain.Country) error {
	if len(countries) == 0 {
		return nil
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"capital",
			"region",
			"population",
			"currency_code",
			"exchange_rate",
			"estimated_gdp",
			"flag_url",
			"last_refreshed_at",
		}),
	}).CreateInBatches(countries, 100).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Country, error) {
	stmt := db.WithContext(ctx).Model(&domain.Country{})
	if filter.Region != "" {
		stmt = stmt.Where("LOWER(region) = LOWER(?)", filter.Region)
	}
	if filter.Currency != "" {
		stmt = stmt.Where("LOWER(currency_code) = LOWER(?)", filter.Currency)
	}

	// Rows without a derived GDP sort last regardless of direction.
	switch filter.Sort {
	case domain.SortGDPDesc:
		stmt = stmt.Order("(estimated_gdp IS NULL) ASC, estimated_gdp DESC")
	case domain.SortGDPAsc:
		stmt = stmt.Order("(estimated_gdp IS NULL) ASC, estimated_gdp ASC")
	}

	var countries []domain.Country
	if err := stmt.Find(&countries).Error; err != nil {
		return nil, err
	}
	return countries, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*domain.Country, error) {
	var countries []domain.Country
	err := db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		Limit(1).
		Find(&countries).Error
	if err != nil {
		return nil, err
	}
	if len(countries) == 0 {
		return nil, nil
	}
	return &countries[0], nil
}

func (r *repo) DeleteByName(ctx context.Context, db *gorm.DB, name string) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM countries WHERE LOWER(name) = LOWER(?)`, name)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Country{}).Count(&total).Error
	return total, err
}

// LastRefreshedAt returns the newest refresh stamp, or nil when the table is
// empty.
func (r *repo) LastRefreshedAt(ctx context.Context, db *gorm.DB) (*time.Time, error) {
	var stamps []time.Time
	err := db.WithContext(ctx).
		Model(&domain.Country{}).
		Order("last_refreshed_at DESC").
		Limit(1).
		Pluck("last_refreshed_at", &stamps).Error
	if err != nil {
		return nil, err
	}
	if len(stamps) == 0 {
		return nil, nil
	}
	stamp := stamps[0].UTC()
	return &stamp, nil
}

func (r *repo) TopByGDP(ctx context.Context, db *gorm.DB, limit int) ([]domain.Country, error) {
	var countries []domain.Country
	err := db.WithContext(ctx).
		Where("estimated_gdp IS NOT NULL").
		Order("estimated_gdp DESC").
		Limit(limit).
		Find(&countries).Error
	if err != nil {
		return nil, err
	}
	return countries, nil
}
