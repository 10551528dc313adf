package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Country is the canonical persisted record. Nullable columns are pointers;
// an estimated GDP of a non-nil zero is the sentinel for "country has no
// currency", while nil means "currency known but no rate".
type Country struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	Name            string       `gorm:"uniqueIndex;not null" json:"name"`
	Capital         *string      `json:"capital"`
	Region          *string      `json:"region"`
	Population      int64        `gorm:"not null" json:"population"`
	CurrencyCode    *string      `gorm:"column:currency_code" json:"currency_code"`
	ExchangeRate    *float64     `json:"exchange_rate"`
	EstimatedGDP    *float64     `gorm:"column:estimated_gdp" json:"estimated_gdp"`
	FlagURL         *string      `gorm:"column:flag_url" json:"flag_url"`
	LastRefreshedAt time.Time    `gorm:"not null" json:"last_refreshed_at"`
}

func (Country) TableName() string {
	return "countries"
}
