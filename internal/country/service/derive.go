package service

import (
	"math/rand"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/geofin/countrypulse/internal/country/domain"
	"github.com/geofin/countrypulse/internal/providers/restcountries"
)

// Deriver merges a country directory with a rate table into persisted
// records. It is pure apart from the injected randomness source, so tests
// with a seeded source can assert exact GDP values.
type Deriver struct {
	genID *snowflake.Node
	rand  *rand.Rand
}

func NewDeriver(genID *snowflake.Node, r *rand.Rand) *Deriver {
	return &Deriver{genID: genID, rand: r}
}

// Derive produces one record per input entry. Every record in the batch
// carries the same refresh stamp. One multiplier is drawn per record in
// input order whether or not the policy ends up using it, keeping the draw
// sequence stable for a given input length.
//
// GDP policy: no currency code means a sentinel zero, a code with no
// matching rate means absent, otherwise population * multiplier / rate with
// the multiplier uniform in [1000, 2000).
func (d *Deriver) Derive(now time.Time, countries []restcountries.Country, rates map[string]float64) []*domain.Country {
	now = now.UTC()
	records := make([]*domain.Country, 0, len(countries))
	for _, c := range countries {
		multiplier := 1000 + d.rand.Float64()*1000

		code := primaryCurrencyCode(c)

		var exchangeRate *float64
		var estimatedGDP *float64
		if code == nil {
			estimatedGDP = ptr(0.0)
		} else if rate, ok := rates[*code]; ok && rate > 0 {
			exchangeRate = ptr(rate)
			estimatedGDP = ptr(float64(c.Population) * multiplier / rate)
		}

		records = append(records, &domain.Country{
			ID:              d.genID.Generate(),
			Name:            c.Name,
			Capital:         optional(c.Capital),
			Region:          optional(c.Region),
			Population:      c.Population,
			CurrencyCode:    code,
			ExchangeRate:    exchangeRate,
			EstimatedGDP:    estimatedGDP,
			FlagURL:         optional(c.Flag),
			LastRefreshedAt: now,
		})
	}
	return records
}

func primaryCurrencyCode(c restcountries.Country) *string {
	if len(c.Currencies) == 0 || c.Currencies[0].Code == "" {
		return nil
	}
	return ptr(c.Currencies[0].Code)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ptr[T any](v T) *T {
	return &v
}
