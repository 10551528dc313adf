package service

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/geofin/countrypulse/internal/providers/restcountries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeriver(t *testing.T, seed int64) *Deriver {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewDeriver(node, rand.New(rand.NewSource(seed)))
}

func TestDeriveGDPPolicy(t *testing.T) {
	d := newTestDeriver(t, 1)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	countries := []restcountries.Country{
		{Name: "Rated", Population: 1000, Currencies: []restcountries.Currency{{Code: "AAA"}}},
		{Name: "Unmatched", Population: 500, Currencies: []restcountries.Currency{{Code: "ZZZ"}}},
		{Name: "Currencyless", Population: 200},
	}
	rates := map[string]float64{"AAA": 2.0}

	records := d.Derive(now, countries, rates)
	require.Len(t, records, 3)

	rated := records[0]
	require.NotNil(t, rated.CurrencyCode)
	assert.Equal(t, "AAA", *rated.CurrencyCode)
	require.NotNil(t, rated.ExchangeRate)
	assert.Equal(t, 2.0, *rated.ExchangeRate)
	require.NotNil(t, rated.EstimatedGDP)
	assert.Greater(t, *rated.EstimatedGDP, 0.0)
	assert.False(t, math.IsInf(*rated.EstimatedGDP, 0))

	// Currency known but no rate: GDP is absent, not zero.
	unmatched := records[1]
	require.NotNil(t, unmatched.CurrencyCode)
	assert.Nil(t, unmatched.ExchangeRate)
	assert.Nil(t, unmatched.EstimatedGDP)

	// No currency at all: GDP is the zero sentinel, not absent.
	currencyless := records[2]
	assert.Nil(t, currencyless.CurrencyCode)
	assert.Nil(t, currencyless.ExchangeRate)
	require.NotNil(t, currencyless.EstimatedGDP)
	assert.Zero(t, *currencyless.EstimatedGDP)
}

func TestDeriveExactValuesWithSeededSource(t *testing.T) {
	seed := int64(42)
	d := newTestDeriver(t, seed)
	now := time.Now().UTC()

	countries := []restcountries.Country{
		{Name: "Testland", Population: 1000, Currencies: []restcountries.Currency{{Code: "AAA"}}},
	}
	records := d.Derive(now, countries, map[string]float64{"AAA": 2.0})
	require.Len(t, records, 1)

	expectedMultiplier := 1000 + rand.New(rand.NewSource(seed)).Float64()*1000
	require.NotNil(t, records[0].EstimatedGDP)
	assert.InDelta(t, 1000*expectedMultiplier/2.0, *records[0].EstimatedGDP, 1e-9)
}

func TestDeriveMultiplierRange(t *testing.T) {
	d := newTestDeriver(t, 7)
	now := time.Now().UTC()

	countries := make([]restcountries.Country, 100)
	for i := range countries {
		countries[i] = restcountries.Country{
			Name:       "C" + string(rune('A'+i%26)) + string(rune('A'+i/26)),
			Population: 1,
			Currencies: []restcountries.Currency{{Code: "AAA"}},
		}
	}

	records := d.Derive(now, countries, map[string]float64{"AAA": 1.0})
	for _, rec := range records {
		require.NotNil(t, rec.EstimatedGDP)
		assert.GreaterOrEqual(t, *rec.EstimatedGDP, 1000.0)
		assert.Less(t, *rec.EstimatedGDP, 2000.0)
	}
}

func TestDeriveStampsWholeBatchIdentically(t *testing.T) {
	d := newTestDeriver(t, 3)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	records := d.Derive(now, []restcountries.Country{
		{Name: "A", Population: 1},
		{Name: "B", Population: 2},
		{Name: "C", Population: 3},
	}, nil)

	for _, rec := range records {
		assert.True(t, rec.LastRefreshedAt.Equal(now))
	}
}

func TestDeriveOptionalFields(t *testing.T) {
	d := newTestDeriver(t, 5)

	records := d.Derive(time.Now().UTC(), []restcountries.Country{
		{Name: "Bare", Population: 10},
		{
			Name:       "Full",
			Capital:    "Fulltown",
			Region:     "Testia",
			Population: 10,
			Flag:       "https://flags.example/full.svg",
			Currencies: []restcountries.Currency{{Code: ""}},
		},
	}, nil)
	require.Len(t, records, 2)

	bare := records[0]
	assert.Nil(t, bare.Capital)
	assert.Nil(t, bare.Region)
	assert.Nil(t, bare.FlagURL)

	// A blank currency code counts as absent.
	full := records[1]
	assert.Nil(t, full.CurrencyCode)
	require.NotNil(t, full.EstimatedGDP)
	assert.Zero(t, *full.EstimatedGDP)
	require.NotNil(t, full.Capital)
	assert.Equal(t, "Fulltown", *full.Capital)
}
