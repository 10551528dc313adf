package service

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/geofin/countrypulse/internal/clock"
	"github.com/geofin/countrypulse/internal/config"
	"github.com/geofin/countrypulse/internal/country/domain"
	"github.com/geofin/countrypulse/internal/country/repository"
	"github.com/geofin/countrypulse/internal/providers/exchangerate"
	"github.com/geofin/countrypulse/internal/providers/restcountries"
	"github.com/geofin/countrypulse/internal/providers/upstream"
	"github.com/geofin/countrypulse/internal/summary"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

const countriesPayload = `[
	{"name":"Testland","capital":"Test City","region":"Testia","population":1000,
	 "flag":"https://flags.example/t.svg","currencies":[{"code":"AAA"}]},
	{"name":"Nocurrencia","region":"Testia","population":50,"currencies":[]}
]`

const ratesPayload = `{"result":"success","rates":{"USD":1,"AAA":2.0}}`

type failingRenderer struct {
	path string
}

func (f *failingRenderer) Render(snap summary.Snapshot) error {
	return errors.New("font resource missing")
}

func (f *failingRenderer) Path() string {
	return f.path
}

func jsonHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

func newTestService(t *testing.T, countriesURL, ratesURL string, renderer SummaryRenderer, now time.Time) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	if renderer == nil {
		renderer = summary.NewRenderer(config.Config{SummaryCacheDir: t.TempDir()}, logger)
	}

	return &Service{
		db:        db,
		log:       logger,
		clock:     clock.NewFakeClock(now),
		repo:      repository.Provide(),
		countries: restcountries.New(config.Config{CountriesAPIBaseURL: countriesURL}, logger),
		rates:     exchangerate.New(config.Config{ExchangeAPIBaseURL: ratesURL}, logger),
		renderer:  renderer,
		deriver:   NewDeriver(node, rand.New(rand.NewSource(1))),
	}
}

func TestRefreshEndToEnd(t *testing.T) {
	countriesSrv := httptest.NewServer(jsonHandler(countriesPayload))
	defer countriesSrv.Close()
	ratesSrv := httptest.NewServer(jsonHandler(ratesPayload))
	defer ratesSrv.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, countriesSrv.URL, ratesSrv.URL, nil, now)
	ctx := context.Background()

	res, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.True(t, res.LastRefreshedAt.Equal(now))

	rated, err := svc.GetByName(ctx, "Testland")
	require.NoError(t, err)
	require.NotNil(t, rated.EstimatedGDP)
	assert.Greater(t, *rated.EstimatedGDP, 0.0)
	require.NotNil(t, rated.ExchangeRate)
	assert.Equal(t, 2.0, *rated.ExchangeRate)

	currencyless, err := svc.GetByName(ctx, "Nocurrencia")
	require.NoError(t, err)
	require.NotNil(t, currencyless.EstimatedGDP)
	assert.Zero(t, *currencyless.EstimatedGDP)
	assert.Nil(t, currencyless.CurrencyCode)

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), status.TotalCountries)
	require.NotNil(t, status.LastRefreshedAt)
	assert.WithinDuration(t, now, *status.LastRefreshedAt, time.Second)

	// The summary artifact landed at the advertised path.
	_, err = os.Stat(svc.SummaryImagePath())
	assert.NoError(t, err)
}

func TestRefreshTwiceKeepsOneRowPerName(t *testing.T) {
	countriesSrv := httptest.NewServer(jsonHandler(countriesPayload))
	defer countriesSrv.Close()
	ratesSrv := httptest.NewServer(jsonHandler(ratesPayload))
	defer ratesSrv.Close()

	svc := newTestService(t, countriesSrv.URL, ratesSrv.URL, nil, time.Now().UTC())
	ctx := context.Background()

	_, err := svc.Refresh(ctx)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx)
	require.NoError(t, err)

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), status.TotalCountries)
}

func TestRefreshAbortsWhenCountrySourceFails(t *testing.T) {
	countriesSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer countriesSrv.Close()
	ratesSrv := httptest.NewServer(jsonHandler(ratesPayload))
	defer ratesSrv.Close()

	svc := newTestService(t, countriesSrv.URL, ratesSrv.URL, nil, time.Now().UTC())
	ctx := context.Background()

	_, err := svc.Refresh(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream.ErrUnavailable)

	var srcErr *upstream.Error
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, restcountries.Source, srcErr.Source)

	// Nothing was written.
	status, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Zero(t, status.TotalCountries)
	assert.Nil(t, status.LastRefreshedAt)
}

func TestRefreshAbortsWhenRateSourceFails(t *testing.T) {
	countriesSrv := httptest.NewServer(jsonHandler(countriesPayload))
	defer countriesSrv.Close()
	ratesSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ratesSrv.Close()

	svc := newTestService(t, countriesSrv.URL, ratesSrv.URL, nil, time.Now().UTC())

	_, err := svc.Refresh(context.Background())
	require.Error(t, err)

	var srcErr *upstream.Error
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, exchangerate.Source, srcErr.Source)
}

func TestRefreshSucceedsWhenRenderFails(t *testing.T) {
	countriesSrv := httptest.NewServer(jsonHandler(countriesPayload))
	defer countriesSrv.Close()
	ratesSrv := httptest.NewServer(jsonHandler(ratesPayload))
	defer ratesSrv.Close()

	renderer := &failingRenderer{path: filepath.Join(t.TempDir(), "summary.png")}
	svc := newTestService(t, countriesSrv.URL, ratesSrv.URL, renderer, time.Now().UTC())

	res, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)

	// No image was ever produced.
	_, err = os.Stat(svc.SummaryImagePath())
	assert.True(t, os.IsNotExist(err))
}

func TestListRejectsUnknownSort(t *testing.T) {
	svc := newTestService(t, "http://127.0.0.1:0", "http://127.0.0.1:0", nil, time.Now().UTC())

	_, err := svc.List(context.Background(), domain.ListRequest{Sort: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidSort)
}

func TestGetByNameRequiresName(t *testing.T) {
	svc := newTestService(t, "http://127.0.0.1:0", "http://127.0.0.1:0", nil, time.Now().UTC())

	_, err := svc.GetByName(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestDeleteByNameNotFound(t *testing.T) {
	svc := newTestService(t, "http://127.0.0.1:0", "http://127.0.0.1:0", nil, time.Now().UTC())
	ctx := context.Background()

	require.NoError(t, svc.repo.EnsureSchema(ctx, svc.db))
	err := svc.DeleteByName(ctx, "Atlantis")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
