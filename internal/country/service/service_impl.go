package service

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/geofin/countrypulse/internal/clock"
	"github.com/geofin/countrypulse/internal/country/domain"
	"github.com/geofin/countrypulse/internal/providers/exchangerate"
	"github.com/geofin/countrypulse/internal/providers/restcountries"
	"github.com/geofin/countrypulse/internal/summary"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SummaryRenderer is satisfied by summary.Renderer; tests substitute a
// failing implementation.
type SummaryRenderer interface {
	Render(snap summary.Snapshot) error
	Path() string
}

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Countries *restcountries.Client
	Rates     *exchangerate.Client
	Renderer  *summary.Renderer
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	repo      domain.Repository
	countries *restcountries.Client
	rates     *exchangerate.Client
	renderer  SummaryRenderer
	deriver   *Deriver
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("country.service"),
		clock:     p.Clock,
		repo:      p.Repo,
		countries: p.Countries,
		rates:     p.Rates,
		renderer:  p.Renderer,
		deriver:   NewDeriver(p.GenID, rand.New(rand.NewSource(time.Now().UnixNano()))),
	}
}

// Refresh runs the fetch, derive, upsert, render pipeline. The two upstream
// fetches run concurrently; everything after them is sequential. Summary
// rendering is best-effort and never fails the refresh.
func (s *Service) Refresh(ctx context.Context) (domain.RefreshResult, error) {
	var (
		countries []restcountries.Country
		rates     map[string]float64
		cErr      error
		rErr      error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		countries, cErr = s.countries.Fetch(ctx)
	}()
	go func() {
		defer wg.Done()
		rates, rErr = s.rates.Fetch(ctx)
	}()
	wg.Wait()

	if cErr != nil {
		return domain.RefreshResult{}, cErr
	}
	if rErr != nil {
		return domain.RefreshResult{}, rErr
	}

	stamp := s.clock.Now()
	records := s.deriver.Derive(stamp, countries, rates)

	if err := s.repo.EnsureSchema(ctx, s.db); err != nil {
		return domain.RefreshResult{}, err
	}
	if err := s.repo.UpsertAll(ctx, s.db, records); err != nil {
		return domain.RefreshResult{}, err
	}

	if err := s.renderSummary(ctx); err != nil {
		s.log.Error("summary image generation failed", zap.Error(err))
	}

	s.log.Info("countries refreshed",
		zap.Int("total", len(records)),
		zap.Time("last_refreshed_at", stamp),
	)
	return domain.RefreshResult{
		Total:           len(records),
		LastRefreshedAt: stamp.UTC(),
	}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Country, error) {
	sort := strings.TrimSpace(req.Sort)
	switch sort {
	case "", domain.SortGDPDesc, domain.SortGDPAsc:
	default:
		return nil, domain.ErrInvalidSort
	}

	return s.repo.List(ctx, s.db, domain.ListFilter{
		Region:   strings.TrimSpace(req.Region),
		Currency: strings.TrimSpace(req.Currency),
		Sort:     sort,
	})
}

func (s *Service) GetByName(ctx context.Context, name string) (domain.Country, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Country{}, domain.ErrInvalidName
	}

	found, err := s.repo.FindByName(ctx, s.db, name)
	if err != nil {
		return domain.Country{}, err
	}
	if found == nil {
		return domain.Country{}, domain.ErrNotFound
	}
	return *found, nil
}

func (s *Service) DeleteByName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrInvalidName
	}

	affected, err := s.repo.DeleteByName(ctx, s.db, name)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) Status(ctx context.Context) (domain.Status, error) {
	if err := s.repo.EnsureSchema(ctx, s.db); err != nil {
		return domain.Status{}, err
	}

	total, err := s.repo.Count(ctx, s.db)
	if err != nil {
		return domain.Status{}, err
	}
	last, err := s.repo.LastRefreshedAt(ctx, s.db)
	if err != nil {
		return domain.Status{}, err
	}

	return domain.Status{
		TotalCountries:  total,
		LastRefreshedAt: last,
	}, nil
}

func (s *Service) SummaryImagePath() string {
	return s.renderer.Path()
}

func (s *Service) renderSummary(ctx context.Context) error {
	total, err := s.repo.Count(ctx, s.db)
	if err != nil {
		return err
	}
	top, err := s.repo.TopByGDP(ctx, s.db, 5)
	if err != nil {
		return err
	}
	last, err := s.repo.LastRefreshedAt(ctx, s.db)
	if err != nil {
		return err
	}

	entries := make([]summary.Entry, 0, len(top))
	for _, c := range top {
		if c.EstimatedGDP == nil {
			continue
		}
		entries = append(entries, summary.Entry{
			Name:         c.Name,
			EstimatedGDP: *c.EstimatedGDP,
		})
	}

	return s.renderer.Render(summary.Snapshot{
		TotalCountries:  total,
		TopByGDP:        entries,
		LastRefreshedAt: last,
	})
}
