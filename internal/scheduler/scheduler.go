package scheduler

import (
	"context"
	"time"

	"github.com/geofin/countrypulse/internal/config"
	countrydomain "github.com/geofin/countrypulse/internal/country/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module starts the background refresh loop when an interval is configured.
var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(Register),
)

const runTimeout = 2 * time.Minute

// Refresher is the slice of the country service the loop needs.
type Refresher interface {
	Refresh(ctx context.Context) (countrydomain.RefreshResult, error)
}

// Scheduler periodically re-runs the refresh pipeline. It provides no
// mutual exclusion against HTTP-triggered refreshes; the upsert's row-level
// semantics make overlapping runs last-write-wins.
type Scheduler struct {
	interval time.Duration
	log      *zap.Logger
	svc      Refresher
	stop     chan struct{}
	done     chan struct{}
}

func New(cfg config.Config, log *zap.Logger, svc countrydomain.Service) *Scheduler {
	return &Scheduler{
		interval: cfg.RefreshInterval,
		log:      log.Named("scheduler"),
		svc:      svc,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func Register(lc fx.Lifecycle, s *Scheduler) {
	if s.interval <= 0 {
		s.log.Info("periodic refresh disabled")
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go s.loop()
			s.log.Info("periodic refresh enabled", zap.Duration("interval", s.interval))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.Stop()
			return nil
		},
	})
}

func (s *Scheduler) loop() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	res, err := s.svc.Refresh(ctx)
	if err != nil {
		s.log.Error("scheduled refresh failed", zap.Error(err))
		return
	}
	s.log.Info("scheduled refresh completed",
		zap.Int("total", res.Total),
		zap.Time("last_refreshed_at", res.LastRefreshedAt),
	)
}

// Stop halts the loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.done
}
