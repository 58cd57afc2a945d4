package stock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmethakanbesel/stockseries/internal/apperror"
	"github.com/ahmethakanbesel/stockseries/internal/scraper"
)

type Service struct {
	registry *scraper.Registry
	now      func() time.Time
}

func NewService(registry *scraper.Registry) *Service {
	return &Service{
		registry: registry,
		now:      time.Now,
	}
}

// SetClock replaces time.Now for stocks built by the service.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

func (s *Service) ListSources() []string {
	return s.registry.Sources()
}

// Load builds the Stock a request describes. When the source rejects its
// session credentials they are refreshed once and the build is retried.
func (s *Service) Load(ctx context.Context, req LoadRequest) (*Stock, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	src, err := s.registry.Get(req.Source)
	if err != nil {
		return nil, apperror.New(apperror.BadRequest, err.Error())
	}

	interval, _ := scraper.ParseInterval(string(req.Interval))
	opts := []Option{
		WithRange(req.From, req.To),
		WithInterval(interval),
		WithClock(s.now),
	}

	st, err := New(ctx, src, req.Symbol, opts...)
	if err == nil || !errors.Is(err, scraper.ErrUnauthorized) {
		return st, err
	}

	r, ok := src.(scraper.Refresher)
	if !ok {
		return nil, err
	}

	slog.Warn("session credentials rejected, refreshing", "source", src.Name(), "symbol", req.Symbol)
	if rerr := r.Refresh(ctx); rerr != nil {
		return nil, fmt.Errorf("%w: refresh credentials: %w", ErrFetchFailed, rerr)
	}

	return New(ctx, src, req.Symbol, opts...)
}
