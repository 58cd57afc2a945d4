package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ahmethakanbesel/stockseries/internal/calendar"
	"github.com/ahmethakanbesel/stockseries/internal/series"
)

var (
	ErrCredentialUnavailable = errors.New("session credentials unavailable")
	ErrUnauthorized          = errors.New("upstream rejected session credentials")
	ErrNoData                = errors.New("no data returned")
)

// Interval is the spacing of history records.
type Interval string

const (
	Daily   Interval = "1d"
	Weekly  Interval = "1wk"
	Monthly Interval = "1mo"
)

// ParseInterval accepts "daily", "weekly", "monthly" or the upstream codes.
// An empty string means Daily.
func ParseInterval(s string) (Interval, error) {
	switch s {
	case "", "daily", string(Daily):
		return Daily, nil
	case "weekly", string(Weekly):
		return Weekly, nil
	case "monthly", string(Monthly):
		return Monthly, nil
	default:
		return "", fmt.Errorf("unknown interval %q", s)
	}
}

// Source fetches history and key statistics for a symbol.
type Source interface {
	Name() string
	// History returns the records between from and to, oldest first.
	History(ctx context.Context, symbol string, from, to calendar.Date, interval Interval) ([]series.DailyRecord, error)
	// Statistics returns the raw label -> text mapping of the statistics page.
	Statistics(ctx context.Context, symbol string) (map[string]string, error)
}

// Refresher is implemented by sources whose session credentials can be
// re-acquired after ErrUnauthorized.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Credentials is the session cookie and crumb pair the history endpoint requires.
type Credentials struct {
	Cookie string
	Crumb  string
}

func (c Credentials) Valid() bool { return c.Cookie != "" && c.Crumb != "" }

// CredentialProvider hands out cached session credentials. Refresh discards
// the cached pair and acquires a new one.
type CredentialProvider interface {
	Credentials(ctx context.Context) (Credentials, error)
	Refresh(ctx context.Context) (Credentials, error)
}

type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]Source),
	}
}

func (r *Registry) Register(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[s.Name()] = s
}

func (r *Registry) Get(name string) (Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("source not found: %s", name)
	}
	return s, nil
}

func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	return names
}
