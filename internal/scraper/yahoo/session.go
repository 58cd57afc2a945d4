package yahoo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ahmethakanbesel/stockseries/internal/scraper"
)

const (
	defaultCookieURL = "https://fc.yahoo.com"
	defaultCrumbURL  = "https://query1.finance.yahoo.com/v1/test/getcrumb"
	sessionTimeout   = 30 * time.Second
)

var _ scraper.CredentialProvider = (*SessionProvider)(nil)

// SessionProvider acquires the session cookie and crumb once and hands the
// cached pair to every caller until Refresh is called. Concurrent
// acquisitions share a single round trip.
type SessionProvider struct {
	client    *http.Client
	cookieURL string
	crumbURL  string
	userAgent string

	group singleflight.Group

	mu    sync.Mutex
	creds scraper.Credentials
}

// SessionOption configures a SessionProvider.
type SessionOption func(*SessionProvider)

// WithSessionClient sets the HTTP client used for the session round trips.
func WithSessionClient(c *http.Client) SessionOption {
	return func(p *SessionProvider) { p.client = c }
}

// WithCookieURL overrides the URL used to obtain the session cookie.
func WithCookieURL(u string) SessionOption {
	return func(p *SessionProvider) { p.cookieURL = u }
}

// WithCrumbURL overrides the URL used to obtain the crumb token.
func WithCrumbURL(u string) SessionOption {
	return func(p *SessionProvider) { p.crumbURL = u }
}

// WithSessionUserAgent overrides the User-Agent header.
func WithSessionUserAgent(ua string) SessionOption {
	return func(p *SessionProvider) { p.userAgent = ua }
}

// NewSessionProvider creates a SessionProvider with the given options applied.
func NewSessionProvider(opts ...SessionOption) *SessionProvider {
	p := &SessionProvider{
		client:    &http.Client{},
		cookieURL: defaultCookieURL,
		crumbURL:  defaultCrumbURL,
		userAgent: userAgent,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Credentials returns the cached pair, acquiring it on first use.
func (p *SessionProvider) Credentials(ctx context.Context) (scraper.Credentials, error) {
	p.mu.Lock()
	c := p.creds
	p.mu.Unlock()

	if c.Valid() {
		return c, nil
	}
	return p.acquire(ctx)
}

// Refresh drops the cached pair and acquires a new one.
func (p *SessionProvider) Refresh(ctx context.Context) (scraper.Credentials, error) {
	p.mu.Lock()
	p.creds = scraper.Credentials{}
	p.mu.Unlock()

	return p.acquire(ctx)
}

func (p *SessionProvider) acquire(ctx context.Context) (scraper.Credentials, error) {
	v, err, _ := p.group.Do("session", func() (any, error) {
		p.mu.Lock()
		cached := p.creds
		p.mu.Unlock()
		if cached.Valid() {
			return cached, nil
		}

		// Waiters share this fetch, so it must outlive any one caller.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sessionTimeout)
		defer cancel()

		c, err := p.fetch(fctx)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.creds = c
		p.mu.Unlock()
		slog.Info("yahoo: obtained session", "crumb_len", len(c.Crumb))
		return c, nil
	})
	if err != nil {
		return scraper.Credentials{}, fmt.Errorf("%w: %v", scraper.ErrCredentialUnavailable, err)
	}
	return v.(scraper.Credentials), nil
}

func (p *SessionProvider) fetch(ctx context.Context) (scraper.Credentials, error) {
	// Step 1: any response from the cookie URL carries the session cookie,
	// whatever its status.
	cookieReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cookieURL, nil)
	if err != nil {
		return scraper.Credentials{}, fmt.Errorf("build cookie request: %w", err)
	}
	cookieReq.Header.Set("User-Agent", p.userAgent)

	cookieRes, err := p.client.Do(cookieReq) //nolint:gosec // URL from internal config
	if err != nil {
		return scraper.Credentials{}, fmt.Errorf("fetch cookie: %w", err)
	}
	_, _ = io.Copy(io.Discard, cookieRes.Body)
	_ = cookieRes.Body.Close()

	pairs := make([]string, 0, len(cookieRes.Cookies()))
	for _, ck := range cookieRes.Cookies() {
		pairs = append(pairs, ck.Name+"="+ck.Value)
	}
	if len(pairs) == 0 {
		return scraper.Credentials{}, fmt.Errorf("no session cookie received")
	}
	cookie := strings.Join(pairs, "; ")

	// Step 2: the crumb is bound to the cookie.
	crumbReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.crumbURL, nil)
	if err != nil {
		return scraper.Credentials{}, fmt.Errorf("build crumb request: %w", err)
	}
	crumbReq.Header.Set("User-Agent", p.userAgent)
	crumbReq.Header.Set("Cookie", cookie)

	crumbRes, err := p.client.Do(crumbReq) //nolint:gosec // URL from internal config
	if err != nil {
		return scraper.Credentials{}, fmt.Errorf("fetch crumb: %w", err)
	}
	defer func() { _ = crumbRes.Body.Close() }()

	if crumbRes.StatusCode != http.StatusOK {
		return scraper.Credentials{}, fmt.Errorf("crumb endpoint returned HTTP %d", crumbRes.StatusCode)
	}

	body, err := io.ReadAll(crumbRes.Body)
	if err != nil {
		return scraper.Credentials{}, fmt.Errorf("read crumb: %w", err)
	}

	crumb := strings.TrimSpace(string(body))
	if crumb == "" {
		return scraper.Credentials{}, fmt.Errorf("empty crumb received")
	}

	return scraper.Credentials{Cookie: cookie, Crumb: crumb}, nil
}
