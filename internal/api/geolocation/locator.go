package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	appMiddleware "github.com/FACorreiaa/go-travel-assistant/app/middleware"
	"github.com/FACorreiaa/go-travel-assistant/app/retry"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

// Locator resolves the caller's current position.
type Locator interface {
	Locate(ctx context.Context) (types.Location, error)
}

var (
	_ Locator = (*IPLocator)(nil)
	_ Locator = (*CachedLocator)(nil)
)

// IPLocator asks an ip-api compatible service for the position of the client
// address found in the request context.
type IPLocator struct {
	endpoint   string
	httpClient *http.Client
	policy     retry.Policy
	logger     *slog.Logger
}

func NewIPLocator(endpoint string, policy retry.Policy, logger *slog.Logger) *IPLocator {
	return &IPLocator{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{},
		policy:     policy,
		logger:     logger,
	}
}

type ipAPIResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

func (l *IPLocator) lookupURL(ctx context.Context) string {
	ip, ok := appMiddleware.GetClientIPFromContext(ctx)
	if !ok {
		return l.endpoint + "/json/"
	}
	// Loopback and private addresses cannot be located; let the service use the
	// address it sees.
	if parsed := net.ParseIP(ip); parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() {
		return l.endpoint + "/json/"
	}
	return l.endpoint + "/json/" + ip
}

func (l *IPLocator) Locate(ctx context.Context) (types.Location, error) {
	ctx, span := otel.Tracer("Geolocation").Start(ctx, "IPLocate")
	defer span.End()

	var loc types.Location
	err := retry.Do(ctx, l.policy, l.logger, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.lookupURL(ctx), nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to build geolocation request: %w", err))
		}
		resp, err := l.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %w", types.ErrUpstreamUnavailable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			statusErr := fmt.Errorf("%w: geolocation returned status %d", types.ErrUpstreamUnavailable, resp.StatusCode)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
				return statusErr
			}
			return retry.Permanent(statusErr)
		}

		var payload ipAPIResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return retry.Permanent(fmt.Errorf("%w: %w", types.ErrMalformedResponse, err))
		}
		if payload.Status != "success" {
			return retry.Permanent(fmt.Errorf("%w: geolocation lookup failed: %s", types.ErrUpstreamUnavailable, payload.Message))
		}
		if payload.Lat == nil || payload.Lon == nil {
			return retry.Permanent(fmt.Errorf("%w: geolocation response has no coordinates", types.ErrMalformedResponse))
		}
		loc = types.Location{Lat: *payload.Lat, Lon: *payload.Lon}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Geolocation lookup failed")
		return types.Location{}, err
	}
	span.SetStatus(codes.Ok, "Located")
	return loc, nil
}

// Options mirror the browser geolocation settings.
type Options struct {
	Timeout    time.Duration
	MaximumAge time.Duration
}

var DefaultOptions = Options{Timeout: 10 * time.Second, MaximumAge: 5 * time.Minute}

// CachedLocator bounds each lookup by Timeout and reuses a position younger
// than MaximumAge. One instance belongs to one conversation.
type CachedLocator struct {
	locator Locator
	opts    Options
	now     func() time.Time

	mu      sync.Mutex
	last    types.Location
	fixedAt time.Time
	hasFix  bool
}

func NewCachedLocator(locator Locator, opts Options) *CachedLocator {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions.Timeout
	}
	if opts.MaximumAge < 0 {
		opts.MaximumAge = 0
	}
	return &CachedLocator{locator: locator, opts: opts, now: time.Now}
}

func (c *CachedLocator) Locate(ctx context.Context) (types.Location, error) {
	if c == nil || c.locator == nil {
		return types.Location{}, types.ErrUnsupportedCapability
	}

	c.mu.Lock()
	if c.hasFix && c.now().Sub(c.fixedAt) <= c.opts.MaximumAge {
		loc := c.last
		c.mu.Unlock()
		return loc, nil
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	loc, err := c.locator.Locate(ctx)
	if err != nil {
		return types.Location{}, err
	}

	c.mu.Lock()
	c.last, c.fixedAt, c.hasFix = loc, c.now(), true
	c.mu.Unlock()
	return loc, nil
}
