package nearby

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-assistant/app/retry"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

// Element is one entry of an Overpass "elements" array. Nodes carry lat/lon,
// ways and relations queried with "out center" carry a center.
type Element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *types.Location   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// Coordinates returns the element position, preferring direct coordinates.
func (e Element) Coordinates() (types.Location, bool) {
	if e.Lat != nil && e.Lon != nil {
		return types.Location{Lat: *e.Lat, Lon: *e.Lon}, true
	}
	if e.Center != nil {
		return *e.Center, true
	}
	return types.Location{}, false
}

// Category is the display category of the element.
func (e Element) Category() string {
	if v := e.Tags["tourism"]; v != "" {
		return v
	}
	if v := e.Tags["amenity"]; v != "" {
		return v
	}
	return "place"
}

type overpassResponse struct {
	Elements *[]Element `json:"elements"`
}

// GeoQuerier runs a structured query against a geodata index.
type GeoQuerier interface {
	Query(ctx context.Context, query string) ([]Element, error)
}

var _ GeoQuerier = (*OverpassClient)(nil)

type OverpassClient struct {
	endpoint   string
	httpClient *http.Client
	policy     retry.Policy
	logger     *slog.Logger
}

func NewOverpassClient(endpoint string, timeout time.Duration, policy retry.Policy, logger *slog.Logger) *OverpassClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OverpassClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		policy:     policy,
		logger:     logger,
	}
}

// Query posts the form-encoded query. Transport errors, 429 and 5xx responses are
// retried with backoff; other failures return immediately.
func (c *OverpassClient) Query(ctx context.Context, query string) ([]Element, error) {
	ctx, span := otel.Tracer("OverpassClient").Start(ctx, "Query", trace.WithAttributes(
		attribute.Int("query.length", len(query)),
		attribute.String("endpoint", c.endpoint),
	))
	defer span.End()

	var elements []Element
	err := retry.Do(ctx, c.policy, c.logger, func(ctx context.Context) error {
		form := url.Values{}
		form.Set("data", query)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to build overpass request: %w", err))
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %w", types.ErrUpstreamUnavailable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			statusErr := fmt.Errorf("%w: overpass returned status %d", types.ErrUpstreamUnavailable, resp.StatusCode)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
				return statusErr
			}
			return retry.Permanent(statusErr)
		}

		var payload overpassResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return retry.Permanent(fmt.Errorf("%w: %w", types.ErrMalformedResponse, err))
		}
		if payload.Elements == nil {
			return retry.Permanent(fmt.Errorf("%w: response has no elements array", types.ErrMalformedResponse))
		}
		elements = *payload.Elements
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Overpass query failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("elements.count", len(elements)))
	span.SetStatus(codes.Ok, "Overpass query succeeded")
	return elements, nil
}
