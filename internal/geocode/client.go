package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"gostop.app/internal/config"
	"gostop.app/internal/geo"
	"gostop.app/internal/metrics"
)

// Provider is the backoff key for the TMAP reverse geocoding API.
const Provider = "tmap-geocode"

type reverseGeocodeResponse struct {
	AddressInfo *struct {
		FullAddress  string `json:"fullAddress"`
		LegalDong    string `json:"legalDong"`
		RoadName     string `json:"roadName"`
		BuildingName string `json:"buildingName"`
	} `json:"addressInfo"`
}

// Client calls the TMAP reverse geocoding endpoint.
type Client struct {
	baseURL    string
	appKey     string
	httpClient *http.Client
	backoff    *config.BackoffStore
	cache      Cache
	maxRetries int
	logger     *slog.Logger
}

type Option func(*Client)

func WithCache(c Cache) Option { return func(cl *Client) { cl.cache = c } }

func WithBackoffStore(s *config.BackoffStore) Option { return func(cl *Client) { cl.backoff = s } }

func WithMaxRetries(n int) Option { return func(cl *Client) { cl.maxRetries = n } }

func WithLogger(l *slog.Logger) Option { return func(cl *Client) { cl.logger = l } }

func NewClient(baseURL, appKey string, httpClient *http.Client, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		appKey:     appKey,
		httpClient: httpClient,
		backoff:    config.NewBackoffStore(),
		maxRetries: config.DefaultMaxRetries,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReverseGeocode resolves p to an address. It returns ErrUnresolvable when
// the provider knows no address there and ErrProviderBackoff while the
// provider is cooling down after a failure.
func (c *Client) ReverseGeocode(ctx context.Context, p geo.Point) (Address, error) {
	if !p.Valid() {
		return Address{}, fmt.Errorf("reverse geocode %s: invalid coordinates", p)
	}

	key := geo.CellKey(p, geo.CacheLevel)
	if c.cache != nil {
		e, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.Warn("geocode cache read failed", "key", key, "error", err)
		} else if ok {
			metrics.ReverseGeocodeResults.WithLabelValues("cache_hit").Inc()
			return toAddress(p, e)
		}
	}

	if c.backoff.InBackoff(Provider) {
		metrics.ReverseGeocodeResults.WithLabelValues("backoff").Inc()
		return Address{}, ErrProviderBackoff
	}

	e, persist, err := c.fetch(ctx, p)
	if err != nil {
		if ctx.Err() == nil {
			c.backoff.UpdateBackoff(Provider)
		}
		metrics.ReverseGeocodeResults.WithLabelValues("error").Inc()
		return Address{}, fmt.Errorf("reverse geocode %s: %w", p, err)
	}
	c.backoff.ResetBackoff(Provider)

	if e.Resolved {
		metrics.ReverseGeocodeResults.WithLabelValues("resolved").Inc()
	} else {
		metrics.ReverseGeocodeResults.WithLabelValues("unresolvable").Inc()
	}

	if c.cache != nil && persist {
		if err := c.cache.Put(ctx, key, e); err != nil {
			c.logger.Warn("geocode cache write failed", "key", key, "error", err)
		}
	}

	return toAddress(p, e)
}

// IsLand reports whether p has an address. Provider failures are returned
// as errors rather than guessed.
func (c *Client) IsLand(ctx context.Context, p geo.Point) (bool, error) {
	_, err := c.ReverseGeocode(ctx, p)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrUnresolvable):
		return false, nil
	default:
		return false, err
	}
}

func toAddress(p geo.Point, e Entry) (Address, error) {
	if !e.Resolved {
		return Address{}, ErrUnresolvable
	}
	return Address{Text: e.Text, Resolved: true, Point: p}, nil
}

// fetch asks the provider about p. persist is false for verdicts that may
// reflect a rejected request rather than the place itself.
func (c *Client) fetch(ctx context.Context, p geo.Point) (e Entry, persist bool, err error) {
	q := url.Values{}
	q.Set("version", "1")
	q.Set("lat", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(p.Lng, 'f', -1, 64))
	q.Set("coordType", "WGS84GEO")
	q.Set("addressType", "A10")
	q.Set("appKey", c.appKey)

	endpoint := c.baseURL + "/tmap/geo/reversegeocoding?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Entry{}, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := config.DoWithBackoff(ctx, c.httpClient, req, c.maxRetries)
	if err != nil {
		return Entry{}, false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusNotFound:
		return Entry{}, true, nil
	case http.StatusBadRequest:
		// TMAP answers 400 for open sea, but also for requests it rejects.
		return Entry{}, false, nil
	default:
		return Entry{}, false, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var decoded reverseGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Entry{}, false, fmt.Errorf("decode reverse geocode response: %w", err)
	}
	if decoded.AddressInfo == nil {
		return Entry{}, true, nil
	}

	info := decoded.AddressInfo
	text := formatAddress(info.LegalDong, info.RoadName, info.BuildingName)
	if text == "" {
		text = strings.TrimSpace(info.FullAddress)
	}
	if text == "" {
		return Entry{}, true, nil
	}
	return Entry{Text: text, Resolved: true}, true, nil
}
