package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"vega/internal/domain/option"
	"vega/internal/metrics"
	"vega/pkg/errors"
)

const defaultHTTPTimeout = 10 * time.Second

// HTTPProvider talks to a REST market data gateway. The endpoint shape is
// vendor-neutral JSON; the gateway is expected to expose /v1/quote, /v1/bars
// and /v1/chain. All calls go through a shared rate limiter.
type HTTPProvider struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// HTTPProviderConfig configures an HTTP market data provider
type HTTPProviderConfig struct {
	Name              string
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMinute int
}

// NewHTTPProvider creates an HTTP market data provider. The rate limiter
// allows a burst of 10% of the per-minute budget.
func NewHTTPProvider(cfg HTTPProviderConfig) *HTTPProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	burst := rpm / 10
	if burst < 1 {
		burst = 1
	}
	return &HTTPProvider{
		name:    cfg.Name,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
	}
}

// Name implements the provider interfaces
func (p *HTTPProvider) Name() string { return p.name }

type quoteDTO struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"` // unix seconds
}

type barDTO struct {
	Time   int64   `json:"time"` // unix seconds
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

type chainDTO struct {
	Symbol string            `json:"symbol"`
	Expiry string            `json:"expiry"`
	Rows   []option.RawQuote `json:"rows"`
}

// GetQuote implements QuoteProvider
func (p *HTTPProvider) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	var dto quoteDTO
	params := url.Values{"symbol": {symbol}}
	if err := p.get(ctx, "/v1/quote", params, &dto); err != nil {
		return nil, err
	}
	if dto.Price <= 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "%s returned non-positive price %v for %s", p.name, dto.Price, symbol)
	}
	return &Quote{
		Symbol:    symbol,
		Price:     dto.Price,
		Timestamp: time.Unix(dto.Timestamp, 0).UTC(),
		Source:    p.name,
	}, nil
}

// GetDailyBars implements BarProvider
func (p *HTTPProvider) GetDailyBars(ctx context.Context, symbol string, limit int) ([]Bar, error) {
	var dtos []barDTO
	params := url.Values{
		"symbol": {symbol},
		"limit":  {fmt.Sprintf("%d", limit)},
	}
	if err := p.get(ctx, "/v1/bars", params, &dtos); err != nil {
		return nil, err
	}
	bars := make([]Bar, len(dtos))
	for i, d := range dtos {
		bars[i] = Bar{
			Time:   time.Unix(d.Time, 0).UTC(),
			Open:   d.Open,
			High:   d.High,
			Low:    d.Low,
			Close:  d.Close,
			Volume: d.Volume,
		}
	}
	return bars, nil
}

// GetChain implements ChainProvider
func (p *HTTPProvider) GetChain(ctx context.Context, symbol, expiry string) ([]option.RawQuote, error) {
	var dto chainDTO
	params := url.Values{
		"symbol": {symbol},
		"expiry": {expiry},
	}
	if err := p.get(ctx, "/v1/chain", params, &dto); err != nil {
		return nil, err
	}
	if len(dto.Rows) == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyChain, "%s returned no rows for %s %s", p.name, symbol, expiry)
	}
	return dto.Rows, nil
}

// get performs a rate-limited GET and decodes the JSON body into out
func (p *HTTPProvider) get(ctx context.Context, path string, params url.Values, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordProviderCall(p.name, path, time.Since(start), err)
	}()

	if err := p.limiter.Wait(ctx); err != nil {
		return errors.Wrapf(errors.ErrRateLimitExceeded, "provider %s: %v", p.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return errors.Wrap(err, "create HTTP request")
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return errors.Wrapf(errors.ErrProviderUnavailable, "provider %s: %v", p.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response body")
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return errors.Wrapf(errors.ErrRateLimitExceeded, "provider %s throttled request to %s", p.name, path)
	}
	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return errors.Wrapf(errors.ErrProviderUnavailable, "provider %s (%d): %s", p.name, resp.StatusCode, errResp.Error)
		}
		return errors.Wrapf(errors.ErrProviderUnavailable, "provider %s (%d): %s", p.name, resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "unmarshal %s response", path)
	}
	return nil
}
