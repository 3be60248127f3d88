// Package yahoo provides a client for the public Yahoo Finance endpoints
// used for quotes, symbol search and market movers.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second

	// Yahoo rejects requests without a browser-looking user agent.
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

// Quote is a point-in-time price snapshot for one symbol.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name,omitempty"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previous_close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume,omitempty"`
	Currency      string  `json:"currency,omitempty"`
}

// SearchResult is one symbol-search hit.
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
	Type     string `json:"type,omitempty"`
}

// Mover is one row of a predefined screener (day gainers, losers, most
// actives).
type Mover struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
}

// Screener identifiers accepted by Movers.
const (
	ScreenerGainers = "day_gainers"
	ScreenerLosers  = "day_losers"
	ScreenerActives = "most_actives"
)

// Client calls Yahoo Finance with request rate limiting.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit sets the request rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new Yahoo Finance client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode yahoo response: %w", err)
	}
	return nil
}

// GetQuote fetches the latest price for one symbol via the chart endpoint.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1d",
		c.baseURL, url.PathEscape(symbol))

	var body struct {
		Chart struct {
			Result []struct {
				Meta struct {
					Symbol             string  `json:"symbol"`
					ShortName          string  `json:"shortName"`
					RegularMarketPrice float64 `json:"regularMarketPrice"`
					ChartPreviousClose float64 `json:"chartPreviousClose"`
					RegularMarketVolume int64  `json:"regularMarketVolume"`
					Currency           string  `json:"currency"`
				} `json:"meta"`
			} `json:"result"`
			Error *struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		} `json:"chart"`
	}
	if err := c.get(ctx, endpoint, &body); err != nil {
		return nil, err
	}
	if body.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error: %s", body.Chart.Error.Code)
	}
	if len(body.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo chart: no result for %s", symbol)
	}

	meta := body.Chart.Result[0].Meta
	q := &Quote{
		Symbol:        meta.Symbol,
		Name:          meta.ShortName,
		Price:         meta.RegularMarketPrice,
		PreviousClose: meta.ChartPreviousClose,
		Volume:        meta.RegularMarketVolume,
		Currency:      meta.Currency,
	}
	q.Change = q.Price - q.PreviousClose
	if q.PreviousClose != 0 {
		q.ChangePercent = q.Change / q.PreviousClose * 100
	}
	return q, nil
}

// Search finds symbols matching a free-text query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	q := url.Values{
		"q":          {query},
		"quotesCount": {strconv.Itoa(limit)},
		"newsCount":  {"0"},
	}
	endpoint := fmt.Sprintf("%s/v1/finance/search?%s", c.baseURL, q.Encode())

	var body struct {
		Quotes []struct {
			Symbol    string `json:"symbol"`
			ShortName string `json:"shortname"`
			LongName  string `json:"longname"`
			Exchange  string `json:"exchange"`
			QuoteType string `json:"quoteType"`
		} `json:"quotes"`
	}
	if err := c.get(ctx, endpoint, &body); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(body.Quotes))
	for _, hit := range body.Quotes {
		name := hit.ShortName
		if name == "" {
			name = hit.LongName
		}
		results = append(results, SearchResult{
			Symbol:   hit.Symbol,
			Name:     name,
			Exchange: hit.Exchange,
			Type:     hit.QuoteType,
		})
	}
	return results, nil
}

// Movers fetches one predefined screener (gainers, losers or most actives).
func (c *Client) Movers(ctx context.Context, screener string, count int) ([]Mover, error) {
	q := url.Values{
		"scrIds": {screener},
		"count":  {strconv.Itoa(count)},
	}
	endpoint := fmt.Sprintf("%s/v1/finance/screener/predefined/saved?%s", c.baseURL, q.Encode())

	var body struct {
		Finance struct {
			Result []struct {
				Quotes []struct {
					Symbol                     string  `json:"symbol"`
					ShortName                  string  `json:"shortName"`
					RegularMarketPrice         float64 `json:"regularMarketPrice"`
					RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
				} `json:"quotes"`
			} `json:"result"`
			Error *struct {
				Code string `json:"code"`
			} `json:"error"`
		} `json:"finance"`
	}
	if err := c.get(ctx, endpoint, &body); err != nil {
		return nil, err
	}
	if body.Finance.Error != nil {
		return nil, fmt.Errorf("yahoo screener error: %s", body.Finance.Error.Code)
	}
	if len(body.Finance.Result) == 0 {
		return nil, fmt.Errorf("yahoo screener: no result for %s", screener)
	}

	quotes := body.Finance.Result[0].Quotes
	movers := make([]Mover, 0, len(quotes))
	for _, hit := range quotes {
		movers = append(movers, Mover{
			Symbol:        hit.Symbol,
			Name:          hit.ShortName,
			Price:         hit.RegularMarketPrice,
			ChangePercent: hit.RegularMarketChangePercent,
		})
	}
	return movers, nil
}
