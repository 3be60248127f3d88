package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"finconnect/internal/cache"
	"finconnect/internal/clients/yahoo"
)

// quoteCacheTTL is how long a proxied quote stays in Redis.
const quoteCacheTTL = 60 * time.Second

// MoverKind selects a predefined screener.
type MoverKind string

const (
	MoversGainers MoverKind = "gainers"
	MoversLosers  MoverKind = "losers"
	MoversActives MoverKind = "actives"
)

var screenerIDs = map[MoverKind]string{
	MoversGainers: yahoo.ScreenerGainers,
	MoversLosers:  yahoo.ScreenerLosers,
	MoversActives: yahoo.ScreenerActives,
}

// MarketService proxies quotes, symbol search and movers. Every path degrades
// to mock data, so the dashboard keeps working without upstream access.
type MarketService struct {
	client *yahoo.Client
	cache  *cache.Client
	logger zerolog.Logger
}

// NewMarketService creates a new market data service.
func NewMarketService(client *yahoo.Client, cacheClient *cache.Client, logger zerolog.Logger) *MarketService {
	return &MarketService{client: client, cache: cacheClient, logger: logger}
}

// GetQuote returns a price snapshot for one symbol, cached for quoteCacheTTL.
func (s *MarketService) GetQuote(ctx context.Context, symbol string) (*yahoo.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	key := "quote:" + symbol

	if cached, _ := s.cache.Get(ctx, key); cached != nil {
		var quote yahoo.Quote
		if err := json.Unmarshal(cached, &quote); err == nil {
			return &quote, nil
		}
	}

	quote, err := s.client.GetQuote(ctx, symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("quote upstream failed, serving mock")
		quote = mockQuote(symbol)
	}

	if payload, err := json.Marshal(quote); err == nil {
		_ = s.cache.Set(ctx, key, payload, quoteCacheTTL)
	}
	return quote, nil
}

// Search returns symbols matching a free-text query.
func (s *MarketService) Search(ctx context.Context, query string) ([]yahoo.SearchResult, error) {
	results, err := s.client.Search(ctx, query, 10)
	if err != nil {
		s.logger.Warn().Err(err).Str("query", query).Msg("search upstream failed, serving mock")
		return mockSearch(query), nil
	}
	if len(results) == 0 {
		return mockSearch(query), nil
	}
	return results, nil
}

// Movers returns one predefined screener's rows.
func (s *MarketService) Movers(ctx context.Context, kind MoverKind) ([]yahoo.Mover, error) {
	screener, ok := screenerIDs[kind]
	if !ok {
		return nil, fmt.Errorf("unknown movers type %q", kind)
	}

	movers, err := s.client.Movers(ctx, screener, 10)
	if err != nil {
		s.logger.Warn().Err(err).Str("screener", screener).Msg("movers upstream failed, serving mock")
		return mockMovers[kind], nil
	}
	if len(movers) == 0 {
		return mockMovers[kind], nil
	}
	return movers, nil
}

// mockQuote fabricates a plausible snapshot: a previous close in the 50-550
// range with today's price within ±5% of it.
func mockQuote(symbol string) *yahoo.Quote {
	prevClose := round2(rand.Float64()*500 + 50)
	price := round2(prevClose * (1 + (rand.Float64()*0.1 - 0.05)))

	q := &yahoo.Quote{
		Symbol:        symbol,
		Name:          symbol + " Company",
		Price:         price,
		PreviousClose: prevClose,
		Volume:        rand.Int63n(10_000_000),
		Currency:      "USD",
	}
	q.Change = round2(q.Price - q.PreviousClose)
	q.ChangePercent = round2(q.Change / q.PreviousClose * 100)
	return q
}

var mockSearchUniverse = []yahoo.SearchResult{
	{Symbol: "AAPL", Name: "Apple Inc."},
	{Symbol: "MSFT", Name: "Microsoft Corporation"},
	{Symbol: "GOOGL", Name: "Alphabet Inc."},
	{Symbol: "AMZN", Name: "Amazon.com Inc."},
	{Symbol: "TSLA", Name: "Tesla Inc."},
	{Symbol: "META", Name: "Meta Platforms Inc."},
	{Symbol: "NVDA", Name: "NVIDIA Corporation"},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co."},
	{Symbol: "JNJ", Name: "Johnson & Johnson"},
	{Symbol: "V", Name: "Visa Inc."},
}

func mockSearch(query string) []yahoo.SearchResult {
	query = strings.ToLower(query)
	var hits []yahoo.SearchResult
	for _, item := range mockSearchUniverse {
		if strings.Contains(strings.ToLower(item.Symbol), query) ||
			strings.Contains(strings.ToLower(item.Name), query) {
			hits = append(hits, item)
		}
	}
	return hits
}

var mockMovers = map[MoverKind][]yahoo.Mover{
	MoversGainers: {
		{Symbol: "AAPL", Name: "Apple Inc.", Price: 182.63, ChangePercent: 2.34},
		{Symbol: "MSFT", Name: "Microsoft Corporation", Price: 378.85, ChangePercent: 1.89},
		{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: 138.21, ChangePercent: 1.56},
		{Symbol: "TSLA", Name: "Tesla Inc.", Price: 234.50, ChangePercent: 3.21},
		{Symbol: "NVDA", Name: "NVIDIA Corporation", Price: 450.05, ChangePercent: 4.12},
	},
	MoversLosers: {
		{Symbol: "META", Name: "Meta Platforms Inc.", Price: 320.40, ChangePercent: -1.23},
		{Symbol: "AMZN", Name: "Amazon.com Inc.", Price: 145.18, ChangePercent: -0.89},
		{Symbol: "NFLX", Name: "Netflix Inc.", Price: 485.25, ChangePercent: -1.45},
		{Symbol: "INTC", Name: "Intel Corporation", Price: 44.12, ChangePercent: -2.34},
		{Symbol: "CSCO", Name: "Cisco Systems Inc.", Price: 50.67, ChangePercent: -0.67},
	},
	MoversActives: {
		{Symbol: "SPY", Name: "SPDR S&P 500", Price: 455.23, ChangePercent: 0.45},
		{Symbol: "QQQ", Name: "Invesco QQQ Trust", Price: 389.12, ChangePercent: 0.67},
		{Symbol: "IWM", Name: "iShares Russell 2000 ETF", Price: 185.34, ChangePercent: -0.23},
		{Symbol: "AMD", Name: "Advanced Micro Devices Inc.", Price: 128.45, ChangePercent: 1.23},
		{Symbol: "F", Name: "Ford Motor Company", Price: 12.34, ChangePercent: -0.56},
	},
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
