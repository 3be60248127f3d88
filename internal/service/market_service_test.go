package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finconnect/internal/clients/yahoo"
)

func TestMarketService_GetQuoteFromUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v8/finance/chart/AAPL")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"chart":{"result":[{"meta":{
			"symbol":"AAPL","shortName":"Apple Inc.",
			"regularMarketPrice":182.63,"chartPreviousClose":178.42,
			"regularMarketVolume":1000000,"currency":"USD"}}]}}`))
	}))
	defer server.Close()

	svc := NewMarketService(yahoo.NewClient(yahoo.WithBaseURL(server.URL)), nil, zerolog.Nop())
	quote, err := svc.GetQuote(context.Background(), "aapl")

	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 182.63, quote.Price)
	assert.Equal(t, 178.42, quote.PreviousClose)
	assert.InDelta(t, 4.21, quote.Change, 0.001)
	assert.InDelta(t, 2.36, quote.ChangePercent, 0.01)
}

func TestMarketService_GetQuoteFallsBackToMock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewMarketService(yahoo.NewClient(yahoo.WithBaseURL(server.URL)), nil, zerolog.Nop())
	quote, err := svc.GetQuote(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Greater(t, quote.Price, 0.0)
	assert.Greater(t, quote.PreviousClose, 0.0)
}

func TestMarketService_SearchFallsBackToFilteredMock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewMarketService(yahoo.NewClient(yahoo.WithBaseURL(server.URL)), nil, zerolog.Nop())
	results, err := svc.Search(context.Background(), "apple")

	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "AAPL", results[0].Symbol)
}

func TestMarketService_Movers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "day_gainers", r.URL.Query().Get("scrIds"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"finance":{"result":[{"quotes":[
			{"symbol":"NVDA","shortName":"NVIDIA Corporation",
			 "regularMarketPrice":450.05,"regularMarketChangePercent":4.12}]}]}}`))
	}))
	defer server.Close()

	svc := NewMarketService(yahoo.NewClient(yahoo.WithBaseURL(server.URL)), nil, zerolog.Nop())
	movers, err := svc.Movers(context.Background(), MoversGainers)

	require.NoError(t, err)
	require.Len(t, movers, 1)
	assert.Equal(t, "NVDA", movers[0].Symbol)
	assert.Equal(t, 4.12, movers[0].ChangePercent)
}

func TestMarketService_MoversFallbackAndUnknownKind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	svc := NewMarketService(yahoo.NewClient(yahoo.WithBaseURL(server.URL)), nil, zerolog.Nop())

	for _, kind := range []MoverKind{MoversGainers, MoversLosers, MoversActives} {
		movers, err := svc.Movers(context.Background(), kind)
		require.NoError(t, err, "kind %s", kind)
		assert.NotEmpty(t, movers, "kind %s", kind)
	}

	_, err := svc.Movers(context.Background(), MoverKind("sideways"))
	assert.Error(t, err)
}
