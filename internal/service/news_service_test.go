package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finconnect/internal/clients/newsapi"
)

func TestNewsService_HeadlinesFromUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "business", r.URL.Query().Get("category"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","articles":[
			{"source":{"name":"Reuters"},"title":"Markets open higher",
			 "url":"https://example.com/a","publishedAt":"2025-01-15T09:00:00Z"}]}`))
	}))
	defer server.Close()

	svc := NewNewsService(newsapi.NewClient("test-key", newsapi.WithBaseURL(server.URL)), zerolog.Nop())
	articles := svc.Headlines(context.Background())

	require.Len(t, articles, 1)
	assert.Equal(t, "Markets open higher", articles[0].Title)
	assert.Equal(t, "Reuters", articles[0].Source.Name)
}

func TestNewsService_MockFeedWithoutKey(t *testing.T) {
	svc := NewNewsService(newsapi.NewClient(""), zerolog.Nop())

	articles := svc.Headlines(context.Background())

	assert.NotEmpty(t, articles)
	for _, article := range articles {
		assert.NotEmpty(t, article.Title)
		assert.NotEmpty(t, article.Source.Name)
	}
}

func TestNewsService_MockFeedOnUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := NewNewsService(newsapi.NewClient("test-key", newsapi.WithBaseURL(server.URL)), zerolog.Nop())
	articles := svc.Headlines(context.Background())

	assert.NotEmpty(t, articles)
}
