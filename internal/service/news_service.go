package service

import (
	"context"

	"github.com/rs/zerolog"

	"finconnect/internal/clients/newsapi"
)

// newsPageSize is how many headlines one feed request asks for.
const newsPageSize = 50

// NewsService proxies business headlines, falling back to a canned feed when
// the upstream is unavailable or unconfigured.
type NewsService struct {
	client *newsapi.Client
	logger zerolog.Logger
}

// NewNewsService creates a new news service.
func NewNewsService(client *newsapi.Client, logger zerolog.Logger) *NewsService {
	return &NewsService{client: client, logger: logger}
}

// Headlines returns the current business news feed.
func (s *NewsService) Headlines(ctx context.Context) []newsapi.Article {
	if !s.client.HasKey() {
		return mockArticles()
	}

	articles, err := s.client.TopBusinessHeadlines(ctx, newsPageSize)
	if err != nil {
		s.logger.Warn().Err(err).Msg("news upstream failed, serving mock feed")
		return mockArticles()
	}
	if len(articles) == 0 {
		return mockArticles()
	}
	return articles
}

func mockArticles() []newsapi.Article {
	mk := func(source, title, desc, url, published string) newsapi.Article {
		a := newsapi.Article{
			Title:       title,
			Description: desc,
			URL:         url,
			PublishedAt: published,
		}
		a.Source.Name = source
		return a
	}
	return []newsapi.Article{
		mk("Market Watch", "Tech stocks rally as chipmakers beat earnings expectations",
			"Semiconductor names led the advance after stronger than expected quarterly results.",
			"https://example.com/news/tech-rally", "2025-01-15T14:30:00Z"),
		mk("Financial Times", "Federal Reserve signals rates to stay on hold through spring",
			"Policymakers pointed to cooling inflation but want more data before cutting.",
			"https://example.com/news/fed-hold", "2025-01-15T12:05:00Z"),
		mk("Reuters", "Oil prices slip on rising inventories",
			"Crude fell for a third session as U.S. stockpiles grew more than forecast.",
			"https://example.com/news/oil-slip", "2025-01-15T09:40:00Z"),
		mk("Bloomberg", "Retail sales edge higher in December",
			"Consumer spending held up through the holiday season despite tighter budgets.",
			"https://example.com/news/retail-sales", "2025-01-14T18:20:00Z"),
		mk("CNBC", "Electric vehicle makers cut prices in push for market share",
			"A new round of price cuts is squeezing margins across the EV sector.",
			"https://example.com/news/ev-prices", "2025-01-14T15:10:00Z"),
		mk("Wall Street Journal", "Banks report mixed fourth-quarter results",
			"Trading desks outperformed while loan growth slowed at the largest lenders.",
			"https://example.com/news/bank-earnings", "2025-01-14T11:55:00Z"),
	}
}
