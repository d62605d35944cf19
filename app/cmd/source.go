// Package cmd contains commands for the application.
package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Semior001/newsbook/app/feed"
	"github.com/Semior001/newsbook/app/listing"
	"github.com/Semior001/newsbook/app/newsapi"
	"golang.org/x/exp/slog"
)

// SourceOpts defines where the articles come from.
type SourceOpts struct {
	Kind string `long:"source" env:"SOURCE" choice:"newsapi" choice:"rss" default:"newsapi" description:"source of articles"`

	NewsAPI struct {
		Token         string        `long:"token" env:"TOKEN" description:"news api key"`
		BaseURL       string        `long:"base-url" env:"BASE_URL" default:"https://newsapi.org/v2" description:"news api base url"`
		Country       string        `long:"country" env:"COUNTRY" default:"us" description:"country of top headlines"`
		Language      string        `long:"language" env:"LANGUAGE" default:"en" description:"language of search results"`
		PageSize      int           `long:"page-size" env:"PAGE_SIZE" default:"20" description:"articles per page"`
		MaxConcurrent int           `long:"max-concurrent" env:"MAX_CONCURRENT" default:"4" description:"max concurrent requests to news api"`
		CacheTTL      time.Duration `long:"cache-ttl" env:"CACHE_TTL" default:"5m" description:"time to cache responses, 0 to disable"`
		Timeout       time.Duration `long:"timeout" env:"TIMEOUT" default:"10s" description:"timeout for news api requests"`
	} `group:"newsapi" namespace:"newsapi" env-namespace:"NEWSAPI"`

	Feed struct {
		URLs     []string      `long:"url" env:"URLS" env-delim:"," description:"rss or atom feed urls"`
		PageSize int           `long:"page-size" env:"PAGE_SIZE" default:"20" description:"articles per page"`
		Timeout  time.Duration `long:"timeout" env:"TIMEOUT" default:"10s" description:"timeout for feed requests"`
	} `group:"feed" namespace:"feed" env-namespace:"FEED"`
}

// build makes the source of articles, the second returned value is
// not nil if the source caches responses.
func (o SourceOpts) build(lg *slog.Logger) (listing.Source, *newsapi.Client, error) {
	switch o.Kind {
	case "rss":
		if len(o.Feed.URLs) == 0 {
			return nil, nil, fmt.Errorf("no feed urls provided")
		}

		src := feed.NewSource(
			lg.With(slog.String("prefix", "feed")),
			&http.Client{Timeout: o.Feed.Timeout},
			o.Feed.URLs,
			o.Feed.PageSize,
		)
		return src, nil, nil
	default:
		if o.NewsAPI.Token == "" {
			return nil, nil, fmt.Errorf("news api token is required")
		}

		cl := newsapi.NewClient(
			lg.With(slog.String("prefix", "newsapi")),
			http.Client{Timeout: o.NewsAPI.Timeout},
			newsapi.Opts{
				BaseURL:       o.NewsAPI.BaseURL,
				APIKey:        o.NewsAPI.Token,
				Country:       o.NewsAPI.Country,
				Language:      o.NewsAPI.Language,
				PageSize:      o.NewsAPI.PageSize,
				MaxConcurrent: o.NewsAPI.MaxConcurrent,
				CacheTTL:      o.NewsAPI.CacheTTL,
			},
		)
		return cl, cl, nil
	}
}
