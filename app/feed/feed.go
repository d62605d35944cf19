// Package feed implements a news source over a set of RSS and Atom feeds.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Semior001/newsbook/app/store"
	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

// ErrQueryTooShort is returned when the search query has less than two characters.
var ErrQueryTooShort = errors.New("search query must be at least 2 characters long")

// Source merges items of several feeds into a single list of articles,
// newest first, and pages through it.
type Source struct {
	log      *slog.Logger
	cl       *http.Client
	urls     []string
	pageSize int
}

// NewSource makes a new feed source.
func NewSource(lg *slog.Logger, cl *http.Client, urls []string, pageSize int) *Source {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Source{log: lg, cl: cl, urls: urls, pageSize: pageSize}
}

// PageSize returns the number of articles per page.
func (s *Source) PageSize() int { return s.pageSize }

// FetchHeadlines returns a page of the latest items of all feeds.
func (s *Source) FetchHeadlines(ctx context.Context, page int) (store.Page, error) {
	articles, err := s.fetchAll(ctx)
	if err != nil {
		return store.Page{}, err
	}
	return s.paginate(articles, page), nil
}

// SearchArticles returns a page of items whose title or description
// contains the query, case-insensitively.
func (s *Source) SearchArticles(ctx context.Context, query string, page int) (store.Page, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(query) < 2 {
		return store.Page{}, ErrQueryTooShort
	}

	articles, err := s.fetchAll(ctx)
	if err != nil {
		return store.Page{}, err
	}

	found := lo.Filter(articles, func(a store.Article, _ int) bool {
		return strings.Contains(strings.ToLower(a.Title), query) ||
			strings.Contains(strings.ToLower(a.Description), query)
	})

	return s.paginate(found, page), nil
}

func (s *Source) paginate(articles []store.Article, page int) store.Page {
	from := (page - 1) * s.pageSize
	if from < 0 || from > len(articles) {
		from = len(articles)
	}
	to := from + s.pageSize
	if to > len(articles) {
		to = len(articles)
	}

	res := make([]store.Article, to-from)
	copy(res, articles[from:to])
	return store.Page{Articles: res, TotalResults: len(articles)}
}

// fetchAll downloads all feeds concurrently. Failed feeds are skipped,
// unless all of them failed.
func (s *Source) fetchAll(ctx context.Context) ([]store.Article, error) {
	var (
		mu       sync.Mutex
		articles []store.Article
		failed   []error
	)

	ewg, ctx := errgroup.WithContext(ctx)
	for _, u := range s.urls {
		u := u
		ewg.Go(func() error {
			items, err := s.fetch(ctx, u)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				s.log.WarnCtx(ctx, "failed to fetch feed", slog.String("url", u), slog.Any("err", err))
				failed = append(failed, err)
				return nil
			}
			articles = append(articles, items...)
			return nil
		})
	}
	_ = ewg.Wait()

	if len(s.urls) > 0 && len(failed) == len(s.urls) {
		return nil, fmt.Errorf("all feeds failed, last error: %w", failed[len(failed)-1])
	}

	articles = lo.UniqBy(articles, func(a store.Article) string { return a.URL })
	sort.SliceStable(articles, func(i, j int) bool { return articles[i].PublishedAt > articles[j].PublishedAt })

	return articles, nil
}

func (s *Source) fetch(ctx context.Context, u string) ([]store.Article, error) {
	fp := gofeed.NewParser()
	fp.Client = s.cl

	f, err := fp.ParseURLWithContext(u, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", u, err)
	}

	return lo.Map(f.Items, func(item *gofeed.Item, _ int) store.Article {
		a := store.Article{
			URL:         item.Link,
			Title:       item.Title,
			Description: item.Description,
			Content:     item.Content,
			Source:      store.Source{Name: f.Title},
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = item.PublishedParsed.UTC().Format(time.RFC3339)
		}
		if item.Image != nil {
			a.ImageURL = item.Image.URL
		}
		if len(item.Authors) > 0 && item.Authors[0] != nil {
			a.Author = item.Authors[0].Name
		}
		return a
	}), nil
}
