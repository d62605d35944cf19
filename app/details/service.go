// Package details builds the detail view of an article: its full text,
// extracted from the original page, and an optional short summary.
package details

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Semior001/newsbook/app/store"
	"golang.org/x/exp/slog"
)

// Details is an article with its full text.
type Details struct {
	store.Article
	Text    string
	Summary string
}

// Published returns the publication time of the article, if known.
func (d Details) Published() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, d.PublishedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Service fetches article pages and builds their details.
type Service struct {
	log       *slog.Logger
	cl        *http.Client
	chatGPT   *ChatGPT
	extractor Extractor
}

// NewService creates new service. chatGPT may be nil, then
// details are built without summaries.
func NewService(lg *slog.Logger, cl *http.Client, chatGPT *ChatGPT, extractor Extractor) *Service {
	return &Service{
		log:       lg,
		cl:        cl,
		chatGPT:   chatGPT,
		extractor: extractor,
	}
}

// Summaries returns the summarizer, nil if summaries are turned off.
func (s *Service) Summaries() *ChatGPT { return s.chatGPT }

// Get returns the details of the article. If the page can't be fetched,
// the text falls back to the content provided by the news source.
func (s *Service) Get(ctx context.Context, article store.Article) Details {
	d := Details{Article: article, Text: article.Content}

	text, err := s.fetchText(ctx, article.URL)
	if err != nil {
		s.log.WarnCtx(ctx, "failed to fetch article text, using provided content",
			slog.String("url", article.URL), slog.Any("err", err))
	} else if text != "" {
		d.Text = text
	}

	if s.chatGPT == nil || d.Text == "" {
		return d
	}

	if d.Summary, err = s.chatGPT.BulletPoints(ctx, d); err != nil {
		s.log.WarnCtx(ctx, "failed to summarize article", slog.String("url", article.URL), slog.Any("err", err))
	}

	return d
}

func (s *Service) fetchText(ctx context.Context, u string) (string, error) {
	pageURL, err := url.ParseRequestURI(u)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	s.log.DebugCtx(ctx, "fetching article text", slog.String("url", u))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := s.cl.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.log.WarnCtx(ctx, "failed to close response body", slog.Any("err", err))
		}
	}()

	ok := resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
	if !ok {
		return "", fmt.Errorf("bad status code: %d", resp.StatusCode)
	}

	text, err := s.extractor.Extract(resp.Body, pageURL)
	if err != nil {
		return "", fmt.Errorf("extract article: %w", err)
	}

	return text, nil
}
