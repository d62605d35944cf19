// Package listing decides which articles and pagination metadata to show
// for a query and a page, and derives the page selector controls.
package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Semior001/newsbook/app/store"
	"golang.org/x/exp/slog"
)

// MinQueryLength is the minimal length of a trimmed search query.
const MinQueryLength = 2

//go:generate moq -out mock_source.go . Source

// Source is a remote source of news articles.
type Source interface {
	FetchHeadlines(ctx context.Context, page int) (store.Page, error)
	SearchArticles(ctx context.Context, query string, page int) (store.Page, error)
	PageSize() int
}

// ValidationError is returned when the caller supplied an invalid query.
type ValidationError struct {
	Query  string
	Reason string
}

// Error implements error interface.
func (e *ValidationError) Error() string { return e.Reason }

// FetchError is returned when the news source failed to respond.
type FetchError struct {
	Query string
	Page  int
	Err   error
}

// Error implements error interface, it carries the upstream message.
func (e *FetchError) Error() string { return e.Err.Error() }

// Unwrap returns the upstream error.
func (e *FetchError) Unwrap() error { return e.Err }

// Result is a single page of listing.
type Result struct {
	Query        string
	Articles     []store.Article
	CurrentPage  int
	TotalPages   int
	TotalResults int
}

// NoResults returns true if the search succeeded, but nothing was found.
func (r Result) NoResults() bool { return r.Query != "" && r.TotalResults == 0 }

// Coordinator loads headlines or search results from the source.
type Coordinator struct {
	log *slog.Logger
	src Source
}

// NewCoordinator makes a new Coordinator.
func NewCoordinator(lg *slog.Logger, src Source) *Coordinator {
	return &Coordinator{log: lg, src: src}
}

// Load returns headlines if the query is empty and search results otherwise.
func (c *Coordinator) Load(ctx context.Context, query string, page int) (Result, error) {
	query = strings.TrimSpace(query)
	if page < 1 {
		page = 1
	}

	var (
		res store.Page
		err error
	)

	switch {
	case query == "":
		res, err = c.src.FetchHeadlines(ctx, page)
	case utf8.RuneCountInString(query) < MinQueryLength:
		return Result{}, &ValidationError{
			Query:  query,
			Reason: fmt.Sprintf("search query must be at least %d characters long", MinQueryLength),
		}
	default:
		res, err = c.src.SearchArticles(ctx, query, page)
	}

	if err != nil {
		c.log.WarnCtx(ctx, "failed to load articles",
			slog.String("query", query),
			slog.Int("page", page),
			slog.Any("err", err),
		)
		return Result{}, &FetchError{Query: query, Page: page, Err: err}
	}

	return Result{
		Query:        query,
		Articles:     res.Articles,
		CurrentPage:  page,
		TotalPages:   TotalPages(res.TotalResults, c.src.PageSize()),
		TotalResults: res.TotalResults,
	}, nil
}

// TotalPages returns the number of pages needed to show all results,
// at least one.
func TotalPages(totalResults, pageSize int) int {
	if pageSize < 1 || totalResults <= 0 {
		return 1
	}
	return (totalResults + pageSize - 1) / pageSize
}

// IsValidation returns true if the error is caused by an invalid query.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
