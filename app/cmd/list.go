package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Semior001/newsbook/app/bookmark"
	"github.com/Semior001/newsbook/app/listing"
	"github.com/Semior001/newsbook/app/store"
	"golang.org/x/exp/slog"
)

// List is a command to print a single page of articles.
type List struct {
	SourceOpts

	Query     string `long:"query" short:"q" description:"search query, top headlines if empty"`
	Page      int    `long:"page" short:"p" default:"1" description:"page to show"`
	StorePath string `long:"store-path" env:"STORE_PATH" default:"." description:"parent dir for bolt files"`
}

// Execute runs the command.
func (l List) Execute(_ []string) error {
	lg := slog.Default()

	src, _, err := l.SourceOpts.build(lg)
	if err != nil {
		return fmt.Errorf("make source: %w", err)
	}

	s, err := store.NewBolt(l.StorePath)
	if err != nil {
		return fmt.Errorf("make store: %w", err)
	}

	defer func() {
		if err := s.Close(); err != nil {
			lg.Error("close bolt store", slog.Any("err", err))
		}
	}()

	ctx := context.Background()
	coord := listing.NewCoordinator(lg.With(slog.String("prefix", "listing")), src)

	res, err := coord.Load(ctx, l.Query, l.Page)
	if err != nil {
		return fmt.Errorf("load page %d: %w", l.Page, err)
	}

	bookmarks := bookmark.NewStore(lg.With(slog.String("prefix", "bookmarks")), s, bookmark.DefaultKey)

	return printResult(ctx, os.Stdout, res, bookmarks)
}

func printResult(ctx context.Context, w io.Writer, res listing.Result, bookmarks *bookmark.Store) error {
	if res.NoResults() {
		_, err := fmt.Fprintf(w, "No results found for your search %q\n", res.Query)
		return err
	}

	sb := &strings.Builder{}
	_, _ = fmt.Fprintf(sb, "page %d of %d, %d results\n\n", res.CurrentPage, res.TotalPages, res.TotalResults)

	for i, a := range res.Articles {
		mark := " "
		if bookmarks.Contains(ctx, a.URL) {
			mark = "★"
		}
		_, _ = fmt.Fprintf(sb, "%s %2d. %s\n      %s\n", mark, i+1, a.Title, a.URL)
	}

	_, _ = fmt.Fprintf(sb, "\n%s\n", pageWindow(res.CurrentPage, res.TotalPages))

	_, err := io.WriteString(w, sb.String())
	return err
}

func pageWindow(current, total int) string {
	controls := listing.PageWindow(current, total, listing.DefaultMaxButtons)

	parts := make([]string, 0, len(controls))
	for _, pc := range controls {
		switch {
		case pc.Kind == listing.Prev:
			parts = append(parts, "<")
		case pc.Kind == listing.Next:
			parts = append(parts, ">")
		case pc.Kind == listing.Ellipsis:
			parts = append(parts, "...")
		case pc.Active:
			parts = append(parts, fmt.Sprintf("[%d]", pc.Page))
		default:
			parts = append(parts, fmt.Sprint(pc.Page))
		}
	}

	return strings.Join(parts, " ")
}
