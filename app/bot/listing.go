package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Semior001/newsbook/app/listing"
	"github.com/Semior001/newsbook/app/store"
	"github.com/Semior001/newsbook/pkg/botx"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
)

// maxCallbackData is the limit of telegram for the button data.
const maxCallbackData = 64

func (c *Ctrl) search(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	return c.load(ctx, req, req.Args(), 1)
}

func (c *Ctrl) page(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	page, ok := index(req)
	if !ok {
		return textResponse(req, "Please, specify the page number, e.g. `/page 2`"), nil
	}

	state := c.Sessions.Get(req.Chat.ID).State()
	return c.load(ctx, req, state.Query, page)
}

func (c *Ctrl) refresh(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	state := c.Sessions.Get(req.Chat.ID).State()
	return c.load(ctx, req, state.Query, state.CurrentPage)
}

func (c *Ctrl) load(ctx context.Context, req botx.Request, query string, page int) ([]botx.Response, error) {
	res, err := c.Listing.LoadInto(ctx, c.Sessions.Get(req.Chat.ID), query, page)

	var verr *listing.ValidationError
	var ferr *listing.FetchError

	switch {
	case errors.Is(err, listing.ErrStale):
		c.Logger.DebugCtx(ctx, "discarded stale listing response",
			slog.String("query", query), slog.Int("page", page))
		return nil, nil
	case errors.As(err, &verr):
		return textResponse(req, "Please enter at least 2 characters to search"), nil
	case errors.As(err, &ferr):
		resp := botx.Response{
			ChatID: req.Chat.ID,
			Text:   "Failed to load news. Please try again later.",
		}
		// pressing the button repeats the request
		if retry := strings.TrimSpace(req.Text); len(retry) <= maxCallbackData {
			resp.Buttons = [][]botx.Button{{{Text: "Try again", Data: retry}}}
		}
		return []botx.Response{resp}, nil
	case err != nil:
		return nil, fmt.Errorf("load listing: %w", err)
	}

	resp := botx.Response{
		ChatID:  req.Chat.ID,
		Text:    c.renderListing(ctx, req.Chat.ID, res),
		Buttons: listingButtons(res),
	}

	if req.CallbackID != "" {
		resp.EditMessageID = req.MessageID
	}

	return []botx.Response{resp}, nil
}

func (c *Ctrl) renderListing(ctx context.Context, chatID string, res listing.Result) string {
	if res.NoResults() {
		return fmt.Sprintf("No results found for your search *%s*", escapeMarkdown(res.Query))
	}

	sb := &strings.Builder{}

	if res.Query == "" {
		_, _ = sb.WriteString("*Top headlines*")
	} else {
		_, _ = sb.WriteString(fmt.Sprintf("*Search: %s*", escapeMarkdown(res.Query)))
	}
	_, _ = sb.WriteString(fmt.Sprintf(" (page %d of %d, %d results)\n", res.CurrentPage, res.TotalPages, res.TotalResults))

	saved := lo.Associate(c.Bookmarks.For(chatID).GetAll(ctx), func(a store.Article) (string, struct{}) {
		return a.URL, struct{}{}
	})

	for i, a := range res.Articles {
		_, _ = sb.WriteString(fmt.Sprintf("\n%d. %s", i+1, articleLink(a)))
		if _, ok := saved[a.URL]; ok {
			_, _ = sb.WriteString(" ★")
		}
		if meta := articleMeta(a); meta != "" {
			_, _ = sb.WriteString("\n_" + meta + "_")
		}
		_, _ = sb.WriteString("\n")
	}

	if len(res.Articles) == 0 {
		_, _ = sb.WriteString("\nNo articles on this page.")
	}

	return sb.String()
}

// buttonsPerRow is the maximum number of inline buttons in a row.
const buttonsPerRow = 8

func listingButtons(res listing.Result) [][]botx.Button {
	var rows [][]botx.Button

	open := lo.Map(res.Articles, func(a store.Article, i int) botx.Button {
		return botx.Button{Text: strconv.Itoa(i + 1), Data: refData("/open", i+1, a)}
	})
	rows = append(rows, lo.Chunk(open, buttonsPerRow)...)

	if res.TotalPages > 1 {
		controls := listing.PageWindow(res.CurrentPage, res.TotalPages, listing.DefaultMaxButtons)
		pages := lo.Map(controls, func(pc listing.PageControl, _ int) botx.Button { return pageButton(pc) })
		rows = append(rows, lo.Chunk(pages, buttonsPerRow)...)
	}

	return rows
}

func pageButton(pc listing.PageControl) botx.Button {
	data := fmt.Sprintf("/page %d", pc.Page)

	switch pc.Kind {
	case listing.Prev:
		return botx.Button{Text: "←", Data: data}
	case listing.Next:
		return botx.Button{Text: "→", Data: data}
	case listing.Ellipsis:
		return botx.Button{Text: "…", Data: noop}
	}

	if pc.Active {
		return botx.Button{Text: fmt.Sprintf("· %d ·", pc.Page), Data: data}
	}
	return botx.Button{Text: strconv.Itoa(pc.Page), Data: data}
}

func articleLink(a store.Article) string {
	title := a.Title
	if title == "" {
		title = a.URL
	}
	return fmt.Sprintf("[%s](%s)", escapeMarkdown(title), a.URL)
}

// articleMeta returns the source and publication date of the article.
func articleMeta(a store.Article) string {
	var parts []string
	if a.Source.Name != "" {
		parts = append(parts, escapeMarkdown(a.Source.Name))
	}
	if ts, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
		parts = append(parts, ts.Format("January 2, 2006"))
	}
	return strings.Join(parts, " · ")
}
