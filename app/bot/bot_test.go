package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/Semior001/newsbook/app/bookmark"
	"github.com/Semior001/newsbook/app/details"
	"github.com/Semior001/newsbook/app/listing"
	"github.com/Semior001/newsbook/app/store"
	"github.com/Semior001/newsbook/pkg/botx"
	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestCtrl_Search(t *testing.T) {
	src := &listing.SourceMock{
		PageSizeFunc: func() int { return 20 },
		SearchArticlesFunc: func(_ context.Context, query string, page int) (store.Page, error) {
			assert.Equal(t, "golang", query)
			return store.Page{Articles: articles(2), TotalResults: 45}, nil
		},
	}

	c := newCtrl(t, src)

	resps, err := c.Routes().Handle(context.Background(), request("golang"))
	require.NoError(t, err)
	require.Len(t, resps, 1)

	assert.Equal(t, "1", resps[0].ChatID)
	assert.Empty(t, resps[0].EditMessageID)
	assert.Contains(t, resps[0].Text, "*Search: golang* (page 1 of 3, 45 results)")
	assert.Contains(t, resps[0].Text, "1. [Article 1](https://example.com/1)")
	assert.Contains(t, resps[0].Text, "_Example News · March 4, 2023_")

	assert.Equal(t, [][]botx.Button{
		{{Text: "1", Data: refData("/open", 1, articles(2)[0])}, {Text: "2", Data: refData("/open", 2, articles(2)[1])}},
		{
			{Text: "· 1 ·", Data: "/page 1"},
			{Text: "2", Data: "/page 2"},
			{Text: "3", Data: "/page 3"},
			{Text: "→", Data: "/page 2"},
		},
	}, resps[0].Buttons)
}

func TestCtrl_Headlines(t *testing.T) {
	src := &listing.SourceMock{
		PageSizeFunc: func() int { return 20 },
		FetchHeadlinesFunc: func(_ context.Context, page int) (store.Page, error) {
			return store.Page{Articles: articles(3), TotalResults: 3}, nil
		},
	}

	c := newCtrl(t, src)

	resps, err := c.Routes().Handle(context.Background(), request("/news"))
	require.NoError(t, err)
	require.Len(t, resps, 1)

	assert.Contains(t, resps[0].Text, "*Top headlines* (page 1 of 1, 3 results)")
	require.Len(t, resps[0].Buttons, 1, "no page controls for a single page")
	assert.Len(t, resps[0].Buttons[0], 3)
}

func TestCtrl_Page(t *testing.T) {
	var pages []int
	src := &listing.SourceMock{
		PageSizeFunc: func() int { return 2 },
		SearchArticlesFunc: func(_ context.Context, query string, page int) (store.Page, error) {
			assert.Equal(t, "golang", query)
			pages = append(pages, page)
			return store.Page{Articles: articles(2), TotalResults: 20}, nil
		},
	}

	c := newCtrl(t, src)
	rtr := c.Routes()
	ctx := context.Background()

	_, err := rtr.Handle(ctx, request("/news golang"))
	require.NoError(t, err)

	req := request("/page 6")
	req.MessageID = "42"
	req.CallbackID = "cb"

	resps, err := rtr.Handle(ctx, req)
	require.NoError(t, err)
	require.Len(t, resps, 1)

	assert.Equal(t, "42", resps[0].EditMessageID, "pressed button edits the message")
	assert.Contains(t, resps[0].Text, "(page 6 of 10, 20 results)")
	assert.Equal(t, []botx.Button{
		{Text: "←", Data: "/page 5"},
		{Text: "1", Data: "/page 1"},
		{Text: "…", Data: "/noop"},
		{Text: "4", Data: "/page 4"},
		{Text: "5", Data: "/page 5"},
		{Text: "· 6 ·", Data: "/page 6"},
		{Text: "7", Data: "/page 7"},
		{Text: "8", Data: "/page 8"},
	}, resps[0].Buttons[1])
	assert.Equal(t, []botx.Button{
		{Text: "…", Data: "/noop"},
		{Text: "10", Data: "/page 10"},
		{Text: "→", Data: "/page 7"},
	}, resps[0].Buttons[2])

	_, err = rtr.Handle(ctx, request("/refresh"))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 6, 6}, pages)

	resps, err = rtr.Handle(ctx, request("/page"))
	require.NoError(t, err)
	assert.Equal(t, "Please, specify the page number, e.g. `/page 2`", resps[0].Text)

	resps, err = rtr.Handle(ctx, request("/noop"))
	require.NoError(t, err)
	assert.Empty(t, resps)
}

func TestCtrl_SearchErrors(t *testing.T) {
	src := &listing.SourceMock{
		PageSizeFunc: func() int { return 20 },
		SearchArticlesFunc: func(_ context.Context, query string, page int) (store.Page, error) {
			switch query {
			case "nothing":
				return store.Page{}, nil
			default:
				return store.Page{}, errors.New("rateLimited")
			}
		},
	}

	c := newCtrl(t, src)
	rtr := c.Routes()
	ctx := context.Background()

	t.Run("short query", func(t *testing.T) {
		resps, err := rtr.Handle(ctx, request("/news a"))
		require.NoError(t, err)
		require.Len(t, resps, 1)
		assert.Equal(t, "Please enter at least 2 characters to search", resps[0].Text)
		assert.Empty(t, src.SearchArticlesCalls())
	})

	t.Run("no results", func(t *testing.T) {
		resps, err := rtr.Handle(ctx, request("nothing"))
		require.NoError(t, err)
		require.Len(t, resps, 1)
		assert.Equal(t, "No results found for your search *nothing*", resps[0].Text)
		assert.Empty(t, resps[0].Buttons)
	})

	t.Run("upstream failure", func(t *testing.T) {
		resps, err := rtr.Handle(ctx, request("/news golang"))
		require.NoError(t, err)
		require.Len(t, resps, 1)
		assert.Equal(t, "Failed to load news. Please try again later.", resps[0].Text)
		assert.Equal(t, [][]botx.Button{{{Text: "Try again", Data: "/news golang"}}}, resps[0].Buttons)
	})
}

func TestCtrl_Bookmarks(t *testing.T) {
	src := &listing.SourceMock{
		PageSizeFunc: func() int { return 20 },
		FetchHeadlinesFunc: func(_ context.Context, page int) (store.Page, error) {
			return store.Page{Articles: articles(2), TotalResults: 2}, nil
		},
	}

	c := newCtrl(t, src)
	rtr := c.Routes()
	ctx := context.Background()

	handle := func(text string) botx.Response {
		resps, err := rtr.Handle(ctx, request(text))
		require.NoError(t, err)
		require.Len(t, resps, 1)
		return resps[0]
	}

	arts := articles(2)

	resp := handle("/bookmarks")
	assert.Equal(t, "You have no saved articles yet", resp.Text)

	handle("/news")

	resp = handle("/open 2")
	assert.Contains(t, resp.Text, "*Article 2*")
	assert.Contains(t, resp.Text, "Content of the article 2")
	assert.Contains(t, resp.Text, "[Read the original](https://example.com/2)")
	assert.Equal(t, [][]botx.Button{{{Text: "☆ Save", Data: refData("/save", 2, arts[1])}}}, resp.Buttons)

	resp = handle("/save 2")
	assert.Equal(t, "Saved [Article 2](https://example.com/2) ★", resp.Text)

	resp = handle("/save 2")
	assert.Equal(t, "[Article 2](https://example.com/2) is already saved", resp.Text)

	resp = handle("/open 2")
	assert.Equal(t, [][]botx.Button{{{Text: "★ Unsave", Data: refData("/unsave", 2, arts[1])}}}, resp.Buttons)

	resp = handle("/refresh")
	assert.Contains(t, resp.Text, "2. [Article 2](https://example.com/2) ★")
	assert.NotContains(t, resp.Text, "1. [Article 1](https://example.com/1) ★")

	resp = handle("/save 1")
	assert.Equal(t, "Saved [Article 1](https://example.com/1) ★", resp.Text)

	resp = handle("/bookmarks")
	assert.Contains(t, resp.Text, "*Bookmarks* (2)")
	assert.Contains(t, resp.Text, "1. [Article 2](https://example.com/2)")
	assert.Contains(t, resp.Text, "2. [Article 1](https://example.com/1)")
	assert.Equal(t, [][]botx.Button{{
		{Text: "1", Data: refData("/read", 1, arts[1])},
		{Text: "2", Data: refData("/read", 2, arts[0])},
	}}, resp.Buttons)

	resp = handle("/read 2")
	assert.Contains(t, resp.Text, "*Article 1*")
	assert.Equal(t, [][]botx.Button{{{Text: "★ Forget", Data: refData("/forget", 2, arts[0])}}}, resp.Buttons)

	resp = handle("/read 3")
	assert.Equal(t, "There is no bookmark 3", resp.Text)

	resp = handle("/forget 1")
	assert.Equal(t, "Removed [Article 2](https://example.com/2) from bookmarks", resp.Text)

	resp = handle("/unsave 1")
	assert.Equal(t, "Removed [Article 1](https://example.com/1) from bookmarks", resp.Text)

	resp = handle("/open 5")
	assert.Equal(t, "There is no article 5 on this page", resp.Text)

	assert.Empty(t, c.Bookmarks.For("1").GetAll(ctx))
	assert.Empty(t, c.Bookmarks.For("2").GetAll(ctx))
}

func TestCtrl_Stats(t *testing.T) {
	c := newCtrl(t, &listing.SourceMock{})
	c.AdminIDs = []string{"1"}
	c.Caches = map[string]CacheStater{
		"newsapi": cacheStaterFunc(func() cache.Stats { return cache.Stats{Hits: 3, Misses: 1, Added: 1} }),
	}

	rtr := c.Routes()

	resps, err := rtr.Handle(context.Background(), request("/stats"))
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, "newsapi: hits: 3, misses: 1, evictions: 0, added: 1\n", resps[0].Text)

	req := request("/stats")
	req.Chat.ID = "2"
	resps, err = rtr.Handle(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, "command not found", resps[0].Text)
}

func TestCtrl_Help(t *testing.T) {
	c := newCtrl(t, &listing.SourceMock{})

	resps, err := c.Routes().Handle(context.Background(), request("/start"))
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, helpText, resps[0].Text)
}

func TestCtrl_NotifyAdmins(t *testing.T) {
	api := &apiStub{}

	c := newCtrl(t, &listing.SourceMock{})
	c.API = api
	c.AdminIDs = []string{"1", "2"}

	require.NoError(t, c.NotifyAdmins(context.Background(), "started"))
	assert.Equal(t, []botx.Response{
		{ChatID: "1", Text: "started"},
		{ChatID: "2", Text: "started"},
	}, api.sent)

	api.err = errors.New("blocked")
	assert.ErrorContains(t, c.NotifyAdmins(context.Background(), "stopped"), "blocked")
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `go\_dev \*news\* \[1] \`+"`x\\`", escapeMarkdown("go_dev *news* [1] `x`"))
}

func newCtrl(t *testing.T, src listing.Source) *Ctrl {
	t.Helper()

	kv, err := store.NewBolt(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, kv.Close()) })

	lg := slog.Default()

	return &Ctrl{
		Logger:         lg,
		Listing:        listing.NewCoordinator(lg, src),
		Sessions:       listing.NewSessions(),
		Bookmarks:      bookmark.NewShelf(lg, kv),
		Details:        details.NewService(lg, &http.Client{Transport: unreachable{}}, nil, details.Extractor{}),
		API:            &apiStub{},
		HandlerTimeout: 5 * time.Second,
	}
}

func request(text string) botx.Request {
	return botx.Request{MessageID: "10", Chat: botx.Chat{ID: "1", Username: "user"}, Text: text}
}

// articles returns n articles, the details of which fall back to the
// provided content, as the pages are unreachable.
func articles(n int) []store.Article {
	res := make([]store.Article, n)
	for i := range res {
		res[i] = store.Article{
			URL:         fmt.Sprintf("https://example.com/%d", i+1),
			Title:       fmt.Sprintf("Article %d", i+1),
			Content:     fmt.Sprintf("Content of the article %d", i+1),
			PublishedAt: "2023-03-04T10:00:00Z",
			Source:      store.Source{Name: "Example News"},
		}
	}
	return res
}

type unreachable struct{}

func (unreachable) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("unreachable")
}

type cacheStaterFunc func() cache.Stats

func (f cacheStaterFunc) CacheStat() cache.Stats { return f() }

type apiStub struct {
	mu   sync.Mutex
	sent []botx.Response
	err  error
}

func (a *apiStub) Updates() <-chan botx.Request { return nil }

func (a *apiStub) SendMessage(_ context.Context, resp botx.Response) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.sent = append(a.sent, resp)
	return nil
}
