package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/Semior001/newsbook/app/bookmark"
	"github.com/Semior001/newsbook/app/details"
	"github.com/Semior001/newsbook/app/listing"
	"github.com/Semior001/newsbook/app/store"
	"github.com/Semior001/newsbook/pkg/botx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestRenderDetails_FitsMessage(t *testing.T) {
	d := details.Details{
		Article: store.Article{
			URL:         "https://example.com/snake_case",
			Title:       strings.Repeat("long_title ", 100),
			Author:      strings.Repeat("*", 300),
			PublishedAt: "2023-03-04T10:00:00Z",
			Source:      store.Source{Name: "Example News"},
		},
		Summary: strings.Repeat("- snake_case point\n", 150),
		Text:    strings.Repeat("some_text ", 400),
	}

	text := renderDetails(d)
	assert.LessOrEqual(t, utf8.RuneCountInString(text), maxMessageRunes)
	assert.True(t, strings.HasSuffix(text, "\n[Read the original](https://example.com/snake_case)"))
	assert.Contains(t, text, "- snake\\_case point")
	assert.Contains(t, text, "some\\_text")
	assert.NotContains(t, text, "\\…", "escape sequence must not be cut")

	d.Summary = ""
	d.Text = strings.Repeat("a_b_", 2000)
	text = renderDetails(d)
	assert.LessOrEqual(t, utf8.RuneCountInString(text), maxMessageRunes)
	assert.Contains(t, text, "a\\_b\\_")

	short := details.Details{
		Article: store.Article{URL: "https://example.com", Title: "Title", Description: "Short description"},
	}
	assert.Equal(t, "*Title*\n\nShort description\n\n[Read the original](https://example.com)", renderDetails(short))
}

func TestEscapeTrim(t *testing.T) {
	assert.Equal(t, `a\_b`, escapeTrim(" a_b ", 10))
	assert.Equal(t, `a\_…`, escapeTrim("a_b_c", 4))
	assert.Equal(t, `a…`, escapeTrim("a_b_c", 3), "escaped rune must not be split")
	assert.Equal(t, "", escapeTrim("abc", 1))
	assert.Equal(t, "", escapeTrim("abc", -5))
}

func TestRef(t *testing.T) {
	tbl := []struct {
		text string
		idx  int
		key  string
		ok   bool
	}{
		{text: "/open 2", idx: 2, ok: true},
		{text: "/open 2 0a1b2c3d", idx: 2, key: "0a1b2c3d", ok: true},
		{text: "/open", ok: false},
		{text: "/open 0", ok: false},
		{text: "/open x", ok: false},
		{text: "/open 1 2 3", ok: false},
	}

	for _, tt := range tbl {
		t.Run(tt.text, func(t *testing.T) {
			idx, key, ok := ref(botx.Request{Text: tt.text})
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.idx, idx)
			assert.Equal(t, tt.key, key)
		})
	}

	data := refData("/unsave", 20, store.Article{URL: "https://example.com/" + strings.Repeat("x", 500)})
	assert.LessOrEqual(t, len(data), maxCallbackData)
}

func TestCtrl_ButtonsFollowArticles(t *testing.T) {
	arts := articles(3)
	page := arts

	src := &listing.SourceMock{
		PageSizeFunc: func() int { return 20 },
		FetchHeadlinesFunc: func(_ context.Context, _ int) (store.Page, error) {
			return store.Page{Articles: page, TotalResults: len(page)}, nil
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

	resp := handle("/news")
	saveFirst := refData("/save", 1, arts[0])
	assert.Equal(t, refData("/open", 1, arts[0]), resp.Buttons[0][0].Data)

	// a new article appears on top of the page
	page = append([]store.Article{{URL: "https://example.com/new", Title: "New"}}, arts...)
	handle("/refresh")

	resp = handle(saveFirst)
	assert.Equal(t, "Saved [Article 1](https://example.com/1) ★", resp.Text)

	resp = handle(refData("/open", 1, arts[0]))
	assert.Contains(t, resp.Text, "*Article 1*")
	assert.Equal(t, [][]botx.Button{{{Text: "★ Unsave", Data: refData("/unsave", 2, arts[0])}}}, resp.Buttons,
		"button refers to the current position of the article")

	resp = handle(refData("/save", 1, store.Article{URL: "https://example.com/gone"}))
	assert.Equal(t, "The article is no longer on this page, please /refresh", resp.Text)

	require.True(t, c.Bookmarks.For("1").Save(ctx, arts[2]))

	resp = handle(refData("/forget", 1, arts[2]))
	assert.Equal(t, "Removed [Article 3](https://example.com/3) from bookmarks", resp.Text)

	resp = handle(refData("/read", 1, arts[2]))
	assert.Equal(t, "The article is no longer in your bookmarks", resp.Text)

	saved := c.Bookmarks.For("1").GetAll(ctx)
	require.Len(t, saved, 1)
	assert.Equal(t, arts[0].URL, saved[0].URL)
}

func TestCtrl_ListingReadsBookmarksOnce(t *testing.T) {
	var mu sync.Mutex
	blobs := map[string]string{}

	kv := &store.KVMock{
		GetFunc: func(_ context.Context, key string) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			v, ok := blobs[key]
			if !ok {
				return "", store.ErrNotFound
			}
			return v, nil
		},
		SetFunc: func(_ context.Context, key, value string) error {
			mu.Lock()
			defer mu.Unlock()
			blobs[key] = value
			return nil
		},
	}

	arts := articles(20)
	src := &listing.SourceMock{
		PageSizeFunc: func() int { return 20 },
		FetchHeadlinesFunc: func(_ context.Context, _ int) (store.Page, error) {
			return store.Page{Articles: arts, TotalResults: 40}, nil
		},
	}

	c := newCtrl(t, src)
	c.Bookmarks = bookmark.NewShelf(slog.Default(), kv)

	ctx := context.Background()
	require.True(t, c.Bookmarks.For("1").Save(ctx, arts[4]))
	gets := len(kv.GetCalls())

	resps, err := c.Routes().Handle(ctx, request("/news"))
	require.NoError(t, err)
	require.Len(t, resps, 1)

	assert.Equal(t, 1, len(kv.GetCalls())-gets)
	assert.Contains(t, resps[0].Text, "5. [Article 5](https://example.com/5) ★")
	assert.Equal(t, 1, strings.Count(resps[0].Text, "★"))
}
