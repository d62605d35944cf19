package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Semior001/newsbook/app/store"
	"github.com/Semior001/newsbook/pkg/botx"
	"github.com/samber/lo"
)

func (c *Ctrl) bookmarks(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	articles := c.Bookmarks.For(req.Chat.ID).GetAll(ctx)
	if len(articles) == 0 {
		return textResponse(req, "You have no saved articles yet"), nil
	}

	sb := &strings.Builder{}
	_, _ = sb.WriteString(fmt.Sprintf("*Bookmarks* (%d)\n", len(articles)))

	for i, a := range articles {
		_, _ = sb.WriteString(fmt.Sprintf("\n%d. %s", i+1, articleLink(a)))
		if meta := articleMeta(a); meta != "" {
			_, _ = sb.WriteString("\n_" + meta + "_")
		}
		_, _ = sb.WriteString("\n")
	}

	read := lo.Map(articles, func(a store.Article, i int) botx.Button {
		return botx.Button{Text: strconv.Itoa(i + 1), Data: refData("/read", i+1, a)}
	})

	resp := botx.Response{
		ChatID:  req.Chat.ID,
		Text:    sb.String(),
		Buttons: lo.Chunk(read, buttonsPerRow),
	}

	return []botx.Response{resp}, nil
}

func (c *Ctrl) read(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	article, idx, resp, ok := c.bookmark(ctx, req, "read")
	if !ok {
		return resp, nil
	}

	btn := botx.Button{Text: "★ Forget", Data: refData("/forget", idx, article)}

	return c.details(ctx, req, article, btn), nil
}

func (c *Ctrl) forget(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	article, _, resp, ok := c.bookmark(ctx, req, "forget")
	if !ok {
		return resp, nil
	}

	return c.remove(ctx, req, article), nil
}

// bookmark returns the saved article referenced by the request and its
// position, or the response to send if there is no such article.
func (c *Ctrl) bookmark(ctx context.Context, req botx.Request, cmd string) (store.Article, int, []botx.Response, bool) {
	idx, key, ok := ref(req)
	if !ok {
		return store.Article{}, 0, textResponse(req, fmt.Sprintf("Please, specify the bookmark number, e.g. `/%s 1`", cmd)), false
	}

	articles := c.Bookmarks.For(req.Chat.ID).GetAll(ctx)

	if key == "" {
		if idx > len(articles) {
			return store.Article{}, 0, textResponse(req, fmt.Sprintf("There is no bookmark %d", idx)), false
		}
		return articles[idx-1], idx, nil, true
	}

	article, pos, ok := findByKey(articles, idx, key)
	if !ok {
		return store.Article{}, 0, textResponse(req, "The article is no longer in your bookmarks"), false
	}

	return article, pos, nil, true
}
