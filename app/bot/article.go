package bot

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Semior001/newsbook/app/details"
	"github.com/Semior001/newsbook/app/store"
	"github.com/Semior001/newsbook/pkg/botx"
	"golang.org/x/exp/slog"
)

const (
	// maxMessageRunes is the limit of telegram for the message text.
	maxMessageRunes = 4096
	maxTextRunes    = 3000
	maxSummaryRunes = 1000
	maxTitleRunes   = 256
	maxMetaRunes    = 128
)

func (c *Ctrl) open(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	article, idx, resp, ok := c.pageArticle(req, "open")
	if !ok {
		return resp, nil
	}

	btn := botx.Button{Text: "☆ Save", Data: refData("/save", idx, article)}
	if c.Bookmarks.For(req.Chat.ID).Contains(ctx, article.URL) {
		btn = botx.Button{Text: "★ Unsave", Data: refData("/unsave", idx, article)}
	}

	return c.details(ctx, req, article, btn), nil
}

func (c *Ctrl) save(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	article, _, resp, ok := c.pageArticle(req, "save")
	if !ok {
		return resp, nil
	}

	bookmarks := c.Bookmarks.For(req.Chat.ID)
	if bookmarks.Contains(ctx, article.URL) {
		return textResponse(req, fmt.Sprintf("%s is already saved", articleLink(article))), nil
	}

	if !bookmarks.Save(ctx, article) {
		return textResponse(req, "Failed to save the article, please try again later."), nil
	}

	return textResponse(req, fmt.Sprintf("Saved %s ★", articleLink(article))), nil
}

func (c *Ctrl) unsave(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	article, _, resp, ok := c.pageArticle(req, "unsave")
	if !ok {
		return resp, nil
	}

	return c.remove(ctx, req, article), nil
}

// pageArticle returns the article of the current page referenced by the
// request and its position, or the response to send if there is no such article.
func (c *Ctrl) pageArticle(req botx.Request, cmd string) (store.Article, int, []botx.Response, bool) {
	idx, key, ok := ref(req)
	if !ok {
		return store.Article{}, 0, textResponse(req, fmt.Sprintf("Please, specify the article number, e.g. `/%s 1`", cmd)), false
	}

	sess := c.Sessions.Get(req.Chat.ID)

	if key == "" {
		article, ok := sess.Article(idx)
		if !ok {
			return store.Article{}, 0, textResponse(req, fmt.Sprintf("There is no article %d on this page", idx)), false
		}
		return article, idx, nil, true
	}

	article, pos, ok := findByKey(sess.State().Articles, idx, key)
	if !ok {
		return store.Article{}, 0, textResponse(req, "The article is no longer on this page, please /refresh"), false
	}

	return article, pos, nil, true
}

func (c *Ctrl) remove(ctx context.Context, req botx.Request, article store.Article) []botx.Response {
	if !c.Bookmarks.For(req.Chat.ID).Remove(ctx, article.URL) {
		return textResponse(req, "Failed to remove the article, please try again later.")
	}

	return textResponse(req, fmt.Sprintf("Removed %s from bookmarks", articleLink(article)))
}

func (c *Ctrl) details(ctx context.Context, req botx.Request, article store.Article, btn botx.Button) []botx.Response {
	d := c.Details.Get(ctx, article)

	c.Logger.DebugCtx(ctx, "built article details",
		slog.String("url", article.URL),
		slog.Int("text_len", len(d.Text)),
		slog.Bool("summarized", d.Summary != ""))

	return []botx.Response{{
		ChatID:  req.Chat.ID,
		Text:    renderDetails(d),
		Buttons: [][]botx.Button{{btn}},
	}}
}

// renderDetails renders the detail view, the article text takes
// whatever room is left under the message limit.
func renderDetails(d details.Details) string {
	head := &strings.Builder{}

	_, _ = head.WriteString(fmt.Sprintf("*%s*\n", escapeTrim(d.Title, maxTitleRunes)))

	var meta []string
	if d.Source.Name != "" {
		meta = append(meta, escapeTrim(d.Source.Name, maxMetaRunes))
	}
	if d.Author != "" {
		meta = append(meta, escapeTrim(d.Author, maxMetaRunes))
	}
	if ts, ok := d.Published(); ok {
		meta = append(meta, ts.Format("January 2, 2006"))
	}
	if len(meta) > 0 {
		_, _ = head.WriteString("_" + strings.Join(meta, " · ") + "_\n")
	}

	if d.Summary != "" {
		_, _ = head.WriteString("\n" + escapeTrim(d.Summary, maxSummaryRunes) + "\n")
	}

	link := fmt.Sprintf("\n[Read the original](%s)", d.URL)

	text := d.Text
	if strings.TrimSpace(text) == "" {
		text = d.Description
	}

	// two newlines around the text
	room := maxMessageRunes - utf8.RuneCountInString(head.String()) - utf8.RuneCountInString(link) - 2
	if room > maxTextRunes {
		room = maxTextRunes
	}

	if text = escapeTrim(text, room); text != "" {
		_, _ = head.WriteString("\n" + text + "\n")
	}

	return head.String() + link
}

// escapeTrim escapes markdown in s and cuts the escaped text to at most
// limit runes, an ellipsis included.
func escapeTrim(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit < 2 {
		return ""
	}

	if esc := escapeMarkdown(s); utf8.RuneCountInString(esc) <= limit {
		return esc
	}

	sb := &strings.Builder{}
	n := 0
	for _, r := range s {
		esc := escapeMarkdown(string(r))
		w := utf8.RuneCountInString(esc)
		if n+w > limit-1 {
			break
		}
		_, _ = sb.WriteString(esc)
		n += w
	}

	return strings.TrimSpace(sb.String()) + "…"
}
