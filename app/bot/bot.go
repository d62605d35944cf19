// Package bot contains routers and controllers for bots.
package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Semior001/newsbook/app/bookmark"
	"github.com/Semior001/newsbook/app/details"
	"github.com/Semior001/newsbook/app/listing"
	"github.com/Semior001/newsbook/app/store"
	"github.com/Semior001/newsbook/pkg/botx"
	"github.com/Semior001/newsbook/pkg/botx/botmw"
	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
)

// CacheStater provides stats of a cache.
type CacheStater interface {
	CacheStat() cache.Stats
}

// Ctrl provides routes and controllers for bot updates.
type Ctrl struct {
	Logger         *slog.Logger
	Listing        *listing.Coordinator
	Sessions       *listing.Sessions
	Bookmarks      *bookmark.Shelf
	Details        *details.Service
	API            botx.API
	AdminIDs       []string
	HandlerTimeout time.Duration
	Caches         map[string]CacheStater
}

// Routes returns a multiplexer for bot controllers.
func (c *Ctrl) Routes() *botx.Router {
	rtr := botx.NewRouter()

	rtr.Use(
		botmw.RequestID(),
		botmw.ReportError(),
		botmw.Recover(c.Logger),
		botmw.Logger(c.Logger),
		botmw.Timeout(c.HandlerTimeout),
	)

	// plain text is a search query
	rtr.NotFound(c.search)
	rtr.Add("/start", c.help)
	rtr.Add("/help", c.help)
	rtr.Add("/news", c.search)
	rtr.Add("/page", c.page)
	rtr.Add("/refresh", c.refresh)
	rtr.Add("/open", c.open)
	rtr.Add("/save", c.save)
	rtr.Add("/unsave", c.unsave)
	rtr.Add("/bookmarks", c.bookmarks)
	rtr.Add("/read", c.read)
	rtr.Add("/forget", c.forget)
	rtr.Add(noop, func(context.Context, botx.Request) ([]botx.Response, error) { return nil, nil })

	rtr.Group(func(rtr *botx.Router) {
		rtr.Use(c.ensureAdmin)

		rtr.Add("/stats", c.stats)
	})

	return rtr
}

const noop = "/noop"

const helpText = `*newsbook* shows the latest news.

/news - top headlines
/news <query> - search for articles, or just send me the query
/page <n> - go to the page
/refresh - reload the current page
/open <n> - read the n-th article of the page
/save <n>, /unsave <n> - bookmark the n-th article of the page
/bookmarks - saved articles
/read <n> - read the n-th saved article
/forget <n> - remove the n-th saved article`

func (c *Ctrl) help(_ context.Context, req botx.Request) ([]botx.Response, error) {
	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text:   helpText,
	}}, nil
}

func (c *Ctrl) stats(_ context.Context, req botx.Request) ([]botx.Response, error) {
	names := lo.Keys(c.Caches)
	sort.Strings(names)

	sb := &strings.Builder{}
	for _, name := range names {
		stats := c.Caches[name].CacheStat()
		_, _ = sb.WriteString(fmt.Sprintf("%s: hits: %d, misses: %d, evictions: %d, added: %d\n",
			escapeMarkdown(name), stats.Hits, stats.Misses, stats.Evicted, stats.Added))
	}

	if sb.Len() == 0 {
		_, _ = sb.WriteString("no caches")
	}

	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text:   sb.String(),
	}}, nil
}

func (c *Ctrl) ensureAdmin(h botx.Handler) botx.Handler {
	return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
		if !lo.Contains(c.AdminIDs, req.Chat.ID) {
			return botx.NotFound(ctx, req)
		}

		return h(ctx, req)
	}
}

// NotifyAdmins sends a message to all admins.
func (c *Ctrl) NotifyAdmins(ctx context.Context, msg string) error {
	for _, adminID := range c.AdminIDs {
		if err := c.API.SendMessage(ctx, botx.Response{
			ChatID: adminID,
			Text:   msg,
		}); err != nil {
			return fmt.Errorf("send message to admin: %w", err)
		}
	}

	return nil
}

// index parses the 1-based index argument of the request.
func index(req botx.Request) (int, bool) {
	idx, err := strconv.Atoi(req.Args())
	if err != nil || idx < 1 {
		return 0, false
	}
	return idx, true
}

// ref parses the "<n> [key]" arguments of a request referring to an article:
// its 1-based position in a list and, for pressed buttons, the key of its URL.
func ref(req botx.Request) (idx int, key string, ok bool) {
	args := strings.Fields(req.Args())
	if len(args) == 0 || len(args) > 2 {
		return 0, "", false
	}

	idx, err := strconv.Atoi(args[0])
	if err != nil || idx < 1 {
		return 0, "", false
	}

	if len(args) == 2 {
		key = args[1]
	}

	return idx, key, true
}

// refData returns the button data referring to the article at the position.
// The key keeps the button pointing to the same article when the list changes.
func refData(cmd string, idx int, article store.Article) string {
	return fmt.Sprintf("%s %d %s", cmd, idx, articleKey(article.URL))
}

// articleKey returns a short key of the article URL.
func articleKey(u string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(u)).String()[:8]
}

// findByKey looks up the article by its key, checking the hinted
// 1-based position first. It returns the position of the found article.
func findByKey(articles []store.Article, hint int, key string) (store.Article, int, bool) {
	if hint >= 1 && hint <= len(articles) && articleKey(articles[hint-1].URL) == key {
		return articles[hint-1], hint, true
	}

	for i, a := range articles {
		if articleKey(a.URL) == key {
			return a, i + 1, true
		}
	}

	return store.Article{}, 0, false
}

func textResponse(req botx.Request, text string) []botx.Response {
	return []botx.Response{{ChatID: req.Chat.ID, Text: text}}
}

var mdEscaper = strings.NewReplacer(
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	"[", "\\[",
)

func escapeMarkdown(s string) string {
	return mdEscaper.Replace(s)
}
