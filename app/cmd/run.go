package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Semior001/newsbook/app/bookmark"
	"github.com/Semior001/newsbook/app/bot"
	"github.com/Semior001/newsbook/app/details"
	"github.com/Semior001/newsbook/app/listing"
	"github.com/Semior001/newsbook/app/store"
	"github.com/Semior001/newsbook/pkg/botx"
	"github.com/Semior001/newsbook/pkg/botx/botapi"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

// Run is a command to run the bot.
type Run struct {
	SourceOpts

	Bot struct {
		Timeout time.Duration `long:"timeout" env:"TIMEOUT" default:"2m" description:"timeout for requests"`
		Workers int           `long:"workers" env:"WORKERS" default:"10" description:"number of update handlers"`

		Telegram struct {
			Token string `long:"token" env:"TOKEN" description:"telegram token"`
		} `group:"telegram" namespace:"telegram" env-namespace:"TELEGRAM"`

		AdminIDs []string `long:"admin-ids" env:"ADMIN_IDS" env-delim:"," description:"admin IDs"`
	} `group:"bot" namespace:"bot" env-namespace:"BOT"`

	Details struct {
		Timeout time.Duration `long:"timeout" env:"TIMEOUT" default:"10s" description:"timeout for downloading article pages"`

		OpenAI struct {
			Token     string        `long:"token" env:"TOKEN" description:"OpenAI token, summaries are off if empty"`
			Model     string        `long:"model" env:"MODEL" default:"gpt-3.5-turbo" description:"OpenAI model"`
			MaxTokens int           `long:"max-tokens" env:"MAX_TOKENS" default:"300" description:"max tokens of a summary"`
			MaxWords  int           `long:"max-words" env:"MAX_WORDS" default:"2000" description:"max article words sent to OpenAI"`
			CacheTTL  time.Duration `long:"cache-ttl" env:"CACHE_TTL" default:"24h" description:"time to keep summaries"`
			Timeout   time.Duration `long:"timeout" env:"TIMEOUT" default:"1m" description:"timeout for OpenAI calls"`
		} `group:"openai" namespace:"openai" env-namespace:"OPENAI"`
	} `group:"details" namespace:"details" env-namespace:"DETAILS"`

	StorePath string `long:"store-path" env:"STORE_PATH" default:"." description:"parent dir for bolt files"`
}

// Execute runs the command.
func (r Run) Execute(_ []string) error {
	lg := slog.Default()

	src, newsAPI, err := r.SourceOpts.build(lg)
	if err != nil {
		return fmt.Errorf("make source: %w", err)
	}

	var chatGPT *details.ChatGPT
	if r.Details.OpenAI.Token != "" {
		chatGPT = details.NewChatGPT(
			lg.With(slog.String("prefix", "chatgpt")),
			&http.Client{Timeout: r.Details.OpenAI.Timeout},
			details.ChatGPTOpts{
				Token:     r.Details.OpenAI.Token,
				Model:     r.Details.OpenAI.Model,
				MaxTokens: r.Details.OpenAI.MaxTokens,
				MaxWords:  r.Details.OpenAI.MaxWords,
				CacheTTL:  r.Details.OpenAI.CacheTTL,
			},
		)
	}

	svc := details.NewService(
		lg.With(slog.String("prefix", "details")),
		&http.Client{Timeout: r.Details.Timeout},
		chatGPT,
		details.Extractor{},
	)

	s, err := store.NewBolt(r.StorePath)
	if err != nil {
		return fmt.Errorf("make store: %w", err)
	}

	defer func() {
		if err := s.Close(); err != nil {
			lg.Error("close bolt store", slog.Any("err", err))
		}
	}()

	shelf := bookmark.NewShelf(lg.With(slog.String("prefix", "bookmarks")), s)
	shelf.OnChange(func(ctx context.Context, ev bookmark.Event) {
		lg.InfoCtx(ctx, "bookmarks changed",
			slog.String("key", ev.Key),
			slog.String("kind", string(ev.Kind)),
			slog.String("url", ev.URL))
	})

	api, err := botapi.NewTelegram(
		lg.With(slog.String("prefix", "telegram")),
		r.Bot.Telegram.Token,
		100,
	)
	if err != nil {
		return fmt.Errorf("make telegram controller: %w", err)
	}

	caches := map[string]bot.CacheStater{}
	if newsAPI != nil {
		caches["newsapi"] = newsAPI
	}
	if chatGPT != nil {
		caches["summaries"] = chatGPT
	}

	ctrl := &bot.Ctrl{
		Logger:         lg.With(slog.String("prefix", "bot")),
		Listing:        listing.NewCoordinator(lg.With(slog.String("prefix", "listing")), src),
		Sessions:       listing.NewSessions(),
		Bookmarks:      shelf,
		Details:        svc,
		API:            api,
		AdminIDs:       r.Bot.AdminIDs,
		HandlerTimeout: r.Bot.Timeout,
		Caches:         caches,
	}

	b := botx.NewBot(
		ctrl.Routes().Handle,
		api,
		botx.WithLogger(lg.With(slog.String("prefix", "botx"))),
		botx.WithWorkers(r.Bot.Workers),
	)

	if err := ctrl.NotifyAdmins(context.Background(), "bot started"); err != nil {
		return fmt.Errorf("notify admins about started bot: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, lg, b, api); err != nil {
		if sendErr := ctrl.NotifyAdmins(context.Background(), fmt.Sprintf("bot stopped with error: %v", err)); sendErr != nil {
			lg.Warn("failed to notify admins", slog.Any("err", sendErr))
		}
		return err
	}

	if err := ctrl.NotifyAdmins(context.Background(), "bot stopped"); err != nil {
		return fmt.Errorf("notify admins about stopped bot: %w", err)
	}

	return nil
}

// errUpdatesClosed is returned when the api stopped listening for
// updates before the bot was asked to stop.
var errUpdatesClosed = errors.New("updates channel closed")

// telegramAPI is the long-polling part of the bot API.
type telegramAPI interface {
	Run()
	Stop()
}

// serve runs the api listener and the bot until the context is canceled,
// then stops the listener.
func serve(ctx context.Context, lg *slog.Logger, b *botx.Bot, api telegramAPI) error {
	ewg, ctx := errgroup.WithContext(ctx)

	ewg.Go(func() error {
		lg.Info("starting telegram api")
		api.Run()
		lg.Warn("telegram api stopped listening for updates")
		return nil
	})

	ewg.Go(func() error {
		lg.Info("starting bot")
		b.Run(ctx)
		lg.Warn("bot stopped")

		api.Stop()

		if ctx.Err() != nil {
			return nil
		}
		return errUpdatesClosed
	})

	return ewg.Wait()
}
