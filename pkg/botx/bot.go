// Package botx provides interfaces and types to handle bot updates,
// with a chi-like router routing by commands.
package botx

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/Semior001/newsbook/pkg/logx"
	"golang.org/x/exp/slog"
)

// API defines methods for an API interface to receive and send chat messages.
// Updates channel is closed when the API stops listening.
type API interface {
	Updates() <-chan Request
	SendMessage(ctx context.Context, resp Response) error
}

// Bot reads requests from the API and handles them with a pool of workers.
// Requests of a chat always go to the same worker, so a chat is served
// in the order its requests arrived, while different chats are served
// concurrently.
type Bot struct {
	h   Handler
	api API
	Options
}

// NewBot creates a new Bot.
func NewBot(h Handler, api API, opts ...Option) *Bot {
	options := Options{
		Workers:   1,
		QueueSize: 10,
		Logger:    slog.New(logx.NoOp()),
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Workers < 1 {
		options.Workers = 1
	}

	return &Bot{h: h, api: api, Options: options}
}

// Run dispatches updates to workers until the context is canceled or
// the updates channel is closed. It waits for the workers to finish
// the requests they have already taken.
func (b *Bot) Run(ctx context.Context) {
	queues := make([]chan Request, b.Workers)
	wg := &sync.WaitGroup{}

	for i := range queues {
		queues[i] = make(chan Request, b.QueueSize)
		wg.Add(1)
		go func(idx int, queue <-chan Request) {
			defer wg.Done()
			b.work(ctx, idx, queue)
		}(i, queues[i])
	}

	b.dispatch(ctx, queues)

	for _, q := range queues {
		close(q)
	}
	wg.Wait()
}

func (b *Bot) dispatch(ctx context.Context, queues []chan Request) {
	for {
		var req Request
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-b.api.Updates():
			if !ok {
				return
			}
			req = upd
		}

		select {
		case <-ctx.Done():
			return
		case queues[shard(req.Chat.ID, len(queues))] <- req:
		}
	}
}

func (b *Bot) work(ctx context.Context, idx int, queue <-chan Request) {
	b.Logger.DebugCtx(ctx, "worker started", slog.Int("worker", idx))
	defer b.Logger.DebugCtx(ctx, "worker stopped", slog.Int("worker", idx))

	for req := range queue {
		if ctx.Err() != nil {
			b.Logger.WarnCtx(ctx, "dropped request of a stopping bot", slog.String("chat_id", req.Chat.ID))
			continue
		}
		b.handle(ctx, req)
	}
}

func (b *Bot) handle(ctx context.Context, req Request) {
	ctx = logx.ContextWithAttrs(ctx, slog.String("chat_id", req.Chat.ID))

	resps, err := b.h(ctx, req)
	if err != nil {
		b.Logger.ErrorCtx(ctx, "failed to handle request", slog.Any("err", err))
	}

	for _, resp := range resps {
		if err := b.api.SendMessage(ctx, resp); err != nil {
			b.Logger.WarnCtx(ctx, "failed to send message",
				slog.String("to", resp.ChatID), slog.Any("err", err))
		}
	}
}

// shard returns the worker of the chat.
func shard(chatID string, workers int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(chatID))
	return int(h.Sum32() % uint32(workers))
}
