package cmd

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Semior001/newsbook/pkg/botx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type apiStub struct {
	updates chan botx.Request
	stop    chan struct{}
	once    sync.Once

	mu   sync.Mutex
	sent []botx.Response
}

func newAPIStub() *apiStub {
	return &apiStub{updates: make(chan botx.Request), stop: make(chan struct{})}
}

func (a *apiStub) Run()                         { <-a.stop }
func (a *apiStub) Stop()                        { a.once.Do(func() { close(a.stop) }) }
func (a *apiStub) Updates() <-chan botx.Request { return a.updates }

func (a *apiStub) SendMessage(_ context.Context, resp botx.Response) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sent = append(a.sent, resp)
	return nil
}

func echo(_ context.Context, req botx.Request) ([]botx.Response, error) {
	return []botx.Response{{ChatID: req.Chat.ID, Text: req.Text}}, nil
}

func TestServe_Canceled(t *testing.T) {
	api := newAPIStub()
	b := botx.NewBot(echo, api)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, slog.Default(), b, api) }()

	api.updates <- botx.Request{Chat: botx.Chat{ID: "1"}, Text: "hi"}
	require.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return len(api.sent) == 1
	}, time.Second, time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("serve did not stop")
	}

	select {
	case <-api.stop:
	default:
		t.Fatal("api is not stopped")
	}
}

func TestServe_UpdatesClosed(t *testing.T) {
	api := newAPIStub()
	b := botx.NewBot(echo, api)

	close(api.updates)

	err := serve(context.Background(), slog.Default(), b, api)
	assert.ErrorIs(t, err, errUpdatesClosed)
}
