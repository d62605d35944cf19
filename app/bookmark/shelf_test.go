package bookmark

import (
	"context"
	"testing"

	"github.com/Semior001/newsbook/app/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestShelf_For(t *testing.T) {
	b, err := store.NewBolt(t.TempDir())
	require.NoError(t, err)
	defer func() { assert.NoError(t, b.Close()) }()

	sh := NewShelf(slog.Default(), b)
	ctx := context.Background()

	var events []Event
	sh.OnChange(func(_ context.Context, ev Event) { events = append(events, ev) })

	assert.Same(t, sh.For("1"), sh.For("1"))
	assert.Equal(t, "@news_bookmarks/1", sh.For("1").Key())
	assert.Equal(t, DefaultKey, sh.For("").Key())

	require.True(t, sh.For("1").Save(ctx, article("https://a")))
	assert.True(t, sh.For("1").Contains(ctx, "https://a"))
	assert.False(t, sh.For("2").Contains(ctx, "https://a"), "lists of different owners are separate")

	require.True(t, sh.For("2").Save(ctx, article("https://b")))

	assert.Equal(t, []Event{
		{Key: "@news_bookmarks/1", Kind: Saved, URL: "https://a"},
		{Key: "@news_bookmarks/2", Kind: Saved, URL: "https://b"},
	}, events)
}
