package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBolt_GetSet(t *testing.T) {
	b, err := NewBolt(t.TempDir())
	require.NoError(t, err)
	defer func() { assert.NoError(t, b.Close()) }()

	ctx := context.Background()

	_, err = b.Get(ctx, "@news_bookmarks")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Set(ctx, "@news_bookmarks", `[{"url":"a"}]`))
	v, err := b.Get(ctx, "@news_bookmarks")
	require.NoError(t, err)
	assert.Equal(t, `[{"url":"a"}]`, v)

	require.NoError(t, b.Set(ctx, "@news_bookmarks", `[]`))
	v, err = b.Get(ctx, "@news_bookmarks")
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)

	_, err = b.Get(ctx, "@news_bookmarks/other")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBolt_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	b, err := NewBolt(dir)
	require.NoError(t, err)
	require.NoError(t, b.Set(ctx, "key", "value"))
	require.NoError(t, b.Close())

	b, err = NewBolt(dir)
	require.NoError(t, err)
	defer func() { assert.NoError(t, b.Close()) }()

	v, err := b.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", v)
}
