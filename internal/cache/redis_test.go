package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/ecommerce_api/internal/models"
)

func newCache(t *testing.T) (*ProductCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := Connect(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return NewProductCache(rdb, time.Minute), mr
}

func TestProductCache_RoundTrip(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, 7)
	require.ErrorIs(t, err, ErrMiss)

	p := &models.ProductView{ID: 7, Name: "Hammer", Price: models.MustMoney("4"), CategoryName: "Tools"}
	require.NoError(t, c.Set(ctx, p))
	assert.True(t, mr.Exists("product:7"))
	assert.Equal(t, time.Minute, mr.TTL("product:7"))

	got, err := c.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Hammer", got.Name)
	assert.Equal(t, "4.00", got.Price.String())
	assert.Equal(t, "Tools", got.CategoryName)

	require.NoError(t, c.Delete(ctx, 7))
	_, err = c.Get(ctx, 7)
	require.ErrorIs(t, err, ErrMiss)
}

func TestProductCache_Expires(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &models.ProductView{ID: 1, Name: "Saw"}))
	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, 1)
	require.ErrorIs(t, err, ErrMiss)
}

func TestConnect_BadURL(t *testing.T) {
	_, err := Connect(context.Background(), "not-a-url")
	require.Error(t, err)
}
