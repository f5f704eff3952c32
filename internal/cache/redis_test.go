package cache

import (
	"context"
	"testing"
	"time"

	"github.com/eightam/acf-ofm-location/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	c, err := New(ctx, mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	want := []models.Location{models.NewLocation("Main St", "5", "Springfield", "12345", "", "USA", 39.78, -89.65)}
	require.NoError(t, c.Set(ctx, "geocode:photon:main st", want, time.Minute))

	var got []models.Location
	found, err := c.Get(ctx, "geocode:photon:main st", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	assert.True(t, mr.Exists("ofm:geocode:photon:main st"))

	mr.FastForward(2 * time.Minute)
	found, err = c.Get(ctx, "geocode:photon:main st", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_GetCorrupt(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	c, err := New(ctx, mr.Addr())
	require.NoError(t, err)

	require.NoError(t, mr.Set("ofm:broken", "{not json"))

	var got models.Location
	_, err = c.Get(ctx, "broken", &got)
	assert.Error(t, err)
}

func TestNew_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), addr)
	assert.Error(t, err)
}
