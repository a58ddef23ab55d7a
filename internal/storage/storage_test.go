package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Load(ctx, SlotAuth)
	require.ErrorIs(t, err, ErrSlotNotFound)

	buf := []byte(`{"users":[]}`)
	require.NoError(t, m.Save(ctx, SlotAuth, buf))
	buf[0] = 'X'

	got, err := m.Load(ctx, SlotAuth)
	require.NoError(t, err)
	require.Equal(t, `{"users":[]}`, string(got))
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis("not a url")
	require.Error(t, err)

	r, err := NewRedis("redis://localhost:6379/0")
	require.NoError(t, err)
	require.NoError(t, r.Close())
}
