package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "cities:5", []item{{ID: 1, Name: "Medellín"}}, time.Minute))

	var got []item
	found, err := m.Get(ctx, "cities:5", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Medellín", got[0].Name)

	now = now.Add(2 * time.Minute)
	found, err = m.Get(ctx, "cities:5", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryDeletePrefix(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_ = m.Set(ctx, "locations:departments:1", 1, 0)
	_ = m.Set(ctx, "locations:cities:2", 2, 0)
	_ = m.Set(ctx, "roles:3", 3, 0)

	require.NoError(t, m.DeletePrefix(ctx, "locations:"))

	var v int
	found, _ := m.Get(ctx, "locations:cities:2", &v)
	assert.False(t, found)
	found, _ = m.Get(ctx, "roles:3", &v)
	assert.True(t, found)
}

func TestRemember(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	calls := 0
	load := func(context.Context) ([]item, error) {
		calls++
		return []item{{ID: 7, Name: "Antioquia"}}, nil
	}

	first, err := Remember(ctx, m, "departments:1", time.Hour, load)
	require.NoError(t, err)
	second, err := Remember(ctx, m, "departments:1", time.Hour, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	_, err = Remember(ctx, m, "departments:2", time.Hour, func(context.Context) ([]item, error) {
		return nil, errors.New("db down")
	})
	assert.Error(t, err)
	var v []item
	found, _ := m.Get(ctx, "departments:2", &v)
	assert.False(t, found)
}
