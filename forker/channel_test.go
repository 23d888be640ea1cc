package forker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChannel_FIFOAndSingleEnd(t *testing.T) {
	ch := newChannel[int]()
	for i := range 5 {
		ch.push(i)
	}
	ch.end()
	ch.end()
	ch.push(99)

	require.Equal(t, 6, ch.pending())

	seq := newSequence(ch)
	ctx := context.Background()
	for want := range 5 {
		v, ok, err := seq.Next(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, want, v)
	}

	for range 3 {
		_, ok, err := seq.Next(ctx)
		require.NoError(t, err)
		require.False(t, ok, "sequence must stay exhausted after the end marker")
	}
}

func TestChannel_TakeBlocksUntilPush(t *testing.T) {
	ch := newChannel[string]()
	seq := newSequence(ch)

	got := make(chan string, 1)
	go func() {
		v, _, _ := seq.Next(context.Background())
		got <- v
	}()

	select {
	case <-got:
		t.Fatal("Next returned before any element was pushed")
	case <-time.After(20 * time.Millisecond):
	}

	ch.push("a")
	select {
	case v := <-got:
		require.Equal(t, "a", v)
	case <-time.After(time.Second):
		t.Fatal("Next did not wake after push")
	}
}

func TestSequence_ContextCancelled(t *testing.T) {
	ch := newChannel[int]()
	seq := newSequence(ch)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, ok, err := seq.Next(ctx)
	require.False(t, ok)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSequence_CloseDetaches(t *testing.T) {
	ch := newChannel[int]()
	ch.push(1)
	ch.push(2)

	seq := newSequence(ch)
	require.NoError(t, seq.Close())
	require.NoError(t, seq.Close())
	require.Zero(t, ch.pending())

	ch.push(3)
	ch.end()
	require.Zero(t, ch.pending())

	_, ok, err := seq.Next(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}
