package jobmgr

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartRejectsDuplicate(t *testing.T) {
	m := NewManager(zerolog.Nop())
	release := make(chan struct{})

	require.NoError(t, m.Start(context.Background(), "sync:1", func(ctx context.Context) error {
		<-release
		return nil
	}))
	err := m.Start(context.Background(), "sync:1", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrRunning)
	assert.Equal(t, []string{"sync:1"}, m.Running())

	close(release)
	m.Wait()
	assert.Empty(t, m.Running())

	// The name is free again once the job returned.
	require.NoError(t, m.Start(context.Background(), "sync:1", func(context.Context) error {
		return errors.New("failed")
	}))
	m.Wait()
}

func TestStop(t *testing.T) {
	m := NewManager(zerolog.Nop())
	started := make(chan struct{})

	require.NoError(t, m.Start(context.Background(), "long", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))
	<-started

	require.NoError(t, m.Stop("long"))
	m.Wait()
	assert.Empty(t, m.Running())
	assert.ErrorIs(t, m.Stop("long"), ErrNotRunning)
}

func TestParentCancel(t *testing.T) {
	m := NewManager(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	require.NoError(t, m.Start(ctx, "child", func(ctx context.Context) error {
		<-ctx.Done()
		done <- ctx.Err()
		return nil
	}))

	cancel()
	m.Wait()
	assert.ErrorIs(t, <-done, context.Canceled)
}
