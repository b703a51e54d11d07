package storage

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/keshon/datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCommandHistory_KeepsMostRecent(t *testing.T) {
	s := openStorage(t)

	for i := 0; i < commandHistoryLimit+5; i++ {
		require.NoError(t, s.AppendCommandToHistory("g1", CommandHistoryRecord{
			UserID:   "u",
			Command:  fmt.Sprintf("cmd%d", i),
			Datetime: time.Now(),
		}))
	}

	history, err := s.FetchCommandHistory("g1")
	require.NoError(t, err)
	require.Len(t, history, commandHistoryLimit)
	assert.Equal(t, "cmd5", history[0].Command)
	assert.Equal(t, fmt.Sprintf("cmd%d", commandHistoryLimit+4), history[len(history)-1].Command)

	other, err := s.FetchCommandHistory("g2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestCommandHistory_ConcurrentAppends(t *testing.T) {
	s := openStorage(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.AppendCommandToHistory("g1", CommandHistoryRecord{Command: fmt.Sprintf("c%d", i)})
		}(i)
	}
	wg.Wait()

	history, err := s.FetchCommandHistory("g1")
	require.NoError(t, err)
	assert.Len(t, history, 10)
}

func TestCommandHashes(t *testing.T) {
	s := openStorage(t)

	hashes, err := s.CommandHashes("g1")
	require.NoError(t, err)
	assert.Empty(t, hashes)

	require.NoError(t, s.SetCommandHashes("g1", map[string]string{"help": "abc"}))
	hashes, err = s.CommandHashes("g1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"help": "abc"}, hashes)

	hashes["help"] = "mutated"
	again, err := s.CommandHashes("g1")
	require.NoError(t, err)
	assert.Equal(t, "abc", again["help"])
}

func TestStorage_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datastore.json")

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.AppendCommandToHistory("g1", CommandHistoryRecord{Command: "help", UserID: "42"}))
	require.NoError(t, s.SetCommandHashes("g1", map[string]string{"1:help": "abc"}))
	require.NoError(t, s.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	history, err := reopened.FetchCommandHistory("g1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "help", history[0].Command)
	assert.Equal(t, "42", history[0].UserID)

	hashes, err := reopened.CommandHashes("g1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1:help": "abc"}, hashes)
}

func TestStorage_WriteAfterClose(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = s.AppendCommandToHistory("g1", CommandHistoryRecord{Command: "help"})
	assert.ErrorIs(t, err, datastore.ErrClosed)
	assert.ErrorIs(t, s.SetCommandHashes("g1", map[string]string{}), datastore.ErrClosed)
}
