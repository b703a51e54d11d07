// Package jobmgr runs named background jobs, at most one per name at a time.
//
//	jm := jobmgr.NewManager(log)
//	err := jm.Start(ctx, "sync:123", func(ctx context.Context) error {
//	    return syncGuild(ctx, "123")
//	})
//	if errors.Is(err, jobmgr.ErrRunning) {
//	    // a sync for this guild is already in flight
//	}
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

// ErrRunning is returned by Start when a job with the same name is running.
var ErrRunning = errors.New("job is already running")

// ErrNotRunning is returned by Stop for unknown jobs.
var ErrNotRunning = errors.New("job is not running")

// Manager tracks running jobs. It is safe for concurrent use.
type Manager struct {
	mu   sync.Mutex
	jobs map[string]context.CancelFunc
	wg   sync.WaitGroup
	log  zerolog.Logger
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		jobs: make(map[string]context.CancelFunc),
		log:  log,
	}
}

// Start runs fn in its own goroutine with a context derived from ctx. The job
// is forgotten once fn returns.
func (m *Manager) Start(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	if _, ok := m.jobs[name]; ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRunning, name)
	}
	ctx, cancel := context.WithCancel(ctx)
	m.jobs[name] = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer func() {
			cancel()
			m.mu.Lock()
			delete(m.jobs, name)
			m.mu.Unlock()
		}()

		m.log.Debug().Str("job", name).Msg("job started")
		if err := fn(ctx); err != nil {
			m.log.Error().Err(err).Str("job", name).Msg("job failed")
			return
		}
		m.log.Debug().Str("job", name).Msg("job done")
	}()
	return nil
}

// Stop cancels a running job. The job is forgotten when it returns.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cancel, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRunning, name)
	}
	cancel()
	return nil
}

// Running returns the names of running jobs, sorted.
func (m *Manager) Running() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for name := range m.jobs {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Wait blocks until every started job has returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}
