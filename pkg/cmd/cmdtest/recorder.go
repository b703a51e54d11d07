// Package cmdtest provides a recording ReplySink for command tests.
package cmdtest

import (
	"context"
	"sync"

	"github.com/keshon/switchboard/pkg/cmd"
)

// Sent is one recorded Send call.
type Sent struct {
	Reply *cmd.Reply
	Mode  cmd.SendMode
}

// Edit is one recorded EditMessage call.
type Edit struct {
	MessageID string
	Reply     *cmd.Reply
}

// Recorder records everything sent through it. Set the Err fields to make
// the corresponding calls fail.
type Recorder struct {
	mu sync.Mutex

	Sent     []Sent
	Edits    []Edit
	Fetches  []string
	deferred bool

	// Messages lists message ids FetchMessage can find.
	Messages map[string]bool

	SendErr  error
	DeferErr error
	FetchErr error
	EditErr  error
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{Messages: make(map[string]bool)}
}

func (r *Recorder) Send(_ context.Context, reply *cmd.Reply, mode cmd.SendMode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SendErr != nil {
		return r.SendErr
	}
	r.Sent = append(r.Sent, Sent{Reply: reply, Mode: mode})
	return nil
}

func (r *Recorder) Defer(context.Context, bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DeferErr != nil {
		return r.DeferErr
	}
	r.deferred = true
	return nil
}

func (r *Recorder) Deferred() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deferred
}

func (r *Recorder) FetchMessage(_ context.Context, id string) (*cmd.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Fetches = append(r.Fetches, id)
	if r.FetchErr != nil {
		return nil, r.FetchErr
	}
	if !r.Messages[id] {
		return nil, nil
	}
	return &cmd.Message{ID: id}, nil
}

func (r *Recorder) EditMessage(_ context.Context, id string, reply *cmd.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.EditErr != nil {
		return r.EditErr
	}
	r.Edits = append(r.Edits, Edit{MessageID: id, Reply: reply})
	return nil
}

// Last returns the last sent reply, or nil.
func (r *Recorder) Last() *cmd.Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Sent) == 0 {
		return nil
	}
	return r.Sent[len(r.Sent)-1].Reply
}

// Spy is a command that records its invocations.
type Spy struct {
	M     cmd.Meta
	Calls []*cmd.Invocation
	Err   error
}

func (s *Spy) Meta() cmd.Meta { return s.M }

func (s *Spy) Run(_ context.Context, inv *cmd.Invocation) error {
	s.Calls = append(s.Calls, inv)
	return s.Err
}
