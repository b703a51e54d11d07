// Package console runs the dispatcher against a terminal, so commands can be
// tried without a Discord connection.
package console

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/keshon/switchboard/internal/dispatch"
	"github.com/keshon/switchboard/pkg/cmd"
)

const (
	// Guild and Channel are the fixed locations of console events.
	Guild   = "console"
	Channel = "console"
)

// Console renders replies as plain text and remembers sent messages so that
// choosers can be selected and edited later.
type Console struct {
	d *dispatch.Dispatcher
	w io.Writer

	mu       sync.Mutex
	author   string
	seq      int
	messages map[string]*cmd.Reply
	lastID   string
}

// New returns a console that acts as the given user.
func New(d *dispatch.Dispatcher, w io.Writer, author string) *Console {
	return &Console{
		d:        d,
		w:        w,
		author:   author,
		messages: make(map[string]*cmd.Reply),
	}
}

// Handle processes one input line. Lines starting with ":" are console
// directives:
//
//	:as <user id>       act as another user
//	:pick <n|value>     select an option of the last chooser
func (c *Console) Handle(ctx context.Context, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	if strings.HasPrefix(line, ":") {
		directive, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		switch {
		case directive == ":as" && arg != "" && !strings.Contains(arg, "_"):
			c.mu.Lock()
			c.author = arg
			c.mu.Unlock()
			fmt.Fprintf(c.w, "acting as %s\n", arg)
		case directive == ":pick" && arg != "":
			c.pick(ctx, arg)
		default:
			fmt.Fprintln(c.w, "usage: :as <user id> | :pick <n|value>")
		}
		return
	}

	c.mu.Lock()
	c.seq++
	id := "in" + strconv.Itoa(c.seq)
	author := c.author
	c.mu.Unlock()

	c.d.Dispatch(ctx, dispatch.TextMessage{
		Origin:    dispatch.Origin{AuthorID: author, GuildID: Guild, ChannelID: Channel},
		MessageID: id,
		Content:   line,
	}, &sink{c: c})
}

func (c *Console) pick(ctx context.Context, arg string) {
	c.mu.Lock()
	id := c.lastID
	reply := c.messages[id]
	author := c.author
	c.mu.Unlock()

	if reply == nil || reply.Chooser == nil {
		fmt.Fprintln(c.w, "nothing to pick from")
		return
	}

	value := arg
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(reply.Chooser.Options) {
		value = reply.Chooser.Options[n-1].Value
	}

	c.d.Dispatch(ctx, dispatch.SelectContinuation{
		Origin:    dispatch.Origin{AuthorID: author, GuildID: Guild, ChannelID: Channel},
		CustomID:  reply.Chooser.CustomID,
		MessageID: id,
		Values:    []string{value},
	}, &sink{c: c, interaction: true})
}

func (c *Console) store(r *cmd.Reply) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	id := "out" + strconv.Itoa(c.seq)
	c.messages[id] = r
	if r.Chooser != nil {
		c.lastID = id
	}
	return id
}

// sink is the per-event ReplySink. Only interactions can be deferred.
type sink struct {
	c           *Console
	interaction bool
	deferred    bool
}

func (s *sink) Send(_ context.Context, r *cmd.Reply, _ cmd.SendMode) error {
	id := s.c.store(r)
	_, err := io.WriteString(s.c.w, Render(id, r))
	return err
}

func (s *sink) Defer(context.Context, bool) error {
	if s.interaction {
		s.deferred = true
	}
	return nil
}

func (s *sink) Deferred() bool { return s.deferred }

func (s *sink) FetchMessage(_ context.Context, id string) (*cmd.Message, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if _, ok := s.c.messages[id]; !ok {
		return nil, nil
	}
	return &cmd.Message{ID: id, ChannelID: Channel}, nil
}

func (s *sink) EditMessage(_ context.Context, id string, r *cmd.Reply) error {
	s.c.mu.Lock()
	old, ok := s.c.messages[id]
	if ok {
		updated := *old
		updated.Chooser = r.Chooser
		s.c.messages[id] = &updated
	}
	s.c.mu.Unlock()

	if !ok {
		return fmt.Errorf("message %s not found", id)
	}
	state := "updated"
	if r.Chooser != nil && r.Chooser.Disabled {
		state = "chooser disabled"
	}
	_, err := fmt.Fprintf(s.c.w, "[%s] %s\n", id, state)
	return err
}

// Render formats a reply for a terminal.
func Render(id string, r *cmd.Reply) string {
	var b strings.Builder

	tag := "info"
	if r.Style == cmd.StyleError {
		tag = "error"
	}
	if r.Ephemeral {
		tag += ", only you"
	}
	fmt.Fprintf(&b, "[%s] (%s)\n", id, tag)

	for _, s := range []string{r.Author, r.Title, r.Description} {
		if s != "" {
			b.WriteString(s + "\n")
		}
	}
	for _, f := range r.Fields {
		fmt.Fprintf(&b, "  %s: %s\n", f.Name, f.Value)
	}
	if r.Chooser != nil {
		fmt.Fprintf(&b, "  %s (:pick <n>)\n", r.Chooser.Placeholder)
		for i, o := range r.Chooser.Options {
			fmt.Fprintf(&b, "  %d. %s %s - %s\n", i+1, o.Emoji, o.Label, o.Description)
		}
	}
	if r.Footer != "" {
		b.WriteString(r.Footer + "\n")
	}
	return b.String()
}
