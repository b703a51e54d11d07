// Package dispatch routes inbound events to registered commands through a
// single invocation shape, and drives the interactive continuation flow.
package dispatch

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/keshon/switchboard/internal/resolver"
	"github.com/keshon/switchboard/internal/token"
	"github.com/keshon/switchboard/pkg/cmd"

	"github.com/rs/zerolog"
)

// Messages shown to users.
const (
	MsgNoMatch     = "Couldn't find any matching command name."
	MsgNotTheOwner = "Sorry, but this interaction is only for the message author."
)

var mentionRe = regexp.MustCompile(`^<@!?(\d+)>$`)

// Dispatcher is the event router. It holds no per-event state.
type Dispatcher struct {
	resolver *resolver.Resolver
	prefix   string
	fallback string
	log      zerolog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithFallback names the command that handles unknown text commands. It is
// invoked with the unknown token as its only argument.
func WithFallback(name string) Option {
	return func(d *Dispatcher) { d.fallback = name }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// New returns a dispatcher for text commands starting with prefix.
func New(res *resolver.Resolver, prefix string, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		resolver: res,
		prefix:   prefix,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Prefix returns the text command prefix.
func (d *Dispatcher) Prefix() string { return d.prefix }

// Dispatch handles one event. Replies go to sink. It never panics and never
// returns an error: failures end up as a user-visible reply or a log line.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event, sink cmd.ReplySink) {
	switch e := ev.(type) {
	case TextMessage:
		d.onText(ctx, e, sink)
	case SlashCommand:
		d.onSlash(ctx, e, sink)
	case ContextMenu:
		d.onContextMenu(ctx, e, sink)
	case SelectContinuation:
		d.onSelect(ctx, e, sink)
	default:
		d.log.Debug().Str("type", fmt.Sprintf("%T", ev)).Msg("unknown event")
	}
}

func (d *Dispatcher) onText(ctx context.Context, e TextMessage, sink cmd.ReplySink) {
	if e.AuthorIsBot || !e.InGuild() {
		return
	}

	inv := e.invocation(cmd.TriggerText, sink)
	inv.MessageID = e.MessageID

	if d.prefix != "" && strings.HasPrefix(e.Content, d.prefix) {
		fields := strings.Fields(strings.TrimPrefix(e.Content, d.prefix))
		if len(fields) == 0 {
			return
		}
		name := fields[0]
		inv.Args = fields[1:]

		if c, ok := d.resolver.ResolveExact(name, d.resolver.Privileged(e.AuthorID)); ok {
			d.run(ctx, c, inv)
			return
		}
		d.miss(ctx, name, inv)
		return
	}

	if m := mentionRe.FindStringSubmatch(e.Content); m != nil && e.SelfID != "" && m[1] == e.SelfID {
		hint := cmd.Info(fmt.Sprintf("👋 **|** Hi <@%s>, my prefix is **`%s`**", e.AuthorID, d.prefix))
		d.send(ctx, inv, hint, cmd.ModeReply)
	}
}

// miss hands an unknown text command to the fallback command, which offers
// near matches. Without a fallback the user gets a plain no-match reply.
func (d *Dispatcher) miss(ctx context.Context, name string, inv *cmd.Invocation) {
	if d.fallback != "" {
		if c, ok := d.resolver.ResolveExact(d.fallback, d.resolver.Privileged(inv.AuthorID)); ok {
			inv.Args = []string{name}
			d.run(ctx, c, inv)
			return
		}
	}
	d.send(ctx, inv, cmd.Error(MsgNoMatch), cmd.ModeReply)
}

func (d *Dispatcher) onSlash(ctx context.Context, e SlashCommand, sink cmd.ReplySink) {
	if !e.InGuild() {
		return
	}

	c := d.resolver.Registry().BySlashName(e.Name)
	if c == nil {
		d.log.Debug().Str("command", e.Name).Msg("unknown slash command")
		return
	}

	inv := e.invocation(cmd.TriggerSlash, sink)
	inv.Options = e.Options
	if !resolver.Visible(c.Meta(), d.resolver.Privileged(e.AuthorID)) {
		d.send(ctx, inv, ephemeral(cmd.Error(MsgNoMatch)), cmd.ModeReply)
		return
	}
	d.run(ctx, c, inv)
}

func (d *Dispatcher) onContextMenu(ctx context.Context, e ContextMenu, sink cmd.ReplySink) {
	if !e.InGuild() {
		return
	}

	c := d.resolver.Registry().ByContextMenu(e.Name, e.Target)
	if c == nil {
		d.log.Debug().Str("command", e.Name).Msg("unknown context menu command")
		return
	}

	inv := e.invocation(cmd.TriggerContextMenu, sink)
	if !resolver.Visible(c.Meta(), d.resolver.Privileged(e.AuthorID)) {
		d.send(ctx, inv, ephemeral(cmd.Error(MsgNoMatch)), cmd.ModeReply)
		return
	}
	inv.SetAdditional(cmd.KeyOptions, e.Subject)
	d.run(ctx, c, inv)
}

// onSelect authorizes and continues a chooser. The ownership check and the
// continuation are evaluated independently; only the token's author can ever
// satisfy the second one.
func (d *Dispatcher) onSelect(ctx context.Context, e SelectContinuation, sink cmd.ReplySink) {
	if !e.InGuild() {
		return
	}

	tok := token.Decode(e.CustomID)
	if tok.AuthorID == "" {
		d.log.Debug().Str("custom_id", e.CustomID).Msg("select without continuation token")
		return
	}

	inv := e.invocation(cmd.TriggerSelect, sink)
	inv.MessageID = e.MessageID

	if e.AuthorID != tok.AuthorID {
		d.send(ctx, inv, ephemeral(cmd.Error(MsgNotTheOwner)), cmd.ModeReply)
	}

	if tok.CommandName != "" && tok.AuthorID == e.AuthorID && tok.Proceed {
		c, ok := d.resolver.ResolveName(tok.CommandName, d.resolver.Privileged(e.AuthorID))
		if !ok {
			d.send(ctx, inv, ephemeral(cmd.Error(MsgNoMatch)), cmd.ModeReply)
			return
		}
		inv.SetAdditional(cmd.KeyValues, e.Values)
		d.run(ctx, c, inv)
	}
}

func (d *Dispatcher) run(ctx context.Context, c cmd.Command, inv *cmd.Invocation) {
	name := c.Meta().Name
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Str("command", name).
				Str("trigger", inv.Trigger.String()).
				Interface("panic", r).
				Msg("command panicked")
		}
	}()

	d.log.Debug().
		Str("command", name).
		Str("trigger", inv.Trigger.String()).
		Str("user", inv.AuthorID).
		Msg("running command")

	if err := c.Run(ctx, inv); err != nil {
		d.log.Error().
			Err(err).
			Str("command", name).
			Str("trigger", inv.Trigger.String()).
			Msg("command failed")

		mode := cmd.ModeReply
		if inv.Deferred() {
			mode = cmd.ModeEditDeferred
		}
		d.send(ctx, inv, ephemeral(cmd.Error(fmt.Sprintf("Error running command: %v", err))), mode)
	}
}

func (d *Dispatcher) send(ctx context.Context, inv *cmd.Invocation, r *cmd.Reply, mode cmd.SendMode) {
	if err := inv.Send(ctx, r, mode); err != nil {
		d.log.Error().Err(err).Str("trigger", inv.Trigger.String()).Msg("failed to send reply")
	}
}

func ephemeral(r *cmd.Reply) *cmd.Reply {
	r.Ephemeral = true
	return r
}
