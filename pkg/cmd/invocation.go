package cmd

import "context"

// Trigger is the kind of inbound event that started an invocation.
type Trigger int

const (
	TriggerText Trigger = iota
	TriggerSlash
	TriggerContextMenu
	TriggerSelect
)

func (t Trigger) String() string {
	switch t {
	case TriggerText:
		return "text"
	case TriggerSlash:
		return "slash"
	case TriggerContextMenu:
		return "context-menu"
	case TriggerSelect:
		return "select"
	default:
		return "unknown"
	}
}

// Keys used in Invocation.Additional.
const (
	// KeyOptions holds the target of a context-menu invocation (user or message).
	KeyOptions = "options"
	// KeyValues holds the chosen values ([]string) of a select continuation.
	KeyValues = "values"
)

// Invocation carries everything a command needs to run, whatever the input
// channel was. It is created per event and discarded after Run returns.
type Invocation struct {
	Trigger   Trigger
	AuthorID  string
	GuildID   string
	ChannelID string
	// MessageID is the triggering message for text invocations and the message
	// holding the component for select continuations.
	MessageID string

	// Args are the positional arguments of a text invocation, without the
	// command name.
	Args []string
	// Options are the structured options of a slash invocation.
	Options map[string]any
	// Additional carries trigger-specific extras, see KeyOptions and KeyValues.
	Additional map[string]any

	Reply ReplySink

	// Data is an opaque adapter payload (e.g. the raw platform event).
	Data any
}

func (inv *Invocation) IsText() bool        { return inv.Trigger == TriggerText }
func (inv *Invocation) IsSlash() bool       { return inv.Trigger == TriggerSlash }
func (inv *Invocation) IsContextMenu() bool { return inv.Trigger == TriggerContextMenu }
func (inv *Invocation) IsSelect() bool      { return inv.Trigger == TriggerSelect }

// IsInteraction reports whether the invocation came from a platform
// interaction rather than a plain message.
func (inv *Invocation) IsInteraction() bool { return inv.Trigger != TriggerText }

// Option returns a structured option by name.
func (inv *Invocation) Option(name string) (any, bool) {
	if inv.Options == nil {
		return nil, false
	}
	v, ok := inv.Options[name]
	return v, ok
}

// OptionString returns a structured option as a string. Missing or non-string
// options report false.
func (inv *Invocation) OptionString(name string) (string, bool) {
	v, ok := inv.Option(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// SetAdditional stores a trigger-specific value.
func (inv *Invocation) SetAdditional(key string, value any) {
	if inv.Additional == nil {
		inv.Additional = make(map[string]any)
	}
	inv.Additional[key] = value
}

// Values returns the chosen values of a select continuation, or nil.
func (inv *Invocation) Values() []string {
	if inv.Additional == nil {
		return nil
	}
	v, _ := inv.Additional[KeyValues].([]string)
	return v
}

// Target returns the context-menu target, or nil.
func (inv *Invocation) Target() any {
	if inv.Additional == nil {
		return nil
	}
	return inv.Additional[KeyOptions]
}

// Deferred reports whether the interaction has already been acknowledged with
// a deferred response. Callers must then send with ModeEditDeferred.
func (inv *Invocation) Deferred() bool {
	return inv.Reply != nil && inv.Reply.Deferred()
}

// Defer acknowledges the interaction so the reply can be sent later.
func (inv *Invocation) Defer(ctx context.Context, ephemeral bool) error {
	if inv.Reply == nil {
		return ErrNoReplySink
	}
	return inv.Reply.Defer(ctx, ephemeral)
}

// Send delivers a reply. The mode is passed through untouched.
func (inv *Invocation) Send(ctx context.Context, r *Reply, mode SendMode) error {
	if inv.Reply == nil {
		return ErrNoReplySink
	}
	return inv.Reply.Send(ctx, r, mode)
}
