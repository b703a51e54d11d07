// Package cmd provides a transport-agnostic command core: a command is something
// with metadata and Run(ctx, invocation). How it is registered and dispatched
// (Discord text, slash, context menu, console) is defined by adapters that build
// an Invocation and hand it over.
package cmd

import "context"

// Meta is the static description of a command. It is built once at startup and
// never mutated afterwards.
type Meta struct {
	Name        string
	Aliases     []string
	Description string
	// Usage may contain the {prefix} placeholder.
	Usage    string
	Category string
	DevOnly  bool

	// Slash is nil for commands that are not exposed as platform commands.
	Slash *SlashSpec

	// Context menu names for the "user" and "message" target types.
	ContextUser string
	ContextChat string
}

// SlashSpec describes the structured (slash) form of a command.
type SlashSpec struct {
	// Name defaults to Meta.Name when empty.
	Name    string
	Options []Option
}

// OptionType is the value kind of a structured option.
type OptionType int

const (
	OptionString OptionType = iota
	OptionInteger
	OptionBoolean
	OptionUser
)

// Option is a single structured option of a slash command.
type Option struct {
	Type        OptionType
	Name        string
	Description string
	Required    bool
}

// SlashName returns the platform-visible structured name, or "" when the
// command has no slash form.
func (m Meta) SlashName() string {
	if m.Slash == nil {
		return ""
	}
	if m.Slash.Name != "" {
		return m.Slash.Name
	}
	return m.Name
}

// Command is the universal contract: metadata plus execution.
type Command interface {
	Meta() Meta
	Run(ctx context.Context, inv *Invocation) error
}
