package dispatch

import "github.com/keshon/switchboard/pkg/cmd"

// Event is one inbound platform event. The set of implementations is closed:
// TextMessage, SlashCommand, ContextMenu and SelectContinuation.
type Event interface {
	trigger() cmd.Trigger
}

// Origin is the common part of every event.
type Origin struct {
	AuthorID  string
	GuildID   string
	ChannelID string
	// Data is the raw adapter payload, passed through to the invocation.
	Data any
}

// InGuild reports whether the event happened in a guild rather than a DM.
func (o Origin) InGuild() bool { return o.GuildID != "" }

// TextMessage is a plain message posted in a channel.
type TextMessage struct {
	Origin
	MessageID   string
	Content     string
	AuthorIsBot bool
	// SelfID is the bot's own user id, used to detect a bare mention.
	SelfID string
}

// SlashCommand is a structured command interaction.
type SlashCommand struct {
	Origin
	Name    string
	Options map[string]any
}

// ContextMenu is a user or message context-menu interaction.
type ContextMenu struct {
	Origin
	Name   string
	Target cmd.ContextTarget
	// Subject is the resolved user or message the menu was opened on.
	Subject any
}

// SelectContinuation is a selection made on a chooser sent earlier.
type SelectContinuation struct {
	Origin
	// CustomID carries the continuation token.
	CustomID string
	// MessageID is the message holding the chooser.
	MessageID string
	Values    []string
}

func (TextMessage) trigger() cmd.Trigger        { return cmd.TriggerText }
func (SlashCommand) trigger() cmd.Trigger       { return cmd.TriggerSlash }
func (ContextMenu) trigger() cmd.Trigger        { return cmd.TriggerContextMenu }
func (SelectContinuation) trigger() cmd.Trigger { return cmd.TriggerSelect }

func (o Origin) invocation(t cmd.Trigger, sink cmd.ReplySink) *cmd.Invocation {
	return &cmd.Invocation{
		Trigger:   t,
		AuthorID:  o.AuthorID,
		GuildID:   o.GuildID,
		ChannelID: o.ChannelID,
		Reply:     sink,
		Data:      o.Data,
	}
}
