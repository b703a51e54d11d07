package cmd

import (
	"context"
	"errors"
)

// ErrNoReplySink is returned when an invocation has nowhere to send replies.
var ErrNoReplySink = errors.New("invocation has no reply sink")

// SendMode selects how a reply is delivered.
type SendMode int

const (
	// ModeReply sends a new reply.
	ModeReply SendMode = iota
	// ModeEditDeferred fills in a previously deferred interaction response.
	ModeEditDeferred
)

// Style is the visual intent of a reply. Rendering is up to the adapter.
type Style int

const (
	StyleInfo Style = iota
	StyleError
)

// Field is a titled block of a reply.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Choice is one selectable entry of a Chooser.
type Choice struct {
	Emoji       string
	Label       string
	Description string
	Value       string
}

// Chooser is a single-value selection control bound to a continuation token.
type Chooser struct {
	CustomID    string
	Placeholder string
	Options     []Choice
	Disabled    bool
}

// Reply is an abstract outgoing message.
type Reply struct {
	Style       Style
	Author      string
	Title       string
	Description string
	Fields      []Field
	Footer      string
	Chooser     *Chooser
	Ephemeral   bool
}

// Message identifies a previously sent message.
type Message struct {
	ID        string
	ChannelID string
}

// ReplySink is the outbound side of an invocation.
type ReplySink interface {
	Send(ctx context.Context, r *Reply, mode SendMode) error
	Defer(ctx context.Context, ephemeral bool) error
	Deferred() bool
	// FetchMessage returns nil without error when the message does not exist.
	FetchMessage(ctx context.Context, messageID string) (*Message, error)
	EditMessage(ctx context.Context, messageID string, r *Reply) error
}

// Info builds an info-styled reply with a description.
func Info(description string) *Reply {
	return &Reply{Style: StyleInfo, Description: description}
}

// Error builds an error-styled reply with a description.
func Error(description string) *Reply {
	return &Reply{Style: StyleError, Description: description}
}
