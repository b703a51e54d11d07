package core

import (
	"context"
	"fmt"
	"time"

	"github.com/keshon/switchboard/internal/config"
	"github.com/keshon/switchboard/pkg/cmd"
)

type PingCommand struct {
	// Latency reports the gateway heartbeat latency. Nil means unknown.
	Latency func() time.Duration
}

func (c *PingCommand) Meta() cmd.Meta {
	return cmd.Meta{
		Name:        "ping",
		Description: "Check bot latency",
		Usage:       "{prefix}ping",
		Category:    config.CategoryUtilities,
		Slash:       &cmd.SlashSpec{},
	}
}

func (c *PingCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	desc := "Latency: unknown"
	if c.Latency != nil {
		desc = fmt.Sprintf("Latency: %dms", c.Latency().Milliseconds())
	}
	reply := &cmd.Reply{
		Style:       cmd.StyleInfo,
		Title:       "Pong! 🏓",
		Description: desc,
		Ephemeral:   inv.IsInteraction(),
	}
	return inv.Send(ctx, reply, cmd.ModeReply)
}
