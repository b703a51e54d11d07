package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/switchboard/internal/config"
	"github.com/keshon/switchboard/internal/storage"
	"github.com/keshon/switchboard/pkg/cmd"
)

// HistoryReader reads recorded command usage.
type HistoryReader interface {
	FetchCommandHistory(guildID string) ([]storage.CommandHistoryRecord, error)
}

type HistoryCommand struct {
	Store HistoryReader
}

func (c *HistoryCommand) Meta() cmd.Meta {
	return cmd.Meta{
		Name:        "history",
		Aliases:     []string{"log"},
		Description: "Shows the latest commands used in this server",
		Usage:       "{prefix}history",
		Category:    config.CategoryMaintenance,
		DevOnly:     true,
		Slash:       &cmd.SlashSpec{},
	}
}

func (c *HistoryCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	records, err := c.Store.FetchCommandHistory(inv.GuildID)
	if err != nil {
		return fmt.Errorf("failed to fetch command history: %w", err)
	}

	if len(records) == 0 {
		return inv.Send(ctx, &cmd.Reply{
			Style:       cmd.StyleInfo,
			Description: "No commands have been used yet.",
			Ephemeral:   true,
		}, cmd.ModeReply)
	}

	var b strings.Builder
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		user := r.Username
		if user == "" {
			user = "<@" + r.UserID + ">"
		}
		fmt.Fprintf(&b, "`%s` **%s** by %s via %s\n",
			r.Datetime.Format("2006-01-02 15:04"), r.Command, user, r.Trigger)
	}

	return inv.Send(ctx, &cmd.Reply{
		Style:       cmd.StyleInfo,
		Title:       "Command history",
		Description: b.String(),
		Ephemeral:   true,
	}, cmd.ModeReply)
}
