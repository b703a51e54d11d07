package middleware

import (
	"context"
	"time"

	"github.com/keshon/switchboard/internal/storage"
	"github.com/keshon/switchboard/pkg/cmd"

	"github.com/rs/zerolog"
)

// HistoryStore persists command usage.
type HistoryStore interface {
	AppendCommandToHistory(guildID string, rec storage.CommandHistoryRecord) error
}

// Names are display names for the ids of an invocation.
type Names struct {
	Username    string
	ChannelName string
	GuildName   string
}

// Describer resolves display names for an invocation. Adapters that cannot
// resolve names may pass nil.
type Describer func(ctx context.Context, inv *cmd.Invocation) Names

// WithCommandLogger records every guild invocation in the history store after
// the command ran, whatever its outcome.
func WithCommandLogger(store HistoryStore, describe Describer, log zerolog.Logger) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			err := c.Run(ctx, inv)

			if inv.GuildID == "" {
				return err
			}

			var names Names
			if describe != nil {
				names = describe(ctx, inv)
			}
			rec := storage.CommandHistoryRecord{
				ChannelID:   inv.ChannelID,
				ChannelName: names.ChannelName,
				GuildName:   names.GuildName,
				UserID:      inv.AuthorID,
				Username:    names.Username,
				Command:     c.Meta().Name,
				Trigger:     inv.Trigger.String(),
				Datetime:    time.Now(),
			}
			if e := store.AppendCommandToHistory(inv.GuildID, rec); e != nil {
				log.Warn().Err(e).Str("command", c.Meta().Name).Msg("failed to log command")
			}
			return err
		})
	}
}
