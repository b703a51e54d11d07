package discord

import (
	"context"

	"github.com/keshon/switchboard/internal/middleware"
	"github.com/keshon/switchboard/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// Describe resolves channel, guild and user names for the command log, from
// the state cache first and the API second. Unresolvable names stay empty.
func (b *Bot) Describe(ctx context.Context, inv *cmd.Invocation) middleware.Names {
	var names middleware.Names

	channel, err := b.dg.State.Channel(inv.ChannelID)
	if err != nil {
		channel, err = b.dg.Channel(inv.ChannelID, discordgo.WithContext(ctx))
		if err != nil {
			b.log.Warn().Err(err).Str("channel", inv.ChannelID).Msg("failed to fetch channel")
		}
	}
	if channel != nil {
		names.ChannelName = channel.Name
	}

	guild, err := b.dg.State.Guild(inv.GuildID)
	if err != nil {
		guild, err = b.dg.Guild(inv.GuildID, discordgo.WithContext(ctx))
		if err != nil {
			b.log.Warn().Err(err).Str("guild", inv.GuildID).Msg("failed to fetch guild")
		}
	}
	if guild != nil {
		names.GuildName = guild.Name
	}

	names.Username = usernameFrom(inv.Data)
	return names
}

func usernameFrom(data any) string {
	switch d := data.(type) {
	case *discordgo.Message:
		if d.Author != nil {
			return d.Author.Username
		}
	case *discordgo.Interaction:
		if d.Member != nil && d.Member.User != nil {
			return d.Member.User.Username
		}
		if d.User != nil {
			return d.User.Username
		}
	}
	return ""
}
