package discord

import (
	"github.com/keshon/switchboard/internal/dispatch"
	"github.com/keshon/switchboard/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

func messageEvent(m *discordgo.Message, selfID string) dispatch.TextMessage {
	ev := dispatch.TextMessage{
		Origin: dispatch.Origin{
			GuildID:   m.GuildID,
			ChannelID: m.ChannelID,
			Data:      m,
		},
		MessageID: m.ID,
		Content:   m.Content,
		SelfID:    selfID,
	}
	if m.Author != nil {
		ev.AuthorID = m.Author.ID
		ev.AuthorIsBot = m.Author.Bot
	}
	return ev
}

// interactionEvent converts an interaction into a dispatch event. It reports
// false for interaction kinds the dispatcher does not handle.
func interactionEvent(i *discordgo.Interaction) (dispatch.Event, bool) {
	origin := dispatch.Origin{
		AuthorID:  interactionAuthor(i),
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Data:      i,
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		switch data.CommandType {
		case discordgo.ChatApplicationCommand:
			return dispatch.SlashCommand{
				Origin:  origin,
				Name:    data.Name,
				Options: flattenOptions(data.Options, data.Resolved),
			}, true

		case discordgo.UserApplicationCommand:
			ev := dispatch.ContextMenu{Origin: origin, Name: data.Name, Target: cmd.ContextTargetUser}
			if data.Resolved != nil {
				if u, ok := data.Resolved.Users[data.TargetID]; ok {
					ev.Subject = convertUser(u)
				}
			}
			return ev, true

		case discordgo.MessageApplicationCommand:
			ev := dispatch.ContextMenu{Origin: origin, Name: data.Name, Target: cmd.ContextTargetMessage}
			if data.Resolved != nil {
				if m, ok := data.Resolved.Messages[data.TargetID]; ok {
					ev.Subject = convertMessage(m)
				}
			}
			return ev, true
		}

	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		if data.ComponentType != discordgo.SelectMenuComponent {
			return nil, false
		}
		ev := dispatch.SelectContinuation{
			Origin:   origin,
			CustomID: data.CustomID,
			Values:   data.Values,
		}
		if i.Message != nil {
			ev.MessageID = i.Message.ID
		}
		return ev, true
	}

	return nil, false
}

func interactionAuthor(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// flattenOptions maps top-level slash options by name. User options become
// a *cmd.User when the user was resolved, the raw id otherwise.
func flattenOptions(opts []*discordgo.ApplicationCommandInteractionDataOption, resolved *discordgo.ApplicationCommandInteractionDataResolved) map[string]any {
	if len(opts) == 0 {
		return nil
	}
	out := make(map[string]any, len(opts))
	for _, o := range opts {
		switch o.Type {
		case discordgo.ApplicationCommandOptionString:
			out[o.Name] = o.StringValue()
		case discordgo.ApplicationCommandOptionInteger:
			out[o.Name] = o.IntValue()
		case discordgo.ApplicationCommandOptionBoolean:
			out[o.Name] = o.BoolValue()
		case discordgo.ApplicationCommandOptionUser:
			id, _ := o.Value.(string)
			if resolved != nil {
				if u, ok := resolved.Users[id]; ok {
					out[o.Name] = convertUser(u)
					continue
				}
			}
			out[o.Name] = id
		default:
			out[o.Name] = o.Value
		}
	}
	return out
}

func convertUser(u *discordgo.User) *cmd.User {
	if u == nil {
		return nil
	}
	return &cmd.User{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL(""),
		Bot:       u.Bot,
	}
}

func convertMessage(m *discordgo.Message) *cmd.TargetMessage {
	tm := &cmd.TargetMessage{ID: m.ID, ChannelID: m.ChannelID, Content: m.Content}
	if u := convertUser(m.Author); u != nil {
		tm.Author = *u
	}
	return tm
}

func toApplicationOptionType(t cmd.OptionType) discordgo.ApplicationCommandOptionType {
	switch t {
	case cmd.OptionInteger:
		return discordgo.ApplicationCommandOptionInteger
	case cmd.OptionBoolean:
		return discordgo.ApplicationCommandOptionBoolean
	case cmd.OptionUser:
		return discordgo.ApplicationCommandOptionUser
	default:
		return discordgo.ApplicationCommandOptionString
	}
}
