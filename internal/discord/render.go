package discord

import (
	"github.com/keshon/switchboard/pkg/cmd"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"
)

const (
	EmbedColor = 0xb01e66
	ErrorColor = 0xd7263d
)

// renderEmbed turns a reply into an embed, or nil when the reply carries no
// embed content at all (a chooser-only edit).
func renderEmbed(r *cmd.Reply) *discordgo.MessageEmbed {
	if r.Author == "" && r.Title == "" && r.Description == "" && len(r.Fields) == 0 && r.Footer == "" {
		return nil
	}

	color := EmbedColor
	if r.Style == cmd.StyleError {
		color = ErrorColor
	}

	e := embed.NewEmbed().SetColor(color)
	if r.Author != "" {
		e = e.SetAuthor(r.Author)
	}
	if r.Title != "" {
		e = e.SetTitle(r.Title)
	}
	if r.Description != "" {
		e = e.SetDescription(r.Description)
	}
	for _, f := range r.Fields {
		e = e.AddField(f.Name, f.Value)
		e.Fields[len(e.Fields)-1].Inline = f.Inline
	}
	if r.Footer != "" {
		e = e.SetFooter(r.Footer)
	}
	return e.Truncate().MessageEmbed
}

// renderComponents turns the reply's chooser into a single action row with a
// string select menu.
func renderComponents(r *cmd.Reply) []discordgo.MessageComponent {
	if r.Chooser == nil {
		return []discordgo.MessageComponent{}
	}
	ch := r.Chooser

	options := make([]discordgo.SelectMenuOption, 0, len(ch.Options))
	for _, o := range ch.Options {
		opt := discordgo.SelectMenuOption{
			Label:       o.Label,
			Value:       o.Value,
			Description: o.Description,
		}
		if o.Emoji != "" {
			opt.Emoji = &discordgo.ComponentEmoji{Name: o.Emoji}
		}
		options = append(options, opt)
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.StringSelectMenu,
					CustomID:    ch.CustomID,
					Placeholder: ch.Placeholder,
					Options:     options,
					Disabled:    ch.Disabled,
				},
			},
		},
	}
}

func embeds(r *cmd.Reply) []*discordgo.MessageEmbed {
	if e := renderEmbed(r); e != nil {
		return []*discordgo.MessageEmbed{e}
	}
	return nil
}
