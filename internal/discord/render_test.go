package discord

import (
	"testing"

	"github.com/keshon/switchboard/pkg/cmd"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmbed(t *testing.T) {
	e := renderEmbed(&cmd.Reply{
		Style:       cmd.StyleError,
		Author:      "Switchboard",
		Description: "nope",
		Fields:      []cmd.Field{{Name: "a", Value: "1"}, {Name: "b", Value: "2", Inline: true}},
		Footer:      "foot",
	})
	require.NotNil(t, e)
	assert.Equal(t, ErrorColor, e.Color)
	assert.Equal(t, "nope", e.Description)
	require.NotNil(t, e.Author)
	assert.Equal(t, "Switchboard", e.Author.Name)
	require.Len(t, e.Fields, 2)
	assert.False(t, e.Fields[0].Inline)
	assert.True(t, e.Fields[1].Inline)
	require.NotNil(t, e.Footer)
	assert.Equal(t, "foot", e.Footer.Text)
}

func TestRenderEmbedEmpty(t *testing.T) {
	assert.Nil(t, renderEmbed(&cmd.Reply{Chooser: &cmd.Chooser{}}))
	assert.Nil(t, embeds(&cmd.Reply{}))
}

func TestRenderComponents(t *testing.T) {
	assert.Empty(t, renderComponents(cmd.Info("x")))

	components := renderComponents(&cmd.Reply{Chooser: &cmd.Chooser{
		CustomID:    "abc",
		Placeholder: "pick",
		Disabled:    true,
		Options: []cmd.Choice{
			{Emoji: "1️⃣", Label: "ping", Description: "Check bot latency", Value: "ping"},
			{Label: "plain", Value: "plain"},
		},
	}})
	require.Len(t, components, 1)

	row, ok := components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 1)

	menu, ok := row.Components[0].(discordgo.SelectMenu)
	require.True(t, ok)
	assert.Equal(t, discordgo.StringSelectMenu, menu.MenuType)
	assert.Equal(t, "abc", menu.CustomID)
	assert.Equal(t, "pick", menu.Placeholder)
	assert.True(t, menu.Disabled)

	require.Len(t, menu.Options, 2)
	require.NotNil(t, menu.Options[0].Emoji)
	assert.Equal(t, "1️⃣", menu.Options[0].Emoji.Name)
	assert.Equal(t, "ping", menu.Options[0].Value)
	assert.Nil(t, menu.Options[1].Emoji)
}
