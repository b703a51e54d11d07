package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/keshon/switchboard/internal/config"
	"github.com/keshon/switchboard/pkg/cmd"
)

// UserLookup fetches a user by id.
type UserLookup func(ctx context.Context, userID string) (*cmd.User, error)

var mentionIDs = []string{"<@!", "<@"}

// AvatarCommand shows a user's avatar. It works as a text command, a slash
// command with an optional user, and from the user and message context menus.
type AvatarCommand struct {
	Users UserLookup
}

func (c *AvatarCommand) Meta() cmd.Meta {
	return cmd.Meta{
		Name:        "avatar",
		Aliases:     []string{"av"},
		Description: "Shows the avatar of a user",
		Usage:       "{prefix}avatar [@user]",
		Category:    config.CategoryUtilities,
		Slash: &cmd.SlashSpec{
			Options: []cmd.Option{{
				Type:        cmd.OptionUser,
				Name:        "user",
				Description: "Whose avatar to show",
			}},
		},
		ContextUser: "Show Avatar",
		ContextChat: "Show Author Avatar",
	}
}

func (c *AvatarCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	user, err := c.subject(ctx, inv)
	if err != nil {
		return err
	}
	if user == nil {
		return inv.Send(ctx, &cmd.Reply{
			Style:       cmd.StyleError,
			Description: "User not found.",
			Ephemeral:   inv.IsInteraction(),
		}, cmd.ModeReply)
	}

	desc := fmt.Sprintf("Avatar of <@%s>", user.ID)
	if user.AvatarURL != "" {
		desc += "\n" + user.AvatarURL
	} else {
		desc += "\nNo avatar set."
	}
	return inv.Send(ctx, &cmd.Reply{
		Style:       cmd.StyleInfo,
		Title:       user.Username,
		Description: desc,
		Ephemeral:   inv.IsContextMenu(),
	}, cmd.ModeReply)
}

// subject picks whose avatar to show: the context-menu target, the "user"
// option, a mention or id argument, and finally the author.
func (c *AvatarCommand) subject(ctx context.Context, inv *cmd.Invocation) (*cmd.User, error) {
	switch t := inv.Target().(type) {
	case *cmd.User:
		return t, nil
	case *cmd.TargetMessage:
		u := t.Author
		return &u, nil
	}

	id := inv.AuthorID
	if v, ok := inv.Option("user"); ok {
		switch u := v.(type) {
		case *cmd.User:
			return u, nil
		case string:
			id = u
		}
	} else if len(inv.Args) > 0 {
		id = stripMention(inv.Args[0])
	}

	if c.Users == nil {
		return nil, errors.New("user lookup is not configured")
	}
	return c.Users(ctx, id)
}

func stripMention(s string) string {
	for _, p := range mentionIDs {
		if strings.HasPrefix(s, p) && strings.HasSuffix(s, ">") && len(s) > len(p)+1 {
			return s[len(p) : len(s)-1]
		}
	}
	return s
}
