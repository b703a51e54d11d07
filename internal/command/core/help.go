package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/switchboard/internal/config"
	"github.com/keshon/switchboard/internal/dispatch"
	"github.com/keshon/switchboard/internal/resolver"
	"github.com/keshon/switchboard/internal/token"
	"github.com/keshon/switchboard/internal/version"
	"github.com/keshon/switchboard/pkg/cmd"

	"github.com/rs/zerolog"
)

const (
	msgDidYouMean = "Couldn't find any matching command name, did you mean this?"
	placeholder   = "Please select the command"
)

// HelpCommand lists commands or describes one. When the query matches no
// command exactly it offers near matches in a chooser that only the asking
// user can use.
type HelpCommand struct {
	Resolver *resolver.Resolver
	Prefix   string
	Log      zerolog.Logger
}

func (c *HelpCommand) Meta() cmd.Meta {
	return cmd.Meta{
		Name:        "help",
		Aliases:     []string{"h", "command", "commands", "cmd", "cmds"},
		Description: "Shows the command list or information for a specific command.",
		Usage:       "{prefix}help [command]",
		Category:    config.CategoryInformation,
		Slash: &cmd.SlashSpec{
			Options: []cmd.Option{{
				Type:        cmd.OptionString,
				Name:        "command",
				Description: "Command name to view a specific information about the command",
			}},
		},
	}
}

func (c *HelpCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	if inv.IsInteraction() && !inv.Deferred() {
		if err := inv.Defer(ctx, false); err != nil {
			c.Log.Error().Err(err).Msg("failed to defer help reply")
		}
	}

	privileged := c.Resolver.Privileged(inv.AuthorID)

	query, ok := helpQuery(inv)
	if !ok {
		c.send(ctx, inv, c.listing(privileged))
		return nil
	}

	// ResolveExact covers both steps: the name first, then the alias table.
	command, found := c.Resolver.ResolveExact(query, privileged)
	if !found {
		matching := c.Resolver.ResolveFuzzy(query, privileged)
		if len(matching) == 0 {
			c.send(ctx, inv, cmd.Error(dispatch.MsgNoMatch))
			return nil
		}

		chooser, err := c.chooser(inv.AuthorID, matching, false)
		if err != nil {
			return err
		}
		reply := cmd.Error(msgDidYouMean)
		reply.Chooser = chooser
		c.send(ctx, inv, reply)
		return nil
	}

	if inv.IsSelect() {
		c.disableChooser(ctx, inv, query, privileged)
	}

	c.send(ctx, inv, c.detail(command.Meta()))
	return nil
}

// helpQuery picks the query from, in order: the first argument, the
// "command" option, the first chosen value.
func helpQuery(inv *cmd.Invocation) (string, bool) {
	if len(inv.Args) > 0 {
		return inv.Args[0], true
	}
	if s, ok := inv.OptionString("command"); ok {
		return s, true
	}
	if v := inv.Values(); len(v) > 0 {
		return v[0], true
	}
	return "", false
}

func (c *HelpCommand) listing(privileged bool) *cmd.Reply {
	reg := c.Resolver.Registry()
	reply := &cmd.Reply{
		Style:  cmd.StyleInfo,
		Author: version.AppName + " - Command List",
		Footer: fmt.Sprintf("%shelp <command> to get more information for a specific command.", c.Prefix),
	}

	for _, cat := range reg.Categories() {
		if cat.Hidden && !privileged {
			continue
		}

		var names []string
		for _, name := range cat.Commands {
			command := reg.Get(name)
			if command == nil || !resolver.Visible(command.Meta(), privileged) {
				continue
			}
			names = append(names, "`"+name+"`")
		}
		if len(names) == 0 {
			continue
		}

		reply.Fields = append(reply.Fields, cmd.Field{
			Name:  "**" + cat.Name + "**",
			Value: strings.Join(names, ", "),
		})
	}
	return reply
}

func (c *HelpCommand) detail(m cmd.Meta) *cmd.Reply {
	aliases := "None"
	if len(m.Aliases) > 0 {
		quoted := make([]string, len(m.Aliases))
		for i, a := range m.Aliases {
			quoted[i] = "**`" + a + "`**"
		}
		aliases = strings.Join(quoted, ", ")
	}

	description := m.Description
	if description == "" {
		description = "No description."
	}

	footer := "<> = required | [] = optional"
	if m.DevOnly {
		footer += " (developer-only command)"
	}

	return &cmd.Reply{
		Style:  cmd.StyleInfo,
		Author: fmt.Sprintf("%s - Information about %s command", version.AppName, m.Name),
		Fields: []cmd.Field{
			{Name: "Name", Value: "**`" + m.Name + "`**"},
			{Name: "Description", Value: description, Inline: true},
			{Name: "Aliases", Value: aliases},
			{Name: "Usage", Value: "**`" + strings.ReplaceAll(m.Usage, "{prefix}", c.Prefix) + "`**", Inline: true},
		},
		Footer: footer,
	}
}

func (c *HelpCommand) chooser(authorID string, options []cmd.Choice, disabled bool) (*cmd.Chooser, error) {
	// A disabled chooser carries a token that can no longer proceed.
	id, err := token.Encode(token.Token{
		AuthorID:    authorID,
		CommandName: c.Meta().Name,
		Proceed:     !disabled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode continuation token: %w", err)
	}
	return &cmd.Chooser{
		CustomID:    id,
		Placeholder: placeholder,
		Options:     options,
		Disabled:    disabled,
	}, nil
}

// disableChooser re-renders the chooser the selection came from as disabled.
// Failures only get logged.
func (c *HelpCommand) disableChooser(ctx context.Context, inv *cmd.Invocation, query string, privileged bool) {
	if inv.MessageID == "" || inv.Reply == nil {
		return
	}
	matching := c.Resolver.ResolveFuzzy(query, privileged)
	if len(matching) == 0 {
		return
	}

	msg, err := inv.Reply.FetchMessage(ctx, inv.MessageID)
	if err != nil || msg == nil {
		c.Log.Debug().Err(err).Str("message", inv.MessageID).Msg("chooser message not available")
		return
	}

	chooser, err := c.chooser(inv.AuthorID, matching, true)
	if err != nil {
		c.Log.Debug().Err(err).Msg("failed to build disabled chooser")
		return
	}
	if err := inv.Reply.EditMessage(ctx, msg.ID, &cmd.Reply{Chooser: chooser}); err != nil {
		c.Log.Debug().Err(err).Str("message", msg.ID).Msg("failed to disable chooser")
	}
}

func (c *HelpCommand) send(ctx context.Context, inv *cmd.Invocation, r *cmd.Reply) {
	mode := cmd.ModeReply
	if inv.Deferred() {
		mode = cmd.ModeEditDeferred
	}
	if err := inv.Send(ctx, r, mode); err != nil {
		c.Log.Error().Err(err).Msg("failed to send help reply")
	}
}
