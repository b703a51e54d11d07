package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/keshon/switchboard/internal/config"
	"github.com/keshon/switchboard/internal/version"
	"github.com/keshon/switchboard/pkg/cmd"
)

type AboutCommand struct{}

func (c *AboutCommand) Meta() cmd.Meta {
	return cmd.Meta{
		Name:        "about",
		Aliases:     []string{"info"},
		Description: "Discover the origin of this bot",
		Usage:       "{prefix}about",
		Category:    config.CategoryInformation,
		Slash:       &cmd.SlashSpec{},
	}
}

func (c *AboutCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	return inv.Send(ctx, aboutReply(inv.IsInteraction()), cmd.ModeReply)
}

func aboutReply(ephemeral bool) *cmd.Reply {
	buildDate := "unknown"
	if version.BuildDate != "" {
		if t, err := time.Parse(time.RFC3339, version.BuildDate); err == nil {
			buildDate = t.Format("2006-01-02")
		} else {
			buildDate = "invalid date"
		}
	}

	goVer := "unknown"
	if version.GoVersion != "" {
		goVer = strings.TrimPrefix(version.GoVersion, "go")
	}

	return &cmd.Reply{
		Style:       cmd.StyleInfo,
		Description: fmt.Sprintf("ℹ️ **About %s**\n\n%s", version.AppName, version.AppDescription),
		Fields: []cmd.Field{
			{Name: "Repository", Value: version.Repository},
			{Name: "Release", Value: fmt.Sprintf("%s (Go %s, rev %s)", buildDate, goVer, version.Short())},
		},
		Ephemeral: ephemeral,
	}
}
