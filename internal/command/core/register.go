// Package core holds the built-in commands.
package core

import (
	"time"

	"github.com/keshon/switchboard/internal/resolver"
	"github.com/keshon/switchboard/pkg/cmd"

	"github.com/rs/zerolog"
)

// Deps are what the built-in commands need from the running bot.
type Deps struct {
	Resolver *resolver.Resolver
	Prefix   string
	Log      zerolog.Logger
	Latency  func() time.Duration
	Users    UserLookup
	// History enables the history command when set.
	History HistoryReader
}

// Register adds the built-in commands to the resolver's registry, each
// wrapped in mws.
func Register(d Deps, mws ...cmd.Middleware) error {
	commands := []cmd.Command{
		&HelpCommand{Resolver: d.Resolver, Prefix: d.Prefix, Log: d.Log},
		&AboutCommand{},
		&PingCommand{Latency: d.Latency},
		&AvatarCommand{Users: d.Users},
	}
	if d.History != nil {
		commands = append(commands, &HistoryCommand{Store: d.History})
	}

	reg := d.Resolver.Registry()
	for _, c := range commands {
		if err := reg.Register(cmd.Apply(c, mws...)); err != nil {
			return err
		}
	}
	return nil
}
