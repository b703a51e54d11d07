// Package discord adapts Discord gateway events to the dispatcher and
// renders replies back as embeds and components.
package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keshon/switchboard/internal/config"
	"github.com/keshon/switchboard/internal/dispatch"
	"github.com/keshon/switchboard/pkg/cmd"
	"github.com/keshon/switchboard/pkg/jobmgr"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Bot is a Discord bot
type Bot struct {
	cfg        *config.Config
	dg         *discordgo.Session
	dispatcher *dispatch.Dispatcher
	registry   *cmd.Registry
	sync       *syncer
	jobs       *jobmgr.Manager
	log        zerolog.Logger

	ctx context.Context
}

// NewBot prepares a session. Nothing connects until Run.
func NewBot(cfg *config.Config, d *dispatch.Dispatcher, reg *cmd.Registry, hashes HashStore, log zerolog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	return &Bot{
		cfg:        cfg,
		dg:         dg,
		dispatcher: d,
		registry:   reg,
		sync:       newSyncer(dg, hashes, log),
		jobs:       jobmgr.NewManager(log),
		log:        log,
		ctx:        context.Background(),
	}, nil
}

// Run opens the gateway connection and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx

	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onGuildCreate)
	b.dg.AddHandler(b.onMessageCreate)
	b.dg.AddHandler(b.onInteractionCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.log.Info().Msg("❎ Shutdown signal received. Cleaning up...")
	b.jobs.Wait()
	return nil
}

// Latency is the gateway heartbeat latency.
func (b *Bot) Latency() time.Duration {
	return b.dg.HeartbeatLatency()
}

// LookupUser fetches a user, from the state cache when possible.
func (b *Bot) LookupUser(ctx context.Context, userID string) (*cmd.User, error) {
	u, err := b.dg.User(userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", userID, err)
	}
	return convertUser(u), nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	for _, g := range r.Guilds {
		if b.leaveIfBlacklisted(s, g.ID) {
			continue
		}
		b.syncGuild(g.ID)
	}
	b.log.Info().Str("user", r.User.Username).Msg("✅ Discord bot is running")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.log.Info().Str("guild", g.ID).Str("name", g.Name).Msg("guild available")
	if b.leaveIfBlacklisted(s, g.ID) {
		return
	}
	b.syncGuild(g.ID)
}

func (b *Bot) leaveIfBlacklisted(s *discordgo.Session, guildID string) bool {
	if !b.cfg.IsGuildBlacklisted(guildID) {
		return false
	}
	b.log.Info().Str("guild", guildID).Msg("leaving blacklisted guild")
	if err := s.GuildLeave(guildID); err != nil {
		b.log.Error().Err(err).Str("guild", guildID).Msg("failed to leave guild")
	}
	return true
}

// syncGuild pushes command definitions to a guild in the background. Ready
// and the GuildCreate events that follow it both ask for the same guild, so
// a sync already in flight is not started twice.
func (b *Bot) syncGuild(guildID string) {
	if !b.cfg.InitSlashCommands {
		b.log.Debug().Str("guild", guildID).Msg("registering slash commands skipped")
		return
	}
	if b.dg.State == nil || b.dg.State.User == nil {
		return
	}
	appID := b.dg.State.User.ID
	defs := definitions(b.registry)

	err := b.jobs.Start(b.ctx, "sync:"+guildID, func(ctx context.Context) error {
		return b.sync.Sync(ctx, appID, guildID, defs)
	})
	if err != nil && !errors.Is(err, jobmgr.ErrRunning) {
		b.log.Error().Err(err).Str("guild", guildID).Msg("failed to start command sync")
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	selfID := ""
	if s.State != nil && s.State.User != nil {
		selfID = s.State.User.ID
	}
	if m.Author != nil && m.Author.ID == selfID {
		return
	}
	b.dispatcher.Dispatch(b.ctx, messageEvent(m.Message, selfID), newMessageSink(s, m.Message))
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ev, ok := interactionEvent(i.Interaction)
	if !ok {
		b.log.Debug().Int("type", int(i.Type)).Msg("unhandled interaction")
		return
	}
	b.dispatcher.Dispatch(b.ctx, ev, newInteractionSink(s, i.Interaction))
}
