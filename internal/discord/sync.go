package discord

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/keshon/switchboard/pkg/cmd"
	"github.com/keshon/switchboard/pkg/retrylimit"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Discord allows at most 100 characters in a command or option description.
const maxDescription = 100

// commandAPI is the part of *discordgo.Session used to sync commands.
type commandAPI interface {
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandCreate(appID, guildID string, c *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID, guildID, cmdID string, options ...discordgo.RequestOption) error
}

// HashStore keeps the hashes of the definitions last pushed to a guild.
type HashStore interface {
	CommandHashes(guildID string) (map[string]string, error)
	SetCommandHashes(guildID string, hashes map[string]string) error
}

// syncer pushes slash and context-menu definitions to a guild, touching only
// what changed since the last run.
type syncer struct {
	api     commandAPI
	store   HashStore
	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.Config
	log     zerolog.Logger
}

func newSyncer(api commandAPI, store HashStore, log zerolog.Logger) *syncer {
	return &syncer{
		api:     api,
		store:   store,
		limiter: retrylimit.NewAdaptiveLimiter(40, 1, 40, 1, 0.5),
		retry:   retrylimit.Config{Status: restStatus, Log: log},
		log:     log,
	}
}

// restStatus is the HTTP status of a failed Discord REST call, or 0.
func restStatus(err error) int {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		return rest.Response.StatusCode
	}
	return 0
}

// definitions builds the platform definitions of every command that has a
// slash form or a context-menu binding.
func definitions(reg *cmd.Registry) []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range reg.All() {
		m := c.Meta()

		if name := m.SlashName(); name != "" {
			def := &discordgo.ApplicationCommand{
				Type:        discordgo.ChatApplicationCommand,
				Name:        name,
				Description: describe(m.Description),
			}
			for _, o := range m.Slash.Options {
				def.Options = append(def.Options, &discordgo.ApplicationCommandOption{
					Type:        toApplicationOptionType(o.Type),
					Name:        o.Name,
					Description: describe(o.Description),
					Required:    o.Required,
				})
			}
			defs = append(defs, def)
		}
		if m.ContextUser != "" {
			defs = append(defs, &discordgo.ApplicationCommand{
				Type: discordgo.UserApplicationCommand,
				Name: m.ContextUser,
			})
		}
		if m.ContextChat != "" {
			defs = append(defs, &discordgo.ApplicationCommand{
				Type: discordgo.MessageApplicationCommand,
				Name: m.ContextChat,
			})
		}
	}
	return defs
}

func describe(s string) string {
	if s == "" {
		return "No description."
	}
	if utf8.RuneCountInString(s) <= maxDescription {
		return s
	}
	r := []rune(s)
	return string(r[:maxDescription-3]) + "..."
}

// Sync creates the definitions whose hash changed or that are missing from
// the guild, and deletes the guild commands no longer defined.
func (s *syncer) Sync(ctx context.Context, appID, guildID string, wanted []*discordgo.ApplicationCommand) error {
	existing, err := s.api.ApplicationCommands(appID, guildID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to list commands: %w", err)
	}

	stored, err := s.store.CommandHashes(guildID)
	if err != nil {
		return fmt.Errorf("failed to load command hashes: %w", err)
	}

	wantedHashes := make(map[string]string, len(wanted))
	for _, def := range wanted {
		wantedHashes[commandKey(def)] = hashCommand(def)
	}

	remote := make(map[string]bool, len(existing))
	for _, old := range existing {
		key := commandKey(old)
		if _, ok := wantedHashes[key]; ok {
			remote[key] = true
			continue
		}
		s.log.Info().Str("guild", guildID).Str("command", old.Name).Msg("deleting obsolete command")
		err := retrylimit.Do(ctx, s.limiter, s.retry, func() error {
			return s.api.ApplicationCommandDelete(appID, guildID, old.ID, discordgo.WithContext(ctx))
		})
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			s.log.Error().Err(err).Str("guild", guildID).Str("command", old.Name).Msg("failed to delete command")
		}
	}

	hashes := make(map[string]string, len(wanted))
	var changed int
	for _, def := range wanted {
		key := commandKey(def)
		if stored[key] == wantedHashes[key] && remote[key] {
			hashes[key] = stored[key]
			continue
		}
		err := retrylimit.Do(ctx, s.limiter, s.retry, func() error {
			_, err := s.api.ApplicationCommandCreate(appID, guildID, def, discordgo.WithContext(ctx))
			return err
		})
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			s.log.Error().Err(err).Str("guild", guildID).Str("command", def.Name).Msg("can't create command")
			continue
		}
		hashes[key] = wantedHashes[key]
		changed++
	}

	if changed > 0 {
		s.log.Info().Str("guild", guildID).Int("count", changed).Msg("commands updated")
	}
	return s.store.SetCommandHashes(guildID, hashes)
}
