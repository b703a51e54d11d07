package discord

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/keshon/switchboard/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// restClient is the part of *discordgo.Session the reply sinks use.
type restClient interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// messageSink replies to a plain channel message. Messages cannot be deferred
// or made ephemeral, so every send is a new reply referencing the trigger.
type messageSink struct {
	api       restClient
	channelID string
	messageID string
}

func newMessageSink(api restClient, m *discordgo.Message) *messageSink {
	return &messageSink{api: api, channelID: m.ChannelID, messageID: m.ID}
}

func (s *messageSink) Send(ctx context.Context, r *cmd.Reply, _ cmd.SendMode) error {
	data := &discordgo.MessageSend{
		Embeds:     embeds(r),
		Components: renderComponents(r),
	}
	if s.messageID != "" {
		data.Reference = &discordgo.MessageReference{MessageID: s.messageID, ChannelID: s.channelID}
	}
	_, err := s.api.ChannelMessageSendComplex(s.channelID, data, discordgo.WithContext(ctx))
	return err
}

func (s *messageSink) Defer(context.Context, bool) error { return nil }

func (s *messageSink) Deferred() bool { return false }

func (s *messageSink) FetchMessage(ctx context.Context, id string) (*cmd.Message, error) {
	return fetchMessage(ctx, s.api, s.channelID, id)
}

func (s *messageSink) EditMessage(ctx context.Context, id string, r *cmd.Reply) error {
	return editMessage(ctx, s.api, s.channelID, id, r)
}

// interactionSink replies to an interaction. The first reply answers the
// interaction; later ones become followups.
type interactionSink struct {
	api restClient
	i   *discordgo.Interaction

	mu        sync.Mutex
	deferred  bool
	responded bool
}

func newInteractionSink(api restClient, i *discordgo.Interaction) *interactionSink {
	return &interactionSink{api: api, i: i}
}

func (s *interactionSink) Defer(ctx context.Context, ephemeral bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.responded {
		return nil
	}

	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}
	if ephemeral {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	if err := s.api.InteractionRespond(s.i, resp, discordgo.WithContext(ctx)); err != nil {
		return err
	}
	s.deferred = true
	s.responded = true
	return nil
}

func (s *interactionSink) Deferred() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deferred
}

func (s *interactionSink) Send(ctx context.Context, r *cmd.Reply, mode cmd.SendMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	em := embeds(r)
	components := renderComponents(r)

	switch {
	case mode == cmd.ModeEditDeferred && s.deferred:
		_, err := s.api.InteractionResponseEdit(s.i, &discordgo.WebhookEdit{
			Embeds:     &em,
			Components: &components,
		}, discordgo.WithContext(ctx))
		return err

	case s.responded:
		params := &discordgo.WebhookParams{Embeds: em, Components: components}
		if r.Ephemeral {
			params.Flags = discordgo.MessageFlagsEphemeral
		}
		_, err := s.api.FollowupMessageCreate(s.i, true, params, discordgo.WithContext(ctx))
		return err

	default:
		data := &discordgo.InteractionResponseData{Embeds: em, Components: components}
		if r.Ephemeral {
			data.Flags = discordgo.MessageFlagsEphemeral
		}
		err := s.api.InteractionRespond(s.i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: data,
		}, discordgo.WithContext(ctx))
		if err == nil {
			s.responded = true
		}
		return err
	}
}

func (s *interactionSink) FetchMessage(ctx context.Context, id string) (*cmd.Message, error) {
	return fetchMessage(ctx, s.api, s.i.ChannelID, id)
}

func (s *interactionSink) EditMessage(ctx context.Context, id string, r *cmd.Reply) error {
	return editMessage(ctx, s.api, s.i.ChannelID, id, r)
}

func fetchMessage(ctx context.Context, api restClient, channelID, id string) (*cmd.Message, error) {
	m, err := api.ChannelMessage(channelID, id, discordgo.WithContext(ctx))
	if err != nil {
		var rest *discordgo.RESTError
		if errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &cmd.Message{ID: m.ID, ChannelID: m.ChannelID}, nil
}

// editMessage replaces the components of a message, and its embed when the
// reply has embed content.
func editMessage(ctx context.Context, api restClient, channelID, id string, r *cmd.Reply) error {
	components := renderComponents(r)
	edit := &discordgo.MessageEdit{
		ID:         id,
		Channel:    channelID,
		Components: &components,
	}
	if em := embeds(r); em != nil {
		edit.Embeds = &em
	}
	_, err := api.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx))
	return err
}
