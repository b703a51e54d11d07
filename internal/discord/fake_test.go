package discord

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// fakeAPI records REST calls instead of sending them.
type fakeAPI struct {
	mu sync.Mutex

	sends     []*discordgo.MessageSend
	edits     []*discordgo.MessageEdit
	responses []*discordgo.InteractionResponse
	webEdits  []*discordgo.WebhookEdit
	followups []*discordgo.WebhookParams

	messages map[string]*discordgo.Message

	commands []*discordgo.ApplicationCommand
	created  []*discordgo.ApplicationCommand
	deleted  []string
	nextID   int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{messages: make(map[string]*discordgo.Message)}
}

func (f *fakeAPI) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, data)
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (f *fakeAPI) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.messages[messageID]; ok {
		return m, nil
	}
	return nil, &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
}

func (f *fakeAPI) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, m)
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

func (f *fakeAPI) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeAPI) InteractionResponseEdit(_ *discordgo.Interaction, newresp *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.webEdits = append(f.webEdits, newresp)
	return &discordgo.Message{}, nil
}

func (f *fakeAPI) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, data)
	return &discordgo.Message{}, nil
}

func (f *fakeAPI) ApplicationCommands(_, _ string, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*discordgo.ApplicationCommand(nil), f.commands...), nil
}

func (f *fakeAPI) ApplicationCommandCreate(_, _ string, c *discordgo.ApplicationCommand, _ ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	created := *c
	created.ID = strconv.Itoa(f.nextID)
	f.created = append(f.created, &created)

	for i, existing := range f.commands {
		if existing.Name == c.Name && existing.Type == c.Type {
			f.commands[i] = &created
			return &created, nil
		}
	}
	f.commands = append(f.commands, &created)
	return &created, nil
}

func (f *fakeAPI) ApplicationCommandDelete(_, _, cmdID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, cmdID)
	for i, c := range f.commands {
		if c.ID == cmdID {
			f.commands = append(f.commands[:i], f.commands[i+1:]...)
			break
		}
	}
	return nil
}

// memHashes is an in-memory HashStore.
type memHashes map[string]map[string]string

func (m memHashes) CommandHashes(guildID string) (map[string]string, error) {
	out := make(map[string]string)
	for k, v := range m[guildID] {
		out[k] = v
	}
	return out, nil
}

func (m memHashes) SetCommandHashes(guildID string, hashes map[string]string) error {
	m[guildID] = hashes
	return nil
}
