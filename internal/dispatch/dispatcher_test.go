package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/keshon/switchboard/internal/resolver"
	"github.com/keshon/switchboard/internal/token"
	"github.com/keshon/switchboard/pkg/cmd"
	"github.com/keshon/switchboard/pkg/cmd/cmdtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	guild = "g1"
	dev   = "7"
)

type fixture struct {
	d    *Dispatcher
	help *cmdtest.Spy
	ban  *cmdtest.Spy
	menu *cmdtest.Spy
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		help: &cmdtest.Spy{M: cmd.Meta{Name: "help", Aliases: []string{"h"}, Category: "Info", Slash: &cmd.SlashSpec{}}},
		ban:  &cmdtest.Spy{M: cmd.Meta{Name: "ban", Category: "Admin", DevOnly: true, Slash: &cmd.SlashSpec{}}},
		menu: &cmdtest.Spy{M: cmd.Meta{Name: "avatar", Category: "Info", ContextUser: "Show Avatar"}},
	}
	r := cmd.NewRegistry()
	r.MustRegister(f.help, f.ban, f.menu)
	res := resolver.New(r, func(id string) bool { return id == dev })
	f.d = New(res, "!", opts...)
	return f
}

func text(author, content string) TextMessage {
	return TextMessage{
		Origin:    Origin{AuthorID: author, GuildID: guild, ChannelID: "c1"},
		MessageID: "m1",
		Content:   content,
		SelfID:    "999",
	}
}

func selectEvent(t *testing.T, actor string, tok token.Token, values ...string) SelectContinuation {
	t.Helper()
	id, err := token.Encode(tok)
	require.NoError(t, err)
	return SelectContinuation{
		Origin:    Origin{AuthorID: actor, GuildID: guild, ChannelID: "c1"},
		CustomID:  id,
		MessageID: "chooser",
		Values:    values,
	}
}

func TestText_WrongPrefix(t *testing.T) {
	f := newFixture(t, WithFallback("help"))
	rec := cmdtest.NewRecorder()

	f.d.Dispatch(context.Background(), text("1", "¡ban"), rec)

	assert.Empty(t, f.help.Calls)
	assert.Empty(t, f.ban.Calls)
	assert.Empty(t, rec.Sent)
}

func TestText_ExactNameAndAlias(t *testing.T) {
	f := newFixture(t)
	rec := cmdtest.NewRecorder()

	f.d.Dispatch(context.Background(), text("1", "!help ping"), rec)
	f.d.Dispatch(context.Background(), text("1", "!h  a   b"), rec)

	require.Len(t, f.help.Calls, 2)
	assert.Equal(t, []string{"ping"}, f.help.Calls[0].Args)
	assert.Equal(t, []string{"a", "b"}, f.help.Calls[1].Args)

	inv := f.help.Calls[0]
	assert.Equal(t, cmd.TriggerText, inv.Trigger)
	assert.Equal(t, "1", inv.AuthorID)
	assert.Equal(t, guild, inv.GuildID)
	assert.Equal(t, "m1", inv.MessageID)
	assert.Same(t, rec, inv.Reply)
}

func TestText_MissGoesToFallback(t *testing.T) {
	f := newFixture(t, WithFallback("help"))
	rec := cmdtest.NewRecorder()

	f.d.Dispatch(context.Background(), text("1", "!ban someone"), rec)
	require.Len(t, f.help.Calls, 1)
	assert.Equal(t, []string{"ban"}, f.help.Calls[0].Args)
	assert.Empty(t, f.ban.Calls)

	f.d.Dispatch(context.Background(), text(dev, "!ban someone"), rec)
	require.Len(t, f.ban.Calls, 1)
	assert.Equal(t, []string{"someone"}, f.ban.Calls[0].Args)
}

func TestText_MissWithoutFallback(t *testing.T) {
	f := newFixture(t)
	rec := cmdtest.NewRecorder()

	f.d.Dispatch(context.Background(), text("1", "!nothing"), rec)

	require.Len(t, rec.Sent, 1)
	assert.Equal(t, cmd.StyleError, rec.Last().Style)
	assert.Equal(t, MsgNoMatch, rec.Last().Description)
}

func TestText_IgnoresBotsDMsAndBarePrefix(t *testing.T) {
	f := newFixture(t, WithFallback("help"))
	rec := cmdtest.NewRecorder()

	fromBot := text("1", "!help")
	fromBot.AuthorIsBot = true
	dm := text("1", "!help")
	dm.GuildID = ""

	for _, ev := range []TextMessage{fromBot, dm, text("1", "!"), text("1", "!   ")} {
		f.d.Dispatch(context.Background(), ev, rec)
	}

	assert.Empty(t, f.help.Calls)
	assert.Empty(t, rec.Sent)
}

func TestText_MentionHint(t *testing.T) {
	f := newFixture(t)

	for _, content := range []string{"<@999>", "<@!999>"} {
		rec := cmdtest.NewRecorder()
		f.d.Dispatch(context.Background(), text("1", content), rec)
		require.Len(t, rec.Sent, 1, content)
		assert.Equal(t, cmd.ModeReply, rec.Sent[0].Mode)
		assert.True(t, strings.Contains(rec.Last().Description, "`!`"))
	}

	for _, content := range []string{"<@111>", "hey <@999>", "<@999> help"} {
		rec := cmdtest.NewRecorder()
		f.d.Dispatch(context.Background(), text("1", content), rec)
		assert.Empty(t, rec.Sent, content)
	}
}

func TestSlash(t *testing.T) {
	f := newFixture(t)
	rec := cmdtest.NewRecorder()
	origin := Origin{AuthorID: "1", GuildID: guild}

	f.d.Dispatch(context.Background(), SlashCommand{Origin: origin, Name: "help", Options: map[string]any{"command": "ping"}}, rec)
	require.Len(t, f.help.Calls, 1)
	inv := f.help.Calls[0]
	assert.Equal(t, cmd.TriggerSlash, inv.Trigger)
	assert.Empty(t, inv.Args)
	v, _ := inv.OptionString("command")
	assert.Equal(t, "ping", v)

	// Aliases are not slash names; unknown names are a silent no-op.
	f.d.Dispatch(context.Background(), SlashCommand{Origin: origin, Name: "h"}, rec)
	f.d.Dispatch(context.Background(), SlashCommand{Origin: origin, Name: "unknown"}, rec)
	assert.Len(t, f.help.Calls, 1)
	assert.Empty(t, rec.Sent)

	f.d.Dispatch(context.Background(), SlashCommand{Origin: origin, Name: "ban"}, rec)
	assert.Empty(t, f.ban.Calls)
	require.Len(t, rec.Sent, 1)
	assert.True(t, rec.Last().Ephemeral)
	assert.Equal(t, MsgNoMatch, rec.Last().Description)
}

func TestContextMenu(t *testing.T) {
	f := newFixture(t)
	rec := cmdtest.NewRecorder()
	origin := Origin{AuthorID: "1", GuildID: guild}

	f.d.Dispatch(context.Background(), ContextMenu{Origin: origin, Name: "Show Avatar", Target: cmd.ContextTargetMessage, Subject: "msg"}, rec)
	assert.Empty(t, f.menu.Calls)

	f.d.Dispatch(context.Background(), ContextMenu{Origin: origin, Name: "Show Avatar", Target: cmd.ContextTargetUser, Subject: "user"}, rec)
	require.Len(t, f.menu.Calls, 1)
	assert.Equal(t, cmd.TriggerContextMenu, f.menu.Calls[0].Trigger)
	assert.Equal(t, "user", f.menu.Calls[0].Target())
}

func TestSelect_AuthorContinues(t *testing.T) {
	f := newFixture(t)
	rec := cmdtest.NewRecorder()

	f.d.Dispatch(context.Background(), selectEvent(t, "42", token.Token{AuthorID: "42", CommandName: "help", Proceed: true}, "help"), rec)

	require.Len(t, f.help.Calls, 1)
	inv := f.help.Calls[0]
	assert.Equal(t, cmd.TriggerSelect, inv.Trigger)
	assert.Equal(t, []string{"help"}, inv.Additional[cmd.KeyValues])
	assert.Equal(t, "chooser", inv.MessageID)
	assert.Empty(t, rec.Sent)
}

func TestSelect_OtherUserRejected(t *testing.T) {
	f := newFixture(t)
	rec := cmdtest.NewRecorder()

	f.d.Dispatch(context.Background(), selectEvent(t, "99", token.Token{AuthorID: "42", CommandName: "help", Proceed: true}, "help"), rec)

	assert.Empty(t, f.help.Calls)
	require.Len(t, rec.Sent, 1)
	assert.True(t, rec.Last().Ephemeral)
	assert.Equal(t, MsgNotTheOwner, rec.Last().Description)
}

func TestSelect_NoProceedAndGarbage(t *testing.T) {
	f := newFixture(t)
	rec := cmdtest.NewRecorder()

	f.d.Dispatch(context.Background(), selectEvent(t, "42", token.Token{AuthorID: "42", CommandName: "help", Proceed: false}, "help"), rec)

	garbage := SelectContinuation{Origin: Origin{AuthorID: "42", GuildID: guild}, CustomID: "%%%", Values: []string{"help"}}
	f.d.Dispatch(context.Background(), garbage, rec)

	assert.Empty(t, f.help.Calls)
	assert.Empty(t, rec.Sent)
}

func TestSelect_HiddenTargetIsMiss(t *testing.T) {
	f := newFixture(t)
	rec := cmdtest.NewRecorder()

	f.d.Dispatch(context.Background(), selectEvent(t, "42", token.Token{AuthorID: "42", CommandName: "ban", Proceed: true}), rec)

	assert.Empty(t, f.ban.Calls)
	require.Len(t, rec.Sent, 1)
	assert.Equal(t, MsgNoMatch, rec.Last().Description)
}

func TestSelect_AliasIsMiss(t *testing.T) {
	f := newFixture(t)
	rec := cmdtest.NewRecorder()

	f.d.Dispatch(context.Background(), selectEvent(t, "42", token.Token{AuthorID: "42", CommandName: "h", Proceed: true}, "help"), rec)

	assert.Empty(t, f.help.Calls)
	require.Len(t, rec.Sent, 1)
	assert.Equal(t, MsgNoMatch, rec.Last().Description)
}

func TestRun_ErrorIsReported(t *testing.T) {
	f := newFixture(t)
	f.help.Err = errors.New("boom")

	rec := cmdtest.NewRecorder()
	f.d.Dispatch(context.Background(), text("1", "!help"), rec)
	require.Len(t, rec.Sent, 1)
	assert.Equal(t, cmd.ModeReply, rec.Sent[0].Mode)
	assert.Contains(t, rec.Last().Description, "boom")

	deferred := cmdtest.NewRecorder()
	require.NoError(t, deferred.Defer(context.Background(), false))
	f.d.Dispatch(context.Background(), SlashCommand{Origin: Origin{AuthorID: "1", GuildID: guild}, Name: "help"}, deferred)
	require.Len(t, deferred.Sent, 1)
	assert.Equal(t, cmd.ModeEditDeferred, deferred.Sent[0].Mode)
}

func TestRun_PanicAndSendFailureAreContained(t *testing.T) {
	r := cmd.NewRegistry()
	r.MustRegister(&cmd.Func{
		M:  cmd.Meta{Name: "explode"},
		Fn: func(context.Context, *cmd.Invocation) error { panic("kaboom") },
	})
	d := New(resolver.New(r, nil), "!")

	rec := cmdtest.NewRecorder()
	rec.SendErr = errors.New("transport down")

	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), text("1", "!explode"), rec)
		d.Dispatch(context.Background(), text("1", "!missing"), rec)
		d.Dispatch(context.Background(), text("1", "<@999>"), rec)
	})
}
