package common

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(content string, mentions ...string) *discordgo.MessageCreate {
	users := make([]*discordgo.User, len(mentions))
	for i, id := range mentions {
		users[i] = &discordgo.User{ID: id}
	}
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "900",
		ChannelID: "800",
		GuildID:   "700",
		Content:   content,
		Author:    &discordgo.User{ID: "100"},
		Mentions:  users,
	}}
}

func TestParseInvocation(t *testing.T) {
	inv, ok := ParseInvocation(message("!Bet <@200> 50 best of three darts", "200"))
	require.True(t, ok)

	assert.Equal(t, "bet", inv.CommandName)
	assert.Equal(t, int64(100), inv.InvokerID)
	assert.Equal(t, int64(700), inv.GuildID)
	assert.Equal(t, "800", inv.ChannelID)
	assert.Equal(t, []int64{200}, inv.MentionedMemberIDs)
	assert.Equal(t, "<@200> 50 best of three darts", inv.RawArgs)
	assert.Equal(t, []string{"<@200>", "50", "best", "of", "three", "darts"}, inv.Args())
}

func TestParseInvocation_NotACommand(t *testing.T) {
	for _, content := range []string{"hello there", "", "!", "!   "} {
		_, ok := ParseInvocation(message(content))
		assert.False(t, ok, content)
	}
}

func TestParseInvocation_NoArgs(t *testing.T) {
	inv, ok := ParseInvocation(message("!rankings"))
	require.True(t, ok)
	assert.Equal(t, "rankings", inv.CommandName)
	assert.Empty(t, inv.RawArgs)
	assert.Empty(t, inv.Args())

	_, found := inv.FirstMention()
	assert.False(t, found)
}

func TestFieldsN(t *testing.T) {
	assert.Equal(t, []string{"<@1>", "50", "loser buys  lunch"}, FieldsN("<@1> 50   loser buys  lunch ", 3))
	assert.Equal(t, []string{"<@1>", "50"}, FieldsN("<@1>  50", 3))
	assert.Equal(t, []string{"a b c"}, FieldsN("a b c", 1))
	assert.Empty(t, FieldsN("   ", 3))
}

func TestParseAmount(t *testing.T) {
	amount, ok := ParseAmount("-250")
	assert.True(t, ok)
	assert.Equal(t, int64(-250), amount)

	_, ok = ParseAmount("12abc")
	assert.False(t, ok)
	_, ok = ParseAmount("")
	assert.False(t, ok)
}
