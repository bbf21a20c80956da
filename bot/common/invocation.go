package common

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"
)

// CommandPrefix starts every chat command
const CommandPrefix = "!"

// Invocation is a chat command as received from the gateway
type Invocation struct {
	// CommandName is lower case without the prefix, e.g. "give"
	CommandName        string
	InvokerID          int64
	GuildID            int64
	ChannelID          string
	MessageID          string
	MentionedMemberIDs []int64

	// RawArgs is everything after the command name, trimmed
	RawArgs string
}

// ParseInvocation extracts a command from a message. It reports false for
// messages that are not commands.
func ParseInvocation(m *discordgo.MessageCreate) (Invocation, bool) {
	if m == nil || m.Message == nil || m.Author == nil {
		return Invocation{}, false
	}

	content := strings.TrimSpace(m.Content)
	if !strings.HasPrefix(content, CommandPrefix) {
		return Invocation{}, false
	}

	head, rest := FieldsN(strings.TrimPrefix(content, CommandPrefix), 2), ""
	if len(head) == 0 {
		return Invocation{}, false
	}
	if len(head) == 2 {
		rest = head[1]
	}

	inv := Invocation{
		CommandName: strings.ToLower(head[0]),
		InvokerID:   ParseSnowflake(m.Author.ID),
		GuildID:     ParseSnowflake(m.GuildID),
		ChannelID:   m.ChannelID,
		MessageID:   m.ID,
		RawArgs:     rest,
	}
	for _, user := range m.Mentions {
		if id := ParseSnowflake(user.ID); id != 0 {
			inv.MentionedMemberIDs = append(inv.MentionedMemberIDs, id)
		}
	}

	return inv, true
}

// Args splits RawArgs on whitespace
func (inv Invocation) Args() []string {
	return strings.Fields(inv.RawArgs)
}

// FirstMention returns the first mentioned member, if any
func (inv Invocation) FirstMention() (int64, bool) {
	if len(inv.MentionedMemberIDs) == 0 {
		return 0, false
	}
	return inv.MentionedMemberIDs[0], true
}

// FieldsN splits s on whitespace into at most n pieces; the last piece holds
// the trimmed remainder
func FieldsN(s string, n int) []string {
	var fields []string
	s = strings.TrimSpace(s)
	for s != "" && len(fields) < n-1 {
		end := strings.IndexFunc(s, unicode.IsSpace)
		if end < 0 {
			break
		}
		fields = append(fields, s[:end])
		s = strings.TrimSpace(s[end:])
	}
	if s != "" {
		fields = append(fields, s)
	}
	return fields
}

// ParseAmount parses a signed whole number of coin
func ParseAmount(s string) (int64, bool) {
	amount, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}

// ParseSnowflake converts a Discord ID to int64, returning 0 when invalid
func ParseSnowflake(id string) int64 {
	value, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return value
}

// Snowflake converts an int64 ID back to Discord's string form
func Snowflake(id int64) string {
	return strconv.FormatInt(id, 10)
}
