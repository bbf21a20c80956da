package bot

import (
	"fmt"

	"cactuscoin/bot/common"

	"github.com/agnivade/levenshtein"
	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Invocation is a parsed chat command
type Invocation = common.Invocation

// maxSuggestionDistance bounds how different a typo may be from a known command
const maxSuggestionDistance = 2

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || (s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}
	if !b.inCommandChannel(s, m.ChannelID) {
		return
	}

	inv, ok := common.ParseInvocation(m)
	if !ok {
		return
	}

	cmd, known := b.commands[inv.CommandName]
	if !known || (cmd.Admin && !b.isAdmin(s, m)) {
		common.Reply(s, inv, unknownCommandReply(inv.CommandName))
		return
	}

	log.WithFields(log.Fields{
		"command":   inv.CommandName,
		"invokerID": inv.InvokerID,
		"mentions":  len(inv.MentionedMemberIDs),
	}).Debug("Dispatching command")

	cmd.handle(b.ctx, s, inv)
}

// inCommandChannel restricts the bot to the configured channel name
func (b *Bot) inCommandChannel(s *discordgo.Session, channelID string) bool {
	if b.config.ChannelName == "" {
		return true
	}

	channel, err := s.State.Channel(channelID)
	if err != nil {
		channel, err = s.Channel(channelID)
		if err != nil {
			log.WithFields(log.Fields{
				"channelID": channelID,
				"error":     err,
			}).Warn("Failed to resolve channel")
			return false
		}
	}
	return channel.Name == b.config.ChannelName
}

func (b *Bot) isAdmin(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	member := m.Member
	if member == nil {
		var err error
		member, err = common.GetMember(s, m.GuildID, m.Author.ID)
		if err != nil {
			return false
		}
	}
	return common.HasAnyRoleNamed(s, m.GuildID, member, b.config.AdminRoles)
}

func unknownCommandReply(name string) string {
	if suggestion, ok := suggestCommand(name, memberCommandNames()); ok {
		return fmt.Sprintf("Invalid command, did you mean `%s%s`?  Try `!help` for valid commands.", common.CommandPrefix, suggestion)
	}
	return "Invalid command. Try `!help` for valid commands."
}

// suggestCommand returns the closest known command within maxSuggestionDistance
func suggestCommand(name string, known []string) (string, bool) {
	best, bestDistance := "", maxSuggestionDistance+1
	for _, candidate := range known {
		if candidate == name {
			continue
		}
		if d := levenshtein.ComputeDistance(name, candidate); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best, best != ""
}
