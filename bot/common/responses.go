package common

import (
	"bytes"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Reply answers the invoking message
func Reply(s *discordgo.Session, inv Invocation, content string) {
	_, err := s.ChannelMessageSendReply(inv.ChannelID, content, &discordgo.MessageReference{
		MessageID: inv.MessageID,
		ChannelID: inv.ChannelID,
		GuildID:   Snowflake(inv.GuildID),
	})
	if err != nil {
		log.WithFields(log.Fields{
			"channelID": inv.ChannelID,
			"command":   inv.CommandName,
			"error":     err,
		}).Error("Error sending reply")
	}
}

// SendEmbed posts an embed to the invocation's channel
func SendEmbed(s *discordgo.Session, inv Invocation, embed *discordgo.MessageEmbed) {
	if _, err := s.ChannelMessageSendEmbed(inv.ChannelID, embed); err != nil {
		log.WithFields(log.Fields{
			"channelID": inv.ChannelID,
			"command":   inv.CommandName,
			"error":     err,
		}).Error("Error sending embed")
	}
}

// SendPNG posts content with a PNG attachment
func SendPNG(s *discordgo.Session, inv Invocation, content, filename string, data []byte) {
	_, err := s.ChannelMessageSendComplex(inv.ChannelID, &discordgo.MessageSend{
		Content: content,
		Files: []*discordgo.File{{
			Name:        filename,
			ContentType: "image/png",
			Reader:      bytes.NewReader(data),
		}},
	})
	if err != nil {
		log.WithFields(log.Fields{
			"channelID": inv.ChannelID,
			"filename":  filename,
			"error":     err,
		}).Error("Error sending image")
	}
}

// AcknowledgeComponent acknowledges a button press without changing the message
func AcknowledgeComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		log.Errorf("Error acknowledging component interaction: %v", err)
	}
}

// RespondEphemeral answers an interaction with a message only the actor sees
func RespondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending ephemeral response: %v", err)
	}
}

// InteractionUserID returns the acting user for guild and DM interactions
func InteractionUserID(i *discordgo.InteractionCreate) int64 {
	if i.Member != nil && i.Member.User != nil {
		return ParseSnowflake(i.Member.User.ID)
	}
	if i.User != nil {
		return ParseSnowflake(i.User.ID)
	}
	return 0
}
