package wagers

import (
	"fmt"
	"strings"

	"cactuscoin/bot/common"

	"github.com/bwmarrin/discordgo"
)

// Component actions encoded in button custom IDs
const (
	actionAccept  = "accept"
	actionDecline = "decline"
	actionWinner  = "winner"

	customIDPrefix = "wager_"
)

// BuildConfirmationComponents creates the accept/decline buttons shown to the counterparty
func BuildConfirmationComponents(wagerID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "✅ Accept",
					Style:    discordgo.SuccessButton,
					CustomID: fmt.Sprintf("wager_%s_%s", actionAccept, wagerID),
				},
				discordgo.Button{
					Label:    "❌ Decline",
					Style:    discordgo.DangerButton,
					CustomID: fmt.Sprintf("wager_%s_%s", actionDecline, wagerID),
				},
			},
		},
	}
}

// BuildWinnerComponents creates one button per party for picking the winner
func BuildWinnerComponents(wagerID string, proposerID int64, proposerName string, counterpartyID int64, counterpartyName string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    proposerName,
					Style:    discordgo.PrimaryButton,
					CustomID: fmt.Sprintf("wager_%s_%s_%d", actionWinner, wagerID, proposerID),
					Emoji: &discordgo.ComponentEmoji{
						Name: "🏆",
					},
				},
				discordgo.Button{
					Label:    counterpartyName,
					Style:    discordgo.PrimaryButton,
					CustomID: fmt.Sprintf("wager_%s_%s_%d", actionWinner, wagerID, counterpartyID),
					Emoji: &discordgo.ComponentEmoji{
						Name: "🏆",
					},
				},
			},
		},
	}
}

// componentID is a decoded button custom ID
type componentID struct {
	Action   string
	WagerID  string
	WinnerID int64
}

// parseComponentID decodes custom IDs built by this package. Wager IDs are
// UUIDs and never contain underscores.
func parseComponentID(customID string) (componentID, bool) {
	if !strings.HasPrefix(customID, customIDPrefix) {
		return componentID{}, false
	}
	parts := strings.Split(strings.TrimPrefix(customID, customIDPrefix), "_")

	switch {
	case len(parts) == 2 && (parts[0] == actionAccept || parts[0] == actionDecline):
		return componentID{Action: parts[0], WagerID: parts[1]}, parts[1] != ""
	case len(parts) == 3 && parts[0] == actionWinner:
		winnerID := common.ParseSnowflake(parts[2])
		return componentID{Action: actionWinner, WagerID: parts[1], WinnerID: winnerID}, parts[1] != "" && winnerID != 0
	}
	return componentID{}, false
}
