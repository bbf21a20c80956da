package wagers

import (
	"fmt"

	"cactuscoin/bot/common"
)

const (
	usageMessage    = "Error parsing. Follow the format: !bet @user #### reason here"
	selfWagerReply  = "Are you stupid or something?"
	negativeReply   = "Nice try"
	unresolvedReply = "Something went wrong or the bet timed out."
)

func confirmationPrompt(counterpartyID int64) string {
	return fmt.Sprintf("%s do you accept the bet?", common.Mention(counterpartyID))
}

func declinedMessage(counterpartyName string) string {
	return fmt.Sprintf("%s has declined the bet.", counterpartyName)
}

func acceptedMessage(counterpartyName string) string {
	return fmt.Sprintf("%s has accepted the bet. After the bet is over, pick a winner below:", counterpartyName)
}

func settledMessage(winnerName, loserName string, amount int64, reason string) string {
	return fmt.Sprintf("%s won the $%s bet against %s for \"%s\"!", winnerName, common.FormatBalance(amount), loserName, reason)
}
