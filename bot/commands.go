package bot

import (
	"context"

	"cactuscoin/bot/common"
	"cactuscoin/bot/features/balance"
	"cactuscoin/bot/features/help"
	"cactuscoin/bot/features/rankings"
	"cactuscoin/bot/features/transfer"

	"github.com/bwmarrin/discordgo"
)

type handlerFunc func(ctx context.Context, s *discordgo.Session, inv common.Invocation)

type command struct {
	common.CommandInfo
	handle handlerFunc
}

// commandInfos lists every chat command in help order
var commandInfos = []common.CommandInfo{
	{Name: "help", Usage: "Usage: `!help` \n Outputs this list of commands."},
	{Name: "hello"},
	{Name: "verifycoin", Usage: "Usage: `!verifycoin [user1] [user2] [user3]` \n Updates the user's role with their current amount or the default starting amount of coin."},
	{Name: "give", Usage: "Usage: `!give [user] [amount]` \n Gives coin to a specific user, no strings attached."},
	{Name: "bet", Usage: "Usage: `!bet [user] [amount] [reason]` \n Starts a bet instance with another member, follow the button prompts to complete the bet."},
	{Name: "rankings", Usage: "Usage: `!rankings` \n Outputs power rankings for the server."},
	{Name: "wins", Usage: "Usage: `!wins [week|month|year]` \n Outputs the biggest gains of the period."},
	{Name: "losses", Usage: "Usage: `!losses [week|month|year]` \n Outputs the biggest losses of the period."},

	{Name: "adminhelp", Usage: "Usage: `!adminhelp` \n Outputs this list of commands.", Admin: true},
	{Name: "adminadjust", Usage: "Usage: `!adminadjust [user] [amount]` \n Adds/subtracts coin from user's wallet.", Admin: true},
	{Name: "clear", Usage: "Usage: `!clear [user]` \n Clears a user's wallet and transaction history.", Admin: true},
	{Name: "reset", Usage: "Usage: `!reset [user]` \n Resets a user's wallet to the default starting amount.", Admin: true},
	{Name: "balance", Usage: "Usage: `!balance [user]` \n Outputs a user's wallet amount stored in the database.", Admin: true},
}

func (b *Bot) buildCommands(balanceFeature *balance.Feature, transferFeature *transfer.Feature, rankingsFeature *rankings.Feature) map[string]command {
	helpFeature := help.New(commandInfos)

	handlers := map[string]handlerFunc{
		"help":        helpFeature.HandleCommand,
		"adminhelp":   helpFeature.HandleCommand,
		"hello":       helpFeature.HandleCommand,
		"verifycoin":  balanceFeature.HandleCommand,
		"adminadjust": balanceFeature.HandleCommand,
		"clear":       balanceFeature.HandleCommand,
		"reset":       balanceFeature.HandleCommand,
		"balance":     balanceFeature.HandleCommand,
		"give":        transferFeature.HandleCommand,
		"bet":         b.wagers.HandleCommand,
		"rankings":    rankingsFeature.HandleCommand,
		"wins":        rankingsFeature.HandleCommand,
		"losses":      rankingsFeature.HandleCommand,
	}

	commands := make(map[string]command, len(commandInfos))
	for _, info := range commandInfos {
		commands[info.Name] = command{CommandInfo: info, handle: handlers[info.Name]}
	}
	return commands
}

// memberCommandNames returns the commands offered as suggestions
func memberCommandNames() []string {
	names := make([]string, 0, len(commandInfos))
	for _, info := range commandInfos {
		if !info.Admin {
			names = append(names, info.Name)
		}
	}
	return names
}
