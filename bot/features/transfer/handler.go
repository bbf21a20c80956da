package transfer

import (
	"context"
	"fmt"

	"cactuscoin/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const usage = "Error parsing. Follow the format: !give @user ####"

func (f *Feature) handleGive(ctx context.Context, s *discordgo.Session, inv common.Invocation) {
	args := inv.Args()
	recipientID, mentioned := inv.FirstMention()
	if !mentioned || len(args) != 2 {
		common.Reply(s, inv, usage)
		return
	}
	amount, ok := common.ParseAmount(args[1])
	if !ok {
		common.Reply(s, inv, usage)
		return
	}

	switch {
	case recipientID == inv.InvokerID:
		common.Reply(s, inv, "Are you stupid or something?")
		return
	case amount < 0:
		common.Reply(s, inv, "Nice try")
		return
	}

	result, err := f.economy.Transfer(ctx, inv.GuildID, inv.InvokerID, recipientID, amount)
	if err != nil {
		common.ReplyWithError(s, inv, err)
		return
	}

	log.WithFields(log.Fields{
		"fromID": inv.InvokerID,
		"toID":   recipientID,
		"amount": amount,
	}).Info("Coin given")

	common.Reply(s, inv, fmt.Sprintf("✅ **%s** gave **%s** coin to **%s**.",
		common.GetDisplayNameInt64(s, inv.GuildID, inv.InvokerID),
		common.FormatBalance(result.Amount),
		common.GetDisplayNameInt64(s, inv.GuildID, recipientID)))
}
