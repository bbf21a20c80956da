package balance

import (
	"context"
	"fmt"
	"strings"

	"cactuscoin/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleVerify(ctx context.Context, s *discordgo.Session, inv common.Invocation) {
	if len(inv.MentionedMemberIDs) == 0 {
		common.Reply(s, inv, "No mentions found. Follow the format: !verifycoin @user1 @user2 ...")
		return
	}

	names := make([]string, 0, len(inv.MentionedMemberIDs))
	for _, memberID := range inv.MentionedMemberIDs {
		if _, err := f.economy.VerifyBalance(ctx, inv.GuildID, memberID, f.defaultCoin); err != nil {
			common.ReplyWithError(s, inv, err)
			return
		}
		names = append(names, common.GetDisplayNameInt64(s, inv.GuildID, memberID))
	}

	common.Reply(s, inv, "Verified coin for: "+strings.Join(names, ", "))
}

func (f *Feature) handleAdjust(ctx context.Context, s *discordgo.Session, inv common.Invocation) {
	args := inv.Args()
	memberID, mentioned := inv.FirstMention()
	delta, parsed := int64(0), false
	if len(args) == 2 {
		delta, parsed = common.ParseAmount(args[1])
	}
	if !mentioned || !parsed {
		common.Reply(s, inv, "Error parsing. Follow the format: !adminadjust @user ####")
		return
	}

	coin, err := f.economy.AdjustBalance(ctx, inv.GuildID, memberID, delta, true)
	if err != nil {
		common.ReplyWithError(s, inv, err)
		return
	}

	log.WithFields(log.Fields{
		"adminID":  inv.InvokerID,
		"memberID": memberID,
		"delta":    delta,
	}).Info("Admin adjusted balance")

	common.Reply(s, inv, fmt.Sprintf("Adjusted %s's balance by %s. New balance: %s.",
		common.GetDisplayNameInt64(s, inv.GuildID, memberID),
		common.FormatSignedBalance(delta),
		common.FormatBalance(coin)))
}

func (f *Feature) handleClear(ctx context.Context, s *discordgo.Session, inv common.Invocation) {
	memberID, ok := inv.FirstMention()
	if !ok {
		common.Reply(s, inv, "Error parsing. Follow the format: !clear @user")
		return
	}

	if err := f.economy.ClearBalance(ctx, inv.GuildID, memberID); err != nil {
		common.ReplyWithError(s, inv, err)
		return
	}

	common.Reply(s, inv, fmt.Sprintf("Cleared %s's balance and history.",
		common.GetDisplayNameInt64(s, inv.GuildID, memberID)))
}

func (f *Feature) handleReset(ctx context.Context, s *discordgo.Session, inv common.Invocation) {
	memberID, ok := inv.FirstMention()
	if !ok {
		common.Reply(s, inv, "Error parsing. Follow the format: !reset @user")
		return
	}

	coin, err := f.economy.ResetBalance(ctx, inv.GuildID, memberID, f.defaultCoin)
	if err != nil {
		common.ReplyWithError(s, inv, err)
		return
	}

	common.Reply(s, inv, fmt.Sprintf("Reset %s's balance to %s.",
		common.GetDisplayNameInt64(s, inv.GuildID, memberID),
		common.FormatBalance(coin)))
}

func (f *Feature) handleBalance(ctx context.Context, s *discordgo.Session, inv common.Invocation) {
	memberID, ok := inv.FirstMention()
	if !ok {
		common.Reply(s, inv, "Error parsing. Follow the format: !balance @user")
		return
	}

	balance, err := f.economy.GetBalance(ctx, memberID)
	if err != nil {
		common.ReplyWithError(s, inv, err)
		return
	}

	name := common.GetDisplayNameInt64(s, inv.GuildID, memberID)
	if balance == nil {
		common.Reply(s, inv, fmt.Sprintf("%s has no balance.", name))
		return
	}
	common.Reply(s, inv, fmt.Sprintf("%s's balance: %s.", name, common.FormatBalance(balance.Coin)))
}
