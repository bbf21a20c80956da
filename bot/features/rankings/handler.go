package rankings

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"slices"

	"cactuscoin/bot/common"
	"cactuscoin/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleRankings(ctx context.Context, s *discordgo.Session, inv common.Invocation) {
	balances, err := f.economy.Rankings(ctx)
	if err != nil {
		common.ReplyWithError(s, inv, err)
		return
	}

	entries := make([]entry, len(balances))
	for i, balance := range balances {
		entries[i] = entry{memberID: balance.MemberID, value: balance.Coin}
	}

	today := f.now().Format("01-02-2006")
	png, err := f.charts.Generate("Cactus Gang Power Rankings", today, f.bars(s, inv, entries))
	if err != nil {
		f.replyChartError(s, inv, err, "No one has any coin yet. Try `!verifycoin`.")
		return
	}

	common.SendPNG(s, inv, "Here are the current power rankings:", fmt.Sprintf("power-rankings-%s.png", today), png)
}

func (f *Feature) handleMovements(ctx context.Context, s *discordgo.Session, inv common.Invocation, wantGains bool) {
	kind := "losses"
	if wantGains {
		kind = "wins"
	}

	args := inv.Args()
	if len(args) != 1 {
		common.Reply(s, inv, fmt.Sprintf("Error parsing. Follow the format: !%s week|month|year", kind))
		return
	}
	window, err := models.ParseWindow(args[0])
	if err != nil {
		common.Reply(s, inv, fmt.Sprintf("Error parsing. Follow the format: !%s week|month|year", kind))
		return
	}

	txs, err := f.economy.Movements(ctx, window, wantGains)
	if err != nil {
		common.ReplyWithError(s, inv, err)
		return
	}

	entries := make([]entry, len(txs))
	for i, tx := range txs {
		entries[i] = entry{memberID: tx.MemberID, value: tx.Delta}
	}

	title := fmt.Sprintf("Greatest Losses From the Past %s", window.Title())
	if wantGains {
		title = fmt.Sprintf("Greatest Wins From the Past %s", window.Title())
	}

	png, err := f.charts.Generate(title, "", f.bars(s, inv, entries))
	if err != nil {
		f.replyChartError(s, inv, err, fmt.Sprintf("No %s found for the past %s.", kind, window))
		return
	}

	common.SendPNG(s, inv, "", fmt.Sprintf("%s-%s.png", kind, window), png)
}

type entry struct {
	memberID int64
	value    int64
}

// bars resolves members into chart bars. Members who left the guild are
// skipped. The ascending input is reversed so the largest value is drawn on
// top.
func (f *Feature) bars(s *discordgo.Session, inv common.Invocation, entries []entry) []Bar {
	guildID := common.Snowflake(inv.GuildID)

	bars := make([]Bar, 0, len(entries))
	for _, e := range entries {
		userID := common.Snowflake(e.memberID)
		member, err := common.GetMember(s, guildID, userID)
		if err != nil || member == nil || member.User == nil {
			log.WithFields(log.Fields{
				"memberID": e.memberID,
				"error":    err,
			}).Debug("Skipping chart entry for unknown member")
			continue
		}

		bars = append(bars, Bar{
			Label: common.GetDisplayName(s, guildID, userID),
			Value: e.value,
			Color: memberColor(s, userID, inv.ChannelID),
			Icon:  f.avatar(s, member.User),
		})
	}

	slices.Reverse(bars)
	return bars
}

func (f *Feature) replyChartError(s *discordgo.Session, inv common.Invocation, err error, emptyMessage string) {
	if errors.Is(err, ErrNoBars) {
		common.Reply(s, inv, emptyMessage)
		return
	}
	common.ReplyWithError(s, inv, err)
}

// memberColor returns the member's top coloured role, or nil for the default
func memberColor(s *discordgo.Session, userID, channelID string) color.Color {
	rgb := s.State.UserColor(userID, channelID)
	if rgb == 0 {
		return nil
	}
	return colorFromInt(rgb)
}

func colorFromInt(rgb int) color.RGBA {
	return color.RGBA{
		R: uint8(rgb >> 16),
		G: uint8(rgb >> 8),
		B: uint8(rgb),
		A: 0xFF,
	}
}
