package balance

import (
	"context"

	"cactuscoin/bot/common"
	"cactuscoin/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles balance maintenance commands
type Feature struct {
	economy     service.EconomyService
	defaultCoin int64
}

func New(economy service.EconomyService, defaultCoin int64) *Feature {
	return &Feature{
		economy:     economy,
		defaultCoin: defaultCoin,
	}
}

// HandleCommand dispatches verifycoin, adminadjust, clear, reset and balance
func (f *Feature) HandleCommand(ctx context.Context, s *discordgo.Session, inv common.Invocation) {
	switch inv.CommandName {
	case "verifycoin":
		f.handleVerify(ctx, s, inv)
	case "adminadjust":
		f.handleAdjust(ctx, s, inv)
	case "clear":
		f.handleClear(ctx, s, inv)
	case "reset":
		f.handleReset(ctx, s, inv)
	case "balance":
		f.handleBalance(ctx, s, inv)
	}
}
