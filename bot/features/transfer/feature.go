package transfer

import (
	"context"

	"cactuscoin/bot/common"
	"cactuscoin/service"

	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	economy service.EconomyService
}

func New(economy service.EconomyService) *Feature {
	return &Feature{
		economy: economy,
	}
}

func (f *Feature) HandleCommand(ctx context.Context, s *discordgo.Session, inv common.Invocation) {
	f.handleGive(ctx, s, inv)
}
