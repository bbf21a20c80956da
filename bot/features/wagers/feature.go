package wagers

import (
	"context"
	"strings"

	"cactuscoin/bot/common"
	"cactuscoin/service"

	"github.com/bwmarrin/discordgo"
)

// Feature runs the !bet command and its buttons
type Feature struct {
	wagers service.WagerService
}

func New(wagers service.WagerService) *Feature {
	return &Feature{
		wagers: wagers,
	}
}

// HandleCommand handles !bet. ctx bounds the wager's lifetime.
func (f *Feature) HandleCommand(ctx context.Context, s *discordgo.Session, inv common.Invocation) {
	f.handleBet(ctx, s, inv)
}

// HandleInteraction handles wager button presses and ignores everything else
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	if !strings.HasPrefix(i.MessageComponentData().CustomID, customIDPrefix) {
		return
	}
	f.handleButton(s, i)
}
