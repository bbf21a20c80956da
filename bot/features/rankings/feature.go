package rankings

import (
	"context"
	"image"
	"sync"
	"time"

	"cactuscoin/bot/common"
	"cactuscoin/service"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

// Feature renders the rankings, wins and losses charts
type Feature struct {
	economy service.EconomyService
	charts  *ChartGenerator
	now     func() time.Time

	cooldown   time.Duration
	limitersMu sync.Mutex
	limiters   map[string]*rate.Limiter

	avatarsMu sync.Mutex
	avatars   map[string]image.Image
}

// New creates the feature. Each channel may render one chart per cooldown.
func New(economy service.EconomyService, cooldown time.Duration) *Feature {
	return &Feature{
		economy:  economy,
		charts:   NewChartGenerator(),
		now:      time.Now,
		cooldown: cooldown,
		limiters: make(map[string]*rate.Limiter),
		avatars:  make(map[string]image.Image),
	}
}

func (f *Feature) HandleCommand(ctx context.Context, s *discordgo.Session, inv common.Invocation) {
	if !f.allow(inv.ChannelID) {
		common.Reply(s, inv, "Charts are cooling down, try again in a few seconds.")
		return
	}

	switch inv.CommandName {
	case "rankings":
		f.handleRankings(ctx, s, inv)
	case "wins":
		f.handleMovements(ctx, s, inv, true)
	case "losses":
		f.handleMovements(ctx, s, inv, false)
	}
}

func (f *Feature) allow(channelID string) bool {
	if f.cooldown <= 0 {
		return true
	}

	f.limitersMu.Lock()
	defer f.limitersMu.Unlock()

	limiter, exists := f.limiters[channelID]
	if !exists {
		limiter = rate.NewLimiter(rate.Every(f.cooldown), 1)
		f.limiters[channelID] = limiter
	}
	return limiter.Allow()
}
