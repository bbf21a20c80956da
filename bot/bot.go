package bot

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"cactuscoin/bot/features/balance"
	"cactuscoin/bot/features/rankings"
	"cactuscoin/bot/features/transfer"
	"cactuscoin/bot/features/wagers"
	"cactuscoin/config"
	"cactuscoin/events"
	"cactuscoin/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token         string
	GuildID       string
	ChannelName   string
	AdminRoles    []string
	DefaultCoin   int64
	RoleTiers     []config.RoleTier
	ChartCooldown time.Duration
}

type Bot struct {
	config   Config
	session  *discordgo.Session
	eventBus *events.Bus

	// ctx outlives individual messages and bounds pending wagers
	ctx    context.Context
	cancel context.CancelFunc

	commands map[string]command
	wagers   *wagers.Feature
	roleSync *RoleSync
}

func New(config Config, economy service.EconomyService, wagerService service.WagerService, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAll

	ctx, cancel := context.WithCancel(context.Background())
	bot := &Bot{
		config:   config,
		session:  dg,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
		wagers:   wagers.New(wagerService),
		roleSync: NewRoleSync(dg, config.GuildID, config.RoleTiers, economy),
	}
	bot.commands = bot.buildCommands(
		balance.New(economy, config.DefaultCoin),
		transfer.New(economy),
		rankings.New(economy, config.ChartCooldown),
	)

	dg.AddHandler(bot.handleReady)
	dg.AddHandler(bot.handleMessage)
	dg.AddHandler(bot.handleInteraction)

	if err := dg.Open(); err != nil {
		cancel()
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if eventBus != nil && len(config.RoleTiers) > 0 {
		bot.roleSync.Subscribe(eventBus)
		log.WithField("tiers", len(config.RoleTiers)).Info("Role tier sync enabled")
	}

	return bot, nil
}

// Close cancels pending wagers and closes the gateway connection
func (b *Bot) Close() error {
	b.cancel()
	return b.session.Close()
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithFields(log.Fields{
		"user":   r.User.Username,
		"userID": r.User.ID,
		"guilds": len(r.Guilds),
	}).Info("Logged in to Discord")
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.wagers.HandleInteraction(s, i)
}
