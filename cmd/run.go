package cmd

import (
	"context"
	"fmt"
	"time"

	"cactuscoin/bot"
	"cactuscoin/config"
	"cactuscoin/database"
	"cactuscoin/events"
	"cactuscoin/infrastructure"
	"cactuscoin/infrastructure/observability"
	"cactuscoin/repository"
	"cactuscoin/repository/sqlite"
	"cactuscoin/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	configureLogging(cfg)

	log.WithField("environment", cfg.Environment).Info("Starting cactus coin bot...")

	location, err := cfg.Location()
	if err != nil {
		return err
	}

	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	eventBus := events.NewBus()

	uowFactory, closeDB, err := openLedger(ctx, cfg.GetDatabaseURL(), eventBus)
	if err != nil {
		return err
	}
	defer closeDB()

	economyService := service.NewEconomyService(uowFactory, location)
	wagerService := service.NewWagerService(economyService, eventBus, service.WagerConfig{
		ConfirmTimeout: cfg.ConfirmTimeout,
		OutcomeTimeout: cfg.OutcomeTimeout,
	})

	metrics := observability.NewMetricsProvider(observability.Config{
		Exporter:     cfg.MetricsExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Environment:  cfg.Environment,
	})
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics.Subscribe(eventBus)
	if err := metrics.ObserveActiveWagers(wagerService.ActiveCount); err != nil {
		return err
	}

	var natsClient *infrastructure.NATSClient
	if cfg.NATSURL != "" {
		natsClient = infrastructure.NewNATSClient(cfg.NATSURL)
		if err := natsClient.Connect(ctx); err != nil {
			return err
		}
		if err := natsClient.EnsureStream(infrastructure.LedgerStreamName, infrastructure.AllSubjects()); err != nil {
			log.WithError(err).Warn("Failed to ensure event stream, forwarded events may be dropped")
		}
		infrastructure.NewEventForwarder(natsClient).Subscribe(eventBus)
		log.Info("Forwarding ledger events to NATS")
	}

	botConfig := bot.Config{
		Token:         cfg.DiscordToken,
		GuildID:       cfg.DiscordGuildID,
		ChannelName:   cfg.ChannelName,
		AdminRoles:    cfg.AdminRoles,
		DefaultCoin:   cfg.DefaultCoin,
		RoleTiers:     cfg.RoleTiers(),
		ChartCooldown: cfg.ChartCooldown,
	}
	discordBot, err := bot.New(botConfig, economyService, wagerService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	log.WithField("channel", cfg.ChannelName).Info("Bot is running")
	<-ctx.Done()

	log.Info("Shutting down bot...")

	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}
	if err := metrics.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down metrics")
	}

	log.Info("Shutdown completed")
	return nil
}

// openLedger opens the store selected by databaseURL
func openLedger(ctx context.Context, databaseURL string, eventBus *events.Bus) (service.UnitOfWorkFactory, func(), error) {
	driver, location, err := database.ParseDatabaseURL(databaseURL)
	if err != nil {
		return nil, nil, err
	}

	switch driver {
	case database.DriverPostgres:
		db, err := database.NewConnection(ctx, location)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("Connected to PostgreSQL ledger")
		return repository.NewUnitOfWorkFactory(db, eventBus), db.Close, nil

	default:
		db, err := database.OpenSQLite(ctx, location)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		log.WithField("path", db.Path).Info("Opened SQLite ledger")
		return sqlite.NewUnitOfWorkFactory(db, eventBus), func() {
			if err := db.Close(); err != nil {
				log.WithError(err).Error("Error closing database")
			}
		}, nil
	}
}

func configureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	}
}
