package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cactuscoin/cmd"
	"cactuscoin/config"
	"cactuscoin/database"

	log "github.com/sirupsen/logrus"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(os.Args[2:]); err != nil {
			log.WithError(err).Fatal("Migration error")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx); err != nil {
		log.WithError(err).Fatal("Application error")
	}
}

func handleMigrationCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: cactuscoin migrate [up|down|status] [args...]")
	}

	cfg, err := config.LoadForMigrations()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch args[0] {
	case "up":
		return database.MigrateUp(cfg.GetDatabaseURL())
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return database.MigrateDown(cfg.GetDatabaseURL(), steps)
	case "status":
		return database.MigrateStatus(cfg.GetDatabaseURL())
	default:
		return fmt.Errorf("unknown migration command: %s", args[0])
	}
}
