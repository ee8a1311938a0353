package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"shopbot/bot"
	"shopbot/entity"
	"shopbot/internal/access"
	"shopbot/internal/catalog"
	"shopbot/internal/config"
	"shopbot/internal/http-server/api"
	"shopbot/internal/stats"
	"shopbot/internal/storage"
	"shopbot/internal/users"
	"shopbot/lib/logger"
	"shopbot/lib/sl"
)

const logFileName = "shopbot.log"

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	logg := logger.SetupLogger(conf.Env, filepath.Join(*logPath, logFileName))
	logg.Info("starting shopbot", slog.String("config", *configPath), slog.String("env", conf.Env))

	var backend storage.Backend
	if conf.Mongo.Enabled {
		backend = storage.NewMongoBackend(conf)
	} else {
		fileBackend, err := storage.NewFileBackend(conf.Data.Dir)
		if err != nil {
			logg.Error("preparing data directory", sl.Err(err))
			os.Exit(1)
		}
		backend = fileBackend
	}
	store := storage.New(backend)

	accessManager := access.New(store, logg)
	registry := users.New(store, logg)
	statsManager := stats.New(store, logg)

	var source catalog.Source
	if conf.Catalog.MySQLEnabled {
		mysqlSource, err := catalog.NewMySQLSource(conf)
		if err != nil {
			logg.Error("connecting to catalog database", sl.Err(err))
			os.Exit(1)
		}
		source = mysqlSource
	} else {
		source = catalog.NewFileSource(filepath.Join(conf.Data.Dir, "catalog.json"))
	}

	tgBot, err := bot.NewTgBot(conf.Telegram.ApiKey, accessManager, registry, statsManager, source, logg, bot.BotConfig{
		AdminIds:        conf.Telegram.AdminIds,
		ProgressEvery:   conf.Broadcast.ProgressEvery,
		BroadcastPerSec: conf.Broadcast.RatePerSec,
	})
	if err != nil {
		logg.Error("creating telegram bot", sl.Err(err))
		os.Exit(1)
	}

	// Warnings and errors from here on are mirrored to admin chats.
	alertLog := slog.New(logger.NewAdminHandler(logg.Handler(), tgBot, slog.LevelWarn))

	go func() {
		err := api.New(conf, alertLog, &core{
			access: accessManager,
			users:  registry,
			stats:  statsManager,
		})
		if err != nil {
			alertLog.Error("api server stopped", sl.Err(err))
		}
	}()

	if err := tgBot.Start(); err != nil {
		alertLog.Error("telegram bot stopped", sl.Err(err))
		os.Exit(1)
	}
}

// core aggregates the managers behind the status API's read-only view.
type core struct {
	access *access.Manager
	users  *users.Registry
	stats  *stats.Manager
}

func (c *core) StatsSnapshot(ctx context.Context) (entity.StatsDocument, error) {
	return c.stats.Snapshot(ctx)
}

func (c *core) ActiveCodes(ctx context.Context) ([]entity.AccessCode, error) {
	return c.access.ActiveCodes(ctx)
}

func (c *core) UsersCount(ctx context.Context) int {
	return c.users.Count(ctx)
}
