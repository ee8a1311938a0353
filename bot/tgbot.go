// Package bot implements the Telegram surface of the shop bot's
// administration layer.
//
// Architecture overview:
//   - tgbot.go     — TgBot struct, lifecycle (Start/Stop), admin set
//   - commands.go  — User-facing commands: /start, /redeem, /status, /help
//   - shop.go      — Catalog browsing (/shop); feeds the view counters
//   - admin.go     — Admin commands: /admin, /gencode, /codes, /users,
//     /stats, /resetstats, /cleanstats, /broadcast
//   - callbacks.go — Admin menu inline keyboard and callback handlers
//   - menus.go     — Command menus via Telegram's BotCommandScope API
//   - broadcast.go — Broadcast content collection and run kickoff
//   - transport.go — broadcast.Transport adapter over the bot API
//   - helpers.go   — Shared utilities: Sanitize, plainResponse, reportError
//
// Access gating: every non-admin feature checks the access manager; users
// unlock the bot once by redeeming an admin-issued code (/redeem or the
// /start deep link). Admin identity comes from configuration, not from
// the registry.
package bot

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/callbackquery"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/message"

	"shopbot/internal/access"
	"shopbot/internal/broadcast"
	"shopbot/internal/catalog"
	"shopbot/internal/stats"
	"shopbot/internal/users"
	"shopbot/lib/sl"
)

// BotConfig holds Telegram-specific configuration loaded from the YAML
// config file.
type BotConfig struct {
	AdminIds         []int64
	ProgressEvery    int
	BroadcastPerSec  int
	RecentUsersShown int
}

// TgBot is the central Telegram bot instance. It wires the access,
// registry, stats and broadcast components to the chat platform.
type TgBot struct {
	log     *slog.Logger
	api     *tgbotapi.Bot
	access  *access.Manager
	users   *users.Registry
	stats   *stats.Manager
	catalog catalog.Source
	runner  *broadcast.Runner
	updater *ext.Updater
	config  BotConfig

	admins map[int64]bool

	mu sync.Mutex
	// awaiting maps an admin chat to the instruction message id while the
	// bot is collecting that admin's broadcast content.
	awaiting map[int64]int64
	// menu is the catalog snapshot the shop keyboards index into.
	menu *catalogMenu
}

func NewTgBot(
	apiKey string,
	accessManager *access.Manager,
	registry *users.Registry,
	statsManager *stats.Manager,
	catalogSource catalog.Source,
	log *slog.Logger,
	cfg BotConfig,
) (*TgBot, error) {
	if cfg.RecentUsersShown == 0 {
		cfg.RecentUsersShown = 10
	}

	admins := make(map[int64]bool, len(cfg.AdminIds))
	for _, id := range cfg.AdminIds {
		admins[id] = true
	}

	tgBot := &TgBot{
		log:      log.With(sl.Module("tgbot")),
		access:   accessManager,
		users:    registry,
		stats:    statsManager,
		catalog:  catalogSource,
		config:   cfg,
		admins:   admins,
		awaiting: make(map[int64]int64),
	}

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	tgBot.api = api
	tgBot.runner = broadcast.NewRunner(&tgTransport{api: api}, log, broadcast.Config{
		ProgressEvery: cfg.ProgressEvery,
		RatePerSec:    cfg.BroadcastPerSec,
	})

	return tgBot, nil
}

func (t *TgBot) Start() error {
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			t.log.Error("handling update:", sl.Err(err))
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	t.updater = ext.NewUpdater(dispatcher, nil)

	// User commands
	dispatcher.AddHandler(handlers.NewCommand("start", t.start))
	dispatcher.AddHandler(handlers.NewCommand("redeem", t.redeem))
	dispatcher.AddHandler(handlers.NewCommand("status", t.status))
	dispatcher.AddHandler(handlers.NewCommand("shop", t.shop))
	dispatcher.AddHandler(handlers.NewCommand("help", t.help))

	// Admin commands
	dispatcher.AddHandler(handlers.NewCommand("admin", t.adminCmd))
	dispatcher.AddHandler(handlers.NewCommand("gencode", t.genCode))
	dispatcher.AddHandler(handlers.NewCommand("codes", t.listCodes))
	dispatcher.AddHandler(handlers.NewCommand("users", t.usersCmd))
	dispatcher.AddHandler(handlers.NewCommand("stats", t.statsCmd))
	dispatcher.AddHandler(handlers.NewCommand("resetstats", t.resetStats))
	dispatcher.AddHandler(handlers.NewCommand("cleanstats", t.cleanStats))
	dispatcher.AddHandler(handlers.NewCommand("broadcast", t.broadcastCmd))

	// Callback query handlers
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Prefix(cbAdmin), t.onAdminCallback))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Prefix(cbBroadcast), t.onBroadcastCallback))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Prefix(cbShop), t.onShopCallback))

	// Plain messages feed broadcast-content collection; must come after
	// the command handlers so commands never count as content.
	dispatcher.AddHandler(handlers.NewMessage(message.All, t.onBroadcastContent))

	t.setDefaultCommands()
	t.syncAdminMenus()

	err := t.updater.StartPolling(t.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	t.updater.Idle()
	return nil
}

func (t *TgBot) Stop() {
	if t.updater != nil {
		t.log.Info("stopping telegram bot")
		t.updater.Stop()
	}
}

// requireAdmin checks the configured admin list. Admin identity is static
// configuration, not registry state.
func (t *TgBot) requireAdmin(chatId int64) bool {
	return t.admins[chatId]
}
