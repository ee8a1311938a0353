package bot

import (
	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
)

// Command lists for Telegram's menu button (the "/" icon in the chat
// input). Pushed via SetMyCommands; admins get their menu per chat with
// BotCommandScopeChat on startup, authorized users when a code is
// redeemed.

var commandsGuest = []tgbotapi.BotCommand{
	{Command: "start", Description: "Start the bot"},
	{Command: "redeem", Description: "Redeem an access code"},
	{Command: "help", Description: "Show available commands"},
}

var commandsUser = []tgbotapi.BotCommand{
	{Command: "start", Description: "Start the bot"},
	{Command: "shop", Description: "Browse the catalog"},
	{Command: "status", Description: "Show your access status"},
	{Command: "help", Description: "Show available commands"},
}

var commandsAdmin = []tgbotapi.BotCommand{
	{Command: "admin", Description: "Open the admin menu"},
	{Command: "shop", Description: "Browse the catalog"},
	{Command: "gencode", Description: "Generate an access code"},
	{Command: "codes", Description: "List active access codes"},
	{Command: "users", Description: "Show registered users"},
	{Command: "stats", Description: "Show view statistics"},
	{Command: "resetstats", Description: "Reset view statistics"},
	{Command: "cleanstats", Description: "Prune stats for removed items"},
	{Command: "broadcast", Description: "Send a message to all users"},
	{Command: "status", Description: "Show your access status"},
	{Command: "help", Description: "Show available commands"},
}

// setDefaultCommands sets the default bot menu for unknown users.
func (t *TgBot) setDefaultCommands() {
	_, err := t.api.SetMyCommands(commandsGuest, &tgbotapi.SetMyCommandsOpts{
		Scope: tgbotapi.BotCommandScopeDefault{},
	})
	if err != nil {
		t.log.Warn("setting default commands", "error", err)
	}
}

// setUserCommands sets the command menu for a specific chat.
func (t *TgBot) setUserCommands(chatId int64, authorized bool) {
	commands := commandsGuest
	if authorized {
		commands = commandsUser
	}
	if t.admins[chatId] {
		commands = commandsAdmin
	}

	_, err := t.api.SetMyCommands(commands, &tgbotapi.SetMyCommandsOpts{
		Scope: tgbotapi.BotCommandScopeChat{ChatId: chatId},
	})
	if err != nil {
		t.log.Warn("setting user commands", "chat_id", chatId, "error", err)
	}
}

// syncAdminMenus pushes the admin command menu to every configured admin chat.
func (t *TgBot) syncAdminMenus() {
	for chatId := range t.admins {
		t.setUserCommands(chatId, true)
	}
}
