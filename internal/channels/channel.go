// Package channels delivers operational notifications to chat platforms.
package channels

import "context"

// BotCommand is one entry of a bot's command menu.
type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// Messenger is a chat transport able to post into forum topics.
type Messenger interface {
	// SetCommands replaces the bot's command menu.
	SetCommands(ctx context.Context, commands []BotCommand) error
	// SendMessage posts text to chatID, inside threadID when it is non-zero.
	SendMessage(ctx context.Context, chatID, threadID int64, text string) error
}
