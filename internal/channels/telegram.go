package channels

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// DefaultTelegramAPI is the Bot API root.
const DefaultTelegramAPI = "https://api.telegram.org"

// TelegramError is a Bot API call that failed or answered ok=false.
type TelegramError struct {
	Method      string
	Description string
}

func (e *TelegramError) Error() string {
	return fmt.Sprintf("telegram %s: %s", e.Method, e.Description)
}

// TelegramBot is the Messenger backed by the go-telegram bot client.
type TelegramBot struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewTelegramBot returns a bot authenticated by token.
func NewTelegramBot(token string) *TelegramBot {
	return &TelegramBot{
		Token:      strings.TrimSpace(token),
		BaseURL:    DefaultTelegramAPI,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (b *TelegramBot) client() (*bot.Bot, error) {
	hc := b.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	opts := []bot.Option{
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(time.Minute, hc),
	}
	if base := strings.TrimRight(b.BaseURL, "/"); base != "" {
		opts = append(opts, bot.WithServerURL(base))
	}
	c, err := bot.New(b.Token, opts...)
	if err != nil {
		return nil, b.wrap("init", err)
	}
	return c, nil
}

// SetCommands calls setMyCommands.
func (b *TelegramBot) SetCommands(ctx context.Context, commands []BotCommand) error {
	c, err := b.client()
	if err != nil {
		return err
	}
	menu := make([]tgmodels.BotCommand, 0, len(commands))
	for _, cmd := range commands {
		menu = append(menu, tgmodels.BotCommand{Command: cmd.Command, Description: cmd.Description})
	}
	if _, err := c.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: menu}); err != nil {
		return b.wrap("setMyCommands", err)
	}
	return nil
}

// SendMessage calls sendMessage, routing into a forum topic when threadID is set.
func (b *TelegramBot) SendMessage(ctx context.Context, chatID, threadID int64, text string) error {
	c, err := b.client()
	if err != nil {
		return err
	}
	_, err = c.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          chatID,
		MessageThreadID: int(threadID),
		Text:            text,
	})
	if err != nil {
		return b.wrap("sendMessage", err)
	}
	return nil
}

// wrap keeps the token out of error text; transport errors embed the request URL.
func (b *TelegramBot) wrap(method string, err error) error {
	desc := err.Error()
	if b.Token != "" {
		desc = strings.ReplaceAll(desc, b.Token, "<token>")
	}
	return &TelegramError{Method: method, Description: desc}
}
