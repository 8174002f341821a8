package notifier

import (
	"context"

	"github.com/mymmrac/telego"
)

type SenderFunc func(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)

func (f SenderFunc) SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
	return f(ctx, params)
}

func NewTelegramBotWithSender(sender SenderFunc, chatID int64) *TelegramBot {
	return &TelegramBot{bot: sender, chatID: chatID}
}
