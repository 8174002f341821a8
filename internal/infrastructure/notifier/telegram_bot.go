package notifier

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"memescan/internal/domain/entity"
	"memescan/pkg/logx"
)

const explorerURL = "https://tonviewer.com/"

type messageSender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// TelegramBot отправляет оповещения трекера в один чат.
type TelegramBot struct {
	bot    messageSender
	chatID int64
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// Run читает оповещения из канала до его закрытия или отмены ctx.
// Ошибка отправки не останавливает цикл.
func (b *TelegramBot) Run(ctx context.Context, alerts <-chan entity.Alert) error {
	logger(ctx).Info("alert notifier started", "chat-id", b.chatID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case alert, ok := <-alerts:
			if !ok {
				return nil
			}
			if err := b.SendAlert(ctx, alert); err != nil {
				logger(ctx).Error("failed to send alert",
					logx.FieldAddress, alert.Token.Address,
					logx.Error(err),
				)
			}
		}
	}
}

func (b *TelegramBot) SendAlert(ctx context.Context, alert entity.Alert) error {
	msg := tu.Message(
		tu.ID(b.chatID),
		FormatAlert(alert),
	).WithParseMode(telego.ModeHTML)

	_, err := b.bot.SendMessage(ctx, msg)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// FormatAlert HTML-текст оповещения.
func FormatAlert(alert entity.Alert) string {
	token := alert.Token

	var sb strings.Builder

	switch alert.Kind {
	case entity.AlertRug:
		fmt.Fprintf(&sb, "🚨 <b>RUG DETECTED</b> (%s)\n\n", html.EscapeString(alert.Reason))
	case entity.AlertDangerousLaunch:
		sb.WriteString("⚠️ <b>DANGEROUS LAUNCH</b>\n\n")
	default:
		fmt.Fprintf(&sb, "ℹ️ <b>%s</b>\n\n", html.EscapeString(string(alert.Kind)))
	}

	fmt.Fprintf(&sb, "🪙 <b>Token:</b> %s (%s)\n", html.EscapeString(token.Symbol), html.EscapeString(token.Name))
	fmt.Fprintf(&sb, "🛡 <b>Safety:</b> %s, score %d/100\n", token.SafetyLevel, token.SafetyScore)
	fmt.Fprintf(&sb, "👥 <b>Holders:</b> %d (initially %d)\n", token.CurrentHolders, token.InitialHolders)
	fmt.Fprintf(&sb, "🐋 <b>Top wallet:</b> %.1f%% (initially %.1f%%)\n", token.CurrentTopHolderPct, token.InitialTopHolderPct)

	for _, w := range alert.Warnings {
		fmt.Fprintf(&sb, "• %s\n", html.EscapeString(w))
	}

	fmt.Fprintf(&sb, "\n🔗 <a href=\"%s%s\">%s</a>", explorerURL, token.Address, html.EscapeString(token.Address))

	return sb.String()
}

// SendText отправляет простое текстовое сообщение.
func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	msg := tu.Message(tu.ID(b.chatID), text)

	_, err := b.bot.SendMessage(ctx, msg)
	return err
}
