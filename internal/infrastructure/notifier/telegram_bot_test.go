package notifier_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/require"

	"memescan/internal/domain/entity"
	"memescan/internal/domain/value"
	"memescan/internal/infrastructure/notifier"
)

func TestFormatAlert(t *testing.T) {
	testCases := []struct {
		name     string
		alert    entity.Alert
		contains []string
	}{
		{
			name: "rug",
			alert: entity.Alert{
				Kind:   entity.AlertRug,
				Reason: "dev_exit",
				Token:  entity.TrackedToken{Address: "EQrug", Symbol: "R<U>G", Name: "Rug", SafetyLevel: value.SafetyDanger},
			},
			contains: []string{"RUG DETECTED</b> (dev_exit)", "R&lt;U&gt;G", "https://tonviewer.com/EQrug"},
		},
		{
			name: "dangerous launch",
			alert: entity.Alert{
				Kind:     entity.AlertDangerousLaunch,
				Token:    entity.TrackedToken{Address: "EQx", Symbol: "X", SafetyScore: 10, CurrentTopHolderPct: 72.26},
				Warnings: []string{"🚨 Top wallet holds 72%"},
			},
			contains: []string{"DANGEROUS LAUNCH", "score 10/100", "72.3%", "• 🚨 Top wallet holds 72%"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			text := notifier.FormatAlert(tc.alert)
			for _, s := range tc.contains {
				rq.Contains(text, s)
			}
		})
	}
}

func TestRun(t *testing.T) {
	rq := require.New(t)

	var sent []*telego.SendMessageParams

	bot := notifier.NewTelegramBotWithSender(func(_ context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
		sent = append(sent, params)
		if len(sent) == 1 {
			return nil, errors.New("flood wait")
		}

		return &telego.Message{}, nil
	}, 42)

	alerts := make(chan entity.Alert, 2)
	alerts <- entity.Alert{Kind: entity.AlertRug, Token: entity.TrackedToken{Address: "EQa"}}
	alerts <- entity.Alert{Kind: entity.AlertRug, Token: entity.TrackedToken{Address: "EQb"}}
	close(alerts)

	rq.NoError(bot.Run(context.Background(), alerts))
	rq.Len(sent, 2)
	rq.Equal(telego.ModeHTML, sent[0].ParseMode)
	rq.Equal(int64(42), sent[1].ChatID.ID)
}

func TestRunStopsOnCancel(t *testing.T) {
	rq := require.New(t)

	bot := notifier.NewTelegramBotWithSender(func(context.Context, *telego.SendMessageParams) (*telego.Message, error) {
		return &telego.Message{}, nil
	}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rq.ErrorIs(bot.Run(ctx, make(chan entity.Alert)), context.Canceled)
}

func TestSendText(t *testing.T) {
	rq := require.New(t)

	var got *telego.SendMessageParams

	bot := notifier.NewTelegramBotWithSender(func(_ context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
		got = params

		return &telego.Message{}, nil
	}, 7)

	rq.NoError(bot.SendText(context.Background(), "hello"))
	rq.Equal("hello", got.Text)
	rq.Equal(int64(7), got.ChatID.ID)
}
