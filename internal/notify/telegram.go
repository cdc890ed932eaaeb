package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"go.uber.org/zap"

	"github.com/daniel4e393653-cmd/cetus-rebalance-bot/internal/model"
)

// TelegramNotifier pushes rebalance outcomes to a Telegram chat.
type TelegramNotifier struct {
	bot    *gotgbot.Bot
	chatID int64
	logger *zap.Logger
}

// NewTelegramNotifier builds a notifier from a bot token and target chat.
func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat id is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	bot, err := gotgbot.NewBot(token, &gotgbot.BotOpts{
		RequestOpts: &gotgbot.RequestOpts{
			Timeout: 30 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}, nil
}

// Notify sends one message per record. Delivery failures are logged and
// swallowed; notifications never gate a rebalance.
func (n *TelegramNotifier) Notify(ctx context.Context, rec model.RebalanceRecord) {
	if _, err := n.bot.SendMessage(n.chatID, formatRecord(rec), nil); err != nil {
		n.logger.Warn("telegram notification failed",
			zap.String("position", rec.PositionID),
			zap.Error(err),
		)
	}
}

func formatRecord(rec model.RebalanceRecord) string {
	var b strings.Builder
	switch {
	case rec.FinalState == "failed":
		b.WriteString("Rebalance failed\n")
	case rec.DryRun:
		b.WriteString("Would rebalance (dry run)\n")
	case rec.FinalState == "done":
		b.WriteString("Rebalance complete\n")
	default:
		fmt.Fprintf(&b, "Rebalance %s\n", rec.FinalState)
	}
	fmt.Fprintf(&b, "Position: %s\n", rec.PositionID)
	fmt.Fprintf(&b, "Pool: %s\n", rec.PoolID)
	fmt.Fprintf(&b, "Range: [%d, %d) -> [%d, %d)\n",
		rec.OldTickLower, rec.OldTickUpper, rec.NewTickLower, rec.NewTickUpper)
	fmt.Fprintf(&b, "Current tick: %d\n", rec.CurrentTick)
	if rec.NewLiquidity != "" {
		fmt.Fprintf(&b, "Liquidity: %s -> %s\n", rec.Liquidity, rec.NewLiquidity)
	}
	if rec.NewPositionID != "" {
		fmt.Fprintf(&b, "New position: %s\n", rec.NewPositionID)
	}
	if len(rec.Digests) > 0 {
		fmt.Fprintf(&b, "Transactions: %s\n", strings.Join(rec.Digests, ", "))
	}
	if rec.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", rec.Error)
	}
	return strings.TrimRight(b.String(), "\n")
}
