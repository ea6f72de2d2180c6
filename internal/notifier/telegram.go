package notifier

import (
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jobsniper-dev/jobsniper/internal/model"
)

// Ensure TelegramNotifier implements model.Notifier.
var _ model.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier sends match alerts to a Telegram chat via the Bot API.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

// NewTelegramNotifier authenticates against the Bot API and returns the notifier.
func NewTelegramNotifier(token string, chatID int64, logger *slog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	logger.Info("telegram bot authorized", "account", bot.Self.UserName)
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}, nil
}

// Notify sends the batch as one Markdown message per posting.
// Returns an error only if ALL messages fail. Individual failures are logged.
func (t *TelegramNotifier) Notify(postings []model.VerifiedPosting) error {
	if len(postings) == 0 {
		return nil
	}

	failures := 0
	for _, p := range postings {
		msg := tgbotapi.NewMessage(t.chatID, formatTelegramMessage(p))
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.DisableWebPagePreview = true
		if _, err := t.bot.Send(msg); err != nil {
			t.logger.Error("telegram notification failed", "company", p.Company, "title", p.Title, "error", err)
			failures++
		}
	}

	if failures == len(postings) {
		return fmt.Errorf("all %d telegram notifications failed", failures)
	}
	t.logger.Info("telegram notifications complete", "sent", len(postings)-failures, "failed", failures)
	return nil
}

func formatTelegramMessage(p model.VerifiedPosting) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n%s\n\n", escapeMarkdown(p.Title), escapeMarkdown(p.Company))
	fmt.Fprintf(&b, "Score: %d/100\n", p.RelevanceScore)
	fmt.Fprintf(&b, "Work mode: %s\n", p.WorkMode)
	fmt.Fprintf(&b, "Duration: %s\n\n", escapeMarkdown(p.Duration))
	fmt.Fprintf(&b, "%s\n\n", escapeMarkdown(p.MatchReason))
	fmt.Fprintf(&b, "[Apply](%s)", p.URL)
	return b.String()
}

// escapeMarkdown escapes the characters Telegram's Markdown parser treats as
// formatting.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer("*", "\\*", "_", "\\_", "[", "\\[", "`", "\\`")
	return r.Replace(s)
}
