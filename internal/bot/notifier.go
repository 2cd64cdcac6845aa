package bot

import (
	"fmt"

	tele "gopkg.in/telebot.v3"
)

// Notifier sends one-off messages to a chat, outside any conversation flow.
// Used by the dns-ensure job to report its outcome.
type Notifier struct {
	bot *tele.Bot
}

func NewNotifier(token string) (*Notifier, error) {
	tb, err := tele.NewBot(tele.Settings{Token: token})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Notifier{bot: tb}, nil
}

func (n *Notifier) Send(chatID int64, message string) error {
	if _, err := n.bot.Send(tele.ChatID(chatID), message, tele.ModeMarkdown); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}
