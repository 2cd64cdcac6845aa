package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	tele "gopkg.in/telebot.v3"

	"github.com/KopralProject/Telegram/internal/config"
	"github.com/KopralProject/Telegram/internal/metrics"
)

// Bot wires the conversation engine to the Telegram transport.
type Bot struct {
	bot     *tele.Bot
	engine  *Engine
	logger  zerolog.Logger
	allowed map[int64]bool
}

func New(cfg *config.Config, engine *Engine, logger zerolog.Logger) (*Bot, error) {
	tb, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	allowed := make(map[int64]bool, len(cfg.AllowedUserIDs))
	for _, id := range cfg.AllowedUserIDs {
		allowed[id] = true
	}

	b := &Bot{bot: tb, engine: engine, logger: logger, allowed: allowed}
	b.setupHandlers()
	return b, nil
}

// Start begins long polling and blocks until Stop is called.
func (b *Bot) Start() {
	b.logger.Info().Str("username", b.bot.Me.Username).Msg("bot started")
	b.bot.Start()
}

func (b *Bot) Stop() {
	b.bot.Stop()
}

// isAuthorized applies the operator allow-list; an empty list means
// unrestricted access.
func (b *Bot) isAuthorized(userID int64) bool {
	if len(b.allowed) == 0 {
		return true
	}
	return b.allowed[userID]
}

func (b *Bot) setupHandlers() {
	b.bot.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if !b.isAuthorized(c.Sender().ID) {
				b.logger.Warn().Int64("user_id", c.Sender().ID).Msg("unauthorized access attempt")
				metrics.BotUpdates.WithLabelValues("unauthorized").Inc()
				return c.Send("You are not authorized to use this bot.")
			}
			return next(c)
		}
	})

	b.bot.Handle("/start", func(c tele.Context) error {
		metrics.BotUpdates.WithLabelValues("command").Inc()
		return c.Send("Welcome to the Cloudflare DNS bot! Use /menu to see the options.")
	})

	b.bot.Handle("/menu", func(c tele.Context) error {
		metrics.BotUpdates.WithLabelValues("command").Inc()
		return b.send(c, b.engine.Menu())
	})

	b.bot.Handle(tele.OnText, func(c tele.Context) error {
		metrics.BotUpdates.WithLabelValues("text").Inc()
		reply := b.engine.HandleText(context.Background(), c.Sender().ID, c.Text())
		return b.send(c, reply)
	})

	b.bot.Handle(tele.OnCallback, func(c tele.Context) error {
		metrics.BotUpdates.WithLabelValues("callback").Inc()

		// Acknowledge the button press per Telegram convention.
		if err := c.Respond(); err != nil {
			b.logger.Warn().Err(err).Msg("callback ack failed")
		}

		// telebot prefixes inline button callback data with \f.
		action := strings.TrimPrefix(c.Callback().Data, "\f")
		return b.send(c, b.dispatch(context.Background(), c.Sender().ID, action))
	})
}

// dispatch routes a callback action tag: top-level menu actions start a flow,
// anything else is a mid-flow choice.
func (b *Bot) dispatch(ctx context.Context, userID int64, action string) Reply {
	switch action {
	case ActionListZones, ActionListWildcards, ActionAddWildcard, ActionDeleteRecord, ActionUpdateRecord:
		return b.engine.StartFlow(ctx, userID, action)
	default:
		return b.engine.Choose(ctx, userID, action)
	}
}

func (b *Bot) send(c tele.Context, reply Reply) error {
	var opts []any
	if reply.HTML {
		opts = append(opts, tele.ModeHTML)
	}
	if len(reply.Buttons) > 0 {
		opts = append(opts, buildKeyboard(reply.Buttons))
	}
	if err := c.Send(reply.Text, opts...); err != nil {
		b.logger.Error().Err(err).Msg("send reply failed")
		return err
	}
	return nil
}

func buildKeyboard(rows [][]Button) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var teleRows []tele.Row
	for _, row := range rows {
		var teleRow tele.Row
		for _, btn := range row {
			teleRow = append(teleRow, markup.Data(btn.Label, btn.Action))
		}
		teleRows = append(teleRows, teleRow)
	}
	markup.Inline(teleRows...)
	return markup
}
