// Package botapi contains implementations of bot API interfaces.
package botapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Semior001/newsbook/pkg/botx"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
)

// Telegram is a controller that handles requests from telegram.
type Telegram struct {
	log     *slog.Logger
	api     *tgbotapi.BotAPI
	updates chan botx.Request
	stop    chan struct{}
}

// NewTelegram returns a new telegram bot controller.
func NewTelegram(lg *slog.Logger, token string, bufferSize int) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("make new api: %w", err)
	}

	stdlibLogger := slog.NewLogLogger(lg.Handler(), slog.LevelWarn)
	stdlibLogger.SetPrefix("telegram-bot-api: ")

	if err = tgbotapi.SetLogger(stdlibLogger); err != nil {
		return nil, fmt.Errorf("set logger: %w", err)
	}

	return &Telegram{
		log:     lg,
		api:     api,
		updates: make(chan botx.Request, bufferSize),
		stop:    make(chan struct{}),
	}, nil
}

// Run runs telegram bot listener until Stop is called.
// Updates channel is closed when Run returns.
func (b *Telegram) Run() {
	defer close(b.updates)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		var update tgbotapi.Update
		select {
		case <-b.stop:
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			update = upd
		}

		req, ok := b.request(update)
		if !ok {
			continue
		}

		select {
		case <-b.stop:
			return
		case b.updates <- req:
		}
	}
}

func (b *Telegram) request(update tgbotapi.Update) (botx.Request, bool) {
	if cb := update.CallbackQuery; cb != nil {
		if cb.Message == nil || cb.Message.Chat == nil || cb.Data == "" {
			return botx.Request{}, false
		}

		// answer right away, so the client stops showing the progress on the button
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			b.log.Warn("failed to answer callback query", slog.Any("err", err))
		}

		return botx.Request{
			MessageID: strconv.Itoa(cb.Message.MessageID),
			Chat: botx.Chat{
				ID:       strconv.FormatInt(cb.Message.Chat.ID, 10),
				Username: cb.Message.Chat.UserName,
			},
			Text:       cb.Data,
			CallbackID: cb.ID,
		}, true
	}

	if update.Message == nil || update.Message.Chat == nil || update.Message.Text == "" {
		return botx.Request{}, false
	}

	return botx.Request{
		MessageID: strconv.Itoa(update.Message.MessageID),
		Chat: botx.Chat{
			ID:       strconv.FormatInt(update.Message.Chat.ID, 10),
			Username: update.Message.Chat.UserName,
		},
		Text: update.Message.Text,
	}, true
}

// Stop stops telegram bot listener.
func (b *Telegram) Stop() {
	b.api.StopReceivingUpdates()
	close(b.stop)
}

// Updates returns updates channel.
func (b *Telegram) Updates() <-chan botx.Request {
	return b.updates
}

// SendMessage sends message to telegram user, or edits the already sent one.
func (b *Telegram) SendMessage(ctx context.Context, resp botx.Response) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	chatID, err := strconv.ParseInt(resp.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("parse chat id: %w", err)
	}

	if resp.EditMessageID != "" {
		return b.edit(chatID, resp)
	}

	msg := tgbotapi.NewMessage(chatID, resp.Text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if kb := keyboard(resp.Buttons); kb != nil {
		msg.ReplyMarkup = *kb
	}
	if resp.ReplyToMessageID != "" {
		if msg.ReplyToMessageID, err = strconv.Atoi(resp.ReplyToMessageID); err != nil {
			return fmt.Errorf("parse reply to message id: %w", err)
		}
	}

	if _, err = b.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

func (b *Telegram) edit(chatID int64, resp botx.Response) error {
	msgID, err := strconv.Atoi(resp.EditMessageID)
	if err != nil {
		return fmt.Errorf("parse edit message id: %w", err)
	}

	edit := tgbotapi.NewEditMessageText(chatID, msgID, resp.Text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.DisableWebPagePreview = true
	edit.ReplyMarkup = keyboard(resp.Buttons)

	if _, err = b.api.Send(edit); err != nil {
		// pressing the button of the page that is already shown
		if strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		return fmt.Errorf("edit message: %w", err)
	}

	return nil
}

func keyboard(buttons [][]botx.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}

	rows := lo.Map(buttons, func(row []botx.Button, _ int) []tgbotapi.InlineKeyboardButton {
		return lo.Map(row, func(btn botx.Button, _ int) tgbotapi.InlineKeyboardButton {
			return tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data)
		})
	})

	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}
