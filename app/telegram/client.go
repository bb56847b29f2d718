package telegram

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	e "github.com/Kambucha375/faproulette-bot/pkg/entities"
	"github.com/Kambucha375/faproulette-bot/pkg/logger"
	"github.com/Kambucha375/faproulette-bot/pkg/mutex"
)

type EventHandler interface {
	HandleCommand(ctx context.Context, ev e.CommandEvent) error
	HandleText(ctx context.Context, ev e.TextEvent) error
	HandleCallback(ctx context.Context, ev e.CallbackEvent) error
}

// botAPI is the slice of tgbotapi.BotAPI the client uses, kept as an
// interface so delivery can be tested without a live bot.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

// Client runs the long-poll loop and delivers outbound messages. Updates
// fan out to WorkersNum goroutines; a keyed mutex serializes handling per
// conversation so one user's events stay ordered while different users
// interleave freely.
type Client struct {
	Log        logger.Logger
	APIToken   string
	WorkersNum int
	Handler    EventHandler

	// SendAttempts is the total number of photo-send attempts before the
	// delivery is declared failed
	SendAttempts int

	// RetryBackoff is the fixed wait between photo-send attempts
	RetryBackoff time.Duration

	bot   botAPI
	wg    sync.WaitGroup
	locks mutex.KeyedMutex
}

func (c *Client) Start(ctx context.Context) error {
	if c.WorkersNum == 0 {
		return fmt.Errorf("workers number must be greater than 0")
	}
	if c.SendAttempts == 0 {
		return fmt.Errorf("send attempts must be greater than 0")
	}

	log := c.Log

	bot, err := tgbotapi.NewBotAPI(c.APIToken)
	if err != nil {
		return fmt.Errorf("creating bot api: %w", err)
	}
	c.bot = bot

	log.Info("bot api created", "username", bot.Self.UserName)

	updatesConf := tgbotapi.NewUpdate(0)
	updatesConf.Timeout = 60

	updatesChan := c.bot.GetUpdatesChan(updatesConf)

	for i := 0; i < c.WorkersNum; i++ {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.handleUpdatesFromChan(ctx, updatesChan)
		}()
	}

	return nil
}

func (c *Client) Wait() {
	c.wg.Wait()
}

func (c *Client) handleUpdatesFromChan(ctx context.Context, updatesChan tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updatesChan:
			err := c.handleUpdate(ctx, update)
			if err != nil {
				c.Log.Error("handling update", "tg_update_id", update.UpdateID, "error", err)
				sentry.CaptureException(err)
			}
		}
	}
}

func (c *Client) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	log := c.Log.With("tg_update_id", update.UpdateID)

	defer func() {
		if err := recover(); err != nil {
			log.Error("panic", "error", err)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		return c.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil:
		return c.handleMessage(ctx, update.Message)
	default:
		log.Debug("update carries neither message nor callback")
		return nil
	}
}

func (c *Client) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	if message.From == nil || message.Chat == nil {
		c.Log.Warn("message without sender or chat")
		return nil
	}

	userID, chatID := message.From.ID, message.Chat.ID

	c.lockConversation(userID, chatID)
	defer c.unlockConversation(userID, chatID)

	if message.IsCommand() {
		c.Log.Info(
			"command received",
			"command", message.Command(),
			"tg_user_id", userID,
			"tg_chat_id", chatID,
		)

		return c.Handler.HandleCommand(ctx, e.CommandEvent{
			UserID:  userID,
			ChatID:  chatID,
			Command: message.Command(),
		})
	}

	return c.Handler.HandleText(ctx, e.TextEvent{
		UserID: userID,
		ChatID: chatID,
		Text:   message.Text,
	})
}

func (c *Client) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query.From == nil || query.Message == nil || query.Message.Chat == nil {
		c.Log.Warn("callback query without sender or message")
		return nil
	}

	// stop the client-side spinner right away
	if _, err := c.bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		c.Log.Warn("answering callback query", "error", err)
	}

	userID, chatID := query.From.ID, query.Message.Chat.ID

	c.lockConversation(userID, chatID)
	defer c.unlockConversation(userID, chatID)

	return c.Handler.HandleCallback(ctx, e.CallbackEvent{
		UserID:    userID,
		ChatID:    chatID,
		MessageID: query.Message.MessageID,
		Data:      query.Data,
		Caption:   query.Message.Caption,
	})
}

// SendText sends a plain text message, with an inline keyboard when one is
// given.
func (c *Client) SendText(_ context.Context, chatID int64, text string, keyboard e.Keyboard) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = toMarkup(keyboard)
	}

	_, err := c.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	return nil
}

// SendArtifact delivers a normalized artifact and returns the new message
// ID. The photo path gets up to SendAttempts attempts with a fixed backoff
// between them; documents are sent once, their failures have not shown the
// transient-network pattern photos do. After the last failed photo attempt
// a best-effort plain-text notice is sent before the error surfaces.
func (c *Client) SendArtifact(ctx context.Context, chatID int64, artifact e.NormalizedArtifact, caption string, keyboard e.Keyboard) (int, error) {
	switch artifact.Kind {
	case e.ArtifactKindPhoto:
		return c.sendPhoto(ctx, chatID, artifact.Bytes, caption, keyboard)

	case e.ArtifactKindDocument:
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
			Name:  uuid.NewString() + ".pdf",
			Bytes: artifact.Bytes,
		})
		doc.Caption = caption
		if keyboard != nil {
			doc.ReplyMarkup = toMarkup(keyboard)
		}

		msg, err := c.bot.Send(doc)
		if err != nil {
			return 0, fmt.Errorf("%w: sending document: %v", e.ErrDeliveryFailed, err)
		}
		return msg.MessageID, nil

	default:
		return 0, fmt.Errorf("unknown artifact kind: %d", artifact.Kind)
	}
}

func (c *Client) sendPhoto(ctx context.Context, chatID int64, photoBytes []byte, caption string, keyboard e.Keyboard) (int, error) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
		Name:  uuid.NewString() + ".jpg",
		Bytes: photoBytes,
	})
	photo.Caption = caption
	if keyboard != nil {
		photo.ReplyMarkup = toMarkup(keyboard)
	}

	var lastErr error
	for attempt := 1; attempt <= c.SendAttempts; attempt++ {
		msg, err := c.bot.Send(photo)
		if err == nil {
			return msg.MessageID, nil
		}

		lastErr = err
		if attempt < c.SendAttempts {
			c.Log.Warn("photo send failed, retrying", "attempt", attempt, "error", err)
			time.Sleep(c.RetryBackoff)
		}
	}

	// the notice is best effort and never a substitute for success
	if err := c.SendText(ctx, chatID, "Failed to send photo", nil); err != nil {
		c.Log.Error("sending delivery failure notice", "error", err)
	}

	return 0, fmt.Errorf("%w: %d photo attempts: %v", e.ErrDeliveryFailed, c.SendAttempts, lastErr)
}

// EditCaption updates an existing message's caption and keyboard in place.
func (c *Client) EditCaption(_ context.Context, chatID int64, messageID int, caption string, keyboard e.Keyboard) error {
	edit := tgbotapi.NewEditMessageCaption(chatID, messageID, caption)
	if keyboard != nil {
		markup := toMarkup(keyboard)
		edit.ReplyMarkup = &markup
	}

	_, err := c.bot.Request(edit)
	if err != nil {
		return fmt.Errorf("editing caption: %w", err)
	}

	return nil
}

func (c *Client) lockConversation(userID, chatID int64) {
	c.locks.Lock(conversationKey(userID, chatID))
}

func (c *Client) unlockConversation(userID, chatID int64) {
	c.locks.Unlock(conversationKey(userID, chatID))
}

func conversationKey(userID, chatID int64) string {
	return strconv.FormatInt(userID, 10) + ":" + strconv.FormatInt(chatID, 10)
}

func toMarkup(keyboard e.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		rows = append(rows, buttons)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
