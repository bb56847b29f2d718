package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Kambucha375/faproulette-bot/app/sessions"
	e "github.com/Kambucha375/faproulette-bot/pkg/entities"
	"github.com/Kambucha375/faproulette-bot/pkg/logger"
	"github.com/Kambucha375/faproulette-bot/pkg/rolls"
)

const (
	CommandStart  = "start"
	CommandMenu   = "menu"
	CommandRandom = "random"
	CommandSearch = "search"
)

const (
	defaultRollFrames     = 10
	defaultRollFrameDelay = 100 * time.Millisecond
)

// Handler routes inbound commands, free text and button presses. Free text
// is meaningful only while the conversation has an active search session;
// unrecognized input from an idle conversation gets no reply at all.
//
// A command received mid-flow resets the session before it is dispatched.
// Leaving the stale state around would let an abandoned filter name leak
// into a later flow.
type Handler struct {
	// Log is a logger
	Log logger.Logger

	// Roulettes is the content API client
	Roulettes ContentClient

	// Normalizer converts raw media into deliverable artifacts
	Normalizer Normalizer

	// Gateway delivers messages and artifacts to chats
	Gateway Gateway

	// Sessions is the per-conversation state store
	Sessions *sessions.Store

	// RollFrames is the number of caption edits per re-roll animation,
	// defaults to 10
	RollFrames int

	// RollFrameDelay is the pause between animation frames, defaults to
	// 100ms
	RollFrameDelay time.Duration
}

func (h *Handler) HandleCommand(ctx context.Context, ev e.CommandEvent) error {
	if sess := h.Sessions.Get(ev.UserID, ev.ChatID); sess.State != sessions.StateIdle {
		h.Log.Info("resetting mid-flow session", "tg_user_id", ev.UserID, "tg_chat_id", ev.ChatID)
		h.Sessions.Clear(ev.UserID, ev.ChatID)
	}

	switch ev.Command {
	case CommandStart, CommandMenu:
		return h.Gateway.SendText(
			ctx,
			ev.ChatID,
			"Available commands: /random, /search",
			menuKeyboard(),
		)

	case CommandRandom:
		return h.randomFlow(ctx, ev.ChatID)

	case CommandSearch:
		h.Sessions.Put(ev.UserID, ev.ChatID, sessions.Session{State: sessions.StateAwaitingFilterName})
		return h.Gateway.SendText(ctx, ev.ChatID, "Enter filter name:", nil)

	default:
		h.Log.Debug("unknown command ignored", "command", ev.Command)
		return nil
	}
}

func (h *Handler) HandleText(ctx context.Context, ev e.TextEvent) error {
	sess := h.Sessions.Get(ev.UserID, ev.ChatID)

	switch sess.State {
	case sessions.StateIdle:
		// not a command, no flow in progress: stay silent
		return nil

	case sessions.StateAwaitingFilterName:
		// the text is stored verbatim, the upstream search treats it as-is
		h.Sessions.Put(ev.UserID, ev.ChatID, sessions.Session{
			State:      sessions.StateAwaitingResultCount,
			FilterName: ev.Text,
		})
		return h.Gateway.SendText(ctx, ev.ChatID, "How many results?", countKeyboard())

	case sessions.StateAwaitingResultCount:
		count, err := strconv.Atoi(strings.TrimSpace(ev.Text))
		if err != nil || count < 0 {
			return h.Gateway.SendText(ctx, ev.ChatID, "Please enter a valid non-negative number", nil)
		}
		return h.searchFlow(ctx, ev.UserID, ev.ChatID, sess.FilterName, count)

	default:
		return fmt.Errorf("unknown session state: %d", sess.State)
	}
}

func (h *Handler) HandleCallback(ctx context.Context, ev e.CallbackEvent) error {
	cb, err := parseCallback(ev.Data)
	if err != nil {
		h.Log.Debug("ignoring malformed callback", "data", ev.Data, "error", err)
		return nil
	}

	switch cb.Kind {
	case callbackCommand:
		return h.HandleCommand(ctx, e.CommandEvent{
			UserID:  ev.UserID,
			ChatID:  ev.ChatID,
			Command: cb.Command,
		})

	case callbackNumber:
		if cb.Target != CommandSearch {
			h.Log.Debug("number callback for unknown target", "target", cb.Target)
			return nil
		}

		sess := h.Sessions.Get(ev.UserID, ev.ChatID)
		if sess.State != sessions.StateAwaitingResultCount {
			h.Log.Debug("count quick-select without a pending search", "tg_user_id", ev.UserID)
			return nil
		}

		return h.searchFlow(ctx, ev.UserID, ev.ChatID, sess.FilterName, cb.Number)

	case callbackRoll:
		return h.rerollFlow(ctx, ev, cb)

	default:
		return fmt.Errorf("unknown callback kind: %d", cb.Kind)
	}
}

func (h *Handler) randomFlow(ctx context.Context, chatID int64) error {
	item, blob, err := h.Roulettes.Random(ctx)
	if err != nil {
		// low-stakes path, no retry: tell the user and bail
		_ = h.Gateway.SendText(ctx, chatID, "Could not fetch a random roulette, try again later", nil)
		return fmt.Errorf("fetching random roulette: %w", err)
	}

	artifact, err := h.Normalizer.Normalize(blob)
	if err != nil {
		_ = h.Gateway.SendText(ctx, chatID, "The roulette image could not be processed", nil)
		return fmt.Errorf("normalizing random media: %w", err)
	}

	caption := item.Name
	var keyboard e.Keyboard
	if item.HasRolls() {
		board := rolls.NewBoard(item.RollCount, item.RollKind)
		caption = rolls.Caption(item.Name, board)
		keyboard = rollKeyboard(len(board.Values), item.RollKind)
	}

	_, err = h.deliver(ctx, chatID, artifact, caption, keyboard)
	if err != nil {
		return fmt.Errorf("delivering random roulette: %w", err)
	}

	return nil
}

func (h *Handler) searchFlow(ctx context.Context, userID, chatID int64, filterName string, count int) error {
	// the flow is over once triggered, whatever the delivery outcome
	defer h.Sessions.Clear(userID, chatID)

	items, err := h.Roulettes.Search(ctx, filterName, count)
	if err != nil {
		_ = h.Gateway.SendText(ctx, chatID, "Search failed, try again later", nil)
		return fmt.Errorf("searching roulettes: %w", err)
	}

	if len(items) == 0 {
		return h.Gateway.SendText(ctx, chatID, fmt.Sprintf("No roulettes found for %q", filterName), nil)
	}

	delivered := 0
	for _, item := range items {
		if err := h.deliverSearchItem(ctx, chatID, item); err != nil {
			h.Log.Error("delivering search item", "key", item.Key, "name", item.Name, "error", err)
			continue
		}
		delivered++
	}

	return h.Gateway.SendText(
		ctx,
		chatID,
		fmt.Sprintf("Delivered %d of %d roulettes for %q", delivered, len(items), filterName),
		nil,
	)
}

func (h *Handler) deliverSearchItem(ctx context.Context, chatID int64, item e.Item) error {
	blob, err := h.Roulettes.Media(ctx, item)
	if err != nil {
		_ = h.Gateway.SendText(ctx, chatID, fmt.Sprintf("%s: media could not be retrieved", item.Name), nil)
		return fmt.Errorf("fetching media: %w", err)
	}

	artifact, err := h.Normalizer.Normalize(blob)
	if err != nil {
		_ = h.Gateway.SendText(ctx, chatID, fmt.Sprintf("%s: media could not be retrieved", item.Name), nil)
		return fmt.Errorf("normalizing media: %w", err)
	}

	_, err = h.deliver(ctx, chatID, artifact, item.Name, nil)
	if err != nil {
		return fmt.Errorf("delivering artifact: %w", err)
	}

	return nil
}

func (h *Handler) deliver(ctx context.Context, chatID int64, artifact e.NormalizedArtifact, caption string, keyboard e.Keyboard) (int, error) {
	if artifact.Kind == e.ArtifactKindDocument {
		_ = h.Gateway.SendText(ctx, chatID, "The image is too big for Telegram, it will be sent as a PDF", nil)
	}

	return h.Gateway.SendArtifact(ctx, chatID, artifact, caption, keyboard)
}

// rerollFlow rebuilds the board from the callback payload plus the live
// caption, then spins: ten successive caption edits with fresh values for
// the addressed slot(s), the last one sticking. Edit failures are not
// fatal, Telegram rejects edits that leave the caption unchanged.
func (h *Handler) rerollFlow(ctx context.Context, ev e.CallbackEvent, cb callback) error {
	title, board := rolls.ParseCaption(ev.Caption, cb.SlotCount, cb.RollKind)
	keyboard := rollKeyboard(cb.SlotCount, cb.RollKind)

	frames := h.RollFrames
	if frames <= 0 {
		frames = defaultRollFrames
	}
	delay := h.RollFrameDelay
	if delay <= 0 {
		delay = defaultRollFrameDelay
	}

	for frame := 0; frame < frames; frame++ {
		if frame > 0 {
			time.Sleep(delay)
		}

		board.Reroll(cb.Slot)

		err := h.Gateway.EditCaption(ctx, ev.ChatID, ev.MessageID, rolls.Caption(title, board), keyboard)
		if err != nil {
			h.Log.Debug("editing roll caption", "frame", frame, "error", err)
		}
	}

	return nil
}

type ContentClient interface {
	Random(ctx context.Context) (e.Item, e.MediaBlob, error)
	Search(ctx context.Context, name string, maxResults int) ([]e.Item, error)
	Media(ctx context.Context, item e.Item) (e.MediaBlob, error)
}

type Normalizer interface {
	Normalize(blob e.MediaBlob) (e.NormalizedArtifact, error)
}

type Gateway interface {
	SendText(ctx context.Context, chatID int64, text string, keyboard e.Keyboard) error
	SendArtifact(ctx context.Context, chatID int64, artifact e.NormalizedArtifact, caption string, keyboard e.Keyboard) (int, error)
	EditCaption(ctx context.Context, chatID int64, messageID int, caption string, keyboard e.Keyboard) error
}
