package entities

// CommandEvent is a slash-command or a menu-button press.
type CommandEvent struct {
	UserID  int64
	ChatID  int64
	Command string
}

// TextEvent is a free-text message, routed to the active conversation
// session if one exists.
type TextEvent struct {
	UserID int64
	ChatID int64
	Text   string
}

// CallbackEvent is an inline-button press. Caption carries the current
// caption of the message the button is attached to, so roll boards can be
// reconstructed without any server-side state.
type CallbackEvent struct {
	UserID    int64
	ChatID    int64
	MessageID int
	Data      string
	Caption   string
}

// Button is one inline keyboard button. Data is a callback payload in the
// com/num/roll format.
type Button struct {
	Label string
	Data  string
}

// Keyboard is an inline keyboard, rows of buttons.
type Keyboard [][]Button
