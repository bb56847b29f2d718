// Package rolls implements the per-message roll board: labeled numeric
// slots attached to a delivered item. A board is never stored server-side;
// the callback payload carries the slot count and range policy, and the
// current values live in the message caption, from which the board is
// reconstructed on every re-roll.
package rolls

import (
	"math/rand/v2"
	"strconv"
	"strings"

	e "github.com/Kambucha375/faproulette-bot/pkg/entities"
)

// AllSlots addresses every slot at once in a re-roll.
const AllSlots = -1

// MaxSlots bounds a board to the available single-letter labels.
const MaxSlots = 26

type Board struct {
	Kind   e.RollKind
	Values []int

	intn func(n int) int
}

// NewBoard creates a board with count freshly rolled slots. Counts beyond
// MaxSlots are clamped.
func NewBoard(count int, kind e.RollKind) *Board {
	if count > MaxSlots {
		count = MaxSlots
	}
	if count < 0 {
		count = 0
	}

	b := &Board{
		Kind:   kind,
		Values: make([]int, count),
		intn:   rand.IntN,
	}
	b.Reroll(AllSlots)

	return b
}

// Reroll recomputes the addressed slot, or every slot when given AllSlots.
// Slots out of range are ignored.
func (b *Board) Reroll(slot int) {
	if slot == AllSlots {
		for i := range b.Values {
			b.Values[i] = b.roll()
		}
		return
	}

	if slot >= 0 && slot < len(b.Values) {
		b.Values[slot] = b.roll()
	}
}

func (b *Board) roll() int {
	low, high := b.Kind.Range()
	return low + b.intn(high-low+1)
}

// SlotLabel labels slots from 'Z' downward, matching the button labels.
func SlotLabel(slot int) string {
	return string(rune('Z' - slot))
}

// Line renders the board as a single caption line, "Z: 4 | Y: 7".
func (b *Board) Line() string {
	parts := make([]string, len(b.Values))
	for i, v := range b.Values {
		parts[i] = SlotLabel(i) + ": " + strconv.Itoa(v)
	}
	return strings.Join(parts, " | ")
}

// Caption renders a delivered item's caption: the title plus the board line
// when the board has any slots.
func Caption(title string, b *Board) string {
	if b == nil || len(b.Values) == 0 {
		return title
	}
	return title + "\n\n" + b.Line()
}

// ParseCaption splits a live message caption back into title and board.
// The board is rebuilt with count slots of the given kind; values found in
// the caption are kept, missing or malformed ones are freshly rolled.
func ParseCaption(caption string, count int, kind e.RollKind) (title string, board *Board) {
	board = NewBoard(count, kind)

	idx := strings.LastIndex(caption, "\n\n")
	if idx < 0 {
		return caption, board
	}

	title, line := caption[:idx], caption[idx+2:]

	values, ok := parseLine(line, count)
	if !ok {
		// the tail was not a board line, keep the whole caption as title
		return caption, board
	}

	copy(board.Values, values)
	return title, board
}

func parseLine(line string, count int) ([]int, bool) {
	parts := strings.Split(line, " | ")
	if len(parts) != count {
		return nil, false
	}

	values := make([]int, count)
	for i, part := range parts {
		label, num, found := strings.Cut(part, ": ")
		if !found || label != SlotLabel(i) {
			return nil, false
		}

		v, err := strconv.Atoi(num)
		if err != nil {
			return nil, false
		}
		values[i] = v
	}

	return values, true
}
