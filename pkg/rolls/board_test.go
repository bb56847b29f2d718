package rolls

import (
	"testing"

	"github.com/stretchr/testify/require"

	e "github.com/Kambucha375/faproulette-bot/pkg/entities"
)

func TestNewBoard_ValuesStayInRange(t *testing.T) {
	kinds := []e.RollKind{e.RollKindDigit, e.RollKindDie, e.RollKindPercent}

	for _, kind := range kinds {
		low, high := kind.Range()
		for i := 0; i < 50; i++ {
			b := NewBoard(5, kind)
			for _, v := range b.Values {
				require.GreaterOrEqual(t, v, low)
				require.LessOrEqual(t, v, high)
			}
		}
	}
}

func TestReroll_SingleSlotOnly(t *testing.T) {
	b := NewBoard(3, e.RollKindDigit)

	// deterministic rolls from here on
	next := 7
	b.intn = func(int) int { v := next; next = 0; return v }

	before := append([]int(nil), b.Values...)
	b.Reroll(1)

	require.Equal(t, before[0], b.Values[0])
	require.Equal(t, 7, b.Values[1])
	require.Equal(t, before[2], b.Values[2])
}

func TestReroll_AllSlots(t *testing.T) {
	b := NewBoard(3, e.RollKindDie)
	b.intn = func(int) int { return 0 }

	b.Reroll(AllSlots)
	require.Equal(t, []int{1, 1, 1}, b.Values)
}

func TestSlotLabels_FromZDownward(t *testing.T) {
	require.Equal(t, "Z", SlotLabel(0))
	require.Equal(t, "Y", SlotLabel(1))
	require.Equal(t, "X", SlotLabel(2))
}

func TestCaption_RoundTrip(t *testing.T) {
	b := NewBoard(3, e.RollKindDigit)
	b.intn = func(int) int { return 0 }
	b.Values = []int{4, 7, 2}

	caption := Caption("My Roulette", b)
	require.Equal(t, "My Roulette\n\nZ: 4 | Y: 7 | X: 2", caption)

	title, parsed := ParseCaption(caption, 3, e.RollKindDigit)
	require.Equal(t, "My Roulette", title)
	require.Equal(t, []int{4, 7, 2}, parsed.Values)
}

func TestParseCaption_TitleWithBlankLines(t *testing.T) {
	b := NewBoard(2, e.RollKindDigit)
	b.Values = []int{1, 2}

	title := "Line one\n\nLine two"
	caption := Caption(title, b)

	gotTitle, parsed := ParseCaption(caption, 2, e.RollKindDigit)
	require.Equal(t, title, gotTitle)
	require.Equal(t, []int{1, 2}, parsed.Values)
}

func TestParseCaption_NoBoardLine(t *testing.T) {
	title, board := ParseCaption("Just a name", 2, e.RollKindDigit)
	require.Equal(t, "Just a name", title)
	require.Len(t, board.Values, 2)
}

func TestCaption_NoSlots(t *testing.T) {
	require.Equal(t, "Plain", Caption("Plain", nil))
	require.Equal(t, "Plain", Caption("Plain", NewBoard(0, e.RollKindDigit)))
}

func TestNewBoard_ClampsCount(t *testing.T) {
	require.Len(t, NewBoard(100, e.RollKindDigit).Values, MaxSlots)
	require.Len(t, NewBoard(-1, e.RollKindDigit).Values, 0)
}
