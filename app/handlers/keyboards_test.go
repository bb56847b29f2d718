package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"

	e "github.com/Kambucha375/faproulette-bot/pkg/entities"
	"github.com/Kambucha375/faproulette-bot/pkg/rolls"
)

func TestParseCallback_Command(t *testing.T) {
	cb, err := parseCallback(commandCallback(CommandRandom))
	require.NoError(t, err)
	require.Equal(t, callbackCommand, cb.Kind)
	require.Equal(t, CommandRandom, cb.Command)
}

func TestParseCallback_Number(t *testing.T) {
	cb, err := parseCallback(numberCallback(CommandSearch, 10))
	require.NoError(t, err)
	require.Equal(t, callbackNumber, cb.Kind)
	require.Equal(t, CommandSearch, cb.Target)
	require.Equal(t, 10, cb.Number)
}

func TestParseCallback_Roll(t *testing.T) {
	cb, err := parseCallback(rollCallback(rolls.AllSlots, 4, e.RollKindPercent))
	require.NoError(t, err)
	require.Equal(t, callbackRoll, cb.Kind)
	require.Equal(t, rolls.AllSlots, cb.Slot)
	require.Equal(t, 4, cb.SlotCount)
	require.Equal(t, e.RollKindPercent, cb.RollKind)
}

func TestParseCallback_Malformed(t *testing.T) {
	for _, data := range []string{
		"",
		"noprefix",
		"com:",
		"num:search",
		"num:search:many",
		"roll:1:2",
		"roll:a:b:c",
		"xyz:1",
	} {
		_, err := parseCallback(data)
		require.Error(t, err, "payload %q must be rejected", data)
	}
}

func TestCountKeyboard_QuickCounts(t *testing.T) {
	kb := countKeyboard()
	require.Len(t, kb, 1)
	require.Len(t, kb[0], 4)

	require.Equal(t, "1", kb[0][0].Label)
	require.Equal(t, "10", kb[0][3].Label)
	require.Equal(t, "num:search:10", kb[0][3].Data)
}

func TestRollKeyboard_Layout(t *testing.T) {
	kb := rollKeyboard(5, e.RollKindDigit)

	require.Equal(t, "reroll all", kb[0][0].Label)
	require.Equal(t, "roll:-1:5:0", kb[0][0].Data)

	// 5 slot buttons in rows of 4
	require.Len(t, kb, 3)
	require.Len(t, kb[1], 4)
	require.Len(t, kb[2], 1)
	require.Equal(t, "reroll Z", kb[1][0].Label)
	require.Equal(t, "roll:0:5:0", kb[1][0].Data)
	require.Equal(t, "reroll V", kb[2][0].Label)
}
