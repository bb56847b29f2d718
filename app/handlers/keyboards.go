package handlers

import (
	"fmt"
	"strconv"
	"strings"

	e "github.com/Kambucha375/faproulette-bot/pkg/entities"
	"github.com/Kambucha375/faproulette-bot/pkg/rolls"
)

// Callback payloads are small colon-separated strings:
//
//	com:<command>             menu button pressed
//	num:<target>:<n>          quick-select number for a pending flow
//	roll:<slot>:<count>:<kind> re-roll one slot (-1 for all) of a board
const (
	prefixCommand = "com"
	prefixNumber  = "num"
	prefixRoll    = "roll"
)

type callbackKind int

const (
	callbackCommand callbackKind = iota
	callbackNumber
	callbackRoll
)

type callback struct {
	Kind callbackKind

	Command string

	Target string
	Number int

	Slot      int
	SlotCount int
	RollKind  e.RollKind
}

func commandCallback(command string) string {
	return prefixCommand + ":" + command
}

func numberCallback(target string, n int) string {
	return fmt.Sprintf("%s:%s:%d", prefixNumber, target, n)
}

func rollCallback(slot, count int, kind e.RollKind) string {
	return fmt.Sprintf("%s:%d:%d:%d", prefixRoll, slot, count, int(kind))
}

func parseCallback(data string) (callback, error) {
	prefix, rest, found := strings.Cut(data, ":")
	if !found {
		return callback{}, fmt.Errorf("callback payload without prefix: %q", data)
	}

	switch prefix {
	case prefixCommand:
		if rest == "" {
			return callback{}, fmt.Errorf("empty command callback")
		}
		return callback{Kind: callbackCommand, Command: rest}, nil

	case prefixNumber:
		target, num, found := strings.Cut(rest, ":")
		if !found {
			return callback{}, fmt.Errorf("malformed number callback: %q", data)
		}
		n, err := strconv.Atoi(num)
		if err != nil {
			return callback{}, fmt.Errorf("parsing callback number: %w", err)
		}
		return callback{Kind: callbackNumber, Target: target, Number: n}, nil

	case prefixRoll:
		parts := strings.Split(rest, ":")
		if len(parts) != 3 {
			return callback{}, fmt.Errorf("malformed roll callback: %q", data)
		}
		slot, err := strconv.Atoi(parts[0])
		if err != nil {
			return callback{}, fmt.Errorf("parsing roll slot: %w", err)
		}
		count, err := strconv.Atoi(parts[1])
		if err != nil {
			return callback{}, fmt.Errorf("parsing roll slot count: %w", err)
		}
		kind, err := strconv.Atoi(parts[2])
		if err != nil {
			return callback{}, fmt.Errorf("parsing roll kind: %w", err)
		}
		return callback{
			Kind:      callbackRoll,
			Slot:      slot,
			SlotCount: count,
			RollKind:  e.RollKindFromTag(kind),
		}, nil

	default:
		return callback{}, fmt.Errorf("unknown callback prefix: %q", prefix)
	}
}

func menuKeyboard() e.Keyboard {
	return e.Keyboard{
		{
			{Label: "menu", Data: commandCallback(CommandMenu)},
			{Label: "random", Data: commandCallback(CommandRandom)},
			{Label: "search", Data: commandCallback(CommandSearch)},
		},
	}
}

var quickCounts = []int{1, 3, 5, 10}

func countKeyboard() e.Keyboard {
	row := make([]e.Button, 0, len(quickCounts))
	for _, n := range quickCounts {
		row = append(row, e.Button{
			Label: strconv.Itoa(n),
			Data:  numberCallback(CommandSearch, n),
		})
	}
	return e.Keyboard{row}
}

const rollButtonsPerRow = 4

func rollKeyboard(count int, kind e.RollKind) e.Keyboard {
	kb := e.Keyboard{
		{{Label: "reroll all", Data: rollCallback(rolls.AllSlots, count, kind)}},
	}

	var row []e.Button
	for slot := 0; slot < count; slot++ {
		row = append(row, e.Button{
			Label: "reroll " + rolls.SlotLabel(slot),
			Data:  rollCallback(slot, count, kind),
		})
		if len(row) == rollButtonsPerRow {
			kb = append(kb, row)
			row = nil
		}
	}
	if len(row) > 0 {
		kb = append(kb, row)
	}

	return kb
}
