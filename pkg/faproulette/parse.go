package faproulette

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// searchRow is one normalized search result. The API returns rows as
// positional arrays: index 1 is the display name, index 5 the media key.
type searchRow struct {
	Name string
	Key  string
}

const (
	rowNameIndex = 1
	rowKeyIndex  = 5
)

// decodeSearchRows normalizes the three observed response shapes into one
// ordered row list:
//
//   - a bare array of rows
//   - an object whose rouletteData field is a JSON-encoded string holding
//     the array
//   - an object whose rouletteData field is the array itself
func decodeSearchRows(body []byte) ([]searchRow, error) {
	raw := json.RawMessage(bytes.TrimSpace(body))

	if !startsWith(raw, '[') {
		var wrapper struct {
			RouletteData json.RawMessage `json:"rouletteData"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, fmt.Errorf("unmarshaling wrapper object: %w", err)
		}

		switch {
		case startsWith(wrapper.RouletteData, '"'):
			// double-encoded: the field is a string containing the array
			var encoded string
			if err := json.Unmarshal(wrapper.RouletteData, &encoded); err != nil {
				return nil, fmt.Errorf("unmarshaling encoded row string: %w", err)
			}
			raw = json.RawMessage(encoded)
		case startsWith(wrapper.RouletteData, '['):
			raw = wrapper.RouletteData
		case len(wrapper.RouletteData) == 0:
			return nil, nil
		default:
			return nil, fmt.Errorf("unexpected rouletteData shape: %.20s", wrapper.RouletteData)
		}
	}

	var rawRows []json.RawMessage
	if err := json.Unmarshal(raw, &rawRows); err != nil {
		return nil, fmt.Errorf("unmarshaling row list: %w", err)
	}

	rows := make([]searchRow, 0, len(rawRows))
	for i, rr := range rawRows {
		row, err := decodeRow(rr)
		if err != nil {
			return nil, fmt.Errorf("decoding row %d: %w", i, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func decodeRow(raw json.RawMessage) (searchRow, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var fields []any
	if err := dec.Decode(&fields); err != nil {
		return searchRow{}, fmt.Errorf("unmarshaling row fields: %w", err)
	}

	if len(fields) <= rowKeyIndex {
		return searchRow{}, fmt.Errorf("row has %d fields, want at least %d", len(fields), rowKeyIndex+1)
	}

	name, ok := fields[rowNameIndex].(string)
	if !ok {
		return searchRow{}, fmt.Errorf("row name is %T, want string", fields[rowNameIndex])
	}

	var key string
	switch v := fields[rowKeyIndex].(type) {
	case string:
		key = v
	case json.Number:
		key = v.String()
	default:
		return searchRow{}, fmt.Errorf("row media key is %T, want string or number", v)
	}

	return searchRow{Name: name, Key: key}, nil
}

func startsWith(raw json.RawMessage, b byte) bool {
	return len(raw) > 0 && raw[0] == b
}
