package backend

import (
	"bytes"
	"encoding/json"
	"strings"

	"lifecoo/internal/domain"
)

type interpretWire struct {
	Origin      lenientString `json:"origin"`
	Destination lenientString `json:"destination"`
	DatesWindow lenientString `json:"datesWindow"`
	Travellers  lenientString `json:"travellers"`
	Preferences lenientString `json:"preferences"`
	Notes       lenientString `json:"notes"`
}

func (w interpretWire) result() domain.InterpretResult {
	return domain.InterpretResult{
		Origin:      string(w.Origin),
		Destination: string(w.Destination),
		DatesWindow: string(w.DatesWindow),
		Travellers:  string(w.Travellers),
		Preferences: string(w.Preferences),
		Notes:       string(w.Notes),
	}
}

// lenientString accepts strings, numbers and booleans; null and anything else decode to "".
type lenientString string

func (s *lenientString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	switch data[0] {
	case '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = lenientString(strings.TrimSpace(text))
	case '{', '[':
		*s = ""
	default:
		*s = lenientString(string(data))
	}
	return nil
}
