package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a backend identifier. The backend may send it as a JSON number or a
// JSON string; canonical integers are sent back as numbers, anything else
// (leading zeros, signs, UUIDs) as strings.
type ID string

func (id ID) String() string {
	return string(id)
}

func (id ID) IsZero() bool {
	return id == ""
}

// Short returns the first n characters, used for compact labels.
func (id ID) Short(n int) string {
	if len(id) <= n {
		return string(id)
	}
	return string(id[:n])
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}
