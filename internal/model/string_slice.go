package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringSlice stores a []string as a JSON array in a text column
type StringSlice []string

// Value implements the driver.Valuer interface.
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}

	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, fmt.Errorf("failed to encode StringSlice, %w", err)
	}

	return string(b), nil
}

// Scan implements the sql.Scanner interface.
func (s *StringSlice) Scan(value any) error {
	var raw []byte

	switch v := value.(type) {
	case nil:
		*s = StringSlice{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("failed to scan StringSlice, %v", value)
	}

	if len(raw) == 0 {
		*s = StringSlice{}
		return nil
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode StringSlice, %w", err)
	}

	*s = out
	return nil
}
