package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// JSONMap is a free-form JSON object persisted as a single column. GORM has
// no first-class cross-dialect JSON type in this pack (sqlite and postgres
// disagree on native JSON support), so it is stored as TEXT/JSONB via this
// Scanner/Valuer pair, matching the "metadata JSON" columns named throughout
// the data model.
type JSONMap map[string]interface{}

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("models: JSONMap.Scan: unsupported source type")
	}

	if len(raw) == 0 {
		*m = JSONMap{}
		return nil
	}

	return json.Unmarshal(raw, m)
}

// StringList is an ordered list of strings persisted as a JSON array,
// used for WorkflowContext.Artifacts/Tags and similar repeated-string
// columns.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("models: StringList.Scan: unsupported source type")
	}

	if len(strings.TrimSpace(string(raw))) == 0 {
		*l = StringList{}
		return nil
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*l = out
	return nil
}
