package variant

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Attributes maps attribute keys to the concrete values a variant carries.
// Keys are not checked against any schema; a variant may hold keys its product no longer declares.
type Attributes map[string]string

// Get returns the value stored under key, reporting false when it is absent or empty
func (a Attributes) Get(key string) (string, bool) {
	v, ok := a[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Matches reports whether every key/value in filter is present in a with the same value
func (a Attributes) Matches(filter map[string]string) bool {
	for k, want := range filter {
		got, ok := a[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Clone returns an independent copy
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Value implements driver.Valuer for JSONB columns
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string(a))
}

// Scan implements sql.Scanner for JSONB columns
func (a *Attributes) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*a = Attributes{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported attributes column type %T", src)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode attributes: %w", err)
	}

	out := make(Attributes, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	*a = out
	return nil
}

// Value implements driver.Valuer so a schema can be stored as a JSONB array
func (s Schema) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]AttributeDefinition(s))
}

// Scan implements sql.Scanner for JSONB columns
func (s *Schema) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = Schema{}
		return nil
	case []byte:
		return json.Unmarshal(v, (*[]AttributeDefinition)(s))
	case string:
		return json.Unmarshal([]byte(v), (*[]AttributeDefinition)(s))
	default:
		return errors.New("unsupported schema column type")
	}
}
