package variant

import (
	"fmt"
	"regexp"
	"strings"
)

// ValueType is the input kind of a variant attribute
type ValueType string

const (
	ValueTypeText   ValueType = "text"
	ValueTypeNumber ValueType = "number"
	ValueTypeSelect ValueType = "select"
)

// AttributeDefinition is one configured axis of variation for a product
type AttributeDefinition struct {
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	Unit      string    `json:"unit"`
	Required  bool      `json:"required"`
	ValueType ValueType `json:"type"`
	Options   []string  `json:"options"`
}

// RawAttribute is an attribute definition as submitted by an editor, before normalization.
// Options is loosely typed because editors send numbers and strings interchangeably.
type RawAttribute struct {
	Key      string        `json:"key"`
	Label    string        `json:"label"`
	Unit     string        `json:"unit"`
	Required *bool         `json:"required"`
	Type     string        `json:"type"`
	Options  []interface{} `json:"options"`
}

// Schema is the ordered attribute configuration of a single product
type Schema []AttributeDefinition

// Keys returns attribute keys in declaration order
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for _, def := range s {
		keys = append(keys, def.Key)
	}
	return keys
}

// Lookup returns the first definition declared under key
func (s Schema) Lookup(key string) (AttributeDefinition, bool) {
	for _, def := range s {
		if def.Key == key {
			return def, true
		}
	}
	return AttributeDefinition{}, false
}

// RequiredKeys returns the keys every new variant must supply
func (s Schema) RequiredKeys() []string {
	var keys []string
	for _, def := range s {
		if def.Required {
			keys = append(keys, def.Key)
		}
	}
	return keys
}

func parseValueType(raw string) ValueType {
	switch ValueType(raw) {
	case ValueTypeText, ValueTypeNumber, ValueTypeSelect:
		return ValueType(raw)
	default:
		return ValueTypeText
	}
}

// Normalize turns editor input into usable attribute definitions.
// Entries missing a key or label, and select entries without options, are dropped silently.
// Duplicate keys are kept; see DuplicateKeys.
func Normalize(raw []RawAttribute) Schema {
	defs := make(Schema, 0, len(raw))

	for _, attr := range raw {
		key := strings.TrimSpace(attr.Key)
		label := strings.TrimSpace(attr.Label)
		if key == "" || label == "" {
			continue
		}

		valueType := parseValueType(attr.Type)

		options := make([]string, 0, len(attr.Options))
		for _, o := range attr.Options {
			if o == nil {
				continue
			}
			if s := strings.TrimSpace(fmt.Sprint(o)); s != "" {
				options = append(options, s)
			}
		}

		if valueType == ValueTypeSelect && len(options) == 0 {
			continue
		}

		defs = append(defs, AttributeDefinition{
			Key:       key,
			Label:     label,
			Unit:      strings.TrimSpace(attr.Unit),
			Required:  attr.Required == nil || *attr.Required,
			ValueType: valueType,
			Options:   options,
		})
	}

	return defs
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	invalidKeyRun = regexp.MustCompile(`[^a-z0-9_]`)
)

// NormalizeKey canonicalizes an attribute key to [a-z0-9_]+
func NormalizeKey(value string) string {
	key := strings.TrimSpace(strings.ToLower(value))
	key = whitespaceRun.ReplaceAllString(key, "_")
	return invalidKeyRun.ReplaceAllString(key, "")
}

// DuplicateKeys reports keys declared more than once, in first-seen order
func DuplicateKeys(raw []RawAttribute) []string {
	seen := make(map[string]int, len(raw))
	var dups []string

	for _, attr := range raw {
		key := strings.TrimSpace(attr.Key)
		if key == "" {
			continue
		}
		seen[key]++
		if seen[key] == 2 {
			dups = append(dups, key)
		}
	}

	return dups
}
