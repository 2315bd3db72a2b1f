package variant

import (
	"net/url"
	"strings"
)

// Selection is the visitor's in-progress choice, one value per attribute key
type Selection map[string]string

// With returns a copy of s with key set to value
func (s Selection) With(key, value string) Selection {
	out := make(Selection, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[key] = value
	return out
}

// SelectionFromQuery keeps the query parameters that name a schema key and carry a value.
// Anything else in the query is ignored.
func SelectionFromQuery(schema Schema, query url.Values) Selection {
	sel := make(Selection)
	for _, def := range schema {
		if v := query.Get(def.Key); v != "" {
			sel[def.Key] = v
		}
	}
	return sel
}

// DeriveSelection starts from the active variant's own values and lets explicit query values win
func DeriveSelection(schema Schema, active Attributes, query url.Values) Selection {
	sel := make(Selection)
	for _, def := range schema {
		if v, ok := active.Get(def.Key); ok {
			sel[def.Key] = v
		}
		if v := query.Get(def.Key); v != "" {
			sel[def.Key] = v
		}
	}
	return sel
}

// Resolver answers picker questions for one product snapshot. It never mutates its inputs.
type Resolver[V Candidate] struct {
	schema    Schema
	variants  []V
	selection Selection
}

// NewResolver builds a resolver over variants in their stable storage order
func NewResolver[V Candidate](schema Schema, variants []V, selection Selection) *Resolver[V] {
	if selection == nil {
		selection = Selection{}
	}
	return &Resolver[V]{
		schema:    schema,
		variants:  variants,
		selection: selection,
	}
}

// Selection returns a copy of the current selection
func (r *Resolver[V]) Selection() Selection {
	out := make(Selection, len(r.selection))
	for k, v := range r.selection {
		out[k] = v
	}
	return out
}

// Exists reports whether some orderable variant carries value for key, regardless of the rest of the selection
func (r *Resolver[V]) Exists(key, value string) bool {
	for _, v := range r.variants {
		got, ok := v.AttributeMap()[key]
		if ok && got == value && Orderable(v) {
			return true
		}
	}
	return false
}

// Compatible reports whether some orderable variant matches the current selection with key overridden to value
func (r *Resolver[V]) Compatible(key, value string) bool {
	candidate := r.selection.With(key, value)
	for _, v := range r.variants {
		if v.AttributeMap().Matches(candidate) && Orderable(v) {
			return true
		}
	}
	return false
}

// PickBestVariant finds the orderable variant carrying value for key that keeps the most of the
// current selection on the other schema keys. Ties go to the earliest variant.
func (r *Resolver[V]) PickBestVariant(key, value string) (V, bool) {
	var (
		best      V
		bestScore = -1
	)

	for _, v := range r.variants {
		attrs := v.AttributeMap()
		if got, ok := attrs[key]; !ok || got != value || !Orderable(v) {
			continue
		}

		score := 0
		for _, def := range r.schema {
			if def.Key == key {
				continue
			}
			cur, ok := r.selection[def.Key]
			if !ok || cur == "" {
				continue
			}
			if got, ok := attrs[def.Key]; ok && got == cur {
				score++
			}
		}

		if score > bestScore {
			best, bestScore = v, score
		}
	}

	return best, bestScore >= 0
}

// OptionState is how a picker should render one option button
type OptionState string

const (
	OptionSelected    OptionState = "selected"
	OptionAvailable   OptionState = "available"
	OptionAdjust      OptionState = "adjust"
	OptionUnavailable OptionState = "unavailable"
)

// OptionStatus is one rendered option button
type OptionStatus struct {
	Value string      `json:"value"`
	State OptionState `json:"state"`
}

// AttributeOptions groups an attribute definition with its rendered options
type AttributeOptions struct {
	Key     string         `json:"key"`
	Label   string         `json:"label"`
	Unit    string         `json:"unit,omitempty"`
	Options []OptionStatus `json:"options"`
}

// OptionStates classifies every observed option of every schema attribute
func (r *Resolver[V]) OptionStates() []AttributeOptions {
	sets := BuildOptionSets(r.variants, r.schema)

	out := make([]AttributeOptions, 0, len(sets))
	emitted := make(map[string]bool, len(sets))
	for _, def := range r.schema {
		values, ok := sets[def.Key]
		if !ok || emitted[def.Key] {
			continue
		}
		emitted[def.Key] = true

		group := AttributeOptions{
			Key:     def.Key,
			Label:   def.Label,
			Unit:    def.Unit,
			Options: make([]OptionStatus, 0, len(values)),
		}
		for _, val := range values {
			group.Options = append(group.Options, OptionStatus{
				Value: val,
				State: r.classify(def.Key, val),
			})
		}
		out = append(out, group)
	}

	return out
}

func (r *Resolver[V]) classify(key, value string) OptionState {
	switch {
	case r.selection[key] == value:
		return OptionSelected
	case !r.Exists(key, value):
		return OptionUnavailable
	case r.Compatible(key, value):
		return OptionAvailable
	default:
		return OptionAdjust
	}
}

// Navigation is where a picker click should lead
type Navigation[V Candidate] struct {
	URL      string `json:"url"`
	Variant  V      `json:"variant,omitempty"`
	Resolved bool   `json:"resolved"`
}

// Navigate resolves a click on key=value. Without a best match the URL is built from the raw selection.
func (r *Resolver[V]) Navigate(productPath, key, value string) Navigation[V] {
	if v, ok := r.PickBestVariant(key, value); ok {
		return Navigation[V]{
			URL:      BuildURL(productPath, v.AttributeMap(), r.schema),
			Variant:  v,
			Resolved: true,
		}
	}

	raw := make(Attributes)
	for k, v := range r.selection.With(key, value) {
		raw[k] = v
	}
	return Navigation[V]{URL: BuildURL(productPath, raw, r.schema)}
}

// BuildURL is the canonical address of an attribute assignment: one query parameter per schema key
// carrying a value, in schema order.
func BuildURL(productPath string, attrs Attributes, schema Schema) string {
	var (
		b    strings.Builder
		seen = make(map[string]bool, len(schema))
	)

	for _, def := range schema {
		if seen[def.Key] {
			continue
		}
		seen[def.Key] = true

		val, ok := attrs.Get(def.Key)
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(def.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(val))
	}

	if b.Len() == 0 {
		return productPath
	}
	return productPath + "?" + b.String()
}
