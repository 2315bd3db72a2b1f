package variant

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Candidate is anything the engine can resolve against: a concrete attribute assignment with a stock level
type Candidate interface {
	AttributeMap() Attributes
	StockLevel() *int
}

// Orderable reports whether a candidate can be bought: stock is untracked or positive
func Orderable(c Candidate) bool {
	stock := c.StockLevel()
	return stock == nil || *stock > 0
}

// Item is the minimal Candidate, used where no storage model is involved
type Item struct {
	ID         string     `json:"id"`
	Attributes Attributes `json:"attributes"`
	Stock      *int       `json:"stock,omitempty"`
}

func (i Item) AttributeMap() Attributes { return i.Attributes }
func (i Item) StockLevel() *int         { return i.Stock }

// BuildOptionSets collects, for each schema key, the distinct non-empty values seen across variants.
// Keys with no values are omitted.
func BuildOptionSets[V Candidate](variants []V, schema Schema) map[string][]string {
	sets := make(map[string][]string)

	for _, def := range schema {
		if _, done := sets[def.Key]; done {
			continue
		}

		seen := make(map[string]struct{})
		var values []string
		for _, v := range variants {
			val, ok := v.AttributeMap().Get(def.Key)
			if !ok {
				continue
			}
			if _, dup := seen[val]; dup {
				continue
			}
			seen[val] = struct{}{}
			values = append(values, val)
		}

		if len(values) == 0 {
			continue
		}
		sortValues(values)
		sets[def.Key] = values
	}

	return sets
}

// sortValues orders numerically when every value parses as a number, lexically otherwise
func sortValues(values []string) {
	sort.Strings(values)
	if !allNumeric(values) {
		return
	}
	sort.SliceStable(values, func(i, j int) bool {
		a, _ := strconv.ParseFloat(values[i], 64)
		b, _ := strconv.ParseFloat(values[j], 64)
		return a < b
	})
}

func allNumeric(values []string) bool {
	for _, v := range values {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
	}
	return true
}

// FindVariant returns the first variant whose attributes match every pair in filter
func FindVariant[V Candidate](variants []V, filter Selection) (V, bool) {
	for _, v := range variants {
		if v.AttributeMap().Matches(filter) {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// ResolveActive picks the variant to render: an exact match for filter, else the first variant.
// It returns false only when variants is empty.
func ResolveActive[V Candidate](variants []V, filter Selection) (V, bool) {
	if v, ok := FindVariant(variants, filter); ok {
		return v, true
	}
	if len(variants) == 0 {
		var zero V
		return zero, false
	}
	return variants[0], true
}

// MatchesAny reports whether attrs carries, for every filtered key, one of the allowed values
func MatchesAny(attrs Attributes, filters map[string][]string) bool {
	for key, allowed := range filters {
		val, ok := attrs.Get(key)
		if !ok {
			return false
		}
		found := false
		for _, a := range allowed {
			if a == val {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Facet is one sidebar filter group
type Facet struct {
	Key    string   `json:"key"`
	Label  string   `json:"label"`
	Values []string `json:"values"`
}

// FacetSource is one product's contribution to a facet aggregation
type FacetSource[V Candidate] struct {
	Schema   Schema
	Variants []V
}

// AggregateFacets unions attribute keys and values across the variants of several products.
// Labels come from the first schema declaring the key, falling back to a label derived from the key.
func AggregateFacets[V Candidate](sources []FacetSource[V]) []Facet {
	labels := make(map[string]string)
	values := make(map[string]map[string]struct{})

	for _, src := range sources {
		for _, def := range src.Schema {
			if _, ok := labels[def.Key]; !ok {
				labels[def.Key] = def.Label
			}
		}
		for _, v := range src.Variants {
			for key, val := range v.AttributeMap() {
				if val == "" {
					continue
				}
				if values[key] == nil {
					values[key] = make(map[string]struct{})
				}
				values[key][val] = struct{}{}
			}
		}
	}

	facets := make([]Facet, 0, len(values))
	for key, set := range values {
		vals := make([]string, 0, len(set))
		for v := range set {
			vals = append(vals, v)
		}
		sortValues(vals)

		label := labels[key]
		if label == "" {
			label = LabelFromKey(key)
		}
		facets = append(facets, Facet{Key: key, Label: label, Values: vals})
	}

	sort.Slice(facets, func(i, j int) bool { return facets[i].Key < facets[j].Key })
	return facets
}

// LabelFromKey turns port_size into Port Size
func LabelFromKey(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
