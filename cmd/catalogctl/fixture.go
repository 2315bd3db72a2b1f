package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"storefront/internal/variant"

	"github.com/shopspring/decimal"
)

//go:embed fixtures/pneumatics.json
var fixturesFS embed.FS

const defaultFixture = "fixtures/pneumatics.json"

type catalogFixture struct {
	Categories []fixtureCategory `json:"categories"`
}

type fixtureCategory struct {
	Name     string           `json:"name"`
	Slug     string           `json:"slug"`
	Products []fixtureProduct `json:"products"`
}

type fixtureProduct struct {
	Name           string                 `json:"name"`
	Slug           string                 `json:"slug"`
	Description    string                 `json:"description"`
	MRP            decimal.Decimal        `json:"mrp"`
	SellingPrice   decimal.Decimal        `json:"selling_price"`
	VariantConfig  []variant.RawAttribute `json:"variant_config"`
	Specifications map[string]string      `json:"specifications"`
	Variants       []fixtureVariant       `json:"variants"`
}

type fixtureVariant struct {
	SKU          string            `json:"sku"`
	Name         *string           `json:"name"`
	Attributes   map[string]string `json:"attributes"`
	MRP          decimal.Decimal   `json:"mrp"`
	SellingPrice decimal.Decimal   `json:"selling_price"`
	Stock        *int              `json:"stock"`
}

// loadFixture reads a catalog fixture from disk, or the bundled pneumatics catalog when path is empty
func loadFixture(path string) (*catalogFixture, error) {
	var (
		raw []byte
		err error
	)
	if path == "" {
		raw, err = fixturesFS.ReadFile(defaultFixture)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	var fixture catalogFixture
	if err := json.Unmarshal(raw, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &fixture, nil
}

// findProduct returns the fixture product with the given slug
func (f *catalogFixture) findProduct(slug string) (*fixtureProduct, bool) {
	for i := range f.Categories {
		for j := range f.Categories[i].Products {
			if f.Categories[i].Products[j].Slug == slug {
				return &f.Categories[i].Products[j], true
			}
		}
	}
	return nil, false
}

// items converts the fixture variants for the resolver, keyed by SKU
func (p *fixtureProduct) items() []variant.Item {
	items := make([]variant.Item, 0, len(p.Variants))
	for _, v := range p.Variants {
		items = append(items, variant.Item{ID: v.SKU, Attributes: variant.Attributes(v.Attributes), Stock: v.Stock})
	}
	return items
}
