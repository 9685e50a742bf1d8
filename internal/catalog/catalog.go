// Package catalog holds the built-in commodity catalog.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nvraj/mandi/internal/core"
)

// Default returns the built-in products.
func Default() []core.Product {
	return []core.Product{
		{
			Name:            "Alphonso Mangoes",
			Category:        "Mangoes",
			Quantity:        100,
			QualityGrade:    "A",
			Origin:          "Ratnagiri",
			BaseMarketPrice: 18000,
			Attributes:      map[string]any{"ripeness": "optimal", "export_grade": true},
		},
		{
			Name:            "Kesar Mangoes",
			Category:        "Mangoes",
			Quantity:        150,
			QualityGrade:    "B",
			Origin:          "Gujarat",
			BaseMarketPrice: 15000,
			Attributes:      map[string]any{"ripeness": "semi-ripe", "export_grade": false},
		},
		{
			Name:            "Coffee",
			Category:        "Coffee",
			Quantity:        100,
			QualityGrade:    "A",
			Origin:          "Chikmagalur",
			BaseMarketPrice: 15000,
			Attributes:      map[string]any{"variety": "Arabica", "export_grade": true},
		},
		{
			Name:            "Turmeric",
			Category:        "Turmeric",
			Quantity:        100,
			QualityGrade:    "A",
			Origin:          "Erode",
			BaseMarketPrice: 9500,
			Attributes:      map[string]any{"variety": "Salem", "export_grade": false},
		},
		{
			Name:            "Cardamom",
			Category:        "Cardamom",
			Quantity:        50,
			QualityGrade:    "A",
			Origin:          "Idukki",
			BaseMarketPrice: 27500,
			Attributes:      map[string]any{"variety": "Green", "export_grade": true},
		},
	}
}

// Catalog is a named set of products.
type Catalog struct {
	products []core.Product
}

// New creates a catalog from the built-ins plus any extra products.
// Extras with a name matching a built-in replace it.
func New(extras ...core.Product) *Catalog {
	products := Default()
	for _, extra := range extras {
		replaced := false
		for i, p := range products {
			if strings.EqualFold(p.Name, extra.Name) {
				products[i] = extra
				replaced = true
				break
			}
		}
		if !replaced {
			products = append(products, extra)
		}
	}
	return &Catalog{products: products}
}

// Get returns the product with the given name (case-insensitive).
func (c *Catalog) Get(name string) (core.Product, error) {
	for _, p := range c.products {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return core.Product{}, fmt.Errorf("product not found: %s", name)
}

// List returns all products.
func (c *Catalog) List() []core.Product {
	out := make([]core.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// LoadFile reads extra products from a YAML file.
func LoadFile(path string) ([]core.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read product file: %w", err)
	}

	var products []core.Product
	if err := yaml.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse product file: %w", err)
	}
	return products, nil
}
