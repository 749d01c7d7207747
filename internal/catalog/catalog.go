package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Catalog holds products, stores and categories. It is not safe for
// concurrent mutation; the storefront serializes writers.
type Catalog struct {
	stores       []Store
	storeIndex   map[string]int
	products     []Product
	productIndex map[string]int
	categories   []Category
}

// New builds a catalog. Products whose store is unknown, whose id repeats an
// earlier product, or whose price is negative are dropped. A nil or empty
// categories list means categories are derived from available products.
func New(stores []Store, products []Product, categories []Category) *Catalog {
	c := &Catalog{
		storeIndex:   make(map[string]int, len(stores)),
		productIndex: make(map[string]int, len(products)),
	}
	for _, s := range stores {
		if s.ID == "" {
			continue
		}
		if _, dup := c.storeIndex[s.ID]; dup {
			continue
		}
		c.storeIndex[s.ID] = len(c.stores)
		c.stores = append(c.stores, s)
	}
	for _, p := range products {
		c.insert(p)
	}
	if len(categories) > 0 {
		c.categories = append([]Category(nil), categories...)
	}
	return c
}

func (c *Catalog) insert(p Product) bool {
	if p.ID == "" || p.Price.IsNegative() {
		return false
	}
	if _, ok := c.storeIndex[p.StoreID]; !ok {
		return false
	}
	if _, dup := c.productIndex[p.ID]; dup {
		return false
	}
	c.productIndex[p.ID] = len(c.products)
	c.products = append(c.products, p)
	return true
}

func (c *Catalog) reindex() {
	c.productIndex = make(map[string]int, len(c.products))
	for i, p := range c.products {
		c.productIndex[p.ID] = i
	}
}

func (c *Catalog) FindProduct(id string) (Product, bool) {
	i, ok := c.productIndex[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) FindStore(id string) (Store, bool) {
	i, ok := c.storeIndex[id]
	if !ok {
		return Store{}, false
	}
	return c.stores[i], true
}

// ProductName returns the product's name or a generic placeholder.
func (c *Catalog) ProductName(id string) string {
	if p, ok := c.FindProduct(id); ok {
		return p.Name
	}
	return placeholderProductName
}

// StoreName returns the store's display name or a generic placeholder.
func (c *Catalog) StoreName(id string) string {
	if s, ok := c.FindStore(id); ok {
		return s.Name
	}
	return placeholderStoreName
}

// PriceOf returns the live price of a product, zero when unknown.
func (c *Catalog) PriceOf(id string) decimal.Decimal {
	if p, ok := c.FindProduct(id); ok {
		return p.Price
	}
	return decimal.Zero
}

// Products returns every product, available or not, in catalog order.
func (c *Catalog) Products() []Product {
	return append([]Product(nil), c.products...)
}

// Available returns the products customers may see, in catalog order.
func (c *Catalog) Available() []Product {
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if p.Available {
			out = append(out, p)
		}
	}
	return out
}

// ProductsOfStore returns a store's products including unavailable ones.
func (c *Catalog) ProductsOfStore(storeID string) []Product {
	var out []Product
	for _, p := range c.products {
		if p.StoreID == storeID {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) Stores() []Store {
	return append([]Store(nil), c.stores...)
}

// SearchStores matches the query against store name or niche, case-insensitively.
func (c *Catalog) SearchStores(query string) []Store {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.Stores()
	}
	var out []Store
	for _, s := range c.stores {
		if strings.Contains(strings.ToLower(s.Name), q) || strings.Contains(strings.ToLower(s.Niche), q) {
			out = append(out, s)
		}
	}
	return out
}

// ListCategories returns the configured list verbatim, or the distinct
// categories of available products in pt-BR collation order with "all" first.
func (c *Catalog) ListCategories() []Category {
	if len(c.categories) > 0 {
		return append([]Category(nil), c.categories...)
	}

	seen := make(map[string]struct{})
	var labels []string
	for _, p := range c.products {
		if !p.Available || p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		labels = append(labels, p.Category)
	}
	collate.New(language.BrazilianPortuguese).SortStrings(labels)

	out := make([]Category, 0, len(labels)+1)
	out = append(out, Category{ID: AllID, Label: "Todas", Image: placeholderImage})
	for _, label := range labels {
		out = append(out, Category{ID: label, Label: label, Image: placeholderImage})
	}
	return out
}

// HasCategory reports whether id names a listed category (or "all").
func (c *Catalog) HasCategory(id string) bool {
	for _, cat := range c.ListCategories() {
		if cat.ID == id {
			return true
		}
	}
	return false
}
