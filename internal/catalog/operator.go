package catalog

import (
	"strings"

	pkgerrors "github.com/angelmondragon/feiralocal-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewProduct is a store operator's input for a catalog addition.
type NewProduct struct {
	Name      string
	Category  string
	Price     decimal.Decimal
	Available *bool
	Badge     *string
	Image     *string
}

// ProductPatch carries the fields an operator may change; nil means unchanged.
// An empty Badge clears the label.
type ProductPatch struct {
	Name      *string
	Category  *string
	Price     *decimal.Decimal
	Available *bool
	Badge     *string
}

// AddProduct appends a product to the operator's store.
func (c *Catalog) AddProduct(storeID string, in NewProduct) (Product, error) {
	if _, ok := c.FindStore(storeID); !ok {
		return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "store not found").WithDetails(map[string]any{"store_id": storeID})
	}
	name := strings.TrimSpace(in.Name)
	category := strings.TrimSpace(in.Category)
	if name == "" || category == "" {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "name and category are required")
	}
	if in.Price.IsNegative() {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	p := Product{
		ID:        newProductID(),
		StoreID:   storeID,
		Name:      name,
		Category:  category,
		Price:     in.Price.Round(2),
		Available: in.Available == nil || *in.Available,
		Badge:     nonEmpty(in.Badge),
		Image:     nonEmpty(in.Image),
	}
	if !c.insert(p) {
		return Product{}, pkgerrors.New(pkgerrors.CodeConflict, "product could not be added")
	}
	return p, nil
}

// UpdateProduct applies a patch to one of the operator's products.
func (c *Catalog) UpdateProduct(storeID, productID string, patch ProductPatch) (Product, error) {
	i, err := c.ownedIndex(storeID, productID)
	if err != nil {
		return Product{}, err
	}
	p := c.products[i]

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "name must not be blank")
		}
		p.Name = name
	}
	if patch.Category != nil {
		category := strings.TrimSpace(*patch.Category)
		if category == "" {
			return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "category must not be blank")
		}
		p.Category = category
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		p.Price = patch.Price.Round(2)
	}
	if patch.Available != nil {
		p.Available = *patch.Available
	}
	if patch.Badge != nil {
		p.Badge = nonEmpty(patch.Badge)
	}

	c.products[i] = p
	return p, nil
}

// SetAvailability toggles whether customers can see the product.
func (c *Catalog) SetAvailability(storeID, productID string, available bool) (Product, error) {
	return c.UpdateProduct(storeID, productID, ProductPatch{Available: &available})
}

// DeleteProduct removes one of the operator's products.
func (c *Catalog) DeleteProduct(storeID, productID string) error {
	i, err := c.ownedIndex(storeID, productID)
	if err != nil {
		return err
	}
	c.products = append(c.products[:i], c.products[i+1:]...)
	c.reindex()
	return nil
}

func (c *Catalog) ownedIndex(storeID, productID string) (int, error) {
	i, ok := c.productIndex[productID]
	if !ok {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").WithDetails(map[string]any{"product_id": productID})
	}
	if c.products[i].StoreID != storeID {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").WithDetails(map[string]any{"product_id": productID})
	}
	return i, nil
}

func newProductID() string {
	return "p-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
