package cart

import (
	"math"
	"reflect"
	"testing"

	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/feiralocal-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

func scenarioCatalog() *catalog.Catalog {
	stores := []catalog.Store{
		{ID: "S1", Name: "Loja Um", DeliveryFee: decimal.RequireFromString("7.90"), ETAMin: 30, ETAMax: 45},
		{ID: "S2", Name: "Loja Dois", DeliveryFee: decimal.RequireFromString("5"), ETAMin: 20, ETAMax: 40},
	}
	products := []catalog.Product{
		{ID: "A", StoreID: "S1", Name: "Alpha", Category: "X", Price: decimal.NewFromInt(10), Available: true},
		{ID: "B", StoreID: "S1", Name: "Bravo", Category: "Y", Price: decimal.NewFromInt(20), Available: true},
		{ID: "C", StoreID: "S2", Name: "Charlie", Category: "X", Price: decimal.NewFromInt(5), Available: true},
		{ID: "H", StoreID: "S2", Name: "Hidden", Category: "X", Price: decimal.NewFromInt(5), Available: false},
	}
	return catalog.New(stores, products, nil)
}

func TestCartSingleStoreScenario(t *testing.T) {
	t.Parallel()
	cat := scenarioCatalog()
	var c Cart

	if err := c.AddItem(cat, "A"); err != nil {
		t.Fatalf("add A: %v", err)
	}
	want := Cart{StoreID: "S1", Items: []Line{{ProductID: "A", Qty: 1}}}
	if !reflect.DeepEqual(c, want) {
		t.Fatalf("expected %+v, got %+v", want, c)
	}

	err := c.AddItem(cat, "C")
	if !pkgerrors.Is(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if typed := pkgerrors.As(err); typed.Error() == "" || typed.Details() == nil {
		t.Fatalf("expected conflict details, got %+v", typed)
	}
	if !reflect.DeepEqual(c, want) {
		t.Fatalf("cart changed after rejection: %+v", c)
	}

	if err := c.ChangeQuantity("A", -1); err != nil {
		t.Fatalf("change qty: %v", err)
	}
	if c.StoreID != "" || len(c.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", c)
	}
}

func TestCartAddIncrementsExistingLine(t *testing.T) {
	t.Parallel()
	cat := scenarioCatalog()
	var c Cart

	for _, id := range []string{"A", "B", "A"} {
		if err := c.AddItem(cat, id); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	want := []Line{{ProductID: "A", Qty: 2}, {ProductID: "B", Qty: 1}}
	if !reflect.DeepEqual(c.Items, want) {
		t.Fatalf("expected %+v, got %+v", want, c.Items)
	}
	if c.Count() != 3 {
		t.Fatalf("expected count 3, got %d", c.Count())
	}
}

func TestCartAddRejectsUnknownAndUnavailable(t *testing.T) {
	t.Parallel()
	cat := scenarioCatalog()
	var c Cart

	if err := c.AddItem(cat, "nope"); !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := c.AddItem(cat, "H"); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation, got %v", err)
	}
	if !c.IsEmpty() || c.StoreID != "" {
		t.Fatalf("expected untouched cart, got %+v", c)
	}
}

func TestCartChangeQuantity(t *testing.T) {
	t.Parallel()
	cat := scenarioCatalog()
	c := Cart{StoreID: "S1", Items: []Line{{ProductID: "A", Qty: 2}, {ProductID: "B", Qty: 1}}}

	if err := c.ChangeQuantity("A", 3); err != nil {
		t.Fatalf("increase: %v", err)
	}
	if c.Items[0].Qty != 5 {
		t.Fatalf("expected qty 5, got %d", c.Items[0].Qty)
	}
	if err := c.ChangeQuantity("B", -4); err != nil {
		t.Fatalf("decrease: %v", err)
	}
	if len(c.Items) != 1 || c.StoreID != "S1" {
		t.Fatalf("expected only A left under S1, got %+v", c)
	}
	if err := c.ChangeQuantity("C", 1); !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for missing line, got %v", err)
	}
	if got := c.Subtotal(cat); !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected subtotal 50, got %s", got)
	}
}

func TestCartChangeQuantityRespectsLineCap(t *testing.T) {
	t.Parallel()
	cat := scenarioCatalog()
	c := Cart{}
	if err := c.AddItem(cat, "A"); err != nil {
		t.Fatalf("add: %v", err)
	}

	for _, delta := range []int{MaxLineQty, math.MaxInt} {
		if err := c.ChangeQuantity("A", delta); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for delta %d, got %v", delta, err)
		}
		if c.StoreID != "S1" || len(c.Items) != 1 || c.Items[0].Qty != 1 || c.Count() != 1 {
			t.Fatalf("cart must be unchanged after rejected delta %d, got %+v", delta, c)
		}
	}

	if err := c.ChangeQuantity("A", MaxLineQty-1); err != nil {
		t.Fatalf("raise to cap: %v", err)
	}
	if err := c.AddItem(cat, "A"); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected add beyond cap to fail, got %v", err)
	}
	if c.Items[0].Qty != MaxLineQty {
		t.Fatalf("expected qty %d, got %d", MaxLineQty, c.Items[0].Qty)
	}

	if err := c.ChangeQuantity("A", math.MinInt); err != nil {
		t.Fatalf("large decrement: %v", err)
	}
	if !c.IsEmpty() || c.StoreID != "" {
		t.Fatalf("expected emptied cart after decrement, got %+v", c)
	}
}

func TestCartDerivedTotals(t *testing.T) {
	t.Parallel()
	cat := scenarioCatalog()

	var empty Cart
	if !empty.Total(cat).IsZero() || !empty.DeliveryFee(cat).IsZero() {
		t.Fatalf("empty cart must cost nothing")
	}
	if _, ok := empty.ETA(cat); ok {
		t.Fatalf("empty cart has no eta")
	}

	c := Cart{StoreID: "S1", Items: []Line{{ProductID: "A", Qty: 2}, {ProductID: "B", Qty: 1}}}
	if got := c.Total(cat); !got.Equal(decimal.RequireFromString("47.90")) {
		t.Fatalf("expected total 47.90, got %s", got)
	}
	eta, ok := c.ETA(cat)
	if !ok || eta != 38 {
		t.Fatalf("expected eta 38, got %d (%v)", eta, ok)
	}

	summary := c.Summarize(cat)
	if summary.StoreName != "Loja Um" || len(summary.Lines) != 2 || summary.Count != 3 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if !summary.Lines[0].LineTotal.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected line total 20, got %s", summary.Lines[0].LineTotal)
	}
	if summary.TotalLabel != "R$ 47,90" {
		t.Fatalf("unexpected total label %q", summary.TotalLabel)
	}
}

func TestCartUsesLivePrices(t *testing.T) {
	t.Parallel()
	cat := scenarioCatalog()
	c := Cart{StoreID: "S1", Items: []Line{{ProductID: "A", Qty: 1}}}

	price := decimal.NewFromInt(12)
	if _, err := cat.UpdateProduct("S1", "A", catalog.ProductPatch{Price: &price}); err != nil {
		t.Fatalf("update price: %v", err)
	}
	if got := c.Subtotal(cat); !got.Equal(price) {
		t.Fatalf("expected live price 12, got %s", got)
	}
}

func TestCartSanitize(t *testing.T) {
	t.Parallel()
	cat := scenarioCatalog()

	tests := []struct {
		name    string
		in      Cart
		want    Cart
		changed bool
	}{
		{
			name:    "valid cart untouched",
			in:      Cart{StoreID: "S1", Items: []Line{{ProductID: "A", Qty: 1}}},
			want:    Cart{StoreID: "S1", Items: []Line{{ProductID: "A", Qty: 1}}},
			changed: false,
		},
		{
			name:    "unknown product dropped",
			in:      Cart{StoreID: "S1", Items: []Line{{ProductID: "ghost", Qty: 1}, {ProductID: "B", Qty: 2}}},
			want:    Cart{StoreID: "S1", Items: []Line{{ProductID: "B", Qty: 2}}},
			changed: true,
		},
		{
			name:    "unknown store clears",
			in:      Cart{StoreID: "S9", Items: []Line{{ProductID: "A", Qty: 1}}},
			want:    Cart{},
			changed: true,
		},
		{
			name:    "foreign and zero lines dropped",
			in:      Cart{StoreID: "S1", Items: []Line{{ProductID: "C", Qty: 1}, {ProductID: "A", Qty: 0}}},
			want:    Cart{},
			changed: true,
		},
		{
			name:    "missing store inferred",
			in:      Cart{Items: []Line{{ProductID: "C", Qty: 1}}},
			want:    Cart{StoreID: "S2", Items: []Line{{ProductID: "C", Qty: 1}}},
			changed: true,
		},
		{
			name:    "oversized quantity clamped",
			in:      Cart{StoreID: "S1", Items: []Line{{ProductID: "A", Qty: MaxLineQty + 5}}},
			want:    Cart{StoreID: "S1", Items: []Line{{ProductID: "A", Qty: MaxLineQty}}},
			changed: true,
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			c := tc.in.Clone()
			changed := c.Sanitize(cat)
			if changed != tc.changed {
				t.Fatalf("expected changed=%v, got %v", tc.changed, changed)
			}
			if c.StoreID != tc.want.StoreID || len(c.Items) != len(tc.want.Items) {
				t.Fatalf("expected %+v, got %+v", tc.want, c)
			}
			for i := range c.Items {
				if c.Items[i] != tc.want.Items[i] {
					t.Fatalf("line %d: expected %+v, got %+v", i, tc.want.Items[i], c.Items[i])
				}
			}
		})
	}
}
