package filter

import (
	"fmt"
	"testing"

	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	"github.com/angelmondragon/feiralocal-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	hits, misses int
}

func (o *countingObserver) ObserveCacheLookup(hit bool) {
	if hit {
		o.hits++
		return
	}
	o.misses++
}

func scenarioCatalog() *catalog.Catalog {
	stores := []catalog.Store{
		{ID: "S1", Name: "Zeta Loja", DeliveryFee: decimal.RequireFromString("7.90"), ETAMin: 30, ETAMax: 60},
		{ID: "S2", Name: "Ávila Store", DeliveryFee: decimal.RequireFromString("5"), ETAMin: 20, ETAMax: 40},
	}
	products := []catalog.Product{
		{ID: "A", StoreID: "S1", Name: "Alpha", Category: "X", Price: decimal.NewFromInt(10), Available: true},
		{ID: "B", StoreID: "S1", Name: "Bravo", Category: "Y", Price: decimal.NewFromInt(20), Available: true},
		{ID: "C", StoreID: "S2", Name: "Charlie", Category: "X", Price: decimal.NewFromInt(5), Available: true},
		{ID: "D", StoreID: "S2", Name: "Delta", Category: "X", Price: decimal.NewFromInt(1), Available: false},
	}
	return catalog.New(stores, products, nil)
}

func ids(products []catalog.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func newEngine(t *testing.T, size int, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(size, opts...)
	require.NoError(t, err)
	return e
}

func TestFilterCategoryScenario(t *testing.T) {
	e := newEngine(t, 30)
	cat := scenarioCatalog()

	assert.Equal(t, []string{"A", "C"}, ids(e.Filter(Criteria{Category: "X"}, cat)))
	assert.Equal(t, []string{"C", "A"}, ids(e.Filter(Criteria{Category: "X", Sort: enums.SortPriceAsc}, cat)))
	assert.Equal(t, []string{"A", "C"}, ids(e.Filter(Criteria{Category: "X", Sort: enums.SortPriceDesc}, cat)))
}

func TestFilterExcludesUnavailable(t *testing.T) {
	got := Apply(Criteria{}, scenarioCatalog())
	assert.Equal(t, []string{"A", "B", "C"}, ids(got))
}

func TestFilterByStoreNeverLeaksOtherStores(t *testing.T) {
	cat := catalog.Seed()
	for _, s := range cat.Stores() {
		for _, p := range Apply(Criteria{Store: s.ID}, cat) {
			assert.Equal(t, s.ID, p.StoreID)
		}
	}
}

func TestFilterSearchIsCaseAndDiacriticInsensitive(t *testing.T) {
	cat := catalog.Seed()

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{name: "accent stripped in query", search: "pelicula", want: []string{"p-003"}},
		{name: "accent kept in query", search: "PELÍCULA", want: []string{"p-003"}},
		{name: "category match", search: "protecao", want: []string{"p-003"}},
		{name: "store name match", search: "essencia", want: []string{"p-101", "p-102", "p-103"}},
		{name: "trimmed", search: "  caneta  ", want: []string{"p-202", "p-203"}},
		{name: "no match", search: "bicicleta", want: []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(Apply(Criteria{Search: tc.search}, cat)))
		})
	}
}

func TestFilterSortOrders(t *testing.T) {
	cat := catalog.Seed()

	asc := Apply(Criteria{Sort: enums.SortPriceAsc}, cat)
	for i := 1; i < len(asc); i++ {
		assert.False(t, asc[i].Price.LessThan(asc[i-1].Price))
	}
	desc := Apply(Criteria{Sort: enums.SortPriceDesc}, cat)
	for i := 1; i < len(desc); i++ {
		assert.False(t, desc[i].Price.GreaterThan(desc[i-1].Price))
	}

	byStore := Apply(Criteria{Sort: enums.SortStore}, scenarioCatalog())
	assert.Equal(t, []string{"C", "A", "B"}, ids(byStore), "Ávila collates before Zeta")
}

func TestFilterCacheReturnsEqualResults(t *testing.T) {
	obs := &countingObserver{}
	e := newEngine(t, 30, WithCacheObserver(obs))
	cat := catalog.Seed()

	criteria := Criteria{Search: "Ca", Sort: enums.SortPriceAsc}
	first := e.Filter(criteria, cat)
	second := e.Filter(Criteria{Search: " ca ", Sort: enums.SortPriceAsc}, cat)

	assert.Equal(t, first, second)
	assert.Equal(t, Apply(criteria, cat), second)
	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 1, obs.misses)

	second[0] = catalog.Product{}
	assert.Equal(t, first, e.Filter(criteria, cat), "callers must not corrupt cached entries")
}

func TestFilterCacheIsBounded(t *testing.T) {
	e := newEngine(t, 3)
	cat := catalog.Seed()

	for i := 0; i < 10; i++ {
		e.Filter(Criteria{Search: fmt.Sprintf("q%d", i)}, cat)
	}
	assert.Equal(t, 3, e.Len())
}

func TestFilterCacheEvictsLeastRecentlyUsed(t *testing.T) {
	obs := &countingObserver{}
	e := newEngine(t, 2, WithCacheObserver(obs))
	cat := catalog.Seed()

	e.Filter(Criteria{Search: "a"}, cat)
	e.Filter(Criteria{Search: "b"}, cat)
	e.Filter(Criteria{Search: "a"}, cat)
	e.Filter(Criteria{Search: "c"}, cat)

	e.Filter(Criteria{Search: "a"}, cat)
	assert.Equal(t, 2, obs.hits, "recently read entry survives eviction")
	e.Filter(Criteria{Search: "b"}, cat)
	assert.Equal(t, 2, obs.hits)
}

func TestFilterCacheIsNotInvalidatedByCatalogEdits(t *testing.T) {
	e := newEngine(t, 30)
	cat := catalog.Seed()

	before := e.Filter(Criteria{Store: "loja-01"}, cat)
	_, err := cat.SetAvailability("loja-01", "p-001", false)
	require.NoError(t, err)

	assert.Equal(t, before, e.Filter(Criteria{Store: "loja-01"}, cat))
	assert.NotContains(t, ids(e.Filter(Criteria{Store: "loja-01", Sort: enums.SortPriceAsc}, cat)), "p-001")
}

func TestNormalizedDefaults(t *testing.T) {
	got := Criteria{Search: "  Cabo ", Sort: "bogus"}.Normalized()
	assert.Equal(t, Criteria{Search: "cabo", Category: catalog.AllID, Store: catalog.AllID, Sort: enums.SortRelevance}, got)
	assert.False(t, got.HasStore())
	assert.False(t, got.HasCategory())
}

func TestHint(t *testing.T) {
	cat := catalog.Seed()

	assert.Equal(t, "Navegue com tranquilidade - entrega rápida na sua área.", Hint(Criteria{}, cat))
	assert.Equal(t,
		`Filtrado para você: Loja: Papel & Cia - Categoria: Canetas - Busca: "kit"`,
		Hint(Criteria{Store: "loja-03", Category: "Canetas", Search: " KIT "}, cat),
	)
}
