package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	"github.com/angelmondragon/feiralocal-backend/pkg/enums"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultCacheSize bounds the memoized result sets.
const DefaultCacheSize = 30

// Catalog is the read surface the engine filters over.
type Catalog interface {
	Available() []catalog.Product
	FindStore(id string) (catalog.Store, bool)
}

// CacheObserver is notified of every cache lookup.
type CacheObserver interface {
	ObserveCacheLookup(hit bool)
}

// Engine filters and sorts products, memoizing results per normalized
// criteria in a bounded LRU cache. Entries are never invalidated explicitly:
// a catalog edit is only reflected once the criteria change or the entry is
// evicted.
type Engine struct {
	cache    *lru.Cache[Criteria, []catalog.Product]
	observer CacheObserver
}

// Option customizes an Engine.
type Option func(*Engine)

// WithCacheObserver reports cache hits and misses, typically to metrics.
func WithCacheObserver(o CacheObserver) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// NewEngine builds an engine whose cache holds at most size entries.
func NewEngine(size int, opts ...Option) (*Engine, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[Criteria, []catalog.Product](size)
	if err != nil {
		return nil, fmt.Errorf("filter cache: %w", err)
	}
	e := &Engine{cache: cache}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Filter returns the available products matching criteria, in sort order.
// An empty result is valid. The returned slice is the caller's to keep.
func (e *Engine) Filter(criteria Criteria, cat Catalog) []catalog.Product {
	key := criteria.Normalized()
	if cached, ok := e.cache.Get(key); ok {
		e.observe(true)
		return append([]catalog.Product(nil), cached...)
	}
	e.observe(false)

	result := Apply(key, cat)
	e.cache.Add(key, result)
	return append([]catalog.Product(nil), result...)
}

// Len reports the number of cached result sets.
func (e *Engine) Len() int {
	return e.cache.Len()
}

func (e *Engine) observe(hit bool) {
	if e.observer != nil {
		e.observer.ObserveCacheLookup(hit)
	}
}

// Apply runs the uncached filter pipeline.
func Apply(criteria Criteria, cat Catalog) []catalog.Product {
	criteria = criteria.Normalized()
	storeNames := map[string]string{}
	storeName := func(id string) string {
		if name, ok := storeNames[id]; ok {
			return name
		}
		name := ""
		if s, ok := cat.FindStore(id); ok {
			name = s.Name
		}
		storeNames[id] = name
		return name
	}

	needle := Fold(criteria.Search)
	out := make([]catalog.Product, 0)
	for _, p := range cat.Available() {
		if criteria.HasStore() && p.StoreID != criteria.Store {
			continue
		}
		if criteria.HasCategory() && p.Category != criteria.Category {
			continue
		}
		if needle != "" &&
			!strings.Contains(Fold(p.Name), needle) &&
			!strings.Contains(Fold(p.Category), needle) &&
			!strings.Contains(Fold(storeName(p.StoreID)), needle) {
			continue
		}
		out = append(out, p)
	}

	switch criteria.Sort {
	case enums.SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case enums.SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	case enums.SortStore:
		col := collate.New(language.BrazilianPortuguese)
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(storeName(out[i].StoreID), storeName(out[j].StoreID)) < 0
		})
	}
	return out
}

// Hint describes the active criteria for the results header.
func Hint(criteria Criteria, cat Catalog) string {
	criteria = criteria.Normalized()
	var parts []string
	if criteria.HasStore() {
		name := criteria.Store
		if s, ok := cat.FindStore(criteria.Store); ok {
			name = s.Name
		}
		parts = append(parts, "Loja: "+name)
	}
	if criteria.HasCategory() {
		parts = append(parts, "Categoria: "+criteria.Category)
	}
	if criteria.Search != "" {
		parts = append(parts, fmt.Sprintf("Busca: %q", criteria.Search))
	}
	if len(parts) == 0 {
		return "Navegue com tranquilidade - entrega rápida na sua área."
	}
	return "Filtrado para você: " + strings.Join(parts, " - ")
}
