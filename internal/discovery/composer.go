package discovery

import (
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	"github.com/angelmondragon/feiralocal-backend/internal/filter"
)

const (
	TitleQuickPicks   = "Escolhas rápidas"
	TitleBestSellers  = "Mais vendidos"
	TitleSelectedShop = "Da sua loja selecionada"

	rowMin        = 3
	rowMax        = 6
	cheapestPicks = 3
)

// Row is a titled merchandising list shown above the product grid.
type Row struct {
	Title string            `json:"title"`
	Items []catalog.Product `json:"items"`
}

// Composer builds discovery rows. One random source is kept for the composer's
// lifetime instead of reseeding per call, so rows vary between calls while a
// fixed-seed source yields a reproducible sequence.
type Composer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewComposer uses rng for shuffling. A nil rng seeds from the clock.
func NewComposer(rng *rand.Rand) *Composer {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Composer{rng: rng}
}

// NewSeededComposer returns a composer whose rows are reproducible for seed.
func NewSeededComposer(seed uint64) *Composer {
	return NewComposer(rand.New(rand.NewPCG(seed, seed)))
}

// Compose returns the quick-picks, best-sellers and selected-store rows for
// the available products. The store row uses criteria.Store when set and
// otherwise cartStoreID. Empty rows are omitted.
func (c *Composer) Compose(available []catalog.Product, criteria filter.Criteria, cartStoreID string) []Row {
	if len(available) == 0 {
		return []Row{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	category := criteria.Normalized().Category
	preferred, extra := splitByCategory(available, category)
	target := TargetCount(len(available))

	rows := make([]Row, 0, 3)
	rows = appendRow(rows, TitleQuickPicks, c.quickPicks(preferred, extra, target))
	rows = appendRow(rows, TitleBestSellers, c.bestSellers(preferred, extra, target))

	storeID := cartStoreID
	if criteria.HasStore() {
		storeID = criteria.Store
	}
	if storeID != "" {
		var storeProducts []catalog.Product
		for _, p := range available {
			if p.StoreID == storeID {
				storeProducts = append(storeProducts, p)
			}
		}
		if n := TargetCount(len(storeProducts)); n > 0 {
			rows = appendRow(rows, TitleSelectedShop, c.storeRow(storeProducts, category, n))
		}
	}
	return rows
}

// TargetCount is the row length for n candidates: n when n < 3, else
// min(n, 6).
func TargetCount(n int) int {
	if n <= 0 {
		return 0
	}
	t := min(rowMax, n)
	if t < rowMin {
		return t
	}
	return max(rowMin, t)
}

func appendRow(rows []Row, title string, items []catalog.Product) []Row {
	if len(items) == 0 {
		return rows
	}
	return append(rows, Row{Title: title, Items: items})
}

// splitByCategory falls back to everything preferred when the category is
// "all" or matches nothing.
func splitByCategory(list []catalog.Product, category string) (preferred, extra []catalog.Product) {
	if category == "" || category == catalog.AllID {
		return list, nil
	}
	for _, p := range list {
		if p.Category == category {
			preferred = append(preferred, p)
		} else {
			extra = append(extra, p)
		}
	}
	if len(preferred) == 0 {
		return list, nil
	}
	return preferred, extra
}

type picker struct {
	seen  map[string]struct{}
	items []catalog.Product
}

func newPicker() *picker {
	return &picker{seen: make(map[string]struct{})}
}

func (p *picker) add(items ...catalog.Product) {
	for _, item := range items {
		if _, dup := p.seen[item.ID]; dup {
			continue
		}
		p.seen[item.ID] = struct{}{}
		p.items = append(p.items, item)
	}
}

func (p *picker) used(id string) bool {
	_, ok := p.seen[id]
	return ok
}

func (p *picker) take(n int) []catalog.Product {
	if len(p.items) > n {
		return p.items[:n]
	}
	return p.items
}

func (c *Composer) quickPicks(preferred, extra []catalog.Product, count int) []catalog.Product {
	pk := newPicker()

	cheapest := append([]catalog.Product(nil), preferred...)
	sort.SliceStable(cheapest, func(i, j int) bool { return cheapest[i].Price.LessThan(cheapest[j].Price) })
	pk.add(cheapest[:min(cheapestPicks, len(cheapest))]...)

	pk.add(badged(preferred)...)
	if len(pk.items) < count {
		pk.add(badged(extra)...)
	}
	if len(pk.items) < count {
		var remaining []catalog.Product
		for _, group := range [][]catalog.Product{preferred, extra} {
			for _, p := range group {
				if !pk.used(p.ID) {
					remaining = append(remaining, p)
				}
			}
		}
		remaining = c.shuffle(remaining)
		pk.add(remaining[:min(count-len(pk.items), len(remaining))]...)
	}
	return pk.take(count)
}

func (c *Composer) bestSellers(preferred, extra []catalog.Product, count int) []catalog.Product {
	pk := newPicker()
	pk.add(badged(preferred)...)

	var plain []catalog.Product
	for _, p := range preferred {
		if !p.HasBadge() {
			plain = append(plain, p)
		}
	}
	pk.add(c.shuffle(plain)...)
	if len(pk.items) < count {
		pk.add(c.shuffle(extra)...)
	}
	return pk.take(count)
}

func (c *Composer) storeRow(storeProducts []catalog.Product, category string, count int) []catalog.Product {
	preferred, extra := splitByCategory(storeProducts, category)
	pk := newPicker()
	pk.add(c.shuffle(preferred)...)
	pk.add(c.shuffle(extra)...)
	return pk.take(count)
}

// shuffle returns a Fisher–Yates shuffled copy.
func (c *Composer) shuffle(list []catalog.Product) []catalog.Product {
	out := append([]catalog.Product(nil), list...)
	for i := len(out) - 1; i > 0; i-- {
		j := c.rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func badged(list []catalog.Product) []catalog.Product {
	var out []catalog.Product
	for _, p := range list {
		if p.HasBadge() {
			out = append(out, p)
		}
	}
	return out
}
