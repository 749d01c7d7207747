package storefront

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	"github.com/angelmondragon/feiralocal-backend/internal/discovery"
	"github.com/angelmondragon/feiralocal-backend/internal/filter"
	"github.com/angelmondragon/feiralocal-backend/internal/notifications"
	"github.com/angelmondragon/feiralocal-backend/internal/orders"
	"github.com/angelmondragon/feiralocal-backend/internal/persistence"
	"github.com/angelmondragon/feiralocal-backend/internal/scheduler"
	"github.com/angelmondragon/feiralocal-backend/pkg/logger"
	"github.com/angelmondragon/feiralocal-backend/pkg/metrics"
)

const defaultDemoOrders = 6

// Params configure the storefront.
type Params struct {
	Gateway *persistence.Gateway
	Linker  *notifications.Linker
	Logger  *logger.Logger
	Metrics *metrics.StorefrontMetrics

	// Stores and Categories default to the seed catalog.
	Stores     []catalog.Store
	Categories []catalog.Category

	FilterCacheSize int
	RenderTick      time.Duration
	DemoOrders      int
	// Seed fixes every random choice; 0 seeds from the clock.
	Seed  uint64
	Clock func() time.Time
}

// Storefront owns the application state. Every intent runs under one lock,
// mutates the components, persists, and marks the affected view regions for
// the next refresh pass.
type Storefront struct {
	mu sync.Mutex

	gateway   *persistence.Gateway
	linker    *notifications.Linker
	logg      *logger.Logger
	metrics   *metrics.StorefrontMetrics
	coalescer *scheduler.Coalescer

	stores     []catalog.Store
	categories []catalog.Category
	demoOrders int
	cacheSize  int

	cat      *catalog.Catalog
	engine   *filter.Engine
	composer *discovery.Composer
	orders   *orders.Manager
	rng      *rand.Rand

	// state holds cart, scope, filters and auth. Products and orders live in
	// cat and orders and are folded back in on save.
	state persistence.State
	snap  snapshot
}

// New restores the persisted state and builds the components around it. A
// backend read failure is logged and the storefront starts from whatever
// could be read.
func New(ctx context.Context, params Params) (*Storefront, error) {
	if params.Gateway == nil {
		return nil, fmt.Errorf("persistence gateway required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	linker := params.Linker
	if linker == nil {
		var err error
		if linker, err = notifications.NewLinker(""); err != nil {
			return nil, err
		}
	}
	stores := params.Stores
	if len(stores) == 0 {
		stores = catalog.SeedStores()
	}
	categories := params.Categories
	if categories == nil {
		categories = catalog.SeedCategories()
	}
	cacheSize := params.FilterCacheSize
	if cacheSize <= 0 {
		cacheSize = filter.DefaultCacheSize
	}
	demoOrders := params.DemoOrders
	if demoOrders <= 0 {
		demoOrders = defaultDemoOrders
	}
	seed := params.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	orderOpts := []orders.Option{orders.WithRand(newRand(seed, 1))}
	if params.Clock != nil {
		orderOpts = append(orderOpts, orders.WithClock(params.Clock))
	}

	s := &Storefront{
		gateway:    params.Gateway,
		linker:     linker,
		logg:       logg,
		metrics:    params.Metrics,
		stores:     stores,
		categories: categories,
		demoOrders: demoOrders,
		cacheSize:  cacheSize,
		composer:   discovery.NewComposer(newRand(seed, 2)),
		orders:     orders.NewManager(orderOpts...),
		rng:        newRand(seed, 3),
	}
	var err error
	s.coalescer, err = scheduler.NewCoalescer(scheduler.CoalescerParams{
		Render:  s.render,
		Logger:  logg,
		Metrics: params.Metrics,
		Tick:    params.RenderTick,
	})
	if err != nil {
		return nil, err
	}

	st, loadErr := s.gateway.Load(ctx)
	if loadErr != nil {
		s.logg.Error(ctx, "state load incomplete; continuing with defaults", loadErr)
	}
	if err := s.adopt(st); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"products": len(s.cat.Products()),
		"orders":   len(st.Orders),
	}), "storefront state restored")
	return s, nil
}

func newRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^(0x9e3779b97f4a7c15*stream)))
}

// adopt replaces the whole state and starts a fresh filter cache. Callers
// hold the lock or own s exclusively.
func (s *Storefront) adopt(st persistence.State) error {
	engine, err := filter.NewEngine(s.cacheSize, filter.WithCacheObserver(s.metrics))
	if err != nil {
		return err
	}
	s.engine = engine
	s.cat = catalog.New(s.stores, st.Products, s.categories)
	s.state = st
	s.state.Products = nil
	s.state.Orders = nil
	s.orders.Restore(st.Orders)
	s.snap = snapshot{}
	s.coalescer.Request(scheduler.All())
	return nil
}

// Run drives the refresh loop until ctx is canceled.
func (s *Storefront) Run(ctx context.Context) error {
	return s.coalescer.Run(ctx)
}

// Ping checks the persistence backend.
func (s *Storefront) Ping(ctx context.Context) error {
	return s.gateway.Ping(ctx)
}

// Close persists the final state.
func (s *Storefront) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gateway.Save(ctx, s.currentLocked())
}

// currentLocked assembles the persisted state from the components.
func (s *Storefront) currentLocked() persistence.State {
	st := s.state
	st.Cart = s.state.Cart.Clone()
	st.Orders = s.orders.Orders()
	st.Products = s.cat.Products()
	return st
}

// commitLocked persists after a mutation and marks the regions to refresh.
// Storage failures are logged and counted by the gateway; the in-memory state
// stays authoritative.
func (s *Storefront) commitLocked(ctx context.Context, flags scheduler.Flags) {
	if err := s.gateway.Save(ctx, s.currentLocked()); err != nil {
		s.logg.Error(ctx, "persist state failed", err)
	}
	s.coalescer.Request(flags)
}
