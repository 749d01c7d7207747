package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/feiralocal-backend/pkg/logger"
	"github.com/angelmondragon/feiralocal-backend/pkg/metrics"
)

const defaultTick = 16 * time.Millisecond

// Flags mark the view regions that need recomputing.
type Flags struct {
	Grid    bool `json:"grid"`
	Rows    bool `json:"rows"`
	Sidebar bool `json:"sidebar"`
	KPIs    bool `json:"kpis"`
}

// All marks every region.
func All() Flags {
	return Flags{Grid: true, Rows: true, Sidebar: true, KPIs: true}
}

// Merge ORs two flag sets.
func (f Flags) Merge(other Flags) Flags {
	return Flags{
		Grid:    f.Grid || other.Grid,
		Rows:    f.Rows || other.Rows,
		Sidebar: f.Sidebar || other.Sidebar,
		KPIs:    f.KPIs || other.KPIs,
	}
}

func (f Flags) IsZero() bool {
	return f == Flags{}
}

// Regions names the marked regions, for logs and metrics.
func (f Flags) Regions() []string {
	out := make([]string, 0, 4)
	if f.Grid {
		out = append(out, "grid")
	}
	if f.Rows {
		out = append(out, "rows")
	}
	if f.Sidebar {
		out = append(out, "sidebar")
	}
	if f.KPIs {
		out = append(out, "kpis")
	}
	return out
}

// RenderFunc recomputes the regions marked in flags.
type RenderFunc func(ctx context.Context, flags Flags) error

// CoalescerParams configure the refresh coalescer.
type CoalescerParams struct {
	Render  RenderFunc
	Logger  *logger.Logger
	Metrics *metrics.StorefrontMetrics
	Tick    time.Duration
}

// Coalescer accumulates refresh requests and renders them in at most one pass
// per tick. Requests arriving during a pass are kept for the next one.
type Coalescer struct {
	render  RenderFunc
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
	tick    time.Duration

	mu      sync.Mutex
	pending Flags

	// passMu serializes render passes between Run and Flush.
	passMu sync.Mutex
	passes int
}

func NewCoalescer(params CoalescerParams) (*Coalescer, error) {
	if params.Render == nil {
		return nil, fmt.Errorf("render func required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	tick := params.Tick
	if tick <= 0 {
		tick = defaultTick
	}
	return &Coalescer{
		render:  params.Render,
		logg:    logg,
		metrics: params.Metrics,
		tick:    tick,
	}, nil
}

// Request marks regions dirty. It never blocks on rendering.
func (c *Coalescer) Request(flags Flags) {
	if flags.IsZero() {
		return
	}
	c.mu.Lock()
	c.pending = c.pending.Merge(flags)
	c.mu.Unlock()
}

// Pending returns the regions waiting for the next pass.
func (c *Coalescer) Pending() Flags {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Passes counts completed render passes.
func (c *Coalescer) Passes() int {
	c.passMu.Lock()
	defer c.passMu.Unlock()
	return c.passes
}

// Flush renders everything pending in one pass and returns the flags it
// covered. Nothing pending means no pass.
func (c *Coalescer) Flush(ctx context.Context) (Flags, error) {
	c.passMu.Lock()
	defer c.passMu.Unlock()

	c.mu.Lock()
	flags := c.pending
	c.pending = Flags{}
	c.mu.Unlock()

	if flags.IsZero() {
		return flags, nil
	}

	start := time.Now()
	err := c.render(ctx, flags)
	c.passes++
	c.metrics.ObserveRefresh(flags.Regions(), time.Since(start))
	if err != nil {
		return flags, fmt.Errorf("refresh %v: %w", flags.Regions(), err)
	}
	return flags, nil
}

// Run flushes once per tick until the context is canceled.
func (c *Coalescer) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if _, err := c.Flush(context.WithoutCancel(ctx)); err != nil {
				c.logg.Error(ctx, "final refresh failed", err)
			}
			c.logg.Info(ctx, "refresh loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := c.Flush(ctx); err != nil {
				c.logg.Error(ctx, "refresh pass failed", err)
			}
		}
	}
}
