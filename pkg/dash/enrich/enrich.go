package enrich

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	yfgo "github.com/komsit37/yf-go"

	"github.com/komsit37/divdash/pkg/dash/source"
	"github.com/komsit37/divdash/pkg/dash/types"
)

// QuoteService fetches a live quote for a symbol.
type QuoteService interface {
	Get(ctx context.Context, sym string) (types.Quote, error)
}

// YFService implements QuoteService using yf-go.
type YFService struct {
	client  *yfgo.Client
	timeout time.Duration
}

func NewYFService(timeout time.Duration) *YFService {
	return &YFService{client: yfgo.NewClient(), timeout: timeout}
}

func (s *YFService) Get(ctx context.Context, sym string) (types.Quote, error) {
	if sym == "" {
		return types.Quote{}, fmt.Errorf("empty symbol")
	}
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	res, err := s.client.QuoteSummaryTyped(cctx, sym, []yfgo.QuoteSummaryModule{yfgo.ModulePrice})
	if err != nil {
		return types.Quote{}, err
	}
	if res.Price == nil {
		return types.Quote{}, fmt.Errorf("no price for %s", sym)
	}

	var q types.Quote
	if p := res.Price.RegularMarketPrice; p.Raw != nil {
		q.Price = types.Float(*p.Raw)
	}
	// The formatted value is already a percent ("1.23%"); raw is a fraction.
	cp := res.Price.RegularMarketChangePercent
	if v, ok := parsePct(cp.Fmt); ok {
		q.ChangePct = &v
	} else if cp.Raw != nil {
		q.ChangePct = types.Float(*cp.Raw * 100)
	}
	if res.Price.ShortName != "" {
		q.Name = res.Price.ShortName
	} else if res.Price.LongName != "" {
		q.Name = res.Price.LongName
	}
	if q.Price == nil {
		return types.Quote{}, fmt.Errorf("no price for %s", sym)
	}
	return q, nil
}

func parsePct(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// Apply overlays a live quote onto market data. The 52-week position is
// recomputed from the new price when the range is known.
func Apply(md *types.MarketData, q types.Quote) {
	if md == nil || q.Price == nil {
		return
	}
	s := &md.Summary
	if s.LastClose != nil && *s.LastClose > 0 && q.ChangePct == nil {
		chg := *q.Price - *s.LastClose
		s.Change = types.Float(chg)
		s.ChangePct = types.Float(chg / *s.LastClose * 100)
	}
	s.LastClose = types.Float(*q.Price)
	if q.ChangePct != nil {
		s.ChangePct = types.Float(*q.ChangePct)
		// change = price - prev, prev = price / (1 + pct/100)
		prev := *q.Price / (1 + *q.ChangePct/100)
		s.Change = types.Float(*q.Price - prev)
	}
	if p := source.Pos52(*s); p != nil {
		md.Derived.Pos52WPct = p
	}
}

// CacheService decorates a QuoteService with TTL+LRU cache.
type CacheService struct {
	next QuoteService
	ttl  time.Duration
	size int
	now  func() time.Time

	mu    sync.Mutex
	items map[string]cacheEntry
	order []string // simple LRU order, oldest at index 0
}

type cacheEntry struct {
	at time.Time
	q  types.Quote
}

func NewCacheService(next QuoteService, ttl time.Duration, size int) *CacheService {
	return &CacheService{next: next, ttl: ttl, size: size, now: time.Now, items: make(map[string]cacheEntry)}
}

func (c *CacheService) Get(ctx context.Context, sym string) (types.Quote, error) {
	k := strings.ToUpper(strings.TrimSpace(sym))
	now := c.now()
	c.mu.Lock()
	if ent, ok := c.items[k]; ok {
		if now.Sub(ent.at) <= c.ttl {
			c.touchLocked(k)
			q := ent.q
			c.mu.Unlock()
			return q, nil
		}
		delete(c.items, k)
		c.removeFromOrderLocked(k)
	}
	c.mu.Unlock()

	q, err := c.next.Get(ctx, sym)
	if err != nil {
		return q, err
	}
	c.mu.Lock()
	if _, ok := c.items[k]; ok {
		c.removeFromOrderLocked(k)
	}
	c.items[k] = cacheEntry{at: now, q: q}
	c.order = append(c.order, k)
	for len(c.items) > c.size && len(c.order) > 0 {
		old := c.order[0]
		c.order = c.order[1:]
		delete(c.items, old)
	}
	c.mu.Unlock()
	return q, nil
}

func (c *CacheService) touchLocked(k string) {
	c.removeFromOrderLocked(k)
	c.order = append(c.order, k)
}

func (c *CacheService) removeFromOrderLocked(k string) {
	for i, v := range c.order {
		if v == k {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
