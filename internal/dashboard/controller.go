// Package dashboard aggregates the counts and short lists shown on the
// console's landing page.
package dashboard

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ordersconsole/internal/domain"
	"ordersconsole/internal/messages"
	"ordersconsole/internal/notification"
	"ordersconsole/internal/viewstate"
)

const (
	DefaultLowStockThreshold = domain.LowStockThreshold
	DefaultListLimit         = 5
)

type ClientSource interface {
	CountVIP(ctx context.Context) (int64, error)
}

type ProductSource interface {
	ListActive(ctx context.Context) ([]domain.Product, error)
	ListLowStock(ctx context.Context, threshold int) ([]domain.Product, error)
}

type OrderSource interface {
	List(ctx context.Context) ([]domain.Order, error)
	ListOutOfStock(ctx context.Context) ([]domain.Order, error)
}

type Notifier interface {
	Notify(message string, severity notification.Severity)
}

type Settings struct {
	LowStockThreshold int
	ListLimit         int
}

func (s Settings) withDefaults() Settings {
	if s.LowStockThreshold <= 0 {
		s.LowStockThreshold = DefaultLowStockThreshold
	}
	if s.ListLimit <= 0 {
		s.ListLimit = DefaultListLimit
	}
	return s
}

type Stats struct {
	VIPClients       int64
	TotalProducts    int
	TotalOrders      int
	LowStockProducts []domain.Product
	OutOfStockOrders []domain.Order
}

func (s Stats) clone() Stats {
	out := s
	out.LowStockProducts = append([]domain.Product(nil), s.LowStockProducts...)
	out.OutOfStockOrders = make([]domain.Order, len(s.OutOfStockOrders))
	for i, o := range s.OutOfStockOrders {
		out.OutOfStockOrders[i] = o.Clone()
	}
	return out
}

type View struct {
	Status viewstate.Status
	Stats  Stats
}

func (v View) Loading() bool {
	return v.Status == viewstate.Loading
}

// OrderLabel is the short title of an out-of-stock order.
func OrderLabel(o domain.Order) string {
	return "Order #" + o.ID.Short(8)
}

// OrderQuantity is the summary quantity of an out-of-stock order.
func OrderQuantity(o domain.Order) string {
	if o.Quantity == nil {
		return "N/A"
	}
	return strconv.Itoa(*o.Quantity)
}

type Controller struct {
	clients  ClientSource
	products ProductSource
	orders   OrderSource
	notifier Notifier
	messages *messages.Catalog
	settings Settings
	logger   *zap.Logger

	mu        sync.Mutex
	lifecycle viewstate.Lifecycle
	cancel    context.CancelFunc
	loading   bool
	stats     Stats
}

func NewController(
	clients ClientSource,
	products ProductSource,
	orders OrderSource,
	notifier Notifier,
	catalog *messages.Catalog,
	settings Settings,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		clients:  clients,
		products: products,
		orders:   orders,
		notifier: notifier,
		messages: catalog,
		settings: settings.withDefaults(),
		logger:   logger.With(zap.String("view", "dashboard")),
	}
}

func (c *Controller) Mount(ctx context.Context) <-chan struct{} {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	token := c.lifecycle.Mount()
	c.loading = true
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		c.load(ctx, token)
	}()
	return done
}

func (c *Controller) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lifecycle.Unmount()
	c.loading = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lifecycle.Mounted()
}

func (c *Controller) Reload(ctx context.Context) {
	c.mu.Lock()
	if !c.lifecycle.Mounted() {
		c.mu.Unlock()
		return
	}
	token := c.lifecycle.Token()
	c.loading = true
	c.mu.Unlock()

	c.load(ctx, token)
}

// load runs the five reads concurrently. The first failure cancels the rest
// and the stats fall back to zero; partial results are never shown.
func (c *Controller) load(ctx context.Context, token uint64) {
	var (
		vip        int64
		products   []domain.Product
		orders     []domain.Order
		lowStock   []domain.Product
		outOfStock []domain.Order
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vip, err = c.clients.CountVIP(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = c.products.ListActive(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = c.orders.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		lowStock, err = c.products.ListLowStock(gctx, c.settings.LowStockThreshold)
		return err
	})
	g.Go(func() error {
		var err error
		outOfStock, err = c.orders.ListOutOfStock(gctx)
		return err
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lifecycle.Valid(token) {
		return
	}
	c.loading = false
	if err != nil {
		c.logger.Error("loading dashboard failed", zap.Error(err))
		c.notifier.Notify(c.messages.Text(messages.DashboardData), notification.Error)
		c.stats = Stats{}
		return
	}

	c.stats = Stats{
		VIPClients:       vip,
		TotalProducts:    len(products),
		TotalOrders:      len(orders),
		LowStockProducts: truncate(lowStock, c.settings.ListLimit),
		OutOfStockOrders: truncate(outOfStock, c.settings.ListLimit),
	}
}

func truncate[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := viewstate.Loaded
	if c.loading {
		status = viewstate.Loading
	}
	return View{
		Status: status,
		Stats:  c.stats.clone(),
	}
}
