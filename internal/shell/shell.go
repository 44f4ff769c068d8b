// Package shell holds the console state of one browser session: the four
// view-controllers, the toast channel and the active tab.
package shell

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"ordersconsole/internal/client"
	"ordersconsole/internal/dashboard"
	"ordersconsole/internal/messages"
	"ordersconsole/internal/notification"
	"ordersconsole/internal/order"
	"ordersconsole/internal/product"
)

type Tab string

const (
	TabDashboard Tab = "dashboard"
	TabClients   Tab = "clients"
	TabProducts  Tab = "products"
	TabOrders    Tab = "orders"
)

type TabInfo struct {
	Tab   Tab
	Label string
	Path  string
}

var tabs = []TabInfo{
	{Tab: TabDashboard, Label: "Dashboard", Path: "/dashboard"},
	{Tab: TabClients, Label: "Clients", Path: "/clients"},
	{Tab: TabProducts, Label: "Products", Path: "/products"},
	{Tab: TabOrders, Label: "Orders", Path: "/orders"},
}

// Tabs returns the navigation entries in display order.
func Tabs() []TabInfo {
	out := make([]TabInfo, len(tabs))
	copy(out, tabs)
	return out
}

type view interface {
	Mount(ctx context.Context) <-chan struct{}
	Unmount()
	Mounted() bool
}

// Backend groups the resource-access modules shared by every session.
type Backend struct {
	Clients  *client.API
	Products *product.API
	Orders   *order.API
}

type Options struct {
	NotificationTTL time.Duration
	Dashboard       dashboard.Settings
}

type Shell struct {
	Notifier  *notification.Notifier
	Dashboard *dashboard.Controller
	Clients   *client.Controller
	Products  *product.Controller
	Orders    *order.Controller

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	active Tab
	closed bool
}

func New(backend Backend, catalog *messages.Catalog, opts Options, logger *zap.Logger) *Shell {
	notifier := notification.New(opts.NotificationTTL)
	ctx, cancel := context.WithCancel(context.Background())

	return &Shell{
		Notifier:  notifier,
		Dashboard: dashboard.NewController(backend.Clients, backend.Products, backend.Orders, notifier, catalog, opts.Dashboard, logger),
		Clients:   client.NewController(backend.Clients, notifier, catalog, logger),
		Products:  product.NewController(backend.Products, notifier, catalog, logger),
		Orders:    order.NewController(backend.Orders, backend.Clients, backend.Products, notifier, catalog, logger),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *Shell) view(tab Tab) view {
	switch tab {
	case TabDashboard:
		return s.Dashboard
	case TabClients:
		return s.Clients
	case TabProducts:
		return s.Products
	case TabOrders:
		return s.Orders
	default:
		return nil
	}
}

// Activate makes tab the visible panel. Switching unmounts the previous
// controller and mounts the new one; the returned channel closes when its
// initial load finishes. Re-activating the mounted tab returns nil.
func (s *Shell) Activate(tab Tab) <-chan struct{} {
	next := s.view(tab)
	if next == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	if tab == s.active && next.Mounted() {
		return nil
	}
	if prev := s.view(s.active); prev != nil && s.active != tab {
		prev.Unmount()
	}
	s.active = tab
	return next.Mount(s.ctx)
}

func (s *Shell) Active() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Close unmounts the active view and cancels every load still running.
func (s *Shell) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if v := s.view(s.active); v != nil {
		v.Unmount()
	}
	s.cancel()
}
