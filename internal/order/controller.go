package order

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"ordersconsole/internal/domain"
	"ordersconsole/internal/dto"
	apperrors "ordersconsole/internal/errors"
	"ordersconsole/internal/messages"
	"ordersconsole/internal/notification"
	"ordersconsole/internal/viewstate"
)

// DateLayout renders creation dates the way the console's pt-BR users read them.
const DateLayout = "02/01/2006"

type OrderAPI interface {
	Create(ctx context.Context, payload dto.OrderPayload) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByClient(ctx context.Context, clientID domain.ID, page, size int) (*dto.Page[domain.Order], error)
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	ListByClientAndStatus(ctx context.Context, clientID domain.ID, status domain.OrderStatus) ([]domain.Order, error)
	Update(ctx context.Context, id domain.ID, payload dto.OrderPayload) (*domain.Order, error)
	Delete(ctx context.Context, id domain.ID) error
	UpdateStatus(ctx context.Context, id domain.ID, status domain.OrderStatus) (*domain.Order, error)
}

// ClientLister feeds the client dropdown with VIP clients.
type ClientLister interface {
	ListVIP(ctx context.Context) ([]domain.Client, error)
}

// ProductLister feeds the product dropdown with products in stock.
type ProductLister interface {
	ListAvailable(ctx context.Context) ([]domain.Product, error)
}

type Notifier interface {
	Notify(message string, severity notification.Severity)
}

// Draft is the single-item order form.
type Draft struct {
	ClientID  string
	ProductID string
	Quantity  string
	Status    string
}

func newDraft() Draft {
	return Draft{Status: string(domain.OrderStatusPending)}
}

type Filter struct {
	ClientID domain.ID
	Status   domain.OrderStatus
}

func (f Filter) Active() bool {
	return f.ClientID != "" || f.Status != ""
}

type View struct {
	Status        viewstate.Status
	Ready         bool
	Orders        []domain.Order
	Clients       []domain.Client
	Products      []domain.Product
	Statuses      []domain.OrderStatus
	DialogOpen    bool
	Editing       *domain.Order
	Draft         Draft
	PendingDelete *domain.Order
	Filter        Filter
}

func (v View) Loading() bool {
	return v.Status == viewstate.Loading
}

// ClientName resolves a client id against the dropdown list.
func (v View) ClientName(id domain.ID) string {
	if c, ok := domain.FindClient(v.Clients, id); ok && c.Name != "" {
		return c.Name
	}
	return "Client not found"
}

// ProductName resolves the product of the order's first item.
func (v View) ProductName(o domain.Order) string {
	item, ok := o.FirstItem()
	if !ok {
		return "N/A"
	}
	if p, ok := domain.FindProduct(v.Products, item.ProductID); ok && p.Name != "" {
		return p.Name
	}
	return "Product not found"
}

// ProductQuantity is the quantity of the order's first item.
func (v View) ProductQuantity(o domain.Order) string {
	item, ok := o.FirstItem()
	if !ok || item.Quantity == 0 {
		return "N/A"
	}
	return strconv.Itoa(item.Quantity)
}

// CreatedAtLabel formats the creation date. An order without one shows N/A.
func CreatedAtLabel(o domain.Order) string {
	if o.CreatedAt == nil || o.CreatedAt.IsZero() {
		return "N/A"
	}
	return o.CreatedAt.Format(DateLayout)
}

type Controller struct {
	orders   OrderAPI
	clients  ClientLister
	products ProductLister
	notifier Notifier
	messages *messages.Catalog
	logger   *zap.Logger

	mu            sync.Mutex
	lifecycle     viewstate.Lifecycle
	cancel        context.CancelFunc
	loading       bool
	ready         bool
	snapshot      []domain.Order
	clientList    []domain.Client
	productList   []domain.Product
	dialogOpen    bool
	editing       *domain.Order
	draft         Draft
	pendingDelete *domain.Order
	filter        Filter
}

func NewController(
	orders OrderAPI,
	clients ClientLister,
	products ProductLister,
	notifier Notifier,
	catalog *messages.Catalog,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		orders:   orders,
		clients:  clients,
		products: products,
		notifier: notifier,
		messages: catalog,
		logger:   logger.With(zap.String("view", "orders")),
		draft:    newDraft(),
	}
}

// Mount issues the orders, client and product loads concurrently. Each one
// reports its own failure; the dialog becomes ready once all three are done.
func (c *Controller) Mount(ctx context.Context) <-chan struct{} {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	token := c.lifecycle.Mount()
	c.loading = true
	c.ready = false
	filter := c.filter
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()

		var wg conc.WaitGroup
		wg.Go(func() { c.loadOrders(ctx, token, filter) })
		wg.Go(func() { c.loadClients(ctx, token) })
		wg.Go(func() { c.loadProducts(ctx, token) })
		wg.Wait()

		c.mu.Lock()
		if c.lifecycle.Valid(token) {
			c.ready = true
		}
		c.mu.Unlock()
	}()
	return done
}

func (c *Controller) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lifecycle.Unmount()
	c.loading = false
	c.ready = false
	c.dialogOpen = false
	c.editing = nil
	c.draft = newDraft()
	c.pendingDelete = nil
	c.filter = Filter{}
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

// Reload refetches the orders list under the current filter. The dropdown
// lists are only fetched on mount.
func (c *Controller) Reload(ctx context.Context) {
	c.mu.Lock()
	if !c.lifecycle.Mounted() {
		c.mu.Unlock()
		return
	}
	token := c.lifecycle.Token()
	c.loading = true
	filter := c.filter
	c.mu.Unlock()

	c.loadOrders(ctx, token, filter)
}

func (c *Controller) fetchOrders(ctx context.Context, f Filter) ([]domain.Order, error) {
	switch {
	case f.ClientID != "" && f.Status != "":
		return c.orders.ListByClientAndStatus(ctx, f.ClientID, f.Status)
	case f.ClientID != "":
		page, err := c.orders.ListByClient(ctx, f.ClientID, dto.DefaultPage, dto.DefaultPageSize)
		if err != nil {
			return nil, err
		}
		return page.Content, nil
	case f.Status != "":
		return c.orders.ListByStatus(ctx, f.Status)
	default:
		return c.orders.List(ctx)
	}
}

func (c *Controller) loadOrders(ctx context.Context, token uint64, f Filter) {
	orders, err := c.fetchOrders(ctx, f)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lifecycle.Valid(token) {
		return
	}
	c.loading = false
	if err != nil {
		c.logger.Error("loading orders failed", zap.Error(err))
		c.notifier.Notify(c.messages.Text(messages.LoadOrders), notification.Error)
		return
	}
	c.snapshot = orders
}

func (c *Controller) loadClients(ctx context.Context, token uint64) {
	clients, err := c.clients.ListVIP(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lifecycle.Valid(token) {
		return
	}
	if err != nil {
		c.logger.Error("loading clients failed", zap.Error(err))
		c.notifier.Notify(c.messages.Text(messages.LoadClients), notification.Error)
		return
	}
	c.clientList = clients
}

func (c *Controller) loadProducts(ctx context.Context, token uint64) {
	products, err := c.products.ListAvailable(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lifecycle.Valid(token) {
		return
	}
	if err != nil {
		c.logger.Error("loading products failed", zap.Error(err))
		c.notifier.Notify(c.messages.Text(messages.LoadProducts), notification.Error)
		return
	}
	c.productList = products
}

// Ready reports whether all three mount loads have completed.
func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// OpenNew opens an empty form. It refuses while the dropdowns are loading.
func (c *Controller) OpenNew() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready {
		return false
	}
	c.dialogOpen = true
	c.editing = nil
	c.draft = newDraft()
	return true
}

// OpenEdit opens the form on an existing order. Only the first item is
// editable; the others are dropped when the form is submitted.
func (c *Controller) OpenEdit(id domain.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready {
		return false
	}
	found, ok := findOrder(c.snapshot, id)
	if !ok {
		return false
	}
	editing := found.Clone()
	draft := Draft{
		ClientID: editing.ClientID.String(),
		Status:   string(editing.Status),
	}
	if item, ok := editing.FirstItem(); ok {
		draft.ProductID = item.ProductID.String()
		if item.Quantity != 0 {
			draft.Quantity = strconv.Itoa(item.Quantity)
		}
	}

	c.dialogOpen = true
	c.editing = &editing
	c.draft = draft
	return true
}

func (c *Controller) SetDraft(d Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dialogOpen {
		c.draft = d
	}
}

func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dialogOpen = false
	c.editing = nil
	c.draft = newDraft()
}

func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if !c.dialogOpen {
		c.mu.Unlock()
		return nil
	}
	draft := c.draft
	var editingID domain.ID
	if c.editing != nil {
		editingID = c.editing.ID
	}
	c.mu.Unlock()

	payload, err := c.buildPayload(draft)
	if err != nil {
		return err
	}

	var successKey messages.Key
	if editingID != "" {
		_, err = c.orders.Update(ctx, editingID, payload)
		successKey = messages.OrderUpdated
	} else {
		_, err = c.orders.Create(ctx, payload)
		successKey = messages.OrderCreated
	}
	if err != nil {
		c.logger.Error("saving order failed", zap.String("orderId", editingID.String()), zap.Error(err))
		c.notifier.Notify(c.messages.Error(messages.SaveOrder, err), notification.Error)
		return err
	}

	c.notifier.Notify(c.messages.Text(successKey), notification.Success)
	c.Close()
	c.Reload(ctx)
	return nil
}

func (c *Controller) buildPayload(d Draft) (dto.OrderPayload, error) {
	clientID := strings.TrimSpace(d.ClientID)
	productID := strings.TrimSpace(d.ProductID)
	rawQuantity := strings.TrimSpace(d.Quantity)

	if clientID == "" || productID == "" || rawQuantity == "" {
		c.notifier.Notify(c.messages.Text(messages.RequiredOrderFields), notification.Warning)
		return dto.OrderPayload{}, apperrors.NewValidationError("clientId, productId and quantity are required")
	}
	quantity, err := strconv.Atoi(rawQuantity)
	if err != nil {
		c.notifier.Notify(c.messages.Text(messages.InvalidQuantity), notification.Warning)
		return dto.OrderPayload{}, apperrors.NewValidationError("quantity must be an integer", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: err.Error(),
		})
	}
	status := domain.OrderStatus(strings.TrimSpace(d.Status))
	if status == "" {
		status = domain.OrderStatusPending
	}
	if !status.Valid() {
		c.notifier.Notify(c.messages.Text(messages.InvalidStatus), notification.Warning)
		return dto.OrderPayload{}, apperrors.NewValidationError("unknown status", apperrors.ValidationDetail{
			Field:   "status",
			Message: string(status) + " is not an order status",
		})
	}

	return dto.OrderPayload{
		ClientID: domain.ID(clientID),
		Items:    []dto.OrderItemPayload{{ProductID: domain.ID(productID), Quantity: quantity}},
		Status:   status,
	}, nil
}

// ChangeStatus is the inline per-row status change. It bypasses the dialog.
func (c *Controller) ChangeStatus(ctx context.Context, id domain.ID, status domain.OrderStatus) error {
	if !status.Valid() {
		c.notifier.Notify(c.messages.Text(messages.InvalidStatus), notification.Warning)
		return apperrors.NewValidationError("unknown status", apperrors.ValidationDetail{
			Field:   "status",
			Message: string(status) + " is not an order status",
		})
	}

	if _, err := c.orders.UpdateStatus(ctx, id, status); err != nil {
		c.logger.Error("updating order status failed",
			zap.String("orderId", id.String()),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		c.notifier.Notify(c.messages.Error(messages.UpdateStatus, err), notification.Error)
		return err
	}

	c.notifier.Notify(c.messages.Text(messages.StatusUpdated), notification.Success)
	c.Reload(ctx)
	return nil
}

// RequestDelete asks for confirmation; nothing is sent until ConfirmDelete.
func (c *Controller) RequestDelete(id domain.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	found, ok := findOrder(c.snapshot, id)
	if !ok {
		return false
	}
	pending := found.Clone()
	c.pendingDelete = &pending
	return true
}

func (c *Controller) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = nil
}

func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	if c.pendingDelete == nil {
		c.mu.Unlock()
		return nil
	}
	id := c.pendingDelete.ID
	c.pendingDelete = nil
	c.mu.Unlock()

	if err := c.orders.Delete(ctx, id); err != nil {
		c.logger.Error("deleting order failed", zap.String("orderId", id.String()), zap.Error(err))
		c.notifier.Notify(c.messages.Error(messages.DeleteOrder, err), notification.Error)
		return err
	}

	c.notifier.Notify(c.messages.Text(messages.OrderDeleted), notification.Success)
	c.Reload(ctx)
	return nil
}

// Filter narrows the list by client, by status or by both. Empty values
// leave that dimension unfiltered.
func (c *Controller) Filter(ctx context.Context, clientID, status string) error {
	f := Filter{
		ClientID: domain.ID(strings.TrimSpace(clientID)),
		Status:   domain.OrderStatus(strings.TrimSpace(status)),
	}
	if f.Status != "" && !f.Status.Valid() {
		c.notifier.Notify(c.messages.Text(messages.InvalidStatus), notification.Warning)
		return apperrors.NewValidationError("unknown status", apperrors.ValidationDetail{
			Field:   "status",
			Message: string(f.Status) + " is not an order status",
		})
	}

	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()

	c.Reload(ctx)
	return nil
}

func (c *Controller) ClearFilter(ctx context.Context) {
	c.mu.Lock()
	c.filter = Filter{}
	c.mu.Unlock()

	c.Reload(ctx)
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Status:     viewstate.ListStatus(c.loading, len(c.snapshot)),
		Ready:      c.ready,
		Orders:     make([]domain.Order, len(c.snapshot)),
		Clients:    make([]domain.Client, len(c.clientList)),
		Products:   make([]domain.Product, len(c.productList)),
		Statuses:   domain.OrderStatuses(),
		DialogOpen: c.dialogOpen,
		Draft:      c.draft,
		Filter:     c.filter,
	}
	for i, o := range c.snapshot {
		v.Orders[i] = o.Clone()
	}
	copy(v.Clients, c.clientList)
	copy(v.Products, c.productList)
	if c.editing != nil {
		e := c.editing.Clone()
		v.Editing = &e
	}
	if c.pendingDelete != nil {
		p := c.pendingDelete.Clone()
		v.PendingDelete = &p
	}
	return v
}

func findOrder(orders []domain.Order, id domain.ID) (domain.Order, bool) {
	for _, o := range orders {
		if o.ID == id {
			return o, true
		}
	}
	return domain.Order{}, false
}
