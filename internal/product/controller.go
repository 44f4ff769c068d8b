package product

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ordersconsole/internal/domain"
	"ordersconsole/internal/dto"
	apperrors "ordersconsole/internal/errors"
	"ordersconsole/internal/messages"
	"ordersconsole/internal/notification"
	"ordersconsole/internal/viewstate"
)

type ProductAPI interface {
	ListActive(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, payload dto.ProductCreatePayload) (*domain.Product, error)
	UpdateStock(ctx context.Context, id domain.ID, stockQuantity int) (*domain.Product, error)
}

type Notifier interface {
	Notify(message string, severity notification.Severity)
}

// Draft is the create dialog; fields stay strings until Submit parses them.
type Draft struct {
	Name          string
	Price         string
	StockQuantity string
}

type View struct {
	Status     viewstate.Status
	Products   []domain.Product
	DialogOpen bool
	Draft      Draft
	StockOpen  bool
	StockFor   *domain.Product
	StockDraft string
}

func (v View) Loading() bool {
	return v.Status == viewstate.Loading
}

type Controller struct {
	api      ProductAPI
	notifier Notifier
	messages *messages.Catalog
	logger   *zap.Logger

	mu         sync.Mutex
	lifecycle  viewstate.Lifecycle
	cancel     context.CancelFunc
	loading    bool
	products   []domain.Product
	dialogOpen bool
	draft      Draft
	stockOpen  bool
	stockFor   *domain.Product
	stockDraft string
}

func NewController(api ProductAPI, notifier Notifier, catalog *messages.Catalog, logger *zap.Logger) *Controller {
	return &Controller{
		api:      api,
		notifier: notifier,
		messages: catalog,
		logger:   logger.With(zap.String("view", "products")),
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
	c.dialogOpen = false
	c.draft = Draft{}
	c.stockOpen = false
	c.stockFor = nil
	c.stockDraft = ""
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

func (c *Controller) load(ctx context.Context, token uint64) {
	products, err := c.api.ListActive(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lifecycle.Valid(token) {
		return
	}
	c.loading = false
	if err != nil {
		c.logger.Error("loading products failed", zap.Error(err))
		c.notifier.Notify(c.messages.Text(messages.LoadProducts), notification.Error)
		return
	}
	c.products = products
}

func (c *Controller) OpenNew() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dialogOpen = true
	c.draft = Draft{}
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
	c.draft = Draft{}
}

// Submit creates the product in the dialog.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if !c.dialogOpen {
		c.mu.Unlock()
		return nil
	}
	draft := c.draft
	c.mu.Unlock()

	if strings.TrimSpace(draft.Name) == "" || strings.TrimSpace(draft.Price) == "" || strings.TrimSpace(draft.StockQuantity) == "" {
		c.notifier.Notify(c.messages.Text(messages.RequiredProductFields), notification.Warning)
		return apperrors.NewValidationError("name, price and stockQuantity are required")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(draft.Price))
	if err != nil {
		c.notifier.Notify(c.messages.Text(messages.InvalidPrice), notification.Warning)
		return apperrors.NewValidationError("price must be a number", apperrors.ValidationDetail{Field: "price", Message: err.Error()})
	}
	stock, err := strconv.Atoi(strings.TrimSpace(draft.StockQuantity))
	if err != nil {
		c.notifier.Notify(c.messages.Text(messages.InvalidQuantity), notification.Warning)
		return apperrors.NewValidationError("stockQuantity must be an integer", apperrors.ValidationDetail{Field: "stockQuantity", Message: err.Error()})
	}

	payload := dto.ProductCreatePayload{
		Name:          draft.Name,
		Price:         price,
		StockQuantity: stock,
	}
	if _, err := c.api.Create(ctx, payload); err != nil {
		c.logger.Error("creating product failed", zap.Error(err))
		c.notifier.Notify(c.messages.Error(messages.SaveProduct, err), notification.Error)
		return err
	}

	c.notifier.Notify(c.messages.Text(messages.ProductCreated), notification.Success)
	c.Close()
	c.Reload(ctx)
	return nil
}

// OpenStock opens the stock dialog seeded with the product's current stock.
func (c *Controller) OpenStock(id domain.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	found, ok := domain.FindProduct(c.products, id)
	if !ok {
		return false
	}
	c.stockOpen = true
	c.stockFor = &found
	c.stockDraft = strconv.Itoa(found.StockQuantity)
	return true
}

func (c *Controller) SetStockDraft(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stockOpen {
		c.stockDraft = value
	}
}

func (c *Controller) CloseStock() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stockOpen = false
	c.stockFor = nil
	c.stockDraft = ""
}

// SubmitStock sets the stock of the selected product. Missing, non-integer
// and negative values are rejected before any call.
func (c *Controller) SubmitStock(ctx context.Context) error {
	c.mu.Lock()
	if !c.stockOpen || c.stockFor == nil {
		c.mu.Unlock()
		return nil
	}
	id := c.stockFor.ID
	raw := strings.TrimSpace(c.stockDraft)
	c.mu.Unlock()

	stock, err := strconv.Atoi(raw)
	if raw == "" || err != nil || stock < 0 {
		c.notifier.Notify(c.messages.Text(messages.InvalidQuantity), notification.Warning)
		return apperrors.NewValidationError("stock must be a non-negative integer", apperrors.ValidationDetail{
			Field:   "stockQuantity",
			Message: "stock must be a non-negative integer",
		})
	}

	if _, err := c.api.UpdateStock(ctx, id, stock); err != nil {
		c.logger.Error("updating stock failed", zap.String("productId", id.String()), zap.Error(err))
		c.notifier.Notify(c.messages.Error(messages.UpdateStock, err), notification.Error)
		return err
	}

	c.notifier.Notify(c.messages.Text(messages.StockUpdated), notification.Success)
	c.CloseStock()
	c.Reload(ctx)
	return nil
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Status:     viewstate.ListStatus(c.loading, len(c.products)),
		Products:   make([]domain.Product, len(c.products)),
		DialogOpen: c.dialogOpen,
		Draft:      c.draft,
		StockOpen:  c.stockOpen,
		StockDraft: c.stockDraft,
	}
	copy(v.Products, c.products)
	if c.stockFor != nil {
		p := *c.stockFor
		v.StockFor = &p
	}
	return v
}
