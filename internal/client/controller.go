package client

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"ordersconsole/internal/domain"
	"ordersconsole/internal/dto"
	apperrors "ordersconsole/internal/errors"
	"ordersconsole/internal/messages"
	"ordersconsole/internal/notification"
	"ordersconsole/internal/viewstate"
)

type ClientAPI interface {
	ListVIP(ctx context.Context) ([]domain.Client, error)
	GetByEmail(ctx context.Context, email string) (*domain.Client, error)
	Create(ctx context.Context, payload dto.ClientPayload) (*domain.Client, error)
	Update(ctx context.Context, id domain.ID, payload dto.ClientPayload) (*domain.Client, error)
}

type Notifier interface {
	Notify(message string, severity notification.Severity)
}

// Draft is the dialog form.
type Draft struct {
	Name  string
	Email string
	VIP   bool
}

// View is a rendering snapshot; it shares nothing with the controller.
type View struct {
	Status      viewstate.Status
	Clients     []domain.Client
	DialogOpen  bool
	Editing     *domain.Client
	Draft       Draft
	SearchEmail string
	SearchHit   *domain.Client
}

func (v View) Loading() bool {
	return v.Status == viewstate.Loading
}

// Controller owns the state of the clients page of one session.
type Controller struct {
	api      ClientAPI
	notifier Notifier
	messages *messages.Catalog
	logger   *zap.Logger

	mu          sync.Mutex
	lifecycle   viewstate.Lifecycle
	cancel      context.CancelFunc
	loading     bool
	clients     []domain.Client
	dialogOpen  bool
	editing     *domain.Client
	draft       Draft
	searchEmail string
	searchHit   *domain.Client
}

func NewController(api ClientAPI, notifier Notifier, catalog *messages.Catalog, logger *zap.Logger) *Controller {
	return &Controller{
		api:      api,
		notifier: notifier,
		messages: catalog,
		logger:   logger.With(zap.String("view", "clients")),
	}
}

// Mount starts the initial load and returns a channel closed when it ends.
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

// Unmount discards any fetch still in flight.
func (c *Controller) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lifecycle.Unmount()
	c.loading = false
	c.dialogOpen = false
	c.editing = nil
	c.draft = Draft{}
	c.searchEmail = ""
	c.searchHit = nil
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

// Reload refetches the list synchronously.
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
	clients, err := c.api.ListVIP(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lifecycle.Valid(token) {
		c.logger.Debug("discarding clients fetched for an unmounted view")
		return
	}
	c.loading = false
	if err != nil {
		c.logger.Error("loading clients failed", zap.Error(err))
		c.notifier.Notify(c.messages.Text(messages.LoadClients), notification.Error)
		return
	}
	c.clients = clients
}

func (c *Controller) OpenNew() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dialogOpen = true
	c.editing = nil
	c.draft = Draft{}
}

// OpenEdit seeds the draft from a copy of the listed client.
func (c *Controller) OpenEdit(id domain.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	found, ok := domain.FindClient(c.clients, id)
	if !ok {
		return false
	}
	c.dialogOpen = true
	c.editing = &found
	c.draft = Draft{Name: found.Name, Email: found.Email, VIP: found.VIP}
	return true
}

func (c *Controller) SetDraft(d Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dialogOpen {
		c.draft = d
	}
}

// Close hides the dialog and resets the draft and the editing reference together.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dialogOpen = false
	c.editing = nil
	c.draft = Draft{}
}

// Submit creates or updates the client held by the dialog. On success the
// dialog closes and the list is refetched; on failure the dialog keeps the
// draft.
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

	if err := validateDraft(draft); err != nil {
		c.notifier.Notify(c.messages.Text(messages.RequiredClientFields), notification.Warning)
		return err
	}

	payload := dto.ClientPayload{
		Name:  draft.Name,
		Email: draft.Email,
		VIP:   draft.VIP,
	}

	var err error
	success := messages.ClientCreated
	if editingID.IsZero() {
		_, err = c.api.Create(ctx, payload)
	} else {
		_, err = c.api.Update(ctx, editingID, payload)
		success = messages.ClientUpdated
	}
	if err != nil {
		c.logger.Error("saving client failed", zap.String("clientId", editingID.String()), zap.Error(err))
		c.notifier.Notify(c.messages.Error(messages.SaveClient, err), notification.Error)
		return err
	}

	c.notifier.Notify(c.messages.Text(success), notification.Success)
	c.Close()
	c.Reload(ctx)
	return nil
}

func validateDraft(d Draft) error {
	var details []apperrors.ValidationDetail
	if strings.TrimSpace(d.Name) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name is required"})
	}
	if strings.TrimSpace(d.Email) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "email", Message: "email is required"})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("name and email are required", details...)
	}
	return nil
}

// SearchByEmail looks a client up without touching the list snapshot. An
// empty email clears the previous result.
func (c *Controller) SearchByEmail(ctx context.Context, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		c.mu.Lock()
		c.searchEmail = ""
		c.searchHit = nil
		c.mu.Unlock()
		return
	}

	found, err := c.api.GetByEmail(ctx, email)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.searchEmail = email
	c.searchHit = nil
	if err != nil {
		if be, ok := apperrors.IsBackendError(err); ok && be.StatusCode == http.StatusNotFound {
			c.notifier.Notify(c.messages.Text(messages.ClientNotFound), notification.Warning)
			return
		}
		c.logger.Error("searching client by email failed", zap.Error(err))
		c.notifier.Notify(c.messages.Text(messages.LoadClients), notification.Error)
		return
	}
	c.searchHit = found
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Status:      viewstate.ListStatus(c.loading, len(c.clients)),
		Clients:     make([]domain.Client, len(c.clients)),
		DialogOpen:  c.dialogOpen,
		Draft:       c.draft,
		SearchEmail: c.searchEmail,
	}
	copy(v.Clients, c.clients)
	if c.editing != nil {
		e := *c.editing
		v.Editing = &e
	}
	if c.searchHit != nil {
		hit := *c.searchHit
		v.SearchHit = &hit
	}
	return v
}
