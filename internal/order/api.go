package order

import (
	"context"
	"net/url"
	"strconv"

	"ordersconsole/internal/domain"
	"ordersconsole/internal/dto"
)

type transport interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, query url.Values, out any) error
	Delete(ctx context.Context, path string) error
}

// API maps the order endpoints of the backend one to one.
type API struct {
	http transport
}

func NewAPI(t transport) *API {
	return &API{http: t}
}

func orderPath(id domain.ID) string {
	return "/orders/" + url.PathEscape(id.String())
}

func clientPath(clientID domain.ID) string {
	return "/orders/client/" + url.PathEscape(clientID.String())
}

func (a *API) Create(ctx context.Context, payload dto.OrderPayload) (*domain.Order, error) {
	var out domain.Order
	if err := a.http.Post(ctx, "/orders", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) GetByID(ctx context.Context, id domain.ID) (*domain.Order, error) {
	var out domain.Order
	if err := a.http.Get(ctx, orderPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) List(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := a.http.Get(ctx, "/orders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByClient returns one page of the client's orders.
func (a *API) ListByClient(ctx context.Context, clientID domain.ID, page, size int) (*dto.Page[domain.Order], error) {
	var out dto.Page[domain.Order]
	query := url.Values{
		"page": {strconv.Itoa(page)},
		"size": {strconv.Itoa(size)},
	}
	if err := a.http.Get(ctx, clientPath(clientID), query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	var out []domain.Order
	if err := a.http.Get(ctx, "/orders/status/"+url.PathEscape(string(status)), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) ListByClientAndStatus(ctx context.Context, clientID domain.ID, status domain.OrderStatus) ([]domain.Order, error) {
	var out []domain.Order
	path := clientPath(clientID) + "/status/" + url.PathEscape(string(status))
	if err := a.http.Get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListOutOfStock returns the order summaries whose quantity the backend
// reports as unavailable.
func (a *API) ListOutOfStock(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := a.http.Get(ctx, "/orders/out-of-stock", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) CountByClient(ctx context.Context, clientID domain.ID) (int64, error) {
	var out int64
	if err := a.http.Get(ctx, clientPath(clientID)+"/count", nil, &out); err != nil {
		return 0, err
	}
	return out, nil
}

func (a *API) Update(ctx context.Context, id domain.ID, payload dto.OrderPayload) (*domain.Order, error) {
	var out domain.Order
	if err := a.http.Put(ctx, orderPath(id), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) Delete(ctx context.Context, id domain.ID) error {
	return a.http.Delete(ctx, orderPath(id))
}

// UpdateStatus changes only the status; it travels as a query parameter.
func (a *API) UpdateStatus(ctx context.Context, id domain.ID, status domain.OrderStatus) (*domain.Order, error) {
	var out domain.Order
	query := url.Values{"status": {string(status)}}
	if err := a.http.Patch(ctx, orderPath(id)+"/status", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
