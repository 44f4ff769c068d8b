package product

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
}

// API maps the product endpoints of the backend one to one. There is no
// general update: stock only changes through UpdateStock.
type API struct {
	http transport
}

func NewAPI(t transport) *API {
	return &API{http: t}
}

func productPath(id domain.ID) string {
	return "/products/" + url.PathEscape(id.String())
}

func (a *API) GetByID(ctx context.Context, id domain.ID) (*domain.Product, error) {
	var out domain.Product
	if err := a.http.Get(ctx, productPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) ListActive(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := a.http.Get(ctx, "/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) ListAvailable(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := a.http.Get(ctx, "/products/available", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) Create(ctx context.Context, payload dto.ProductCreatePayload) (*domain.Product, error) {
	var out domain.Product
	if err := a.http.Post(ctx, "/products", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) UpdateStock(ctx context.Context, id domain.ID, stockQuantity int) (*domain.Product, error) {
	var out domain.Product
	payload := dto.StockUpdatePayload{StockQuantity: stockQuantity}
	if err := a.http.Put(ctx, productPath(id)+"/stock", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) ListLowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	var out []domain.Product
	query := url.Values{"threshold": {strconv.Itoa(threshold)}}
	if err := a.http.Get(ctx, "/products/low-stock", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetNameByID returns the product name; the endpoint answers with a bare
// JSON string.
func (a *API) GetNameByID(ctx context.Context, id domain.ID) (string, error) {
	var out string
	if err := a.http.Get(ctx, productPath(id)+"/name", nil, &out); err != nil {
		return "", err
	}
	return out, nil
}
