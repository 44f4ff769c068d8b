package client

import (
	"context"
	"net/url"

	"ordersconsole/internal/domain"
	"ordersconsole/internal/dto"
)

type transport interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
}

// API maps the client endpoints of the backend one to one.
type API struct {
	http transport
}

func NewAPI(t transport) *API {
	return &API{http: t}
}

func (a *API) ListVIP(ctx context.Context) ([]domain.Client, error) {
	var out []domain.Client
	if err := a.http.Get(ctx, "/clients/vip", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) GetByID(ctx context.Context, id domain.ID) (*domain.Client, error) {
	var out domain.Client
	if err := a.http.Get(ctx, "/clients/"+url.PathEscape(id.String()), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) GetByEmail(ctx context.Context, email string) (*domain.Client, error) {
	var out domain.Client
	if err := a.http.Get(ctx, "/clients/email/"+url.PathEscape(email), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) Create(ctx context.Context, payload dto.ClientPayload) (*domain.Client, error) {
	var out domain.Client
	if err := a.http.Post(ctx, "/clients", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) Update(ctx context.Context, id domain.ID, payload dto.ClientPayload) (*domain.Client, error) {
	var out domain.Client
	if err := a.http.Put(ctx, "/clients/"+url.PathEscape(id.String()), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) CountVIP(ctx context.Context) (int64, error) {
	var out int64
	if err := a.http.Get(ctx, "/clients/vip/count", nil, &out); err != nil {
		return 0, err
	}
	return out, nil
}
