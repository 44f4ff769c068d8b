package dto

import (
	"github.com/shopspring/decimal"

	"ordersconsole/internal/domain"
)

func init() {
	// The backend expects prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	DefaultPage     = 0
	DefaultPageSize = 20
)

type ClientPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	VIP   bool   `json:"vip"`
}

type ProductCreatePayload struct {
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
}

type StockUpdatePayload struct {
	StockQuantity int `json:"stockQuantity"`
}

type OrderItemPayload struct {
	ProductID domain.ID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

type OrderPayload struct {
	ClientID domain.ID          `json:"clientId"`
	Items    []OrderItemPayload `json:"items"`
	Status   domain.OrderStatus `json:"status"`
}

// Page is the backend's paged listing envelope.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}
