package domain

import "github.com/shopspring/decimal"

const (
	OutOfStockQuantity = 0
	LowStockThreshold  = 10
)

type StockLevel string

const (
	StockOut       StockLevel = "OUT_OF_STOCK"
	StockLow       StockLevel = "LOW_STOCK"
	StockAvailable StockLevel = "AVAILABLE"
)

func (l StockLevel) Label() string {
	switch l {
	case StockOut:
		return "Out of stock"
	case StockLow:
		return "Low stock"
	default:
		return "Available"
	}
}

func (l StockLevel) Color() string {
	switch l {
	case StockOut:
		return "error"
	case StockLow:
		return "warning"
	default:
		return "success"
	}
}

type Product struct {
	ID            ID              `json:"id,omitempty"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
}

// StockLevel classifies the product for the stock chip: zero is out of
// stock, up to LowStockThreshold is low.
func (p Product) StockLevel() StockLevel {
	switch {
	case p.StockQuantity <= OutOfStockQuantity:
		return StockOut
	case p.StockQuantity <= LowStockThreshold:
		return StockLow
	default:
		return StockAvailable
	}
}

func FindProduct(products []Product, id ID) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
