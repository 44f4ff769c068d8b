package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// OrderStatuses returns the statuses in display order.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(orderStatuses))
	copy(out, orderStatuses)
	return out
}

func (s OrderStatus) Valid() bool {
	for _, st := range orderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPending:
		return "Pending"
	case OrderStatusConfirmed:
		return "Confirmed"
	case OrderStatusShipped:
		return "Shipped"
	case OrderStatusDelivered:
		return "Delivered"
	case OrderStatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

func (s OrderStatus) Color() string {
	switch s {
	case OrderStatusPending:
		return "warning"
	case OrderStatusConfirmed:
		return "info"
	case OrderStatusShipped:
		return "primary"
	case OrderStatusDelivered:
		return "success"
	case OrderStatusCancelled:
		return "error"
	default:
		return "default"
	}
}

type OrderItem struct {
	ProductID ID  `json:"productId"`
	Quantity  int `json:"quantity"`
}

type Order struct {
	ID        ID          `json:"id,omitempty"`
	ClientID  ID          `json:"clientId"`
	Status    OrderStatus `json:"status"`
	Items     []OrderItem `json:"items"`
	CreatedAt *Timestamp  `json:"createdAt,omitempty"`
	// Quantity is only filled in by the out-of-stock listing.
	Quantity *int `json:"quantity,omitempty"`
}

// FirstItem returns the first item of the order; the console only edits that one.
func (o Order) FirstItem() (OrderItem, bool) {
	if len(o.Items) == 0 {
		return OrderItem{}, false
	}
	return o.Items[0], true
}

// Clone returns a deep copy so callers can hold it without sharing the items slice.
func (o Order) Clone() Order {
	out := o
	if o.Items != nil {
		out.Items = make([]OrderItem, len(o.Items))
		copy(out.Items, o.Items)
	}
	if o.CreatedAt != nil {
		ts := *o.CreatedAt
		out.CreatedAt = &ts
	}
	if o.Quantity != nil {
		q := *o.Quantity
		out.Quantity = &q
	}
	return out
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp decodes the backend's date-times, with or without a zone.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}
