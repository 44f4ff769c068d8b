// Package messages holds the user-facing toast texts. The defaults are
// embedded; a YAML file with the same shape can override any of them.
package messages

import (
	_ "embed"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	apperrors "ordersconsole/internal/errors"
)

type Key string

const (
	ClientCreated  Key = "client_created"
	ClientUpdated  Key = "client_updated"
	ProductCreated Key = "product_created"
	StockUpdated   Key = "stock_updated"
	OrderCreated   Key = "order_created"
	OrderUpdated   Key = "order_updated"
	OrderDeleted   Key = "order_deleted"
	StatusUpdated  Key = "status_updated"

	LoadClients    Key = "load_clients"
	LoadProducts   Key = "load_products"
	LoadOrders     Key = "load_orders"
	SaveClient     Key = "save_client"
	SaveProduct    Key = "save_product"
	SaveOrder      Key = "save_order"
	DeleteOrder    Key = "delete_order"
	UpdateStock    Key = "update_stock"
	UpdateStatus   Key = "update_status"
	DashboardData  Key = "dashboard_data"
	ClientNotFound Key = "client_not_found"

	RequiredClientFields  Key = "required_client_fields"
	RequiredProductFields Key = "required_product_fields"
	RequiredOrderFields   Key = "required_order_fields"
	InvalidQuantity       Key = "invalid_quantity"
	InvalidPrice          Key = "invalid_price"
	InvalidStatus         Key = "invalid_status"
	ConfirmDelete         Key = "confirm_delete"
)

//go:embed messages.yaml
var defaultCatalog []byte

type Catalog struct {
	Messages map[Key]string `yaml:"messages"`
	Detailed map[Key]string `yaml:"detailed"`
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded message catalog: %v", err))
	}
	return c
}

// Load returns the embedded catalog with the entries of path applied on
// top. An empty path returns the defaults.
func Load(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading message catalog: %w", err)
	}
	override, err := parse(data)
	if err != nil {
		return nil, err
	}

	for k, v := range override.Messages {
		c.Messages[k] = v
	}
	for k, v := range override.Detailed {
		c.Detailed[k] = v
	}
	return c, nil
}

func parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing message catalog: %w", err)
	}
	if c.Messages == nil {
		c.Messages = map[Key]string{}
	}
	if c.Detailed == nil {
		c.Detailed = map[Key]string{}
	}
	return &c, nil
}

// Text returns the message for key, or the key itself when it is missing.
func (c *Catalog) Text(key Key) string {
	if msg, ok := c.Messages[key]; ok {
		return msg
	}
	return string(key)
}

// Error returns the toast text for a failed backend call.
func (c *Catalog) Error(key Key, err error) string {
	text := c.Text(key)
	hint, detailed := c.Detailed[key]
	if !detailed {
		return text
	}
	if msg := apperrors.BackendMessage(err); msg != "" {
		return text + ": " + msg
	}
	return text + ": " + hint
}
