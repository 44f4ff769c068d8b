package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		json string
		want ID
	}{
		{name: "string uuid", json: `"3f2b8c1e-aaaa-bbbb-cccc-000000000001"`, want: "3f2b8c1e-aaaa-bbbb-cccc-000000000001"},
		{name: "number", json: `42`, want: "42"},
		{name: "null", json: `null`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			require.NoError(t, json.Unmarshal([]byte(tt.json), &id))
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestID_UnmarshalJSON_Invalid(t *testing.T) {
	var id ID
	assert.Error(t, json.Unmarshal([]byte(`{}`), &id))
}

func TestID_MarshalJSON_KeepsNumbersNumeric(t *testing.T) {
	data, err := json.Marshal(struct {
		A ID `json:"a"`
		B ID `json:"b"`
	}{A: "7", B: "abc-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":7,"b":"abc-1"}`, string(data))
}

func TestID_MarshalJSON_NonCanonicalIntegersStayStrings(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "zero padded", in: `"0042"`, want: `"0042"`},
		{name: "explicit sign", in: `"+7"`, want: `"+7"`},
		{name: "negative", in: `"-3"`, want: `-3`},
		{name: "canonical integer", in: `"123"`, want: `123`},
		{name: "number", in: `123`, want: `123`},
		{name: "beyond int64", in: `"99999999999999999999"`, want: `"99999999999999999999"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			require.NoError(t, json.Unmarshal([]byte(tt.in), &id))

			data, err := json.Marshal(struct {
				ClientID ID `json:"clientId"`
			}{ClientID: id})
			require.NoError(t, err)
			assert.JSONEq(t, `{"clientId":`+tt.want+`}`, string(data))
		})
	}
}

func TestID_Short(t *testing.T) {
	assert.Equal(t, "3f2b8c1e", ID("3f2b8c1e-aaaa").Short(8))
	assert.Equal(t, "12", ID("12").Short(8))
}

func TestOrderStatus_Valid(t *testing.T) {
	for _, s := range OrderStatuses() {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("LOST").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestOrderStatus_LabelAndColor(t *testing.T) {
	assert.Equal(t, "Pending", OrderStatusPending.Label())
	assert.Equal(t, "warning", OrderStatusPending.Color())
	assert.Equal(t, "error", OrderStatusCancelled.Color())
	assert.Equal(t, "LOST", OrderStatus("LOST").Label())
	assert.Equal(t, "default", OrderStatus("LOST").Color())
}

func TestOrderStatuses_ReturnsCopy(t *testing.T) {
	statuses := OrderStatuses()
	statuses[0] = "MUTATED"
	assert.Equal(t, OrderStatusPending, OrderStatuses()[0])
}

func TestOrder_Decode(t *testing.T) {
	payload := `{
		"id": "a1b2c3d4e5",
		"clientId": 3,
		"status": "SHIPPED",
		"items": [{"productId": 9, "quantity": 2}, {"productId": 10, "quantity": 1}],
		"createdAt": "2024-05-01T10:30:00"
	}`

	var o Order
	require.NoError(t, json.Unmarshal([]byte(payload), &o))

	assert.Equal(t, ID("a1b2c3d4e5"), o.ID)
	assert.Equal(t, ID("3"), o.ClientID)
	assert.Equal(t, OrderStatusShipped, o.Status)
	require.Len(t, o.Items, 2)
	require.NotNil(t, o.CreatedAt)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC), o.CreatedAt.Time)

	first, ok := o.FirstItem()
	assert.True(t, ok)
	assert.Equal(t, ID("9"), first.ProductID)
}

func TestOrder_DecodeWithoutCreatedAt(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","clientId":"2","status":"PENDING","createdAt":null}`), &o))
	assert.Nil(t, o.CreatedAt)

	_, ok := o.FirstItem()
	assert.False(t, ok)
}

func TestTimestamp_Layouts(t *testing.T) {
	for _, s := range []string{"2024-05-01T10:30:00Z", "2024-05-01T10:30:00.123", "2024-05-01 10:30:00", "2024-05-01"} {
		var ts Timestamp
		assert.NoError(t, json.Unmarshal([]byte(`"`+s+`"`), &ts), s)
		assert.Equal(t, 2024, ts.Year())
	}

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestOrder_Clone(t *testing.T) {
	q := 4
	o := Order{ID: "1", Items: []OrderItem{{ProductID: "p", Quantity: 1}}, Quantity: &q}

	c := o.Clone()
	c.Items[0].Quantity = 99
	*c.Quantity = 100

	assert.Equal(t, 1, o.Items[0].Quantity)
	assert.Equal(t, 4, *o.Quantity)
}

func TestProduct_StockLevel(t *testing.T) {
	tests := []struct {
		stock int
		want  StockLevel
	}{
		{0, StockOut},
		{1, StockLow},
		{10, StockLow},
		{11, StockAvailable},
	}

	for _, tt := range tests {
		p := Product{StockQuantity: tt.stock}
		assert.Equal(t, tt.want, p.StockLevel(), "stock %d", tt.stock)
	}
	assert.Equal(t, "Out of stock", StockOut.Label())
	assert.Equal(t, "warning", StockLow.Color())
}

func TestProduct_DecodePrice(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"Pen","price":12.5,"stockQuantity":3}`), &p))
	assert.True(t, decimal.RequireFromString("12.5").Equal(p.Price))
}

func TestFindClientAndProduct(t *testing.T) {
	clients := []Client{{ID: "1", Name: "Ana"}, {ID: "2", Name: "Bruno"}}
	c, ok := FindClient(clients, "2")
	assert.True(t, ok)
	assert.Equal(t, "Bruno", c.Name)
	_, ok = FindClient(clients, "9")
	assert.False(t, ok)

	products := []Product{{ID: "p1", Name: "Pen"}}
	p, ok := FindProduct(products, "p1")
	assert.True(t, ok)
	assert.Equal(t, "Pen", p.Name)
	_, ok = FindProduct(nil, "p1")
	assert.False(t, ok)
}
