package order

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ordersconsole/internal/domain"
	"ordersconsole/internal/dto"
	apperrors "ordersconsole/internal/errors"
	"ordersconsole/internal/messages"
	"ordersconsole/internal/notification"
	"ordersconsole/internal/testutil"
	"ordersconsole/internal/viewstate"
)

// Mock implementations
type mockOrderAPI struct {
	mu          sync.Mutex
	calls       []string
	createCalls []dto.OrderPayload
	updateCalls []dto.OrderPayload
	deleteCalls []domain.ID
	statusCalls []domain.OrderStatus

	ListFunc                  func(ctx context.Context) ([]domain.Order, error)
	ListByClientFunc          func(ctx context.Context, clientID domain.ID, page, size int) (*dto.Page[domain.Order], error)
	ListByStatusFunc          func(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	ListByClientAndStatusFunc func(ctx context.Context, clientID domain.ID, status domain.OrderStatus) ([]domain.Order, error)
	CreateFunc                func(ctx context.Context, payload dto.OrderPayload) (*domain.Order, error)
	UpdateFunc                func(ctx context.Context, id domain.ID, payload dto.OrderPayload) (*domain.Order, error)
	DeleteFunc                func(ctx context.Context, id domain.ID) error
	UpdateStatusFunc          func(ctx context.Context, id domain.ID, status domain.OrderStatus) (*domain.Order, error)
}

func (m *mockOrderAPI) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *mockOrderAPI) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (m *mockOrderAPI) List(ctx context.Context) ([]domain.Order, error) {
	m.record("List")
	return m.ListFunc(ctx)
}

func (m *mockOrderAPI) ListByClient(ctx context.Context, clientID domain.ID, page, size int) (*dto.Page[domain.Order], error) {
	m.record("ListByClient")
	return m.ListByClientFunc(ctx, clientID, page, size)
}

func (m *mockOrderAPI) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	m.record("ListByStatus")
	return m.ListByStatusFunc(ctx, status)
}

func (m *mockOrderAPI) ListByClientAndStatus(ctx context.Context, clientID domain.ID, status domain.OrderStatus) ([]domain.Order, error) {
	m.record("ListByClientAndStatus")
	return m.ListByClientAndStatusFunc(ctx, clientID, status)
}

func (m *mockOrderAPI) Create(ctx context.Context, payload dto.OrderPayload) (*domain.Order, error) {
	m.mu.Lock()
	m.createCalls = append(m.createCalls, payload)
	m.mu.Unlock()
	return m.CreateFunc(ctx, payload)
}

func (m *mockOrderAPI) Update(ctx context.Context, id domain.ID, payload dto.OrderPayload) (*domain.Order, error) {
	m.mu.Lock()
	m.updateCalls = append(m.updateCalls, payload)
	m.mu.Unlock()
	return m.UpdateFunc(ctx, id, payload)
}

func (m *mockOrderAPI) Delete(ctx context.Context, id domain.ID) error {
	m.mu.Lock()
	m.deleteCalls = append(m.deleteCalls, id)
	m.mu.Unlock()
	return m.DeleteFunc(ctx, id)
}

func (m *mockOrderAPI) UpdateStatus(ctx context.Context, id domain.ID, status domain.OrderStatus) (*domain.Order, error) {
	m.mu.Lock()
	m.statusCalls = append(m.statusCalls, status)
	m.mu.Unlock()
	return m.UpdateStatusFunc(ctx, id, status)
}

type mockClients struct {
	ListVIPFunc func(ctx context.Context) ([]domain.Client, error)
}

func (m *mockClients) ListVIP(ctx context.Context) ([]domain.Client, error) {
	return m.ListVIPFunc(ctx)
}

type mockProducts struct {
	ListAvailableFunc func(ctx context.Context) ([]domain.Product, error)
}

func (m *mockProducts) ListAvailable(ctx context.Context) ([]domain.Product, error) {
	return m.ListAvailableFunc(ctx)
}

func sampleOrders() []domain.Order {
	created := domain.Timestamp{Time: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)}
	return []domain.Order{
		{
			ID:        "10",
			ClientID:  "1",
			Status:    domain.OrderStatusPending,
			Items:     []domain.OrderItem{{ProductID: "100", Quantity: 2}},
			CreatedAt: &created,
		},
		{
			ID:       "11",
			ClientID: "2",
			Status:   domain.OrderStatusShipped,
			Items: []domain.OrderItem{
				{ProductID: "101", Quantity: 1},
				{ProductID: "100", Quantity: 4},
				{ProductID: "102", Quantity: 9},
			},
		},
	}
}

func okOrders(ctx context.Context) ([]domain.Order, error) { return sampleOrders(), nil }

func okClients() *mockClients {
	return &mockClients{ListVIPFunc: func(ctx context.Context) ([]domain.Client, error) {
		return []domain.Client{{ID: "1", Name: "Ana", VIP: true}, {ID: "2", Name: "Bruno", VIP: true}}, nil
	}}
}

func okProducts() *mockProducts {
	return &mockProducts{ListAvailableFunc: func(ctx context.Context) ([]domain.Product, error) {
		return []domain.Product{{ID: "100", Name: "Pen", StockQuantity: 50}, {ID: "101", Name: "Ink", StockQuantity: 5}}, nil
	}}
}

func newTestController(api OrderAPI, clients ClientLister, products ProductLister) (*Controller, *testutil.Notifier) {
	notes := &testutil.Notifier{}
	return NewController(api, clients, products, notes, messages.Default(), zap.NewNop()), notes
}

func mountedController(t *testing.T, api *mockOrderAPI) (*Controller, *testutil.Notifier) {
	t.Helper()
	c, notes := newTestController(api, okClients(), okProducts())
	<-c.Mount(context.Background())
	return c, notes
}

func TestMount_LoadsAllThree(t *testing.T) {
	api := &mockOrderAPI{ListFunc: okOrders}

	c, notes := mountedController(t, api)

	v := c.View()
	assert.Equal(t, viewstate.Loaded, v.Status)
	assert.True(t, v.Ready)
	assert.Len(t, v.Orders, 2)
	assert.Len(t, v.Clients, 2)
	assert.Len(t, v.Products, 2)
	assert.Equal(t, domain.OrderStatuses(), v.Statuses)
	assert.Empty(t, notes.All())
}

func TestMount_LoadsAreIndependent(t *testing.T) {
	api := &mockOrderAPI{ListFunc: okOrders}
	clients := &mockClients{ListVIPFunc: func(ctx context.Context) ([]domain.Client, error) {
		return nil, errors.New("clients down")
	}}
	products := &mockProducts{ListAvailableFunc: func(ctx context.Context) ([]domain.Product, error) {
		return nil, errors.New("products down")
	}}
	c, notes := newTestController(api, clients, products)

	<-c.Mount(context.Background())

	v := c.View()
	assert.True(t, v.Ready)
	assert.Len(t, v.Orders, 2)
	assert.Empty(t, v.Clients)
	assert.Empty(t, v.Products)
	assert.Equal(t, 2, notes.Count(notification.Error))
	msgs := []string{notes.All()[0].Message, notes.All()[1].Message}
	assert.ElementsMatch(t, []string{"Failed to load clients", "Failed to load products"}, msgs)
}

func TestMount_NotReadyUntilSlowestLoadCompletes(t *testing.T) {
	release := make(chan struct{})
	api := &mockOrderAPI{ListFunc: okOrders}
	products := &mockProducts{ListAvailableFunc: func(ctx context.Context) ([]domain.Product, error) {
		<-release
		return nil, nil
	}}
	c, _ := newTestController(api, okClients(), products)

	done := c.Mount(context.Background())
	require.Eventually(t, func() bool { return c.View().Status == viewstate.Loaded }, time.Second, 5*time.Millisecond)
	assert.False(t, c.Ready())
	assert.False(t, c.OpenNew())

	close(release)
	<-done
	assert.True(t, c.Ready())
	assert.True(t, c.OpenNew())
}

func TestUnmount_DiscardsAllThreeLoads(t *testing.T) {
	release := make(chan struct{})
	api := &mockOrderAPI{ListFunc: func(ctx context.Context) ([]domain.Order, error) {
		<-release
		return sampleOrders(), nil
	}}
	c, notes := newTestController(api, okClients(), okProducts())

	done := c.Mount(context.Background())
	c.Unmount()
	close(release)
	<-done

	v := c.View()
	assert.Empty(t, v.Orders)
	assert.Empty(t, v.Clients)
	assert.False(t, v.Ready)
	assert.Empty(t, notes.All())
}

func TestSubmit_CreatesSingleItemOrder(t *testing.T) {
	api := &mockOrderAPI{
		ListFunc: okOrders,
		CreateFunc: func(ctx context.Context, p dto.OrderPayload) (*domain.Order, error) {
			return &domain.Order{ID: "12"}, nil
		},
	}
	c, notes := mountedController(t, api)

	require.True(t, c.OpenNew())
	assert.Equal(t, string(domain.OrderStatusPending), c.View().Draft.Status)
	c.SetDraft(Draft{ClientID: "1", ProductID: "100", Quantity: "3", Status: "CONFIRMED"})
	require.NoError(t, c.Submit(context.Background()))

	require.Len(t, api.createCalls, 1)
	assert.Equal(t, dto.OrderPayload{
		ClientID: "1",
		Items:    []dto.OrderItemPayload{{ProductID: "100", Quantity: 3}},
		Status:   domain.OrderStatusConfirmed,
	}, api.createCalls[0])
	assert.Equal(t, 2, api.Calls("List"))
	assert.False(t, c.View().DialogOpen)
	last, _ := notes.Last()
	assert.Equal(t, "Order created successfully", last.Message)
}

func TestSubmit_EditingMultiItemOrderKeepsOnlyFirstItem(t *testing.T) {
	api := &mockOrderAPI{
		ListFunc: okOrders,
		UpdateFunc: func(ctx context.Context, id domain.ID, p dto.OrderPayload) (*domain.Order, error) {
			return &domain.Order{ID: id}, nil
		},
	}
	c, notes := mountedController(t, api)

	require.True(t, c.OpenEdit("11"))
	v := c.View()
	assert.Equal(t, Draft{ClientID: "2", ProductID: "101", Quantity: "1", Status: "SHIPPED"}, v.Draft)
	require.NoError(t, c.Submit(context.Background()))

	require.Len(t, api.updateCalls, 1)
	assert.Len(t, api.updateCalls[0].Items, 1)
	assert.Equal(t, dto.OrderItemPayload{ProductID: "101", Quantity: 1}, api.updateCalls[0].Items[0])
	last, _ := notes.Last()
	assert.Equal(t, "Order updated successfully", last.Message)
}

func TestSubmit_ValidationWithoutCall(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
		want  string
	}{
		{name: "missing client", draft: Draft{ProductID: "100", Quantity: "1"}, want: "Client, product and quantity are required"},
		{name: "missing quantity", draft: Draft{ClientID: "1", ProductID: "100"}, want: "Client, product and quantity are required"},
		{name: "quantity not a number", draft: Draft{ClientID: "1", ProductID: "100", Quantity: "x"}, want: "Invalid quantity"},
		{name: "unknown status", draft: Draft{ClientID: "1", ProductID: "100", Quantity: "1", Status: "LOST"}, want: "Invalid status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockOrderAPI{ListFunc: okOrders}
			c, notes := mountedController(t, api)

			require.True(t, c.OpenNew())
			c.SetDraft(tt.draft)
			err := c.Submit(context.Background())

			_, isValidation := apperrors.IsValidationError(err)
			assert.True(t, isValidation)
			assert.Empty(t, api.createCalls)
			assert.True(t, c.View().DialogOpen)
			last, _ := notes.Last()
			assert.Equal(t, notification.Warning, last.Severity)
			assert.Equal(t, tt.want, last.Message)
		})
	}
}

func TestSubmit_FailureCarriesBackendMessage(t *testing.T) {
	api := &mockOrderAPI{
		ListFunc: okOrders,
		CreateFunc: func(ctx context.Context, p dto.OrderPayload) (*domain.Order, error) {
			return nil, apperrors.NewBackendError(http.StatusUnprocessableEntity, "insufficient stock", "")
		},
	}
	c, notes := mountedController(t, api)

	require.True(t, c.OpenNew())
	draft := Draft{ClientID: "1", ProductID: "100", Quantity: "999", Status: "PENDING"}
	c.SetDraft(draft)
	require.Error(t, c.Submit(context.Background()))

	last, _ := notes.Last()
	assert.Equal(t, notification.Error, last.Severity)
	assert.Equal(t, "Failed to save order: insufficient stock", last.Message)
	assert.Equal(t, draft, c.View().Draft)
	assert.Equal(t, 1, api.Calls("List"))
}

func TestSubmit_FailureWithoutMessageUsesHint(t *testing.T) {
	api := &mockOrderAPI{
		ListFunc: okOrders,
		CreateFunc: func(ctx context.Context, p dto.OrderPayload) (*domain.Order, error) {
			return nil, errors.New("connection reset")
		},
	}
	c, notes := mountedController(t, api)

	require.True(t, c.OpenNew())
	c.SetDraft(Draft{ClientID: "1", ProductID: "100", Quantity: "1"})
	require.Error(t, c.Submit(context.Background()))

	last, _ := notes.Last()
	assert.Equal(t, "Failed to save order: Check the data.", last.Message)
}

func TestChangeStatus(t *testing.T) {
	api := &mockOrderAPI{
		ListFunc: okOrders,
		UpdateStatusFunc: func(ctx context.Context, id domain.ID, s domain.OrderStatus) (*domain.Order, error) {
			return &domain.Order{ID: id, Status: s}, nil
		},
	}
	c, notes := mountedController(t, api)

	require.NoError(t, c.ChangeStatus(context.Background(), "10", domain.OrderStatusDelivered))

	assert.Equal(t, []domain.OrderStatus{domain.OrderStatusDelivered}, api.statusCalls)
	assert.Equal(t, 2, api.Calls("List"))
	assert.Empty(t, api.updateCalls)
	last, _ := notes.Last()
	assert.Equal(t, "Status updated successfully", last.Message)
}

func TestChangeStatus_InvalidStatusMakesNoCall(t *testing.T) {
	api := &mockOrderAPI{ListFunc: okOrders}
	c, notes := mountedController(t, api)

	err := c.ChangeStatus(context.Background(), "10", "LOST")

	require.Error(t, err)
	assert.Empty(t, api.statusCalls)
	assert.Equal(t, 1, notes.Count(notification.Warning))
}

func TestChangeStatus_Failure(t *testing.T) {
	api := &mockOrderAPI{
		ListFunc: okOrders,
		UpdateStatusFunc: func(ctx context.Context, id domain.ID, s domain.OrderStatus) (*domain.Order, error) {
			return nil, errors.New("timeout")
		},
	}
	c, notes := mountedController(t, api)

	require.Error(t, c.ChangeStatus(context.Background(), "10", domain.OrderStatusCancelled))

	assert.Equal(t, 1, api.Calls("List"))
	last, _ := notes.Last()
	assert.Equal(t, "Failed to update status", last.Message)
}

func TestDelete_CancelIssuesNoCall(t *testing.T) {
	api := &mockOrderAPI{ListFunc: okOrders}
	c, _ := mountedController(t, api)

	require.True(t, c.RequestDelete("10"))
	require.NotNil(t, c.View().PendingDelete)
	c.CancelDelete()

	assert.Nil(t, c.View().PendingDelete)
	require.NoError(t, c.ConfirmDelete(context.Background()))
	assert.Empty(t, api.deleteCalls)
}

func TestDelete_ConfirmDeletesAndReloads(t *testing.T) {
	api := &mockOrderAPI{
		ListFunc:   okOrders,
		DeleteFunc: func(ctx context.Context, id domain.ID) error { return nil },
	}
	c, notes := mountedController(t, api)

	require.True(t, c.RequestDelete("11"))
	require.NoError(t, c.ConfirmDelete(context.Background()))

	assert.Equal(t, []domain.ID{"11"}, api.deleteCalls)
	assert.Equal(t, 2, api.Calls("List"))
	assert.Nil(t, c.View().PendingDelete)
	last, _ := notes.Last()
	assert.Equal(t, "Order deleted successfully", last.Message)
}

func TestDelete_Failure(t *testing.T) {
	api := &mockOrderAPI{
		ListFunc:   okOrders,
		DeleteFunc: func(ctx context.Context, id domain.ID) error { return errors.New("conflict") },
	}
	c, notes := mountedController(t, api)

	require.True(t, c.RequestDelete("10"))
	require.Error(t, c.ConfirmDelete(context.Background()))

	assert.Equal(t, 1, api.Calls("List"))
	last, _ := notes.Last()
	assert.Equal(t, "Failed to delete order", last.Message)
}

func TestRequestDelete_UnknownOrder(t *testing.T) {
	c, _ := mountedController(t, &mockOrderAPI{ListFunc: okOrders})
	assert.False(t, c.RequestDelete("404"))
}

func TestFilter_SelectsEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		clientID string
		status   string
		want     string
	}{
		{name: "status only", status: "PENDING", want: "ListByStatus"},
		{name: "client only", clientID: "1", want: "ListByClient"},
		{name: "client and status", clientID: "1", status: "SHIPPED", want: "ListByClientAndStatus"},
		{name: "nothing", want: "List"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockOrderAPI{
				ListFunc: okOrders,
				ListByClientFunc: func(ctx context.Context, id domain.ID, page, size int) (*dto.Page[domain.Order], error) {
					assert.Equal(t, dto.DefaultPage, page)
					assert.Equal(t, dto.DefaultPageSize, size)
					return &dto.Page[domain.Order]{Content: sampleOrders()[:1]}, nil
				},
				ListByStatusFunc: func(ctx context.Context, s domain.OrderStatus) ([]domain.Order, error) {
					return sampleOrders()[:1], nil
				},
				ListByClientAndStatusFunc: func(ctx context.Context, id domain.ID, s domain.OrderStatus) ([]domain.Order, error) {
					return nil, nil
				},
			}
			c, _ := mountedController(t, api)
			before := api.Calls(tt.want)

			require.NoError(t, c.Filter(context.Background(), tt.clientID, tt.status))

			assert.Equal(t, before+1, api.Calls(tt.want))
			assert.Equal(t, Filter{ClientID: domain.ID(tt.clientID), Status: domain.OrderStatus(tt.status)}, c.View().Filter)
		})
	}
}

func TestFilter_InvalidStatus(t *testing.T) {
	api := &mockOrderAPI{ListFunc: okOrders}
	c, notes := mountedController(t, api)

	require.Error(t, c.Filter(context.Background(), "", "LOST"))

	assert.False(t, c.View().Filter.Active())
	assert.Equal(t, 1, api.Calls("List"))
	last, _ := notes.Last()
	assert.Equal(t, "Invalid status", last.Message)
}

func TestClearFilter_ReloadsFullList(t *testing.T) {
	api := &mockOrderAPI{
		ListFunc: okOrders,
		ListByStatusFunc: func(ctx context.Context, s domain.OrderStatus) ([]domain.Order, error) {
			return nil, nil
		},
	}
	c, _ := mountedController(t, api)

	require.NoError(t, c.Filter(context.Background(), "", "CANCELLED"))
	assert.Equal(t, viewstate.Empty, c.View().Status)

	c.ClearFilter(context.Background())

	assert.Equal(t, 2, api.Calls("List"))
	assert.Len(t, c.View().Orders, 2)
}

func TestLookupHelpers(t *testing.T) {
	c, _ := mountedController(t, &mockOrderAPI{ListFunc: okOrders})
	v := c.View()

	assert.Equal(t, "Ana", v.ClientName("1"))
	assert.Equal(t, "Client not found", v.ClientName("99"))
	assert.Equal(t, "Pen", v.ProductName(v.Orders[0]))
	assert.Equal(t, "Product not found", v.ProductName(domain.Order{Items: []domain.OrderItem{{ProductID: "999", Quantity: 1}}}))
	assert.Equal(t, "N/A", v.ProductName(domain.Order{}))
	assert.Equal(t, "2", v.ProductQuantity(v.Orders[0]))
	assert.Equal(t, "N/A", v.ProductQuantity(domain.Order{}))
	assert.Equal(t, "05/03/2024", CreatedAtLabel(v.Orders[0]))
	assert.Equal(t, "N/A", CreatedAtLabel(v.Orders[1]))
}

func TestView_ReturnsCopies(t *testing.T) {
	c, _ := mountedController(t, &mockOrderAPI{ListFunc: okOrders})

	v := c.View()
	v.Orders[1].Items[0].Quantity = 1000

	assert.Equal(t, 1, c.View().Orders[1].Items[0].Quantity)
}

func TestUnmount_ResetsDialogDeleteAndFilter(t *testing.T) {
	api := &mockOrderAPI{
		ListFunc: okOrders,
		ListByStatusFunc: func(ctx context.Context, s domain.OrderStatus) ([]domain.Order, error) {
			return sampleOrders()[:1], nil
		},
		DeleteFunc: func(ctx context.Context, id domain.ID) error { return nil },
	}
	c, _ := mountedController(t, api)
	require.NoError(t, c.Filter(context.Background(), "", "PENDING"))
	require.True(t, c.OpenEdit("10"))
	require.True(t, c.RequestDelete("10"))

	c.Unmount()
	<-c.Mount(context.Background())

	v := c.View()
	assert.False(t, v.DialogOpen)
	assert.Nil(t, v.Editing)
	assert.Equal(t, string(domain.OrderStatusPending), v.Draft.Status)
	assert.Nil(t, v.PendingDelete)
	assert.False(t, v.Filter.Active())
	assert.Len(t, v.Orders, 2)

	require.NoError(t, c.ConfirmDelete(context.Background()))
	assert.Empty(t, api.deleteCalls)
}
