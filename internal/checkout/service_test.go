package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/JKPrasad01/FoodAppFrontend/internal/backend"
	"github.com/JKPrasad01/FoodAppFrontend/internal/cart"
	"github.com/JKPrasad01/FoodAppFrontend/internal/session"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/config"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/enums"
	pkgerrors "github.com/JKPrasad01/FoodAppFrontend/pkg/errors"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/logger"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrders struct {
	mu       sync.Mutex
	requests []backend.OrderRequest
	number   backend.Ref
	err      error
	block    chan struct{}
	entered  chan struct{}
}

func (s *stubOrders) CreateOrder(ctx context.Context, req backend.OrderRequest) (*backend.OrderConfirmation, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return nil, s.err
	}
	return &backend.OrderConfirmation{OrderNumber: s.number}, nil
}

func (s *stubOrders) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

var customer = &session.Identity{UserID: 42, Username: "ana", Role: enums.RoleUser}

func newCart(t *testing.T, lines ...cart.LineItem) cart.Service {
	t.Helper()
	store, err := storage.Scope(storage.NewMemory(), "visitor-1")
	require.NoError(t, err)
	svc, err := cart.NewService(store, logger.Nop(), nil)
	require.NoError(t, err)
	for _, line := range lines {
		for i := 0; i < line.Quantity; i++ {
			_, err := svc.AddItem(context.Background(), line, line.RestaurantID)
			require.NoError(t, err)
		}
	}
	return svc
}

func line(id, restaurantID int64, price string, quantity int) cart.LineItem {
	return cart.LineItem{
		ItemID:       id,
		Name:         "dish",
		UnitPrice:    decimal.RequireFromString(price),
		Quantity:     quantity,
		RestaurantID: restaurantID,
	}
}

func newTestService(t *testing.T, orders *stubOrders, c cart.Service) Service {
	t.Helper()
	svc, err := NewService(orders, c, DefaultSettings(), logger.Nop(), nil)
	require.NoError(t, err)
	return svc
}

func TestSubmitHappyPath(t *testing.T) {
	orders := &stubOrders{number: "1001"}
	c := newCart(t, line(1, 5, "10", 2))
	svc := newTestService(t, orders, c)

	outcome, err := svc.Submit(context.Background(), customer, Form{
		DeliveryAddress: "12 Main St",
		ContactNumber:   "9876543210",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, outcome.Status)
	assert.Equal(t, "1001", outcome.OrderNumber)

	require.Equal(t, 1, orders.calls())
	assert.Equal(t, backend.OrderRequest{
		UserID:          42,
		RestaurantID:    5,
		OrderItemList:   []backend.OrderLine{{MenuID: 1, Quantity: 2}},
		DeliveryAddress: "12 Main St",
		ContactNumber:   "9876543210",
		PaymentStatus:   enums.PaymentStatusPending,
	}, orders.requests[0])
	assert.True(t, c.State().IsEmpty())
}

func TestSubmitSettledPaymentLabel(t *testing.T) {
	orders := &stubOrders{number: "7"}
	svc := newTestService(t, orders, newCart(t, line(1, 5, "10", 1)))

	_, err := svc.Submit(context.Background(), customer, Form{
		DeliveryAddress: "12 Main St",
		ContactNumber:   "9876543210",
		PaymentMethod:   "PayPal",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusCompleted, orders.requests[0].PaymentStatus)
}

func TestSubmitValidationOrdering(t *testing.T) {
	orders := &stubOrders{}
	svc := newTestService(t, orders, newCart(t, line(1, 5, "10", 1)))

	_, err := svc.Submit(context.Background(), customer, Form{DeliveryAddress: "  ", ContactNumber: "123"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, MessageAddressRequired, typed.Message())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []string{MessageAddressRequired, MessageContactInvalid}, details["violations"])
	assert.Zero(t, orders.calls(), "validation failures must not reach the backend")
}

func TestSubmitValidationMessages(t *testing.T) {
	cases := map[string]struct {
		empty bool
		form  Form
		want  string
	}{
		"contact too short": {
			form: Form{DeliveryAddress: "x", ContactNumber: "12345"},
			want: MessageContactInvalid,
		},
		"contact not digits": {
			form: Form{DeliveryAddress: "x", ContactNumber: "98765abcde"},
			want: MessageContactInvalid,
		},
		"empty cart": {
			empty: true,
			form:  Form{DeliveryAddress: "x", ContactNumber: "9876543210"},
			want:  MessageCartEmpty,
		},
		"address too long": {
			form: Form{DeliveryAddress: strings.Repeat("a", MaxAddressLength+1), ContactNumber: "9876543210"},
			want: MessageAddressTooLong,
		},
		"unsupported payment": {
			form: Form{DeliveryAddress: "x", ContactNumber: "9876543210", PaymentMethod: "cash"},
			want: MessageUnsupportedPayment,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := newCart(t, line(1, 5, "10", 1))
			if tc.empty {
				c = newCart(t)
			}
			svc := newTestService(t, &stubOrders{}, c)
			_, err := svc.Submit(context.Background(), customer, tc.form)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, tc.want, typed.Message())
		})
	}
}

func TestBuildRequestEmptyCartReportsRestaurant(t *testing.T) {
	_, err := BuildRequest(cart.State{}, customer, Form{DeliveryAddress: "x", ContactNumber: "9876543210"}, DefaultSettings())
	require.Error(t, err)
	details := pkgerrors.As(err).Details().(map[string]any)
	assert.Equal(t, []string{MessageCartEmpty, MessageNoRestaurant}, details["violations"])
}

func TestSubmitRequiresIdentity(t *testing.T) {
	orders := &stubOrders{}
	svc := newTestService(t, orders, newCart(t, line(1, 5, "10", 1)))

	_, err := svc.Submit(context.Background(), nil, Form{DeliveryAddress: "x", ContactNumber: "9876543210"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
	assert.Zero(t, orders.calls())
}

func TestSubmitBackendFailureKeepsCart(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"backend message": {
			err: pkgerrors.New(pkgerrors.CodeValidation, "Restaurant is closed").
				WithDetails(map[string]any{"status": 400, "message": "Restaurant is closed"}),
			want: "Restaurant is closed",
		},
		"transport": {
			err:  pkgerrors.Wrap(pkgerrors.CodeTransport, errors.New("dial tcp: refused"), "create_order request failed"),
			want: MessageOrderFailed,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := newCart(t, line(1, 5, "10", 2))
			svc := newTestService(t, &stubOrders{err: tc.err}, c)

			outcome, err := svc.Submit(context.Background(), customer, Form{DeliveryAddress: "x", ContactNumber: "9876543210"})
			require.NoError(t, err)
			assert.Equal(t, StatusFailure, outcome.Status)
			assert.Equal(t, tc.want, outcome.Message)
			assert.Equal(t, 2, c.Count(), "cart must survive a failed order")
		})
	}
}

func TestSubmitIsSingleFlight(t *testing.T) {
	orders := &stubOrders{number: "1", block: make(chan struct{}), entered: make(chan struct{}, 1)}
	svc := newTestService(t, orders, newCart(t, line(1, 5, "10", 1)))
	form := Form{DeliveryAddress: "x", ContactNumber: "9876543210"}

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), customer, form)
		done <- err
	}()
	<-orders.entered

	_, err := svc.Submit(context.Background(), customer, form)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	close(orders.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, orders.calls())
}

func TestBuildRequestCountsAddressInCharacters(t *testing.T) {
	state := newCart(t, line(1, 5, "10", 1)).State()
	address := strings.Repeat("ñ", MaxAddressLength)

	req, err := BuildRequest(state, customer, Form{DeliveryAddress: address, ContactNumber: "9876543210"}, DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, address, req.DeliveryAddress, "addresses are forwarded untruncated")
}

func TestSubmitKeepsItemsAddedDuringOrder(t *testing.T) {
	orders := &stubOrders{number: "9", block: make(chan struct{}), entered: make(chan struct{}, 1)}
	c := newCart(t, line(1, 5, "10", 2))
	svc := newTestService(t, orders, c)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), customer, Form{DeliveryAddress: "x", ContactNumber: "9876543210"})
		done <- err
	}()
	<-orders.entered

	_, err := c.AddItem(context.Background(), line(1, 5, "10", 1), 5)
	require.NoError(t, err)
	_, err = c.AddItem(context.Background(), line(2, 5, "4", 1), 5)
	require.NoError(t, err)

	close(orders.block)
	require.NoError(t, <-done)

	require.Len(t, orders.requests, 1)
	assert.Equal(t, []backend.OrderLine{{MenuID: 1, Quantity: 2}}, orders.requests[0].OrderItemList)
	state := c.State()
	require.Len(t, state.Items, 2)
	assert.Equal(t, int64(1), state.Items[0].ItemID)
	assert.Equal(t, 1, state.Items[0].Quantity)
	assert.Equal(t, int64(2), state.Items[1].ItemID)
	assert.Equal(t, "14", c.Total().String())
}

func TestSettingsFromConfig(t *testing.T) {
	settings, err := SettingsFromConfig(config.CheckoutConfig{
		DeferredMethods: []string{"credit-card", "apple-pay"},
		DeferredStatus:  "pending",
		SettledStatus:   "COMPLETED",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPending, settings.StatusFor(enums.PaymentMethodApplePay))
	assert.Equal(t, enums.PaymentStatusCompleted, settings.StatusFor(enums.PaymentMethodPayPal))

	_, err = SettingsFromConfig(config.CheckoutConfig{DeferredMethods: []string{"cash"}, DeferredStatus: "PENDING", SettledStatus: "COMPLETED"})
	require.Error(t, err)
}
