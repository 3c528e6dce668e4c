package checkout

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/JKPrasad01/FoodAppFrontend/internal/backend"
	"github.com/JKPrasad01/FoodAppFrontend/internal/cart"
	"github.com/JKPrasad01/FoodAppFrontend/internal/session"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/config"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/enums"
	pkgerrors "github.com/JKPrasad01/FoodAppFrontend/pkg/errors"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/logger"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/metrics"
	"go.uber.org/multierr"
)

const (
	MessageAddressRequired    = "Delivery address is required."
	MessageAddressTooLong     = "Delivery address must be at most 255 characters."
	MessageContactInvalid     = "Contact number must be 10 digits."
	MessageCartEmpty          = "Your cart is empty!"
	MessageNoRestaurant       = "No restaurant selected."
	MessageUnsupportedPayment = "Unsupported payment method."
	MessageOrderFailed        = "Order creation failed. Please try again."
)

// MaxAddressLength is counted in characters, not bytes.
const MaxAddressLength = 255

var contactPattern = regexp.MustCompile(`^\d{10}$`)

type orderCreator interface {
	CreateOrder(ctx context.Context, req backend.OrderRequest) (*backend.OrderConfirmation, error)
}

type cartReader interface {
	State() cart.State
	Deduct(ctx context.Context, ordered []cart.LineItem) error
}

// Form is what the customer fills in on the checkout page.
type Form struct {
	DeliveryAddress string `json:"deliveryAddress"`
	ContactNumber   string `json:"contactNumber"`
	PaymentMethod   string `json:"paymentMethod"`
}

// Status is the terminal state of a submission.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Outcome is returned for every submission that reached the backend.
type Outcome struct {
	Status      Status `json:"status"`
	OrderNumber string `json:"orderNumber,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Settings decides which payment status label goes with each method.
type Settings struct {
	DeferredMethods []enums.PaymentMethod
	DeferredStatus  enums.PaymentStatus
	SettledStatus   enums.PaymentStatus
}

// DefaultSettings labels credit cards PENDING and every other method COMPLETED.
func DefaultSettings() Settings {
	return Settings{
		DeferredMethods: []enums.PaymentMethod{enums.PaymentMethodCreditCard},
		DeferredStatus:  enums.PaymentStatusPending,
		SettledStatus:   enums.PaymentStatusCompleted,
	}
}

// SettingsFromConfig parses the configured labels.
func SettingsFromConfig(cfg config.CheckoutConfig) (Settings, error) {
	settings := Settings{}
	for _, raw := range cfg.DeferredMethods {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		method, err := enums.ParsePaymentMethod(raw)
		if err != nil {
			return Settings{}, err
		}
		settings.DeferredMethods = append(settings.DeferredMethods, method)
	}
	var err error
	if settings.DeferredStatus, err = enums.ParsePaymentStatus(strings.ToUpper(strings.TrimSpace(cfg.DeferredStatus))); err != nil {
		return Settings{}, err
	}
	if settings.SettledStatus, err = enums.ParsePaymentStatus(strings.ToUpper(strings.TrimSpace(cfg.SettledStatus))); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// StatusFor returns the payment status label for method.
func (s Settings) StatusFor(method enums.PaymentMethod) enums.PaymentStatus {
	for _, deferred := range s.DeferredMethods {
		if deferred == method {
			return s.DeferredStatus
		}
	}
	return s.SettledStatus
}

// Service turns a cart into a backend order.
type Service interface {
	Submit(ctx context.Context, identity *session.Identity, form Form) (*Outcome, error)
}

type service struct {
	orders   orderCreator
	cart     cartReader
	settings Settings
	logg     *logger.Logger
	metrics  *metrics.Storefront

	inFlight sync.Mutex
}

// NewService builds the checkout orchestrator for one visitor.
func NewService(orders orderCreator, c cartReader, settings Settings, logg *logger.Logger, m *metrics.Storefront) (Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if c == nil {
		return nil, fmt.Errorf("cart required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if !settings.DeferredStatus.IsValid() || !settings.SettledStatus.IsValid() {
		return nil, fmt.Errorf("checkout payment statuses must be valid")
	}
	return &service{
		orders:   orders,
		cart:     c,
		settings: settings,
		logg:     logg,
		metrics:  m,
	}, nil
}

// Submit validates the form against the cart, sends the order and clears the
// cart on success. Validation failures come back as VALIDATION_ERROR before
// any network call; backend rejections come back as a failure Outcome with
// the cart untouched. Orders are never retried.
func (s *service) Submit(ctx context.Context, identity *session.Identity, form Form) (*Outcome, error) {
	if identity == nil || identity.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required to place an order")
	}
	if !s.inFlight.TryLock() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "an order is already being submitted")
	}
	defer s.inFlight.Unlock()

	state := s.cart.State()
	req, err := BuildRequest(state, identity, form, s.settings)
	if err != nil {
		s.metrics.IncCheckout("invalid")
		return nil, err
	}

	ctx = s.logg.WithUserID(ctx, identity.UserID)
	ctx = s.logg.WithRestaurantID(ctx, req.RestaurantID)

	confirmation, err := s.orders.CreateOrder(ctx, req)
	if err != nil {
		s.metrics.IncCheckout("failure")
		s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "order creation failed")
		return &Outcome{Status: StatusFailure, Message: failureMessage(err)}, nil
	}

	// Only what was ordered leaves the cart: items added from another tab
	// while the order was in flight stay for the next checkout.
	if err := s.cart.Deduct(ctx, state.Items); err != nil {
		s.logg.Error(ctx, "order created but cart could not be cleared", err)
	}
	s.metrics.IncCheckout("success")
	s.logg.Info(s.logg.WithField(ctx, "order_number", confirmation.OrderNumber.String()), "order created")

	return &Outcome{
		Status:      StatusSuccess,
		OrderNumber: confirmation.OrderNumber.String(),
	}, nil
}

// BuildRequest validates the submission and assembles the order payload. All
// checks run; the error reports the first failing one and lists the rest in
// its details.
func BuildRequest(state cart.State, identity *session.Identity, form Form, settings Settings) (backend.OrderRequest, error) {
	address := strings.TrimSpace(form.DeliveryAddress)
	contact := strings.TrimSpace(form.ContactNumber)

	var errs error
	if address == "" {
		errs = multierr.Append(errs, errors.New(MessageAddressRequired))
	} else if utf8.RuneCountInString(address) > MaxAddressLength {
		errs = multierr.Append(errs, errors.New(MessageAddressTooLong))
	}
	if !contactPattern.MatchString(contact) {
		errs = multierr.Append(errs, errors.New(MessageContactInvalid))
	}
	if state.IsEmpty() {
		errs = multierr.Append(errs, errors.New(MessageCartEmpty))
	}
	if state.RestaurantID == nil || *state.RestaurantID <= 0 {
		errs = multierr.Append(errs, errors.New(MessageNoRestaurant))
	}

	method := enums.PaymentMethodCreditCard
	if raw := strings.TrimSpace(form.PaymentMethod); raw != "" {
		parsed, err := enums.ParsePaymentMethod(raw)
		if err != nil {
			errs = multierr.Append(errs, errors.New(MessageUnsupportedPayment))
		}
		method = parsed
	}

	if errs != nil {
		all := multierr.Errors(errs)
		violations := make([]string, 0, len(all))
		for _, e := range all {
			violations = append(violations, e.Error())
		}
		return backend.OrderRequest{}, pkgerrors.New(pkgerrors.CodeValidation, violations[0]).
			WithDetails(map[string]any{"violations": violations})
	}

	lines := make([]backend.OrderLine, 0, len(state.Items))
	for _, item := range state.Items {
		lines = append(lines, backend.OrderLine{MenuID: item.ItemID, Quantity: item.Quantity})
	}

	var userID int64
	if identity != nil {
		userID = identity.UserID
	}
	return backend.OrderRequest{
		UserID:          userID,
		RestaurantID:    *state.RestaurantID,
		OrderItemList:   lines,
		DeliveryAddress: address,
		ContactNumber:   contact,
		PaymentStatus:   settings.StatusFor(method),
	}, nil
}

func failureMessage(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return MessageOrderFailed
	}
	if details, ok := typed.Details().(map[string]any); ok {
		if message, ok := details["message"].(string); ok && strings.TrimSpace(message) != "" {
			return message
		}
	}
	return MessageOrderFailed
}
