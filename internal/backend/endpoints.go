package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/JKPrasad01/FoodAppFrontend/pkg/errors"
)

const (
	pathMe          = "/auth/user/api/auth/me"
	pathLogin       = "/auth/user/login-user"
	pathLogout      = "/auth/user/logout"
	pathRegister    = "/auth/user/register"
	pathCreateOrder = "/orders/create"
	pathOrders      = "/orders/%d"
	pathUpdateUser  = "/user/update/%d"
	pathRestaurants = "/restaurants/all-restaurants"
	pathMenu        = "/restaurants/getAllMenu/%d"

	pathCreateRestaurant  = "/restaurants/create"
	pathImportRestaurants = "/restaurants/list"
)

// Me returns the user the backend session cookie belongs to.
func (c *Client) Me(ctx context.Context) (*UserRecord, error) {
	body, err := c.do(ctx, call{endpoint: "me", method: http.MethodGet, path: pathMe})
	if err != nil {
		return nil, err
	}
	var user UserRecord
	if err := decode("me", body, &user); err != nil {
		return nil, err
	}
	if user.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "backend session has no user")
	}
	return &user, nil
}

// Login posts credentials. The returned record is nil when the backend
// answered without a usable user body; callers then resolve the user via Me.
// Any rejection maps to AUTHENTICATION_FAILED.
func (c *Client) Login(ctx context.Context, creds Credentials) (*UserRecord, error) {
	body, err := c.do(ctx, call{endpoint: "login", method: http.MethodPost, path: pathLogin, body: creds})
	if err != nil {
		typed := pkgerrors.As(err)
		message := "invalid username or password"
		if typed != nil && typed.Code() == pkgerrors.CodeTransport {
			message = "login unavailable, please try again"
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeAuthenticationFailed, err, message)
	}

	var user UserRecord
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return nil, nil
	}
	if err := decode("login", body, &user); err != nil || user.UserID <= 0 {
		return nil, nil
	}
	return &user, nil
}

// Logout ends the backend session.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, call{endpoint: "logout", method: http.MethodPost, path: pathLogout})
	return err
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	_, err := c.do(ctx, call{endpoint: "register", method: http.MethodPost, path: pathRegister, body: req})
	return err
}

func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*OrderConfirmation, error) {
	body, err := c.do(ctx, call{endpoint: "create_order", method: http.MethodPost, path: pathCreateOrder, body: req})
	if err != nil {
		return nil, err
	}
	var confirmation OrderConfirmation
	if err := decode("create_order", body, &confirmation); err != nil {
		return nil, err
	}
	return &confirmation, nil
}

func (c *Client) OrderHistory(ctx context.Context, userID int64) ([]OrderRecord, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "user id must be positive")
	}
	body, err := c.do(ctx, call{endpoint: "order_history", method: http.MethodGet, path: fmt.Sprintf(pathOrders, userID)})
	if err != nil {
		return nil, err
	}
	var orders []OrderRecord
	if err := decode("order_history", body, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) UpdateUser(ctx context.Context, userID int64, update UserUpdate) (*UserRecord, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "user id must be positive")
	}
	body, err := c.do(ctx, call{endpoint: "update_user", method: http.MethodPut, path: fmt.Sprintf(pathUpdateUser, userID), body: update})
	if err != nil {
		return nil, err
	}
	var user UserRecord
	if err := decode("update_user", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Restaurants(ctx context.Context) ([]Restaurant, error) {
	body, err := c.do(ctx, call{endpoint: "restaurants", method: http.MethodGet, path: pathRestaurants})
	if err != nil {
		return nil, err
	}
	var restaurants []Restaurant
	if err := decode("restaurants", body, &restaurants); err != nil {
		return nil, err
	}
	return restaurants, nil
}

func (c *Client) Menu(ctx context.Context, restaurantID int64) ([]MenuItem, error) {
	if restaurantID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "restaurant id must be positive")
	}
	body, err := c.do(ctx, call{endpoint: "menu", method: http.MethodGet, path: fmt.Sprintf(pathMenu, restaurantID)})
	if err != nil {
		return nil, err
	}
	var items []MenuItem
	if err := decode("menu", body, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateRestaurant submits one restaurant with its menu. The created record is
// nil when the backend answers with a plain confirmation instead of JSON.
func (c *Client) CreateRestaurant(ctx context.Context, req NewRestaurant) (*Restaurant, error) {
	body, err := c.do(ctx, call{endpoint: "create_restaurant", method: http.MethodPost, path: pathCreateRestaurant, body: req})
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(strings.TrimSpace(string(body)), "{") {
		return nil, nil
	}
	var created Restaurant
	if err := decode("create_restaurant", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ImportRestaurants submits a batch of restaurants in one call.
func (c *Client) ImportRestaurants(ctx context.Context, batch []NewRestaurant) error {
	if len(batch) == 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidInput, "import batch is empty")
	}
	_, err := c.do(ctx, call{endpoint: "import_restaurants", method: http.MethodPost, path: pathImportRestaurants, body: batch})
	return err
}
