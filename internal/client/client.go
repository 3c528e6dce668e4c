// Package client is the composition root of one visitor: it wires the cart,
// session, checkout and the read-side services around a scoped store and a
// private backend client.
package client

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JKPrasad01/FoodAppFrontend/internal/account"
	"github.com/JKPrasad01/FoodAppFrontend/internal/cart"
	"github.com/JKPrasad01/FoodAppFrontend/internal/catalog"
	"github.com/JKPrasad01/FoodAppFrontend/internal/checkout"
	"github.com/JKPrasad01/FoodAppFrontend/internal/orders"
	"github.com/JKPrasad01/FoodAppFrontend/internal/session"
)

// Client holds every aggregate of one visitor.
type Client struct {
	VisitorID string

	Cart     cart.Service
	Session  *session.Manager
	Checkout checkout.Service
	Orders   orders.Service
	Account  account.Service
	Catalog  catalog.Service

	cartOnce      sync.Once
	lastSeen      atomic.Int64
	cancelRestore context.CancelFunc
}

func (c *Client) touch(now time.Time) {
	c.lastSeen.Store(now.UnixNano())
}

// LastSeen is the time of the most recent Registry.Get for this visitor.
func (c *Client) LastSeen() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

// Close stops a pending session restore and tears the session down.
func (c *Client) Close() {
	if c.cancelRestore != nil {
		c.cancelRestore()
	}
	c.Session.Close()
}
