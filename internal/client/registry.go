package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/JKPrasad01/FoodAppFrontend/internal/account"
	"github.com/JKPrasad01/FoodAppFrontend/internal/backend"
	"github.com/JKPrasad01/FoodAppFrontend/internal/cart"
	"github.com/JKPrasad01/FoodAppFrontend/internal/catalog"
	"github.com/JKPrasad01/FoodAppFrontend/internal/checkout"
	"github.com/JKPrasad01/FoodAppFrontend/internal/orders"
	"github.com/JKPrasad01/FoodAppFrontend/internal/session"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/config"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/logger"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/metrics"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/storage"
)

const defaultRestoreTimeout = 15 * time.Second

type clientFactory interface {
	NewClient() (*backend.Client, error)
}

// Registry holds the live clients keyed by visitor id.
type Registry struct {
	store    storage.Backend
	backends clientFactory
	settings checkout.Settings
	logg     *logger.Logger
	metrics  *metrics.Storefront

	idleTTL        time.Duration
	restoreTimeout time.Duration
	now            func() time.Time

	mu      sync.Mutex
	clients map[string]*Client
}

func NewRegistry(
	store storage.Backend,
	backends clientFactory,
	settings checkout.Settings,
	cfg config.RegistryConfig,
	logg *logger.Logger,
	m *metrics.Storefront,
) (*Registry, error) {
	if store == nil {
		return nil, fmt.Errorf("storage backend required")
	}
	if backends == nil {
		return nil, fmt.Errorf("backend client factory required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.IdleTTL <= 0 {
		return nil, fmt.Errorf("registry idle ttl must be positive")
	}
	restoreTimeout := cfg.RestoreTimeout
	if restoreTimeout <= 0 {
		restoreTimeout = defaultRestoreTimeout
	}
	return &Registry{
		store:          store,
		backends:       backends,
		settings:       settings,
		logg:           logg,
		metrics:        m,
		idleTTL:        cfg.IdleTTL,
		restoreTimeout: restoreTimeout,
		now:            time.Now,
		clients:        make(map[string]*Client),
	}, nil
}

// Get returns the visitor's client, building it on first use. The cart is
// restored before Get returns; the session restores in the background so its
// loading state is observable.
func (r *Registry) Get(ctx context.Context, visitorID string) (*Client, error) {
	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" {
		return nil, fmt.Errorf("visitor id required")
	}

	r.mu.Lock()
	c, ok := r.clients[visitorID]
	if !ok {
		built, err := r.build(ctx, visitorID)
		if err != nil {
			r.mu.Unlock()
			return nil, err
		}
		c = built
		r.clients[visitorID] = c
		r.metrics.SetActiveClients(len(r.clients))
	}
	r.mu.Unlock()

	c.touch(r.now())
	c.cartOnce.Do(func() {
		c.Cart.Restore(ctx)
	})
	return c, nil
}

func (r *Registry) build(ctx context.Context, visitorID string) (*Client, error) {
	store, err := storage.Scope(r.store, visitorID)
	if err != nil {
		return nil, err
	}
	be, err := r.backends.NewClient()
	if err != nil {
		return nil, fmt.Errorf("build backend client: %w", err)
	}

	cartSvc, err := cart.NewService(store, r.logg, r.metrics)
	if err != nil {
		return nil, err
	}
	sessions, err := session.NewManager(store, be, r.logg, r.metrics)
	if err != nil {
		return nil, err
	}
	checkoutSvc, err := checkout.NewService(be, cartSvc, r.settings, r.logg, r.metrics)
	if err != nil {
		return nil, err
	}
	ordersSvc, err := orders.NewService(be, r.logg)
	if err != nil {
		return nil, err
	}
	accountSvc, err := account.NewService(be, sessions, r.logg)
	if err != nil {
		return nil, err
	}
	catalogSvc, err := catalog.NewService(be, r.logg)
	if err != nil {
		return nil, err
	}

	restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.restoreTimeout)
	c := &Client{
		VisitorID:     visitorID,
		Cart:          cartSvc,
		Session:       sessions,
		Checkout:      checkoutSvc,
		Orders:        ordersSvc,
		Account:       accountSvc,
		Catalog:       catalogSvc,
		cancelRestore: cancel,
	}
	go func() {
		defer cancel()
		sessions.Restore(restoreCtx)
	}()

	r.logg.Debug(ctx, "visitor client created")
	return c, nil
}

// Sweep closes and drops every client idle for longer than the idle TTL. It
// returns the number of evicted clients.
func (r *Registry) Sweep(ctx context.Context) int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var evicted []*Client
	for id, c := range r.clients {
		if c.LastSeen().Before(cutoff) {
			evicted = append(evicted, c)
			delete(r.clients, id)
		}
	}
	r.metrics.SetActiveClients(len(r.clients))
	r.mu.Unlock()

	for _, c := range evicted {
		c.Close()
	}
	if len(evicted) > 0 {
		r.logg.Info(r.logg.WithField(ctx, "evicted", len(evicted)), "idle visitor clients evicted")
	}
	return len(evicted)
}

// Run sweeps on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Len is the number of live clients.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Close tears down every client.
func (r *Registry) Close() {
	r.mu.Lock()
	clients := r.clients
	r.clients = make(map[string]*Client)
	r.metrics.SetActiveClients(0)
	r.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
}
