package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	pkgerrors "github.com/JKPrasad01/FoodAppFrontend/pkg/errors"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/logger"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/metrics"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/storage"
	"github.com/shopspring/decimal"
)

const (
	opAdd    = "add"
	opRemove = "remove"
	opAdjust = "adjust"
	opClear  = "clear"
	opDeduct = "deduct"
)

// Service is the cart aggregate of one visitor. Every mutation is computed on
// a copy, persisted, and only then committed, so a failed write leaves both
// the in-memory and the stored cart at the previous state.
type Service interface {
	Restore(ctx context.Context) State
	State() State
	Total() decimal.Decimal
	Count() int
	AddItem(ctx context.Context, item LineItem, restaurantID int64) (State, error)
	RemoveItem(ctx context.Context, itemID int64) (State, error)
	AdjustQuantity(ctx context.Context, itemID int64, delta int) (State, error)
	Clear(ctx context.Context) error
	Deduct(ctx context.Context, ordered []LineItem) error
}

type service struct {
	mu      sync.Mutex
	state   State
	store   storage.Store
	logg    *logger.Logger
	metrics *metrics.Storefront
}

// NewService builds an empty cart persisted through store.
func NewService(store storage.Store, logg *logger.Logger, m *metrics.Storefront) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		state:   State{Items: []LineItem{}},
		store:   store,
		logg:    logg,
		metrics: m,
	}, nil
}

// Restore loads the persisted snapshot. A snapshot that fails validation is
// discarded and the cart starts empty; restoration never fails.
func (s *service) Restore(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{Items: []LineItem{}}

	raw, err := s.store.Read(ctx, storage.KeyCart)
	if errors.Is(err, storage.ErrNotFound) {
		s.metrics.IncRestore(string(storage.KeyCart), "empty")
		return s.state.clone()
	}
	if err != nil {
		s.metrics.IncRestore(string(storage.KeyCart), "error")
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart snapshot unreadable, starting empty")
		return s.state.clone()
	}

	var snapshot State
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		s.discardCorrupt(ctx, err)
		return s.state.clone()
	}
	if err := validateSnapshot(snapshot); err != nil {
		s.discardCorrupt(ctx, err)
		return s.state.clone()
	}

	snapshot.normalize()
	if snapshot.RestaurantID == nil && len(snapshot.Items) > 0 {
		id := snapshot.Items[0].RestaurantID
		snapshot.RestaurantID = &id
	}
	s.state = snapshot
	s.metrics.IncRestore(string(storage.KeyCart), "restored")
	return s.state.clone()
}

func (s *service) discardCorrupt(ctx context.Context, cause error) {
	s.metrics.IncRestore(string(storage.KeyCart), "corrupt")
	corrupt := pkgerrors.Wrap(pkgerrors.CodeCorruptState, cause, "discarding persisted cart")
	s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(corrupt).Fields()), "persisted cart is corrupt, starting empty")
	if err := s.store.Remove(ctx, storage.KeyCart); err != nil {
		s.logg.Error(ctx, "failed to remove corrupt cart snapshot", err)
	}
}

func (s *service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *service) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Total()
}

func (s *service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Count()
}

// AddItem adds one unit of item. The first item fixes the cart's restaurant;
// items from any other restaurant are rejected until the cart is empty again.
func (s *service) AddItem(ctx context.Context, item LineItem, restaurantID int64) (State, error) {
	return s.mutate(ctx, opAdd, func(next *State) (bool, error) {
		if err := validateAdd(item, restaurantID); err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeInvalidInput, err, "cannot add item: "+err.Error())
		}
		if !next.IsEmpty() && next.RestaurantID != nil && *next.RestaurantID != restaurantID {
			return false, pkgerrors.New(
				pkgerrors.CodeRestaurantMismatch,
				fmt.Sprintf("all items must be from the same restaurant (ID: %d)", *next.RestaurantID),
			).WithDetails(map[string]any{
				"cartRestaurantId":      *next.RestaurantID,
				"requestedRestaurantId": restaurantID,
			})
		}

		if idx := next.indexOf(item.ItemID); idx >= 0 {
			if next.Items[idx].Quantity == math.MaxInt {
				return false, quantityOverflow(item.ItemID)
			}
			next.Items[idx].Quantity++
		} else {
			line := item
			line.Quantity = 1
			next.Items = append(next.Items, line)
		}
		id := restaurantID
		next.RestaurantID = &id
		return true, nil
	})
}

// RemoveItem drops the line for itemID regardless of its quantity.
func (s *service) RemoveItem(ctx context.Context, itemID int64) (State, error) {
	return s.mutate(ctx, opRemove, func(next *State) (bool, error) {
		idx := next.indexOf(itemID)
		if idx < 0 {
			return false, nil
		}
		next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
		return true, nil
	})
}

// AdjustQuantity adds delta to the line's quantity; lines that reach zero or
// below are removed.
func (s *service) AdjustQuantity(ctx context.Context, itemID int64, delta int) (State, error) {
	return s.mutate(ctx, opAdjust, func(next *State) (bool, error) {
		idx := next.indexOf(itemID)
		if idx < 0 || delta == 0 {
			return false, nil
		}
		if delta > 0 && next.Items[idx].Quantity > math.MaxInt-delta {
			return false, quantityOverflow(itemID)
		}
		quantity := next.Items[idx].Quantity + delta
		if quantity <= 0 {
			next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
		} else {
			next.Items[idx].Quantity = quantity
		}
		return true, nil
	})
}

func quantityOverflow(itemID int64) error {
	return pkgerrors.New(pkgerrors.CodeInvalidInput, "quantity out of range").
		WithDetails(map[string]any{"itemId": itemID})
}

func (s *service) Clear(ctx context.Context) error {
	_, err := s.mutate(ctx, opClear, func(next *State) (bool, error) {
		next.Items = nil
		return true, nil
	})
	return err
}

// Deduct removes the ordered quantities after a successful order. A cart that
// did not change while the order was in flight ends up empty; lines added or
// raised meanwhile keep the difference.
func (s *service) Deduct(ctx context.Context, ordered []LineItem) error {
	_, err := s.mutate(ctx, opDeduct, func(next *State) (bool, error) {
		changed := false
		for _, line := range ordered {
			idx := next.indexOf(line.ItemID)
			if idx < 0 {
				continue
			}
			changed = true
			if remaining := next.Items[idx].Quantity - line.Quantity; remaining > 0 {
				next.Items[idx].Quantity = remaining
				continue
			}
			next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
		}
		return changed, nil
	})
	return err
}

func (s *service) mutate(ctx context.Context, op string, fn func(next *State) (bool, error)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	changed, err := fn(&next)
	if err != nil {
		s.metrics.IncCartMutation(op, "rejected")
		return s.state.clone(), err
	}
	if !changed {
		s.metrics.IncCartMutation(op, "noop")
		return s.state.clone(), nil
	}
	next.normalize()

	if err := s.persist(ctx, next); err != nil {
		s.metrics.IncCartMutation(op, "store_error")
		s.logg.Error(s.logg.WithField(ctx, "cart_operation", op), "failed to persist cart", err)
		return s.state.clone(), pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to save cart")
	}

	s.state = next
	s.metrics.IncCartMutation(op, "ok")
	return next.clone(), nil
}

func (s *service) persist(ctx context.Context, next State) error {
	if next.IsEmpty() {
		return s.store.Remove(ctx, storage.KeyCart)
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return s.store.Write(ctx, storage.KeyCart, raw)
}
