package cart

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem is one menu item in the cart. The JSON names match the menu
// payload so a catalog entry can be posted to the cart unchanged.
type LineItem struct {
	ItemID       int64           `json:"menuId"`
	Name         string          `json:"menuName"`
	UnitPrice    decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	RestaurantID int64           `json:"restaurantId"`
	ImageRef     *string         `json:"menuProfile,omitempty"`
}

// Subtotal is unit price times quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// State is the cart snapshot: items in insertion order plus the restaurant
// they all belong to. RestaurantID is nil exactly when Items is empty.
type State struct {
	Items        []LineItem `json:"items"`
	RestaurantID *int64     `json:"restaurantId"`
}

func (s State) IsEmpty() bool {
	return len(s.Items) == 0
}

// Total is the sum of every line subtotal.
func (s State) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Count is the number of units in the cart.
func (s State) Count() int {
	count := 0
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}

// Find returns the line for itemID.
func (s State) Find(itemID int64) (LineItem, bool) {
	if idx := s.indexOf(itemID); idx >= 0 {
		return s.Items[idx], true
	}
	return LineItem{}, false
}

func (s State) indexOf(itemID int64) int {
	for i, item := range s.Items {
		if item.ItemID == itemID {
			return i
		}
	}
	return -1
}

func (s State) clone() State {
	out := State{Items: make([]LineItem, len(s.Items))}
	copy(out.Items, s.Items)
	if s.RestaurantID != nil {
		id := *s.RestaurantID
		out.RestaurantID = &id
	}
	return out
}

func (s *State) normalize() {
	if len(s.Items) == 0 {
		s.Items = []LineItem{}
		s.RestaurantID = nil
	}
}

// validateSnapshot checks a persisted snapshot before it is trusted.
func validateSnapshot(s State) error {
	if len(s.Items) == 0 {
		return nil
	}

	var restaurantID int64
	seen := make(map[int64]struct{}, len(s.Items))
	for i, item := range s.Items {
		switch {
		case item.RestaurantID <= 0:
			return fmt.Errorf("item %d has no restaurant id", i)
		case item.ItemID <= 0:
			return fmt.Errorf("item %d has no item id", i)
		case !item.UnitPrice.IsPositive():
			return fmt.Errorf("item %d has non-positive price", i)
		case item.Quantity <= 0:
			return fmt.Errorf("item %d has non-positive quantity", i)
		}
		if _, dup := seen[item.ItemID]; dup {
			return fmt.Errorf("item %d repeats item id %d", i, item.ItemID)
		}
		seen[item.ItemID] = struct{}{}

		if restaurantID == 0 {
			restaurantID = item.RestaurantID
		} else if item.RestaurantID != restaurantID {
			return fmt.Errorf("items span restaurants %d and %d", restaurantID, item.RestaurantID)
		}
	}

	if s.RestaurantID != nil && *s.RestaurantID != restaurantID {
		return fmt.Errorf("snapshot restaurant %d does not match items restaurant %d", *s.RestaurantID, restaurantID)
	}
	return nil
}

func validateAdd(item LineItem, restaurantID int64) error {
	switch {
	case restaurantID <= 0:
		return fmt.Errorf("invalid or missing restaurant id")
	case item.ItemID <= 0:
		return fmt.Errorf("item id is required")
	case strings.TrimSpace(item.Name) == "":
		return fmt.Errorf("item name is required")
	case !item.UnitPrice.IsPositive():
		return fmt.Errorf("item price must be positive")
	case item.RestaurantID != restaurantID:
		return fmt.Errorf("item restaurant id %d does not match %d", item.RestaurantID, restaurantID)
	}
	return nil
}
