package catalog

import (
	"context"
	"fmt"

	"github.com/JKPrasad01/FoodAppFrontend/internal/backend"
	"github.com/JKPrasad01/FoodAppFrontend/internal/cart"
	pkgerrors "github.com/JKPrasad01/FoodAppFrontend/pkg/errors"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/logger"
	"github.com/shopspring/decimal"
)

type catalogBackend interface {
	Restaurants(ctx context.Context) ([]backend.Restaurant, error)
	Menu(ctx context.Context, restaurantID int64) ([]backend.MenuItem, error)
	CreateRestaurant(ctx context.Context, req backend.NewRestaurant) (*backend.Restaurant, error)
	ImportRestaurants(ctx context.Context, batch []backend.NewRestaurant) error
}

// MenuEntry is a menu item stamped with the restaurant it belongs to, so it
// can be added to the cart as is.
type MenuEntry struct {
	ItemID       int64           `json:"menuId"`
	Name         string          `json:"menuName"`
	Description  string          `json:"description,omitempty"`
	ImageRef     *string         `json:"menuProfile,omitempty"`
	Rating       decimal.Decimal `json:"rating"`
	UnitPrice    decimal.Decimal `json:"price"`
	RestaurantID int64           `json:"restaurantId"`
}

// LineItem converts the entry into a cart line.
func (m MenuEntry) LineItem() cart.LineItem {
	return cart.LineItem{
		ItemID:       m.ItemID,
		Name:         m.Name,
		UnitPrice:    m.UnitPrice,
		RestaurantID: m.RestaurantID,
		ImageRef:     m.ImageRef,
	}
}

type Service interface {
	Restaurants(ctx context.Context) ([]backend.Restaurant, error)
	Menu(ctx context.Context, restaurantID int64) ([]MenuEntry, error)
	// CreateRestaurant and ImportRestaurants are admin operations; callers
	// enforce the role.
	CreateRestaurant(ctx context.Context, draft RestaurantDraft) (*backend.Restaurant, error)
	ImportRestaurants(ctx context.Context, rows []ImportRow) (ImportSummary, error)
}

type service struct {
	backend catalogBackend
	logg    *logger.Logger
}

func NewService(be catalogBackend, logg *logger.Logger) (Service, error) {
	if be == nil {
		return nil, fmt.Errorf("catalog backend required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{backend: be, logg: logg}, nil
}

func (s *service) Restaurants(ctx context.Context) ([]backend.Restaurant, error) {
	restaurants, err := s.backend.Restaurants(ctx)
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "restaurant list unavailable")
		return nil, err
	}
	if restaurants == nil {
		restaurants = []backend.Restaurant{}
	}
	return restaurants, nil
}

func (s *service) Menu(ctx context.Context, restaurantID int64) ([]MenuEntry, error) {
	if restaurantID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "invalid or missing restaurant id")
	}

	ctx = s.logg.WithRestaurantID(ctx, restaurantID)
	items, err := s.backend.Menu(ctx, restaurantID)
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "menu unavailable")
		return nil, err
	}

	entries := make([]MenuEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, MenuEntry{
			ItemID:       item.MenuID,
			Name:         item.MenuName,
			Description:  item.Description,
			ImageRef:     item.MenuProfile,
			Rating:       item.Rating,
			UnitPrice:    item.Price,
			RestaurantID: restaurantID,
		})
	}
	return entries, nil
}
