package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/JKPrasad01/FoodAppFrontend/internal/backend"
	pkgerrors "github.com/JKPrasad01/FoodAppFrontend/pkg/errors"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/validate"
	"github.com/shopspring/decimal"
)

const (
	MessageRestaurantFields = "Please fill in all required restaurant fields."
	MessageMenuRequired     = "Please add at least one menu item."
	MessageMenuItemFields   = "Please fill in menu name, price, and select an image."
	MessageRatingRange      = "Rating must be between 0 and 5."

	// MaxImportRows bounds one spreadsheet upload.
	MaxImportRows = 5000
)

var maxRating = decimal.NewFromInt(5)

// MenuDraft is one menu item of a restaurant being created.
type MenuDraft struct {
	Name        string           `json:"menuName" validate:"required,max=255"`
	ImageRef    string           `json:"menuProfile" validate:"required"`
	Description string           `json:"description" validate:"max=1000"`
	Rating      *decimal.Decimal `json:"rating"`
	Price       decimal.Decimal  `json:"price"`
}

// RestaurantDraft is the admin form for a new restaurant.
type RestaurantDraft struct {
	Name     string           `json:"restaurantName" validate:"required,max=255"`
	Cuisine  string           `json:"cuisineType" validate:"required,max=100"`
	Address  string           `json:"restaurantAddress" validate:"required,max=255"`
	ImageRef string           `json:"restaurantProfile"`
	Rating   *decimal.Decimal `json:"rating"`
	Open     bool             `json:"openOrClosed"`
	Menu     []MenuDraft      `json:"menuList" validate:"min=1,dive"`
}

// ImportRow is one spreadsheet row: restaurant columns repeated on every row
// plus a single menu item.
type ImportRow struct {
	RestaurantID      *int64          `json:"restaurantId"`
	RestaurantName    string          `json:"restaurantName" validate:"required,max=255"`
	RestaurantProfile string          `json:"restaurantProfile"`
	CuisineType       string          `json:"cuisineType"`
	RestaurantAddress string          `json:"restaurantAddress"`
	Rating            decimal.Decimal `json:"rating"`
	OpenOrClosed      bool            `json:"openOrClosed"`
	MenuID            *int64          `json:"menuId"`
	MenuName          string          `json:"menuName" validate:"required,max=255"`
	MenuProfile       string          `json:"menuProfile"`
	MenuRating        decimal.Decimal `json:"menuRating"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
}

type ImportSummary struct {
	Restaurants int `json:"restaurants"`
	MenuItems   int `json:"menuItems"`
}

func (s *service) CreateRestaurant(ctx context.Context, draft RestaurantDraft) (*backend.Restaurant, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	req := backend.NewRestaurant{
		RestaurantName:    strings.TrimSpace(draft.Name),
		RestaurantProfile: draft.ImageRef,
		CuisineType:       strings.TrimSpace(draft.Cuisine),
		RestaurantAddress: strings.TrimSpace(draft.Address),
		Rating:            draft.Rating,
		OpenOrClosed:      draft.Open,
		MenuList:          make([]backend.NewMenuItem, 0, len(draft.Menu)),
	}
	for _, item := range draft.Menu {
		req.MenuList = append(req.MenuList, backend.NewMenuItem{
			MenuName:    strings.TrimSpace(item.Name),
			MenuProfile: item.ImageRef,
			Rating:      item.Rating,
			Description: item.Description,
			Price:       item.Price,
		})
	}

	created, err := s.backend.CreateRestaurant(ctx, req)
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "restaurant create failed")
		return nil, err
	}
	fields := map[string]any{"restaurant_name": req.RestaurantName, "menu_items": len(req.MenuList)}
	if created != nil {
		fields["restaurant_id"] = created.RestaurantID
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), "restaurant created")
	return created, nil
}

// ImportRestaurants groups rows into restaurants and submits them in one
// batch. Rows share a restaurant when they carry the same restaurant id, or,
// without an id, the same restaurant name. The first row of a group supplies
// the restaurant columns and groups keep their first-seen order.
func (s *service) ImportRestaurants(ctx context.Context, rows []ImportRow) (ImportSummary, error) {
	if len(rows) == 0 {
		return ImportSummary{}, pkgerrors.New(pkgerrors.CodeValidation, "the spreadsheet has no rows")
	}
	if len(rows) > MaxImportRows {
		return ImportSummary{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d rows can be imported at once", MaxImportRows))
	}

	batch := make([]backend.NewRestaurant, 0)
	index := make(map[string]int)
	for i, row := range rows {
		if err := validateRow(i+1, row); err != nil {
			return ImportSummary{}, err
		}
		key := groupKey(row)
		pos, ok := index[key]
		if !ok {
			rating := row.Rating
			batch = append(batch, backend.NewRestaurant{
				RestaurantID:      row.RestaurantID,
				RestaurantName:    strings.TrimSpace(row.RestaurantName),
				RestaurantProfile: row.RestaurantProfile,
				CuisineType:       strings.TrimSpace(row.CuisineType),
				RestaurantAddress: strings.TrimSpace(row.RestaurantAddress),
				Rating:            &rating,
				OpenOrClosed:      row.OpenOrClosed,
				MenuList:          []backend.NewMenuItem{},
			})
			pos = len(batch) - 1
			index[key] = pos
		}
		menuRating := row.MenuRating
		batch[pos].MenuList = append(batch[pos].MenuList, backend.NewMenuItem{
			MenuID:      row.MenuID,
			MenuName:    strings.TrimSpace(row.MenuName),
			MenuProfile: row.MenuProfile,
			Rating:      &menuRating,
			Description: row.Description,
			Price:       row.Price,
		})
	}

	summary := ImportSummary{Restaurants: len(batch), MenuItems: len(rows)}
	ctx = s.logg.WithFields(ctx, map[string]any{"restaurants": summary.Restaurants, "menu_items": summary.MenuItems})
	if err := s.backend.ImportRestaurants(ctx, batch); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "restaurant import failed")
		return ImportSummary{}, err
	}
	s.logg.Info(ctx, "restaurants imported")
	return summary, nil
}

func groupKey(row ImportRow) string {
	if row.RestaurantID != nil {
		return fmt.Sprintf("id:%d", *row.RestaurantID)
	}
	return "name:" + strings.ToLower(strings.TrimSpace(row.RestaurantName))
}

func validateDraft(draft RestaurantDraft) error {
	if err := validate.Struct(draft); err != nil {
		details := fieldDetails(err)
		message := MessageMenuItemFields
		switch {
		case hasAny(details, "restaurantName", "cuisineType", "restaurantAddress"):
			message = MessageRestaurantFields
		case hasAny(details, "menuList"):
			message = MessageMenuRequired
		}
		return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(details)
	}
	if blank(draft.Name) || blank(draft.Cuisine) || blank(draft.Address) {
		return pkgerrors.New(pkgerrors.CodeValidation, MessageRestaurantFields)
	}
	if !ratingInRange(draft.Rating) {
		return pkgerrors.New(pkgerrors.CodeValidation, MessageRatingRange).
			WithDetails(map[string]string{"rating": "must be between 0 and 5"})
	}
	for i, item := range draft.Menu {
		if blank(item.Name) || !item.Price.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, MessageMenuItemFields).
				WithDetails(map[string]any{"menuIndex": i, "price": "must be greater than 0"})
		}
		if !ratingInRange(item.Rating) {
			return pkgerrors.New(pkgerrors.CodeValidation, MessageRatingRange).
				WithDetails(map[string]any{"menuIndex": i, "rating": "must be between 0 and 5"})
		}
	}
	return nil
}

func validateRow(line int, row ImportRow) error {
	if err := validate.Struct(row); err != nil {
		typed := pkgerrors.As(err)
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("row %d: %s", line, typed.Message())).
			WithDetails(map[string]any{"row": line, "fields": typed.Details()})
	}
	if row.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("row %d: price must not be negative", line)).
			WithDetails(map[string]any{"row": line})
	}
	return nil
}

func ratingInRange(rating *decimal.Decimal) bool {
	if rating == nil {
		return true
	}
	return !rating.IsNegative() && rating.LessThanOrEqual(maxRating)
}

func fieldDetails(err error) map[string]string {
	if typed := pkgerrors.As(err); typed != nil {
		if details, ok := typed.Details().(map[string]string); ok {
			return details
		}
	}
	return map[string]string{}
}

func hasAny(details map[string]string, fields ...string) bool {
	for _, field := range fields {
		if _, ok := details[field]; ok {
			return true
		}
	}
	return false
}

func blank(value string) bool {
	return strings.TrimSpace(value) == ""
}
