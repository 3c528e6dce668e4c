package cart

import (
	"github.com/JKPrasad01/FoodAppFrontend/internal/catalog"
)

// addItemRequest carries a menu entry exactly as the menu endpoint served it,
// plus the restaurant the visitor is ordering from.
type addItemRequest struct {
	Item         catalog.MenuEntry `json:"item"`
	RestaurantID int64             `json:"restaurantId"`
}

type adjustItemRequest struct {
	Delta int `json:"delta" validate:"required"`
}
