package cart

import (
	"github.com/shopspring/decimal"

	"github.com/JKPrasad01/FoodAppFrontend/internal/cart"
)

type cartLine struct {
	cart.LineItem
	Subtotal decimal.Decimal `json:"subtotal"`
}

type cartView struct {
	Items        []cartLine      `json:"items"`
	RestaurantID *int64          `json:"restaurantId"`
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
}

func newCartView(state cart.State) cartView {
	lines := make([]cartLine, 0, len(state.Items))
	for _, item := range state.Items {
		lines = append(lines, cartLine{LineItem: item, Subtotal: item.Subtotal()})
	}
	return cartView{
		Items:        lines,
		RestaurantID: state.RestaurantID,
		Total:        state.Total(),
		Count:        state.Count(),
	}
}
