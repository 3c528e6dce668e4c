package orders

import (
	"github.com/shopspring/decimal"
)

// OrderItem is one line of a past order.
type OrderItem struct {
	Name     string          `json:"name"`
	ImageRef *string         `json:"imageRef,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// OrderSummary is a past order as the order history view shows it.
type OrderSummary struct {
	ID              string          `json:"id"`
	RestaurantName  string          `json:"restaurantName"`
	Date            string          `json:"date,omitempty"`
	DeliveryAddress string          `json:"deliveryAddress"`
	Status          string          `json:"status"`
	Items           []OrderItem     `json:"items"`
	Total           decimal.Decimal `json:"total"`
	DeliveryMinutes *int64          `json:"deliveryMinutes,omitempty"`
}
