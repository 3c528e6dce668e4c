package controllers

import (
	"net/http"

	"github.com/JKPrasad01/FoodAppFrontend/api/middleware"
	"github.com/JKPrasad01/FoodAppFrontend/api/responses"
	"github.com/JKPrasad01/FoodAppFrontend/api/validators"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/logger"
)

func RestaurantList(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := middleware.RequireClient(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		restaurants, err := c.Catalog.Restaurants(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, restaurants)
	}
}

// RestaurantMenu lists the menu with every entry stamped with the restaurant
// id, ready to be posted to the cart.
func RestaurantMenu(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := middleware.RequireClient(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		restaurantID, err := validators.ParsePathID(r, "restaurantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		menu, err := c.Catalog.Menu(r.Context(), restaurantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, menu)
	}
}
