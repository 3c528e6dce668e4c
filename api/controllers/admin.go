package controllers

import (
	"net/http"

	"github.com/JKPrasad01/FoodAppFrontend/api/middleware"
	"github.com/JKPrasad01/FoodAppFrontend/api/responses"
	"github.com/JKPrasad01/FoodAppFrontend/api/validators"
	"github.com/JKPrasad01/FoodAppFrontend/internal/catalog"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/logger"
)

type importRequest struct {
	Rows []catalog.ImportRow `json:"rows"`
}

// RestaurantCreate adds one restaurant with its menu. The catalog service owns
// the validation messages, so the body is decoded without validate tags.
func RestaurantCreate(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := middleware.RequireClient(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var draft catalog.RestaurantDraft
		if err := validators.DecodeJSON(r, &draft); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := c.Catalog.CreateRestaurant(r.Context(), draft)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func RestaurantImport(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := middleware.RequireClient(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body importRequest
		if err := validators.DecodeJSON(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := c.Catalog.ImportRestaurants(r.Context(), body.Rows)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, summary)
	}
}
