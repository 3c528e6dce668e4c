package controllers

import (
	"net/http"

	"github.com/JKPrasad01/FoodAppFrontend/api/middleware"
	"github.com/JKPrasad01/FoodAppFrontend/api/responses"
	"github.com/JKPrasad01/FoodAppFrontend/api/validators"
	"github.com/JKPrasad01/FoodAppFrontend/internal/checkout"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/logger"
)

// Checkout submits the visitor's cart. A created order answers 201; a
// backend rejection answers 200 with a failure outcome so the form can show
// the message and the cart stays intact.
func Checkout(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := middleware.RequireClient(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var form checkout.Form
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		form.DeliveryAddress = validators.SanitizeString(form.DeliveryAddress, 0)
		form.ContactNumber = validators.SanitizeString(form.ContactNumber, 0)
		form.PaymentMethod = validators.SanitizeString(form.PaymentMethod, 0)

		outcome, err := c.Checkout.Submit(r.Context(), c.Session.Identity(), form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if outcome.Status == checkout.StatusSuccess {
			responses.WriteSuccessStatus(w, http.StatusCreated, outcome)
			return
		}
		responses.WriteSuccess(w, outcome)
	}
}
