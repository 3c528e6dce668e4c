package orders

import (
	"net/http"

	"github.com/JKPrasad01/FoodAppFrontend/api/middleware"
	"github.com/JKPrasad01/FoodAppFrontend/api/responses"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/logger"
)

// List returns the signed-in user's order history in backend order.
func List(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := middleware.RequireClient(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summaries, err := c.Orders.History(r.Context(), c.Session.Identity())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summaries)
	}
}
