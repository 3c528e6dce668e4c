package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/JKPrasad01/FoodAppFrontend/api/responses"
	"github.com/JKPrasad01/FoodAppFrontend/internal/guard"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/config"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/enums"
	pkgerrors "github.com/JKPrasad01/FoodAppFrontend/pkg/errors"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/logger"
)

const (
	loginPath        = "/login"
	unauthorizedPath = "/unauthorized"
)

// Protected gates a route on the visitor's session. It waits up to
// cfg.ReadyWait for session restoration before deciding.
func Protected(cfg config.GuardConfig, logg *logger.Logger, roles ...enums.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			c, err := RequireClient(ctx)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			if cfg.ReadyWait > 0 {
				timer := time.NewTimer(cfg.ReadyWait)
				select {
				case <-c.Session.Ready():
				case <-timer.C:
				case <-ctx.Done():
				}
				timer.Stop()
			}

			state := c.Session.State()
			decision := guard.CanEnter(state.Identity, state.Loading, roles...)
			if logg != nil {
				ctx = logg.WithField(ctx, "guard_decision", decision.String())
			}

			switch decision {
			case guard.Allow:
				if logg != nil {
					ctx = logg.WithUserID(ctx, state.Identity.UserID)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
			case guard.Pending:
				retry := cfg.RetryAfter
				if retry < time.Second {
					retry = time.Second
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())))
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeSessionPending, "session is still loading"))
			case guard.RedirectToLogin:
				w.Header().Set("Location", loginPath)
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required"))
			default:
				w.Header().Set("Location", unauthorizedPath)
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
			}
		})
	}
}
