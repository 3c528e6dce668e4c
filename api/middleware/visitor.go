package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/JKPrasad01/FoodAppFrontend/api/responses"
	"github.com/JKPrasad01/FoodAppFrontend/internal/client"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/config"
	pkgerrors "github.com/JKPrasad01/FoodAppFrontend/pkg/errors"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/logger"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/visitor"
)

type clientRegistry interface {
	Get(ctx context.Context, visitorID string) (*client.Client, error)
}

// Visitor resolves the visitor cookie to a client. A missing, expired or
// tampered token starts a new visitor and sets a fresh cookie.
func Visitor(cfg config.VisitorConfig, registry clientRegistry, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			visitorID, ok := visitorFromCookie(cfg, r)
			if !ok {
				id := uuid.New()
				token, err := visitor.Mint(cfg, time.Now(), id)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue visitor token"))
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(cfg.TTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
				visitorID = id.String()
				if logg != nil {
					logg.Debug(logg.WithVisitorID(ctx, visitorID), "visitor.issued")
				}
			}

			c, err := registry.Get(ctx, visitorID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve visitor"))
				return
			}

			if logg != nil {
				ctx = logg.WithVisitorID(ctx, visitorID)
				if identity := c.Session.Identity(); identity != nil {
					ctx = logg.WithUserID(ctx, identity.UserID)
				}
			}
			ctx = WithClient(ctx, c)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func visitorFromCookie(cfg config.VisitorConfig, r *http.Request) (string, bool) {
	cookie, err := r.Cookie(cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	claims, err := visitor.Parse(cfg, cookie.Value)
	if err != nil {
		return "", false
	}
	return claims.VisitorID.String(), true
}
