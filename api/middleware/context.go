package middleware

import (
	"context"

	"github.com/JKPrasad01/FoodAppFrontend/internal/client"
	pkgerrors "github.com/JKPrasad01/FoodAppFrontend/pkg/errors"
)

type contextKey string

const (
	ctxVisitorID contextKey = "visitor_id"
	ctxClient    contextKey = "visitor_client"
)

func VisitorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxVisitorID).(string); ok {
		return v
	}
	return ""
}

// ClientFromContext returns the visitor client attached by Visitor.
func ClientFromContext(ctx context.Context) *client.Client {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxClient).(*client.Client); ok {
		return v
	}
	return nil
}

// WithClient injects the visitor client and its id into the context.
func WithClient(ctx context.Context, c *client.Client) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if c == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, ctxVisitorID, c.VisitorID)
	return context.WithValue(ctx, ctxClient, c)
}

// RequireClient returns the visitor client or an internal error when the
// Visitor middleware did not run.
func RequireClient(ctx context.Context) (*client.Client, error) {
	c := ClientFromContext(ctx)
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "visitor client missing from context")
	}
	return c, nil
}
