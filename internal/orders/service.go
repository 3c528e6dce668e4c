package orders

import (
	"context"
	"fmt"
	"math"

	"github.com/JKPrasad01/FoodAppFrontend/internal/backend"
	"github.com/JKPrasad01/FoodAppFrontend/internal/session"
	pkgerrors "github.com/JKPrasad01/FoodAppFrontend/pkg/errors"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/logger"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type historyReader interface {
	OrderHistory(ctx context.Context, userID int64) ([]backend.OrderRecord, error)
}

// Service exposes the order history of the signed-in user.
type Service interface {
	History(ctx context.Context, identity *session.Identity) ([]OrderSummary, error)
}

type service struct {
	backend historyReader
	logg    *logger.Logger
}

func NewService(be historyReader, logg *logger.Logger) (Service, error) {
	if be == nil {
		return nil, fmt.Errorf("order history reader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{backend: be, logg: logg}, nil
}

func (s *service) History(ctx context.Context, identity *session.Identity) ([]OrderSummary, error) {
	if identity == nil || identity.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}

	ctx = s.logg.WithUserID(ctx, identity.UserID)
	records, err := s.backend.OrderHistory(ctx, identity.UserID)
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "order history unavailable")
		return nil, err
	}

	summaries := make([]OrderSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, summarize(rec))
	}
	return summaries, nil
}

func summarize(rec backend.OrderRecord) OrderSummary {
	summary := OrderSummary{
		ID:              rec.OrderID.String(),
		RestaurantName:  rec.RestaurantName,
		DeliveryAddress: rec.OrderAddress,
		Status:          rec.OrderStatus,
		Items:           make([]OrderItem, 0, len(rec.ItemHistories)),
		Total:           decimal.Zero,
	}

	for _, item := range rec.ItemHistories {
		summary.Items = append(summary.Items, OrderItem{
			Name:     item.MenuName,
			ImageRef: item.MenuProfile,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
		summary.Total = summary.Total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	if rec.OrderDate != nil && !rec.OrderDate.IsZero() {
		summary.Date = rec.OrderDate.UTC().Format(dateLayout)
		if rec.DeliveryDate != nil && !rec.DeliveryDate.IsZero() {
			minutes := int64(math.Round(rec.DeliveryDate.Sub(rec.OrderDate.Time).Minutes()))
			summary.DeliveryMinutes = &minutes
		}
	}
	return summary
}
