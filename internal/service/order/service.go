package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/dinehall/dinehall/internal/config"
	"github.com/dinehall/dinehall/internal/entity"
	"github.com/dinehall/dinehall/internal/messaging"
	repo "github.com/dinehall/dinehall/internal/repository/order"
	productsvc "github.com/dinehall/dinehall/internal/service/product"
	sessionsvc "github.com/dinehall/dinehall/internal/service/session"
	"github.com/dinehall/dinehall/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/dinehall/dinehall/service/order")

// Service is the order ledger: it appends line items to open sessions,
// snapshotting the product's price at the instant of purchase, and serves the
// per-session aggregates. It never updates or deletes an order.
type Service struct {
	repo              *repo.Repository
	sessions          *sessionsvc.Service
	products          *productsvc.Service
	logger            *zap.Logger
	publisher         messaging.Client
	publishingEnabled bool
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Sessions   *sessionsvc.Service
	Products   *productsvc.Service
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:              p.Repository,
		sessions:          p.Sessions,
		products:          p.Products,
		logger:            p.Logger,
		publisher:         p.Publisher,
		publishingEnabled: p.Config.Messaging.Enabled,
	}
}

// Create appends one line item to the session's ledger. The product's current
// price is copied into the order row; later catalog edits never touch it.
func (s *Service) Create(ctx context.Context, sessionID, productID, quantity int64) error {
	if quantity <= 0 {
		return errorbank.BadRequest("quantity must be a positive number")
	}
	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(
		attribute.Int64("session.id", sessionID),
		attribute.Int64("product.id", productID),
		attribute.Int64("order.quantity", quantity),
	))
	defer span.End()

	session, err := s.sessions.AssertOpen(ctx, sessionID)
	if err != nil {
		return err
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	order := &entity.Order{
		TableSessionID: session.ID,
		ProductID:      product.ID,
		Quantity:       quantity,
		Price:          product.Price,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		if errors.Is(err, repo.ErrSessionNotOpen) {
			// The session was closed between the assert and the insert.
			return errorbank.Conflict("this session table is already closed")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}

	s.publishOrderCreated(ctx, order)

	if s.logger != nil {
		s.logger.Info("order created",
			zap.Int64("session_id", session.ID),
			zap.Int64("product_id", product.ID),
			zap.Int64("quantity", quantity),
			zap.String("unit_price", product.Price.String()),
		)
	}
	return nil
}

// ListBySession returns the session's orders, newest first, each annotated
// with its product name and line total. An unknown session id yields an empty
// list rather than an error.
func (s *Service) ListBySession(ctx context.Context, sessionID int64) ([]repo.SessionOrder, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.ListBySession", trace.WithAttributes(attribute.Int64("session.id", sessionID)))
	defer span.End()

	orders, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// Summarize returns the session's running total and quantity, both zero when
// no orders exist.
func (s *Service) Summarize(ctx context.Context, sessionID int64) (repo.Summary, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Summarize", trace.WithAttributes(attribute.Int64("session.id", sessionID)))
	defer span.End()

	summary, err := s.repo.Summarize(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return repo.Summary{}, errorbank.Internal("failed to summarize orders", errorbank.WithCause(err))
	}
	return summary, nil
}

func (s *Service) publishOrderCreated(ctx context.Context, order *entity.Order) {
	if !s.publishingEnabled || s.publisher == nil {
		return
	}
	event := OrderCreatedEvent{
		Type:           "order.created",
		TableSessionID: order.TableSessionID,
		ProductID:      order.ProductID,
		Quantity:       order.Quantity,
		Price:          order.Price,
		CreatedAt:      order.CreatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal order created", zap.Error(err))
		}
		return
	}
	key := []byte(fmt.Sprintf("session-%d", order.TableSessionID))
	if err := s.publisher.Publish(ctx, key, payload); err != nil {
		if s.logger != nil {
			s.logger.Error("publish order created", zap.Error(err))
		}
	}
}

// OrderCreatedEvent is emitted when a new line item is appended to a session.
type OrderCreatedEvent struct {
	Type           string          `json:"type"`
	TableSessionID int64           `json:"table_session_id"`
	ProductID      int64           `json:"product_id"`
	Quantity       int64           `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	CreatedAt      time.Time       `json:"created_at"`
}
