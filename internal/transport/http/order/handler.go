package order

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dinehall/dinehall/internal/dto"
	"github.com/dinehall/dinehall/internal/presentation/http/response"
	service "github.com/dinehall/dinehall/internal/service/order"
	"github.com/dinehall/dinehall/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/dinehall/dinehall/transport/http/order")

// Handler exposes order-ledger endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/orders")
	g.POST("", h.create)
	g.GET("/table-session/:table_session_id", h.listBySession)
	g.GET("/table-session/:table_session_id/summary", h.summarize)
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		TableSessionID int64 `json:"table_session_id"`
		ProductID      int64 `json:"product_id"`
		Quantity       int64 `json:"quantity"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if payload.TableSessionID <= 0 {
		return b.WithError(errorbank.BadRequest("table_session_id must be a positive number")).Build()
	}
	if payload.ProductID <= 0 {
		return b.WithError(errorbank.BadRequest("product_id must be a positive number")).Build()
	}
	if payload.Quantity <= 0 {
		return b.WithError(errorbank.BadRequest("quantity must be a positive number")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create", trace.WithAttributes(
		attribute.Int64("session.id", payload.TableSessionID),
		attribute.Int64("product.id", payload.ProductID),
	))
	defer span.End()

	if err := h.svc.Create(ctx, payload.TableSessionID, payload.ProductID, payload.Quantity); err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).Build()
}

func (h *Handler) listBySession(c echo.Context) error {
	b := response.New(c)

	sessionID, err := strconv.ParseInt(c.Param("table_session_id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("table_session_id must be a number", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.listBySession", trace.WithAttributes(attribute.Int64("session.id", sessionID)))
	defer span.End()

	orders, err := h.svc.ListBySession(ctx, sessionID)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.OrderItemResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, dto.OrderItemResponse{
			ID:             o.ID,
			TableSessionID: o.TableSessionID,
			ProductID:      o.ProductID,
			Name:           o.ProductName,
			Price:          o.Price,
			Quantity:       o.Quantity,
			Total:          o.Total,
			CreatedAt:      o.CreatedAt,
			UpdatedAt:      o.UpdatedAt,
		})
	}
	return b.WithData(out).Build()
}

func (h *Handler) summarize(c echo.Context) error {
	b := response.New(c)

	sessionID, err := strconv.ParseInt(c.Param("table_session_id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("table_session_id must be a number", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.summarize", trace.WithAttributes(attribute.Int64("session.id", sessionID)))
	defer span.End()

	summary, err := h.svc.Summarize(ctx, sessionID)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.OrderSummaryResponse{
		Total:    summary.Total,
		Quantity: summary.Quantity,
	}).Build()
}
