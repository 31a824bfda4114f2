package session

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dinehall/dinehall/internal/dto"
	"github.com/dinehall/dinehall/internal/entity"
	"github.com/dinehall/dinehall/internal/presentation/http/response"
	service "github.com/dinehall/dinehall/internal/service/session"
	"github.com/dinehall/dinehall/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/dinehall/dinehall/transport/http/session")

// Handler exposes table-session endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a session Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/sessions")
	g.POST("", h.open)
	g.PATCH("/:id", h.close)
	g.GET("", h.list)
}

func (h *Handler) open(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		TableID int64 `json:"table_id"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if payload.TableID <= 0 {
		return b.WithError(errorbank.BadRequest("table_id must be a positive number")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "sessions.open", trace.WithAttributes(attribute.Int64("table.id", payload.TableID)))
	defer span.End()

	session, err := h.svc.Open(ctx, payload.TableID)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(toDTO(session)).Build()
}

func (h *Handler) close(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("id must be a number", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "sessions.close", trace.WithAttributes(attribute.Int64("session.id", id)))
	defer span.End()

	if err := h.svc.Close(ctx, id); err != nil {
		return b.WithError(err).Build()
	}

	return b.Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "sessions.list")
	defer span.End()

	sessions, err := h.svc.List(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, toDTO(&sessions[i]))
	}
	return b.WithData(out).Build()
}

func toDTO(session *entity.TableSession) dto.SessionResponse {
	return dto.SessionResponse{
		ID:       session.ID,
		TableID:  session.TableID,
		OpenedAt: session.OpenedAt,
		ClosedAt: session.ClosedAt,
	}
}
