package table

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/dinehall/dinehall/internal/dto"
	"github.com/dinehall/dinehall/internal/presentation/http/response"
	repo "github.com/dinehall/dinehall/internal/repository/table"
	"github.com/dinehall/dinehall/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/dinehall/dinehall/transport/http/table")

// Handler exposes the table catalog over HTTP. The catalog is read-only
// reference data, so the handler sits directly on the repository.
type Handler struct {
	repo *repo.Repository
}

// NewHandler constructs a table Handler.
func NewHandler(repo *repo.Repository) *Handler {
	return &Handler{repo: repo}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/tables", h.list)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "tables.list")
	defer span.End()

	tables, err := h.repo.List(ctx)
	if err != nil {
		return b.WithError(errorbank.Internal("failed to list tables", errorbank.WithCause(err))).Build()
	}

	out := make([]dto.TableResponse, 0, len(tables))
	for _, t := range tables {
		out = append(out, dto.TableResponse{ID: t.ID, Number: t.Number})
	}
	return b.WithData(out).Build()
}
