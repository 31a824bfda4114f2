package table

import (
	"context"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/dinehall/dinehall/internal/database"
	"github.com/dinehall/dinehall/internal/entity"
)

var repoTracer = otel.Tracer("github.com/dinehall/dinehall/repository/table")

// Repository reads the physical table catalog.
type Repository struct {
	reader *bun.DB
}

// NewRepository wires a repository backed by the read connection.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{reader: conns.Reader}
}

// List returns every table ordered by its number.
func (r *Repository) List(ctx context.Context) ([]entity.Table, error) {
	ctx, span := repoTracer.Start(ctx, "TableRepository.List")
	defer span.End()

	var tables []entity.Table
	err := r.reader.NewSelect().Model(&tables).OrderExpr("number ASC").Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return tables, nil
}
