package order

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dinehall/dinehall/internal/database"
	"github.com/dinehall/dinehall/internal/entity"
)

var repoTracer = otel.Tracer("github.com/dinehall/dinehall/repository/order")

// ErrSessionNotOpen is returned when the guarded insert finds no open session
// to attach the order to.
var ErrSessionNotOpen = errors.New("session is not open")

// SessionOrder is an order annotated with its product name and computed line
// total, as served by the itemized listing.
type SessionOrder struct {
	ID             int64           `bun:"id"`
	TableSessionID int64           `bun:"table_session_id"`
	ProductID      int64           `bun:"product_id"`
	ProductName    string          `bun:"product_name"`
	Quantity       int64           `bun:"quantity"`
	Price          decimal.Decimal `bun:"price"`
	Total          decimal.Decimal `bun:"-"`
	CreatedAt      time.Time       `bun:"created_at"`
	UpdatedAt      time.Time       `bun:"updated_at"`
}

// Summary aggregates a session's ledger.
type Summary struct {
	Total    decimal.Decimal
	Quantity int64
}

// Repository encapsulates the append-only order ledger.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create inserts the order if and only if its session is still open. The
// INSERT selects its values from the session row itself, so the row count
// tells us whether an open session existed at commit time. No order can be
// durably inserted after the session's close commits.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(
		attribute.Int64("session.id", order.TableSessionID),
		attribute.Int64("product.id", order.ProductID),
	))
	defer span.End()

	res, err := r.writer.ExecContext(ctx,
		"INSERT INTO orders (table_session_id, product_id, quantity, price, created_at, updated_at) "+
			"SELECT id, ?, ?, ?, ?, ? FROM tables_sessions WHERE id = ? AND closed_at IS NULL",
		order.ProductID, order.Quantity, order.Price, order.CreatedAt, order.UpdatedAt, order.TableSessionID,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		span.SetStatus(codes.Error, "session not open")
		return ErrSessionNotOpen
	}
	return nil
}

// ListBySession returns the session's orders joined with their product names,
// newest first. An unknown session id yields an empty slice.
func (r *Repository) ListBySession(ctx context.Context, sessionID int64) ([]SessionOrder, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListBySession", trace.WithAttributes(attribute.Int64("session.id", sessionID)))
	defer span.End()

	orders := make([]SessionOrder, 0)
	err := r.reader.NewSelect().
		TableExpr("orders AS o").
		ColumnExpr("o.id, o.table_session_id, o.product_id, o.quantity, o.price, o.created_at, o.updated_at").
		ColumnExpr("p.name AS product_name").
		Join("JOIN products AS p ON p.id = o.product_id").
		Where("o.table_session_id = ?", sessionID).
		OrderExpr("o.created_at DESC").
		OrderExpr("o.id DESC").
		Scan(ctx, &orders)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}

	for i := range orders {
		orders[i].Total = orders[i].Price.Mul(decimal.NewFromInt(orders[i].Quantity))
	}
	return orders, nil
}

// Summarize folds the session's orders into a running total and quantity.
// The monetary sum is computed in decimal arithmetic rather than SQL SUM so
// the result stays exact on engines that would coerce DECIMAL to floating
// point.
func (r *Repository) Summarize(ctx context.Context, sessionID int64) (Summary, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Summarize", trace.WithAttributes(attribute.Int64("session.id", sessionID)))
	defer span.End()

	var lines []struct {
		Price    decimal.Decimal `bun:"price"`
		Quantity int64           `bun:"quantity"`
	}
	err := r.reader.NewSelect().
		Table("orders").
		Column("price", "quantity").
		Where("table_session_id = ?", sessionID).
		Scan(ctx, &lines)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return Summary{}, err
	}

	summary := Summary{Total: decimal.Zero}
	for _, line := range lines {
		summary.Total = summary.Total.Add(line.Price.Mul(decimal.NewFromInt(line.Quantity)))
		summary.Quantity += line.Quantity
	}
	return summary, nil
}

// CountBySession reports how many orders a session holds.
func (r *Repository) CountBySession(ctx context.Context, sessionID int64) (int, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.CountBySession", trace.WithAttributes(attribute.Int64("session.id", sessionID)))
	defer span.End()

	count, err := r.reader.NewSelect().
		Model((*entity.Order)(nil)).
		Where("table_session_id = ?", sessionID).
		Count(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count failed")
		return 0, err
	}
	return count, nil
}
