package session

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dinehall/dinehall/internal/database"
	"github.com/dinehall/dinehall/internal/entity"
)

var repoTracer = otel.Tracer("github.com/dinehall/dinehall/repository/session")

// ErrNotFound is returned when a session is missing.
var ErrNotFound = errors.New("session not found")

// ErrTableOccupied is returned when the table already has an open session.
var ErrTableOccupied = errors.New("table already has an open session")

// ErrAlreadyClosed is returned when closing a session that is not open.
var ErrAlreadyClosed = errors.New("session already closed")

// Repository encapsulates read/write access for table sessions. The
// one-open-session-per-table invariant is backed by a partial unique index on
// tables_sessions(table_id) WHERE closed_at IS NULL; the pre-check here only
// produces a friendlier error on the common path.
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

// Open creates a new open session for the table. Returns ErrTableOccupied if
// an open session already exists, whether detected up front or by losing the
// race on the unique index.
func (r *Repository) Open(ctx context.Context, tableID int64) (*entity.TableSession, error) {
	ctx, span := repoTracer.Start(ctx, "SessionRepository.Open", trace.WithAttributes(attribute.Int64("table.id", tableID)))
	defer span.End()

	existing := new(entity.TableSession)
	err := r.writer.NewSelect().Model(existing).
		Where("table_id = ?", tableID).
		Where("closed_at IS NULL").
		Limit(1).
		Scan(ctx)
	if err == nil {
		return nil, ErrTableOccupied
	}
	if !errors.Is(err, sql.ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}

	session := &entity.TableSession{
		TableID:  tableID,
		OpenedAt: time.Now().UTC(),
	}
	if _, err := r.writer.NewInsert().Model(session).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrTableOccupied
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, err
	}
	return session, nil
}

// GetByID fetches a session by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.TableSession, error) {
	ctx, span := repoTracer.Start(ctx, "SessionRepository.GetByID", trace.WithAttributes(attribute.Int64("session.id", id)))
	defer span.End()

	session := new(entity.TableSession)
	err := r.reader.NewSelect().Model(session).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return session, nil
}

// Close stamps closed_at on an open session. The conditional UPDATE makes the
// open-to-closed transition atomic; a follow-up read distinguishes a missing
// session from one that was already closed.
func (r *Repository) Close(ctx context.Context, id int64, closedAt time.Time) error {
	ctx, span := repoTracer.Start(ctx, "SessionRepository.Close", trace.WithAttributes(attribute.Int64("session.id", id)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model((*entity.TableSession)(nil)).
		Set("closed_at = ?", closedAt).
		Where("id = ?", id).
		Where("closed_at IS NULL").
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrAlreadyClosed
}

// List returns all sessions, open ones first, then closed ones by closing
// time ascending.
func (r *Repository) List(ctx context.Context) ([]entity.TableSession, error) {
	ctx, span := repoTracer.Start(ctx, "SessionRepository.List")
	defer span.End()

	var sessions []entity.TableSession
	err := r.reader.NewSelect().Model(&sessions).
		OrderExpr("CASE WHEN closed_at IS NULL THEN 0 ELSE 1 END").
		OrderExpr("closed_at ASC").
		OrderExpr("opened_at ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return sessions, nil
}

// isUniqueViolation recognises unique-index violations across the supported
// drivers: postgres SQLSTATE 23505, sqlite and mysql by message.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}
