package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/dinehall/dinehall/internal/config"
	"github.com/dinehall/dinehall/internal/entity"
	"github.com/dinehall/dinehall/internal/messaging"
	repo "github.com/dinehall/dinehall/internal/repository/session"
	"github.com/dinehall/dinehall/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/dinehall/dinehall/service/session")

// Service is the session manager: it owns the table-session lifecycle and is
// the only writer of closed_at.
type Service struct {
	repo              *repo.Repository
	logger            *zap.Logger
	publisher         messaging.Client
	publishingEnabled bool
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:              p.Repository,
		logger:            p.Logger,
		publisher:         p.Publisher,
		publishingEnabled: p.Config.Messaging.Enabled,
	}
}

// Open starts a new session for the table. A table can hold at most one open
// session, so a second open fails with a conflict until the first is closed.
func (s *Service) Open(ctx context.Context, tableID int64) (*entity.TableSession, error) {
	ctx, span := serviceTracer.Start(ctx, "SessionService.Open", trace.WithAttributes(attribute.Int64("table.id", tableID)))
	defer span.End()

	session, err := s.repo.Open(ctx, tableID)
	if err != nil {
		if errors.Is(err, repo.ErrTableOccupied) {
			return nil, errorbank.Conflict("table already has an open session")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to open session", errorbank.WithCause(err))
	}

	if s.logger != nil {
		s.logger.Info("session opened", zap.Int64("session_id", session.ID), zap.Int64("table_id", tableID))
	}
	return session, nil
}

// Close stamps the session's closed timestamp. This is the session's only
// mutation; there is no reopen.
func (s *Service) Close(ctx context.Context, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "SessionService.Close", trace.WithAttributes(attribute.Int64("session.id", id)))
	defer span.End()

	closedAt := time.Now().UTC()
	if err := s.repo.Close(ctx, id, closedAt); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return errorbank.NotFound("session not found")
		case errors.Is(err, repo.ErrAlreadyClosed):
			return errorbank.Conflict("session already closed")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to close session", errorbank.WithCause(err))
	}

	s.publishSessionClosed(ctx, id, closedAt)

	if s.logger != nil {
		s.logger.Info("session closed", zap.Int64("session_id", id))
	}
	return nil
}

// List returns every session, open ones surfaced before closed ones.
func (s *Service) List(ctx context.Context) ([]entity.TableSession, error) {
	ctx, span := serviceTracer.Start(ctx, "SessionService.List")
	defer span.End()

	sessions, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list sessions", errorbank.WithCause(err))
	}
	return sessions, nil
}

// AssertOpen returns the session if it exists and still accepts orders. The
// order ledger calls this before any insert.
func (s *Service) AssertOpen(ctx context.Context, id int64) (*entity.TableSession, error) {
	ctx, span := serviceTracer.Start(ctx, "SessionService.AssertOpen", trace.WithAttributes(attribute.Int64("session.id", id)))
	defer span.End()

	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("session table not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load session", errorbank.WithCause(err))
	}
	if !session.Open() {
		return nil, errorbank.Conflict("this session table is already closed")
	}
	return session, nil
}

func (s *Service) publishSessionClosed(ctx context.Context, id int64, closedAt time.Time) {
	if !s.publishingEnabled || s.publisher == nil {
		return
	}
	event := SessionClosedEvent{
		Type:      "session.closed",
		SessionID: id,
		ClosedAt:  closedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal session closed", zap.Error(err))
		}
		return
	}
	if err := s.publisher.Publish(ctx, []byte(fmt.Sprintf("session-%d", id)), payload); err != nil {
		if s.logger != nil {
			s.logger.Error("publish session closed", zap.Error(err))
		}
	}
}

// SessionClosedEvent is emitted when a session transitions to closed.
type SessionClosedEvent struct {
	Type      string    `json:"type"`
	SessionID int64     `json:"session_id"`
	ClosedAt  time.Time `json:"closed_at"`
}
