package ledger

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/dinehall/dinehall/internal/config"
	"github.com/dinehall/dinehall/internal/messaging"
	ordersvc "github.com/dinehall/dinehall/internal/service/order"
	sessionsvc "github.com/dinehall/dinehall/internal/service/session"
	"github.com/dinehall/dinehall/internal/worker"
)

var workerTracer = otel.Tracer("github.com/dinehall/dinehall/worker/ledger")

// Module registers the ledger audit handler.
var Module = fx.Module("worker_ledger",
	fx.Provide(
		fx.Annotate(
			NewAuditHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// envelope peeks at the event type before full decoding.
type envelope struct {
	Type string `json:"type"`
}

// NewAuditHandler sets up a worker handler that writes an audit log line for
// every ledger event on the bus.
func NewAuditHandler(logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.ledger.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var env envelope
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			logger.Error("failed to decode ledger event", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		switch env.Type {
		case "order.created":
			var event ordersvc.OrderCreatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "decode error")
				return err
			}
			logger.Info("order created event processed",
				zap.Int64("table_session_id", event.TableSessionID),
				zap.Int64("product_id", event.ProductID),
				zap.Int64("quantity", event.Quantity),
				zap.String("unit_price", event.Price.String()),
			)
		case "session.closed":
			var event sessionsvc.SessionClosedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "decode error")
				return err
			}
			logger.Info("session closed event processed",
				zap.Int64("session_id", event.SessionID),
				zap.Time("closed_at", event.ClosedAt),
			)
		default:
			logger.Warn("unknown ledger event type", zap.String("type", env.Type))
		}

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
