package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"social-service/internal/observability"
	"social-service/internal/rabbitmq"
)

const AuditRoutingKey = "social-service.audit"

const auditSchemaVersion = 2

const (
	LevelInfo  = "INFO"
	LevelError = "ERROR"
)

// Record is one auditable action taken on the relationship graph.
type Record struct {
	Level     string
	Action    string
	Text      string
	Route     string
	RequestID string
	ActorID   *int64
}

// Envelope matches the log-collector audit_log schema.
type Envelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventID       string       `json:"event_id"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id"`
	UserID        *int64       `json:"user_id,omitempty"`
	Payload       AuditPayload `json:"payload"`
}

type AuditPayload struct {
	Level  string `json:"level"`
	Action string `json:"action"`
	Route  string `json:"route,omitempty"`
	Text   string `json:"text"`
}

// AuditEmitter ships audit records to the logs exchange. Delivery is best effort.
type AuditEmitter struct {
	publisher   rabbitmq.Publisher
	service     string
	environment string
	logger      *zap.Logger
	now         func() time.Time
}

func NewAuditEmitter(publisher rabbitmq.Publisher, service, environment string, logger *zap.Logger) *AuditEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditEmitter{
		publisher:   publisher,
		service:     service,
		environment: environment,
		logger:      logger.Named("audit"),
		now:         time.Now,
	}
}

func (e *AuditEmitter) envelope(rec Record) Envelope {
	return Envelope{
		SchemaVersion: auditSchemaVersion,
		EventID:       uuid.NewString(),
		EventType:     "audit_log",
		OccurredAt:    e.now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     rec.RequestID,
		UserID:        rec.ActorID,
		Payload: AuditPayload{
			Level:  rec.Level,
			Action: rec.Action,
			Route:  rec.Route,
			Text:   rec.Text,
		},
	}
}

// Emit publishes rec. A nil emitter or publisher drops it.
func (e *AuditEmitter) Emit(ctx context.Context, rec Record) {
	if e == nil || e.publisher == nil {
		return
	}
	if rec.Level == "" {
		rec.Level = LevelInfo
	}

	if err := e.publisher.Publish(ctx, AuditRoutingKey, e.envelope(rec)); err != nil {
		e.logger.Warn("audit publish failed",
			zap.String("action", rec.Action),
			zap.String("request_id", rec.RequestID),
			zap.Error(err))
		return
	}
	observability.IncAuditEventPublished(rec.Level)
}
