package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/CyclrHQ/cyclr-backend/internal/metrics"
	"github.com/CyclrHQ/cyclr-backend/internal/product"
	"github.com/CyclrHQ/cyclr-backend/pkg/logger"
	"github.com/CyclrHQ/cyclr-backend/pkg/model"
)

// Publisher wraps a NATS connection and provides helpers for publishing canonical events.
type Publisher struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
	service string
}

// New creates a new Publisher with JetStream enabled if available.
func New(nc *nats.Conn, subject, service string) (*Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return &Publisher{
		nc:      nc,
		js:      js,
		subject: subject,
		service: service,
	}, nil
}

// PublishEnvelope serializes and publishes a canonical event envelope to NATS.
func (p *Publisher) PublishEnvelope(ctx context.Context, subject string, env *model.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		logger.S().Errorw("publisher.marshal_failed",
			"subject", subject,
			"event_type", env.EventType,
			"error", err,
		)
		return err
	}

	if subject == "" {
		subject = p.subject
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"event_type":     []string{env.EventType},
			"correlation_id": []string{env.CorrelationID.String()},
			"service":        []string{p.service},
			"content_type":   []string{"application/json"},
		},
	}

	start := time.Now()
	_, err = p.js.PublishMsg(msg)
	metrics.ObserveDuration(metrics.NATSMessageLatency, start, subject)

	if err != nil {
		logger.S().Errorw("publisher.publish_failed",
			"subject", subject,
			"event_type", env.EventType,
			"error", err,
		)
		metrics.IncNATSMessage(subject, "error")
		return err
	}

	logger.S().Infow("publisher.publish_success",
		"subject", subject,
		"event_type", env.EventType,
	)

	metrics.IncNATSMessage(subject, "ok")
	return nil
}

// PublishProductEvent emits a canonical product lifecycle event. The subject
// is derived from the event type: "product.sold" → "evt.product.sold.v1".
func (p *Publisher) PublishProductEvent(ctx context.Context, eventType string, prod *product.Product) error {
	env := &model.Envelope{
		ID:            uuid.New(),
		CorrelationID: uuid.New(),
		Topic:         "evt." + eventType + ".v1",
		EventType:     eventType,
		Service:       p.service,
		Timestamp:     time.Now().UTC(),
		Payload: model.ProductLifecycleEvent{
			ProductID:          prod.ID,
			SerialNumber:       prod.SerialNumber,
			Status:             string(prod.Status),
			ManufacturerWallet: prod.ManufacturerWallet,
			CustomerWallet:     prod.CustomerWallet,
			TotalWithdrawn:     prod.TotalWithdrawn,
			APYEarned:          prod.APYEarned,
		},
	}

	return p.PublishEnvelope(ctx, "evt."+eventType+".v1", env)
}

func (p *Publisher) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
	}
}
