package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/GreenChain-Markets/exchange/internal/metrics"
	"github.com/GreenChain-Markets/exchange/pkg/logger"
	"github.com/GreenChain-Markets/exchange/pkg/model"
)

// Event subjects
const (
	SubjectTradeSettled      = "evt.exchange.trade.settled.v1"
	SubjectInquiryRecorded   = "evt.exchange.listing.inquiry.v1"
	SubjectListingCreated    = "evt.exchange.listing.created.v1"
	SubjectCompanyRegistered = "evt.exchange.company.registered.v1"
)

// Publisher wraps a NATS connection and publishes canonical marketplace
// event envelopes over JetStream. Notification delivery (e-mail etc.) is the
// consumers' business; this service only emits the data.
type Publisher struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
	service string
}

// New creates a Publisher with JetStream enabled.
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

// PublishEnvelope serializes and publishes a canonical event envelope.
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

	if _, err := p.js.PublishMsg(msg); err != nil {
		logger.S().Errorw("publisher.publish_failed",
			"subject", subject,
			"event_type", env.EventType,
			"error", err,
		)
		metrics.NATSPublishErrors.WithLabelValues(subject).Inc()
		return err
	}

	logger.S().Debugw("publisher.publish_success",
		"subject", subject,
		"event_type", env.EventType,
	)
	return nil
}

// PublishTradeSettled emits one settled-trade event.
func (p *Publisher) PublishTradeSettled(ctx context.Context, ev model.TradeSettledEvent) error {
	return p.publishEvent(ctx, SubjectTradeSettled, "exchange.trade.settled", ev)
}

// PublishInquiryRecorded emits the inquiry data for the notification system.
func (p *Publisher) PublishInquiryRecorded(ctx context.Context, ev model.InquiryRecordedEvent) error {
	return p.publishEvent(ctx, SubjectInquiryRecorded, "exchange.listing.inquiry", ev)
}

// PublishListingCreated emits one listing-created event.
func (p *Publisher) PublishListingCreated(ctx context.Context, ev model.ListingCreatedEvent) error {
	return p.publishEvent(ctx, SubjectListingCreated, "exchange.listing.created", ev)
}

// PublishCompanyRegistered emits one company-registered event.
func (p *Publisher) PublishCompanyRegistered(ctx context.Context, ev model.CompanyRegisteredEvent) error {
	return p.publishEvent(ctx, SubjectCompanyRegistered, "exchange.company.registered", ev)
}

// Publish wraps an arbitrary payload in an envelope and publishes it. Used by
// background jobs that emit ad-hoc operational events.
func (p *Publisher) Publish(ctx context.Context, subject string, payload any) error {
	return p.publishEvent(ctx, subject, subject, payload)
}

func (p *Publisher) publishEvent(ctx context.Context, subject, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	env := &model.Envelope{
		ID:            uuid.New(),
		CorrelationID: uuid.New(),
		Topic:         subject,
		EventType:     eventType,
		Version:       "1.0.0",
		Timestamp:     time.Now().UTC(),
		Payload:       data,
	}
	return p.PublishEnvelope(ctx, subject, env)
}

// Close drains the underlying connection.
func (p *Publisher) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
	}
}
