package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GreenChain-Markets/exchange/pkg/logger"
	"github.com/GreenChain-Markets/exchange/pkg/model"
)

func init() {
	logger.Init("test", "dev", "error")
}

type mockJetStream struct {
	nats.JetStreamContext
	published []*nats.Msg
	err       error
}

func (m *mockJetStream) PublishMsg(msg *nats.Msg, _ ...nats.PubOpt) (*nats.PubAck, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.published = append(m.published, msg)
	return &nats.PubAck{Stream: "EXCHANGE_EVENTS", Sequence: uint64(len(m.published))}, nil
}

func newTestPublisher(js nats.JetStreamContext) *Publisher {
	return &Publisher{
		js:      js,
		subject: "evt.exchange",
		service: "exchange",
	}
}

func TestPublishEnvelope(t *testing.T) {
	js := &mockJetStream{}
	p := newTestPublisher(js)

	env := &model.Envelope{
		ID:            uuid.New(),
		CorrelationID: uuid.New(),
		Topic:         "evt.exchange.trade.settled.v1",
		EventType:     "exchange.trade.settled",
		Version:       "1.0.0",
		Timestamp:     time.Now().UTC(),
		Payload:       json.RawMessage(`{"hello":"world"}`),
	}

	err := p.PublishEnvelope(context.Background(), SubjectTradeSettled, env)
	require.NoError(t, err)
	require.Len(t, js.published, 1)

	msg := js.published[0]
	assert.Equal(t, SubjectTradeSettled, msg.Subject)
	assert.Equal(t, "exchange.trade.settled", msg.Header.Get("event_type"))
	assert.Equal(t, env.CorrelationID.String(), msg.Header.Get("correlation_id"))
	assert.Equal(t, "exchange", msg.Header.Get("service"))
	assert.Equal(t, "application/json", msg.Header.Get("content_type"))

	var decoded model.Envelope
	require.NoError(t, json.Unmarshal(msg.Data, &decoded))
	assert.Equal(t, env.ID, decoded.ID)
	assert.JSONEq(t, `{"hello":"world"}`, string(decoded.Payload))
}

func TestPublishEnvelopeDefaultSubject(t *testing.T) {
	js := &mockJetStream{}
	p := newTestPublisher(js)

	env := &model.Envelope{ID: uuid.New(), CorrelationID: uuid.New(), EventType: "exchange.test"}
	require.NoError(t, p.PublishEnvelope(context.Background(), "", env))
	require.Len(t, js.published, 1)
	assert.Equal(t, "evt.exchange", js.published[0].Subject)
}

func TestPublishTradeSettled(t *testing.T) {
	js := &mockJetStream{}
	p := newTestPublisher(js)

	ev := model.TradeSettledEvent{
		Transaction: model.Transaction{
			ID:         "TXN-3000",
			ListingID:  "LST-1000",
			BuyerID:    "buyer",
			SellerID:   "seller",
			Amount:     decimal.RequireFromString("100"),
			UnitPrice:  decimal.RequireFromString("28.50"),
			TotalPrice: decimal.RequireFromString("2850.00"),
		},
		BlockIndex: 2,
	}

	require.NoError(t, p.PublishTradeSettled(context.Background(), ev))
	require.Len(t, js.published, 1)

	msg := js.published[0]
	assert.Equal(t, SubjectTradeSettled, msg.Subject)

	var env model.Envelope
	require.NoError(t, json.Unmarshal(msg.Data, &env))
	assert.Equal(t, "exchange.trade.settled", env.EventType)

	var got model.TradeSettledEvent
	require.NoError(t, json.Unmarshal(env.Payload, &got))
	assert.Equal(t, "TXN-3000", got.Transaction.ID)
	assert.Equal(t, int64(2), got.BlockIndex)
}

func TestPublishError(t *testing.T) {
	js := &mockJetStream{err: errors.New("stream unavailable")}
	p := newTestPublisher(js)

	ev := model.InquiryRecordedEvent{
		BuyerID:   "buyer",
		BuyerName: "Nordic Steel",
		Contact:   model.InquiryContact{SellerEmail: "contact@amazonia-forestry.com"},
	}

	err := p.PublishInquiryRecorded(context.Background(), ev)
	assert.Error(t, err)
	assert.Empty(t, js.published)
}
