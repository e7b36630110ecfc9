package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-delivery-engine/internal/domain"
	testlog "service-delivery-engine/internal/testutil"
)

var created = time.Date(2024, time.May, 13, 12, 0, 0, 0, time.UTC)

func sampleEvents() []domain.NotificationEvent {
	return []domain.NotificationEvent{
		{
			ID:             "ev-1",
			OrderID:        "order-1",
			Kind:           domain.KindStatusChanged,
			Recipient:      domain.PartyBuyer,
			RecipientID:    "buyer-1",
			PreviousStatus: domain.OrderProcessing,
			NewStatus:      domain.OrderShipped,
			CreatedAt:      created,
		},
		{
			ID:          "ev-2",
			OrderID:     "order-1",
			Kind:        domain.KindCountdownAlert,
			Recipient:   domain.PartyCourier,
			RecipientID: "courier-1",
			NewStatus:   domain.OrderShipped,
			Countdown:   &domain.CountdownState{RemainingMinutes: 12, Status: domain.CountdownUrgent},
			CreatedAt:   created,
		},
	}
}

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestFromDomain(t *testing.T) {
	t.Parallel()

	m := FromDomain(sampleEvents()[1])
	b, err := json.Marshal(m)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "countdown_alert", got["kind"])
	assert.Equal(t, "courier", got["recipient"])
	assert.Equal(t, map[string]any{"remaining_minutes": 12.0, "status": "urgent"}, got["countdown"])
	assert.NotContains(t, got, "previous_status")
}

func TestRabbitPublisher_Publish(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{}
	p := newRabbitPublisher(nil, ch, DefaultExchange)
	p.now = func() time.Time { return created }

	require.NoError(t, p.Publish(context.Background(), sampleEvents()))
	require.Len(t, ch.sent, 2)

	first := ch.sent[0]
	assert.Equal(t, "notifications_fanout", first.exchange)
	assert.Equal(t, "buyer.status_changed", first.key)
	assert.Equal(t, amqp.Persistent, first.msg.DeliveryMode)
	assert.Equal(t, "application/json", first.msg.ContentType)
	assert.Equal(t, "ev-1", first.msg.MessageId)
	assert.Equal(t, "buyer", first.msg.Headers["recipient"])

	var body Message
	require.NoError(t, json.Unmarshal(first.msg.Body, &body))
	assert.Equal(t, "shipped", body.NewStatus)
	assert.Equal(t, "processing", body.PreviousStatus)

	assert.Equal(t, "courier.countdown_alert", ch.sent[1].key)
}

func TestRabbitPublisher_PublishError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("channel closed")
	p := newRabbitPublisher(nil, &fakeChannel{err: wantErr}, DefaultExchange)

	err := p.Publish(context.Background(), sampleEvents())
	require.ErrorIs(t, err, wantErr)
}

func TestRabbitPublisher_PingAndClose(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{}
	p := newRabbitPublisher(nil, ch, DefaultExchange)

	require.Error(t, p.Ping(context.Background()))
	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

type fakeNATS struct {
	msgs []*nats.Msg
	err  error
}

func (f *fakeNATS) PublishMsg(m *nats.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, m)
	return nil
}

func TestNATSPublisher_Publish(t *testing.T) {
	t.Parallel()

	nc := &fakeNATS{}
	p := newNATSPublisher(nc, "")

	require.NoError(t, p.Publish(context.Background(), sampleEvents()))
	require.Len(t, nc.msgs, 2)
	assert.Equal(t, "notifications.buyer.status_changed", nc.msgs[0].Subject)
	assert.Equal(t, "ev-1", nc.msgs[0].Header.Get(nats.MsgIdHdr))
	assert.Equal(t, "notifications.courier.countdown_alert", nc.msgs[1].Subject)

	var body Message
	require.NoError(t, json.Unmarshal(nc.msgs[1].Data, &body))
	require.NotNil(t, body.Countdown)
	assert.Equal(t, 12, body.Countdown.RemainingMinutes)
}

func TestNATSPublisher_Errors(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("nats: connection closed")
	p := newNATSPublisher(&fakeNATS{err: wantErr}, "n")
	require.ErrorIs(t, p.Publish(context.Background(), sampleEvents()), wantErr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, newNATSPublisher(&fakeNATS{}, "n").Publish(ctx, sampleEvents()), context.Canceled)
}

func TestLogPublisher_Publish(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	p := NewLogPublisher(rec.Logger())

	require.NoError(t, p.Publish(context.Background(), sampleEvents()))

	entries := rec.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "notification", entries[0].Msg)
	v, ok := entries[1].Field("countdown")
	require.True(t, ok)
	assert.Equal(t, "urgent", v)
}
