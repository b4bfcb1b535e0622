package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// confirmation resolves once the broker acks or nacks one publish
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

type confirmingChannel interface {
	publish(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error)
}

// amqpChannel publishes in confirm mode. Each publish gets its own deferred
// confirmation keyed by delivery tag, so an ack that arrives after its
// publisher gave up is never read by a later publish.
type amqpChannel struct {
	ch *amqp.Channel
}

func (c amqpChannel) publish(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error) {
	conf, err := c.ch.PublishWithDeferredConfirmWithContext(ctx, exchange, key, false, false, msg)
	if err != nil {
		return nil, err
	}
	if conf == nil {
		return nil, errors.New("amqp channel is not in confirm mode")
	}
	return conf, nil
}

// AMQPMirror republishes room events to a RabbitMQ topic exchange with
// routing key "order.<event>" and the room in the "room" header.
type AMQPMirror struct {
	exchange string
	conn     *amqp.Connection
	ch       *amqp.Channel
	channel  confirmingChannel
}

// DialAMQP connects, declares the exchange and enables publisher confirms
func DialAMQP(url, exchange string) (*AMQPMirror, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "dialing amqp")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "opening amqp channel")
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrapf(err, "declaring exchange %s", exchange)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrap(err, "enabling publisher confirms")
	}
	return &AMQPMirror{exchange: exchange, conn: conn, ch: ch, channel: amqpChannel{ch: ch}}, nil
}

func (m *AMQPMirror) Publish(ctx context.Context, room, event string, payload any) error {
	msg, err := buildPublishing(room, event, payload, time.Now())
	if err != nil {
		return err
	}

	conf, err := m.channel.publish(ctx, m.exchange, RoutingKey(event), msg)
	if err != nil {
		return errors.Wrap(err, "publishing to amqp")
	}
	acked, err := conf.WaitContext(ctx)
	if err != nil {
		return errors.Wrap(err, "waiting for publish confirm")
	}
	if !acked {
		return errors.New("publish NACK from broker")
	}
	return nil
}

func (m *AMQPMirror) Close() {
	if m.ch != nil {
		_ = m.ch.Close()
	}
	if m.conn != nil {
		_ = m.conn.Close()
	}
}

func RoutingKey(event string) string { return "order." + event }

func buildPublishing(room, event string, payload any, at time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		return amqp.Publishing{}, errors.Wrap(err, "encoding event")
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Transient,
		ContentType:  "application/json",
		Timestamp:    at,
		Type:         event,
		Headers:      amqp.Table{"room": room},
		Body:         body,
	}, nil
}
