package broadcast

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Event is what a subscriber sees: the message type, the idempotency
// key, and the raw JSON body the publisher stored.
type Event struct {
	ID   string
	Type string
	Body []byte
}

type Subscriber struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// Subscribe binds an exclusive queue to the events exchange under the
// given routing keys ("staff", "customer.<id>"). The queue disappears
// with the connection; subscribers only see events published while they
// listen.
func Subscribe(uri string, keys ...string) (*Subscriber, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	for _, key := range keys {
		if err := ch.QueueBind(q.Name, key, Exchange, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	return &Subscriber{conn: conn, ch: ch, queue: q.Name}, nil
}

// Listen delivers events to the handler until the context ends or the
// channel closes. Handler errors are the handler's problem; delivery is
// auto-acked because a missed realtime event is not worth a redelivery
// loop.
func (s *Subscriber) Listen(ctx context.Context, handler func(Event)) error {
	msgs, err := s.ch.Consume(s.queue, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			handler(Event{ID: msg.MessageId, Type: msg.Type, Body: msg.Body})
		}
	}
}

func (s *Subscriber) Close() error {
	if s.ch != nil {
		s.ch.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
