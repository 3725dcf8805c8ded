package broadcast

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"yurt/internal/model"
)

// Exchange is a topic exchange. Every event goes out under the "staff"
// key; events tied to a customer also go out under "customer.<id>" so a
// client can subscribe to just its own orders.
const Exchange = "orders.events"

type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func Connect(uri string) (*Publisher, error) {
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

	return &Publisher{conn: conn, ch: ch}, nil
}

// Publish sends one stored event to every interested routing key. The
// event ID travels as MessageId so consumers can deduplicate redelivery
// after a worker retry.
func (p *Publisher) Publish(ctx context.Context, ev model.OutboxEvent) error {
	keys := []string{"staff"}
	if ev.CustomerID != "" {
		keys = append(keys, "customer."+ev.CustomerID)
	}

	for _, key := range keys {
		msg := amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    ev.ID,
			Type:         ev.Type,
			Body:         ev.Payload,
		}
		if err := p.ch.PublishWithContext(ctx, Exchange, key, false, false, msg); err != nil {
			return fmt.Errorf("publish %s to %s: %w", ev.Type, key, err)
		}
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
