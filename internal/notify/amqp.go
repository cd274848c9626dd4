package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// Publisher is the part of *amqp091.Channel the notifier needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// AMQPNotifier publishes notifications as JSON to a RabbitMQ queue; a mailer consumes them.
type AMQPNotifier struct {
	channel Publisher
	queue   string
}

func NewAMQPNotifier(channel Publisher, queue string) *AMQPNotifier {
	return &AMQPNotifier{
		channel: channel,
		queue:   queue,
	}
}

// DialAMQP connects to RabbitMQ, declares the durable queue and returns a notifier bound to it.
// The returned close function releases the channel and the connection.
func DialAMQP(url, queue string) (*AMQPNotifier, func() error, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to rabbitmq failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("declare queue %s failed: %w", queue, err)
	}

	closeFn := func() error {
		ch.Close()
		return conn.Close()
	}
	return NewAMQPNotifier(ch, queue), closeFn, nil
}

func (n *AMQPNotifier) Notify(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Headers: amqp091.Table{
			"message_type": "JSON",
		},
	}

	if err := n.channel.PublishWithContext(ctx, "", n.queue, false, false, publishing); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}
