package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/rabbitmq/amqp091-go"
)

// DefaultExchange is the topic exchange payment events are published to.
const DefaultExchange = "uzpay.events"

// AMQPNotifier publishes notifications to a RabbitMQ topic exchange using
// the message kind as routing key.
type AMQPNotifier struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	logger   *slog.Logger
}

// NewAMQPNotifier dials RabbitMQ and declares the exchange.
func NewAMQPNotifier(rawURL, exchange string, logger *slog.Logger) (*AMQPNotifier, error) {
	cleanURL, err := sanitizeAMQPURL(rawURL)
	if err != nil {
		return nil, err
	}
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp091.Dial(cleanURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &AMQPNotifier{conn: conn, channel: channel, exchange: exchange, logger: logger}, nil
}

// Send publishes message as JSON. amqp091 channels are not safe for
// concurrent publishing, hence the mutex.
func (n *AMQPNotifier) Send(ctx context.Context, message Message) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	err = n.channel.PublishWithContext(ctx, n.exchange, routingKey(message.Kind), false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    message.Reference,
		Body:         body,
	})
	if err != nil {
		if n.logger != nil {
			n.logger.Error("publish notification", slog.String("kind", message.Kind), slog.Any("error", err))
		}
		return err
	}
	return nil
}

// Close releases the channel and connection.
func (n *AMQPNotifier) Close() error {
	var errs []error
	if n.channel != nil {
		errs = append(errs, n.channel.Close())
	}
	if n.conn != nil {
		errs = append(errs, n.conn.Close())
	}
	return errors.Join(errs...)
}

func routingKey(kind string) string {
	return "card." + strings.ReplaceAll(kind, "_", ".")
}

func sanitizeAMQPURL(raw string) (string, error) {
	u, err := url.Parse(strings.Trim(strings.TrimSpace(raw), "\"'"))
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	// An empty path selects the default vhost; an explicit one is kept as is.
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

// Fanout delivers a message to every notifier, returning the joined errors.
type Fanout []Notifier

// Send implements Notifier.
func (f Fanout) Send(ctx context.Context, message Message) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		errs = append(errs, n.Send(ctx, message))
	}
	return errors.Join(errs...)
}
