package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
)

// ErrPermanent помечает ошибку обработки, которую повтор не исправит
// (например, тело сообщения не декодируется). Такие сообщения отбрасываются.
var ErrPermanent = errors.New("permanent message failure")

// RequeueDelay пауза перед возвратом сообщения в очередь после временной ошибки.
const RequeueDelay = 5 * time.Second

// ConsumerMessage запускает потребителя очереди. Успешно обработанные сообщения
// подтверждаются. Сообщения с ErrPermanent отбрасываются, остальные ошибки
// возвращают сообщение в очередь после паузы RequeueDelay.
func ConsumerMessage(ctx context.Context, ch *amqp.Channel, queueName string, handler func([]byte) error, log *slog.Logger) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sem := make(chan struct{}, 10)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				go func(delivery amqp.Delivery) {
					defer func() { <-sem }()
					handleDelivery(ctx, delivery, queueName, handler, RequeueDelay, log)
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func handleDelivery(ctx context.Context, d amqp.Delivery, queueName string, handler func([]byte) error, delay time.Duration, log *slog.Logger) {
	err := handler(d.Body)
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
		return
	}

	if errors.Is(err, ErrPermanent) {
		log.Error("dropping message that cannot be processed", slog.String("queue", queueName), sl.Err(err))
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
		return
	}

	log.Error("failed to handle message, requeueing", slog.String("queue", queueName), sl.Err(err))
	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}
	if nackErr := d.Nack(false, true); nackErr != nil {
		log.Error("failed to nack message", sl.Err(nackErr))
	}
}
