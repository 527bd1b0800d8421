// Package analytics отправка событий аналитики. Доставка best-effort:
// ошибки не возвращаются вызывающему коду и не повторяются.
package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lyssareba/flika-app-sub001/internal/lib/rabbitmq"
	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
	"github.com/lyssareba/flika-app-sub001/internal/metrics"
)

// EventFeatureGated событие блокировки premium функции.
const EventFeatureGated = "feature_gated"

// Event событие аналитики с плоским набором параметров.
type Event struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	UserID    string            `json:"user_id,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewEvent создаёт событие с новым идентификатором.
func NewEvent(name, userID string, params map[string]string) Event {
	return Event{
		ID:        uuid.NewString(),
		Name:      name,
		UserID:    userID,
		Params:    params,
		Timestamp: time.Now().UTC(),
	}
}

type userIDKey struct{}

// WithUserID кладёт идентификатор пользователя в контекст для событий.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFrom идентификатор пользователя из контекста или пустая строка.
func UserIDFrom(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey{}).(string)
	return userID
}

// Sink приёмник событий. Track не блокирует вызывающего и не возвращает ошибок.
type Sink interface {
	Track(ctx context.Context, event Event)
}

// DefaultBuffer размер очереди RabbitSink по умолчанию.
const DefaultBuffer = 256

// RabbitSink публикует события в exchange аналитики, ключ маршрутизации: имя события.
// Track только ставит событие в очередь; публикует одна фоновая горутина.
// При заполненной очереди событие отбрасывается.
type RabbitSink struct {
	ch     rabbitmq.Channel
	log    *slog.Logger
	events chan Event
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewRabbitSink создаёт RabbitSink и запускает публикатор. buffer <= 0 заменяется на DefaultBuffer.
func NewRabbitSink(ch rabbitmq.Channel, log *slog.Logger, buffer int) *RabbitSink {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	s := &RabbitSink{
		ch:     ch,
		log:    log,
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// Track ставит событие в очередь публикации и сразу возвращается.
func (s *RabbitSink) Track(_ context.Context, event Event) {
	const op = "analytics.RabbitSink.Track"

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		metrics.AnalyticsDropped.Inc()
		return
	}
	select {
	case s.events <- event:
	default:
		metrics.AnalyticsDropped.Inc()
		s.log.Debug("analytics queue is full, event dropped",
			sl.Op(op),
			slog.String("event", event.Name),
		)
	}
}

// Close перестаёт принимать события и ждёт публикации уже поставленных в очередь.
func (s *RabbitSink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	close(s.events)
	s.mu.Unlock()
	<-s.done
}

func (s *RabbitSink) run() {
	const op = "analytics.RabbitSink.run"
	defer close(s.done)

	for event := range s.events {
		if err := rabbitmq.PublishMessage(s.ch, rabbitmq.ExchangeAnalytics, event.Name, event); err != nil {
			metrics.AnalyticsDropped.Inc()
			s.log.Warn("failed to publish analytics event",
				sl.Op(op),
				slog.String("event", event.Name),
				sl.Err(err),
			)
		}
	}
}

// LogSink пишет события в debug лог. Используется, когда брокер не настроен или недоступен.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink создаёт LogSink.
func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

// Track пишет событие в лог.
func (s *LogSink) Track(ctx context.Context, event Event) {
	attrs := []any{slog.String("event", event.Name), slog.String("id", event.ID)}
	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	for k, v := range event.Params {
		attrs = append(attrs, slog.String(k, v))
	}
	s.log.DebugContext(ctx, "analytics event", attrs...)
}
