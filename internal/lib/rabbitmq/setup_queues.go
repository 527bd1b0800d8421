package rabbitmq

// Обменники приложения.
const (
	ExchangeAnalytics = "analytics"
	ExchangeReminders = "reminders"
)

// Очереди и ключи маршрутизации.
const (
	QueueDateReminders     = "reminders.date"
	RoutingKeyDateReminder = "date_reminder"
	QueueAnalyticsEvents   = "analytics.events"
	RoutingKeyAnalyticsAll = "#"
)

// QueueConfig очередь, привязанная к обменнику по ключу.
type QueueConfig struct {
	Exchange     string
	ExchangeType string
	QueueName    string
	RoutingKey   string
}

// GetReminderQueues очереди планировщика и отправителя напоминаний.
func GetReminderQueues() []QueueConfig {
	return []QueueConfig{
		{Exchange: ExchangeReminders, ExchangeType: "direct", QueueName: QueueDateReminders, RoutingKey: RoutingKeyDateReminder},
	}
}

// GetAnalyticsQueues очереди событий аналитики. Имя события: ключ маршрутизации,
// поэтому обменник topic и очередь забирает все события.
func GetAnalyticsQueues() []QueueConfig {
	return []QueueConfig{
		{Exchange: ExchangeAnalytics, ExchangeType: "topic", QueueName: QueueAnalyticsEvents, RoutingKey: RoutingKeyAnalyticsAll},
	}
}
