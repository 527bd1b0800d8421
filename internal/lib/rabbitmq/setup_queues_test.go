package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueTopology(t *testing.T) {
	all := append(GetReminderQueues(), GetAnalyticsQueues()...)
	require.NotEmpty(t, all)

	reminders := GetReminderQueues()[0]
	assert.Equal(t, ExchangeReminders, reminders.Exchange)
	assert.Equal(t, QueueDateReminders, reminders.QueueName)
	assert.Equal(t, RoutingKeyDateReminder, reminders.RoutingKey)

	analytics := GetAnalyticsQueues()[0]
	assert.Equal(t, "topic", analytics.ExchangeType)

	// Проверка уникальности QueueName
	seen := map[string]bool{}
	for _, q := range all {
		assert.Falsef(t, seen[q.QueueName], "duplicate queue name: %s", q.QueueName)
		seen[q.QueueName] = true
		assert.NotEmpty(t, q.Exchange)
		assert.NotEmpty(t, q.ExchangeType)
	}
}
