package bus

import (
	"github.com/shashiranjanraj/vipani/pkg/logger"
	"github.com/shashiranjanraj/vipani/pkg/metrics"
)

// NopPublisher drops every event. Used when the broker is unreachable at
// boot so the write path keeps serving; drops are visible in metrics and
// logs, and consumers catch up via out-of-band reconciliation.
type NopPublisher struct{}

func (NopPublisher) Publish(topic string, _ interface{}) {
	logger.Warn("bus: no broker connection, event dropped", "topic", topic)
	metrics.PublishFailures.WithLabelValues(topic).Inc()
}
