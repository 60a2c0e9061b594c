package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MessagesAppended = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_appended_total",
		Help: "Messages appended to conversation logs",
	})
	ActiveConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_ws_active_connections",
		Help: "Active websocket connections",
	})
)

func Init() {
	prometheus.MustRegister(MessagesAppended, ActiveConnections)
}
