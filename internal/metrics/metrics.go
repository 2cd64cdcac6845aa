package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// APIRequests counts outbound Cloudflare API calls by operation and outcome.
var APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cloudflare_api_requests_total",
	Help: "Cloudflare API requests by operation and outcome",
}, []string{"operation", "outcome"})

// BotUpdates counts inbound Telegram updates by kind.
var BotUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bot_updates_total",
	Help: "Telegram updates handled by kind",
}, []string{"kind"})
