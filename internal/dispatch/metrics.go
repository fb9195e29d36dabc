package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// メトリクスのreasonラベル値。
const (
	reasonSent                 = "sent"
	reasonInvalidEvent         = "invalid_event"
	reasonConversationNotFound = "conversation_not_found"
	reasonStoreError           = "store_error"
	reasonPreferenceDisabled   = "preference_disabled"
	reasonNoTokens             = "no_tokens"
	reasonNoValidTokens        = "no_valid_tokens"
	reasonGatewayRejected      = "gateway_rejected"
	reasonGatewayError         = "gateway_error"
)

var (
	dispatchOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatnotify",
		Name:      "dispatch_outcomes_total",
		Help:      "Number of dispatches by terminal outcome.",
	}, []string{"outcome", "reason"})

	messagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chatnotify",
		Name:      "push_messages_sent_total",
		Help:      "Number of push messages accepted by the gateway.",
	})

	gatewayDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "chatnotify",
		Name:      "gateway_request_duration_seconds",
		Help:      "Duration of push gateway batch requests.",
		Buckets:   prometheus.DefBuckets,
	})
)

// noOpMetricReason はNoOpの理由をメトリクスのラベル値に変換する。
func noOpMetricReason(reason string) string {
	switch reason {
	case ReasonNotificationsDisabled:
		return reasonPreferenceDisabled
	case ReasonNoValidPushTokens:
		return reasonNoValidTokens
	default:
		return reasonNoTokens
	}
}

// observe は終了状態をカウンタに記録する。
func observe(outcome, reason string) {
	dispatchOutcomes.WithLabelValues(outcome, reason).Inc()
}
