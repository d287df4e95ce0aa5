// Package metrics defines and registers all custom Prometheus metrics for the
// agency API. It is the single source of truth for metric names, labels, and
// help strings. Metrics register on the default registry at package init
// through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "agency"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts credential submissions.
// Labels:
//   - action: "login" or "register"
//   - result: "success" or "failure"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of login and registration attempts, by result.",
	},
	[]string{"action", "result"},
)

// SessionRejectionsTotal counts bearer tokens refused by the access gate.
// Label:
//   - reason: "missing", "invalid" or "error"
var SessionRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_rejections_total",
		Help:      "Total number of requests rejected by session authentication.",
	},
	[]string{"reason"},
)

// ── Sweep metrics ─────────────────────────────────────────────────────────────

// SessionSweepRunsTotal counts scheduled sweep executions.
// Label:
//   - result: "ok", "skipped" (lock held elsewhere) or "error"
var SessionSweepRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_sweep_runs_total",
		Help:      "Total number of expired-session sweep runs, by result.",
	},
	[]string{"result"},
)

// SessionsSweptTotal counts expired sessions removed by the sweep.
var SessionsSweptTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_swept_total",
		Help:      "Total number of expired sessions deleted by the sweep.",
	},
)

// ── Mail metrics ──────────────────────────────────────────────────────────────

// MailQueueDepth tracks the number of messages waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of messages pending in each mail worker channel.",
	},
	[]string{"worker_id"},
)

// MailMessagesTotal counts mail outcomes.
// Label:
//   - result: "sent", "failed" or "dropped"
var MailMessagesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_messages_total",
		Help:      "Total number of outgoing mail messages, by result.",
	},
	[]string{"result"},
)

// MailDeliveryDuration measures a single Mailer.Send call.
var MailDeliveryDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mail_delivery_duration_seconds",
		Help:      "Duration of a single mail delivery attempt.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Service request metrics ───────────────────────────────────────────────────

// ServiceRequestsCreatedTotal counts new service requests.
// Label:
//   - service_type: the requested service (e.g. "web", "mobile")
var ServiceRequestsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "service_requests_created_total",
		Help:      "Total number of service requests created, by service type.",
	},
	[]string{"service_type"},
)
