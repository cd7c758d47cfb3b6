// Package metrics defines the custom Prometheus metrics of the task API's
// authentication layer. It is the single source of truth for metric names,
// labels, and help strings. HTTP request metrics come from echoprometheus.
//
// All metrics register with the default Prometheus registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskapi"

// ── Authentication metrics ────────────────────────────────────────────────────

// AuthAttemptsTotal counts authentication gate decisions.
// Labels:
//   - mode: "required" or "optional"
//   - outcome: "ok", "absent", "expired", "invalid", "inactive" or "transient"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication decisions, by gate mode and outcome.",
	},
	[]string{"mode", "outcome"},
)

// AuthzDeniedTotal counts requests refused by a role check.
// Label:
//   - check: the rule that refused, e.g. "exact:admin" or "min:moderator"
var AuthzDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denied_total",
		Help:      "Total number of requests refused by an authorization check.",
	},
	[]string{"check"},
)

// CookiesClearedTotal counts credential cookies evicted after a failed
// authentication.
// Label:
//   - reason: "expired", "invalid" or "inactive"
var CookiesClearedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_cookies_cleared_total",
		Help:      "Total number of credential cookies cleared after an authentication failure.",
	},
	[]string{"reason"},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokensIssuedTotal counts signed tokens.
// Label:
//   - kind: "login", "remember", "register" or "refresh"
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of tokens issued, by kind.",
	},
	[]string{"kind"},
)
