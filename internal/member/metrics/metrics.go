// Package metrics provides observability for the member module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks member registration and authentication outcomes plus
// critical path durations.
type Metrics struct {
	MembersRegistered      prometheus.Counter
	LoginAttempts          *prometheus.CounterVec
	PasswordChanges        *prometheus.CounterVec
	RegisterDuration       prometheus.Histogram
	AuthenticateDuration   prometheus.Histogram
	ChangePasswordDuration prometheus.Histogram
}

// New creates a Metrics instance with all member module metrics registered.
func New() *Metrics {
	// Authentication includes a bcrypt verification, so buckets reach
	// further right than the store-bound paths.
	return &Metrics{
		MembersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "memberd_members_registered_total",
			Help: "Total number of member accounts created",
		}),
		LoginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "memberd_login_attempts_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		PasswordChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "memberd_password_changes_total",
			Help: "Password change attempts by outcome",
		}, []string{"outcome"}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "memberd_register_duration_seconds",
			Help:    "Duration of Register operations",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		AuthenticateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "memberd_authenticate_duration_seconds",
			Help:    "Duration of Authenticate operations (login critical path)",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		ChangePasswordDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "memberd_change_password_duration_seconds",
			Help:    "Duration of ChangePassword operations",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementRegistered records a successful member registration.
func (m *Metrics) IncrementRegistered() {
	m.MembersRegistered.Inc()
}

// IncrementLogin records a login attempt outcome ("success" or "failure").
func (m *Metrics) IncrementLogin(outcome string) {
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

// IncrementPasswordChange records a password change outcome.
func (m *Metrics) IncrementPasswordChange(outcome string) {
	m.PasswordChanges.WithLabelValues(outcome).Inc()
}

// ObserveRegister records the duration of a Register operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRegister(start time.Time) {
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}

// ObserveAuthenticate records the duration of an Authenticate operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveAuthenticate(start time.Time) {
	m.AuthenticateDuration.Observe(time.Since(start).Seconds())
}

// ObserveChangePassword records the duration of a ChangePassword operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveChangePassword(start time.Time) {
	m.ChangePasswordDuration.Observe(time.Since(start).Seconds())
}
