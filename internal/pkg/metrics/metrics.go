package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LeaveApplications counts created leave requests by type
	LeaveApplications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hostel_leave",
		Name:      "leave_applications_total",
		Help:      "Leave requests created, by leave type.",
	}, []string{"leave_type"})

	// LeaveStatusChanges counts admin decisions by resulting status
	LeaveStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hostel_leave",
		Name:      "leave_status_changes_total",
		Help:      "Leave status updates applied by admins, by status.",
	}, []string{"status"})

	// Logins counts login attempts by method and outcome
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hostel_leave",
		Name:      "logins_total",
		Help:      "Login attempts, by method and result.",
	}, []string{"method", "result"})

	// PasswordResets counts reset flow events (requested, email_failed, completed, rejected)
	PasswordResets = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hostel_leave",
		Name:      "password_resets_total",
		Help:      "Password reset flow events.",
	}, []string{"event"})

	// ExpiredResetTokensPurged counts reset tokens cleared by the scheduler
	ExpiredResetTokensPurged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hostel_leave",
		Name:      "expired_reset_tokens_purged_total",
		Help:      "Expired password reset tokens cleared by the scheduler.",
	})
)
