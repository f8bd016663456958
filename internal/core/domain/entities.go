package domain

import "strings"

// Role represents user role in the system
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// LeaveType is the category of a leave request
type LeaveType string

const (
	LeaveTypeSick      LeaveType = "Sick Leave"
	LeaveTypeCasual    LeaveType = "Casual Leave"
	LeaveTypeEmergency LeaveType = "Emergency Leave"
	LeaveTypeOther     LeaveType = "Other"
)

// LeaveTypes lists every accepted leave type in display order
var LeaveTypes = []LeaveType{LeaveTypeSick, LeaveTypeCasual, LeaveTypeEmergency, LeaveTypeOther}

// ParseLeaveType accepts both the short ("Sick") and long ("Sick Leave") forms.
func ParseLeaveType(s string) (LeaveType, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimSuffix(v, " leave")
	switch v {
	case "sick":
		return LeaveTypeSick, true
	case "casual":
		return LeaveTypeCasual, true
	case "emergency":
		return LeaveTypeEmergency, true
	case "other":
		return LeaveTypeOther, true
	}
	return "", false
}

// LeaveStatus is the lifecycle state of a leave request
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "Pending"
	LeaveStatusApproved LeaveStatus = "Approved"
	LeaveStatusRejected LeaveStatus = "Rejected"
)

// LeaveStatuses lists every status in lifecycle order
var LeaveStatuses = []LeaveStatus{LeaveStatusPending, LeaveStatusApproved, LeaveStatusRejected}

// IsDecision reports whether an admin may set this status
func (s LeaveStatus) IsDecision() bool {
	return s == LeaveStatusApproved || s == LeaveStatusRejected
}
