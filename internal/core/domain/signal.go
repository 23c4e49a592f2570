package domain

import "time"

// Severity of a toast.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// DefaultToastDuration applies to the severity helpers.
const DefaultToastDuration = 3 * time.Second

// Toast is one transient notification.
type Toast struct {
	ID       int
	Message  string
	Severity Severity
	// Duration <= 0 disables automatic removal.
	Duration time.Duration
}

// ConfirmRequest is a yes/no question shown on the confirmation surface.
type ConfirmRequest struct {
	Title   string
	Message string
}
