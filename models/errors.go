package models

import "fmt"

// IllegalTransitionError reports a lifecycle event fired from a state that
// does not allow it.
type IllegalTransitionError struct {
	From  ArticleStatus
	Event string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: cannot %s an article in status %q", e.Event, e.From)
}

// PermissionDeniedError reports a failed capability check.
type PermissionDeniedError struct {
	Capability string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: requires %s", e.Capability)
}

// ValidationError reports missing or malformed caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// ConflictError reports a concurrent transition detected by the optimistic
// status precondition.
type ConflictError struct {
	ArticleID uint
	Expected  ArticleStatus
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: article %d is no longer in status %q", e.ArticleID, e.Expected)
}

// DeliveryError is a per-recipient transport failure. It is recorded in the
// ledger and tallied, never propagated out of a fan-out.
type DeliveryError struct {
	Channel NotificationChannel
	UserID  uint
	Cause   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed on %s to user %d: %v", e.Channel, e.UserID, e.Cause)
}

func (e *DeliveryError) Unwrap() error { return e.Cause }
