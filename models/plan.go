package models

// DeliveryMode says when a planned notification should go out.
type DeliveryMode string

const (
	ModeImmediate   DeliveryMode = "immediate"
	ModeDigestDaily DeliveryMode = "digest-daily"
	ModeDigestWeek  DeliveryMode = "digest-weekly"
	ModeSuppressed  DeliveryMode = "suppressed"
)

// PlanEntry is one (user, channel, mode) decision produced by the
// notification engine for a single article.
type PlanEntry struct {
	User    *User
	Channel NotificationChannel
	Mode    DeliveryMode
}
