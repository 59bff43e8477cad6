// Package gateway wraps the outbound messaging transports. The services only
// see the two send interfaces; SMTP sockets and FCM payloads live here.
package gateway

import "context"

type Mailer interface {
	SendEmail(ctx context.Context, to, subject, bodyText, bodyHTML string) error
}

type Pusher interface {
	SendPush(ctx context.Context, deviceToken, title, body string, data map[string]string) error
}
