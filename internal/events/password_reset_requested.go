package events

import "time"

const PasswordResetRequestedTopic = "compras.user.password_reset.v1"

// PasswordResetRequestedEvent is consumed by the mailer, which renders the
// reset link from the token.
type PasswordResetRequestedEvent struct {
	EventType  string    `json:"event_type"`
	Email      string    `json:"email"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	OccurredAt time.Time `json:"occurred_at"`
}
