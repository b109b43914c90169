package auth

import "time"

// VerificationToken backs the password reset flow. Identifier is the user's
// email; at most one live token exists per identifier because a new request
// deletes the previous one.
type VerificationToken struct {
	Identifier string    `gorm:"type:varchar(255);primaryKey"`
	Token      string    `gorm:"type:varchar(64);primaryKey;uniqueIndex:uq_verification_tokens_token"`
	Expires    time.Time `gorm:"type:timestamptz;not null"`
}
