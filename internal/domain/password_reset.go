package domain

import (
	"time"

	"github.com/google/uuid"
)

// PasswordReset records one outstanding reset link. Only the hash of the
// link token is stored; the plaintext token leaves the process exactly once,
// inside the email.
type PasswordReset struct {
	ID        int64     `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	TokenHash []byte    `db:"token_hash" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	Consumed  bool      `db:"consumed" json:"consumed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (r *PasswordReset) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
