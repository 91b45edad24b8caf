package models

import "time"

// SessionRecord backs an issued session token until sign-out
type SessionRecord struct {
	ID          string     `json:"id,omitempty"`
	UID         string     `json:"uid"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	Role        Role       `json:"role"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	RevokedAt   *time.Time `json:"revokedAt,omitempty"`
}
