package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is the top-level isolation boundary (like a Slack workspace).
// Every user, channel, and invitation belongs to exactly one tenant.
// This is what makes the system "multi-tenant": company A never sees
// company B's data.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// User is a person within a tenant.
//
// Why TenantID here?
//   - So every query can be scoped: "give me users WHERE tenant_id = X".
//   - Prevents cross-tenant data leaks at the query level.
//
// PasswordHash never leaves the server — json:"-" keeps it out of every
// response, no matter which handler serializes a user.
type User struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Channel is a named conversation within a tenant (like #general).
//
// Direct-message conversations are NOT rows in this table: their channel
// id is derived deterministically from the two participants (see the chat
// package), so there is nothing to allocate. Only named channels live in
// the directory.
type Channel struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Name      string    `json:"name"`
	IsPrivate bool      `json:"is_private"`
	CreatedAt time.Time `json:"created_at"`
}

// ChannelMember is the join table between channels and users.
//
// Role is a plain string ("member", "admin") — validated at the handler
// layer, not the model layer.
type ChannelMember struct {
	ChannelID uuid.UUID `json:"channel_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
}

// Invitation is a pending offer to join a tenant.
//
// The token is the capability: whoever presents it may create an account
// in the inviting tenant. Delivery of the token (email or otherwise) is
// outside this service — we record and serve invitations, we don't send
// them.
type Invitation struct {
	ID         uuid.UUID  `json:"id"`
	TenantID   uuid.UUID  `json:"tenant_id"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	Token      string     `json:"token"`
	InvitedBy  uuid.UUID  `json:"invited_by"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Expired reports whether the invitation is past its expiry.
func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Accepted reports whether the invitation has already been used.
func (i *Invitation) Accepted() bool {
	return i.AcceptedAt != nil
}
