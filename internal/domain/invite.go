package domain

import "time"

// InviteStatus type for the invite lifecycle
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusRevoked  InviteStatus = "revoked"
)

// InviteTTL is how long an invite stays acceptable after creation. Expiry is
// passive: it is checked at acceptance time, there is no background sweep.
const InviteTTL = 7 * 24 * time.Hour

// Invite is a time-boxed, role-scoped, single-use token a trainee issues to
// onboard a professional. The pending -> accepted transition is one-way.
type Invite struct {
	Code            string       `bson:"code" json:"code"`
	TraineeID       string       `bson:"traineeId" json:"traineeId"`
	Role            Role         `bson:"role" json:"role"`
	CreatedBy       string       `bson:"createdBy" json:"createdBy"`
	Status          InviteStatus `bson:"status" json:"status"`
	TargetEmail     string       `bson:"targetEmail,omitempty" json:"targetEmail,omitempty"` // Stored lowercased; empty means any email may accept
	CreatedAt       time.Time    `bson:"createdAt" json:"createdAt"`
	ExpiresAt       time.Time    `bson:"expiresAt" json:"expiresAt"`
	AcceptedAt      *time.Time   `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	AcceptedByUID   string       `bson:"acceptedByUid,omitempty" json:"acceptedByUid,omitempty"`
	AcceptedByEmail string       `bson:"acceptedByEmail,omitempty" json:"acceptedByEmail,omitempty"`
	UpdatedAt       time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// Expired reports whether the invite can no longer be accepted because its
// expiry has passed, regardless of status.
func (i *Invite) Expired(now time.Time) bool {
	return !i.ExpiresAt.After(now)
}
