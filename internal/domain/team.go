package domain

import "time"

// TeamMemberStatus type for team membership state
type TeamMemberStatus string

const (
	TeamMemberActive  TeamMemberStatus = "active"
	TeamMemberRevoked TeamMemberStatus = "revoked"
)

// TeamMember records a professional on a trainee's care team. It is created
// atomically with the matching Grant on invite acceptance and hard-deleted
// (together with the Grant) on revoke.
type TeamMember struct {
	TraineeID   string           `bson:"traineeId" json:"traineeId"`
	UID         string           `bson:"uid" json:"uid"`
	Role        Role             `bson:"role" json:"role"`
	DisplayName string           `bson:"displayName" json:"displayName"`
	Email       string           `bson:"email" json:"email"`
	Status      TeamMemberStatus `bson:"status" json:"status"`
	InviteCode  string           `bson:"inviteCode,omitempty" json:"inviteCode,omitempty"`
	InvitedAt   time.Time        `bson:"invitedAt" json:"invitedAt"`
	AcceptedAt  *time.Time       `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	UpdatedAt   time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// Grant is the authoritative per-(trainee, professional) permission record.
// Access to module X requires active AND modules[X]; either flag alone
// blocks access.
type Grant struct {
	TraineeID  string            `bson:"traineeId" json:"traineeId"`
	MemberUID  string            `bson:"memberUid" json:"memberUid"`
	Role       Role              `bson:"role" json:"role"`
	Active     bool              `bson:"active" json:"active"`
	Modules    ModulePermissions `bson:"modules" json:"modules"`
	InviteCode string            `bson:"inviteCode,omitempty" json:"inviteCode,omitempty"`
	CreatedAt  time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// Allows reports whether this grant currently exposes the given module.
func (g *Grant) Allows(module ModuleKey) bool {
	return g.Active && g.Modules[module]
}

// ClientGrant is the professional-side view of one grant, reconstructed by
// the roster reverse lookup.
type ClientGrant struct {
	TraineeID string            `json:"traineeId"`
	Role      Role              `json:"role"`
	Active    bool              `json:"active"`
	Modules   ModulePermissions `json:"modules"`
}

// RosterSummary aggregates a professional's clients: total active grants and
// active counts broken down per module.
type RosterSummary struct {
	ActiveClients int               `json:"activeClients"`
	ModuleClients map[ModuleKey]int `json:"moduleClients"`
}

// SummarizeRoster computes the roster summary over the given client grants.
// Inactive grants contribute to no count.
func SummarizeRoster(clients []ClientGrant) RosterSummary {
	summary := RosterSummary{ModuleClients: make(map[ModuleKey]int, len(AllModuleKeys))}
	for _, key := range AllModuleKeys {
		summary.ModuleClients[key] = 0
	}
	for _, client := range clients {
		if !client.Active {
			continue
		}
		summary.ActiveClients++
		for _, key := range AllModuleKeys {
			if client.Modules[key] {
				summary.ModuleClients[key]++
			}
		}
	}
	return summary
}
