package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleTrainee      Role = "trainee"
	RoleTrainer      Role = "trainer"
	RoleNutritionist Role = "nutritionist"
	RoleCounsellor   Role = "counsellor"
)

// ProfessionalRoles lists the roles that can be invited onto a care team.
var ProfessionalRoles = []Role{RoleTrainer, RoleNutritionist, RoleCounsellor}

// User represents a user in the system (a Trainee or a Professional).
// The role is fixed at registration and is not changed afterwards.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsTrainee() bool {
	return u.Role == RoleTrainee
}

func (u *User) IsProfessional() bool {
	return IsProfessionalRole(u.Role)
}

// IsProfessionalRole reports whether the given role is one of the
// invitable professional roles.
func IsProfessionalRole(role Role) bool {
	switch role {
	case RoleTrainer, RoleNutritionist, RoleCounsellor:
		return true
	}
	return false
}

// Trainee is the per-trainee root document. The owner is the only writer
// of trainee-owned documents by default; professionals gain read access
// through Grants.
type Trainee struct {
	UID       string    `bson:"_id" json:"uid"` // Same as the owning user's ID hex
	OwnerID   string    `bson:"ownerId" json:"ownerId"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
