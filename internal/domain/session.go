package domain

import (
	"fmt"

	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionAudience restricts who a session offer is aimed at.
type SessionAudience string

const (
	AudienceTrainee      SessionAudience = "trainee"
	AudienceTrainer      SessionAudience = "trainer"
	AudienceNutritionist SessionAudience = "nutritionist"
	AudienceCounsellor   SessionAudience = "counsellor"
	AudienceAll          SessionAudience = "all"
)

// SessionOffer is a scheduled session posted by a professional. Any
// authenticated identity may read offers; only the creator may update one.
type SessionOffer struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	Audience      SessionAudience    `bson:"audience" json:"audience"`
	ScheduledAt   time.Time          `bson:"scheduledAt" json:"scheduledAt"`
	CreatedByUID  string             `bson:"createdByUid" json:"createdByUid"`
	CreatedByRole Role               `bson:"createdByRole" json:"createdByRole"`
	CreatedByName string             `bson:"createdByName" json:"createdByName"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Enrollment records a trainee signing up for a session offer. Its ID is
// deterministic (sessionId_traineeId), which doubles as an idempotency key
// and encodes ownership for authorization checks.
type Enrollment struct {
	ID         string    `bson:"_id" json:"id"`
	SessionID  string    `bson:"sessionId" json:"sessionId"`
	TraineeID  string    `bson:"traineeId" json:"traineeId"`
	EnrolledAt time.Time `bson:"enrolledAt" json:"enrolledAt"`
}

// EnrollmentID builds the deterministic enrollment document ID.
func EnrollmentID(sessionID, traineeID string) string {
	return fmt.Sprintf("%s_%s", sessionID, traineeID)
}
