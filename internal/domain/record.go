package domain

import "time"

// ModuleRecord is one entry in a trainee's module sub-collection (a workout,
// a recovery day, a progress measurement, ...). The payload is free-form;
// the surrounding forms and charts live outside this service.
type ModuleRecord struct {
	TraineeID  string                 `bson:"traineeId" json:"traineeId"`
	Collection string                 `bson:"collection" json:"collection"`
	RecordID   string                 `bson:"recordId" json:"recordId"`
	Date       string                 `bson:"date,omitempty" json:"date,omitempty"` // YYYY-MM-DD as logged by the client
	Data       map[string]interface{} `bson:"data" json:"data"`
	CreatedAt  time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time              `bson:"updatedAt" json:"updatedAt"`
}
