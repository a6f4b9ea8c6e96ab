package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cleoaura/careteam-app/internal/domain"
	"cleoaura/careteam-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes mirroring the Mongo implementations' contracts,
// including conditional updates and field-scoped module writes.

type fakeInviteRepo struct {
	invites map[string]*domain.Invite // key traineeID|code
	err     error                     // if set, all operations return this error
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{invites: make(map[string]*domain.Invite)}
}

func inviteKey(traineeID, code string) string {
	return traineeID + "|" + code
}

func (f *fakeInviteRepo) Create(ctx context.Context, invite *domain.Invite) error {
	if f.err != nil {
		return f.err
	}
	key := inviteKey(invite.TraineeID, invite.Code)
	if _, exists := f.invites[key]; exists {
		return repository.ErrConflict
	}
	stored := *invite
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	f.invites[key] = &stored
	return nil
}

func (f *fakeInviteRepo) Get(ctx context.Context, traineeID, code string) (*domain.Invite, error) {
	if f.err != nil {
		return nil, f.err
	}
	invite, ok := f.invites[inviteKey(traineeID, code)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *invite
	return &copied, nil
}

func (f *fakeInviteRepo) ListByTrainee(ctx context.Context, traineeID string) ([]domain.Invite, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Invite
	for _, invite := range f.invites {
		if invite.TraineeID == traineeID {
			out = append(out, *invite)
		}
	}
	return out, nil
}

func (f *fakeInviteRepo) ListByTargetEmail(ctx context.Context, email string) ([]domain.Invite, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Invite
	for _, invite := range f.invites {
		if invite.TargetEmail == strings.ToLower(email) && invite.Status == domain.InviteStatusPending {
			out = append(out, *invite)
		}
	}
	return out, nil
}

func (f *fakeInviteRepo) MarkAccepted(ctx context.Context, traineeID, code, byUID, byEmail string) error {
	if f.err != nil {
		return f.err
	}
	invite, ok := f.invites[inviteKey(traineeID, code)]
	if !ok || invite.Status != domain.InviteStatusPending {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	invite.Status = domain.InviteStatusAccepted
	invite.AcceptedAt = &now
	invite.AcceptedByUID = byUID
	invite.AcceptedByEmail = byEmail
	return nil
}

func (f *fakeInviteRepo) MarkRevoked(ctx context.Context, traineeID, code string) error {
	if f.err != nil {
		return f.err
	}
	invite, ok := f.invites[inviteKey(traineeID, code)]
	if !ok || invite.Status != domain.InviteStatusPending {
		return repository.ErrNotFound
	}
	invite.Status = domain.InviteStatusRevoked
	return nil
}

type fakeMemberRepo struct {
	members map[string]*domain.TeamMember // key traineeID|uid
	err     error
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[string]*domain.TeamMember)}
}

func memberKey(traineeID, uid string) string {
	return traineeID + "|" + uid
}

func (f *fakeMemberRepo) Upsert(ctx context.Context, member *domain.TeamMember) error {
	if f.err != nil {
		return f.err
	}
	stored := *member
	f.members[memberKey(member.TraineeID, member.UID)] = &stored
	return nil
}

func (f *fakeMemberRepo) Get(ctx context.Context, traineeID, uid string) (*domain.TeamMember, error) {
	if f.err != nil {
		return nil, f.err
	}
	member, ok := f.members[memberKey(traineeID, uid)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *member
	return &copied, nil
}

func (f *fakeMemberRepo) ListByTrainee(ctx context.Context, traineeID string) ([]domain.TeamMember, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.TeamMember
	for _, member := range f.members {
		if member.TraineeID == traineeID {
			out = append(out, *member)
		}
	}
	return out, nil
}

func (f *fakeMemberRepo) Delete(ctx context.Context, traineeID, uid string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.members, memberKey(traineeID, uid))
	return nil
}

type fakeGrantRepo struct {
	grants map[string]*domain.Grant // key traineeID|memberUID
	err    error
}

func newFakeGrantRepo() *fakeGrantRepo {
	return &fakeGrantRepo{grants: make(map[string]*domain.Grant)}
}

func (f *fakeGrantRepo) Upsert(ctx context.Context, grant *domain.Grant) error {
	if f.err != nil {
		return f.err
	}
	stored := *grant
	stored.Modules = grant.Modules.Clone()
	f.grants[memberKey(grant.TraineeID, grant.MemberUID)] = &stored
	return nil
}

func (f *fakeGrantRepo) Get(ctx context.Context, traineeID, memberUID string) (*domain.Grant, error) {
	if f.err != nil {
		return nil, f.err
	}
	grant, ok := f.grants[memberKey(traineeID, memberUID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *grant
	copied.Modules = grant.Modules.Clone()
	return &copied, nil
}

func (f *fakeGrantRepo) ListByTrainee(ctx context.Context, traineeID string) ([]domain.Grant, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Grant
	for _, grant := range f.grants {
		if grant.TraineeID == traineeID {
			copied := *grant
			copied.Modules = grant.Modules.Clone()
			out = append(out, copied)
		}
	}
	return out, nil
}

func (f *fakeGrantRepo) ListByMember(ctx context.Context, memberUID string, limit int64) ([]domain.Grant, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Grant
	for _, grant := range f.grants {
		if grant.MemberUID == memberUID && int64(len(out)) < limit {
			copied := *grant
			copied.Modules = grant.Modules.Clone()
			out = append(out, copied)
		}
	}
	return out, nil
}

func (f *fakeGrantRepo) SetModule(ctx context.Context, traineeID, memberUID string, module domain.ModuleKey, enabled bool) error {
	if f.err != nil {
		return f.err
	}
	grant, ok := f.grants[memberKey(traineeID, memberUID)]
	if !ok {
		return repository.ErrNotFound
	}
	if grant.Modules == nil {
		grant.Modules = domain.NoModules()
	}
	grant.Modules[module] = enabled
	grant.Active = true
	return nil
}

func (f *fakeGrantRepo) SetActive(ctx context.Context, traineeID, memberUID string, active bool) error {
	if f.err != nil {
		return f.err
	}
	grant, ok := f.grants[memberKey(traineeID, memberUID)]
	if !ok {
		return repository.ErrNotFound
	}
	grant.Active = active
	return nil
}

func (f *fakeGrantRepo) Delete(ctx context.Context, traineeID, memberUID string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.grants, memberKey(traineeID, memberUID))
	return nil
}

type fakeRecordRepo struct {
	records map[string]*domain.ModuleRecord // key traineeID|collection|recordID
	err     error
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[string]*domain.ModuleRecord)}
}

func recordKey(traineeID, collection, recordID string) string {
	return traineeID + "|" + collection + "|" + recordID
}

func (f *fakeRecordRepo) Put(ctx context.Context, record *domain.ModuleRecord) error {
	if f.err != nil {
		return f.err
	}
	stored := *record
	f.records[recordKey(record.TraineeID, record.Collection, record.RecordID)] = &stored
	return nil
}

func (f *fakeRecordRepo) Get(ctx context.Context, traineeID, collection, recordID string) (*domain.ModuleRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	record, ok := f.records[recordKey(traineeID, collection, recordID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (f *fakeRecordRepo) List(ctx context.Context, traineeID, collection string) ([]domain.ModuleRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.ModuleRecord
	for _, record := range f.records {
		if record.TraineeID == traineeID && record.Collection == collection {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) Delete(ctx context.Context, traineeID, collection, recordID string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.records, recordKey(traineeID, collection, recordID))
	return nil
}

type fakeSessionRepo struct {
	offers map[primitive.ObjectID]*domain.SessionOffer
	err    error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{offers: make(map[primitive.ObjectID]*domain.SessionOffer)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, offer *domain.SessionOffer) (primitive.ObjectID, error) {
	if f.err != nil {
		return primitive.NilObjectID, f.err
	}
	id := primitive.NewObjectID()
	stored := *offer
	stored.ID = id
	stored.CreatedAt = time.Now().UTC()
	f.offers[id] = &stored
	return id, nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionOffer, error) {
	if f.err != nil {
		return nil, f.err
	}
	offer, ok := f.offers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *offer
	return &copied, nil
}

func (f *fakeSessionRepo) List(ctx context.Context) ([]domain.SessionOffer, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.SessionOffer
	for _, offer := range f.offers {
		out = append(out, *offer)
	}
	return out, nil
}

func (f *fakeSessionRepo) Update(ctx context.Context, offer *domain.SessionOffer) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.offers[offer.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *offer
	stored.UpdatedAt = time.Now().UTC()
	f.offers[offer.ID] = &stored
	return nil
}

type fakeEnrollmentRepo struct {
	enrollments map[string]*domain.Enrollment
	err         error
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{enrollments: make(map[string]*domain.Enrollment)}
}

func (f *fakeEnrollmentRepo) Upsert(ctx context.Context, enrollment *domain.Enrollment) error {
	if f.err != nil {
		return f.err
	}
	id := domain.EnrollmentID(enrollment.SessionID, enrollment.TraineeID)
	if existing, ok := f.enrollments[id]; ok {
		*enrollment = *existing
		return nil
	}
	stored := *enrollment
	stored.ID = id
	stored.EnrolledAt = time.Now().UTC()
	f.enrollments[id] = &stored
	*enrollment = stored
	return nil
}

func (f *fakeEnrollmentRepo) Get(ctx context.Context, id string) (*domain.Enrollment, error) {
	if f.err != nil {
		return nil, f.err
	}
	enrollment, ok := f.enrollments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *enrollment
	return &copied, nil
}

func (f *fakeEnrollmentRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.Enrollment, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Enrollment
	for _, enrollment := range f.enrollments {
		if enrollment.SessionID == sessionID {
			out = append(out, *enrollment)
		}
	}
	return out, nil
}

func (f *fakeEnrollmentRepo) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.enrollments, id)
	return nil
}

type fakeUserRepo struct {
	users map[string]*domain.User // key email
	err   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if f.err != nil {
		return primitive.NilObjectID, f.err
	}
	if _, exists := f.users[user.Email]; exists {
		return primitive.NilObjectID, repository.ErrConflict
	}
	id := primitive.NewObjectID()
	stored := *user
	stored.ID = id
	f.users[user.Email] = &stored
	return id, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, user := range f.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeTraineeRepo struct {
	trainees map[string]*domain.Trainee
	err      error
}

func newFakeTraineeRepo() *fakeTraineeRepo {
	return &fakeTraineeRepo{trainees: make(map[string]*domain.Trainee)}
}

func (f *fakeTraineeRepo) Create(ctx context.Context, trainee *domain.Trainee) error {
	if f.err != nil {
		return f.err
	}
	if _, exists := f.trainees[trainee.UID]; exists {
		return repository.ErrConflict
	}
	stored := *trainee
	f.trainees[trainee.UID] = &stored
	return nil
}

func (f *fakeTraineeRepo) GetByUID(ctx context.Context, uid string) (*domain.Trainee, error) {
	if f.err != nil {
		return nil, f.err
	}
	trainee, ok := f.trainees[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *trainee
	return &copied, nil
}

// fakeFileStorage captures presign calls without touching S3.
type fakeFileStorage struct {
	uploads   []string
	downloads []string
	err       error
}

func (f *fakeFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads = append(f.uploads, objectKey)
	return fmt.Sprintf("https://example.test/upload/%s", objectKey), nil
}

func (f *fakeFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.downloads = append(f.downloads, objectKey)
	return fmt.Sprintf("https://example.test/download/%s", objectKey), nil
}

func (f *fakeFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	return f.err
}
