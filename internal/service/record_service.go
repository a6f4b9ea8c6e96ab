package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"cleoaura/careteam-app/internal/access"
	"cleoaura/careteam-app/internal/domain"
	"cleoaura/careteam-app/internal/repository"
	"cleoaura/careteam-app/internal/storage"

	"github.com/google/uuid"
)

// --- Error Definitions ---
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrUploadURLError = errors.New("failed to generate upload URL")
)

// UploadURLResponse structure for returning URL and object key
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// --- Service Interface ---
type RecordService interface {
	PutRecord(ctx context.Context, requester access.Identity, traineeID string, collection access.Collection, record *domain.ModuleRecord) error
	GetRecord(ctx context.Context, requester access.Identity, traineeID string, collection access.Collection, recordID string) (*domain.ModuleRecord, error)
	ListRecords(ctx context.Context, requester access.Identity, traineeID string, collection access.Collection) ([]domain.ModuleRecord, error)
	DeleteRecord(ctx context.Context, requester access.Identity, traineeID string, collection access.Collection, recordID string) error

	// Progress photo attachments, stored in S3-compatible object storage.
	RequestProgressPhotoUploadURL(ctx context.Context, requester access.Identity, traineeID, contentType string) (*UploadURLResponse, error)
	GetProgressPhotoURL(ctx context.Context, requester access.Identity, traineeID, objectKey string) (string, error)
}

// --- Service Implementation ---

type recordService struct {
	recordRepo  repository.RecordRepository
	authorizer  *access.Authorizer
	fileStorage storage.FileStorage
}

// NewRecordService creates a new instance of recordService.
func NewRecordService(recordRepo repository.RecordRepository, authorizer *access.Authorizer, fileStorage storage.FileStorage) RecordService {
	return &recordService{
		recordRepo:  recordRepo,
		authorizer:  authorizer,
		fileStorage: fileStorage,
	}
}

// PutRecord writes one entry of a trainee sub-collection. Writes are owner
// only; the route middleware enforces the same rule, this check keeps the
// service safe when called from elsewhere.
func (s *recordService) PutRecord(ctx context.Context, requester access.Identity, traineeID string, collection access.Collection, record *domain.ModuleRecord) error {
	if err := s.authorizer.CanAccess(ctx, requester, traineeID, collection, access.OpWrite); err != nil {
		return err
	}
	record.TraineeID = traineeID
	record.Collection = string(collection)
	if record.RecordID == "" {
		return fmt.Errorf("%w: recordId is required", ErrValidation)
	}
	return s.recordRepo.Put(ctx, record)
}

// GetRecord reads one entry, gated by the module grant for non-owners.
func (s *recordService) GetRecord(ctx context.Context, requester access.Identity, traineeID string, collection access.Collection, recordID string) (*domain.ModuleRecord, error) {
	if err := s.authorizer.CanAccess(ctx, requester, traineeID, collection, access.OpRead); err != nil {
		return nil, err
	}

	record, err := s.recordRepo.Get(ctx, traineeID, string(collection), recordID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return record, nil
}

// ListRecords reads a whole sub-collection, gated like GetRecord.
func (s *recordService) ListRecords(ctx context.Context, requester access.Identity, traineeID string, collection access.Collection) ([]domain.ModuleRecord, error) {
	if err := s.authorizer.CanAccess(ctx, requester, traineeID, collection, access.OpRead); err != nil {
		return nil, err
	}
	return s.recordRepo.List(ctx, traineeID, string(collection))
}

// DeleteRecord removes one entry; owner only.
func (s *recordService) DeleteRecord(ctx context.Context, requester access.Identity, traineeID string, collection access.Collection, recordID string) error {
	if err := s.authorizer.CanAccess(ctx, requester, traineeID, collection, access.OpWrite); err != nil {
		return err
	}
	return s.recordRepo.Delete(ctx, traineeID, string(collection), recordID)
}

// RequestProgressPhotoUploadURL returns a pre-signed PUT URL for attaching a
// photo to the trainee's progress measurements. Writing is owner only.
func (s *recordService) RequestProgressPhotoUploadURL(ctx context.Context, requester access.Identity, traineeID, contentType string) (*UploadURLResponse, error) {
	if err := s.authorizer.CanAccess(ctx, requester, traineeID, access.CollectionProgressMeasurements, access.OpWrite); err != nil {
		return nil, err
	}
	if contentType == "" || !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, fmt.Errorf("%w: invalid or missing image content type", ErrValidation)
	}

	objectKey := path.Join("trainees", traineeID, "progress", uuid.NewString())
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}

	return &UploadURLResponse{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
	}, nil
}

// GetProgressPhotoURL returns a pre-signed GET URL for a progress photo.
// Reads go through the progress module grant like any other progress data.
func (s *recordService) GetProgressPhotoURL(ctx context.Context, requester access.Identity, traineeID, objectKey string) (string, error) {
	if err := s.authorizer.CanAccess(ctx, requester, traineeID, access.CollectionProgressMeasurements, access.OpRead); err != nil {
		return "", err
	}

	// Keys are namespaced per trainee; reject anything outside this
	// trainee's progress prefix so a granted professional cannot fish for
	// other objects.
	prefix := path.Join("trainees", traineeID, "progress") + "/"
	if !strings.HasPrefix(objectKey, prefix) {
		return "", fmt.Errorf("%w: object key outside trainee namespace", ErrValidation)
	}

	downloadURL, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, objectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrUploadURLError
	}
	return downloadURL, nil
}
