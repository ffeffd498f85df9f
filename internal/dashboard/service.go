// internal/dashboard/service.go

// Package dashboard serves a traveler's view of their submitted applications:
// the pre-departure task checklist and document uploads.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/mitchellh/mapstructure"

	"voluntra-backend/internal/common/database"
	stderrors "voluntra-backend/internal/common/errors"
	"voluntra-backend/internal/common/logger"
	"voluntra-backend/internal/common/metrics"
	"voluntra-backend/internal/models"
)

const applicationsCollection = "applications"

// Pre-departure tasks every application carries, in display order.
var taskKeys = []string{"payment", "passport", "flight", "insurance"}

var taskTitles = map[string]string{
	"payment":   "Pay setup fee",
	"passport":  "Upload passport copy",
	"flight":    "Upload flight details",
	"insurance": "Upload travel insurance",
}

// Task is one checklist entry on an application.
type Task struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Complete bool   `json:"complete"`
}

// DocumentStore is the slice of the document store the dashboard needs.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (*database.Document, error)
	Query(ctx context.Context, collection string, filters map[string]interface{}) ([]database.Document, error)
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
}

// BlobUploader stores an uploaded file and returns its public URL.
type BlobUploader interface {
	Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error)
}

type Service struct {
	store    DocumentStore
	uploader BlobUploader
	logger   logger.Logger
}

func NewService(store DocumentStore, uploader BlobUploader, log logger.Logger) *Service {
	return &Service{
		store:    store,
		uploader: uploader,
		logger:   log.WithFields(map[string]interface{}{"component": "dashboard"}),
	}
}

// ApplicationsForUser lists a traveler's applications, newest first.
func (s *Service) ApplicationsForUser(ctx context.Context, userID string) ([]models.ApplicationRecord, error) {
	if userID == "" {
		return nil, stderrors.NewUnauthenticatedError("dashboard requires a signed-in account")
	}

	docs, err := s.store.Query(ctx, applicationsCollection, map[string]interface{}{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("listing applications for %s: %w", userID, err)
	}

	records := make([]models.ApplicationRecord, 0, len(docs))
	for _, doc := range docs {
		record, err := decodeApplication(doc)
		if err != nil {
			s.logger.Warn("skipping malformed application document", map[string]interface{}{
				"documentId": doc.ID,
				"error":      err,
			})
			continue
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// Application fetches one application, enforcing that it belongs to userID.
func (s *Service) Application(ctx context.Context, userID, applicationID string) (models.ApplicationRecord, error) {
	doc, err := s.store.Get(ctx, applicationsCollection, applicationID)
	if err != nil {
		return models.ApplicationRecord{}, err
	}
	record, err := decodeApplication(*doc)
	if err != nil {
		return models.ApplicationRecord{}, fmt.Errorf("decoding application %s: %w", applicationID, err)
	}
	if record.UserID != userID {
		// Do not reveal that the record exists.
		return models.ApplicationRecord{}, stderrors.NewDocumentNotFoundError(applicationsCollection, applicationID)
	}
	return record, nil
}

// Tasks builds the checklist for an application. The payment task tracks the
// payment status; the rest track uploaded documents.
func (s *Service) Tasks(record models.ApplicationRecord) []Task {
	tasks := make([]Task, 0, len(taskKeys))
	for _, key := range taskKeys {
		complete := false
		if key == "payment" {
			complete = record.PaymentStatus == models.PaymentStatusPaid
		} else {
			_, complete = record.Documents[key]
		}
		tasks = append(tasks, Task{Key: key, Title: taskTitles[key], Complete: complete})
	}
	return tasks
}

// UploadDocument stores a traveler's file for one checklist task and records
// its URL on the application.
func (s *Service) UploadDocument(ctx context.Context, userID, applicationID, taskKey, filename, contentType string, r io.Reader) (string, error) {
	if _, ok := taskTitles[taskKey]; !ok || taskKey == "payment" {
		return "", stderrors.NewRecordInvalidError(fmt.Sprintf("unknown document task %q", taskKey))
	}

	record, err := s.Application(ctx, userID, applicationID)
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("applications/%s/%s_%s", applicationID, taskKey, filename)
	url, err := s.uploader.Upload(ctx, objectName, contentType, r)
	if err != nil {
		metrics.DocumentUploads.WithLabelValues(taskKey, "error").Inc()
		return "", stderrors.NewUploadFailedError(objectName, err)
	}

	documents := map[string]interface{}{}
	for key, existing := range record.Documents {
		documents[key] = existing
	}
	documents[taskKey] = url

	if err := s.store.Update(ctx, applicationsCollection, applicationID, map[string]interface{}{
		"documents": documents,
	}); err != nil {
		return "", fmt.Errorf("recording document for %s: %w", applicationID, err)
	}

	metrics.DocumentUploads.WithLabelValues(taskKey, "success").Inc()
	s.logger.Info("document uploaded", map[string]interface{}{
		"applicationId": applicationID,
		"taskKey":       taskKey,
		"object":        objectName,
	})
	return url, nil
}

func decodeApplication(doc database.Document) (models.ApplicationRecord, error) {
	var record models.ApplicationRecord
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &record,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return models.ApplicationRecord{}, err
	}
	if err := decoder.Decode(doc.Data); err != nil {
		return models.ApplicationRecord{}, err
	}
	record.ID = doc.ID
	return record, nil
}
