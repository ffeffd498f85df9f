// internal/dashboard/service_test.go
package dashboard

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voluntra-backend/internal/common/database"
	stderrors "voluntra-backend/internal/common/errors"
	"voluntra-backend/internal/common/logger"
	"voluntra-backend/internal/models"
)

type fakeStore struct {
	docs    map[string]map[string]interface{}
	updates map[string]map[string]interface{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:    map[string]map[string]interface{}{},
		updates: map[string]map[string]interface{}{},
	}
}

func (f *fakeStore) Get(ctx context.Context, collection, id string) (*database.Document, error) {
	data, ok := f.docs[id]
	if !ok {
		return nil, stderrors.NewDocumentNotFoundError(collection, id)
	}
	return &database.Document{ID: id, Data: data}, nil
}

func (f *fakeStore) Query(ctx context.Context, collection string, filters map[string]interface{}) ([]database.Document, error) {
	var out []database.Document
	for id, data := range f.docs {
		match := true
		for field, want := range filters {
			if data[field] != want {
				match = false
				break
			}
		}
		if match {
			out = append(out, database.Document{ID: id, Data: data})
		}
	}
	return out, nil
}

func (f *fakeStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	f.updates[id] = fields
	return nil
}

type fakeUploader struct {
	objects map[string]string
	fail    error
}

func (f *fakeUploader) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	if f.objects == nil {
		f.objects = map[string]string{}
	}
	body, _ := io.ReadAll(r)
	f.objects[objectName] = string(body)
	return "https://storage.googleapis.com/test-bucket/" + objectName, nil
}

func applicationData(userID string, createdAt time.Time) map[string]interface{} {
	return map[string]interface{}{
		"userId":          userID,
		"programId":       "ghana-teaching",
		"durationWeeks":   int64(4),
		"targetStartDate": "2026-11-02",
		"paymentStatus":   models.PaymentStatusPendingSetupFee,
		"status":          models.ApplicationStatusSubmitted,
		"personalInfo": map[string]interface{}{
			"firstName": "Amara",
			"lastName":  "Okafor",
			"email":     "amara@example.org",
			"phone":     "+233201234567",
		},
		"experience": map[string]interface{}{"motivation": "teach"},
		"travel":     map[string]interface{}{"insuranceAssent": true},
		"createdAt":  createdAt,
	}
}

func TestApplicationsForUserSortedNewestFirst(t *testing.T) {
	store := newFakeStore()
	store.docs["app-old"] = applicationData("uid-42", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))
	store.docs["app-new"] = applicationData("uid-42", time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
	store.docs["app-other"] = applicationData("uid-99", time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))
	svc := NewService(store, &fakeUploader{}, logger.NewTestLogger(t))

	records, err := svc.ApplicationsForUser(context.Background(), "uid-42")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "app-new", records[0].ID)
	assert.Equal(t, "app-old", records[1].ID)
	assert.Equal(t, "Amara", records[0].PersonalInfo.FirstName)
}

func TestApplicationsForUserRequiresIdentity(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeUploader{}, logger.NewTestLogger(t))

	_, err := svc.ApplicationsForUser(context.Background(), "")
	require.Error(t, err)
	var stdErr *stderrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, stderrors.ErrCodeUnauthenticated, stdErr.Code)
}

func TestApplicationOwnershipEnforced(t *testing.T) {
	store := newFakeStore()
	store.docs["app-1"] = applicationData("uid-42", time.Now())
	svc := NewService(store, &fakeUploader{}, logger.NewTestLogger(t))

	_, err := svc.Application(context.Background(), "uid-42", "app-1")
	require.NoError(t, err)

	// Someone else's record reads as not found.
	_, err = svc.Application(context.Background(), "uid-99", "app-1")
	require.Error(t, err)
	var stdErr *stderrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, stderrors.ErrCodeDocumentNotFound, stdErr.Code)
}

func TestTasksChecklist(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeUploader{}, logger.NewTestLogger(t))

	record := models.ApplicationRecord{
		PaymentStatus: models.PaymentStatusPaid,
		Documents:     map[string]string{"passport": "https://example.org/p.pdf"},
	}
	tasks := svc.Tasks(record)
	require.Len(t, tasks, 4)

	byKey := map[string]Task{}
	for _, task := range tasks {
		byKey[task.Key] = task
	}
	assert.True(t, byKey["payment"].Complete)
	assert.True(t, byKey["passport"].Complete)
	assert.False(t, byKey["flight"].Complete)
	assert.False(t, byKey["insurance"].Complete)
	assert.Equal(t, "payment", tasks[0].Key)
}

func TestUploadDocument(t *testing.T) {
	store := newFakeStore()
	data := applicationData("uid-42", time.Now())
	data["documents"] = map[string]interface{}{"passport": "https://example.org/old.pdf"}
	store.docs["app-1"] = data
	uploader := &fakeUploader{}
	svc := NewService(store, uploader, logger.NewTestLogger(t))

	url, err := svc.UploadDocument(context.Background(), "uid-42", "app-1", "flight", "itinerary.pdf", "application/pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://storage.googleapis.com/test-bucket/applications/app-1/flight_itinerary.pdf", url)
	assert.Equal(t, "pdf-bytes", uploader.objects["applications/app-1/flight_itinerary.pdf"])

	update, ok := store.updates["app-1"]
	require.True(t, ok)
	documents, ok := update["documents"].(map[string]interface{})
	require.True(t, ok)
	// Existing documents are preserved alongside the new one.
	assert.Equal(t, "https://example.org/old.pdf", documents["passport"])
	assert.Equal(t, url, documents["flight"])
}

func TestUploadDocumentRejectsUnknownTask(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeUploader{}, logger.NewTestLogger(t))

	_, err := svc.UploadDocument(context.Background(), "uid-42", "app-1", "visa", "v.pdf", "application/pdf", strings.NewReader(""))
	require.Error(t, err)

	// The payment task is completed by the webhook, never by upload.
	_, err = svc.UploadDocument(context.Background(), "uid-42", "app-1", "payment", "p.pdf", "application/pdf", strings.NewReader(""))
	require.Error(t, err)
}

func TestUploadDocumentStorageFailure(t *testing.T) {
	store := newFakeStore()
	store.docs["app-1"] = applicationData("uid-42", time.Now())
	svc := NewService(store, &fakeUploader{fail: errors.New("bucket unavailable")}, logger.NewTestLogger(t))

	_, err := svc.UploadDocument(context.Background(), "uid-42", "app-1", "passport", "p.pdf", "application/pdf", strings.NewReader("x"))
	require.Error(t, err)
	var stdErr *stderrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, stderrors.ErrCodeUploadFailed, stdErr.Code)
	assert.Empty(t, store.updates)
}
