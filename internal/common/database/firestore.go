// internal/common/database/firestore.go
package database

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"voluntra-backend/internal/common/config"
	"voluntra-backend/internal/common/errors"
)

// Document is one stored document with its store-assigned identity.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// FirestoreClient wraps the document store. Collections are flat and keyed by
// fixed IDs or slugs; applications get store-generated IDs.
type FirestoreClient struct {
	Client *firestore.Client
}

// NewFirestore creates a new Firestore client for the configured project.
func NewFirestore(ctx context.Context, cfg config.FirestoreConfig) (*FirestoreClient, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firestore project id must be provided")
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	return &FirestoreClient{Client: client}, nil
}

// Close closes the underlying client.
func (c *FirestoreClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// Create inserts one document and returns its store-generated ID. createdAt
// and updatedAt are assigned by the store.
func (c *FirestoreClient) Create(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	data["createdAt"] = firestore.ServerTimestamp
	data["updatedAt"] = firestore.ServerTimestamp

	ref, _, err := c.Client.Collection(collection).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("firestore create in %s failed: %w", collection, err)
	}
	return ref.ID, nil
}

// Get reads one document by ID or slug.
func (c *FirestoreClient) Get(ctx context.Context, collection, id string) (*Document, error) {
	snap, err := c.Client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NewDocumentNotFoundError(collection, id)
		}
		return nil, fmt.Errorf("firestore get %s/%s failed: %w", collection, id, err)
	}
	return &Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

// GetAll reads every document in a collection.
func (c *FirestoreClient) GetAll(ctx context.Context, collection string) ([]Document, error) {
	iter := c.Client.Collection(collection).Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore list %s failed: %w", collection, err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

// Query reads documents matching equality filters.
func (c *FirestoreClient) Query(ctx context.Context, collection string, filters map[string]interface{}) ([]Document, error) {
	q := c.Client.Collection(collection).Query
	for field, value := range filters {
		q = q.Where(field, "==", value)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore query %s failed: %w", collection, err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

// Update merges fields into one document and bumps updatedAt.
func (c *FirestoreClient) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	fields["updatedAt"] = firestore.ServerTimestamp

	_, err := c.Client.Collection(collection).Doc(id).Set(ctx, fields, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("firestore update %s/%s failed: %w", collection, id, err)
	}
	return nil
}
