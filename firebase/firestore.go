package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"

	"promoshow/models"
)

// DocumentStore abstracts the collection-oriented store holding promotion
// and credential records.
type DocumentStore interface {
	List(ctx context.Context, collection string) ([]models.Document, error)
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	Delete(ctx context.Context, collection, id string) error
	FindBy(ctx context.Context, collection, field string, value any) ([]models.Document, error)
}

// FirestoreStore is the Firestore implementation of DocumentStore.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(ctx context.Context, app *firebase.App) (*FirestoreStore, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) List(ctx context.Context, collection string) ([]models.Document, error) {
	snaps, err := s.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return fromSnapshots(snaps), nil
}

func (s *FirestoreStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, encodeFields(fields))
	if err != nil {
		return "", fmt.Errorf("add to %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) FindBy(ctx context.Context, collection, field string, value any) ([]models.Document, error) {
	snaps, err := s.client.Collection(collection).Where(field, "==", value).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query %s by %s: %w", collection, field, err)
	}
	return fromSnapshots(snaps), nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

// encodeFields swaps the store-neutral server timestamp sentinel for
// Firestore's own.
func encodeFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if models.IsServerTimestamp(v) {
			out[k] = firestore.ServerTimestamp
			continue
		}
		out[k] = v
	}
	return out
}

func fromSnapshots(snaps []*firestore.DocumentSnapshot) []models.Document {
	docs := make([]models.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, models.Document{ID: snap.Ref.ID, Fields: snap.Data()})
	}
	return docs
}
