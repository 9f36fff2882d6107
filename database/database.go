package database

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"promoshow/models"
	"promoshow/utils"
)

var ErrNotFound = errors.New("document not found")

func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=promoshow port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.DocumentRecord{}); err != nil {
		return fmt.Errorf("migrate documents: %w", err)
	}
	return nil
}

// DocumentStore keeps collection documents in a single SQL table.
type DocumentStore struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewDocumentStore(db *gorm.DB) *DocumentStore {
	return &DocumentStore{DB: db, now: time.Now}
}

// List returns the collection in insertion order.
func (s *DocumentStore) List(ctx context.Context, collection string) ([]models.Document, error) {
	var records []models.DocumentRecord
	err := s.DB.WithContext(ctx).
		Where("collection = ?", collection).
		Order("created_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	docs := make([]models.Document, 0, len(records))
	for _, rec := range records {
		doc, err := decodeRecord(rec)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Add stores fields under a new id. A ServerTimestamp value is replaced by
// the row's creation time.
func (s *DocumentStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	now := s.now().UTC()
	stored := make(map[string]any, len(fields))
	for k, v := range fields {
		if models.IsServerTimestamp(v) {
			stored[k] = now
			continue
		}
		stored[k] = v
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	rec := models.DocumentRecord{
		ID:         uuid.New().String(),
		Collection: collection,
		Data:       string(data),
		CreatedAt:  now,
	}
	if err := s.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		return "", fmt.Errorf("add to %s: %w", collection, err)
	}
	return rec.ID, nil
}

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	res := s.DB.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&models.DocumentRecord{})
	if res.Error != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete %s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

// FindBy returns the documents whose field equals value once both sides
// have been through JSON encoding.
func (s *DocumentStore) FindBy(ctx context.Context, collection, field string, value any) ([]models.Document, error) {
	want, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode query value: %w", err)
	}

	docs, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}

	var matched []models.Document
	for _, doc := range docs {
		v, ok := doc.Fields[field]
		if !ok {
			continue
		}
		got, err := json.Marshal(v)
		if err == nil && bytes.Equal(got, want) {
			matched = append(matched, doc)
		}
	}
	return matched, nil
}

func decodeRecord(rec models.DocumentRecord) (models.Document, error) {
	fields := map[string]any{}
	if err := json.Unmarshal([]byte(rec.Data), &fields); err != nil {
		return models.Document{}, fmt.Errorf("decode document %s: %w", rec.ID, err)
	}
	if _, ok := fields[models.FieldCreatedAt]; !ok {
		fields[models.FieldCreatedAt] = rec.CreatedAt
	}
	return models.Document{ID: rec.ID, Fields: fields}, nil
}

type credentialStore interface {
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	FindBy(ctx context.Context, collection, field string, value any) ([]models.Document, error)
}

// SeedAdmin creates an admin credential unless the username already exists.
func SeedAdmin(ctx context.Context, store credentialStore, collection, username, password string, logger *zap.Logger) error {
	if username == "" || password == "" {
		return nil
	}

	existing, err := store.FindBy(ctx, collection, models.FieldUsername, username)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		// Admin already exists
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if _, err := store.Add(ctx, collection, map[string]any{
		models.FieldUsername:  username,
		models.FieldPassword:  string(hashedPassword),
		models.FieldRole:      models.RoleAdmin,
		models.FieldFirstName: "Admin",
	}); err != nil {
		return err
	}

	utils.OrNop(logger).Info("default admin created", zap.String("username", username))
	return nil
}
