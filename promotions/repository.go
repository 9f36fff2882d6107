package promotions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"promoshow/firebase"
	"promoshow/models"
	"promoshow/utils"
)

const (
	imageExtension   = ".jpg"
	imageContentType = "image/jpeg"
)

// Repository maps promotions onto a document collection plus the object
// store holding their images.
type Repository struct {
	Docs       firebase.DocumentStore
	Blobs      firebase.BlobStore
	Collection string
	PathPrefix string
	Logger     *zap.Logger

	now    func() time.Time
	suffix func() string
}

func NewRepository(docs firebase.DocumentStore, blobs firebase.BlobStore, collection, pathPrefix string, logger *zap.Logger) *Repository {
	return &Repository{
		Docs:       docs,
		Blobs:      blobs,
		Collection: collection,
		PathPrefix: pathPrefix,
		Logger:     utils.OrNop(logger),
		now:        time.Now,
		suffix:     func() string { return uuid.New().String()[:8] },
	}
}

// LoadAll returns every promotion in store order. On failure no partial list
// is returned.
func (r *Repository) LoadAll(ctx context.Context) ([]models.Promotion, error) {
	docs, err := r.Docs.List(ctx, r.Collection)
	if err != nil {
		return nil, &Error{Kind: ErrRemoteRead, Err: err}
	}

	promotions := make([]models.Promotion, 0, len(docs))
	for _, doc := range docs {
		promotions = append(promotions, models.PromotionFromDocument(doc))
	}
	return promotions, nil
}

// Create uploads the image, resolves its URL and only then writes the
// document, so a document never points at a missing blob.
func (r *Repository) Create(ctx context.Context, image []byte) (models.Promotion, error) {
	if len(image) == 0 {
		return models.Promotion{}, ErrEmptyImage
	}

	storagePath := r.newStoragePath()

	if err := r.Blobs.Upload(ctx, storagePath, imageContentType, bytes.NewReader(image)); err != nil {
		return models.Promotion{}, &Error{Kind: ErrUpload, StoragePath: storagePath, Err: err}
	}

	url, err := r.Blobs.PublicURL(ctx, storagePath)
	if err != nil {
		r.logOrphan("blob uploaded but URL unresolved", storagePath, "", err)
		return models.Promotion{}, &Error{Kind: ErrUpload, StoragePath: storagePath, Err: err}
	}

	id, err := r.Docs.Add(ctx, r.Collection, map[string]any{
		models.FieldStoragePath: storagePath,
		models.FieldURL:         url,
		models.FieldCreatedAt:   models.ServerTimestamp,
	})
	if err != nil {
		r.logOrphan("blob uploaded but document write failed", storagePath, "", err)
		return models.Promotion{}, &Error{Kind: ErrWrite, StoragePath: storagePath, Err: err}
	}

	r.Logger.Info("promotion created", zap.String("id", id), zap.String("path", storagePath))
	return models.Promotion{ID: id, URL: url, StoragePath: storagePath, CreatedAt: r.now()}, nil
}

// Delete removes the image and then the document. A failed half is
// reported, never retried or rolled back.
func (r *Repository) Delete(ctx context.Context, p models.Promotion) error {
	storagePath := p.StoragePath
	if storagePath == "" && p.URL != "" {
		// records written before storagePath existed
		if derived, err := utils.ExtractObjectPath(p.URL); err == nil {
			storagePath = derived
		}
	}

	if storagePath != "" {
		if err := r.Blobs.Delete(ctx, storagePath); err != nil {
			return &Error{Kind: ErrDeleteBlob, StoragePath: storagePath, DocumentID: p.ID, Err: err}
		}
	}

	if err := r.Docs.Delete(ctx, r.Collection, p.ID); err != nil {
		r.logOrphan("blob deleted but document delete failed", storagePath, p.ID, err)
		return &Error{Kind: ErrDeleteDoc, StoragePath: storagePath, DocumentID: p.ID, Err: err}
	}

	r.Logger.Info("promotion deleted", zap.String("id", p.ID), zap.String("path", storagePath))
	return nil
}

// newStoragePath builds <prefix>/<unix millis>_<random>.jpg.
func (r *Repository) newStoragePath() string {
	name := fmt.Sprintf("%d_%s%s", r.now().UnixMilli(), r.suffix(), imageExtension)
	if r.PathPrefix == "" {
		return name
	}
	return r.PathPrefix + "/" + name
}

func (r *Repository) logOrphan(msg, storagePath, documentID string, err error) {
	r.Logger.Warn("orphaned promotion resource: "+msg,
		zap.String("path", storagePath),
		zap.String("document_id", documentID),
		zap.Error(err),
	)
}

// IsOrphan reports whether err left a blob or document behind.
func IsOrphan(err error) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.Orphaned()
}
