package models

import "time"

// Field names of a promotion document.
const (
	FieldURL         = "url"
	FieldStoragePath = "storagePath"
	FieldCreatedAt   = "createdAt"
)

// Promotion is one promotional image: a blob in the object store plus the
// document that points at it. URL and StoragePath always refer to the same
// binary and are removed together.
type Promotion struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}

// PromotionFromDocument maps a stored document to a Promotion. Missing
// string fields become "".
func PromotionFromDocument(d Document) Promotion {
	return Promotion{
		ID:          d.ID,
		URL:         d.String(FieldURL),
		StoragePath: d.String(FieldStoragePath),
		CreatedAt:   d.Time(FieldCreatedAt),
	}
}
