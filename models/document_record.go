package models

import "time"

// DocumentRecord is the SQL row behind one document when the document store
// runs on Postgres. Fields are kept as a JSON object in Data.
type DocumentRecord struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Collection string    `gorm:"index;not null" json:"collection"`
	Data       string    `gorm:"type:text;not null" json:"data"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
