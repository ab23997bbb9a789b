package model

import "time"

// Document lifecycle statuses. PENDING and PROCESSING are transient;
// READY and FAILED are terminal for an ingestion attempt.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusReady      = "READY"
	StatusFailed     = "FAILED"
)

type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Filename  string    `gorm:"size:256;not null;index" json:"filename"`
	Status    string    `gorm:"size:16;not null;default:PENDING;index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
