package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"docassist/internal/model"
)

// ErrStatusConflict is returned when a guarded status transition matches no
// row, meaning the document is not in the expected source status.
var ErrStatusConflict = errors.New("document status conflict")

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a new document. Status defaults to PENDING when unset.
func (r *DocumentRepository) Create(doc *model.Document) error {
	if doc.Status == "" {
		doc.Status = model.StatusPending
	}
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(id uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) GetByIDs(ids []uint) ([]model.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var docs []model.Document
	if err := r.db.Where("id IN ?", ids).Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("get documents by ids failed: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) List() ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, nil
}

// TransitionStatus moves a document from one status to another as a single
// guarded UPDATE. The guard makes the ingest worker the only effective writer
// after creation and keeps terminal statuses exclusive: a document that
// already left `from` is left untouched and ErrStatusConflict is returned.
func (r *DocumentRepository) TransitionStatus(id uint, from, to string) error {
	res := r.db.Model(&model.Document{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return fmt.Errorf("transition document status failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

// CommitIngestion persists an attempt's chunks and flips the document from
// PROCESSING to READY in one transaction, so chunks become visible all
// together and only on a READY document.
func (r *DocumentRepository) CommitIngestion(docID uint, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("commit ingestion for document %d: no chunks", docID)
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&chunks).Error; err != nil {
			return fmt.Errorf("create chunks batch failed: %w", err)
		}
		res := tx.Model(&model.Document{}).
			Where("id = ? AND status = ?", docID, model.StatusProcessing).
			Update("status", model.StatusReady)
		if res.Error != nil {
			return fmt.Errorf("mark document ready failed: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("commit ingestion for document %d: %w", docID, err)
	}
	return nil
}

// AbortIngestion removes any chunks written for the attempt and flips the
// document from PROCESSING to FAILED in one transaction, keeping the
// invariant that FAILED documents own zero chunks.
func (r *DocumentRepository) AbortIngestion(docID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", docID).Delete(&model.Chunk{}).Error; err != nil {
			return fmt.Errorf("delete partial chunks failed: %w", err)
		}
		res := tx.Model(&model.Document{}).
			Where("id = ? AND status = ?", docID, model.StatusProcessing).
			Update("status", model.StatusFailed)
		if res.Error != nil {
			return fmt.Errorf("mark document failed failed: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("abort ingestion for document %d: %w", docID, err)
	}
	return nil
}

// Delete removes a document and all its chunks in one transaction.
func (r *DocumentRepository) Delete(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&model.Chunk{}).Error; err != nil {
			return fmt.Errorf("delete chunks failed: %w", err)
		}
		if err := tx.Delete(&model.Document{}, id).Error; err != nil {
			return fmt.Errorf("delete document failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete document %d: %w", id, err)
	}
	return nil
}
