package app

import (
	"context"
	"log"

	"docassist/internal/model"
)

// DocumentInfo is a document plus the number of chunks it currently owns
// (zero while PENDING/PROCESSING/FAILED, at least one once READY).
type DocumentInfo struct {
	model.Document
	ChunkCount int64 `json:"chunk_count"`
}

// DocumentService covers document management outside the ingestion state
// machine: listing (ingestion progress is observable only by polling status)
// and explicit deletion with cascade to owned chunks.
type DocumentService struct {
	docs   DocumentStore
	chunks ChunkStore
	cache  AnswerCache
}

func NewDocumentService(docs DocumentStore, chunks ChunkStore, cache AnswerCache) *DocumentService {
	return &DocumentService{docs: docs, chunks: chunks, cache: cache}
}

func (s *DocumentService) List(ctx context.Context) ([]DocumentInfo, error) {
	docs, err := s.docs.List()
	if err != nil {
		return nil, err
	}
	infos := make([]DocumentInfo, 0, len(docs))
	for _, d := range docs {
		count, err := s.chunks.CountByDocumentID(d.ID)
		if err != nil {
			return nil, err
		}
		infos = append(infos, DocumentInfo{Document: d, ChunkCount: count})
	}
	return infos, nil
}

// Delete removes the document and all its chunks. Cached answers may cite the
// deleted document, so the answer cache is flushed.
func (s *DocumentService) Delete(ctx context.Context, id uint) error {
	doc, err := s.docs.GetByID(id)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	if err := s.docs.Delete(id); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Flush(ctx); err != nil {
			log.Printf("flush answer cache failed: %v", err)
		}
	}
	return nil
}
