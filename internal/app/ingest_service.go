package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"docassist/internal/chunker"
	"docassist/internal/model"
	"docassist/internal/repository"
)

// IngestService drives a document through the ingestion state machine:
// PENDING -> PROCESSING -> {READY, FAILED}. Enqueue runs on the upload
// request path and only creates the PENDING record; Process runs detached on
// the ingest worker and owns every later transition.
type IngestService struct {
	docs         DocumentStore
	publisher    JobPublisher
	embedder     Embedder
	cache        AnswerCache
	chunkSize    int
	chunkOverlap int
	timeout      time.Duration
}

func NewIngestService(
	docs DocumentStore,
	publisher JobPublisher,
	embedder Embedder,
	cache AnswerCache,
	chunkSize int,
	chunkOverlap int,
	timeout time.Duration,
) *IngestService {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &IngestService{
		docs:         docs,
		publisher:    publisher,
		embedder:     embedder,
		cache:        cache,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		timeout:      timeout,
	}
}

// Enqueue creates the document in PENDING and publishes the ingest job. It
// returns as soon as both succeed; the caller observes PENDING and polls for
// the terminal status. Empty content is accepted here on purpose: the attempt
// fails asynchronously, leaving a FAILED document behind as the record.
func (s *IngestService) Enqueue(ctx context.Context, filename, content string) (*model.Document, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, ErrInvalidInput
	}

	doc := &model.Document{Filename: filename, Status: model.StatusPending}
	if err := s.docs.Create(doc); err != nil {
		return nil, err
	}

	job := model.IngestJob{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Content:    content,
	}
	if err := s.publisher.Publish(ctx, job); err != nil {
		// The job never reached the queue, so nothing will move the document
		// out of PENDING. Fail it right away rather than leave it dangling.
		if terr := s.docs.TransitionStatus(doc.ID, model.StatusPending, model.StatusFailed); terr != nil {
			log.Printf("mark unpublished document %d failed: %v", doc.ID, terr)
		}
		return nil, fmt.Errorf("publish ingest job failed: %w", err)
	}
	return doc, nil
}

// Process executes one ingestion attempt end to end. It is idempotent under
// duplicate queue deliveries: the guarded PENDING -> PROCESSING transition
// admits exactly one attempt per document. Any failure after that point
// aborts the attempt, removing partial chunks and marking the document
// FAILED. The returned error is for the worker's log only; ingestion is
// detached from any caller.
func (s *IngestService) Process(ctx context.Context, job model.IngestJob) error {
	err := s.docs.TransitionStatus(job.DocumentID, model.StatusPending, model.StatusProcessing)
	if errors.Is(err, repository.ErrStatusConflict) {
		log.Printf("document %d already claimed, skipping duplicate delivery", job.DocumentID)
		return nil
	}
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	chunks, err := s.work(ctx, job)
	if err != nil {
		s.abort(job.DocumentID, err)
		return err
	}

	if err := s.docs.CommitIngestion(job.DocumentID, chunks); err != nil {
		s.abort(job.DocumentID, err)
		return err
	}

	// Newly committed chunks can change the answer to any cached question.
	if s.cache != nil {
		if err := s.cache.Flush(ctx); err != nil {
			log.Printf("flush answer cache failed: %v", err)
		}
	}
	return nil
}

// work splits and embeds the document text, producing the attempt's chunk
// rows in source order.
func (s *IngestService) work(ctx context.Context, job model.IngestJob) ([]model.Chunk, error) {
	text := chunker.Normalize(job.Content)
	parts := chunker.Split(text, s.chunkSize, s.chunkOverlap)
	if len(parts) == 0 {
		return nil, ErrEmptyContent
	}

	vectors, err := s.embedder.EmbedAll(ctx, parts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	chunks := make([]model.Chunk, len(parts))
	for i := range parts {
		chunks[i] = model.Chunk{
			DocumentID: job.DocumentID,
			Content:    parts[i],
		}
		chunks[i].SetEmbedding(vectors[i])
	}
	return chunks, nil
}

// abort compensates a failed attempt. If the store itself is unreachable the
// document stays in PROCESSING, which is the documented operational alarm
// condition; there is nothing better to do from here.
func (s *IngestService) abort(docID uint, cause error) {
	log.Printf("ingestion of document %d failed: %v", docID, cause)
	if err := s.docs.AbortIngestion(docID); err != nil {
		log.Printf("abort ingestion of document %d failed, document may be stuck in PROCESSING: %v", docID, err)
	}
}
