package app

import (
	"context"

	"docassist/internal/ai"
	"docassist/internal/model"
)

// DocumentStore is the persistence contract the services depend on. The gorm
// repository implements it; tests supply fakes.
type DocumentStore interface {
	Create(doc *model.Document) error
	GetByID(id uint) (*model.Document, error)
	GetByIDs(ids []uint) ([]model.Document, error)
	List() ([]model.Document, error)
	TransitionStatus(id uint, from, to string) error
	CommitIngestion(docID uint, chunks []model.Chunk) error
	AbortIngestion(docID uint) error
	Delete(id uint) error
}

// ChunkStore exposes the committed retrieval corpus.
type ChunkStore interface {
	ListAll() ([]model.Chunk, error)
	CountByDocumentID(documentID uint) (int64, error)
}

// JobPublisher hands an ingest job to the durable queue.
type JobPublisher interface {
	Publish(ctx context.Context, job model.IngestJob) error
}

// Embedder is the bounded-concurrency embedding wrapper.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedAll(ctx context.Context, texts []string) ([][]float32, error)
}

// AnswerGenerator is the external text-generation collaborator.
type AnswerGenerator interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// AnswerCache stores finished answers for repeated questions. Implementations
// may be nil-backed; services treat cache failures as misses.
type AnswerCache interface {
	GetAnswer(ctx context.Context, question string) (answer string, sources []string, ok bool, err error)
	SetAnswer(ctx context.Context, question, answer string, sources []string) error
	Flush(ctx context.Context) error
}
