package ai

import (
	"context"
	"fmt"
	"sync"
)

const (
	defaultEmbedWorkers = 4
	// Providers often cap the number of inputs per embeddings call.
	defaultEmbedBatchSize = 10
)

// BatchEmbedder is the computation the pool dispatches to workers.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedPool runs embedding calls on a bounded set of workers so that the
// dominant per-chunk cost never runs unbounded and callers from many
// concurrent ingests and queries share the same capacity. It is started at
// bootstrap and drained with Close on shutdown.
type EmbedPool struct {
	embedder  BatchEmbedder
	batchSize int
	jobs      chan embedJob
	wg        sync.WaitGroup
}

type embedJob struct {
	ctx   context.Context
	texts []string
	reply chan embedResult
}

type embedResult struct {
	vectors [][]float32
	err     error
}

func NewEmbedPool(embedder BatchEmbedder, workers, batchSize int) *EmbedPool {
	if workers <= 0 {
		workers = defaultEmbedWorkers
	}
	if batchSize <= 0 {
		batchSize = defaultEmbedBatchSize
	}
	p := &EmbedPool{
		embedder:  embedder,
		batchSize: batchSize,
		jobs:      make(chan embedJob),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *EmbedPool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		if err := job.ctx.Err(); err != nil {
			job.reply <- embedResult{err: err}
			continue
		}
		vecs, err := p.embedder.EmbedBatch(job.ctx, job.texts)
		job.reply <- embedResult{vectors: vecs, err: err}
	}
}

// submit hands a batch to a worker, or fails fast when ctx ends before a
// worker becomes free. Exactly one result is always delivered on the
// returned channel.
func (p *EmbedPool) submit(ctx context.Context, texts []string) chan embedResult {
	reply := make(chan embedResult, 1)
	select {
	case p.jobs <- embedJob{ctx: ctx, texts: texts, reply: reply}:
	case <-ctx.Done():
		reply <- embedResult{err: ctx.Err()}
	}
	return reply
}

// Embed computes a single text's vector on a pool worker.
func (p *EmbedPool) Embed(ctx context.Context, text string) ([]float32, error) {
	res := <-p.submit(ctx, []string{text})
	if res.err != nil {
		return nil, res.err
	}
	if len(res.vectors) != 1 {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want 1", len(res.vectors))
	}
	return res.vectors[0], nil
}

// EmbedAll embeds texts in input order, splitting them into provider-sized
// batches that run concurrently across the pool workers. The first batch
// error fails the whole call; all dispatched batches are still awaited so no
// worker result is abandoned.
func (p *EmbedPool) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var replies []chan embedResult
	for start := 0; start < len(texts); start += p.batchSize {
		end := start + p.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		replies = append(replies, p.submit(ctx, texts[start:end]))
	}

	vectors := make([][]float32, 0, len(texts))
	var firstErr error
	for _, reply := range replies {
		res := <-reply
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		vectors = append(vectors, res.vectors...)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(texts))
	}
	return vectors, nil
}

// Close stops the workers after in-flight jobs finish. No Embed or EmbedAll
// call may be issued after Close.
func (p *EmbedPool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
