package app

import (
	"context"
	"errors"
	"sort"
	"sync"

	"docassist/internal/ai"
	"docassist/internal/model"
	"docassist/internal/repository"
)

// fakeStore is an in-memory DocumentStore + ChunkStore with the same guarded
// transition semantics as the gorm repository.
type fakeStore struct {
	mu          sync.Mutex
	nextDocID   uint
	nextChunkID uint
	docs        map[uint]*model.Document
	chunks      map[uint]model.Chunk

	createErr error
	commitErr error
	listErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:   make(map[uint]*model.Document),
		chunks: make(map[uint]model.Chunk),
	}
}

func (f *fakeStore) Create(doc *model.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextDocID++
	doc.ID = f.nextDocID
	if doc.Status == "" {
		doc.Status = model.StatusPending
	}
	cp := *doc
	f.docs[doc.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(id uint) (*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *doc
	return &cp, nil
}

func (f *fakeStore) GetByIDs(ids []uint) ([]model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Document
	for _, id := range ids {
		if doc, ok := f.docs[id]; ok {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (f *fakeStore) List() ([]model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Document
	for _, doc := range f.docs {
		out = append(out, *doc)
	}
	return out, nil
}

func (f *fakeStore) TransitionStatus(id uint, from, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok || doc.Status != from {
		return repository.ErrStatusConflict
	}
	doc.Status = to
	return nil
}

func (f *fakeStore) CommitIngestion(docID uint, chunks []model.Chunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commitErr != nil {
		return f.commitErr
	}
	doc, ok := f.docs[docID]
	if !ok || doc.Status != model.StatusProcessing {
		return repository.ErrStatusConflict
	}
	for i := range chunks {
		f.nextChunkID++
		chunks[i].ID = f.nextChunkID
		f.chunks[chunks[i].ID] = chunks[i]
	}
	doc.Status = model.StatusReady
	return nil
}

func (f *fakeStore) AbortIngestion(docID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[docID]
	if !ok || doc.Status != model.StatusProcessing {
		return repository.ErrStatusConflict
	}
	for id, c := range f.chunks {
		if c.DocumentID == docID {
			delete(f.chunks, id)
		}
	}
	doc.Status = model.StatusFailed
	return nil
}

func (f *fakeStore) Delete(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for cid, c := range f.chunks {
		if c.DocumentID == id {
			delete(f.chunks, cid)
		}
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeStore) ListAll() ([]model.Chunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Chunk, 0, len(f.chunks))
	for _, c := range f.chunks {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) CountByDocumentID(documentID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, c := range f.chunks {
		if c.DocumentID == documentID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) chunksOf(docID uint) []model.Chunk {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Chunk
	for _, c := range f.chunks {
		if c.DocumentID == docID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeStore) status(docID uint) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if doc, ok := f.docs[docID]; ok {
		return doc.Status
	}
	return ""
}

// fakeEmbedder returns a constant-dimension vector per text, or fails on a
// designated text to simulate a mid-ingestion backend fault.
type fakeEmbedder struct {
	dimension int
	failOn    string
	vectors   map[string][]float32
	calls     int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedAll(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fakeEmbedder) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		if f.failOn != "" && t == f.failOn {
			return nil, errors.New("backend fault")
		}
		if v, ok := f.vectors[t]; ok {
			out = append(out, v)
			continue
		}
		dim := f.dimension
		if dim <= 0 {
			dim = 4
		}
		v := make([]float32, dim)
		for i := range v {
			v[i] = float32(len(t)%7) + float32(i)
		}
		out = append(out, v)
	}
	return out, nil
}

type fakePublisher struct {
	jobs []model.IngestJob
	err  error
}

func (f *fakePublisher) Publish(ctx context.Context, job model.IngestJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type fakeGenerator struct {
	answer  string
	err     error
	calls   int
	prompts [][]ai.ChatMessage
}

func (f *fakeGenerator) Complete(ctx context.Context, messages []ai.ChatMessage) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, messages)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type cachedAnswer struct {
	answer  string
	sources []string
}

type fakeCache struct {
	entries map[string]cachedAnswer
	flushes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]cachedAnswer)}
}

func (f *fakeCache) GetAnswer(ctx context.Context, question string) (string, []string, bool, error) {
	e, ok := f.entries[question]
	if !ok {
		return "", nil, false, nil
	}
	return e.answer, e.sources, true, nil
}

func (f *fakeCache) SetAnswer(ctx context.Context, question, answer string, sources []string) error {
	f.entries[question] = cachedAnswer{answer: answer, sources: sources}
	return nil
}

func (f *fakeCache) Flush(ctx context.Context) error {
	f.flushes++
	f.entries = make(map[string]cachedAnswer)
	return nil
}
