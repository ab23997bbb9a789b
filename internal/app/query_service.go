package app

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"docassist/internal/ai"
	"docassist/internal/retrieval"
)

// NoKnowledgeAnswer is returned without consulting the generator when the
// store holds no retrievable chunks. It is a successful answer, distinct from
// any query-level error.
const NoKnowledgeAnswer = "The uploaded documents do not contain the information needed to answer this question."

// chunkSeparator joins retrieved chunk contents inside the prompt context.
const chunkSeparator = "\n---\n"

const systemPrompt = "You are a document question answering assistant. " +
	"Answer the user's question using only the information in the provided context. " +
	"If the context does not contain enough information, say that the uploaded documents do not contain the answer. " +
	"Reply in plain sentences without markdown, code blocks or special formatting."

// QueryService answers questions over the committed chunk corpus: embed the
// question, retrieve the nearest chunks, assemble a bounded context and
// delegate generation to the LLM collaborator.
type QueryService struct {
	docs            DocumentStore
	chunks          ChunkStore
	embedder        Embedder
	generator       AnswerGenerator
	cache           AnswerCache
	topK            int
	maxContextChars int
}

func NewQueryService(
	docs DocumentStore,
	chunks ChunkStore,
	embedder Embedder,
	generator AnswerGenerator,
	cache AnswerCache,
	topK int,
	maxContextChars int,
) *QueryService {
	if topK <= 0 {
		topK = 5
	}
	if maxContextChars <= 0 {
		maxContextChars = 6000
	}
	return &QueryService{
		docs:            docs,
		chunks:          chunks,
		embedder:        embedder,
		generator:       generator,
		cache:           cache,
		topK:            topK,
		maxContextChars: maxContextChars,
	}
}

type AskResult struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Ask returns an answer plus the sorted distinct filenames of the documents
// that contributed context. Sources are ordered lexicographically, not by
// retrieval rank.
func (s *QueryService) Ask(ctx context.Context, question string) (*AskResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrInvalidInput
	}

	if s.cache != nil {
		answer, sources, ok, err := s.cache.GetAnswer(ctx, question)
		if err != nil {
			log.Printf("answer cache read failed: %v", err)
		} else if ok {
			return &AskResult{Answer: answer, Sources: sources}, nil
		}
	}

	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	corpus, err := s.chunks.ListAll()
	if err != nil {
		return nil, err
	}

	nearest := retrieval.TopK(queryVec, corpus, s.topK)
	if len(nearest) == 0 {
		// No knowledge available. Do not call the generator.
		return &AskResult{Answer: NoKnowledgeAnswer, Sources: []string{}}, nil
	}

	contextBlock, used := s.assembleContext(nearest)

	sources, err := s.resolveSources(used)
	if err != nil {
		return nil, err
	}

	userPrompt := "Context:\n" + contextBlock + "\n\nQuestion: " + question
	answer, err := s.generator.Complete(ctx, []ai.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	result := &AskResult{Answer: answer, Sources: sources}
	if s.cache != nil {
		if err := s.cache.SetAnswer(ctx, question, result.Answer, result.Sources); err != nil {
			log.Printf("answer cache write failed: %v", err)
		}
	}
	return result, nil
}

// assembleContext concatenates chunk contents nearest-first up to the
// configured character bound, dropping the lowest-ranked chunks when the
// bound would be exceeded. The nearest chunk is always included. Returns the
// context block and the chunks that made it in.
func (s *QueryService) assembleContext(nearest []retrieval.Scored) (string, []retrieval.Scored) {
	var b strings.Builder
	var used []retrieval.Scored
	for _, sc := range nearest {
		addition := len(sc.Chunk.Content)
		if b.Len() > 0 {
			addition += len(chunkSeparator)
		}
		if len(used) > 0 && b.Len()+addition > s.maxContextChars {
			break
		}
		if b.Len() > 0 {
			b.WriteString(chunkSeparator)
		}
		b.WriteString(sc.Chunk.Content)
		used = append(used, sc)
	}
	return b.String(), used
}

// resolveSources maps the used chunks to their owning documents' filenames,
// deduplicated and sorted.
func (s *QueryService) resolveSources(used []retrieval.Scored) ([]string, error) {
	idSet := make(map[uint]struct{}, len(used))
	var ids []uint
	for _, sc := range used {
		if _, seen := idSet[sc.Chunk.DocumentID]; seen {
			continue
		}
		idSet[sc.Chunk.DocumentID] = struct{}{}
		ids = append(ids, sc.Chunk.DocumentID)
	}

	docs, err := s.docs.GetByIDs(ids)
	if err != nil {
		return nil, err
	}

	nameSet := make(map[string]struct{}, len(docs))
	sources := make([]string, 0, len(docs))
	for _, d := range docs {
		if _, seen := nameSet[d.Filename]; seen {
			continue
		}
		nameSet[d.Filename] = struct{}{}
		sources = append(sources, d.Filename)
	}
	sort.Strings(sources)
	return sources, nil
}
