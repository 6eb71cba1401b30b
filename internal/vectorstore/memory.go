package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	appErr "github.com/xxxsen/datachat/internal/pkg/errors"
)

// MemoryStore is a brute-force cosine-similarity store for tests and local
// development. It honors the same contract as the real backends.
type MemoryStore struct {
	mu      sync.RWMutex
	indexes map[string]*memoryIndex
}

type memoryIndex struct {
	dimension int
	metric    string
	records   map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{indexes: make(map[string]*memoryIndex)}
}

func (s *MemoryStore) EnsureIndex(ctx context.Context, index string, dimension int, metric string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.indexes[index]; ok {
		return checkIndexParams(index, existing.dimension, existing.metric, dimension, metric)
	}
	s.indexes[index] = &memoryIndex{
		dimension: dimension,
		metric:    metric,
		records:   make(map[string]Record),
	}
	return nil
}

func (s *MemoryStore) Upsert(ctx context.Context, index string, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.indexes[index]
	if !ok {
		return appErr.NewVectorStoreError("upsert", fmt.Errorf("index %s not found", index))
	}
	for _, record := range records {
		if len(record.Values) != idx.dimension {
			return appErr.NewVectorStoreError("upsert",
				fmt.Errorf("vector dimension %d does not match index dimension %d", len(record.Values), idx.dimension))
		}
		idx.records[record.ID] = record
	}
	return nil
}

func (s *MemoryStore) Search(ctx context.Context, index string, vector []float32, topK int) ([]map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[index]
	if !ok {
		return nil, appErr.NewVectorStoreError("search", fmt.Errorf("index %s not found", index))
	}
	if len(vector) != idx.dimension {
		return nil, appErr.NewVectorStoreError("search",
			fmt.Errorf("query dimension %d does not match index dimension %d", len(vector), idx.dimension))
	}
	type match struct {
		id    string
		score float64
	}
	matches := make([]match, 0, len(idx.records))
	for id, record := range idx.records {
		matches = append(matches, match{id: id, score: cosineSimilarity(vector, record.Values)})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].id < matches[j].id
	})
	if topK > len(matches) {
		topK = len(matches)
	}
	results := make([]map[string]interface{}, 0, topK)
	for i := 0; i < topK; i++ {
		results = append(results, idx.records[matches[i].id].Metadata)
	}
	return results, nil
}

func (s *MemoryStore) DeleteIndex(ctx context.Context, index string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.indexes, index)
	return nil
}

// Count reports the number of records in an index. Test helper.
func (s *MemoryStore) Count(index string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[index]
	if !ok {
		return 0
	}
	return len(idx.records)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
