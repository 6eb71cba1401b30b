package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/datachat/internal/ai"
	"github.com/xxxsen/datachat/internal/document"
	"github.com/xxxsen/datachat/internal/memory"
	"github.com/xxxsen/datachat/internal/model"
	appErr "github.com/xxxsen/datachat/internal/pkg/errors"
	"github.com/xxxsen/datachat/internal/vectorstore"
)

const (
	// indexPrefix keeps dataset indexes namespaced away from anything else
	// living in the same vector backend. IndexName must stay stable: vectors
	// already written under it would be orphaned by a rename.
	indexPrefix = "datachat-"

	DefaultTopK = 100
)

var datasetNameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// IndexName derives the vector-index identity for a dataset. Deterministic
// and injective over valid dataset names.
func IndexName(datasetName string) string {
	return indexPrefix + datasetName
}

// DatasetRegistry is the durable name → dataset mapping consumed by the
// orchestrator. Implemented by repo.DatasetRepo.
type DatasetRegistry interface {
	Upsert(ctx context.Context, dataset *model.Dataset) error
	Get(ctx context.Context, name string) (*model.Dataset, error)
	List(ctx context.Context) (map[string]*model.Dataset, error)
	SetState(ctx context.Context, name string, state string) error
	Delete(ctx context.Context, name string) (bool, error)
}

// Completer is the completion-provider boundary; implemented by ai.Completer.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, contextItems []map[string]interface{}, userQuery string, historyText string) (string, error)
}

type ChatConfig struct {
	// Dimension of the embedding vectors, fixed per deployment.
	Dimension int
	// SettleDelay is a fixed wait after a bulk upsert. The backend exposes
	// no readiness signal, so this approximates its indexing latency.
	SettleDelay time.Duration
	TopK        int
}

// ChatService composes the registry, vector store, providers and memory into
// the three dataset operations: register, answer, delete. One embed per
// document, one embed per query, one completion per answer; no hidden
// retries anywhere.
type ChatService struct {
	datasets  DatasetRegistry
	store     vectorstore.Store
	embedder  ai.IEmbedder
	completer Completer
	memory    *memory.Store
	cfg       ChatConfig
}

func NewChatService(datasets DatasetRegistry, store vectorstore.Store, embedder ai.IEmbedder, completer Completer, mem *memory.Store, cfg ChatConfig) *ChatService {
	if cfg.Dimension <= 0 {
		cfg.Dimension = 1536
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	return &ChatService{
		datasets:  datasets,
		store:     store,
		embedder:  embedder,
		completer: completer,
		memory:    mem,
		cfg:       cfg,
	}
}

// Register embeds the documents, upserts them under the dataset's index and
// persists the dataset record, then sits out the settling delay. Re-register
// with the same name keeps the index identity; documents sharing an ID
// overwrite their previous vector.
func (s *ChatService) Register(ctx context.Context, name string, docs []document.Document, systemPrompt string) error {
	if !datasetNameRe.MatchString(name) {
		return fmt.Errorf("%w: dataset name %q", appErr.ErrInvalid, name)
	}
	logger := logutil.GetLogger(ctx).With(zap.String("dataset", name), zap.Int("documents", len(docs)))

	indexName := IndexName(name)
	records := make([]vectorstore.Record, 0, len(docs))
	for _, doc := range docs {
		values, err := s.embedder.Embed(ctx, doc.Text(), ai.TaskRetrievalDocument)
		if err != nil {
			logger.Error("failed to embed document", zap.String("doc_id", doc.ID()), zap.Error(err))
			return err
		}
		records = append(records, vectorstore.Record{
			ID:       doc.ID(),
			Values:   values,
			Metadata: doc.Metadata(),
		})
	}

	if err := s.store.EnsureIndex(ctx, indexName, s.cfg.Dimension, vectorstore.MetricCosine); err != nil {
		logger.Error("failed to ensure index", zap.Error(err))
		return err
	}
	if err := s.store.Upsert(ctx, indexName, records); err != nil {
		logger.Error("failed to upsert vectors", zap.Error(err))
		return err
	}
	if err := s.datasets.Upsert(ctx, &model.Dataset{
		Name:         name,
		IndexName:    indexName,
		SystemPrompt: systemPrompt,
		State:        model.DatasetStateActive,
		CreatedAt:    time.Now().Unix(),
	}); err != nil {
		logger.Error("failed to persist dataset", zap.Error(err))
		return err
	}

	if s.cfg.SettleDelay > 0 {
		// Not tied to ctx: the write already happened, an aborted caller
		// gains nothing from skipping the wait.
		logger.Info("waiting for vectors to be indexed", zap.Duration("settle_delay", s.cfg.SettleDelay))
		time.Sleep(s.cfg.SettleDelay)
	}
	logger.Info("dataset registered", zap.String("index", indexName))
	return nil
}

// Answer looks up the dataset, retrieves context for the query and runs one
// completion over (context, query, system prompt, history), then records the
// exchange in the dataset's memory.
func (s *ChatService) Answer(ctx context.Context, name string, query string, topK int) (string, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("dataset", name))
	dataset, err := s.datasets.Get(ctx, name)
	if err != nil {
		if appErr.IsNotFound(err) {
			logger.Info("dataset not found")
			return "", err
		}
		logger.Error("failed to load dataset", zap.Error(err))
		return "", err
	}
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	queryVector, err := s.embedder.Embed(ctx, query, ai.TaskRetrievalQuery)
	if err != nil {
		logger.Error("failed to embed query", zap.Error(err))
		return "", err
	}
	contextItems, err := s.store.Search(ctx, dataset.IndexName, queryVector, topK)
	if err != nil {
		logger.Error("vector search failed", zap.Error(err))
		return "", err
	}

	historyText := s.memory.Render(name)
	answer, err := s.completer.Complete(ctx, dataset.SystemPrompt, contextItems, query, historyText)
	if err != nil {
		logger.Error("completion failed", zap.Error(err))
		return "", err
	}
	s.memory.Append(name, query, answer)
	logger.Debug("answer generated", zap.Int("context_items", len(contextItems)))
	return answer, nil
}

// Delete runs the two-phase teardown: vector index first, registry row
// second. A failed index deletion aborts with the row intact; a failed row
// deletion leaves the row in state index_deleted, observable and resumable
// by the reaper.
func (s *ChatService) Delete(ctx context.Context, name string) error {
	logger := logutil.GetLogger(ctx).With(zap.String("dataset", name))
	dataset, err := s.datasets.Get(ctx, name)
	if err != nil {
		return err
	}
	if err := s.store.DeleteIndex(ctx, dataset.IndexName); err != nil {
		logger.Error("failed to delete vector index, keeping dataset record", zap.Error(err))
		return err
	}
	if err := s.datasets.SetState(ctx, name, model.DatasetStateIndexDeleted); err != nil {
		// The index is already gone; the state marker only aids resumption.
		logger.Warn("failed to mark dataset index_deleted", zap.Error(err))
	}
	if _, err := s.datasets.Delete(ctx, name); err != nil {
		logger.Error("vector index deleted but registry row remains", zap.Error(err))
		return err
	}
	s.memory.Drop(name)
	logger.Info("dataset deleted", zap.String("index", dataset.IndexName))
	return nil
}

func (s *ChatService) List(ctx context.Context) (map[string]*model.Dataset, error) {
	return s.datasets.List(ctx)
}
