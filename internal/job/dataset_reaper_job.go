package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/datachat/internal/model"
	"github.com/xxxsen/datachat/internal/repo"
	"github.com/xxxsen/datachat/internal/vectorstore"
)

// DatasetReaperJob finishes deletes that got stuck between phases: the
// vector index is gone (or goes now; DeleteIndex is idempotent) but the
// registry row survived a crash or a registry fault.
type DatasetReaperJob struct {
	datasets *repo.DatasetRepo
	store    vectorstore.Store
}

func NewDatasetReaperJob(datasets *repo.DatasetRepo, store vectorstore.Store) *DatasetReaperJob {
	return &DatasetReaperJob{datasets: datasets, store: store}
}

func (j *DatasetReaperJob) Name() string {
	return "dataset_reaper"
}

func (j *DatasetReaperJob) Run(ctx context.Context) error {
	stuck, err := j.datasets.ListByState(ctx, model.DatasetStateIndexDeleted)
	if err != nil {
		return err
	}
	for _, dataset := range stuck {
		logger := logutil.GetLogger(ctx).With(zap.String("dataset", dataset.Name))
		if err := j.store.DeleteIndex(ctx, dataset.IndexName); err != nil {
			logger.Error("reaper failed to delete index", zap.Error(err))
			continue
		}
		if _, err := j.datasets.Delete(ctx, dataset.Name); err != nil {
			logger.Error("reaper failed to delete registry row", zap.Error(err))
			continue
		}
		logger.Info("reaped half-deleted dataset")
	}
	return nil
}
