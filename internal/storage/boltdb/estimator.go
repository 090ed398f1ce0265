package boltdb

import (
	"context"
	"fmt"
	"os"

	"go.etcd.io/bbolt"

	"github.com/localfirst/offsync/internal/models"
	"github.com/localfirst/offsync/internal/storage"
)

// Estimator reports storage usage of a bolt database for the quota tracker.
// Usage is the database file size; the per-subsystem breakdown comes from
// bucket statistics.
type Estimator struct {
	storage *Storage
	limit   int64
}

// NewEstimator creates an estimator with a configured quota limit in bytes.
func NewEstimator(s *Storage, limit int64) *Estimator {
	return &Estimator{storage: s, limit: limit}
}

// Estimate returns the current usage snapshot.
func (e *Estimator) Estimate(ctx context.Context) (models.StorageQuota, error) {
	if e.storage.db == nil {
		return models.StorageQuota{}, storage.ErrStorageClosed
	}

	info, err := os.Stat(e.storage.path)
	if err != nil {
		return models.StorageQuota{}, fmt.Errorf("failed to stat database file: %w", err)
	}

	quota := models.StorageQuota{
		Usage: info.Size(),
		Quota: e.limit,
	}
	if quota.Quota > 0 {
		quota.UsagePercent = float64(quota.Usage) / float64(quota.Quota) * 100
	}

	err = e.storage.db.View(func(tx *bbolt.Tx) error {
		quota.Breakdown.EntityStore = bucketInuse(tx.Bucket(bucketEntities))
		quota.Breakdown.OperationLog = bucketInuse(tx.Bucket(bucketOperations))
		quota.Breakdown.Cache = bucketInuse(tx.Bucket(bucketCache))
		return nil
	})
	if err != nil {
		return models.StorageQuota{}, fmt.Errorf("failed to read bucket stats: %w", err)
	}

	accounted := quota.Breakdown.EntityStore + quota.Breakdown.OperationLog + quota.Breakdown.Cache
	if quota.Usage > accounted {
		quota.Breakdown.Other = quota.Usage - accounted
	}

	return quota, nil
}

// bucketInuse returns the bytes in use by a bucket and its nested buckets.
func bucketInuse(b *bbolt.Bucket) int64 {
	if b == nil {
		return 0
	}
	stats := b.Stats()
	return int64(stats.LeafInuse + stats.BranchInuse)
}
