package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"time"

	"price-sync/core/reconcile"
	"price-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Object key prefixes.
const (
	PrefixRejected  = "rejected"
	PrefixTruncated = "truncated"
	PrefixReports   = "reports"
)

// Object describes one archived object.
type Object struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

type rejectedBatch struct {
	Result reconcile.BatchResult `json:"result"`
	Error  string                `json:"error"`
	Batch  *reconcile.Batch      `json:"batch"`
}

type truncatedStream struct {
	Summary reconcile.RunSummary `json:"summary"`
	Error   string               `json:"error"`
}

// Archiver keeps rolled back batches, truncation notices and run reports in
// object storage.
type Archiver struct {
	client storage.Client
	bucket string
	logger *zap.Logger
	now    func() time.Time
}

// New creates an archiver writing to bucket.
func New(client storage.Client, bucket string, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{client: client, bucket: bucket, logger: logger, now: time.Now}
}

// BatchDone implements reconcile.Observer. Only rolled back batches are kept.
func (a *Archiver) BatchDone(ctx context.Context, res reconcile.BatchResult) {
	if res.Outcome != reconcile.OutcomeRolledBack || res.Batch == nil {
		return
	}
	doc := rejectedBatch{Result: res, Batch: res.Batch}
	if res.Err != nil {
		doc.Error = res.Err.Error()
	}
	key := path.Join(PrefixRejected, res.Source, res.Job, res.RunID, fmt.Sprintf("%s-%05d.json", res.Partition, res.Seq))
	if err := a.put(context.WithoutCancel(ctx), key, doc); err != nil {
		a.logger.Error("Failed to archive rolled back batch", zap.String("key", key), zap.Error(err))
	}
}

// StreamTruncated implements reconcile.Observer.
func (a *Archiver) StreamTruncated(ctx context.Context, summary reconcile.RunSummary, err error) {
	doc := truncatedStream{Summary: summary}
	if err != nil {
		doc.Error = err.Error()
	}
	key := path.Join(PrefixTruncated, summary.Source, summary.Job, summary.RunID, summary.Partition+".json")
	if perr := a.put(context.WithoutCancel(ctx), key, doc); perr != nil {
		a.logger.Error("Failed to archive truncated stream", zap.String("key", key), zap.Error(perr))
	}
}

// StoreReport writes the report of a run and returns its key.
func (a *Archiver) StoreReport(ctx context.Context, source, job, runID string, report any) (string, error) {
	key := path.Join(PrefixReports, source, job, a.now().UTC().Format("20060102T150405")+"-"+runID+".json")
	if err := a.put(ctx, key, report); err != nil {
		return "", err
	}
	return key, nil
}

// List returns the objects under prefix, newest first.
func (a *Archiver) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, obj.Err)
		}
		out = append(out, Object{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastModified.After(out[j].LastModified) })
	return out, nil
}

// Prune deletes the objects last modified before retention ago and returns
// how many were removed.
func (a *Archiver) Prune(ctx context.Context, retention time.Duration) (int, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := a.now().Add(-retention)

	objects, err := a.List(ctx, "")
	if err != nil {
		return 0, err
	}
	var stale []string
	for _, obj := range objects {
		if obj.LastModified.Before(cutoff) {
			stale = append(stale, obj.Key)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(stale))
	for _, key := range stale {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	var failed []string
	for rerr := range a.client.RemoveObjects(ctx, a.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", rerr.ObjectName, rerr.Err))
		}
	}
	removed := len(stale) - len(failed)
	if len(failed) > 0 {
		return removed, fmt.Errorf("prune had %d errors: %v", len(failed), failed)
	}
	a.logger.Info("Archive pruned", zap.Int("removed", removed), zap.Time("cutoff", cutoff))
	return removed, nil
}

func (a *Archiver) put(ctx context.Context, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}
