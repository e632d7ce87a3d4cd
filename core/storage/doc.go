// Package storage connects to the S3 compatible bucket that holds run
// reports and rejected batches.
//
// Callers depend on the narrow Client interface, which core/storage/mocks
// implements for tests.
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
//	    return err
//	}
package storage
