package task

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"buildingclash/internal/model"

	"github.com/minio/minio-go/v7"
)

// MinioCache stores one JSON object per task in an S3 compatible bucket.
// Retention is left to the bucket lifecycle policy.
type MinioCache struct {
	client *minio.Client
	bucket string
}

// NewMinioCache creates a cache on bucket, creating the bucket if needed
func NewMinioCache(ctx context.Context, client *minio.Client, bucket string) (*MinioCache, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}
	return &MinioCache{client: client, bucket: bucket}, nil
}

func (c *MinioCache) Get(ctx context.Context, taskID string) (model.FeatureCollection, bool, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, objectName(taskID), minio.GetObjectOptions{})
	if err != nil {
		return model.FeatureCollection{}, false, fmt.Errorf("get object for task %s: %w", taskID, err)
	}
	defer obj.Close()

	// GetObject is lazy, a missing key surfaces on the first read
	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return model.FeatureCollection{}, false, nil
		}
		return model.FeatureCollection{}, false, fmt.Errorf("read object for task %s: %w", taskID, err)
	}

	_, fc, err := DecodeRecord(data)
	if err != nil {
		return model.FeatureCollection{}, false, err
	}
	return fc, true, nil
}

func (c *MinioCache) Put(ctx context.Context, taskID string, result model.FeatureCollection) error {
	data, err := EncodeRecord(taskID, result)
	if err != nil {
		return err
	}

	_, err = c.client.PutObject(ctx, c.bucket, objectName(taskID),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("put object for task %s: %w", taskID, err)
	}
	return nil
}

func objectName(taskID string) string {
	return "tasks/" + taskID + ".json"
}
