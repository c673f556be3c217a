package storage

import (
	"bytes"
	"context"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Object stores each key as one JSON object in a MinIO / S3 bucket.
type Object struct {
	client     *minio.Client
	bucketName string
	prefix     string
}

// NewObject buat koneksi MinIO
func NewObject(ctx context.Context, endpoint, region, bucket, prefix, accessKey, secretKey string, useSSL bool) (*Object, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Object{client: cli, bucketName: bucket, prefix: prefix}, nil
}

func (s *Object) objectName(key string) string {
	return path.Join(s.prefix, key+".json")
}

func (s *Object) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, s.objectName(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (s *Object) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.client.PutObject(ctx, s.bucketName, s.objectName(key),
		bytes.NewReader(value), int64(len(value)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	return err
}

func (s *Object) Delete(ctx context.Context, key string) error {
	// RemoveObject is a no-op for missing keys
	return s.client.RemoveObject(ctx, s.bucketName, s.objectName(key), minio.RemoveObjectOptions{})
}
