package minio

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gfdmit/web-forum/posts-api/config"
)

const urlExpiry = 24 * time.Hour

// Store keeps post images in a MinIO bucket.
type Store struct {
	cli    *minio.Client
	bucket string
}

// New connects to MinIO and creates the bucket when it does not exist yet.
func New(ctx context.Context, conf config.MinIO) (*Store, error) {
	client, err := minio.New(fmt.Sprintf("%s:%s", conf.Host, conf.Port), &minio.Options{
		Creds:  credentials.NewStaticV4(conf.User, conf.Pass, ""),
		Secure: conf.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio.New: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, conf.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio.BucketExists: %v", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, conf.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio.MakeBucket: %v", err)
		}
		log.Printf("[MINIO] created bucket %q", conf.Bucket)
	}

	return &Store{cli: client, bucket: conf.Bucket}, nil
}

func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	_, err := s.cli.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("minio.Put: %w", err)
	}
	return nil
}

// URL returns a presigned download link valid for a day.
func (s *Store) URL(ctx context.Context, key string) (string, error) {
	u, err := s.cli.PresignedGetObject(ctx, s.bucket, key, urlExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("minio.URL: %w", err)
	}
	return u.String(), nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.cli.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio.Remove: %w", err)
	}
	return nil
}
