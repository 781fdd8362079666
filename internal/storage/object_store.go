// Package storage keeps uploaded and generated images in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/portfolio-blog-api/internal/config"
	"github.com/rs/zerolog"
)

// ErrInvalidKey is returned for keys outside the managed prefixes
var ErrInvalidKey = errors.New("invalid object key")

// Managed key prefixes
const (
	PrefixUploads   = "uploads/"
	PrefixGenerated = "generated/"
)

// ObjectStore wraps a minio client bound to one bucket
type ObjectStore struct {
	client    *minio.Client
	bucket    string
	region    string
	publicURL string
	log       zerolog.Logger
}

// New creates an object store client. It does not contact the server.
func New(cfg *config.StorageConfig, log zerolog.Logger) (*ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = strings.TrimRight(client.EndpointURL().String(), "/") + "/" + cfg.Bucket
	}

	return &ObjectStore{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		publicURL: publicURL,
		log:       log.With().Str("component", "storage").Logger(),
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet
func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	s.log.Info().Str("bucket", s.bucket).Msg("Created storage bucket")
	return nil
}

// Put stores an object and returns its public URL
func (s *ObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if !ValidKey(key) {
		return "", ErrInvalidKey
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	s.log.Debug().Str("key", key).Int64("size", info.Size).Msg("Stored object")
	return s.URL(key), nil
}

// Delete removes an object; deleting a missing key is not an error
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

// URL returns the public URL of key
func (s *ObjectStore) URL(key string) string {
	return s.publicURL + "/" + key
}

// HealthCheck verifies the bucket is reachable
func (s *ObjectStore) HealthCheck(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}

// ObjectKey builds <prefix><ownerID>/<name>
func ObjectKey(prefix, ownerID, name string) string {
	return prefix + ownerID + "/" + name
}

// ValidKey accepts <prefix><owner>/<name> keys under a managed prefix
// without path traversal
func ValidKey(key string) bool {
	return Owner(key) != ""
}

// Owner returns the owner segment of a managed key, or "" if the key is invalid
func Owner(key string) string {
	var rest string
	switch {
	case strings.HasPrefix(key, PrefixUploads):
		rest = key[len(PrefixUploads):]
	case strings.HasPrefix(key, PrefixGenerated):
		rest = key[len(PrefixGenerated):]
	default:
		return ""
	}
	if strings.Contains(key, "..") || strings.ContainsAny(key, "\\\x00") {
		return ""
	}
	owner, name, ok := strings.Cut(rest, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return ""
	}
	return owner
}
